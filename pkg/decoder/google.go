package decoder

import "strings"

// GoogleDecoder receives fragments the transport has already unwrapped, so
// the only thing to detect is the closing sentinel.
type GoogleDecoder struct{}

func (GoogleDecoder) Decode(raw, _ string) Result {
	if strings.TrimSpace(raw) == doneSentinel {
		return Result{Done: true}
	}
	return Result{Text: raw}
}

func (GoogleDecoder) Flush(string) Result {
	return Result{}
}
