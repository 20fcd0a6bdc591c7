package stream

import "strings"

// Accumulator holds the assistant text of the current turn. Its length
// never shrinks between resets.
type Accumulator struct {
	buf strings.Builder
}

// Append adds text and returns the new total length.
func (a *Accumulator) Append(text string) int {
	a.buf.WriteString(text)
	return a.buf.Len()
}

func (a *Accumulator) Current() string {
	return a.buf.String()
}

func (a *Accumulator) Len() int {
	return a.buf.Len()
}

func (a *Accumulator) Reset() {
	a.buf.Reset()
}
