// Package decoder turns raw provider stream fragments into assistant text.
//
// Decoders hold no state of their own. The trailing incomplete record of one
// call is handed back as Carry and must be passed into the next call, which
// makes the result independent of where the transport happened to split the
// body.
package decoder

import (
	"fmt"

	"github.com/killallgit/ada/pkg/logger"
	"github.com/killallgit/ada/pkg/provider"
)

var log = logger.WithComponent("decoder")

// Result is the outcome of decoding one fragment.
type Result struct {
	Text  string
	Done  bool
	Carry string
	// Err is set when the provider reported an error inside the stream.
	Err error
}

type Decoder interface {
	// Decode consumes raw together with the carry from the previous call.
	Decode(raw, carry string) Result
	// Flush decodes whatever carry is left once the stream has ended.
	Flush(carry string) Result
}

type Options struct {
	// RegexFallback recovers "content" strings from records that fail to parse.
	RegexFallback bool
}

// ProviderError is an error envelope found in the stream itself.
type ProviderError struct {
	Provider provider.Provider
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// New returns the decoder for p.
func New(p provider.Provider, opts Options) (Decoder, error) {
	switch p {
	case provider.OpenAI, provider.Groq:
		return &SSEDecoder{provider: p, extract: extractOpenAI, fallback: opts.RegexFallback}, nil
	case provider.Anthropic:
		return &SSEDecoder{provider: p, extract: extractAnthropic, fallback: opts.RegexFallback}, nil
	case provider.Google:
		return GoogleDecoder{}, nil
	case provider.Local:
		return LocalDecoder{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", provider.ErrUnknownProvider, p)
	}
}
