package decoder

import (
	"strings"

	"github.com/killallgit/ada/pkg/provider"
	"github.com/tidwall/gjson"
)

const doneSentinel = "[DONE]"

// extractor pulls the delta and completion flag out of one parsed envelope.
type extractor func(p provider.Provider, env gjson.Result) (text string, done bool, err error)

// SSEDecoder handles "data: {json}" line framing used by OpenAI, Groq and
// Anthropic.
type SSEDecoder struct {
	provider provider.Provider
	extract  extractor
	fallback bool
}

func (d *SSEDecoder) Decode(raw, carry string) Result {
	lines := strings.Split(carry+raw, "\n")
	tail := lines[len(lines)-1]

	var text strings.Builder
	for _, line := range lines[:len(lines)-1] {
		delta, done, err := d.line(line)
		text.WriteString(delta)
		if err != nil {
			return Result{Text: text.String(), Err: err}
		}
		if done {
			return Result{Text: text.String(), Done: true}
		}
	}

	return Result{Text: text.String(), Carry: tail}
}

func (d *SSEDecoder) Flush(carry string) Result {
	if strings.TrimSpace(carry) == "" {
		return Result{}
	}
	return d.Decode("\n", carry)
}

func (d *SSEDecoder) line(line string) (string, bool, error) {
	line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
	if line == "" || strings.HasPrefix(line, ":") || strings.HasPrefix(line, "event:") {
		return "", false, nil
	}
	if !strings.HasPrefix(line, "data:") {
		log.Debug("skipping non data line", "provider", d.provider, "line", line)
		return "", false, nil
	}

	payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
	if payload == doneSentinel {
		return "", true, nil
	}
	if !gjson.Valid(payload) {
		log.Debug("malformed record", "provider", d.provider, "payload", payload)
		if d.fallback {
			return fallbackContent(payload), false, nil
		}
		return "", false, nil
	}

	return d.extract(d.provider, gjson.Parse(payload))
}

func extractOpenAI(p provider.Provider, env gjson.Result) (string, bool, error) {
	if e := env.Get("error"); e.Exists() {
		return "", false, &ProviderError{Provider: p, Message: errorMessage(e)}
	}
	choice := env.Get("choices.0")
	text := choice.Get("delta.content").String()
	done := choice.Get("finish_reason").String() == "stop"
	return text, done, nil
}

func extractAnthropic(p provider.Provider, env gjson.Result) (string, bool, error) {
	switch env.Get("type").String() {
	case "content_block_delta":
		return env.Get("delta.text").String(), false, nil
	case "message_stop":
		return "", true, nil
	case "error":
		return "", false, &ProviderError{Provider: p, Message: errorMessage(env.Get("error"))}
	default:
		return "", false, nil
	}
}

func errorMessage(e gjson.Result) string {
	if e.Type == gjson.String {
		return e.String()
	}
	if msg := e.Get("message"); msg.Exists() {
		return msg.String()
	}
	return e.Raw
}
