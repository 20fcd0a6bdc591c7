package decoder

import (
	"strings"

	"github.com/killallgit/ada/pkg/provider"
	"github.com/tidwall/gjson"
)

// Carry markers for the local decoder. A trailing record is decoded as soon
// as it is complete, so the carry remembers how the next fragment continues
// the current line.
const (
	markRecord  = "\x00record"
	markLiteral = "\x00literal"
)

// LocalDecoder handles Ollama-style JSON records, one per chunk or one per
// line. Each record carries message.content and a done flag. Anything that is
// not JSON passes through as literal text. A record that starts like JSON
// (`{"`) but fails to parse is dropped.
type LocalDecoder struct{}

func (LocalDecoder) Decode(raw, carry string) Result {
	var text strings.Builder
	buf, afterRecord := carry+raw, false

	switch {
	case carry == markRecord:
		buf, afterRecord = raw, true
	case carry == markLiteral:
		buf = raw
		if !looksLikeRecord(raw) {
			line, rest, found := strings.Cut(raw, "\n")
			text.WriteString(line)
			if !found {
				return Result{Text: text.String(), Carry: markLiteral}
			}
			text.WriteString("\n")
			buf = rest
		}
	case looksLikeRecord(carry) && looksLikeRecord(raw):
		// A fresh record can not complete the pending one.
		if _, ok := validObject(carry + raw); !ok {
			if obj, ok := validObject(raw); ok && gjson.Get(obj, "done").Exists() {
				log.Warn("dropping broken record", "provider", provider.Local, "bytes", len(carry))
				buf = raw
			}
		}
	}

	for buf != "" {
		if afterRecord {
			buf = strings.TrimLeft(buf, " \t\r")
			if buf == "" {
				break
			}
			afterRecord = false
			if buf[0] == '\n' {
				buf = buf[1:]
				continue
			}
		}

		lead := strings.TrimLeft(buf, " \t\r")
		if lead == "" {
			return Result{Text: text.String(), Carry: buf}
		}
		if lead[0] != '{' {
			line, rest, found := strings.Cut(buf, "\n")
			text.WriteString(line)
			if !found {
				return Result{Text: text.String(), Carry: markLiteral}
			}
			text.WriteString("\n")
			buf = rest
			continue
		}

		n := objectEnd(lead)
		if n < 0 {
			line, rest, found := strings.Cut(buf, "\n")
			if !found {
				return Result{Text: text.String(), Carry: buf}
			}
			if looksLikeRecord(line) {
				log.Warn("dropping broken record", "provider", provider.Local, "bytes", len(line))
			} else {
				text.WriteString(line + "\n")
			}
			buf = rest
			continue
		}

		obj := lead[:n]
		if !gjson.Valid(obj) {
			if looksLikeRecord(obj) {
				log.Warn("dropping broken record", "provider", provider.Local, "bytes", len(obj))
				buf, afterRecord = lead[n:], true
				continue
			}
			line, rest, found := strings.Cut(buf, "\n")
			text.WriteString(line)
			if !found {
				return Result{Text: text.String(), Carry: markLiteral}
			}
			text.WriteString("\n")
			buf = rest
			continue
		}

		delta, done, err := localRecord(obj)
		text.WriteString(delta)
		if err != nil || done {
			return Result{Text: text.String(), Done: done, Err: err}
		}
		buf, afterRecord = lead[n:], true
	}

	if afterRecord {
		return Result{Text: text.String(), Carry: markRecord}
	}
	return Result{Text: text.String()}
}

func (LocalDecoder) Flush(carry string) Result {
	switch {
	case carry == markRecord || carry == markLiteral || strings.TrimSpace(carry) == "":
		return Result{}
	case looksLikeRecord(carry):
		log.Warn("dropping unterminated record", "provider", provider.Local, "bytes", len(carry))
		return Result{}
	default:
		log.Debug("non JSON record passed through", "provider", provider.Local, "bytes", len(carry))
		return Result{Text: carry}
	}
}

func looksLikeRecord(s string) bool {
	return strings.HasPrefix(strings.TrimLeft(s, " \t\r\n"), `{"`)
}

// validObject reports the complete, parseable object at the start of s.
func validObject(s string) (string, bool) {
	lead := strings.TrimLeft(s, " \t\r\n")
	n := objectEnd(lead)
	if n < 0 || !gjson.Valid(lead[:n]) {
		return "", false
	}
	return lead[:n], true
}

// objectEnd returns the length of the balanced object s starts with, or -1
// when s ends or breaks its line before the object closes.
func objectEnd(s string) int {
	depth, inString, escaped := 0, false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\n' {
			return -1
		}
		switch {
		case escaped:
			escaped = false
		case inString:
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
		case c == '"':
			inString = true
		case c == '{' || c == '[':
			depth++
		case c == '}' || c == ']':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// localRecord decodes one parseable record.
func localRecord(obj string) (string, bool, error) {
	env := gjson.Parse(obj)
	if e := env.Get("error"); e.Exists() {
		return "", false, &ProviderError{Provider: provider.Local, Message: errorMessage(e)}
	}
	return env.Get("message.content").String(), env.Get("done").Bool(), nil
}
