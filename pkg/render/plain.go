package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const fence = "```"

// Plain leaves prose untouched and highlights fenced code blocks with chroma.
type Plain struct {
	style     *chroma.Style
	formatter chroma.Formatter
}

func NewPlain() *Plain {
	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}
	return &Plain{style: style, formatter: formatter}
}

func (p *Plain) Render(text string) (string, error) {
	lines := strings.Split(text, "\n")

	var out []string
	var code []string
	lang := ""
	inCode := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, fence) {
			if inCode {
				code = append(code, line)
			} else {
				out = append(out, line)
			}
			continue
		}

		if !inCode {
			inCode = true
			lang = strings.TrimSpace(strings.TrimPrefix(trimmed, fence))
			code = code[:0]
			out = append(out, line)
			continue
		}

		out = append(out, p.highlight(strings.Join(code, "\n"), lang), line)
		inCode = false
	}

	// An unclosed fence is still streaming; show it as written.
	if inCode {
		out = append(out, code...)
	}
	return strings.Join(out, "\n"), nil
}

func (p *Plain) highlight(code, lang string) string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := p.formatter.Format(&buf, p.style, iterator); err != nil {
		return code
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
