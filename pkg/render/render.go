// Package render turns message markdown into terminal output.
package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

const (
	StylePlain = "plain"
	StyleAuto  = "auto"
)

// Renderer formats the full text of one message.
type Renderer interface {
	Render(text string) (string, error)
}

// New returns the renderer for a render.style value. "plain" keeps the text
// as written and only highlights fenced code. Anything else is a glamour
// style name.
func New(style string, width int) (Renderer, error) {
	style = strings.ToLower(strings.TrimSpace(style))
	switch style {
	case StylePlain:
		return NewPlain(), nil
	case "":
		style = StyleAuto
	}
	return NewMarkdown(style, width)
}

// Markdown renders through glamour. The term renderer is rebuilt only when
// the wrap width changes.
type Markdown struct {
	mu       sync.Mutex
	style    string
	width    int
	renderer *glamour.TermRenderer
}

func NewMarkdown(style string, width int) (*Markdown, error) {
	m := &Markdown{style: style}
	if err := m.rebuild(width); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Markdown) Render(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out, err := m.renderer.Render(text)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return strings.Trim(out, "\n"), nil
}

// SetWidth changes the wrap width used by later calls.
func (m *Markdown) SetWidth(width int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if width == m.width && m.renderer != nil {
		return nil
	}
	return m.rebuild(width)
}

func (m *Markdown) rebuild(width int) error {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if m.style == StyleAuto {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(m.style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer for style %q: %w", m.style, err)
	}
	m.renderer = r
	m.width = width
	return nil
}

// Resizable is implemented by renderers that wrap to a width.
type Resizable interface {
	SetWidth(width int) error
}
