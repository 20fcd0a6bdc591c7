package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/killallgit/ada/pkg/render"
	"github.com/killallgit/ada/pkg/tui/theme"
)

// Console writes messages to a terminal stream. Assistant text is written
// as it grows; other messages are rendered once when created.
type Console struct {
	Transcript

	mu       sync.Mutex
	out      io.Writer
	renderer render.Renderer
	styles   *theme.Styles
	open     Handle
	written  string
	labels   bool
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithRenderer renders non-streamed messages through r.
func WithRenderer(r render.Renderer) ConsoleOption {
	return func(c *Console) { c.renderer = r }
}

// WithoutLabels drops the "You:" / "AI:" prefixes, for piping output.
func WithoutLabels() ConsoleOption {
	return func(c *Console) { c.labels = false }
}

func NewConsole(out io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{out: out, styles: theme.DefaultStyles(), labels: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Console) CreateMessage(sender Sender, text string) Handle {
	h := c.Transcript.CreateMessage(sender, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLine()

	if c.labels {
		fmt.Fprintf(c.out, "%s ", c.styles.Label(string(sender)).Render(string(sender)+":"))
	}

	if sender == SenderAssistant {
		c.open = h
		c.written = text
		fmt.Fprint(c.out, text)
		return h
	}

	fmt.Fprintln(c.out, c.styles.Body(string(sender), text).Render(c.render(text)))
	return h
}

func (c *Console) UpdateMessage(h Handle, text string) error {
	if err := c.Transcript.UpdateMessage(h, text); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.open == nil || c.open.MessageID() != h.MessageID() {
		return nil
	}
	if strings.HasPrefix(text, c.written) {
		fmt.Fprint(c.out, text[len(c.written):])
	} else {
		fmt.Fprint(c.out, "\n", text)
	}
	c.written = text
	return nil
}

func (c *Console) RemoveMessage(h Handle) error {
	if err := c.Transcript.RemoveMessage(h); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open != nil && c.open.MessageID() == h.MessageID() {
		c.endLine()
	}
	return nil
}

func (c *Console) ScrollToLatest() {}

func (c *Console) Clear() {
	c.Transcript.Clear()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLine()
}

// Finish terminates a streamed line still open on the terminal.
func (c *Console) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLine()
}

func (c *Console) endLine() {
	if c.open == nil {
		return
	}
	fmt.Fprintln(c.out)
	c.open = nil
	c.written = ""
}

func (c *Console) render(text string) string {
	if c.renderer == nil {
		return text
	}
	out, err := c.renderer.Render(text)
	if err != nil {
		log.Debug("render failed", "error", err)
		return text
	}
	return out
}
