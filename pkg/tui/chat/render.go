package chat

import (
	"strings"

	"github.com/killallgit/ada/pkg/display"
	"github.com/killallgit/ada/pkg/logger"
)

var log = logger.WithComponent("tui")

func (m chatModel) renderTranscript() string {
	entries := m.sink.Entries()
	if len(entries) == 0 {
		return ""
	}

	availableWidth := m.viewport.Width
	if availableWidth <= 0 {
		availableWidth = 80
	}

	rendered := make([]string, 0, len(entries))
	for _, e := range entries {
		label := m.styles.Label(string(e.Sender)).Render(string(e.Sender))
		rendered = append(rendered, label+"\n"+m.renderBody(e, availableWidth))
	}
	return strings.Join(rendered, "\n\n")
}

// renderBody renders assistant markdown through the renderer and wraps
// everything else to the viewport.
func (m chatModel) renderBody(e display.Entry, width int) string {
	if e.Sender != display.SenderAssistant || m.renderer == nil {
		return m.styles.Body(string(e.Sender), e.Text).Width(width).Render(e.Text)
	}

	if cached, ok := m.cache[e.ID]; ok && cached.source == e.Text {
		return cached.output
	}
	out, err := m.renderer.Render(e.Text)
	if err != nil {
		log.Debug("markdown render failed", "error", err)
		out = e.Text
	}
	m.cache[e.ID] = renderedEntry{source: e.Text, output: out}
	return out
}

// refresh redraws the transcript and follows the latest message when the
// controller asked for it.
func (m *chatModel) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	if m.sink.takeScroll() {
		m.viewport.GotoBottom()
	}
}
