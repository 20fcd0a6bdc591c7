package chat

import (
	"strings"

	"github.com/killallgit/ada/pkg/render"
	"github.com/mattn/go-runewidth"
)

const (
	maxTextAreaHeight = 10
	// input border (2) + status bar (1) + spacing (1)
	chromeHeight = 4
)

// calculateTextAreaHeight determines the visual height of the textarea
// based on its content and wrapping
func (m *chatModel) calculateTextAreaHeight() int {
	content := m.textarea.Value()
	if content == "" {
		return 1
	}

	textWidth := m.textarea.Width()
	if textWidth <= 0 {
		textWidth = m.width - 6
		if textWidth <= 0 {
			textWidth = 80
		}
	}

	totalVisualLines := 0
	for _, line := range strings.Split(content, "\n") {
		if line == "" {
			totalVisualLines++
			continue
		}
		// runewidth handles wide CJK and emoji cells
		lineWidth := runewidth.StringWidth(line)
		visualLines := (lineWidth + textWidth - 1) / textWidth
		if visualLines < 1 {
			visualLines = 1
		}
		totalVisualLines += visualLines
	}

	if totalVisualLines > maxTextAreaHeight {
		return maxTextAreaHeight
	}
	return totalVisualLines
}

// updateViewportHeight adjusts the viewport height based on textarea size
func (m *chatModel) updateViewportHeight() {
	if m.height > 0 {
		m.viewport.Height = max(1, m.height-m.calculateTextAreaHeight()-chromeHeight)
	}
}

// handleWindowResize updates all dimensions when window size changes
func (m *chatModel) handleWindowResize(width, height int) {
	m.width = width
	m.height = height

	// border (2) + padding (2) + prompt (2)
	m.textarea.SetWidth(max(10, width-6))
	textAreaHeight := m.calculateTextAreaHeight()
	m.textarea.SetHeight(textAreaHeight)

	m.viewport.Width = width
	m.viewport.Height = max(1, height-textAreaHeight-chromeHeight)

	if r, ok := m.renderer.(render.Resizable); ok {
		if err := r.SetWidth(max(20, width-4)); err != nil {
			log.Warn("failed to resize renderer", "error", err)
		}
	}
	m.cache = make(map[int]renderedEntry)
	m.refresh()
}
