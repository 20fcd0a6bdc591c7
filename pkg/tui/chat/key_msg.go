package chat

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func handleKeyMsg(m chatModel, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type != tea.KeyEscape {
		m.numEscPress = 0
	}

	switch {
	case key.Matches(msg, keys.Quit):
		m.ctrl.Close()
		return m, tea.Quit
	case key.Matches(msg, keys.NextModel):
		return m.cycleModel(1)
	case key.Matches(msg, keys.PrevModel):
		return m.cycleModel(-1)
	case key.Matches(msg, keys.Clear):
		return m.clearChat()
	case key.Matches(msg, keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	case key.Matches(msg, keys.Submit):
		return m.submit()
	case msg.Type == tea.KeyEscape:
		m.numEscPress++
		if m.numEscPress == 2 {
			m.textarea.Reset()
			m.numEscPress = 0
			m.updateViewportHeight()
			return m, nil
		}
	}

	// Let the textarea handle the key
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)

	// Recalculate and update height after any key input
	newHeight := m.calculateTextAreaHeight()
	if m.textarea.Height() != newHeight {
		m.textarea.SetHeight(newHeight)
		m.updateViewportHeight()
	}

	return m, cmd
}
