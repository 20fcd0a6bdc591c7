package chat

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/killallgit/ada/pkg/controllers"
	"github.com/killallgit/ada/pkg/events"
	"github.com/killallgit/ada/pkg/tokens"
	"github.com/killallgit/ada/pkg/tui/chat/status"
)

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowResize(msg.Width, msg.Height)
		m.statusBar, _ = m.statusBar.Update(msg)

	case tea.KeyMsg:
		// All key handling happens in handleKeyMsg
		return handleKeyMsg(m, msg)

	case eventMsg:
		return m.handleEvent(msg)

	case ModelsChangedMsg:
		m.models = msg.Models
		return m, nil

	default:
		var statusCmd tea.Cmd
		m.statusBar, statusCmd = m.statusBar.Update(msg)
		cmds = append(cmds, statusCmd)

		// Update textarea for other messages (like blink cursor)
		var tiCmd tea.Cmd
		m.textarea, tiCmd = m.textarea.Update(msg)
		cmds = append(cmds, tiCmd)

		var vpCmd tea.Cmd
		m.viewport, vpCmd = m.viewport.Update(msg)
		cmds = append(cmds, vpCmd)
	}

	return m, tea.Batch(cmds...)
}

// waitForEvent blocks on the turn's subscription and hands the next event
// to Update.
func waitForEvent(ch <-chan events.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		return eventMsg{event: ev, ok: ok}
	}
}

func (m chatModel) handleEvent(msg eventMsg) (tea.Model, tea.Cmd) {
	if !msg.ok {
		return m, nil
	}

	wasSending := m.ctrl.State() == controllers.StateSending
	m.ctrl.HandleEvent(msg.event)
	m.refresh()

	if m.ctrl.State() == controllers.StateIdle {
		m.statusBar, _ = m.statusBar.Update(status.StopStreamingMsg{})
		m.updateTokens("")
		return m, nil
	}

	if wasSending && m.ctrl.State() == controllers.StateStreaming {
		m.statusBar, _ = m.statusBar.Update(status.SetProcessStateMsg{State: status.StateReceiving})
	}
	m.updateTokens(m.ctrl.Reply())
	return m, waitForEvent(m.ctrl.Events())
}

func (m *chatModel) submit() (tea.Model, tea.Cmd) {
	switch outcome := m.ctrl.Submit(m.textarea.Value()); outcome {
	case controllers.OutcomeIgnored:
		return *m, nil
	case controllers.OutcomeQuit:
		m.ctrl.Close()
		return *m, tea.Quit
	case controllers.OutcomeBusy:
		m.statusBar, _ = m.statusBar.Update(status.NoticeMsg{Text: "still streaming, wait for the reply"})
		return *m, nil
	case controllers.OutcomeFailed:
		m.resetInput()
		m.refresh()
		m.updateTokens("")
		return *m, nil
	}

	m.resetInput()
	m.refresh()

	var statusCmd tea.Cmd
	m.statusBar, statusCmd = m.statusBar.Update(status.StartStreamingMsg{})
	m.updateTokens("")
	return *m, tea.Batch(statusCmd, waitForEvent(m.ctrl.Events()))
}

// cycleModel moves the selection dir steps through the configured models.
func (m *chatModel) cycleModel(dir int) (tea.Model, tea.Cmd) {
	if len(m.models) == 0 {
		m.statusBar, _ = m.statusBar.Update(status.NoticeMsg{Text: "no models configured"})
		return *m, nil
	}

	current := -1
	for i, sel := range m.models {
		if sel == m.ctrl.Selected() {
			current = i
			break
		}
	}

	var next int
	switch {
	case current < 0 && dir > 0:
		next = 0
	case current < 0:
		next = len(m.models) - 1
	default:
		next = (current + dir + len(m.models)) % len(m.models)
	}

	selector := m.models[next]
	if err := m.ctrl.Select(selector); err != nil {
		m.statusBar, _ = m.statusBar.Update(status.NoticeMsg{Text: err.Error()})
		return *m, nil
	}
	m.counter = tokens.ForSelector(selector)
	m.statusBar, _ = m.statusBar.Update(status.SetModelMsg{Selector: selector})
	m.statusBar, _ = m.statusBar.Update(status.NoticeMsg{})
	m.updateTokens("")
	return *m, nil
}

func (m *chatModel) clearChat() (tea.Model, tea.Cmd) {
	if err := m.ctrl.Clear(); err != nil {
		m.statusBar, _ = m.statusBar.Update(status.NoticeMsg{Text: err.Error()})
		return *m, nil
	}
	m.cache = make(map[int]renderedEntry)
	m.refresh()
	m.updateTokens("")
	return *m, nil
}

func (m *chatModel) updateTokens(reply string) {
	ctxTokens := 0
	if m.ctrl.Session().Len() > 0 {
		ctxTokens = m.counter.CountMessages(m.ctrl.Session().Context())
	}
	m.statusBar, _ = m.statusBar.Update(status.UpdateTokensMsg{
		Context: ctxTokens,
		Reply:   m.counter.CountTokens(reply),
	})
}

func (m *chatModel) resetInput() {
	m.textarea.Reset()
	m.textarea.SetHeight(1)
	m.updateViewportHeight()
}
