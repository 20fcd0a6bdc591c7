package status

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m StatusModel) Update(msg tea.Msg) (StatusModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.isActive {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StartStreamingMsg:
		m.isActive = true
		m.startTime = time.Now()
		m.timer = 0
		m.notice = ""
		m.tokensReply = 0
		m.processState = StateSending
		return m, tea.Batch(
			m.spinner.Tick,
			tickEvery(),
		)

	case SetProcessStateMsg:
		m.processState = msg.State
		return m, nil

	case StopStreamingMsg:
		m.isActive = false
		m.processState = StateIdle
		m.timer = 0
		return m, nil

	case UpdateTokensMsg:
		m.tokensCtx = msg.Context
		m.tokensReply = msg.Reply
		return m, nil

	case SetModelMsg:
		m.selector = msg.Selector
		return m, nil

	case NoticeMsg:
		m.notice = msg.Text
		return m, nil

	case TickMsg:
		if m.isActive {
			m.timer = time.Since(m.startTime)
			return m, tickEvery()
		}
		return m, nil
	}

	return m, nil
}

// tickEvery returns a command that sends a tick message every second
func tickEvery() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
