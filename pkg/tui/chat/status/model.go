package status

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/killallgit/ada/pkg/tui/theme"
)

// StatusModel represents the status bar component
type StatusModel struct {
	spinner      spinner.Model
	styles       *theme.Styles
	processState ProcessState
	selector     string
	notice       string
	timer        time.Duration // Elapsed time
	startTime    time.Time
	tokensCtx    int
	tokensReply  int
	isActive     bool
	width        int
}

// NewStatusModel creates a new status bar model
func NewStatusModel(selector string) StatusModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = s.Style.Foreground(theme.ColorPurple)

	return StatusModel{
		spinner:  s,
		styles:   theme.DefaultStyles(),
		selector: selector,
	}
}

func (m StatusModel) Active() bool {
	return m.isActive
}

func (m StatusModel) State() ProcessState {
	return m.processState
}
