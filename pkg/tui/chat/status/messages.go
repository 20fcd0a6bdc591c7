package status

import "time"

// ProcessState represents the current processing state
type ProcessState string

const (
	StateIdle      ProcessState = ""
	StateSending   ProcessState = "sending"
	StateReceiving ProcessState = "receiving"
)

// Icon is the arrow shown next to the spinner.
func (s ProcessState) Icon() string {
	switch s {
	case StateSending:
		return "↑"
	case StateReceiving:
		return "↓"
	default:
		return ""
	}
}

func (s ProcessState) DisplayName() string {
	switch s {
	case StateSending:
		return "Sending"
	case StateReceiving:
		return "Streaming"
	default:
		return ""
	}
}

// StartStreamingMsg indicates a turn has been dispatched
type StartStreamingMsg struct{}

// SetProcessStateMsg sets the current process state and icon
type SetProcessStateMsg struct {
	State ProcessState
}

// StopStreamingMsg indicates the turn has ended
type StopStreamingMsg struct{}

// UpdateTokensMsg replaces the token counts
type UpdateTokensMsg struct {
	Context int
	Reply   int
}

// SetModelMsg shows the active selector
type SetModelMsg struct {
	Selector string
}

// NoticeMsg shows a short note until the next turn starts
type NoticeMsg struct {
	Text string
}

// TickMsg updates the timer
type TickMsg time.Time
