package controllers

// State is where the current turn is in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateSending
	StateStreaming
	StateFinalizing
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateFinalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

// Outcome reports what Submit did with an input line.
type Outcome int

const (
	// OutcomeIgnored means the input was blank.
	OutcomeIgnored Outcome = iota
	// OutcomeQuit means the user asked to leave.
	OutcomeQuit
	// OutcomeBusy means a turn is already in flight.
	OutcomeBusy
	// OutcomeSent means a dispatch was started.
	OutcomeSent
	// OutcomeFailed means the turn could not be started. The error is on
	// the sink already.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeQuit:
		return "quit"
	case OutcomeBusy:
		return "busy"
	case OutcomeSent:
		return "sent"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}
