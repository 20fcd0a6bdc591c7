// Package stream tracks the assistant text of one turn and mirrors it onto
// a display sink.
package stream

import (
	"errors"

	"github.com/killallgit/ada/pkg/display"
)

var ErrHandleExists = errors.New("stream already has a display handle")

// State is the per-turn streaming state. The controller owns exactly one.
type State struct {
	Text               Accumulator
	LastRenderedLength int
	Handle             display.Handle
	Carry              string
	Finalized          bool

	// sawText is set once the first non-empty delta has been appended.
	sawText bool
}

// Attach records the display handle for this turn. A turn has at most one.
func (s *State) Attach(h display.Handle) error {
	if s.Handle != nil {
		return ErrHandleExists
	}
	s.Handle = h
	return nil
}

// FirstDelta reports whether no text has been appended yet this turn.
func (s *State) FirstDelta() bool {
	return !s.sawText
}

// Append adds a decoded delta to the accumulated text.
func (s *State) Append(delta string) int {
	if delta != "" {
		s.sawText = true
	}
	return s.Text.Append(delta)
}

func (s *State) Reset() {
	s.Text.Reset()
	s.LastRenderedLength = 0
	s.Handle = nil
	s.Carry = ""
	s.Finalized = false
	s.sawText = false
}
