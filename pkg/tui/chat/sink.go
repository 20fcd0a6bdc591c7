package chat

import (
	"sync"

	"github.com/killallgit/ada/pkg/display"
)

// Sink is the display.Sink behind the chat view. The view reads its
// transcript on every refresh.
type Sink struct {
	display.Transcript

	mu     sync.Mutex
	scroll bool
}

func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) ScrollToLatest() {
	s.mu.Lock()
	s.scroll = true
	s.mu.Unlock()
}

// takeScroll reports and clears a pending scroll request.
func (s *Sink) takeScroll() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.scroll
	s.scroll = false
	return pending
}

var _ display.Sink = (*Sink)(nil)
