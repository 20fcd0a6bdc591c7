package history

import (
	"sync"

	"github.com/killallgit/ada/pkg/chat"
)

// Store persists the full chat history. Save is always called with every
// message, never a delta.
type Store interface {
	Load() ([]chat.Message, error)
	Save(messages []chat.Message) error
}

// MemoryStore keeps history in memory. Used by tests and by --no-history runs.
type MemoryStore struct {
	mu       sync.RWMutex
	messages []chat.Message
	saves    int
	err      error
}

func NewMemoryStore(initial ...chat.Message) *MemoryStore {
	return &MemoryStore{messages: copyMessages(initial)}
}

func (s *MemoryStore) Load() ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyMessages(s.messages), nil
}

func (s *MemoryStore) Save(messages []chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.messages = copyMessages(messages)
	s.saves++
	return nil
}

// FailWith makes every following Save return err. Pass nil to recover.
func (s *MemoryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Saves reports how many successful saves happened.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func copyMessages(messages []chat.Message) []chat.Message {
	result := make([]chat.Message, len(messages))
	copy(result, messages)
	return result
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*JSONStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
