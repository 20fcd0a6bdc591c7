package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/killallgit/ada/pkg/chat"
)

// JSONStore writes the history as a JSON array to a single file.
type JSONStore struct {
	mu       sync.Mutex
	filePath string
}

// NewJSONStore creates the parent directory and an empty history file when
// none exists yet.
func NewJSONStore(filePath string) (*JSONStore, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	s := &JSONStore{filePath: filePath}
	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		if err := s.Save(nil); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *JSONStore) Path() string {
	return s.filePath
}

func (s *JSONStore) Load() ([]chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []chat.Message{}, nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	if len(data) == 0 {
		return []chat.Message{}, nil
	}

	var messages []chat.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	if messages == nil {
		messages = []chat.Message{}
	}
	return messages, nil
}

// Save replaces the file contents under the history lock.
func (s *JSONStore) Save(messages []chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if messages == nil {
		messages = []chat.Message{}
	}

	data, err := json.MarshalIndent(messages, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if err := atomicWrite(s.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	return nil
}
