package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/killallgit/ada/pkg/provider"
	"github.com/spf13/viper"
)

const selectionKey = "selected_model"

// Selection stores the chosen "provider:model" selector in its own small JSON
// file so that saving it never rewrites the main settings file.
type Selection struct {
	mu       sync.Mutex
	path     string
	v        *viper.Viper
	fallback string
}

// NewSelection reads path if it exists. fallback is used until something is
// selected.
func NewSelection(path, fallback string) (*Selection, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read selected model: %w", err)
	}

	if fallback == "" {
		fallback = DefaultSelector
	}
	return &Selection{path: path, v: v, fallback: fallback}, nil
}

func (s *Selection) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sel := s.v.GetString(selectionKey); sel != "" {
		return sel
	}
	return s.fallback
}

// Select validates selector and persists it.
func (s *Selection) Select(selector string) error {
	if _, err := provider.ParseSelector(selector); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	s.v.Set(selectionKey, selector)
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to save selected model: %w", err)
	}
	return nil
}
