package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// InitializeDefaults writes the default settings file and system prompt next
// to it. Existing files are left alone. Call it after Load so defaults are set.
func InitializeDefaults(cfgFile string) error {
	if cfgFile == "" {
		cfgFile = DefaultSettingsFile
	}

	if err := os.MkdirAll(filepath.Dir(cfgFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	for _, key := range persistedKeys {
		v.Set(key, viper.Get(key))
	}

	if err := v.SafeWriteConfigAs(cfgFile); err != nil {
		var exists viper.ConfigFileAlreadyExistsError
		if !errors.As(err, &exists) {
			return fmt.Errorf("error writing config: %w", err)
		}
	}

	promptFile := viper.GetString("system_prompt_file")
	if !filepath.IsAbs(promptFile) {
		promptFile = filepath.Join(filepath.Dir(cfgFile), promptFile)
	}
	if _, err := os.Stat(promptFile); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(promptFile, []byte(DefaultSystemPrompt), 0644); err != nil {
			return fmt.Errorf("failed to write system prompt: %w", err)
		}
	}
	return nil
}

// persistedKeys are the settings written to a fresh settings file. API keys
// are left out so values coming from the environment never land on disk.
var persistedKeys = []string{
	"context_window_size",
	"system_prompt_file",
	"providers.openai.base_url",
	"providers.openai.models",
	"providers.anthropic.base_url",
	"providers.anthropic.version",
	"providers.anthropic.max_tokens",
	"providers.anthropic.models",
	"providers.groq.base_url",
	"providers.groq.max_tokens",
	"providers.groq.models",
	"providers.google.models",
	"providers.local.server_address",
	"providers.local.models",
	"http.timeout",
	"history.backend",
	"history.file",
	"history.database",
	"stream.suppress_echo",
	"stream.regex_fallback",
	"render.style",
	"logging.log_file",
	"logging.persist",
	"logging.level",
}

// LoadSystemPrompt reads the system prompt file. A missing file yields the
// default prompt.
func LoadSystemPrompt(path string) (string, error) {
	if path == "" {
		return DefaultSystemPrompt, nil
	}
	data, err := os.ReadFile(ResolvePath(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultSystemPrompt, nil
		}
		return "", fmt.Errorf("failed to read system prompt: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func SaveSystemPrompt(path, prompt string) error {
	target := ResolvePath(path)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(target, []byte(prompt), 0644); err != nil {
		return fmt.Errorf("failed to write system prompt: %w", err)
	}
	return nil
}
