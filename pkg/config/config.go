package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/killallgit/ada/pkg/provider"
	"github.com/spf13/viper"
)

const (
	DefaultSettingsDir  = ".ada"
	DefaultSettingsFile = ".ada/settings.yaml"
	DefaultSelector     = "openai:gpt-4o"
	DefaultSystemPrompt = "You are *Ada*, a **helpful** AI assistant.\nFeel free to ask me anything!"
)

// Config represents the application configuration
type Config struct {
	SelectedModel     string          `mapstructure:"selected_model"`
	ContextWindowSize int             `mapstructure:"context_window_size"`
	SystemPromptFile  string          `mapstructure:"system_prompt_file"`
	Providers         ProvidersConfig `mapstructure:"providers"`
	HTTP              HTTPConfig      `mapstructure:"http"`
	History           HistoryConfig   `mapstructure:"history"`
	Stream            StreamConfig    `mapstructure:"stream"`
	Render            RenderConfig    `mapstructure:"render"`
	Logging           LoggingConfig   `mapstructure:"logging"`
}

type ProvidersConfig struct {
	OpenAI    ProviderConfig `mapstructure:"openai"`
	Anthropic ProviderConfig `mapstructure:"anthropic"`
	Groq      ProviderConfig `mapstructure:"groq"`
	Google    ProviderConfig `mapstructure:"google"`
	Local     ProviderConfig `mapstructure:"local"`
}

// ProviderConfig holds one provider's credentials and model list. Not every
// field applies to every provider.
type ProviderConfig struct {
	APIKey        string   `mapstructure:"api_key"`
	BaseURL       string   `mapstructure:"base_url"`
	ServerAddress string   `mapstructure:"server_address"`
	Version       string   `mapstructure:"version"`
	MaxTokens     int      `mapstructure:"max_tokens"`
	Models        []string `mapstructure:"models"`
}

type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type HistoryConfig struct {
	Backend  string `mapstructure:"backend"`
	File     string `mapstructure:"file"`
	Database string `mapstructure:"database"`
}

type StreamConfig struct {
	SuppressEcho  bool `mapstructure:"suppress_echo"`
	RegexFallback bool `mapstructure:"regex_fallback"`
}

type RenderConfig struct {
	Style string `mapstructure:"style"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	LogFile string `mapstructure:"log_file"`
	Persist bool   `mapstructure:"persist"`
	Level   string `mapstructure:"level"`
}

var cfg *Config

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		panic("config not initialized")
	}
	return cfg
}

// Provider returns the settings block for p.
func (c *Config) Provider(p provider.Provider) ProviderConfig {
	switch p {
	case provider.OpenAI:
		return c.Providers.OpenAI
	case provider.Anthropic:
		return c.Providers.Anthropic
	case provider.Groq:
		return c.Providers.Groq
	case provider.Google:
		return c.Providers.Google
	case provider.Local:
		return c.Providers.Local
	default:
		return ProviderConfig{}
	}
}

// Models lists every configured "provider:model" selector in provider order.
func (c *Config) Models() []string {
	var selectors []string
	for _, p := range provider.All() {
		for _, model := range c.Provider(p).Models {
			model = strings.TrimSpace(model)
			if model == "" {
				continue
			}
			selectors = append(selectors, provider.Selector{Provider: p, Model: model}.String())
		}
	}
	return selectors
}

// Load loads configuration from file and environment
func Load(cfgFile string) (*Config, error) {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("./" + DefaultSettingsDir)
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "ada"))
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("settings")
	}

	viper.SetEnvPrefix("ADA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	bindEnvironmentVariables()

	if err := viper.ReadInConfig(); err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	loaded, err := unmarshal()
	if err != nil {
		return nil, err
	}
	cfg = loaded
	return cfg, nil
}

// isNotFound treats both viper's search miss and a missing explicit file as
// "no config yet".
func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	return errors.Is(err, fs.ErrNotExist)
}

func unmarshal() (*Config, error) {
	c := &Config{}
	if err := viper.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	processDurations(c)
	return c, nil
}

// Watch reloads the configuration whenever the settings file changes and
// hands the new value to onChange.
func Watch(onChange func(*Config)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		loaded, err := unmarshal()
		if err != nil {
			return
		}
		cfg = loaded
		if onChange != nil {
			onChange(loaded)
		}
	})
	viper.WatchConfig()
}

func setDefaults() {
	viper.SetDefault("selected_model", DefaultSelector)
	viper.SetDefault("context_window_size", 10)
	viper.SetDefault("system_prompt_file", "system_prompt.txt")

	viper.SetDefault("providers.openai.api_key", "")
	viper.SetDefault("providers.openai.base_url", "https://api.openai.com/v1/chat/completions")
	viper.SetDefault("providers.openai.models", []string{"gpt-4o", "gpt-4o-mini"})

	viper.SetDefault("providers.anthropic.api_key", "")
	viper.SetDefault("providers.anthropic.base_url", "https://api.anthropic.com/v1/messages")
	viper.SetDefault("providers.anthropic.version", "2023-06-01")
	viper.SetDefault("providers.anthropic.max_tokens", 1024)
	viper.SetDefault("providers.anthropic.models", []string{
		"claude-3-5-sonnet-20240620",
		"claude-3-opus-20240229",
		"claude-3-haiku-20240307",
	})

	viper.SetDefault("providers.groq.api_key", "")
	viper.SetDefault("providers.groq.base_url", "https://api.groq.com/openai/v1/chat/completions")
	viper.SetDefault("providers.groq.max_tokens", 1024)
	viper.SetDefault("providers.groq.models", []string{
		"llama-3.2-90b-vision-preview",
		"llama-3.2-11b-vision-preview",
		"mixtral-8x7b-32768",
	})

	viper.SetDefault("providers.google.api_key", "")
	viper.SetDefault("providers.google.models", []string{"gemini-1.5-flash", "gemini-1.5-pro"})

	viper.SetDefault("providers.local.server_address", "http://localhost:11434/api/chat")
	viper.SetDefault("providers.local.models", []string{"llama3.2", "llama3.2:1b"})

	viper.SetDefault("http.timeout", "120s")

	viper.SetDefault("history.backend", "json")
	viper.SetDefault("history.file", "chat_history.json")
	viper.SetDefault("history.database", "history.db")

	viper.SetDefault("stream.suppress_echo", false)
	viper.SetDefault("stream.regex_fallback", false)

	viper.SetDefault("render.style", "dark")

	viper.SetDefault("logging.log_file", "system.log")
	viper.SetDefault("logging.persist", true)
	viper.SetDefault("logging.level", "info")
}

// bindEnvironmentVariables maps the conventional provider key variables onto
// config keys, next to the ADA_ prefixed forms AutomaticEnv already handles.
func bindEnvironmentVariables() {
	viper.BindEnv("providers.openai.api_key", "ADA_PROVIDERS_OPENAI_API_KEY", "OPENAI_API_KEY")
	viper.BindEnv("providers.anthropic.api_key", "ADA_PROVIDERS_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	viper.BindEnv("providers.groq.api_key", "ADA_PROVIDERS_GROQ_API_KEY", "GROQ_API_KEY")
	viper.BindEnv("providers.google.api_key", "ADA_PROVIDERS_GOOGLE_API_KEY", "GOOGLE_API_KEY")
	viper.BindEnv("providers.local.server_address", "ADA_PROVIDERS_LOCAL_SERVER_ADDRESS", "OLLAMA_CHAT_URL")
}

func processDurations(c *Config) {
	if c.HTTP.Timeout <= 0 {
		c.HTTP.Timeout = 120 * time.Second
	}
}
