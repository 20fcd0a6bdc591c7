package transport

import (
	"context"
	"net/http"
	"strings"

	"github.com/killallgit/ada/pkg/chat"
	"github.com/killallgit/ada/pkg/config"
	"github.com/killallgit/ada/pkg/provider"
)

const (
	defaultAnthropicVersion   = "2023-06-01"
	defaultAnthropicMaxTokens = 1024
)

// Anthropic streams from the Messages API.
type Anthropic struct {
	client    *http.Client
	url       string
	apiKey    string
	version   string
	maxTokens int
}

type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Stream    bool          `json:"stream"`
	System    string        `json:"system,omitempty"`
	Messages  []wireMessage `json:"messages"`
}

func NewAnthropic(cfg config.ProviderConfig, client *http.Client) *Anthropic {
	a := &Anthropic{
		client:    client,
		url:       cfg.BaseURL,
		apiKey:    cfg.APIKey,
		version:   cfg.Version,
		maxTokens: cfg.MaxTokens,
	}
	if a.version == "" {
		a.version = defaultAnthropicVersion
	}
	if a.maxTokens <= 0 {
		a.maxTokens = defaultAnthropicMaxTokens
	}
	return a
}

func (a *Anthropic) Dispatch(ctx context.Context, req Request, emit Emitter) error {
	if a.apiKey == "" {
		return missingKey(provider.Anthropic)
	}

	system, messages := anthropicMessages(req.Messages)
	body := anthropicRequest{
		Model:     req.Model,
		MaxTokens: a.maxTokens,
		Stream:    true,
		System:    system,
		Messages:  messages,
	}
	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": a.version,
	}
	return streamPost(ctx, a.client, provider.Anthropic, a.url, headers, body, emit)
}

// anthropicMessages lifts system messages into the top-level system field.
// Every other role is sent as user or assistant.
func anthropicMessages(messages []chat.Message) (string, []wireMessage) {
	var system []string
	out := make([]wireMessage, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case chat.RoleSystem:
			system = append(system, m.Content)
		case chat.RoleUser:
			out = append(out, wireMessage{Role: chat.RoleUser, Content: m.Content})
		default:
			out = append(out, wireMessage{Role: chat.RoleAssistant, Content: m.Content})
		}
	}
	return strings.Join(system, "\n\n"), out
}
