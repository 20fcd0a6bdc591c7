package transport

import (
	"context"
	"net/http"

	"github.com/killallgit/ada/pkg/config"
	"github.com/killallgit/ada/pkg/provider"
)

// ChatCompletions streams from an OpenAI compatible endpoint. OpenAI and
// Groq both use it.
type ChatCompletions struct {
	provider  provider.Provider
	client    *http.Client
	url       string
	apiKey    string
	maxTokens int
}

type chatCompletionsRequest struct {
	Model     string        `json:"model"`
	Messages  []wireMessage `json:"messages"`
	Stream    bool          `json:"stream"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

func NewOpenAI(cfg config.ProviderConfig, client *http.Client) *ChatCompletions {
	return &ChatCompletions{
		provider: provider.OpenAI,
		client:   client,
		url:      cfg.BaseURL,
		apiKey:   cfg.APIKey,
	}
}

func NewGroq(cfg config.ProviderConfig, client *http.Client) *ChatCompletions {
	return &ChatCompletions{
		provider:  provider.Groq,
		client:    client,
		url:       cfg.BaseURL,
		apiKey:    cfg.APIKey,
		maxTokens: cfg.MaxTokens,
	}
}

func (c *ChatCompletions) Dispatch(ctx context.Context, req Request, emit Emitter) error {
	if c.apiKey == "" {
		return missingKey(c.provider)
	}

	body := chatCompletionsRequest{
		Model:     req.Model,
		Messages:  wireMessages(req.Messages),
		Stream:    true,
		MaxTokens: c.maxTokens,
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	return streamPost(ctx, c.client, c.provider, c.url, headers, body, emit)
}
