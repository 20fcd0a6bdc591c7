package transport

import (
	"context"
	"net/http"

	"github.com/killallgit/ada/pkg/config"
	"github.com/killallgit/ada/pkg/provider"
)

// Local streams from an Ollama style chat endpoint. No key is needed.
type Local struct {
	client *http.Client
	url    string
}

type localRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

func NewLocal(cfg config.ProviderConfig, client *http.Client) *Local {
	return &Local{client: client, url: cfg.ServerAddress}
}

func (l *Local) Dispatch(ctx context.Context, req Request, emit Emitter) error {
	body := localRequest{
		Model:    req.Model,
		Messages: wireMessages(req.Messages),
		Stream:   true,
	}
	return streamPost(ctx, l.client, provider.Local, l.url, nil, body, emit)
}
