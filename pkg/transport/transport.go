// Package transport sends a conversation to a provider and hands back the
// undecoded response body in the order it arrives.
package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/killallgit/ada/pkg/chat"
	"github.com/killallgit/ada/pkg/logger"
	"github.com/killallgit/ada/pkg/provider"
)

var log = logger.WithComponent("transport")

// ErrMissingAPIKey is wrapped by the error returned when a provider that
// needs a key has none configured.
var ErrMissingAPIKey = errors.New("API key is not set.")

// Request is one turn's payload.
type Request struct {
	Model    string
	Messages []chat.Message
}

// Emitter receives each raw fragment of the response body.
type Emitter func(raw string)

// Dispatcher streams one request. It returns once the body has ended, with a
// non-nil error if the request failed.
type Dispatcher interface {
	Dispatch(ctx context.Context, req Request, emit Emitter) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, req Request, emit Emitter) error

func (f DispatcherFunc) Dispatch(ctx context.Context, req Request, emit Emitter) error {
	return f(ctx, req, emit)
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Provider provider.Provider
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.Code, e.Body)
}

func missingKey(p provider.Provider) error {
	return fmt.Errorf("%s %w", p.Title(), ErrMissingAPIKey)
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func wireMessages(messages []chat.Message) []wireMessage {
	out := make([]wireMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, wireMessage{Role: m.Role, Content: m.Content})
	}
	return out
}
