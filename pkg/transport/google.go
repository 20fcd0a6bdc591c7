package transport

import (
	"context"
	"fmt"

	"github.com/killallgit/ada/pkg/chat"
	"github.com/killallgit/ada/pkg/config"
	"github.com/killallgit/ada/pkg/provider"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// GoogleDone is emitted after the last fragment of a Google response.
const GoogleDone = "[DONE]"

// ModelFactory builds the langchaingo model used for one Google request.
type ModelFactory func(ctx context.Context, apiKey, model string) (llms.Model, error)

// Google streams Gemini responses through langchaingo. Each text fragment is
// emitted as is, followed by GoogleDone.
type Google struct {
	apiKey   string
	newModel ModelFactory
}

func NewGoogle(cfg config.ProviderConfig, factory ModelFactory) *Google {
	if factory == nil {
		factory = newGoogleAIModel
	}
	return &Google{apiKey: cfg.APIKey, newModel: factory}
}

func newGoogleAIModel(ctx context.Context, apiKey, model string) (llms.Model, error) {
	return googleai.New(ctx, googleai.WithAPIKey(apiKey), googleai.WithDefaultModel(model))
}

func (g *Google) Dispatch(ctx context.Context, req Request, emit Emitter) error {
	if g.apiKey == "" {
		return missingKey(provider.Google)
	}

	model, err := g.newModel(ctx, g.apiKey, req.Model)
	if err != nil {
		return fmt.Errorf("%s: failed to create client: %w", provider.Google, err)
	}

	streamed := false
	resp, err := model.GenerateContent(ctx, googleContent(req.Messages),
		llms.WithModel(req.Model),
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if len(chunk) > 0 {
				streamed = true
				emit(string(chunk))
			}
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", provider.Google, err)
	}

	// Models that ignore the streaming option return the whole reply at once.
	if !streamed && resp != nil && len(resp.Choices) > 0 && resp.Choices[0].Content != "" {
		emit(resp.Choices[0].Content)
	}
	emit(GoogleDone)
	return nil
}

// googleContent sends user turns as user and everything else as model.
func googleContent(messages []chat.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		role := llms.ChatMessageTypeAI
		if m.Role == chat.RoleUser {
			role = llms.ChatMessageTypeHuman
		}
		out = append(out, llms.TextParts(role, m.Content))
	}
	return out
}
