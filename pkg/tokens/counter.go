package tokens

import (
	"strings"
	"sync"

	"github.com/killallgit/ada/pkg/chat"
	"github.com/killallgit/ada/pkg/logger"
	"github.com/pkoukk/tiktoken-go"
)

const defaultEncoding = "cl100k_base"

var log = logger.WithComponent("tokens")

// TokenCounter counts tokens for the status line. Counts are exact for
// OpenAI models and a close estimate for everything else.
type TokenCounter struct {
	encoder *tiktoken.Tiktoken
	mu      sync.RWMutex
}

// NewTokenCounter creates a token counter for modelName. When no encoding
// can be loaded the counter falls back to a character based estimate.
func NewTokenCounter(modelName string) *TokenCounter {
	encodingName := getEncodingForModel(modelName)

	encoder, err := tiktoken.GetEncoding(encodingName)
	if err != nil && encodingName != defaultEncoding {
		encoder, err = tiktoken.GetEncoding(defaultEncoding)
	}
	if err != nil {
		log.Debug("token encoding unavailable, estimating", "model", modelName, "error", err)
		return &TokenCounter{}
	}

	return &TokenCounter{
		encoder: encoder,
	}
}

// ForSelector creates a counter for the model half of a "provider:model"
// selector.
func ForSelector(selector string) *TokenCounter {
	_, model, found := strings.Cut(selector, ":")
	if !found {
		model = selector
	}
	return NewTokenCounter(model)
}

// Exact reports whether counts come from a real encoding.
func (tc *TokenCounter) Exact() bool {
	return tc.encoder != nil
}

// CountTokens counts the number of tokens in the given text
func (tc *TokenCounter) CountTokens(text string) int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.count(text)
}

// CountMessages counts tokens for a conversation, including the per-message
// framing most chat models add.
func (tc *TokenCounter) CountMessages(messages []chat.Message) int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	totalTokens := 0
	for _, msg := range messages {
		totalTokens += tc.count(msg.Role) + tc.count(msg.Content) + 4
	}

	// Every reply is primed with assistant
	totalTokens += 3

	return totalTokens
}

func (tc *TokenCounter) count(text string) int {
	if tc.encoder == nil {
		return estimateTokens(text)
	}
	return len(tc.encoder.Encode(text, nil, nil))
}

// getEncodingForModel returns the appropriate encoding for a model
func getEncodingForModel(modelName string) string {
	modelLower := strings.ToLower(modelName)

	if strings.Contains(modelLower, "gpt-4o") {
		return "o200k_base"
	}

	if strings.Contains(modelLower, "gpt-4") || strings.Contains(modelLower, "gpt-3.5") {
		return "cl100k_base"
	}

	// Older GPT-3 models
	if strings.Contains(modelLower, "davinci") || strings.Contains(modelLower, "curie") {
		return "p50k_base"
	}

	// cl100k_base is close enough for Claude, Gemini, Llama and Mixtral
	return defaultEncoding
}

// estimateTokens takes the larger of one token per word and one token per
// four characters.
func estimateTokens(text string) int {
	wordEstimate := len(strings.Fields(text))
	charEstimate := len(text) / 4

	if wordEstimate > charEstimate {
		return wordEstimate
	}
	return charEstimate
}
