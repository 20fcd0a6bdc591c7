package provider

import (
	"errors"
	"fmt"
	"strings"
)

// Provider tags a model backend. The tag doubles as the name of the event
// topic its transport publishes raw chunks on.
type Provider string

const (
	OpenAI    Provider = "openai"
	Anthropic Provider = "anthropic"
	Groq      Provider = "groq"
	Google    Provider = "google"
	Local     Provider = "local"
)

var (
	ErrUnknownProvider = errors.New("unknown provider")
	ErrInvalidSelector = errors.New("invalid model selector")
)

// All lists the known providers in display order.
func All() []Provider {
	return []Provider{OpenAI, Anthropic, Groq, Google, Local}
}

func (p Provider) String() string {
	return string(p)
}

// Title is the human name used in error messages, e.g. "OpenAI API key is not set."
func (p Provider) Title() string {
	switch p {
	case OpenAI:
		return "OpenAI"
	case Anthropic:
		return "Anthropic"
	case Groq:
		return "Groq"
	case Google:
		return "Google"
	case Local:
		return "Local"
	default:
		return string(p)
	}
}

func (p Provider) Valid() bool {
	for _, known := range All() {
		if p == known {
			return true
		}
	}
	return false
}

func Parse(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
	}
	return p, nil
}

// Selector is a "provider:model" pair. Model names may themselves contain
// colons (llama3.2:1b), so only the first colon separates the two.
type Selector struct {
	Provider Provider
	Model    string
}

func (s Selector) String() string {
	return string(s.Provider) + ":" + s.Model
}

func ParseSelector(selector string) (Selector, error) {
	name, model, ok := strings.Cut(strings.TrimSpace(selector), ":")
	if !ok || model == "" {
		return Selector{}, fmt.Errorf("%w: %q", ErrInvalidSelector, selector)
	}
	p, err := Parse(name)
	if err != nil {
		return Selector{}, err
	}
	return Selector{Provider: p, Model: model}, nil
}
