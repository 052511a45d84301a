package summarizer

import (
	"context"
	"fmt"
)

type ProviderConfig struct {
	Provider string // openai, gemini or cohere
	OpenAI   OpenAIConfig
	Gemini   GeminiConfig
	Cohere   CohereConfig
}

// NewProvider builds the configured provider. The returned close function
// releases provider resources and is never nil.
func NewProvider(ctx context.Context, cfg ProviderConfig) (Client, func(), error) {
	noop := func() {}

	switch cfg.Provider {
	case "", ProviderOpenAI:
		return NewOpenAI(cfg.OpenAI), noop, nil
	case ProviderGemini:
		if cfg.Gemini.APIKey == "" {
			// Without a key every call fails with ErrNotConfigured.
			return unavailable{err: ErrNotConfigured}, noop, nil
		}
		g, err := NewGemini(ctx, cfg.Gemini)
		if err != nil {
			return nil, noop, err
		}
		return g, g.Close, nil
	case ProviderCohere:
		return NewCohere(cfg.Cohere), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown summarizer provider %q", cfg.Provider)
	}
}

// unavailable fails every call with err.
type unavailable struct{ err error }

func (u unavailable) Summarize(context.Context, string, string) (string, error) { return "", u.err }
func (u unavailable) Translate(context.Context, string, string) (string, error) { return "", u.err }
func (u unavailable) WarmUp(context.Context) error                             { return u.err }
