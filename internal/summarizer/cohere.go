package summarizer

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

const ProviderCohere = "cohere"

type CohereConfig struct {
	APIKey        string
	Model         string // defaults to command-r
	MaxInputChars int
	HTTPClient    *http.Client
}

// Cohere summarizes and translates with the Cohere chat endpoint.
type Cohere struct {
	client        *cohereclient.Client
	model         string
	maxInputChars int
	configured    bool
}

var _ Client = (*Cohere)(nil)

func NewCohere(cfg CohereConfig) *Cohere {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	model := cfg.Model
	if model == "" {
		model = "command-r"
	}
	maxChars := cfg.MaxInputChars
	if maxChars <= 0 {
		maxChars = DefaultMaxInputChars
	}

	return &Cohere{
		client: cohereclient.NewClient(
			cohereclient.WithToken(cfg.APIKey),
			cohereclient.WithHTTPClient(httpClient),
		),
		model:         model,
		maxInputChars: maxChars,
		configured:    cfg.APIKey != "",
	}
}

func (c *Cohere) Summarize(ctx context.Context, text, _ string) (string, error) {
	out, err := c.chat(ctx, summarySystemPrompt, summaryPrompt(text, c.maxInputChars), summaryMaxTokens, summaryTemperature)
	return out, wrapErr("summarize", ProviderCohere, err)
}

func (c *Cohere) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	out, err := c.chat(ctx, translateSystemPrompt(targetLanguage), text, translateMaxTokens, translateTemp)
	return out, wrapErr("translate", ProviderCohere, err)
}

func (c *Cohere) WarmUp(ctx context.Context) error {
	_, err := c.chat(ctx, "", warmUpPrompt, warmUpMaxTokens, 0)
	if errors.Is(err, ErrEmptyResponse) {
		return nil
	}
	return wrapErr("warmup", ProviderCohere, err)
}

func (c *Cohere) chat(ctx context.Context, preamble, message string, maxTokens int, temperature float64) (string, error) {
	if !c.configured {
		return "", ErrNotConfigured
	}

	req := &cohere.ChatRequest{
		Message:     message,
		Model:       &c.model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	}
	if preamble != "" {
		req.Preamble = &preamble
	}

	resp, err := c.client.Chat(ctx, req)
	if err != nil {
		return "", err
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Text), nil
}
