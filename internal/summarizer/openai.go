package summarizer

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const ProviderOpenAI = "openai"

type OpenAIConfig struct {
	APIKey        string
	Model         string // defaults to gpt-4
	BaseURL       string // optional, for compatible endpoints
	MaxInputChars int
	HTTPClient    *http.Client
}

// OpenAI summarizes and translates with the chat completions API.
type OpenAI struct {
	client        *openai.Client
	model         string
	maxInputChars int
	configured    bool
}

var _ Client = (*OpenAI)(nil)

func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	} else {
		oc.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4
	}
	maxChars := cfg.MaxInputChars
	if maxChars <= 0 {
		maxChars = DefaultMaxInputChars
	}

	return &OpenAI{
		client:        openai.NewClientWithConfig(oc),
		model:         model,
		maxInputChars: maxChars,
		configured:    cfg.APIKey != "",
	}
}

func (o *OpenAI) Summarize(ctx context.Context, text, _ string) (string, error) {
	out, err := o.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: summaryPrompt(text, o.maxInputChars)},
	}, summaryMaxTokens, summaryTemperature)
	return out, wrapErr("summarize", ProviderOpenAI, err)
}

func (o *OpenAI) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	out, err := o.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: translateSystemPrompt(targetLanguage)},
		{Role: openai.ChatMessageRoleUser, Content: text},
	}, translateMaxTokens, translateTemp)
	return out, wrapErr("translate", ProviderOpenAI, err)
}

func (o *OpenAI) WarmUp(ctx context.Context) error {
	_, err := o.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: warmUpPrompt},
	}, warmUpMaxTokens, 0)
	if errors.Is(err, ErrEmptyResponse) {
		return nil
	}
	return wrapErr("warmup", ProviderOpenAI, err)
}

func (o *OpenAI) complete(ctx context.Context, messages []openai.ChatCompletionMessage, maxTokens int, temperature float32) (string, error) {
	if !o.configured {
		return "", ErrNotConfigured
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}
