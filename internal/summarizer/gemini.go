package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const ProviderGemini = "gemini"

type GeminiConfig struct {
	APIKey        string
	Model         string // defaults to gemini-1.5-flash
	MaxInputChars int
}

// Gemini summarizes and translates with Google's generative language API.
type Gemini struct {
	client        *genai.Client
	model         string
	maxInputChars int
}

var _ Client = (*Gemini)(nil)

func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrNotConfigured)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	maxChars := cfg.MaxInputChars
	if maxChars <= 0 {
		maxChars = DefaultMaxInputChars
	}
	return &Gemini{client: client, model: model, maxInputChars: maxChars}, nil
}

func (g *Gemini) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

func (g *Gemini) Summarize(ctx context.Context, text, _ string) (string, error) {
	// Collapse whitespace so the truncation budget goes to words.
	text = strings.Join(strings.Fields(text), " ")
	out, err := g.generate(ctx, summarySystemPrompt, summaryPrompt(text, g.maxInputChars), summaryMaxTokens, summaryTemperature)
	return out, wrapErr("summarize", ProviderGemini, err)
}

func (g *Gemini) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	out, err := g.generate(ctx, translateSystemPrompt(targetLanguage), text, translateMaxTokens, translateTemp)
	return out, wrapErr("translate", ProviderGemini, err)
}

func (g *Gemini) WarmUp(ctx context.Context) error {
	_, err := g.generate(ctx, "", warmUpPrompt, warmUpMaxTokens, 0)
	if err == ErrEmptyResponse {
		return nil
	}
	return wrapErr("warmup", ProviderGemini, err)
}

func (g *Gemini) generate(ctx context.Context, system, prompt string, maxTokens int32, temperature float32) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetMaxOutputTokens(maxTokens)
	model.SetTemperature(temperature)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return responseText(resp)
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
