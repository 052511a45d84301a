// Package summarizer talks to text-generation providers to produce short news
// summaries and translations.
//
// Providers never retry: a failed call returns *Error and the caller decides
// what to substitute.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// DefaultLanguage needs no translation pass.
const DefaultLanguage = "English"

// DefaultMaxInputChars is the number of runes of article text sent to a provider.
const DefaultMaxInputChars = 1000

var (
	ErrEmptyResponse = errors.New("empty response")
	ErrTimeout       = errors.New("provider call timed out")
	ErrNotConfigured = errors.New("provider not configured")
)

// Client is a summarization and translation provider.
type Client interface {
	// Summarize returns a 2-3 sentence summary of text. Built-in providers
	// summarize in English; use SummarizeIn to get the summary in language.
	Summarize(ctx context.Context, text, language string) (string, error)
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
	// WarmUp sends a minimal request to establish the provider connection.
	WarmUp(ctx context.Context) error
}

// Error is returned by every failed provider operation.
type Error struct {
	Op       string // summarize, translate or warmup
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrapErr(op, provider string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, Provider: provider, Err: err}
}

// IsDefaultLanguage reports whether language needs no translation.
func IsDefaultLanguage(language string) bool {
	language = strings.TrimSpace(language)
	return language == "" || strings.EqualFold(language, DefaultLanguage)
}

// Truncate clips text to at most n runes. n <= 0 leaves text unchanged.
func Truncate(text string, n int) string {
	if n <= 0 {
		return text
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}

// SummarizeIn summarizes text and translates the summary into language when
// it is not the default. A failed translation keeps the untranslated summary.
func SummarizeIn(ctx context.Context, c Client, text, language string, log *slog.Logger) (string, error) {
	summary, err := c.Summarize(ctx, text, language)
	if err != nil {
		return "", err
	}
	if IsDefaultLanguage(language) {
		return summary, nil
	}

	translated, err := c.Translate(ctx, summary, language)
	if err != nil {
		if log != nil {
			log.Warn("summary translation failed, keeping original", "language", language, "error", err)
		}
		return summary, nil
	}
	return translated, nil
}
