package summarizer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/deusflow/ainews/internal/metrics"
	"github.com/deusflow/ainews/internal/ratelimit"
)

type GuardConfig struct {
	Provider string
	Timeout  time.Duration // per call, 0 disables
	Limiter  *ratelimit.AIRateLimiter
	Metrics  *metrics.Metrics
}

type guarded struct {
	next Client
	cfg  GuardConfig
}

// Guard wraps a provider so every call is rate limited, bounded by the
// configured timeout and reported as *Error on failure. Translations into the
// default language pass through without a provider call.
func Guard(next Client, cfg GuardConfig) Client {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Global
	}
	return &guarded{next: next, cfg: cfg}
}

func (g *guarded) Summarize(ctx context.Context, text, language string) (string, error) {
	out, err := g.call(ctx, "summarize", func(ctx context.Context) (string, error) {
		return g.next.Summarize(ctx, text, language)
	})
	if err != nil {
		g.cfg.Metrics.IncrementSummaryFailures()
		return "", err
	}
	g.cfg.Metrics.IncrementSummaries()
	return out, nil
}

func (g *guarded) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if IsDefaultLanguage(targetLanguage) || strings.TrimSpace(text) == "" {
		return text, nil
	}

	out, err := g.call(ctx, "translate", func(ctx context.Context) (string, error) {
		out, err := g.next.Translate(ctx, text, targetLanguage)
		if err != nil {
			return "", err
		}
		return SanitizeAIText(out), nil
	})
	g.cfg.Metrics.IncrementTranslations(err == nil)
	return out, err
}

func (g *guarded) WarmUp(ctx context.Context) error {
	_, err := g.call(ctx, "warmup", func(ctx context.Context) (string, error) {
		return "ok", g.next.WarmUp(ctx)
	})
	return err
}

func (g *guarded) call(ctx context.Context, op string, fn func(context.Context) (string, error)) (string, error) {
	if err := g.cfg.Limiter.Acquire(ctx, g.cfg.Provider); err != nil {
		return "", wrapErr(op, g.cfg.Provider, err)
	}
	g.cfg.Metrics.IncrementAIRequests()

	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	out, err := fn(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = errors.Join(ErrTimeout, err)
		}
		return "", wrapErr(op, g.cfg.Provider, err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", wrapErr(op, g.cfg.Provider, ErrEmptyResponse)
	}
	return out, nil
}
