package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/deusflow/ainews/internal/aggregator"
	"github.com/deusflow/ainews/internal/cache"
	"github.com/deusflow/ainews/internal/config"
	"github.com/deusflow/ainews/internal/logger"
	"github.com/deusflow/ainews/internal/news"
	"github.com/deusflow/ainews/internal/newsapi"
	"github.com/deusflow/ainews/internal/ratelimit"
	"github.com/deusflow/ainews/internal/retry"
	"github.com/deusflow/ainews/internal/rss"
	"github.com/deusflow/ainews/internal/scraper"
	"github.com/deusflow/ainews/internal/summarizer"
	"github.com/deusflow/ainews/internal/telegram"
)

// Build assembles an App from configuration. The returned close function
// releases provider resources and is never nil.
func Build(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	retryCfg := retry.RetryConfig{
		MaxAttempts: cfg.RetryAttempts,
		Delay:       cfg.RetryDelay,
		Backoff:     true,
	}

	provider, closeFn, err := summarizer.NewProvider(ctx, summarizer.ProviderConfig{
		Provider: cfg.Provider,
		OpenAI: summarizer.OpenAIConfig{
			APIKey:        cfg.OpenAIAPIKey,
			Model:         cfg.OpenAIModel,
			MaxInputChars: cfg.MaxInputChars,
		},
		Gemini: summarizer.GeminiConfig{
			APIKey:        cfg.GeminiAPIKey,
			Model:         cfg.GeminiModel,
			MaxInputChars: cfg.MaxInputChars,
		},
		Cohere: summarizer.CohereConfig{
			APIKey:        cfg.CohereAPIKey,
			Model:         cfg.CohereModel,
			MaxInputChars: cfg.MaxInputChars,
		},
	})
	if err != nil {
		return nil, closeFn, fmt.Errorf("summarizer: %w", err)
	}

	var limiter *ratelimit.AIRateLimiter
	if cfg.MaxAIRequests > 0 || cfg.AIRequestsPerSecond > 0 {
		limiter = ratelimit.NewAIRateLimiter(ratelimit.Limits{
			Total:     cfg.MaxAIRequests,
			PerSecond: cfg.AIRequestsPerSecond,
			Burst:     1,
		})
	}

	client := summarizer.Guard(provider, summarizer.GuardConfig{
		Provider: cfg.Provider,
		Timeout:  cfg.RequestTimeout,
		Limiter:  limiter,
	})

	summaries := cache.New(cfg.CacheCapacity)
	processor := news.NewProcessor(client, summaries, news.Policy{
		MinContentLength: cfg.MinContentLength,
		MinSummaryLength: cfg.MinSummaryLength,
		MaxInputChars:    cfg.MaxInputChars,
	}, logger.With("processor"))

	batcher := aggregator.New(processor, client, aggregator.Options{
		MaxConcurrency: cfg.MaxConcurrency,
		WarmUp:         cfg.WarmUp,
	}, logger.With("aggregator"))

	source, err := buildSource(cfg, retryCfg, logger.With("feed"))
	if err != nil {
		return nil, closeFn, err
	}

	var publisher Publisher
	if cfg.TelegramEnabled() {
		publisher = telegram.New(cfg.TelegramToken, cfg.TelegramChatID, retryCfg, logger.With("telegram"))
	}

	return New(source, batcher, publisher, summaries, cfg.PageSize, logger.With("app")), closeFn, nil
}

func buildSource(cfg *config.Config, retryCfg retry.RetryConfig, log *slog.Logger) (Source, error) {
	switch cfg.FeedSource {
	case "rss":
		feeds, err := rss.LoadFeeds(cfg.FeedsConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load feeds: %w", err)
		}
		var enricher rss.Enricher
		if cfg.ScrapeMissing {
			enricher = scraper.New(&http.Client{Timeout: 15 * time.Second}, cfg.ScrapeConcurrency, log)
		}
		return rss.NewSource(feeds, enricher, log), nil
	default:
		return newsapi.New(newsapi.Config{
			APIKey:  cfg.NewsAPIKey,
			BaseURL: cfg.NewsAPIBaseURL,
			Retry:   retryCfg,
		}, log), nil
	}
}
