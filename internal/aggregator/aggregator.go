// Package aggregator fans a batch of articles out to the per-article
// processor and joins the records back in input order.
package aggregator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/deusflow/ainews/internal/metrics"
	"github.com/deusflow/ainews/internal/news"
)

var (
	ErrNoArticles = errors.New("no articles")
	ErrAllFailed  = errors.New("all articles failed")
)

const (
	MessageNoArticles = "No news articles found for this category. Please try another category."
	MessageAllFailed  = "Error processing news articles. Please try again later."
)

// Processor handles a single article; *news.Processor implements it.
// Process must not panic or block forever.
type Processor interface {
	Process(ctx context.Context, article news.RawArticle, language string) news.Record
}

// Warmer opens the provider connection before fan-out.
type Warmer interface {
	WarmUp(ctx context.Context) error
}

type Options struct {
	// MaxConcurrency bounds in-flight articles; 0 runs one task per article.
	MaxConcurrency int
	WarmUp         bool
}

type BatchResult struct {
	Records   []news.Record `json:"records"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Err       error         `json:"-"`
}

// Message returns the user-facing text for a batch-level condition, or "".
func (r BatchResult) Message() string {
	switch {
	case errors.Is(r.Err, ErrNoArticles):
		return MessageNoArticles
	case errors.Is(r.Err, ErrAllFailed):
		return MessageAllFailed
	}
	return ""
}

type Aggregator struct {
	processor Processor
	warmer    Warmer
	opts      Options
	log       *slog.Logger
	metrics   *metrics.Metrics
}

// New creates an Aggregator. warmer may be nil.
func New(processor Processor, warmer Warmer, opts Options, log *slog.Logger) *Aggregator {
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{
		processor: processor,
		warmer:    warmer,
		opts:      opts,
		log:       log,
		metrics:   metrics.Global,
	}
}

func (a *Aggregator) WithMetrics(m *metrics.Metrics) *Aggregator {
	a.metrics = m
	return a
}

// Aggregate processes every article concurrently. Records keep the order of
// articles no matter which task finishes first; a failing article never
// cancels its siblings.
func (a *Aggregator) Aggregate(ctx context.Context, articles []news.RawArticle, language string) BatchResult {
	if len(articles) == 0 {
		a.log.Warn("empty batch, nothing to process", "language", language)
		return BatchResult{Err: ErrNoArticles}
	}

	start := time.Now()
	a.metrics.IncrementBatches()

	if a.opts.WarmUp && a.warmer != nil {
		if err := a.warmer.WarmUp(ctx); err != nil {
			a.log.Warn("warm-up request failed", "error", err)
		}
	}

	records := make([]news.Record, len(articles))

	// Tasks never return an error, so the group's context is never cancelled
	// by a sibling.
	var g errgroup.Group
	if a.opts.MaxConcurrency > 0 {
		g.SetLimit(a.opts.MaxConcurrency)
	}
	for i, article := range articles {
		i, article := i, article
		g.Go(func() error {
			records[i] = a.processor.Process(ctx, article, language)
			return nil
		})
	}
	_ = g.Wait()

	res := BatchResult{Records: records}
	for _, rec := range records {
		if rec.Status == news.StatusError {
			res.Failed++
		} else {
			res.Succeeded++
		}
	}

	elapsed := time.Since(start)
	a.metrics.RecordProcessingTime(elapsed)
	if res.Succeeded == 0 {
		res.Err = ErrAllFailed
		a.metrics.SetError(ErrAllFailed.Error())
	} else {
		a.metrics.SetLastRun()
	}
	a.log.Info("batch processed",
		"articles", len(articles),
		"succeeded", res.Succeeded,
		"failed", res.Failed,
		"language", language,
		"duration", elapsed)

	return res
}
