// Package app ties the feed source, the article pipeline and the renderers
// into a single digest operation.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/deusflow/ainews/internal/aggregator"
	"github.com/deusflow/ainews/internal/cache"
	"github.com/deusflow/ainews/internal/news"
	"github.com/deusflow/ainews/internal/render"
)

const (
	MessageMissingInput          = "Please select a news category and language."
	MessageTechnicalDifficulties = "We're experiencing technical difficulties. Please try again later or choose a different category."
)

var ErrPublishingDisabled = errors.New("telegram publishing is not configured")

// Source fetches the raw headlines of a category.
type Source interface {
	TopHeadlines(ctx context.Context, category string, pageSize int) []news.RawArticle
}

// Batcher processes a batch of articles; *aggregator.Aggregator implements it.
type Batcher interface {
	Aggregate(ctx context.Context, articles []news.RawArticle, language string) aggregator.BatchResult
}

// Publisher delivers a rendered digest; *telegram.Client implements it.
type Publisher interface {
	SendMessage(ctx context.Context, text string) error
}

// Digest is the displayable outcome of one request. When Message is set it
// replaces the records.
type Digest struct {
	Category string                 `json:"category"`
	Language string                 `json:"language"`
	Result   aggregator.BatchResult `json:"result"`
	HTML     string                 `json:"-"`
	Message  string                 `json:"message,omitempty"`
}

// Body is what a user sees: the message if there is one, otherwise the cards.
func (d Digest) Body() string {
	if d.Message != "" {
		return d.Message
	}
	return d.HTML
}

type App struct {
	source    Source
	batcher   Batcher
	publisher Publisher
	summaries *cache.Cache
	pageSize  int
	log       *slog.Logger
}

// New creates an App. publisher and summaries may be nil.
func New(source Source, batcher Batcher, publisher Publisher, summaries *cache.Cache, pageSize int, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &App{
		source:    source,
		batcher:   batcher,
		publisher: publisher,
		summaries: summaries,
		pageSize:  pageSize,
		log:       log,
	}
}

// Digest fetches, summarizes and renders one category. It never fails: every
// fault ends up in Digest.Message.
func (a *App) Digest(ctx context.Context, category, language string) (d Digest) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("panic while building digest", "category", category, "language", language, "panic", r)
			d = Digest{Category: category, Language: language, Message: MessageTechnicalDifficulties}
		}
	}()

	d = Digest{Category: category, Language: language}

	c, errC := news.ParseCategory(category)
	l, errL := news.ParseLanguage(language)
	if errC != nil || errL != nil {
		a.log.Warn("invalid digest request", "category", category, "language", language)
		d.Message = MessageMissingInput
		return d
	}
	d.Category, d.Language = c, l

	a.log.Info("fetching headlines", "category", c)
	articles := a.source.TopHeadlines(ctx, c, a.pageSize)

	d.Result = a.batcher.Aggregate(ctx, articles, l)
	if d.Result.Err != nil {
		d.Message = d.Result.Message()
		return d
	}

	html, err := render.HTML(d.Result.Records)
	if err != nil {
		a.log.Error("error rendering digest", "error", err)
		d.Message = MessageTechnicalDifficulties
		return d
	}
	d.HTML = html
	a.log.Info("digest ready", "category", c, "language", l, "articles", len(d.Result.Records))
	return d
}

// Publish sends the digest to Telegram. Digests carrying only a message are skipped.
func (a *App) Publish(ctx context.Context, d Digest) error {
	if a.publisher == nil {
		return ErrPublishingDisabled
	}
	if d.Message != "" {
		a.log.Info("nothing to publish", "category", d.Category, "message", d.Message)
		return nil
	}
	return a.publisher.SendMessage(ctx, render.Telegram(d.Category, d.Language, d.Result.Records))
}

// CacheStats reports the summary cache counters.
func (a *App) CacheStats() cache.Stats {
	if a.summaries == nil {
		return cache.Stats{}
	}
	return a.summaries.Stats()
}
