package news

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/deusflow/ainews/internal/cache"
	"github.com/deusflow/ainews/internal/metrics"
	"github.com/deusflow/ainews/internal/summarizer"
)

const (
	DefaultMinContentLength = 50
	DefaultMinSummaryLength = 50
)

// Policy holds the content thresholds, all measured in runes.
type Policy struct {
	MinContentLength int // shorter descriptions are not summarized
	MinSummaryLength int // shorter summaries are replaced by a link to the article
	MaxInputChars    int // description prefix used as cache fingerprint
}

func (p Policy) withDefaults() Policy {
	if p.MinContentLength <= 0 {
		p.MinContentLength = DefaultMinContentLength
	}
	if p.MinSummaryLength <= 0 {
		p.MinSummaryLength = DefaultMinSummaryLength
	}
	if p.MaxInputChars <= 0 {
		p.MaxInputChars = summarizer.DefaultMaxInputChars
	}
	return p
}

// SummaryCache memoizes summaries; *cache.Cache implements it.
type SummaryCache interface {
	GetOrCreate(ctx context.Context, key cache.Key, compute func(context.Context) (string, error)) (string, error)
}

// Processor turns one RawArticle into a Record.
type Processor struct {
	client  summarizer.Client
	cache   SummaryCache
	policy  Policy
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewProcessor(client summarizer.Client, summaries SummaryCache, policy Policy, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		client:  client,
		cache:   summaries,
		policy:  policy.withDefaults(),
		log:     log,
		metrics: metrics.Global,
	}
}

// WithMetrics sets the metrics sink, returning p for chaining.
func (p *Processor) WithMetrics(m *metrics.Metrics) *Processor {
	p.metrics = m
	return p
}

// Process never fails: every outcome, including a panic, is a Record.
func (p *Processor) Process(ctx context.Context, article RawArticle, language string) (rec Record) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("panic while processing article", "title", article.Title, "panic", r)
			rec = p.failed(article, fmt.Sprintf(summaryProcessingFormat, panicDetail(r)))
		}
	}()
	p.metrics.IncrementArticles()

	title := strings.TrimSpace(article.Title)
	description := firstNonEmpty(article.Description, article.Content, article.Title)

	rec = Record{
		Title:    orDefault(title, PlaceholderTitle),
		Source:   orDefault(article.Source.Name, PlaceholderSource),
		URL:      orDefault(article.URL, PlaceholderURL),
		ImageURL: strings.TrimSpace(article.ImageURL),
	}

	if title == "" || utf8.RuneCountInString(description) < p.policy.MinContentLength {
		p.log.Warn("skipping article due to insufficient content", "title", rec.Title, "error", ErrInsufficientContent)
		p.metrics.IncrementInsufficientContent()
		rec.Summary = SummaryContentUnavailable
		rec.Status = StatusInsufficientContent
		return rec
	}

	key := cache.Key{
		Fingerprint: cache.Fingerprint(description, p.policy.MaxInputChars),
		Language:    language,
	}
	summary, err := p.cache.GetOrCreate(ctx, key, func(ctx context.Context) (string, error) {
		return summarizer.SummarizeIn(ctx, p.client, description, language, p.log)
	})
	if err != nil {
		p.log.Error("error summarizing article", "title", rec.Title, "error", err)
		p.metrics.IncrementArticleErrors()
		rec.Summary = SummaryGenerationFailed
		rec.Status = StatusError
		return rec
	}

	if utf8.RuneCountInString(summary) < p.policy.MinSummaryLength {
		summary = fmt.Sprintf(summaryDegenerateFormat, rec.URL)
	}
	rec.Summary = summary

	if !summarizer.IsDefaultLanguage(language) {
		translated, err := p.client.Translate(ctx, title, language)
		if err != nil || strings.TrimSpace(translated) == "" {
			p.log.Warn("title translation failed, keeping original", "title", title, "language", language, "error", err)
		} else {
			rec.Title = strings.TrimSpace(translated)
		}
	}

	rec.Status = StatusOK
	return rec
}

func (p *Processor) failed(article RawArticle, summary string) Record {
	p.metrics.IncrementArticleErrors()
	return Record{
		Title:    orDefault(article.Title, PlaceholderTitle),
		Source:   orDefault(article.Source.Name, PlaceholderSource),
		Summary:  summary,
		URL:      orDefault(article.URL, PlaceholderURL),
		ImageURL: strings.TrimSpace(article.ImageURL),
		Status:   StatusError,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

// panicDetail keeps the first line of a recovered value; panics re-raised by
// the cache carry a stack trace after it.
func panicDetail(r interface{}) string {
	detail := fmt.Sprint(r)
	if i := strings.IndexByte(detail, '\n'); i >= 0 {
		detail = detail[:i]
	}
	return detail
}
