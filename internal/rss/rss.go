// Package rss is a feed source built from per-category RSS/Atom feed lists.
package rss

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/deusflow/ainews/internal/metrics"
	"github.com/deusflow/ainews/internal/news"
)

// FeedsConfig is the YAML feed list:
//
//	categories:
//	  technology:
//	    - name: Ars Technica
//	      url: https://...
type FeedsConfig struct {
	Categories map[string][]Feed `yaml:"categories"`
}

type Feed struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// LoadFeeds reads the feed lists from a YAML file. Category keys are
// canonicalised; unknown categories are rejected.
func LoadFeeds(path string) (*FeedsConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg FeedsConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	categories := make(map[string][]Feed, len(cfg.Categories))
	for name, feeds := range cfg.Categories {
		category, err := news.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		categories[category] = append(categories[category], feeds...)
	}
	cfg.Categories = categories
	return &cfg, nil
}

// Enricher fills in fields a feed item left empty; *scraper.Scraper implements it.
type Enricher interface {
	Enrich(ctx context.Context, articles []news.RawArticle)
}

type Source struct {
	feeds    *FeedsConfig
	enricher Enricher
	timeout  time.Duration
	log      *slog.Logger
	metrics  *metrics.Metrics
}

// NewSource creates a Source. enricher may be nil.
func NewSource(feeds *FeedsConfig, enricher Enricher, log *slog.Logger) *Source {
	if log == nil {
		log = slog.Default()
	}
	return &Source{
		feeds:    feeds,
		enricher: enricher,
		timeout:  30 * time.Second,
		log:      log,
		metrics:  metrics.Global,
	}
}

func (s *Source) WithMetrics(m *metrics.Metrics) *Source {
	s.metrics = m
	return s
}

type item struct {
	article   news.RawArticle
	published time.Time
}

// TopHeadlines returns the newest pageSize items across the category's feeds.
// A feed that fails is logged and skipped; if all fail the list is empty.
func (s *Source) TopHeadlines(ctx context.Context, category string, pageSize int) []news.RawArticle {
	feeds := s.feeds.Categories[category]
	if len(feeds) == 0 {
		s.log.Warn("no feeds configured", "category", category)
		return []news.RawArticle{}
	}

	results := make([][]item, len(feeds))
	var g errgroup.Group
	for i, feed := range feeds {
		i, feed := i, feed
		g.Go(func() error {
			items, err := s.fetch(ctx, feed)
			if err != nil {
				s.log.Error("error parsing RSS", "feed", feed.URL, "error", err)
				s.metrics.IncrementFeedFailures()
				return nil
			}
			s.log.Debug("loaded feed", "feed", feed.URL, "items", len(items))
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()

	var all []item
	for _, items := range results {
		all = append(all, items...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].published.After(all[j].published)
	})
	if pageSize > 0 && len(all) > pageSize {
		all = all[:pageSize]
	}

	articles := make([]news.RawArticle, len(all))
	for i, it := range all {
		articles[i] = it.article
	}
	if s.enricher != nil && len(articles) > 0 {
		s.enricher.Enrich(ctx, articles)
	}

	s.log.Info("fetched headlines", "category", category, "feeds", len(feeds), "count", len(articles))
	return articles
}

func (s *Source) fetch(ctx context.Context, feed Feed) ([]item, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	parsed, err := gofeed.NewParser().ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return nil, err
	}

	sourceName := feed.Name
	if sourceName == "" {
		sourceName = strings.TrimSpace(parsed.Title)
	}

	items := make([]item, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		a := news.RawArticle{
			Source:      news.Source{Name: sourceName},
			Title:       strings.TrimSpace(it.Title),
			Description: htmlToText(it.Description),
			Content:     htmlToText(it.Content),
			URL:         it.Link,
			ImageURL:    imageURL(it),
		}

		var published time.Time
		if it.PublishedParsed != nil {
			published = *it.PublishedParsed
		} else if it.UpdatedParsed != nil {
			published = *it.UpdatedParsed
		}
		items = append(items, item{article: a, published: published})
	}
	return items, nil
}

func imageURL(it *gofeed.Item) string {
	if it.Image != nil && it.Image.URL != "" {
		return it.Image.URL
	}
	for _, enc := range it.Enclosures {
		if strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}

// htmlToText strips markup from feed descriptions.
func htmlToText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
