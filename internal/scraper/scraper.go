// Package scraper reads article pages to fill in what a feed item left out.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/sync/errgroup"

	"github.com/deusflow/ainews/internal/news"
)

const (
	DefaultConcurrency = 4
	maxPageBytes       = 2 << 20
	maxTextRunes       = 1800
)

// Preview is the metadata and readable text of one page.
type Preview struct {
	Title       string
	Description string
	Text        string
	ImageURL    string
	SiteName    string
}

type Scraper struct {
	client      *http.Client
	concurrency int
	log         *slog.Logger
}

func New(client *http.Client, concurrency int, log *slog.Logger) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scraper{client: client, concurrency: concurrency, log: log}
}

// Preview downloads pageURL and extracts its Open Graph metadata and main text.
func (s *Scraper) Preview(ctx context.Context, pageURL string) (*Preview, error) {
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid url %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "ainews/1.0 (+https://github.com/deusflow/ainews)")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("error reading page: %w", err)
	}
	return parse(body, u)
}

func parse(body []byte, u *url.URL) (*Preview, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}

	p := &Preview{
		Title:       firstNonEmpty(meta(doc, "og:title"), strings.TrimSpace(doc.Find("title").First().Text())),
		Description: firstNonEmpty(meta(doc, "og:description"), meta(doc, "description")),
		ImageURL:    meta(doc, "og:image"),
		SiteName:    meta(doc, "og:site_name"),
	}

	if article, err := readability.FromReader(bytes.NewReader(body), u); err == nil {
		p.Text = cleanText(article.TextContent)
		p.Title = firstNonEmpty(p.Title, article.Title)
		p.Description = firstNonEmpty(p.Description, article.Excerpt)
		p.ImageURL = firstNonEmpty(p.ImageURL, article.Image)
		p.SiteName = firstNonEmpty(p.SiteName, article.SiteName)
	}
	if p.Text == "" {
		p.Text = cleanText(paragraphs(doc))
	}

	if p.ImageURL != "" {
		if ref, err := url.Parse(p.ImageURL); err == nil {
			p.ImageURL = u.ResolveReference(ref).String()
		}
	}
	return p, nil
}

// Enrich fills missing descriptions and images of articles in place.
// Articles that already have both are not fetched; failures are logged.
func (s *Scraper) Enrich(ctx context.Context, articles []news.RawArticle) {
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i := range articles {
		a := &articles[i]
		if a.URL == "" || (a.Description != "" && a.ImageURL != "") {
			continue
		}
		g.Go(func() error {
			p, err := s.Preview(ctx, a.URL)
			if err != nil {
				s.log.Warn("can't get page preview", "url", a.URL, "error", err)
				return nil
			}
			if a.Description == "" {
				a.Description = p.Description
			}
			if a.Content == "" {
				a.Content = p.Text
			}
			if a.ImageURL == "" {
				a.ImageURL = p.ImageURL
			}
			if a.Source.Name == "" {
				a.Source.Name = p.SiteName
			}
			s.log.Debug("enriched article", "url", a.URL, "text_len", len(p.Text))
			return nil
		})
	}
	_ = g.Wait()
}

func meta(doc *goquery.Document, name string) string {
	sel := fmt.Sprintf(`meta[property=%q], meta[name=%q]`, name, name)
	v, _ := doc.Find(sel).First().Attr("content")
	return strings.TrimSpace(v)
}

// paragraphs is the fallback when readability finds no article body.
func paragraphs(doc *goquery.Document) string {
	selectors := []string{
		"article p",
		".article p",
		".content p",
		".post-content p",
		".entry-content p",
		"main p",
		"p",
	}

	var out []string
	for _, selector := range selectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > 20 {
				out = append(out, text)
			}
		})
		if len(out) >= 3 {
			break
		}
	}
	return strings.Join(out, "\n\n")
}

// cleanText collapses whitespace and keeps whole paragraphs up to maxTextRunes.
func cleanText(content string) string {
	var paras []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if len(line) > 30 {
			paras = append(paras, line)
		}
	}

	var b strings.Builder
	total := 0
	for _, p := range paras {
		n := len([]rune(p))
		if total > 0 && total+n > maxTextRunes {
			break
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p)
		total += n + 2
	}
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
