// Package newsapi fetches top headlines from the NewsAPI v2 REST endpoint.
package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/deusflow/ainews/internal/metrics"
	"github.com/deusflow/ainews/internal/news"
	"github.com/deusflow/ainews/internal/retry"
)

const (
	DefaultBaseURL = "https://newsapi.org/v2"
	// Language is the only language requested from the provider.
	Language = "en"
)

var ErrMissingAPIKey = errors.New("newsapi: api key is not set")

type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Retry      retry.RetryConfig
}

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	retry   retry.RetryConfig
	log     *slog.Logger
	metrics *metrics.Metrics
}

type response struct {
	Status       string            `json:"status"`
	Code         string            `json:"code"`
	Message      string            `json:"message"`
	TotalResults int               `json:"totalResults"`
	Articles     []news.RawArticle `json:"articles"`
}

// statusError is a non-200 reply. 5xx and 429 are retried.
type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("newsapi: status %d: %s", e.code, e.message)
}

func New(cfg Config, log *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Retry.Retryable == nil {
		cfg.Retry.Retryable = retryable
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		http:    cfg.HTTPClient,
		retry:   cfg.Retry,
		log:     log,
		metrics: metrics.Global,
	}
}

func (c *Client) WithMetrics(m *metrics.Metrics) *Client {
	c.metrics = m
	return c
}

// TopHeadlines returns the provider's headlines for category. Failures are
// logged and produce an empty list.
func (c *Client) TopHeadlines(ctx context.Context, category string, pageSize int) []news.RawArticle {
	articles, err := c.fetch(ctx, category, pageSize)
	if err != nil {
		c.log.Error("error fetching news", "category", category, "error", err)
		c.metrics.IncrementFeedFailures()
		return []news.RawArticle{}
	}
	c.log.Info("fetched headlines", "category", category, "count", len(articles))
	return articles
}

func (c *Client) fetch(ctx context.Context, category string, pageSize int) ([]news.RawArticle, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	q := url.Values{}
	q.Set("category", category)
	q.Set("language", Language)
	q.Set("pageSize", strconv.Itoa(pageSize))
	endpoint := c.baseURL + "/top-headlines?" + q.Encode()

	var articles []news.RawArticle
	err := retry.WithRetry(ctx, c.retry, func() error {
		var err error
		articles, err = c.get(ctx, endpoint)
		return err
	})
	if err != nil {
		return nil, err
	}
	if articles == nil {
		articles = []news.RawArticle{}
	}
	return articles, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]news.RawArticle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.log.Warn("failed to close response body", "error", err)
		}
	}(resp.Body)

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &statusError{code: resp.StatusCode, message: resp.Status}
		}
		return nil, retry.Permanent(fmt.Errorf("decode response: %w", err))
	}
	if resp.StatusCode != http.StatusOK || body.Status == "error" {
		return nil, &statusError{code: resp.StatusCode, message: body.Message}
	}
	return body.Articles, nil
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	return !errors.Is(err, context.Canceled)
}
