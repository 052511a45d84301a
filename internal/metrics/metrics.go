package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	BatchesProcessed    int64
	ArticlesProcessed   int64
	SummariesGenerated  int64
	SummaryFailures     int64
	TranslationsOK      int64
	TranslationsFailed  int64
	InsufficientContent int64
	ArticleErrors       int64
	FeedFailures        int64
	AIRequests          int64

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = New()

func New() *Metrics {
	return &Metrics{IsHealthy: true}
}

func (m *Metrics) IncrementBatches() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BatchesProcessed++
}

func (m *Metrics) IncrementArticles() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesProcessed++
}

func (m *Metrics) IncrementSummaries() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesGenerated++
}

func (m *Metrics) IncrementSummaryFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummaryFailures++
}

func (m *Metrics) IncrementTranslations(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.TranslationsOK++
		return
	}
	m.TranslationsFailed++
}

func (m *Metrics) IncrementInsufficientContent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsufficientContent++
}

func (m *Metrics) IncrementArticleErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticleErrors++
}

func (m *Metrics) IncrementFeedFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedFailures++
}

func (m *Metrics) IncrementAIRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AIRequests++
}

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++

	if m.ProcessingCount > 0 {
		m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.IsHealthy
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"batches_processed":          m.BatchesProcessed,
		"articles_processed":         m.ArticlesProcessed,
		"summaries_generated":        m.SummariesGenerated,
		"summary_failures":           m.SummaryFailures,
		"translations_ok":            m.TranslationsOK,
		"translations_failed":        m.TranslationsFailed,
		"insufficient_content":       m.InsufficientContent,
		"article_errors":             m.ArticleErrors,
		"feed_failures":              m.FeedFailures,
		"ai_requests":                m.AIRequests,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_run_time":              formatTime(m.LastRunTime),
		"last_error_time":            formatTime(m.LastErrorTime),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
