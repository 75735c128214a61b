package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	NewsRequests        int64
	ArticlesProcessed   int64
	SummariesGenerated  int64
	SummaryFallbacks    int64
	TranslationsApplied int64
	TranslationFailures int64
	SharesCreated       int64
	SharedViews         int64
	CacheHits           int64

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64

	// Status
	LastRequestTime time.Time
	LastErrorTime   time.Time
	LastError       string
	IsHealthy       bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementNewsRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NewsRequests++
	m.LastRequestTime = time.Now()
}

func (m *Metrics) AddArticlesProcessed(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesProcessed += int64(n)
}

func (m *Metrics) IncrementSummariesGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesGenerated++
}

func (m *Metrics) IncrementSummaryFallbacks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummaryFallbacks++
}

func (m *Metrics) IncrementTranslationsApplied() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TranslationsApplied++
}

func (m *Metrics) IncrementTranslationFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TranslationFailures++
}

func (m *Metrics) IncrementSharesCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SharesCreated++
}

func (m *Metrics) IncrementSharedViews() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SharedViews++
}

func (m *Metrics) IncrementCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
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

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) SetHealthy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IsHealthy = true
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"news_requests":              m.NewsRequests,
		"articles_processed":         m.ArticlesProcessed,
		"summaries_generated":        m.SummariesGenerated,
		"summary_fallbacks":          m.SummaryFallbacks,
		"translations_applied":       m.TranslationsApplied,
		"translation_failures":       m.TranslationFailures,
		"shares_created":             m.SharesCreated,
		"shared_views":               m.SharedViews,
		"cache_hits":                 m.CacheHits,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_request_time":          m.LastRequestTime.Format(time.RFC3339),
		"last_error_time":            m.LastErrorTime.Format(time.RFC3339),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}
