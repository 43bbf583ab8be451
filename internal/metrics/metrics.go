package metrics

import (
	"sync"
	"time"
)

// Metrics collects per-run pipeline counters. A single global instance is
// shared between the pipeline and the optional monitoring endpoint.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	ArticlesSeen       int64
	DuplicatesSkipped  int64
	EmptySkipped       int64
	PostsPublished     int64
	PublishFailures    int64
	SummaryFallbacks   int64
	TranslateFallbacks int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncArticlesSeen() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesSeen++
}

func (m *Metrics) IncDuplicatesSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesSkipped++
}

func (m *Metrics) IncEmptySkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EmptySkipped++
}

func (m *Metrics) IncPostsPublished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PostsPublished++
}

func (m *Metrics) IncPublishFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishFailures++
}

func (m *Metrics) IncSummaryFallbacks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummaryFallbacks++
}

func (m *Metrics) IncTranslateFallbacks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TranslateFallbacks++
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

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"articles_seen":       m.ArticlesSeen,
		"duplicates_skipped":  m.DuplicatesSkipped,
		"empty_skipped":       m.EmptySkipped,
		"posts_published":     m.PostsPublished,
		"publish_failures":    m.PublishFailures,
		"summary_fallbacks":   m.SummaryFallbacks,
		"translate_fallbacks": m.TranslateFallbacks,
		"last_run_time":       m.LastRunTime.Format(time.RFC3339),
		"last_error_time":     m.LastErrorTime.Format(time.RFC3339),
		"last_error":          m.LastError,
		"is_healthy":          m.IsHealthy,
	}
}
