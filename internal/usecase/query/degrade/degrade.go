// Package degrade tracks why a query answer is weaker than asked for.
// Upstream failures never surface as request errors; they surface here.
package degrade

import (
	"sync"

	"github.com/Turnstyle/ria-hunter/internal/metrics"
)

// Degradation reasons reported in response metadata.
const (
	ReasonDecompositionFallback = "decomposition_fallback"
	ReasonEmbeddingUnavailable  = "embedding_unavailable"
	ReasonVectorUnavailable     = "vector_unavailable"
	ReasonLexicalUnavailable    = "lexical_unavailable"
	ReasonStoreUnavailable      = "store_unavailable"
	ReasonFiltersRelaxed        = "filters_relaxed"
	ReasonEnrichmentIncomplete  = "enrichment_incomplete"
)

// Collector accumulates degradation reasons for one request. Safe for
// concurrent use; the retrieval paths run in parallel.
type Collector struct {
	mu      sync.Mutex
	reasons []string
	seen    map[string]bool
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{seen: make(map[string]bool)}
}

// Note records a reason once per request and counts it in metrics.
func (c *Collector) Note(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seen[reason] {
		return
	}
	c.seen[reason] = true
	c.reasons = append(c.reasons, reason)
	metrics.DegradedResponsesTotal.WithLabelValues(reason).Inc()
}

// Degraded reports whether any reason was noted.
func (c *Collector) Degraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.reasons) > 0
}

// Reasons returns the noted reasons in first-occurrence order.
func (c *Collector) Reasons() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.reasons))
	copy(out, c.reasons)
	return out
}
