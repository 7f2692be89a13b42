package request

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Turnstyle/ria-hunter/internal/domain"
)

// Query and result-count limits.
const (
	MaxQueryLength = 500
	DefaultTopK    = 10
	MaxTopK        = 50
)

// Request is a validated engine request. Weight/threshold overrides are
// optional; zero values defer to configured defaults.
type Request struct {
	query          string
	topK           int
	semanticWeight float64
	lexicalWeight  float64
	minSimilarity  *float64
	enrich         bool
}

// New validates and normalizes request parameters. The query must be
// non-empty after trimming and at most MaxQueryLength characters; violations
// are caller errors, not degradation triggers. Weights must be supplied
// together and sum to a positive value.
func New(query string, topK int, semanticWeight, lexicalWeight float64, minSimilarity *float64, enrich bool) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidQuery)
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidQuery, MaxQueryLength)
	}
	if (semanticWeight == 0) != (lexicalWeight == 0) {
		return Request{}, fmt.Errorf("%w: fusion weights must be set together", domain.ErrInvalidQuery)
	}
	if semanticWeight < 0 || lexicalWeight < 0 {
		return Request{}, fmt.Errorf("%w: fusion weights must be non-negative", domain.ErrInvalidQuery)
	}
	if minSimilarity != nil && (*minSimilarity < 0 || *minSimilarity > 1) {
		return Request{}, fmt.Errorf("%w: min_similarity must be between 0 and 1", domain.ErrInvalidQuery)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}

	return Request{
		query:          query,
		topK:           topK,
		semanticWeight: semanticWeight,
		lexicalWeight:  lexicalWeight,
		minSimilarity:  minSimilarity,
		enrich:         enrich,
	}, nil
}

// Query returns the trimmed query text.
func (r *Request) Query() string { return r.query }

// TopK returns the requested result count.
func (r *Request) TopK() int { return r.topK }

// Weights returns the per-request fusion weight override, ok=false when the
// configured defaults should apply.
func (r *Request) Weights() (semantic, lexical float64, ok bool) {
	if r.semanticWeight == 0 && r.lexicalWeight == 0 {
		return 0, 0, false
	}
	return r.semanticWeight, r.lexicalWeight, true
}

// MinSimilarity returns the similarity threshold override (nil for default).
func (r *Request) MinSimilarity() *float64 { return r.minSimilarity }

// Enrich reports whether related-people enrichment was requested.
func (r *Request) Enrich() bool { return r.enrich }
