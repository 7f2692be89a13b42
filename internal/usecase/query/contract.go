package query

import (
	"context"

	"github.com/Turnstyle/ria-hunter/internal/domain"
	"github.com/Turnstyle/ria-hunter/internal/domain/search/result"
)

// Decomposer parses raw queries into structured decompositions.
type Decomposer interface {
	Decompose(ctx context.Context, query string) domain.Decomposition
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// ProfileRepository defines the storage contract for retrieval.
type ProfileRepository interface {
	VectorSearch(
		ctx context.Context, vector []float32,
		f domain.StructuredFilters, topK int,
	) ([]result.Scored, error)

	LexicalSearch(
		ctx context.Context, query string,
		f domain.StructuredFilters, topK int,
	) ([]result.Scored, error)

	SortedSearch(
		ctx context.Context, attribute string, descending bool,
		f domain.StructuredFilters, limit int,
	) ([]result.Scored, error)

	GetByCRD(ctx context.Context, crd string) (domain.Profile, error)
}

// Enricher attaches related people to scored results. complete is false
// when some lookups failed and lists were left empty.
type Enricher interface {
	Enrich(ctx context.Context, results []result.Scored) (enriched []result.Scored, complete bool)
}
