package query

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Turnstyle/ria-hunter/internal/domain"
	"github.com/Turnstyle/ria-hunter/internal/domain/search/request"
	"github.com/Turnstyle/ria-hunter/internal/domain/search/result"
	"github.com/Turnstyle/ria-hunter/internal/metrics"
	"github.com/Turnstyle/ria-hunter/internal/usecase/query/degrade"
)

// Config holds the tunable retrieval parameters.
type Config struct {
	SimilarityThreshold float64
	RRFK                int
	SemanticWeight      float64
	LexicalWeight       float64
	GeoBoost            float64
	ServiceBoost        float64
}

// Response is the engine's answer to one query: ranked results plus the
// metadata a caller needs to judge how the answer was produced.
type Response struct {
	Results []result.Scored
	Meta    Meta
}

// Meta describes the execution of a single query.
type Meta struct {
	Strategy                  domain.IntentKind
	SemanticQuery             string
	Filters                   domain.StructuredFilters
	Degraded                  bool
	DegradedReasons           []string
	DecompositionUsedFallback bool
	Relaxed                   bool
}

// Service orchestrates query execution: decompose, classify, retrieve,
// fuse, enrich. Upstream failures degrade the answer instead of failing
// the request; the only errors Search returns are caller errors.
type Service struct {
	decomposer Decomposer
	embedder   Embedder
	repo       ProfileRepository
	enricher   Enricher
	cfg        Config
	logger     *zap.Logger
}

// New creates a query service. enricher may be nil when enrichment is
// disabled entirely.
func New(
	decomposer Decomposer, embedder Embedder, repo ProfileRepository,
	enricher Enricher, cfg Config, logger *zap.Logger,
) *Service {
	return &Service{
		decomposer: decomposer,
		embedder:   embedder,
		repo:       repo,
		enricher:   enricher,
		cfg:        cfg,
		logger:     logger,
	}
}

// Search executes a query end to end.
func (s *Service) Search(ctx context.Context, req *request.Request) (*Response, error) {
	start := time.Now()

	dec := s.decomposer.Decompose(ctx, req.Query())
	intent := classifyIntent(req.Query(), dec)

	metrics.QueriesTotal.WithLabelValues(string(intent.Kind)).Inc()

	deg := degrade.NewCollector()
	if dec.UsedFallback {
		deg.Note(degrade.ReasonDecompositionFallback)
	}

	topK := effectiveTopK(req, dec)

	var results []result.Scored
	relaxed := false

	switch intent.Kind {
	case domain.IntentDirectLookup:
		results = s.lookup(ctx, intent.CRD, deg)
	case domain.IntentSuperlative:
		results, relaxed = s.superlative(ctx, intent, dec.Filters, topK, deg)
	case domain.IntentSemantic:
		results, relaxed = s.semantic(ctx, req, dec, topK, deg)
	case domain.IntentHybrid:
		results, relaxed = s.hybrid(ctx, req, dec, topK, deg)
	}

	if req.Enrich() && s.enricher != nil && len(results) > 0 {
		var complete bool
		results, complete = s.enricher.Enrich(ctx, results)
		if !complete {
			deg.Note(degrade.ReasonEnrichmentIncomplete)
		}
	}

	metrics.RetrievalDuration.WithLabelValues(string(intent.Kind)).Observe(time.Since(start).Seconds())

	s.logger.Debug("Query executed",
		zap.String("strategy", string(intent.Kind)),
		zap.Int("results", len(results)),
		zap.Bool("degraded", deg.Degraded()),
		zap.Bool("relaxed", relaxed),
		zap.Duration("duration", time.Since(start)),
	)

	return &Response{
		Results: results,
		Meta: Meta{
			Strategy:                  intent.Kind,
			SemanticQuery:             dec.SemanticQuery,
			Filters:                   dec.Filters,
			Degraded:                  deg.Degraded(),
			DegradedReasons:           deg.Reasons(),
			DecompositionUsedFallback: dec.UsedFallback,
			Relaxed:                   relaxed,
		},
	}, nil
}

// lookup answers a direct CRD reference. A missing profile is an empty
// result set, not an error.
func (s *Service) lookup(ctx context.Context, crd string, deg *degrade.Collector) []result.Scored {
	p, err := s.repo.GetByCRD(ctx, crd)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil
		}
		s.logger.Warn("Profile lookup failed", zap.String("crd", crd), zap.Error(err))
		deg.Note(degrade.ReasonStoreUnavailable)
		return nil
	}

	return []result.Scored{{
		Profile:       p,
		BusinessBoost: 1.0,
		CombinedScore: 1.0,
		RankSource:    result.SourceLookup,
	}}
}

// superlative answers an extremum query with a direct attribute sort. The
// vector path is never touched: no embedding call happens on this branch.
func (s *Service) superlative(
	ctx context.Context, intent domain.Intent,
	f domain.StructuredFilters, topK int, deg *degrade.Collector,
) ([]result.Scored, bool) {
	run := func(filters domain.StructuredFilters) []result.Scored {
		res, err := s.repo.SortedSearch(ctx, intent.Attribute, intent.Direction == domain.SortDesc, filters, topK)
		if err != nil {
			s.logger.Warn("Sorted search failed", zap.Error(err))
			deg.Note(degrade.ReasonStoreUnavailable)
			return nil
		}
		return res
	}

	return s.withRelaxation(f, deg, run)
}

// semantic embeds the decomposed phrase and ranks by similarity. When no
// embedding can be produced the lexical path answers instead.
func (s *Service) semantic(
	ctx context.Context, req *request.Request, dec domain.Decomposition,
	topK int, deg *degrade.Collector,
) ([]result.Scored, bool) {
	vector, ok := s.embedQuery(ctx, dec.SemanticQuery, deg)
	if !ok {
		run := func(filters domain.StructuredFilters) []result.Scored {
			return s.lexicalPath(ctx, dec.SemanticQuery, filters, topK, deg)
		}
		return s.withRelaxation(dec.Filters, deg, run)
	}

	run := func(filters domain.StructuredFilters) []result.Scored {
		return s.vectorPath(ctx, req, vector, filters, topK, deg)
	}
	return s.withRelaxation(dec.Filters, deg, run)
}

// hybrid runs the vector and lexical paths concurrently and fuses the two
// rankings. Either path may fail; the other one still answers.
func (s *Service) hybrid(
	ctx context.Context, req *request.Request, dec domain.Decomposition,
	topK int, deg *degrade.Collector,
) ([]result.Scored, bool) {
	vector, haveVector := s.embedQuery(ctx, dec.SemanticQuery, deg)

	run := func(filters domain.StructuredFilters) []result.Scored {
		var semRes, lexRes []result.Scored

		g, gctx := errgroup.WithContext(ctx)
		if haveVector {
			g.Go(func() error {
				semRes = s.vectorPath(gctx, req, vector, filters, topK, deg)
				return nil
			})
		}
		g.Go(func() error {
			lexRes = s.lexicalPath(gctx, dec.SemanticQuery, filters, topK, deg)
			return nil
		})
		_ = g.Wait()

		if len(semRes) == 0 {
			return capResults(lexRes, topK)
		}
		if len(lexRes) == 0 {
			return capResults(semRes, topK)
		}

		return fuseRRF(semRes, lexRes, s.fusionConfig(req), filters, topK)
	}

	return s.withRelaxation(dec.Filters, deg, run)
}

// withRelaxation runs a retrieval closure and, when it comes back empty with
// predicates still in play, drops the most restrictive one and retries once.
func (s *Service) withRelaxation(
	f domain.StructuredFilters, deg *degrade.Collector,
	run func(domain.StructuredFilters) []result.Scored,
) ([]result.Scored, bool) {
	results := run(f)
	if len(results) > 0 || f.IsEmpty() {
		return results, false
	}

	relaxedFilters, ok := f.Relax()
	if !ok {
		return results, false
	}

	metrics.RelaxationRetriesTotal.Inc()
	deg.Note(degrade.ReasonFiltersRelaxed)
	return run(relaxedFilters), true
}

// vectorPath runs KNN retrieval and applies the similarity threshold.
// Scores at exactly the threshold are excluded.
func (s *Service) vectorPath(
	ctx context.Context, req *request.Request, vector []float32,
	f domain.StructuredFilters, topK int, deg *degrade.Collector,
) []result.Scored {
	res, err := s.repo.VectorSearch(ctx, vector, f, topK)
	if err != nil {
		s.logger.Warn("Vector search failed", zap.Error(err))
		deg.Note(degrade.ReasonVectorUnavailable)
		return nil
	}

	threshold := s.cfg.SimilarityThreshold
	if override := req.MinSimilarity(); override != nil {
		threshold = *override
	}

	kept := res[:0]
	for _, r := range res {
		if r.SemanticScore != nil && *r.SemanticScore > threshold {
			kept = append(kept, r)
		}
	}
	return kept
}

// lexicalPath runs BM25 retrieval.
func (s *Service) lexicalPath(
	ctx context.Context, query string,
	f domain.StructuredFilters, topK int, deg *degrade.Collector,
) []result.Scored {
	res, err := s.repo.LexicalSearch(ctx, query, f, topK)
	if err != nil {
		s.logger.Warn("Lexical search failed", zap.Error(err))
		deg.Note(degrade.ReasonLexicalUnavailable)
		return nil
	}
	return res
}

// embedQuery runs the embedding chain. ok=false means every provider failed
// and the caller should answer without the vector path.
func (s *Service) embedQuery(ctx context.Context, text string, deg *degrade.Collector) ([]float32, bool) {
	res, err := s.embedder.Embed(ctx, text)
	if err != nil {
		s.logger.Warn("Embedding unavailable, degrading to lexical", zap.Error(err))
		deg.Note(degrade.ReasonEmbeddingUnavailable)
		return nil, false
	}
	return res.Embedding, true
}

func (s *Service) fusionConfig(req *request.Request) fusionConfig {
	cfg := fusionConfig{
		k:              s.cfg.RRFK,
		semanticWeight: s.cfg.SemanticWeight,
		lexicalWeight:  s.cfg.LexicalWeight,
		geoBoost:       s.cfg.GeoBoost,
		serviceBoost:   s.cfg.ServiceBoost,
	}
	if sem, lex, ok := req.Weights(); ok {
		cfg.semanticWeight = sem
		cfg.lexicalWeight = lex
	}
	return cfg
}

// effectiveTopK reconciles the request's result budget with a "top N"
// phrase in the query text; the phrase wins when present.
func effectiveTopK(req *request.Request, dec domain.Decomposition) int {
	topK := req.TopK()
	if dec.Filters.TopN > 0 {
		topK = dec.Filters.TopN
		if topK > request.MaxTopK {
			topK = request.MaxTopK
		}
	}
	return topK
}

func capResults(res []result.Scored, topK int) []result.Scored {
	if len(res) > topK {
		return res[:topK]
	}
	return res
}
