package enrich

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Turnstyle/ria-hunter/internal/domain"
	"github.com/Turnstyle/ria-hunter/internal/domain/search/result"
)

// PeopleRepository defines the storage contract for related-people lookups.
type PeopleRepository interface {
	RelatedFor(ctx context.Context, crd string, limit int) ([]domain.RelatedPerson, error)
}

// Config bounds the enrichment fan-out.
type Config struct {
	// TopK caps how many leading results get enriched.
	TopK int
	// MaxPeople caps the people list per profile.
	MaxPeople int
	// Concurrency bounds in-flight lookups.
	Concurrency int
	// LookupTimeout bounds each individual lookup.
	LookupTimeout time.Duration
	// Deadline bounds the whole fan-out.
	Deadline time.Duration
}

// Service attaches related people to ranked results with a bounded
// concurrent fan-out. A failed or slow lookup leaves that profile's list
// empty; enrichment never reorders results and never fails the request.
type Service struct {
	repo   PeopleRepository
	cfg    Config
	logger *zap.Logger
}

// New creates an enrichment service.
func New(repo PeopleRepository, cfg Config, logger *zap.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, logger: logger}
}

// Enrich fills People on the top results in place of rank order. complete
// is false when at least one lookup failed or timed out.
func (s *Service) Enrich(ctx context.Context, results []result.Scored) ([]result.Scored, bool) {
	n := len(results)
	if s.cfg.TopK > 0 && n > s.cfg.TopK {
		n = s.cfg.TopK
	}
	if n == 0 {
		return results, true
	}

	fanCtx := ctx
	if s.cfg.Deadline > 0 {
		var cancel context.CancelFunc
		fanCtx, cancel = context.WithTimeout(ctx, s.cfg.Deadline)
		defer cancel()
	}

	var failed atomic.Bool

	g, gctx := errgroup.WithContext(fanCtx)
	if s.cfg.Concurrency > 0 {
		g.SetLimit(s.cfg.Concurrency)
	}

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			crd := results[i].Profile.CRD

			lookupCtx := gctx
			if s.cfg.LookupTimeout > 0 {
				var cancel context.CancelFunc
				lookupCtx, cancel = context.WithTimeout(gctx, s.cfg.LookupTimeout)
				defer cancel()
			}

			people, err := s.repo.RelatedFor(lookupCtx, crd, s.cfg.MaxPeople)
			if err != nil {
				s.logger.Warn("People lookup failed",
					zap.String("crd", crd),
					zap.Error(err),
				)
				failed.Store(true)
				return nil
			}
			results[i].People = people
			return nil
		})
	}
	_ = g.Wait()

	if fanCtx.Err() != nil {
		failed.Store(true)
	}

	return results, !failed.Load()
}
