package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/Turnstyle/ria-hunter/internal/db"
	"github.com/Turnstyle/ria-hunter/internal/domain"
)

// IndexConfig holds the tunable parameters of the profile index.
type IndexConfig struct {
	Dimensions  int
	HNSWM       int
	EFConstruct int
}

// indexStore is the consumer interface for index bootstrap (ISP).
type indexStore interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// EnsureIndex creates the profile FT index if it does not already exist.
// The ingestion pipeline owns the records; the engine owns the index it
// searches them with.
func EnsureIndex(ctx context.Context, s indexStore, cfg IndexConfig) error {
	exists, err := s.IndexExists(ctx, IndexName)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	def, err := db.NewIndex(IndexName).
		Prefix(domain.KeyPrefix + "profile:").
		Tag("crd").
		Text("firm_name").
		Tag("city").
		Tag("state").
		Numeric(domain.AttrAUM).
		Numeric(domain.AttrPrivateFundCount).
		Numeric(domain.AttrPrivateFundAUM).
		TagWithSeparator("services", ",").
		Text("narrative").
		VectorHNSW("narrative_vector", cfg.Dimensions, db.DistanceCosine, cfg.HNSWM, cfg.EFConstruct).
		Build()
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}

	if err := s.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}
