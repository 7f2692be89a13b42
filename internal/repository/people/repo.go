package people

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Turnstyle/ria-hunter/internal/db"
	"github.com/Turnstyle/ria-hunter/internal/domain"
)

// store is the consumer interface for people lookups (ISP).
type store interface {
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
}

// Repo implements usecase/enrich.PeopleRepository.
type Repo struct {
	store store
}

// New creates a people repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// RelatedFor returns up to limit related people for a profile. A missing
// key means the firm has no recorded people and is not an error.
func (r *Repo) RelatedFor(ctx context.Context, crd string, limit int) ([]domain.RelatedPerson, error) {
	data, err := r.store.JSONGet(ctx, domain.PeopleKey(crd))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get people %s: %w", crd, err)
	}

	var people []domain.RelatedPerson
	if err := json.Unmarshal(data, &people); err != nil {
		return nil, fmt.Errorf("parse people %s: %w", crd, err)
	}

	if limit > 0 && len(people) > limit {
		people = people[:limit]
	}
	return people, nil
}
