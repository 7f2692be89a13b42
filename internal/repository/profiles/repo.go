package profiles

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Turnstyle/ria-hunter/internal/db"
	"github.com/Turnstyle/ria-hunter/internal/domain"
	"github.com/Turnstyle/ria-hunter/internal/domain/geo"
	"github.com/Turnstyle/ria-hunter/internal/domain/search/filter"
	"github.com/Turnstyle/ria-hunter/internal/domain/search/result"
)

// IndexName is the FT index over profile hashes.
const IndexName = domain.KeyPrefix + "profile:idx"

var profileReturnFields = []string{
	"crd", "firm_name", "city", "state",
	"aum", "private_fund_count", "private_fund_aum", "services",
}

// store is the consumer interface for profile retrieval (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchSorted(ctx context.Context, q *db.SortQuery) (*db.SearchResult, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Repo implements usecase/query.ProfileRepository.
type Repo struct {
	store store
}

// New creates a profile repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// VectorSearch runs a KNN search over narrative vectors with structured
// pre-filtering. Scores are similarities in [0, 1]; the caller applies
// the similarity threshold.
func (r *Repo) VectorSearch(
	ctx context.Context, vector []float32,
	f domain.StructuredFilters, topK int,
) ([]result.Scored, error) {
	expr, err := buildExpression(f)
	if err != nil {
		return nil, fmt.Errorf("build filter: %w", err)
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    IndexName,
		Filters:      expr,
		Vector:       vector,
		K:            topK,
		ReturnFields: profileReturnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	return parseEntries(sr, result.SourceSemantic), nil
}

// LexicalSearch runs a BM25 search over narrative text with structured
// pre-filtering. Raw BM25 values are unbounded, so scores are squashed
// into [0, 1) before they leave the repository.
func (r *Repo) LexicalSearch(
	ctx context.Context, query string,
	f domain.StructuredFilters, topK int,
) ([]result.Scored, error) {
	expr, err := buildExpression(f)
	if err != nil {
		return nil, fmt.Errorf("build filter: %w", err)
	}

	sr, err := r.store.SearchBM25(ctx, &db.TextQuery{
		IndexName:    IndexName,
		TextField:    "narrative",
		Query:        expandGeoVariants(query),
		Filters:      expr,
		TopK:         topK,
		ReturnFields: profileReturnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	return parseEntries(sr, result.SourceLexical), nil
}

// SortedSearch retrieves profiles ordered by a numeric attribute, used for
// superlative queries. No scoring happens; rank position is the result order.
func (r *Repo) SortedSearch(
	ctx context.Context, attribute string, descending bool,
	f domain.StructuredFilters, limit int,
) ([]result.Scored, error) {
	expr, err := buildExpression(f)
	if err != nil {
		return nil, fmt.Errorf("build filter: %w", err)
	}

	sr, err := r.store.SearchSorted(ctx, &db.SortQuery{
		IndexName:    IndexName,
		Filters:      expr,
		SortBy:       attribute,
		Descending:   descending,
		Limit:        limit,
		ReturnFields: profileReturnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("sorted search: %w", err)
	}

	return parseEntries(sr, result.SourceDirectSort), nil
}

// GetByCRD fetches a single profile hash.
func (r *Repo) GetByCRD(ctx context.Context, crd string) (domain.Profile, error) {
	fields, err := r.store.HGetAll(ctx, domain.ProfileKey(crd))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Profile{}, domain.ErrProfileNotFound
		}
		return domain.Profile{}, fmt.Errorf("get profile %s: %w", crd, err)
	}
	if len(fields) == 0 {
		return domain.Profile{}, domain.ErrProfileNotFound
	}

	p := parseProfile(fields)
	if p.CRD == "" {
		p.CRD = crd
	}
	return p, nil
}

// buildExpression converts structured filters into a store filter expression.
// City variants form the should group (OR); everything else is a must.
func buildExpression(f domain.StructuredFilters) (filter.Expression, error) {
	var must, should []filter.Condition

	if f.State != "" {
		code := f.State
		if c, ok := geo.StateCode(f.State); ok {
			code = c
		}
		cond, err := filter.NewMatch("state", code)
		if err != nil {
			return filter.Expression{}, err
		}
		must = append(must, cond)
	}

	if f.City != "" {
		variants := geo.CityVariants(f.City)
		if len(variants) == 1 {
			cond, err := filter.NewMatch("city", variants[0])
			if err != nil {
				return filter.Expression{}, err
			}
			must = append(must, cond)
		} else {
			for _, v := range variants {
				cond, err := filter.NewMatch("city", v)
				if err != nil {
					return filter.Expression{}, err
				}
				should = append(should, cond)
			}
		}
	}

	if f.MinAUM != nil || f.MaxAUM != nil {
		rng, err := filter.NewRangeFilter(nil, f.MinAUM, nil, f.MaxAUM)
		if err != nil {
			return filter.Expression{}, err
		}
		cond, err := filter.NewRange(domain.AttrAUM, rng)
		if err != nil {
			return filter.Expression{}, err
		}
		must = append(must, cond)
	}

	if f.RequirePrivateFunds {
		one := 1.0
		rng, err := filter.NewRangeFilter(nil, &one, nil, nil)
		if err != nil {
			return filter.Expression{}, err
		}
		cond, err := filter.NewRange(domain.AttrPrivateFundCount, rng)
		if err != nil {
			return filter.Expression{}, err
		}
		must = append(must, cond)
	}

	for _, svc := range f.Services {
		cond, err := filter.NewMatch("services", svc)
		if err != nil {
			return filter.Expression{}, err
		}
		must = append(must, cond)
	}

	return filter.NewExpression(must, should), nil
}

// expandGeoVariants rewrites place names in the lexical query so every known
// spelling matches: "st. louis" becomes "(st. louis | st louis | saint louis | stl)".
func expandGeoVariants(query string) string {
	lower := strings.ToLower(query)
	expanded := query

	seen := make(map[string]bool)
	for _, canonical := range knownCities(lower) {
		if seen[canonical] {
			continue
		}
		seen[canonical] = true

		variants := geo.CityVariants(canonical)
		if len(variants) < 2 {
			continue
		}
		group := "(" + strings.Join(variants, " | ") + ")"

		// replace whichever variant actually appears in the query
		for _, v := range variants {
			if idx := strings.Index(strings.ToLower(expanded), v); idx >= 0 {
				expanded = expanded[:idx] + group + expanded[idx+len(v):]
				break
			}
		}
	}

	return expanded
}

// knownCities returns canonical city names whose variants appear in text.
// Matches respect word boundaries so short variants like "la" do not fire
// inside unrelated words.
func knownCities(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, city := range geo.KnownCitySpellings() {
		if containsPhrase(text, city) {
			c := geo.CanonicalCity(city)
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

func containsPhrase(text, phrase string) bool {
	idx := strings.Index(text, phrase)
	for idx >= 0 {
		before := idx == 0 || isBoundary(text[idx-1])
		end := idx + len(phrase)
		after := end == len(text) || isBoundary(text[end])
		if before && after {
			return true
		}
		next := strings.Index(text[idx+1:], phrase)
		if next < 0 {
			return false
		}
		idx += 1 + next
	}
	return false
}

func isBoundary(b byte) bool {
	return !(b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9')
}

// parseEntries maps store hits into scored results with hydrated profiles.
func parseEntries(sr *db.SearchResult, source result.RankSource) []result.Scored {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	out := make([]result.Scored, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		p := parseProfile(entry.Fields)
		if p.CRD == "" {
			p.CRD = strings.TrimPrefix(entry.Key, domain.KeyPrefix+"profile:")
		}

		s := result.Scored{
			Profile:       p,
			BusinessBoost: 1.0,
			RankSource:    source,
		}
		score := entry.Score
		switch source {
		case result.SourceSemantic:
			s.SemanticScore = &score
		case result.SourceLexical:
			// BM25 is non-negative and unbounded; s/(1+s) keeps the
			// ordering and bounds the reported score to [0, 1).
			score = score / (1 + score)
			s.LexicalScore = &score
		}
		out = append(out, s)
	}
	return out
}

// parseProfile maps flat hash fields into a domain profile.
func parseProfile(fields map[string]string) domain.Profile {
	p := domain.Profile{
		CRD:      fields["crd"],
		FirmName: fields["firm_name"],
		City:     fields["city"],
		State:    fields["state"],
	}
	if v, err := strconv.ParseFloat(fields["aum"], 64); err == nil {
		p.AUM = v
	}
	if v, err := strconv.Atoi(fields["private_fund_count"]); err == nil {
		p.PrivateFundCount = v
	}
	if v, err := strconv.ParseFloat(fields["private_fund_aum"], 64); err == nil {
		p.PrivateFundAUM = v
	}
	if svc := fields["services"]; svc != "" {
		for _, s := range strings.Split(svc, ",") {
			if s = strings.TrimSpace(s); s != "" {
				p.Services = append(p.Services, s)
			}
		}
	}
	return p
}
