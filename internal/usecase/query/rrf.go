package query

import (
	"sort"
	"strings"

	"github.com/Turnstyle/ria-hunter/internal/domain"
	"github.com/Turnstyle/ria-hunter/internal/domain/geo"
	"github.com/Turnstyle/ria-hunter/internal/domain/search/result"
)

// fusionConfig holds the Reciprocal Rank Fusion parameters and the
// post-fusion boost factors.
type fusionConfig struct {
	k              int
	semanticWeight float64
	lexicalWeight  float64
	geoBoost       float64
	serviceBoost   float64
}

// fuseRRF merges semantic and lexical rankings via weighted Reciprocal Rank
// Fusion: score(d) = sum of weight_i/(k + rank_i(d)) over the rankings where
// d appears, rank 1-based. Path-native scores are kept for diagnostics but
// never mixed into the fused score. Boosts are applied strictly after fusion.
func fuseRRF(semantic, lexical []result.Scored, cfg fusionConfig, f domain.StructuredFilters, topK int) []result.Scored {
	merged := make(map[string]*result.Scored)
	order := make([]string, 0, len(semantic)+len(lexical))

	for rank, r := range semantic {
		r := r
		r.CombinedScore = cfg.semanticWeight / float64(cfg.k+rank+1)
		merged[r.Profile.CRD] = &r
		order = append(order, r.Profile.CRD)
	}

	for rank, r := range lexical {
		s := cfg.lexicalWeight / float64(cfg.k+rank+1)
		if existing, ok := merged[r.Profile.CRD]; ok {
			existing.CombinedScore += s
			existing.LexicalScore = r.LexicalScore
			existing.RankSource = result.SourceHybrid
		} else {
			r := r
			r.CombinedScore = s
			merged[r.Profile.CRD] = &r
			order = append(order, r.Profile.CRD)
		}
	}

	fused := make([]result.Scored, 0, len(merged))
	for _, crd := range order {
		r := *merged[crd]
		r.BusinessBoost = boostFor(r.Profile, f, cfg)
		r.CombinedScore *= r.BusinessBoost
		fused = append(fused, r)
	}

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].CombinedScore > fused[j].CombinedScore
	})

	if len(fused) > topK {
		fused = fused[:topK]
	}
	return fused
}

// boostFor computes the multiplicative business boost for a profile against
// the request's filters. Matching the requested location and matching a
// requested service each contribute their factor; boosts compound.
func boostFor(p domain.Profile, f domain.StructuredFilters, cfg fusionConfig) float64 {
	boost := 1.0

	if matchesGeo(p, f) {
		boost *= cfg.geoBoost
	}
	if matchesService(p, f) {
		boost *= cfg.serviceBoost
	}
	return boost
}

// matchesGeo reports whether the profile sits in the requested place. A city
// match goes through the variant group so spelling differences still boost.
func matchesGeo(p domain.Profile, f domain.StructuredFilters) bool {
	if f.City == "" && f.State == "" {
		return false
	}
	if f.State != "" && !strings.EqualFold(p.State, f.State) {
		return false
	}
	if f.City != "" {
		pc := geo.CanonicalCity(p.City)
		return pc == geo.CanonicalCity(f.City)
	}
	return true
}

// matchesService reports whether the profile offers any requested service.
func matchesService(p domain.Profile, f domain.StructuredFilters) bool {
	if len(f.Services) == 0 {
		return false
	}
	for _, want := range f.Services {
		for _, have := range p.Services {
			if strings.EqualFold(want, have) {
				return true
			}
		}
	}
	return false
}
