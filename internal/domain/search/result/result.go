package result

import "github.com/Turnstyle/ria-hunter/internal/domain"

// RankSource records which retrieval path(s) produced a result.
type RankSource string

// Rank sources.
const (
	SourceSemantic   RankSource = "semantic"
	SourceLexical    RankSource = "lexical"
	SourceHybrid     RankSource = "hybrid"
	SourceDirectSort RankSource = "direct-sort"
	SourceLookup     RankSource = "lookup"
)

// Scored is a profile plus per-path scores and the fusion output. Constructed
// during fusion, consumed by the enricher, discarded after serialization.
type Scored struct {
	Profile domain.Profile
	// SemanticScore and LexicalScore are nil when the corresponding path
	// did not return this profile.
	SemanticScore *float64
	LexicalScore  *float64
	// BusinessBoost is the multiplicative factor applied after fusion
	// (1.0 means no boost).
	BusinessBoost float64
	CombinedScore float64
	RankSource    RankSource
	People        []domain.RelatedPerson
}
