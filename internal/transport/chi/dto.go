package chi

import (
	"github.com/Turnstyle/ria-hunter/internal/domain"
	"github.com/Turnstyle/ria-hunter/internal/domain/search/result"
	queryuc "github.com/Turnstyle/ria-hunter/internal/usecase/query"
)

// Error codes returned in error responses.
const (
	codeBadRequest    = "bad_request"
	codeInvalidQuery  = "invalid_query"
	codeUnauthorized  = "unauthorized"
	codeInternalError = "internal_error"
)

type errorDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type searchRequestDTO struct {
	Query          string   `json:"query"`
	TopK           int      `json:"top_k,omitempty"`
	SemanticWeight float64  `json:"semantic_weight,omitempty"`
	LexicalWeight  float64  `json:"lexical_weight,omitempty"`
	MinSimilarity  *float64 `json:"min_similarity,omitempty"`
	IncludePeople  bool     `json:"include_people,omitempty"`
}

type searchResponseDTO struct {
	Results []resultDTO `json:"results"`
	Meta    metaDTO     `json:"meta"`
}

type resultDTO struct {
	CRD              string      `json:"crd"`
	FirmName         string      `json:"firm_name"`
	City             string      `json:"city,omitempty"`
	State            string      `json:"state,omitempty"`
	AUM              float64     `json:"aum,omitempty"`
	PrivateFundCount int         `json:"private_fund_count,omitempty"`
	PrivateFundAUM   float64     `json:"private_fund_aum,omitempty"`
	Services         []string    `json:"services,omitempty"`
	SemanticScore    *float64    `json:"semantic_score,omitempty"`
	LexicalScore     *float64    `json:"lexical_score,omitempty"`
	BusinessBoost    float64     `json:"business_boost"`
	CombinedScore    float64     `json:"combined_score"`
	RankSource       string      `json:"rank_source"`
	People           []personDTO `json:"people,omitempty"`
}

type personDTO struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

type metaDTO struct {
	Strategy                  string     `json:"strategy"`
	SemanticQuery             string     `json:"semantic_query"`
	Filters                   filtersDTO `json:"filters"`
	Degraded                  bool       `json:"degraded"`
	DegradedReasons           []string   `json:"degraded_reasons,omitempty"`
	DecompositionUsedFallback bool       `json:"decomposition_used_fallback"`
	Relaxed                   bool       `json:"filters_relaxed"`
}

type filtersDTO struct {
	City                string   `json:"city,omitempty"`
	State               string   `json:"state,omitempty"`
	MinAUM              *float64 `json:"min_aum,omitempty"`
	MaxAUM              *float64 `json:"max_aum,omitempty"`
	Services            []string `json:"services,omitempty"`
	RequirePrivateFunds bool     `json:"require_private_funds,omitempty"`
	TopN                int      `json:"top_n,omitempty"`
}

func responseToDTO(resp *queryuc.Response) searchResponseDTO {
	results := make([]resultDTO, len(resp.Results))
	for i := range resp.Results {
		results[i] = resultToDTO(&resp.Results[i])
	}

	return searchResponseDTO{
		Results: results,
		Meta: metaDTO{
			Strategy:                  string(resp.Meta.Strategy),
			SemanticQuery:             resp.Meta.SemanticQuery,
			Filters:                   filtersToDTO(resp.Meta.Filters),
			Degraded:                  resp.Meta.Degraded,
			DegradedReasons:           resp.Meta.DegradedReasons,
			DecompositionUsedFallback: resp.Meta.DecompositionUsedFallback,
			Relaxed:                   resp.Meta.Relaxed,
		},
	}
}

func resultToDTO(r *result.Scored) resultDTO {
	dto := resultDTO{
		CRD:              r.Profile.CRD,
		FirmName:         r.Profile.FirmName,
		City:             r.Profile.City,
		State:            r.Profile.State,
		AUM:              r.Profile.AUM,
		PrivateFundCount: r.Profile.PrivateFundCount,
		PrivateFundAUM:   r.Profile.PrivateFundAUM,
		Services:         r.Profile.Services,
		SemanticScore:    r.SemanticScore,
		LexicalScore:     r.LexicalScore,
		BusinessBoost:    r.BusinessBoost,
		CombinedScore:    r.CombinedScore,
		RankSource:       string(r.RankSource),
	}

	if len(r.People) > 0 {
		dto.People = make([]personDTO, len(r.People))
		for i, p := range r.People {
			dto.People[i] = personDTO{Name: p.Name, Role: p.Role}
		}
	}
	return dto
}

func filtersToDTO(f domain.StructuredFilters) filtersDTO {
	return filtersDTO{
		City:                f.City,
		State:               f.State,
		MinAUM:              f.MinAUM,
		MaxAUM:              f.MaxAUM,
		Services:            f.Services,
		RequirePrivateFunds: f.RequirePrivateFunds,
		TopN:                f.TopN,
	}
}
