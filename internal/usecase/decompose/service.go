package decompose

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Turnstyle/ria-hunter/internal/domain"
	"github.com/Turnstyle/ria-hunter/internal/domain/geo"
	"github.com/Turnstyle/ria-hunter/internal/metrics"
)

const promptTemplate = `Decompose an investment-adviser search query into a JSON object.

Return ONLY a JSON object with exactly these fields:
{
  "semantic_query": "the conceptual part of the query, enriched for similarity search",
  "filters": {
    "city": "city name or empty string",
    "state": "two-letter US state code or empty string",
    "min_aum": 0,
    "max_aum": 0,
    "services": ["canonical service names"],
    "require_private_funds": false,
    "top_n": 0
  }
}

Rules:
- min_aum and max_aum are dollar amounts; 0 means not specified.
- top_n is the requested result count from phrases like "top 5"; 0 means not specified.
- services come from: private placements, venture capital, private equity, hedge funds, alternative investments, private funds.
- semantic_query must never be empty; fall back to the raw query.

Query: %q`

// Service turns raw queries into structured decompositions. The language
// model is advisory: any failure, timeout, or malformed response falls back
// to the deterministic rule parser so decomposition itself never fails.
type Service struct {
	completer Completer
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates a decomposition service. completer may be nil, in which case
// every query goes through the rule parser.
func New(completer Completer, timeout time.Duration, logger *zap.Logger) *Service {
	return &Service{
		completer: completer,
		timeout:   timeout,
		logger:    logger,
	}
}

// Decompose parses a query into a semantic phrase plus structured filters.
// It never returns an error: the rule-based parser is the floor.
func (s *Service) Decompose(ctx context.Context, query string) domain.Decomposition {
	if s.completer == nil {
		return s.fallback(query, "no completer configured")
	}

	llmCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		llmCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, err := s.completer.Complete(llmCtx, fmt.Sprintf(promptTemplate, query))
	if err != nil {
		return s.fallback(query, fmt.Sprintf("completion failed: %v", err))
	}

	dec, err := parseResponse(raw, query)
	if err != nil {
		return s.fallback(query, fmt.Sprintf("malformed response: %v", err))
	}

	return dec
}

func (s *Service) fallback(query, reason string) domain.Decomposition {
	s.logger.Debug("Decomposition fell back to rule parser", zap.String("reason", reason))
	metrics.DecompositionFallbacksTotal.Inc()

	dec := ParseRules(query)
	dec.UsedFallback = true
	return dec
}

// responseDTO mirrors the JSON contract the model is asked to follow.
type responseDTO struct {
	SemanticQuery string `json:"semantic_query"`
	Filters       struct {
		City                string   `json:"city"`
		State               string   `json:"state"`
		MinAUM              float64  `json:"min_aum"`
		MaxAUM              float64  `json:"max_aum"`
		Services            []string `json:"services"`
		RequirePrivateFunds bool     `json:"require_private_funds"`
		TopN                int      `json:"top_n"`
	} `json:"filters"`
}

// parseResponse validates the model output strictly. Anything that does not
// decode, or contains out-of-range values, is malformed and triggers the
// fallback; no partial salvage.
func parseResponse(raw, query string) (domain.Decomposition, error) {
	raw = strings.TrimSpace(raw)
	// tolerate fenced output, nothing else
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var dto responseDTO
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&dto); err != nil {
		return domain.Decomposition{}, fmt.Errorf("%w: %w", domain.ErrDecompositionMalformed, err)
	}

	if dto.Filters.MinAUM < 0 || dto.Filters.MaxAUM < 0 || dto.Filters.TopN < 0 {
		return domain.Decomposition{}, fmt.Errorf("%w: negative numeric field", domain.ErrDecompositionMalformed)
	}
	if dto.Filters.MinAUM > 0 && dto.Filters.MaxAUM > 0 && dto.Filters.MinAUM > dto.Filters.MaxAUM {
		return domain.Decomposition{}, fmt.Errorf("%w: min_aum exceeds max_aum", domain.ErrDecompositionMalformed)
	}

	f := domain.StructuredFilters{
		City:                geo.CanonicalCity(dto.Filters.City),
		RequirePrivateFunds: dto.Filters.RequirePrivateFunds,
		TopN:                dto.Filters.TopN,
	}

	if dto.Filters.State != "" {
		code, ok := geo.StateCode(dto.Filters.State)
		if !ok {
			return domain.Decomposition{}, fmt.Errorf("%w: unknown state %q", domain.ErrDecompositionMalformed, dto.Filters.State)
		}
		f.State = code
	}

	if dto.Filters.MinAUM > 0 {
		v := dto.Filters.MinAUM
		f.MinAUM = &v
	}
	if dto.Filters.MaxAUM > 0 {
		v := dto.Filters.MaxAUM
		f.MaxAUM = &v
	}

	for _, svc := range dto.Filters.Services {
		if svc = strings.ToLower(strings.TrimSpace(svc)); svc != "" {
			f.Services = append(f.Services, svc)
		}
	}
	if len(f.Services) > 0 {
		f.RequirePrivateFunds = true
	}

	semantic := strings.TrimSpace(dto.SemanticQuery)
	if semantic == "" {
		semantic = query
	}

	return domain.Decomposition{
		SemanticQuery: semantic,
		Filters:       f,
	}, nil
}
