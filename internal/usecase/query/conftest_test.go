package query

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/Turnstyle/ria-hunter/internal/domain"
	"github.com/Turnstyle/ria-hunter/internal/domain/search/request"
	"github.com/Turnstyle/ria-hunter/internal/domain/search/result"
)

type mockDecomposer struct {
	dec domain.Decomposition
}

func (m *mockDecomposer) Decompose(_ context.Context, query string) domain.Decomposition {
	if m.dec.SemanticQuery == "" {
		m.dec.SemanticQuery = query
	}
	return m.dec
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

type vectorCall struct {
	filters domain.StructuredFilters
	topK    int
}

type sortedCall struct {
	attribute  string
	descending bool
	filters    domain.StructuredFilters
	limit      int
}

// mockRepo records every call and replays canned responses. The *Fn hooks
// take precedence when set so tests can vary behavior between invocations.
type mockRepo struct {
	vectorCalls  []vectorCall
	lexicalCalls []vectorCall
	sortedCalls  []sortedCall

	vectorRes  []result.Scored
	vectorErr  error
	vectorFn   func(f domain.StructuredFilters) ([]result.Scored, error)
	lexicalRes []result.Scored
	lexicalErr error
	lexicalFn  func(f domain.StructuredFilters) ([]result.Scored, error)
	sortedRes  []result.Scored
	sortedErr  error
	sortedFn   func(f domain.StructuredFilters) ([]result.Scored, error)

	profile    domain.Profile
	profileErr error
}

func (m *mockRepo) VectorSearch(_ context.Context, _ []float32, f domain.StructuredFilters, topK int) ([]result.Scored, error) {
	m.vectorCalls = append(m.vectorCalls, vectorCall{filters: f, topK: topK})
	if m.vectorFn != nil {
		return m.vectorFn(f)
	}
	return m.vectorRes, m.vectorErr
}

func (m *mockRepo) LexicalSearch(_ context.Context, _ string, f domain.StructuredFilters, topK int) ([]result.Scored, error) {
	m.lexicalCalls = append(m.lexicalCalls, vectorCall{filters: f, topK: topK})
	if m.lexicalFn != nil {
		return m.lexicalFn(f)
	}
	return m.lexicalRes, m.lexicalErr
}

func (m *mockRepo) SortedSearch(_ context.Context, attribute string, descending bool, f domain.StructuredFilters, limit int) ([]result.Scored, error) {
	m.sortedCalls = append(m.sortedCalls, sortedCall{attribute: attribute, descending: descending, filters: f, limit: limit})
	if m.sortedFn != nil {
		return m.sortedFn(f)
	}
	return m.sortedRes, m.sortedErr
}

func (m *mockRepo) GetByCRD(context.Context, string) (domain.Profile, error) {
	return m.profile, m.profileErr
}

type mockEnricher struct {
	complete bool
	calls    int
	people   []domain.RelatedPerson
}

func (m *mockEnricher) Enrich(_ context.Context, results []result.Scored) ([]result.Scored, bool) {
	m.calls++
	for i := range results {
		results[i].People = m.people
	}
	return results, m.complete
}

func testConfig() Config {
	return Config{
		SimilarityThreshold: 0.3,
		RRFK:                60,
		SemanticWeight:      0.7,
		LexicalWeight:       0.3,
		GeoBoost:            1.20,
		ServiceBoost:        1.15,
	}
}

func newTestService(dec *mockDecomposer, emb *mockEmbedder, repo *mockRepo, enr Enricher) *Service {
	return New(dec, emb, repo, enr, testConfig(), zap.NewNop())
}

func mustRequest(t *testing.T, query string) *request.Request {
	t.Helper()
	req, err := request.New(query, 0, 0, 0, nil, false)
	if err != nil {
		t.Fatalf("request.New(%q): %v", query, err)
	}
	return &req
}

func semanticHit(crd string, score float64) result.Scored {
	return result.Scored{
		Profile:       domain.Profile{CRD: crd, FirmName: "Firm " + crd},
		SemanticScore: &score,
		BusinessBoost: 1.0,
		RankSource:    result.SourceSemantic,
	}
}

func lexicalHit(crd string, score float64) result.Scored {
	return result.Scored{
		Profile:       domain.Profile{CRD: crd, FirmName: "Firm " + crd},
		LexicalScore:  &score,
		BusinessBoost: 1.0,
		RankSource:    result.SourceLexical,
	}
}

func hasReason(reasons []string, want string) bool {
	for _, r := range reasons {
		if r == want {
			return true
		}
	}
	return false
}
