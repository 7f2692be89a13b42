package decompose

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

type mockCompleter struct {
	response string
	err      error
	calls    int
}

func (m *mockCompleter) Complete(_ context.Context, _ string) (string, error) {
	m.calls++
	return m.response, m.err
}

func TestDecompose_LLMSuccess(t *testing.T) {
	completer := &mockCompleter{response: `{
		"semantic_query": "largest investment advisers",
		"filters": {
			"city": "st louis",
			"state": "MO",
			"min_aum": 2000000000,
			"max_aum": 0,
			"services": ["Private Placements"],
			"require_private_funds": false,
			"top_n": 5
		}
	}`}
	svc := New(completer, time.Second, zap.NewNop())

	dec := svc.Decompose(context.Background(), "top 5 largest firms in st louis over $2b")

	if dec.UsedFallback {
		t.Fatal("expected LLM decomposition, not fallback")
	}
	if dec.SemanticQuery != "largest investment advisers" {
		t.Errorf("SemanticQuery = %q", dec.SemanticQuery)
	}
	if dec.Filters.City != "st. louis" {
		t.Errorf("City = %q, want canonical st. louis", dec.Filters.City)
	}
	if dec.Filters.State != "MO" {
		t.Errorf("State = %q", dec.Filters.State)
	}
	if dec.Filters.MinAUM == nil || *dec.Filters.MinAUM != 2e9 {
		t.Errorf("MinAUM = %v", dec.Filters.MinAUM)
	}
	if len(dec.Filters.Services) != 1 || dec.Filters.Services[0] != "private placements" {
		t.Errorf("Services = %v", dec.Filters.Services)
	}
	if !dec.Filters.RequirePrivateFunds {
		t.Error("services must imply the private-fund predicate")
	}
	if dec.Filters.TopN != 5 {
		t.Errorf("TopN = %d", dec.Filters.TopN)
	}
}

func TestDecompose_FencedOutput(t *testing.T) {
	completer := &mockCompleter{response: "```json\n" + `{"semantic_query": "advisers", "filters": {"city": "", "state": "", "min_aum": 0, "max_aum": 0, "services": [], "require_private_funds": false, "top_n": 0}}` + "\n```"}
	svc := New(completer, time.Second, zap.NewNop())

	dec := svc.Decompose(context.Background(), "advisers")
	if dec.UsedFallback {
		t.Fatal("fenced JSON should still parse")
	}
}

func TestDecompose_MalformedFallsBack(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not json", "the best firms are..."},
		{"unknown field", `{"semantic_query": "x", "filters": {}, "extra": 1}`},
		{"negative aum", `{"semantic_query": "x", "filters": {"city": "", "state": "", "min_aum": -5, "max_aum": 0, "services": [], "require_private_funds": false, "top_n": 0}}`},
		{"min above max", `{"semantic_query": "x", "filters": {"city": "", "state": "", "min_aum": 9, "max_aum": 5, "services": [], "require_private_funds": false, "top_n": 0}}`},
		{"unknown state", `{"semantic_query": "x", "filters": {"city": "", "state": "ZZ", "min_aum": 0, "max_aum": 0, "services": [], "require_private_funds": false, "top_n": 0}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(&mockCompleter{response: tt.response}, time.Second, zap.NewNop())
			dec := svc.Decompose(context.Background(), "advisers in missouri")
			if !dec.UsedFallback {
				t.Fatal("expected rule-parser fallback")
			}
			// fallback must still extract what it can
			if dec.Filters.State != "MO" {
				t.Errorf("fallback State = %q, want MO", dec.Filters.State)
			}
		})
	}
}

func TestDecompose_CompleterErrorFallsBack(t *testing.T) {
	svc := New(&mockCompleter{err: errors.New("model unavailable")}, time.Second, zap.NewNop())

	dec := svc.Decompose(context.Background(), "top 3 firms in missouri")
	if !dec.UsedFallback {
		t.Fatal("expected fallback on completer error")
	}
	if dec.Filters.TopN != 3 || dec.Filters.State != "MO" {
		t.Fatalf("fallback filters = %+v", dec.Filters)
	}
}

func TestDecompose_NoCompleter(t *testing.T) {
	svc := New(nil, time.Second, zap.NewNop())

	dec := svc.Decompose(context.Background(), "hedge fund advisers")
	if !dec.UsedFallback {
		t.Fatal("expected fallback with no completer")
	}
	if len(dec.Filters.Services) != 1 || dec.Filters.Services[0] != "hedge funds" {
		t.Fatalf("Services = %v", dec.Filters.Services)
	}
}

func TestDecompose_EmptySemanticQueryUsesRaw(t *testing.T) {
	completer := &mockCompleter{response: `{"semantic_query": "", "filters": {"city": "", "state": "", "min_aum": 0, "max_aum": 0, "services": [], "require_private_funds": false, "top_n": 0}}`}
	svc := New(completer, time.Second, zap.NewNop())

	dec := svc.Decompose(context.Background(), "growth advisers")
	if dec.SemanticQuery != "growth advisers" {
		t.Fatalf("SemanticQuery = %q, want raw query", dec.SemanticQuery)
	}
}
