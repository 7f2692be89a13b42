package profiles

import (
	"context"
	"errors"
	"testing"

	"github.com/Turnstyle/ria-hunter/internal/db"
)

type mockIndexStore struct {
	exists    bool
	existsErr error

	created   *db.IndexDefinition
	createErr error
}

func (m *mockIndexStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	m.created = def
	return m.createErr
}

func (m *mockIndexStore) IndexExists(context.Context, string) (bool, error) {
	return m.exists, m.existsErr
}

func testIndexConfig() IndexConfig {
	return IndexConfig{Dimensions: 1536, HNSWM: 32, EFConstruct: 400}
}

func TestEnsureIndex_CreatesSchema(t *testing.T) {
	store := &mockIndexStore{}

	if err := EnsureIndex(context.Background(), store, testIndexConfig()); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}
	if store.created == nil {
		t.Fatal("index not created")
	}
	if store.created.Name != IndexName {
		t.Errorf("name = %s", store.created.Name)
	}
	if len(store.created.Prefixes) != 1 || store.created.Prefixes[0] != "riahunter:profile:" {
		t.Errorf("prefixes = %v", store.created.Prefixes)
	}

	byName := make(map[string]db.IndexField)
	for _, f := range store.created.Fields {
		byName[f.Name] = f
	}
	if byName["state"].Type != db.IndexFieldTag {
		t.Errorf("state field = %+v", byName["state"])
	}
	if byName["aum"].Type != db.IndexFieldNumeric {
		t.Errorf("aum field = %+v", byName["aum"])
	}
	if byName["services"].TagSeparator != "," {
		t.Errorf("services field = %+v", byName["services"])
	}
	if byName["narrative"].Type != db.IndexFieldText {
		t.Errorf("narrative field = %+v", byName["narrative"])
	}
	vec := byName["narrative_vector"]
	if vec.Type != db.IndexFieldVector || vec.VectorDim != 1536 || vec.VectorM != 32 || vec.VectorEFConstruct != 400 {
		t.Errorf("vector field = %+v", vec)
	}
}

func TestEnsureIndex_SkipsWhenPresent(t *testing.T) {
	store := &mockIndexStore{exists: true}

	if err := EnsureIndex(context.Background(), store, testIndexConfig()); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}
	if store.created != nil {
		t.Error("index must not be recreated")
	}
}

func TestEnsureIndex_TolerantOfRace(t *testing.T) {
	store := &mockIndexStore{createErr: db.ErrIndexExists}

	if err := EnsureIndex(context.Background(), store, testIndexConfig()); err != nil {
		t.Fatalf("concurrent index creation must not fail: %v", err)
	}
}

func TestEnsureIndex_ProbeError(t *testing.T) {
	store := &mockIndexStore{existsErr: errors.New("connection refused")}

	if err := EnsureIndex(context.Background(), store, testIndexConfig()); err == nil {
		t.Fatal("expected error")
	}
}
