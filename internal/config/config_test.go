package config

import "testing"

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_ProviderRequiresNameAndModel(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Providers = []ProviderConfig{{APIKey: "test-key"}}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for provider without a name")
	}

	cfg.Embedding.Providers = []ProviderConfig{{Name: "openai", APIKey: "test-key"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for provider without a model")
	}
}

func TestValidate_ThresholdBelowOne(t *testing.T) {
	cfg := validConfig()
	cfg.Search.SimilarityThreshold = 1.0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for threshold at 1")
	}
}

func TestValidate_WeightsMustSumPositive(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()
	cfg.Search.SemanticWeight = -0.7
	cfg.Search.LexicalWeight = 0.3

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive weight sum")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Providers = []ProviderConfig{{Name: "openai", Model: "text-embedding-3-small"}}
	cfg.ApplyDefaults()

	if cfg.Embedding.Dimensions != 1536 {
		t.Errorf("dimensions = %d, want 1536", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.Providers[0].TimeoutSec != 10 {
		t.Errorf("provider timeout = %d, want 10", cfg.Embedding.Providers[0].TimeoutSec)
	}
	if cfg.Search.SimilarityThreshold != 0.3 {
		t.Errorf("similarity threshold = %g, want 0.3", cfg.Search.SimilarityThreshold)
	}
	if cfg.Search.RRFK != 60 {
		t.Errorf("rrf k = %d, want 60", cfg.Search.RRFK)
	}
	if cfg.Search.SemanticWeight != 0.7 || cfg.Search.LexicalWeight != 0.3 {
		t.Errorf("weights = %g/%g, want 0.7/0.3", cfg.Search.SemanticWeight, cfg.Search.LexicalWeight)
	}
	if cfg.Search.GeoBoost != 1.20 || cfg.Search.ServiceBoost != 1.15 {
		t.Errorf("boosts = %g/%g, want 1.20/1.15", cfg.Search.GeoBoost, cfg.Search.ServiceBoost)
	}
	if cfg.Enrich.Concurrency != 4 || cfg.Enrich.DeadlineMS != 5000 {
		t.Errorf("enrich defaults = %+v", cfg.Enrich)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := validConfig()
	cfg.Search.SimilarityThreshold = 0.45
	cfg.Search.RRFK = 90
	cfg.Enrich.TopK = 3
	cfg.ApplyDefaults()

	if cfg.Search.SimilarityThreshold != 0.45 {
		t.Errorf("threshold overwritten: %g", cfg.Search.SimilarityThreshold)
	}
	if cfg.Search.RRFK != 90 {
		t.Errorf("rrf k overwritten: %d", cfg.Search.RRFK)
	}
	if cfg.Enrich.TopK != 3 {
		t.Errorf("enrich top_k overwritten: %d", cfg.Enrich.TopK)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("RIAHUNTER_TEST_ADDR", "redis-prod:6379")

	out := string(expandEnvVars([]byte("addrs: [${RIAHUNTER_TEST_ADDR}]")))
	if out != "addrs: [redis-prod:6379]" {
		t.Errorf("expanded = %q", out)
	}

	out = string(expandEnvVars([]byte("addrs: [${RIAHUNTER_UNSET_VAR:-localhost:6379}]")))
	if out != "addrs: [localhost:6379]" {
		t.Errorf("default not applied: %q", out)
	}

	out = string(expandEnvVars([]byte("addrs: [${RIAHUNTER_UNSET_VAR}]")))
	if out != "addrs: []" {
		t.Errorf("unset without default = %q", out)
	}
}
