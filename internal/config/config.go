package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the riahunter API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Search    SearchConfig    `yaml:"search"`
	Enrich    EnrichConfig    `yaml:"enrich"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds the provider chain settings. Providers are tried
// in list order; all must emit vectors of the configured dimensionality.
type EmbeddingConfig struct {
	Dimensions     int              `yaml:"dimensions"`
	Providers      []ProviderConfig `yaml:"providers"`
	MaxRetries     int              `yaml:"max_retries"`      // rate-limit retries per provider
	RetryBackoffMS int              `yaml:"retry_backoff_ms"` // base for exponential backoff
	CacheTTLHours  int              `yaml:"cache_ttl_hours"`  // 0 = no expiry
}

// ProviderConfig holds a single embedding provider's settings.
type ProviderConfig struct {
	Name       string `yaml:"name"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// LLMConfig holds the completion provider used by the query decomposer.
type LLMConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// SearchConfig holds retrieval and fusion settings. These are the single
// authoritative defaults; call sites never hardcode their own.
type SearchConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"` // exclusive
	RRFK                int     `yaml:"rrf_k"`
	SemanticWeight      float64 `yaml:"semantic_weight"`
	LexicalWeight       float64 `yaml:"lexical_weight"`
	GeoBoost            float64 `yaml:"geo_boost"`     // multiplicative, after fusion
	ServiceBoost        float64 `yaml:"service_boost"` // multiplicative, after fusion
	TopK                int     `yaml:"top_k"`
	HNSWM               int     `yaml:"hnsw_m"`
	HNSWEFConstruct     int     `yaml:"hnsw_ef_construction"`
}

// EnrichConfig holds related-people fan-out settings.
type EnrichConfig struct {
	TopK            int `yaml:"top_k"`       // results to enrich
	MaxPeople       int `yaml:"max_people"`  // related records per profile
	Concurrency     int `yaml:"concurrency"` // parallel lookups
	LookupTimeoutMS int `yaml:"lookup_timeout_ms"`
	DeadlineMS      int `yaml:"deadline_ms"` // whole fan-out budget
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1536
	}
	if c.Embedding.MaxRetries <= 0 {
		c.Embedding.MaxRetries = 2
	}
	if c.Embedding.RetryBackoffMS <= 0 {
		c.Embedding.RetryBackoffMS = 200
	}
	for i := range c.Embedding.Providers {
		if c.Embedding.Providers[i].TimeoutSec <= 0 {
			c.Embedding.Providers[i].TimeoutSec = 10
		}
	}
	if c.LLM.TimeoutSec <= 0 {
		c.LLM.TimeoutSec = 15
	}
	if c.Search.SimilarityThreshold <= 0 {
		c.Search.SimilarityThreshold = 0.3
	}
	if c.Search.RRFK <= 0 {
		c.Search.RRFK = 60
	}
	if c.Search.SemanticWeight <= 0 {
		c.Search.SemanticWeight = 0.7
	}
	if c.Search.LexicalWeight <= 0 {
		c.Search.LexicalWeight = 0.3
	}
	if c.Search.GeoBoost <= 0 {
		c.Search.GeoBoost = 1.20
	}
	if c.Search.ServiceBoost <= 0 {
		c.Search.ServiceBoost = 1.15
	}
	if c.Search.TopK <= 0 {
		c.Search.TopK = 10
	}
	if c.Search.HNSWM <= 0 {
		c.Search.HNSWM = 32
	}
	if c.Search.HNSWEFConstruct <= 0 {
		c.Search.HNSWEFConstruct = 400
	}
	if c.Enrich.TopK <= 0 {
		c.Enrich.TopK = 10
	}
	if c.Enrich.MaxPeople <= 0 {
		c.Enrich.MaxPeople = 5
	}
	if c.Enrich.Concurrency <= 0 {
		c.Enrich.Concurrency = 4
	}
	if c.Enrich.LookupTimeoutMS <= 0 {
		c.Enrich.LookupTimeoutMS = 2000
	}
	if c.Enrich.DeadlineMS <= 0 {
		c.Enrich.DeadlineMS = 5000
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	for i, p := range c.Embedding.Providers {
		if p.Name == "" {
			return fmt.Errorf("embedding.providers[%d].name is required", i)
		}
		if p.Model == "" {
			return fmt.Errorf("embedding.providers[%d].model is required", i)
		}
	}
	if c.Search.SimilarityThreshold >= 1 {
		return fmt.Errorf("search.similarity_threshold must be below 1, got %g", c.Search.SimilarityThreshold)
	}
	if c.Search.SemanticWeight+c.Search.LexicalWeight <= 0 {
		return fmt.Errorf("search fusion weights must sum to a positive value")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
