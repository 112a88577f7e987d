// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App            AppConfig            `mapstructure:"app"`
	Server         ServerConfig         `mapstructure:"server"`
	Upstream       UpstreamConfig       `mapstructure:"upstream"`
	Transformation TransformationConfig `mapstructure:"transformation"`
	Cache          CacheConfig          `mapstructure:"cache"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Tracing        TracingConfig        `mapstructure:"tracing"`
	Features       FeatureFlags         `mapstructure:"features"`
}

// TracingConfig configures span export. An empty endpoint disables it.
type TracingConfig struct {
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int `mapstructure:"port"`
	MetricsPort     int `mapstructure:"metrics_port"`
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // seconds
}

type UpstreamConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

// Timeout returns the upstream request timeout as a duration.
func (u UpstreamConfig) Timeout() time.Duration {
	return time.Duration(u.TimeoutMs) * time.Millisecond
}

// TransformationConfig controls relevance scoring and niche regeneration.
type TransformationConfig struct {
	SimilarityThreshold float64          `mapstructure:"similarity_threshold"`
	DefaultNicheCount   int              `mapstructure:"default_niche_count"`
	Weights             AlgorithmWeights `mapstructure:"weights"`
}

// AlgorithmWeights blends the three similarity algorithms. The three
// weights must sum to 1.0.
type AlgorithmWeights struct {
	Levenshtein float64 `mapstructure:"levenshtein"`
	Jaccard     float64 `mapstructure:"jaccard"`
	JaroWinkler float64 `mapstructure:"jaro_winkler"`
}

type CacheConfig struct {
	TTLSeconds         int `mapstructure:"ttl_seconds"`
	FallbackTTLSeconds int `mapstructure:"fallback_ttl_seconds"`
	VocabTTLSeconds    int `mapstructure:"vocab_ttl_seconds"`
}

// TTL returns the primary cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// FallbackTTL returns the in-memory fallback entry lifetime.
func (c CacheConfig) FallbackTTL() time.Duration {
	return time.Duration(c.FallbackTTLSeconds) * time.Second
}

// VocabTTL returns the category vocabulary cache lifetime.
func (c CacheConfig) VocabTTL() time.Duration {
	return time.Duration(c.VocabTTLSeconds) * time.Second
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FeatureFlags toggles optional behavior at runtime.
type FeatureFlags struct {
	MockFallbackEnabled bool `mapstructure:"mock_fallback_enabled"`
	MetricsEnabled      bool `mapstructure:"metrics_enabled"`
}
