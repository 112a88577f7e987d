// internal/common/config/loader.go
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "niche-proxy/internal/common/errors"
)

// Load reads configuration from configs/config.yaml plus an optional
// environment-specific overlay, with environment variables taking
// precedence over file values.
func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like UPSTREAM_BASE_URL
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	setFlagDefaults()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	setFlagDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setFlagDefaults registers defaults for boolean flags, which cannot
// be defaulted after unmarshal without losing explicit false values.
func setFlagDefaults() {
	viper.SetDefault("features.mock_fallback_enabled", true)
	viper.SetDefault("features.metrics_enabled", true)
}

// loadEnvFile tries .env in a few likely locations so the same config
// works when running from the repo root, cmd/, or test directories.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string config values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "niche-proxy"
	}
	if cfg.App.Version == "" {
		cfg.App.Version = "1.0.0"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3020
	}
	if cfg.Server.MetricsPort == 0 {
		cfg.Server.MetricsPort = 9090
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}

	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = "http://localhost:9999"
	}
	if cfg.Upstream.TimeoutMs == 0 {
		cfg.Upstream.TimeoutMs = 5000
	}

	if cfg.Transformation.SimilarityThreshold == 0 {
		cfg.Transformation.SimilarityThreshold = 0.55
	}
	if cfg.Transformation.DefaultNicheCount == 0 {
		cfg.Transformation.DefaultNicheCount = 5
	}
	if cfg.Transformation.Weights == (AlgorithmWeights{}) {
		cfg.Transformation.Weights = AlgorithmWeights{
			Levenshtein: 0.5,
			Jaccard:     0.3,
			JaroWinkler: 0.2,
		}
	}

	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 3600
	}
	if cfg.Cache.FallbackTTLSeconds == 0 {
		cfg.Cache.FallbackTTLSeconds = 300
	}
	if cfg.Cache.VocabTTLSeconds == 0 {
		cfg.Cache.VocabTTLSeconds = 86400
	}

	if cfg.Redis.Address == "" {
		cfg.Redis.Address = "localhost:6379"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// validateConfig rejects configurations the service cannot run with.
// Called at startup; any error here is fatal.
func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return apperrors.NewConfigurationInvalidError(fmt.Sprintf("server.port must be between 1 and 65535, got %d", cfg.Server.Port))
	}

	if cfg.Upstream.TimeoutMs <= 0 {
		return apperrors.NewConfigurationInvalidError(fmt.Sprintf("upstream.timeout_ms must be positive, got %d", cfg.Upstream.TimeoutMs))
	}

	t := cfg.Transformation
	if t.SimilarityThreshold < 0 || t.SimilarityThreshold > 1 {
		return apperrors.NewConfigurationInvalidError(fmt.Sprintf("transformation.similarity_threshold must be in [0, 1], got %v", t.SimilarityThreshold))
	}
	if t.DefaultNicheCount <= 0 {
		return apperrors.NewConfigurationInvalidError(fmt.Sprintf("transformation.default_niche_count must be positive, got %d", t.DefaultNicheCount))
	}

	sum := t.Weights.Levenshtein + t.Weights.Jaccard + t.Weights.JaroWinkler
	if math.Abs(sum-1.0) > 0.01 {
		return apperrors.NewConfigurationInvalidError(fmt.Sprintf("transformation.weights must sum to 1.0, got %v", sum))
	}
	if t.Weights.Levenshtein < 0 || t.Weights.Jaccard < 0 || t.Weights.JaroWinkler < 0 {
		return apperrors.NewConfigurationInvalidError("transformation.weights must be non-negative")
	}

	if cfg.Cache.TTLSeconds <= 0 {
		return apperrors.NewConfigurationInvalidError(fmt.Sprintf("cache.ttl_seconds must be positive, got %d", cfg.Cache.TTLSeconds))
	}
	if cfg.Cache.FallbackTTLSeconds <= 0 {
		return apperrors.NewConfigurationInvalidError(fmt.Sprintf("cache.fallback_ttl_seconds must be positive, got %d", cfg.Cache.FallbackTTLSeconds))
	}

	if cfg.Redis.Address == "" {
		return apperrors.NewConfigurationInvalidError("redis.address is required")
	}

	return nil
}
