// Package config provides configuration loading for mentorgraph.
// It supports YAML files with ${VAR} expansion for secrets and sensible
// defaults when no file is present.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config contains all mentorgraph settings.
type Config struct {
	// Server contains the HTTP listener settings.
	Server ServerConfig `json:"server" yaml:"server"`

	// Embedding configures the text encoder boundary.
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`

	// Matching configures the explore/exploit policy.
	Matching MatchingConfig `json:"matching" yaml:"matching"`

	// Vectors configures the vector store's optional write paths.
	Vectors VectorsConfig `json:"vectors" yaml:"vectors"`

	// Privacy configures the differential-privacy helpers.
	Privacy PrivacyConfig `json:"privacy" yaml:"privacy"`

	// Logging configures operational log output.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// ServerConfig configures the HTTP boundary.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8000".
	Addr string `json:"addr" yaml:"addr"`
}

// EmbeddingConfig configures the encoder.
type EmbeddingConfig struct {
	// Provider identifies the encoder backend: "mock" (deterministic hash
	// embedder, the offline default) or "openai" (any OpenAI-compatible
	// embeddings endpoint).
	Provider string `json:"provider" yaml:"provider"`

	// APIKey is the provider API key. Supports ${VAR} syntax for env vars.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the endpoint for OpenAI-compatible providers.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Model is the embedding model identifier.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// Dimensions is the fixed vector dimension D shared by the encoder and
	// the vector store.
	Dimensions int `json:"dimensions" yaml:"dimensions"`

	// Timeout bounds each encode call.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// MatchingConfig configures the match policy.
type MatchingConfig struct {
	// Epsilon is the exploration probability in [0,1].
	Epsilon float64 `json:"epsilon" yaml:"epsilon"`

	// SearchK is the minimum raw candidate count fetched per search.
	SearchK int `json:"search_k" yaml:"search_k"`
}

// VectorsConfig configures optional vector store behavior.
type VectorsConfig struct {
	// SessionSnapshots additionally stores one embedding per raw transcript
	// alongside the profile snapshots. Off by default; profile snapshots
	// alone drive matching.
	SessionSnapshots bool `json:"session_snapshots" yaml:"session_snapshots"`
}

// PrivacyConfig configures the privacy helpers.
type PrivacyConfig struct {
	// Epsilon is the Laplace noise budget; noise scale is 1/epsilon.
	Epsilon float64 `json:"epsilon" yaml:"epsilon"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level sets log verbosity: "debug", "info" (default), "warn", "error".
	Level string `json:"level" yaml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8000"},
		Embedding: EmbeddingConfig{
			Provider:   "mock",
			Dimensions: 384,
			Timeout:    15 * time.Second,
		},
		Matching: MatchingConfig{
			Epsilon: 0.1,
			SearchK: 20,
		},
		Privacy: PrivacyConfig{Epsilon: 1.0},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error; an unreadable or malformed one is. ${VAR} references in the API
// key are expanded from the environment after parsing.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.Embedding.APIKey = os.ExpandEnv(cfg.Embedding.APIKey)
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	if c.Matching.Epsilon < 0 || c.Matching.Epsilon > 1 {
		return fmt.Errorf("matching.epsilon must be in [0,1], got %v", c.Matching.Epsilon)
	}
	switch c.Embedding.Provider {
	case "mock", "openai":
	default:
		return fmt.Errorf("embedding.provider must be \"mock\" or \"openai\", got %q", c.Embedding.Provider)
	}
	return nil
}
