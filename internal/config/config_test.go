package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mentorgraph.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Default()
	if cfg.Server.Addr != want.Server.Addr {
		t.Errorf("Addr = %q, want %q", cfg.Server.Addr, want.Server.Addr)
	}
	if cfg.Embedding.Provider != "mock" || cfg.Embedding.Dimensions != 384 {
		t.Errorf("embedding defaults = %+v", cfg.Embedding)
	}
	if cfg.Matching.Epsilon != 0.1 || cfg.Matching.SearchK != 20 {
		t.Errorf("matching defaults = %+v", cfg.Matching)
	}
	if cfg.Vectors.SessionSnapshots {
		t.Error("session snapshots should default to off")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
embedding:
  provider: openai
  api_key: sk-direct
  model: text-embedding-3-small
  dimensions: 256
  timeout: 5s
matching:
  epsilon: 0.25
  search_k: 40
vectors:
  session_snapshots: true
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Embedding.Provider != "openai" || cfg.Embedding.Dimensions != 256 {
		t.Errorf("embedding = %+v", cfg.Embedding)
	}
	if cfg.Embedding.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.Embedding.Timeout)
	}
	if cfg.Matching.Epsilon != 0.25 || cfg.Matching.SearchK != 40 {
		t.Errorf("matching = %+v", cfg.Matching)
	}
	if !cfg.Vectors.SessionSnapshots {
		t.Error("session_snapshots should be enabled")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
}

func TestLoadExpandsAPIKeyEnv(t *testing.T) {
	t.Setenv("MENTORGRAPH_TEST_KEY", "sk-from-env")
	path := writeConfig(t, `
embedding:
  provider: openai
  api_key: ${MENTORGRAPH_TEST_KEY}
  dimensions: 128
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Embedding.APIKey != "sk-from-env" {
		t.Errorf("APIKey = %q, want sk-from-env", cfg.Embedding.APIKey)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "bad provider",
			content: `
embedding:
  provider: carrier-pigeon
`,
		},
		{
			name: "epsilon out of range",
			content: `
matching:
  epsilon: 1.5
`,
		},
		{
			name: "zero dimensions",
			content: `
embedding:
  provider: mock
  dimensions: -1
`,
		},
		{
			name:    "malformed yaml",
			content: "server: [not a map",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Load() should fail")
			}
		})
	}
}
