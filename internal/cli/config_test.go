package cli

import (
	"testing"

	"github.com/guiyumin/vsum/internal/core/config"
)

func TestSetGetConfigValue(t *testing.T) {
	tests := []struct {
		key   string
		value string
		want  string
	}{
		{"output_dir", "~/notes", "~/notes"},
		{"format", "Concise", "concise"},
		{"languages", "de, en ,", "de,en"},
		{"llm.model", "claude-haiku-4-5-20251001", "claude-haiku-4-5-20251001"},
		{"llm.max_tokens", "8000", "8000"},
		{"llm.temperature", "0.3", "0.3"},
		{"llm.extended_thinking", "true", "true"},
		{"embedding.provider", "qwen", "qwen"},
		{"chunking.strategy", "timestamp", "timestamp"},
		{"chunking.chunk_size", "1500", "1500"},
		{"chunking.interval_seconds", "120", "120"},
		{"chunking.semantic_percentile", "90", "90"},
		{"server.port", "9000", "9000"},
		{"server.api_key", "secret", "secret"},
	}

	for _, tt := range tests {
		cfg := config.DefaultConfig()
		if err := setConfigValue(cfg, tt.key, tt.value); err != nil {
			t.Errorf("set %s=%s: %v", tt.key, tt.value, err)
			continue
		}
		got, err := getConfigValue(cfg, tt.key)
		if err != nil {
			t.Errorf("get %s: %v", tt.key, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestSetConfigValueRejects(t *testing.T) {
	tests := []struct{ key, value string }{
		{"nope", "x"},
		{"format", "haiku"},
		{"llm.provider", "gemini"},
		{"llm.max_tokens", "lots"},
		{"llm.max_tokens", "-1"},
		{"llm.extended_thinking", "maybe"},
		{"embedding.provider", "anthropic"},
		{"chunking.strategy", "random"},
		{"chunking.interval_seconds", "-5"},
	}
	for _, tt := range tests {
		if err := setConfigValue(config.DefaultConfig(), tt.key, tt.value); err == nil {
			t.Errorf("set %s=%s should fail", tt.key, tt.value)
		}
	}
	if _, err := getConfigValue(config.DefaultConfig(), "nope"); err == nil {
		t.Error("get of unknown key should fail")
	}
}

func TestSetProviderResetsModel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.APIKey = "sk-ant"
	if err := setConfigValue(cfg, "llm.provider", config.ProviderOpenAI); err != nil {
		t.Fatal(err)
	}
	if cfg.LLM.Model != config.DefaultModel(config.ProviderOpenAI) {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.APIKey != "" {
		t.Error("previous provider's key kept")
	}
}

func TestKeyState(t *testing.T) {
	tests := []struct{ plain, sealed, want string }{
		{"", "", "not set"},
		{"k", "", "set"},
		{"", "v1:abc", "encrypted"},
		{"k", "v1:abc", "set"},
	}
	for _, tt := range tests {
		if got := keyState(tt.plain, tt.sealed); got != tt.want {
			t.Errorf("keyState(%q, %q) = %q, want %q", tt.plain, tt.sealed, got, tt.want)
		}
	}
}
