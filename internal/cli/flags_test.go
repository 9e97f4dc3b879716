package cli

import (
	"testing"

	"github.com/guiyumin/vsum/internal/core/config"
	"github.com/spf13/cobra"
)

func flagCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	addSummaryFlags(cmd)
	addChunkingFlags(cmd)
	addLanguageFlag(cmd)
	return cmd
}

func TestApplyFlags(t *testing.T) {
	cmd := flagCommand()
	err := cmd.Flags().Parse([]string{
		"--model", "gpt-4.1",
		"-f", "bullet_points",
		"--max-tokens", "2000",
		"--extended-thinking",
		"--chunking", "semantic",
		"--chunk-size", "800",
		"--interval", "60",
		"-l", "fr,en",
	})
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		t.Fatal(err)
	}

	if cfg.LLM.Model != "gpt-4.1" || cfg.Format != "bullet_points" || cfg.LLM.MaxTokens != 2000 || !cfg.LLM.ExtendedThinking {
		t.Errorf("summary flags not applied: %+v / %s", cfg.LLM, cfg.Format)
	}
	if cfg.Chunking.Strategy != "semantic" || cfg.Chunking.ChunkSize != 800 || cfg.Chunking.IntervalSeconds != 60 {
		t.Errorf("chunking flags not applied: %+v", cfg.Chunking)
	}
	// Unset flags keep config values.
	if cfg.Chunking.ChunkOverlap != 200 {
		t.Errorf("chunk overlap = %d, want config default", cfg.Chunking.ChunkOverlap)
	}
	if len(cfg.Languages) != 2 || cfg.Languages[0] != "fr" {
		t.Errorf("languages = %v", cfg.Languages)
	}
}

func TestApplyFlagsRejects(t *testing.T) {
	tests := [][]string{
		{"--provider", "gemini"},
		{"--format", "poem"},
		{"--chunking", "random"},
	}
	for _, args := range tests {
		cmd := flagCommand()
		if err := cmd.Flags().Parse(args); err != nil {
			t.Fatal(err)
		}
		if err := applyFlags(cmd.Flags(), config.DefaultConfig()); err == nil {
			t.Errorf("applyFlags(%v) should fail", args)
		}
	}
}

func TestSwitchProvider(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.APIKey = "sk-ant"
	cfg.LLM.BaseURL = "http://proxy"

	switchProvider(cfg, config.ProviderAnthropic)
	if cfg.LLM.APIKey != "sk-ant" {
		t.Error("same provider should keep the key")
	}

	switchProvider(cfg, config.ProviderQwen)
	if cfg.LLM.Provider != config.ProviderQwen || cfg.LLM.Model != config.DefaultModel(config.ProviderQwen) {
		t.Errorf("provider/model = %s/%s", cfg.LLM.Provider, cfg.LLM.Model)
	}
	if cfg.LLM.APIKey != "" || cfg.LLM.BaseURL != "" {
		t.Errorf("stale key or base URL kept: %+v", cfg.LLM)
	}
}
