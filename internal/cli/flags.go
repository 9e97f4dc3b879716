package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/guiyumin/vsum/internal/core/ai/chunker"
	"github.com/guiyumin/vsum/internal/core/ai/summarizer"
	"github.com/guiyumin/vsum/internal/core/config"
	"github.com/guiyumin/vsum/internal/core/logger"
	"github.com/guiyumin/vsum/internal/core/secret"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// Shared flags
var (
	verbose bool
	pin     string

	provider         string
	model            string
	format           string
	maxTokens        int
	extendedThinking bool
	thinkingBudget   int

	chunking     string
	chunkSize    int
	chunkOverlap int
	interval     float64
	percentile   float64

	languages []string
)

func addSummaryFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&provider, "provider", "", "LLM provider: anthropic, openai or qwen")
	f.StringVar(&model, "model", "", "model ID (see 'vsum models')")
	f.StringVarP(&format, "format", "f", "", "summary format: concise, detailed, academic, bullet_points")
	f.IntVar(&maxTokens, "max-tokens", 0, "maximum tokens in the model's answer")
	f.BoolVar(&extendedThinking, "extended-thinking", false, "let the model reason before answering")
	f.IntVar(&thinkingBudget, "thinking-budget", 0, "token budget for extended thinking")
}

func addChunkingFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&chunking, "chunking", "", "chunking strategy: auto, none, recursive, semantic, timestamp")
	f.IntVar(&chunkSize, "chunk-size", 0, "recursive chunk size in characters")
	f.IntVar(&chunkOverlap, "chunk-overlap", 0, "recursive chunk overlap in characters")
	f.Float64Var(&interval, "interval", 0, "timestamp chunk width in seconds")
	f.Float64Var(&percentile, "percentile", 0, "semantic breakpoint percentile (0-100]")
}

func addLanguageFlag(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&languages, "language", "l", nil, "preferred caption languages, in order")
}

// loadConfig reads the config file, then the environment, then the flags
// of cmd, each overriding the previous.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if config.Exists() {
		loaded, err := config.Load()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// The provider decides which API key variable ApplyEnv reads.
	if cmd.Flags().Changed("provider") {
		switchProvider(cfg, provider)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// switchProvider points the LLM section at another provider, dropping the
// previous provider's key and model.
func switchProvider(cfg *config.Config, name string) {
	if cfg.LLM.Provider == name {
		return
	}
	cfg.LLM.Provider = name
	cfg.LLM.Model = config.DefaultModel(name)
	cfg.LLM.BaseURL = ""
	cfg.LLM.APIKey = ""
	cfg.LLM.APIKeyEncrypted = ""
}

func applyFlags(fs *pflag.FlagSet, cfg *config.Config) error {
	if fs.Changed("provider") {
		switch provider {
		case config.ProviderAnthropic, config.ProviderOpenAI, config.ProviderQwen:
		default:
			return fmt.Errorf("unknown provider: %s (want anthropic, openai or qwen)", provider)
		}
	}
	if fs.Changed("model") {
		cfg.LLM.Model = model
	}
	if fs.Changed("format") {
		f, err := summarizer.ParseFormat(format)
		if err != nil {
			return err
		}
		cfg.Format = string(f)
	}
	if fs.Changed("max-tokens") {
		cfg.LLM.MaxTokens = maxTokens
	}
	if fs.Changed("extended-thinking") {
		cfg.LLM.ExtendedThinking = extendedThinking
	}
	if fs.Changed("thinking-budget") {
		cfg.LLM.ThinkingBudget = thinkingBudget
	}

	if fs.Changed("chunking") {
		s, err := chunker.ParseStrategy(chunking)
		if err != nil {
			return err
		}
		cfg.Chunking.Strategy = string(s)
	}
	if fs.Changed("chunk-size") {
		cfg.Chunking.ChunkSize = chunkSize
	}
	if fs.Changed("chunk-overlap") {
		cfg.Chunking.ChunkOverlap = chunkOverlap
	}
	if fs.Changed("interval") {
		cfg.Chunking.IntervalSeconds = interval
	}
	if fs.Changed("percentile") {
		cfg.Chunking.SemanticPercentile = percentile
	}

	if fs.Changed("language") {
		cfg.Languages = languages
	}
	return nil
}

const pinEnv = "VSUM_PIN"

// resolvePIN returns the PIN from --pin, VSUM_PIN, or an interactive prompt
// when an encrypted key has to be unlocked.
func resolvePIN(cfg *config.Config) string {
	if pin != "" {
		return pin
	}
	if env := os.Getenv(pinEnv); env != "" {
		return env
	}

	needsPIN := (cfg.LLM.APIKey == "" && cfg.LLM.APIKeyEncrypted != "") ||
		(cfg.Embedding.APIKey == "" && cfg.Embedding.APIKeyEncrypted != "")
	if !needsPIN || !term.IsTerminal(int(os.Stdin.Fd())) {
		return ""
	}

	p, err := secret.ReadPIN(os.Stderr, os.Stdin)
	if err != nil {
		warnf("failed to read PIN: %v", err)
		return ""
	}
	return p
}

func newLogger() logger.Logger {
	if verbose {
		return logger.New("debug")
	}
	return logger.New("warn")
}

func warnf(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, color.YellowString(format, args...))
}

func printError(err error) {
	fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}
