package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/guiyumin/vsum/internal/core/ai"
	"github.com/guiyumin/vsum/internal/core/config"
	"github.com/guiyumin/vsum/internal/core/version"
	"github.com/spf13/cobra"
)

var (
	output         string
	inputFile      string
	batch          bool
	saveTranscript bool
	customPrompt   string
)

var rootCmd = &cobra.Command{
	Use:   "vsum [url...]",
	Short: "Turn YouTube videos into LLM-friendly markdown summaries",
	Long: `vsum fetches a video's captions, splits long transcripts into chunks,
summarizes them with Claude, GPT or Qwen and writes a markdown summary.

Examples:
  vsum https://www.youtube.com/watch?v=VIDEO_ID
  vsum VIDEO_ID --format concise -o notes/video.md
  vsum URL1 URL2 URL3 --batch
  vsum --file urls.txt -o nas:/summaries
  vsum VIDEO_ID --chunking semantic
  vsum VIDEO_ID --extended-thinking --thinking-budget 8000`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSummarize,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&pin, "pin", "", "4-digit PIN for encrypted API keys (or set VSUM_PIN)")

	rootCmd.Flags().StringVarP(&output, "output", "o", "", "output file (.md), directory, or remote (name:path, webdav://...)")
	rootCmd.Flags().StringVarP(&inputFile, "file", "F", "", "read URLs from file (one per line)")
	rootCmd.Flags().BoolVar(&batch, "batch", false, "process multiple videos, continuing on error")
	rootCmd.Flags().BoolVar(&saveTranscript, "save-transcript", false, "also write the transcript next to the summary")
	rootCmd.Flags().StringVar(&customPrompt, "prompt", "", "replace the generated prompt (unchunked summaries only)")
	addSummaryFlags(rootCmd)
	addChunkingFlags(rootCmd)
	addLanguageFlag(rootCmd)
}

// Execute runs the root command.
func Execute() error {
	registerCompletions()
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func collectInputs(args []string) ([]string, error) {
	inputs := append([]string(nil), args...)
	if inputFile == "" {
		return inputs, nil
	}

	f, err := os.Open(inputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open URL list: %w", err)
	}
	defer f.Close()

	urls, err := ai.ReadURLList(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", inputFile, err)
	}
	return append(inputs, urls...), nil
}

func runSummarize(cmd *cobra.Command, args []string) error {
	inputs, err := collectInputs(args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return cmd.Help()
	}

	isBatch := batch || len(inputs) > 1
	if isBatch && strings.HasSuffix(strings.ToLower(output), ".md") {
		return fmt.Errorf("-o %s names a single file; use a directory when summarizing several videos", output)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !config.Exists() {
		warnf("config file not found, using defaults. Run 'vsum init'.")
	}

	p, err := ai.NewPipeline(cfg, resolvePIN(cfg), newLogger())
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	opts := ai.Options{
		Output:         output,
		CustomPrompt:   customPrompt,
		SaveTranscript: saveTranscript,
	}

	if !isBatch {
		var res *ai.Result
		err := runWithProgress("Summarizing "+inputs[0], cancel, func(stage func(string)) error {
			p.OnStage = stage
			var err error
			res, err = p.Process(ctx, inputs[0], opts)
			return err
		})
		if err != nil {
			return err
		}
		printResult(os.Stdout, res)
		return nil
	}

	var results []ai.BatchResult
	title := fmt.Sprintf("Summarizing %d videos", len(inputs))
	err = runWithProgress(title, cancel, func(stage func(string)) error {
		p.OnStage = stage
		results = p.ProcessBatch(ctx, inputs, opts)
		return nil
	})
	if err != nil {
		return err
	}

	printReport(os.Stdout, results, terminalWidth())
	if failed := ai.Failed(results); failed > 0 {
		return fmt.Errorf("%d of %d videos failed", failed, len(results))
	}
	return nil
}
