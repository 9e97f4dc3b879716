package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/guiyumin/vsum/internal/core/ai"
	"github.com/guiyumin/vsum/internal/watcher"
	"github.com/spf13/cobra"
)

var watchOutput string

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Summarize URL lists dropped into a directory",
	Long: `Watch a directory for .txt files holding one URL per line and
summarize every video they list. Handled files are renamed to
*.txt.done, or *.txt.failed when a video could not be summarized.

Examples:
  vsum watch ~/inbox
  vsum watch ~/inbox -o nas:/summaries`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log := newLogger()
		p, err := ai.NewPipeline(cfg, resolvePIN(cfg), log)
		if err != nil {
			return err
		}

		w, err := watcher.New(args[0], listHandler(p, ai.Options{Output: watchOutput}), log)
		if err != nil {
			return err
		}
		defer w.Stop()

		ctx, cancel := signalContext()
		defer cancel()

		fmt.Printf("Watching %s for URL lists (Ctrl+C to stop)\n", args[0])
		if err := w.Start(ctx); err != nil && err != context.Canceled {
			return err
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "output directory or remote (name:path, webdav://...)")
	addSummaryFlags(watchCmd)
	addChunkingFlags(watchCmd)
	addLanguageFlag(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

// listHandler summarizes every URL in a list file and fails the file when
// any video failed.
func listHandler(p *ai.Pipeline, opts ai.Options) watcher.EventHandler {
	return func(ctx context.Context, path string) error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		urls, err := ai.ReadURLList(f)
		f.Close()
		if err != nil {
			return err
		}
		if len(urls) == 0 {
			return nil
		}

		fmt.Printf("\n%s: %d video%s\n", path, len(urls), plural(len(urls)))
		p.OnStage = func(stage string) { fmt.Println("  " + hintStyle.Render(stage)) }
		results := p.ProcessBatch(ctx, urls, opts)
		printReport(os.Stdout, results, terminalWidth())

		if failed := ai.Failed(results); failed > 0 {
			return fmt.Errorf("%d of %d videos failed", failed, len(results))
		}
		return nil
	}
}
