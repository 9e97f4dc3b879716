package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/guiyumin/vsum/internal/core/ai"
	"github.com/guiyumin/vsum/internal/core/ai/chunker"
	"github.com/guiyumin/vsum/internal/core/transcript"
	"github.com/spf13/cobra"
)

var chunkJSON bool

var chunkCmd = &cobra.Command{
	Use:   "chunk <url>",
	Short: "Show how a transcript would be chunked",
	Long: `Fetch a transcript and split it without calling an LLM.
Useful for tuning chunk sizes or comparing strategies.

Examples:
  vsum chunk VIDEO_ID
  vsum chunk VIDEO_ID --chunking timestamp --interval 120
  vsum chunk VIDEO_ID --json > chunks.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		p := ai.NewChunkingPipeline(cfg, resolvePIN(cfg), newLogger())

		ctx, cancel := signalContext()
		defer cancel()

		var (
			t        *transcript.Transcript
			strategy chunker.Strategy
			chunks   []chunker.Chunk
		)
		err = runWithProgress("Chunking "+args[0], cancel, func(stage func(string)) error {
			p.OnStage = stage
			var err error
			if t, err = p.Fetch(ctx, args[0], nil); err != nil {
				return err
			}
			strategy, chunks, err = p.Chunk(ctx, t, "")
			return err
		})
		if err != nil {
			return err
		}

		if chunkJSON {
			return writeChunksJSON(os.Stdout, t, strategy, chunks)
		}
		printChunks(os.Stdout, t, strategy, chunks, terminalWidth())
		return nil
	},
}

func init() {
	chunkCmd.Flags().BoolVar(&chunkJSON, "json", false, "print chunks as JSON")
	addChunkingFlags(chunkCmd)
	addLanguageFlag(chunkCmd)
	rootCmd.AddCommand(chunkCmd)
}

type chunkReport struct {
	VideoID  string           `json:"video_id"`
	Title    string           `json:"title"`
	Duration int              `json:"duration"`
	Strategy chunker.Strategy `json:"strategy"`
	Chunks   []chunker.Chunk  `json:"chunks"`
}

func writeChunksJSON(w io.Writer, t *transcript.Transcript, strategy chunker.Strategy, chunks []chunker.Chunk) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(chunkReport{
		VideoID:  t.Metadata.VideoID,
		Title:    t.Metadata.Title,
		Duration: t.Metadata.Duration,
		Strategy: strategy,
		Chunks:   chunks,
	})
}

// printChunks lists one line per chunk with its time range when known.
func printChunks(w io.Writer, t *transcript.Transcript, strategy chunker.Strategy, chunks []chunker.Chunk, width int) {
	fmt.Fprintf(w, "%s\n", t.Metadata.DisplayTitle())
	fmt.Fprintf(w, "Strategy: %s, %d chunk%s\n\n", strategy, len(chunks), plural(len(chunks)))
	for i, c := range chunks {
		span := ""
		if c.Metadata.StartTime != nil && c.Metadata.EndTime != nil {
			span = fmt.Sprintf(" [%s-%s]", transcript.FormatTimestamp(*c.Metadata.StartTime), transcript.FormatTimestamp(*c.Metadata.EndTime))
		}
		head := fmt.Sprintf("%3d.%s %d chars: ", i+1, span, len([]rune(c.Content)))
		fmt.Fprintf(w, "%s%s\n", head, truncate(oneLine(c.Content), width-widthCond.StringWidth(head)))
	}
}

func oneLine(s string) string {
	out := make([]rune, 0, len(s))
	space := false
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || r == ' ' {
			space = true
			continue
		}
		if space && len(out) > 0 {
			out = append(out, ' ')
		}
		space = false
		out = append(out, r)
	}
	return string(out)
}
