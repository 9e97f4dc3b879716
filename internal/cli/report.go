package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/guiyumin/vsum/internal/core/ai"
	"github.com/mattn/go-runewidth"
)

// printResult shows what a single summary run produced.
func printResult(w io.Writer, res *ai.Result) {
	md := res.Transcript.Metadata
	fmt.Fprintf(w, "  %s %s\n", doneStyle.Render("✓"), md.DisplayTitle())
	if d := md.DurationFormatted(); d != "" {
		fmt.Fprintf(w, "    Duration: %s\n", d)
	}
	lang := res.Transcript.Language
	if res.Transcript.IsAutoGenerated {
		lang += " (auto-generated)"
	}
	fmt.Fprintf(w, "    Language: %s\n", lang)
	fmt.Fprintf(w, "    Chunking: %s (%d chunk%s)\n", res.Strategy, res.Chunks, plural(res.Chunks))
	fmt.Fprintf(w, "    Saved to: %s\n", infoStyle.Render(res.SummaryLocation))
	if res.TranscriptLocation != "" {
		fmt.Fprintf(w, "    Transcript: %s\n", res.TranscriptLocation)
	}
}

// printReport lists every batch item on one line, fitted to width columns,
// followed by a totals line.
func printReport(w io.Writer, results []ai.BatchResult, width int) {
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)

	fmt.Fprintln(w)
	for _, r := range results {
		if r.Err != nil {
			line := truncate(fmt.Sprintf("%s: %v", r.Input, r.Err), width-4)
			fmt.Fprintf(w, "  %s %s\n", bad.Sprint("✗"), line)
			continue
		}
		title := r.Result.Transcript.Metadata.DisplayTitle()
		line := truncate(fmt.Sprintf("%s -> %s", title, r.Result.SummaryLocation), width-4)
		fmt.Fprintf(w, "  %s %s\n", ok.Sprint("✓"), line)
	}

	failed := ai.Failed(results)
	summary := fmt.Sprintf("%d succeeded, %d failed", len(results)-failed, failed)
	if failed > 0 {
		fmt.Fprintf(w, "\n%s\n", bad.Sprint(summary))
	} else {
		fmt.Fprintf(w, "\n%s\n", ok.Sprint(summary))
	}
}

// widthCond measures columns independently of the user's locale.
var widthCond = &runewidth.Condition{}

// truncate shortens s to at most width display columns.
func truncate(s string, width int) string {
	if width <= 1 {
		return s
	}
	return widthCond.Truncate(s, width, "…")
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
