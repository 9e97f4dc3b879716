package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guiyumin/vsum/internal/core/ai/summarizer"
	"github.com/spf13/cobra"
)

var modelsJSON bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List known summarization models",
	Long: `List models known to work for transcript summarization.
Any other model ID is accepted with --model and passed to the provider as-is.

Examples:
  vsum models
  vsum models --provider openai`,
	RunE: func(cmd *cobra.Command, args []string) error {
		models := summarizer.ModelsFor(provider)
		if len(models) == 0 {
			return fmt.Errorf("no models for provider %q", provider)
		}
		if modelsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(models)
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "PROVIDER\tMODEL\tTIER\tTHINKING\tDESCRIPTION")
		for _, m := range models {
			thinking := ""
			if m.Thinking {
				thinking = "yes"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.Provider, m.ID, m.Tier, thinking, m.Description)
		}
		return tw.Flush()
	},
}

func init() {
	modelsCmd.Flags().StringVar(&provider, "provider", "", "only list models of this provider")
	modelsCmd.Flags().BoolVar(&modelsJSON, "json", false, "print JSON")
	rootCmd.AddCommand(modelsCmd)
}
