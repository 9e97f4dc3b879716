package cli

import (
	"context"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/guiyumin/vsum/internal/core/ai/chunker"
	"github.com/guiyumin/vsum/internal/core/ai/summarizer"
	"github.com/guiyumin/vsum/internal/core/config"
	"github.com/guiyumin/vsum/internal/core/webdav"
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for vsum.

Bash:
  # Add to ~/.bashrc:
  source <(vsum completion bash)

Zsh:
  # Add to ~/.zshrc:
  source <(vsum completion zsh)

  # Or install to fpath:
  vsum completion zsh > "${fpath[1]}/_vsum"

Fish:
  vsum completion fish > ~/.config/fish/completions/vsum.fish

PowerShell:
  vsum completion powershell >> $PROFILE
`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return cmd.Help()
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// registerCompletions runs from Execute, once every command's flags exist.
func registerCompletions() {
	rootCmd.ValidArgsFunction = cobra.NoFileCompletions
	rootCmd.RegisterFlagCompletionFunc("output", completeOutput)
	watchCmd.RegisterFlagCompletionFunc("output", completeOutput)
	for _, cmd := range []*cobra.Command{rootCmd, serveCmd, chunkCmd, watchCmd} {
		registerValueCompletions(cmd)
	}
}

func registerValueCompletions(cmd *cobra.Command) {
	fixed := func(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return values, cobra.ShellCompDirectiveNoFileComp
		}
	}
	if cmd.Flags().Lookup("chunking") != nil {
		cmd.RegisterFlagCompletionFunc("chunking", fixed(strategyNames()...))
	}
	if cmd.Flags().Lookup("format") != nil {
		cmd.RegisterFlagCompletionFunc("format", fixed(formatNames()...))
	}
	if cmd.Flags().Lookup("provider") != nil {
		cmd.RegisterFlagCompletionFunc("provider", fixed(config.ProviderAnthropic, config.ProviderOpenAI, config.ProviderQwen))
	}
}

func strategyNames() []string {
	names := []string{string(chunker.StrategyAuto)}
	for _, s := range chunker.Strategies {
		names = append(names, string(s))
	}
	return names
}

func formatNames() []string {
	names := make([]string, 0, len(summarizer.Formats))
	for _, f := range summarizer.Formats {
		names = append(names, string(f))
	}
	return names
}

// completeOutput suggests configured remotes and, after "name:", the
// directories on that remote.
func completeOutput(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg := config.LoadOrDefault()

	name, rest, found := strings.Cut(toComplete, ":")
	if !found {
		remotes := remoteCompletions(cfg, toComplete)
		if len(remotes) == 0 {
			return nil, cobra.ShellCompDirectiveFilterDirs
		}
		return remotes, cobra.ShellCompDirectiveNoSpace
	}

	server := cfg.GetWebDAVServer(name)
	if server == nil {
		return nil, cobra.ShellCompDirectiveDefault
	}
	client, err := webdav.NewClientFromConfig(server)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	dir, base := splitRemote(rest)
	files, err := client.List(ctx, dir)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return dirCompletions(name, dir, base, files), cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func remoteCompletions(cfg *config.Config, prefix string) []string {
	var out []string
	for name := range cfg.WebDAVServers {
		if remote := name + ":"; strings.HasPrefix(remote, prefix) {
			out = append(out, remote)
		}
	}
	sort.Strings(out)
	return out
}

// splitRemote splits a partial remote path into the directory to list and
// the prefix to filter its entries by.
func splitRemote(p string) (dir, base string) {
	p = unescapeShellPath(p)
	if p == "" || strings.HasSuffix(p, "/") {
		return path.Clean("/" + p), ""
	}
	return path.Dir("/" + p), path.Base(p)
}

// Limit keeps zsh from redrawing the prompt on long lists.
const maxCompletions = 15

func dirCompletions(remote, dir, base string, files []webdav.FileInfo) []string {
	prefix := remote + ":" + strings.TrimSuffix(dir, "/") + "/"
	var out []string
	for _, f := range files {
		if !f.IsDir || !strings.HasPrefix(f.Name, base) {
			continue
		}
		out = append(out, prefix+f.Name+"/")
		if len(out) == maxCompletions {
			break
		}
	}
	return out
}

// unescapeShellPath removes common shell escape sequences
func unescapeShellPath(s string) string {
	return strings.NewReplacer(
		`\ `, " ",
		`\[`, "[",
		`\]`, "]",
		`\(`, "(",
		`\)`, ")",
		`\&`, "&",
		`\'`, "'",
		`\"`, `"`,
	).Replace(s)
}
