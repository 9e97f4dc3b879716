package cli

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/guiyumin/vsum/internal/core/ai/chunker"
	"github.com/guiyumin/vsum/internal/core/ai/summarizer"
	"github.com/guiyumin/vsum/internal/core/config"
	"github.com/guiyumin/vsum/internal/core/secret"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage vsum configuration",
	Long:  "View and modify vsum settings, API keys and WebDAV remotes",
}

// vsum config show - show current config
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		fmt.Println("Current configuration:")
		fmt.Printf("  Config:     %s\n", config.SavePath())
		fmt.Printf("  OutputDir:  %s\n", cfg.OutputDir)
		fmt.Printf("  Format:     %s\n", cfg.Format)
		fmt.Printf("  Languages:  %s\n", strings.Join(cfg.Languages, ", "))

		fmt.Println("\nLLM:")
		fmt.Printf("  Provider:   %s\n", cfg.LLM.Provider)
		fmt.Printf("  Model:      %s\n", cfg.LLM.Model)
		fmt.Printf("  API key:    %s\n", keyState(cfg.LLM.APIKey, cfg.LLM.APIKeyEncrypted))
		fmt.Printf("  Max tokens: %d\n", cfg.LLM.MaxTokens)
		if cfg.LLM.ExtendedThinking {
			fmt.Printf("  Thinking:   on (budget %d)\n", cfg.LLM.ThinkingBudget)
		}

		fmt.Println("\nEmbedding:")
		fmt.Printf("  Provider:   %s\n", cfg.Embedding.Provider)
		fmt.Printf("  API key:    %s\n", keyState(cfg.Embedding.APIKey, cfg.Embedding.APIKeyEncrypted))

		fmt.Println("\nChunking:")
		fmt.Printf("  Strategy:   %s\n", cfg.Chunking.Strategy)
		fmt.Printf("  Size:       %d (overlap %d)\n", cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
		fmt.Printf("  Interval:   %gs\n", cfg.Chunking.IntervalSeconds)

		if len(cfg.WebDAVServers) > 0 {
			fmt.Println("\nWebDAV servers:")
			for _, name := range sortedRemotes(cfg) {
				fmt.Printf("  %s: %s\n", name, cfg.WebDAVServers[name].URL)
			}
		}
		return nil
	},
}

func keyState(plain, sealed string) string {
	switch {
	case plain != "":
		return "set"
	case sealed != "":
		return "encrypted"
	default:
		return "not set"
	}
}

func sortedRemotes(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.WebDAVServers))
	for name := range cfg.WebDAVServers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// vsum config path - show config file path
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.SavePath())
	},
}

const configKeysHelp = `Supported keys:
  output_dir                  Default summary directory
  format                      concise, detailed, academic or bullet_points
  languages                   Comma separated caption languages (en,en-US)
  ytdlp_path                  Path to the yt-dlp executable
  llm.provider                anthropic, openai or qwen
  llm.model                   Model ID
  llm.base_url                Custom API endpoint
  llm.max_tokens              Answer token limit
  llm.temperature             Sampling temperature
  llm.extended_thinking       true or false
  llm.thinking_budget         Thinking token budget
  embedding.provider          openai or qwen
  embedding.model             Embedding model ID
  embedding.base_url          Custom embedding endpoint
  chunking.strategy           auto, none, recursive, semantic or timestamp
  chunking.chunk_size         Recursive chunk size in characters
  chunking.chunk_overlap      Recursive chunk overlap in characters
  chunking.interval_seconds   Timestamp window width
  chunking.semantic_percentile Semantic breakpoint percentile
  server.port                 Server listen port
  server.api_key              Server API key
  server.max_jobs             Finished jobs kept in memory`

// vsum config set KEY VALUE - set a config value
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: "Set a configuration value in config.yml.\n\n" + configKeysHelp + `

Examples:
  vsum config set output_dir ~/Notes/videos
  vsum config set llm.provider openai
  vsum config set chunking.strategy timestamp`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		cfg := config.LoadOrDefault()
		if err := setConfigValue(cfg, key, value); err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Printf("Set %s = %s\n", key, value)
		return nil
	},
}

// vsum config get KEY - get a config value
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long:  "Get a configuration value from config.yml.\n\n" + configKeysHelp,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := getConfigValue(config.LoadOrDefault(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid value for %s: %s", key, value)
	}
	return n, nil
}

func parseFloat(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid value for %s: %s", key, value)
	}
	return f, nil
}

// setConfigValue sets a config value by key
func setConfigValue(cfg *config.Config, key, value string) error {
	var err error
	switch key {
	case "output_dir":
		cfg.OutputDir = value
	case "format":
		f, err := summarizer.ParseFormat(value)
		if err != nil {
			return err
		}
		cfg.Format = string(f)
	case "languages":
		var langs []string
		for _, l := range strings.Split(value, ",") {
			if l = strings.TrimSpace(l); l != "" {
				langs = append(langs, l)
			}
		}
		cfg.Languages = langs
	case "ytdlp_path":
		cfg.YtDlpPath = value
	case "llm.provider":
		switch value {
		case config.ProviderAnthropic, config.ProviderOpenAI, config.ProviderQwen:
			switchProvider(cfg, value)
		default:
			return fmt.Errorf("unknown provider: %s", value)
		}
	case "llm.model":
		cfg.LLM.Model = value
	case "llm.base_url":
		cfg.LLM.BaseURL = value
	case "llm.max_tokens":
		cfg.LLM.MaxTokens, err = parseInt(key, value)
	case "llm.temperature":
		cfg.LLM.Temperature, err = parseFloat(key, value)
	case "llm.extended_thinking":
		cfg.LLM.ExtendedThinking, err = strconv.ParseBool(value)
	case "llm.thinking_budget":
		cfg.LLM.ThinkingBudget, err = parseInt(key, value)
	case "embedding.provider":
		if value != config.ProviderOpenAI && value != config.ProviderQwen {
			return fmt.Errorf("embedding provider must be openai or qwen: %s", value)
		}
		cfg.Embedding.Provider = value
	case "embedding.model":
		cfg.Embedding.Model = value
	case "embedding.base_url":
		cfg.Embedding.BaseURL = value
	case "chunking.strategy":
		st, err := chunker.ParseStrategy(value)
		if err != nil {
			return err
		}
		cfg.Chunking.Strategy = string(st)
	case "chunking.chunk_size":
		cfg.Chunking.ChunkSize, err = parseInt(key, value)
	case "chunking.chunk_overlap":
		cfg.Chunking.ChunkOverlap, err = parseInt(key, value)
	case "chunking.interval_seconds":
		cfg.Chunking.IntervalSeconds, err = parseFloat(key, value)
	case "chunking.semantic_percentile":
		cfg.Chunking.SemanticPercentile, err = parseFloat(key, value)
	case "server.port":
		cfg.Server.Port, err = parseInt(key, value)
	case "server.api_key":
		cfg.Server.APIKey = value
	case "server.max_jobs":
		cfg.Server.MaxJobs, err = parseInt(key, value)
	default:
		return fmt.Errorf("unknown config key: %s\nRun 'vsum config set --help' to see supported keys", key)
	}
	return err
}

// getConfigValue gets a config value by key
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch key {
	case "output_dir":
		return cfg.OutputDir, nil
	case "format":
		return cfg.Format, nil
	case "languages":
		return strings.Join(cfg.Languages, ","), nil
	case "ytdlp_path":
		return cfg.YtDlpPath, nil
	case "llm.provider":
		return cfg.LLM.Provider, nil
	case "llm.model":
		return cfg.LLM.Model, nil
	case "llm.base_url":
		return cfg.LLM.BaseURL, nil
	case "llm.max_tokens":
		return strconv.Itoa(cfg.LLM.MaxTokens), nil
	case "llm.temperature":
		return strconv.FormatFloat(cfg.LLM.Temperature, 'g', -1, 64), nil
	case "llm.extended_thinking":
		return strconv.FormatBool(cfg.LLM.ExtendedThinking), nil
	case "llm.thinking_budget":
		return strconv.Itoa(cfg.LLM.ThinkingBudget), nil
	case "embedding.provider":
		return cfg.Embedding.Provider, nil
	case "embedding.model":
		return cfg.Embedding.Model, nil
	case "embedding.base_url":
		return cfg.Embedding.BaseURL, nil
	case "chunking.strategy":
		return cfg.Chunking.Strategy, nil
	case "chunking.chunk_size":
		return strconv.Itoa(cfg.Chunking.ChunkSize), nil
	case "chunking.chunk_overlap":
		return strconv.Itoa(cfg.Chunking.ChunkOverlap), nil
	case "chunking.interval_seconds":
		return strconv.FormatFloat(cfg.Chunking.IntervalSeconds, 'g', -1, 64), nil
	case "chunking.semantic_percentile":
		return strconv.FormatFloat(cfg.Chunking.SemanticPercentile, 'g', -1, 64), nil
	case "server.port":
		return strconv.Itoa(cfg.Server.Port), nil
	case "server.api_key":
		return cfg.Server.APIKey, nil
	case "server.max_jobs":
		return strconv.Itoa(cfg.Server.MaxJobs), nil
	default:
		return "", fmt.Errorf("unknown config key: %s\nRun 'vsum config get --help' to see supported keys", key)
	}
}

// --- API keys ---

var encryptKey bool

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key [llm|embedding]",
	Short: "Store an API key",
	Long: `Store the API key for the LLM (default) or the embedding provider.

With --encrypt the key is sealed with a 4-digit PIN; pass the PIN with
--pin or VSUM_PIN when summarizing, or type it when asked.

Examples:
  vsum config set-key
  vsum config set-key embedding
  vsum config set-key --encrypt`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"llm", "embedding"},
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "llm"
		if len(args) == 1 {
			target = args[0]
		}
		if target != "llm" && target != "embedding" {
			return fmt.Errorf("unknown key target: %s (want llm or embedding)", target)
		}

		cfg := config.LoadOrDefault()
		providerName := cfg.LLM.Provider
		if target == "embedding" {
			providerName = cfg.Embedding.Provider
		}

		fmt.Printf("%s API key (%s): ", providerName, config.APIKeyEnv(providerName))
		keyBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}
		key := strings.TrimSpace(string(keyBytes))
		if key == "" {
			return fmt.Errorf("API key is required")
		}

		plain, sealed := key, ""
		if encryptKey {
			p := pin
			if p == "" {
				if p, err = secret.ReadPIN(os.Stdout, os.Stdin); err != nil {
					return err
				}
			}
			if sealed, err = secret.Seal(key, p); err != nil {
				return err
			}
			plain = ""
		}

		if target == "embedding" {
			cfg.Embedding.APIKey, cfg.Embedding.APIKeyEncrypted = plain, sealed
		} else {
			cfg.LLM.APIKey, cfg.LLM.APIKeyEncrypted = plain, sealed
		}
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Printf("Saved %s API key for %s\n", target, providerName)
		return nil
	},
}

// --- WebDAV remote management ---

var configWebdavCmd = &cobra.Command{
	Use:     "webdav",
	Short:   "Manage WebDAV remotes",
	Aliases: []string{"remote"},
}

var configWebdavListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List configured WebDAV servers",
	Aliases: []string{"ls"},
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadOrDefault()
		if len(cfg.WebDAVServers) == 0 {
			fmt.Println("No WebDAV servers configured.")
			fmt.Println("Add one with: vsum config webdav add <name>")
			return
		}

		fmt.Println("WebDAV servers:")
		for _, name := range sortedRemotes(cfg) {
			server := cfg.WebDAVServers[name]
			if server.Username != "" {
				fmt.Printf("  %s: %s (user: %s)\n", name, server.URL, server.Username)
			} else {
				fmt.Printf("  %s: %s\n", name, server.URL)
			}
		}
	},
}

var configWebdavAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new WebDAV server",
	Long: `Add a new WebDAV server configuration.

Examples:
  vsum config webdav add nas
  vsum config webdav add nextcloud

After adding, upload summaries with:
  vsum VIDEO_ID -o nas:/summaries`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg := config.LoadOrDefault()

		if cfg.GetWebDAVServer(name) != nil {
			return fmt.Errorf("WebDAV server '%s' already exists\nDelete it first: vsum config webdav delete %s", name, name)
		}
		if len(name) < 2 || strings.ContainsAny(name, `/\.:`) {
			return fmt.Errorf("invalid remote name %q: use two or more letters without / \\ . or :", name)
		}

		reader := bufio.NewReader(os.Stdin)

		fmt.Print("WebDAV URL: ")
		urlStr, _ := reader.ReadString('\n')
		urlStr = strings.TrimSpace(urlStr)
		if urlStr == "" {
			return fmt.Errorf("URL is required")
		}

		fmt.Print("Username (enter to skip): ")
		username, _ := reader.ReadString('\n')
		username = strings.TrimSpace(username)

		var password string
		if username != "" {
			fmt.Print("Password: ")
			passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(passwordBytes)
		}

		cfg.SetWebDAVServer(name, config.WebDAVServer{
			URL:      urlStr,
			Username: username,
			Password: password,
		})
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("failed to save: %w", err)
		}

		fmt.Printf("\nWebDAV server '%s' added.\n", name)
		fmt.Printf("Usage: vsum VIDEO_ID -o %s:/path/to/dir\n", name)
		return nil
	},
}

var configWebdavDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Short:   "Delete a WebDAV server",
	Aliases: []string{"rm", "remove"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg := config.LoadOrDefault()

		if cfg.GetWebDAVServer(name) == nil {
			return fmt.Errorf("WebDAV server '%s' not found", name)
		}
		cfg.DeleteWebDAVServer(name)

		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("failed to save: %w", err)
		}
		fmt.Printf("WebDAV server '%s' deleted.\n", name)
		return nil
	},
}

func init() {
	configSetKeyCmd.Flags().BoolVar(&encryptKey, "encrypt", false, "seal the key with a 4-digit PIN")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetKeyCmd)

	configWebdavCmd.AddCommand(configWebdavListCmd)
	configWebdavCmd.AddCommand(configWebdavAddCmd)
	configWebdavCmd.AddCommand(configWebdavDeleteCmd)
	configCmd.AddCommand(configWebdavCmd)

	rootCmd.AddCommand(configCmd)
}
