package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ConfigFileName = "config.yml"
	AppDirName     = "vsum"
)

// Provider names accepted in llm.provider and embedding.provider.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderQwen      = "qwen"
)

// ConfigDir returns the standard config directory for vsum.
// Windows: %APPDATA%\vsum\
// macOS/Linux: ~/.config/vsum/
func ConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, AppDirName), nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppDirName), nil
}

// ConfigPath returns the path to the config file.
// e.g., ~/.config/vsum/config.yml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

type Config struct {
	// Directory summaries are written to, one subdirectory per channel
	OutputDir string `yaml:"output_dir,omitempty"`

	// Preferred transcript languages, most preferred first
	Languages []string `yaml:"languages,omitempty"`

	// Default summary format: concise, detailed, academic or bullet_points
	Format string `yaml:"format,omitempty"`

	// Path to the yt-dlp executable (default: looked up in PATH)
	YtDlpPath string `yaml:"ytdlp_path,omitempty"`

	LLM       LLMConfig       `yaml:"llm,omitempty"`
	Embedding EmbeddingConfig `yaml:"embedding,omitempty"`
	Chunking  ChunkingConfig  `yaml:"chunking,omitempty"`

	// WebDAV servers summaries can be uploaded to with -o name:path
	WebDAVServers map[string]WebDAVServer `yaml:"webdav_servers,omitempty"`

	// Server configuration for `vsum serve`
	Server ServerConfig `yaml:"server,omitempty"`
}

// LLMConfig selects and tunes the model that writes summaries.
type LLMConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`

	// APIKey is a plain key; APIKeyEncrypted is sealed with the user's PIN.
	APIKey          string `yaml:"api_key,omitempty"`
	APIKeyEncrypted string `yaml:"api_key_encrypted,omitempty"`

	MaxTokens        int     `yaml:"max_tokens,omitempty"`
	Temperature      float64 `yaml:"temperature"`
	ExtendedThinking bool    `yaml:"extended_thinking,omitempty"`
	ThinkingBudget   int     `yaml:"thinking_budget,omitempty"`
}

// EmbeddingConfig configures the embedding provider used by semantic chunking.
// Semantic chunking is unavailable when no key resolves.
type EmbeddingConfig struct {
	Provider        string `yaml:"provider,omitempty"`
	Model           string `yaml:"model,omitempty"`
	BaseURL         string `yaml:"base_url,omitempty"`
	APIKey          string `yaml:"api_key,omitempty"`
	APIKeyEncrypted string `yaml:"api_key_encrypted,omitempty"`
}

// ChunkingConfig holds chunking defaults; CLI flags override them.
type ChunkingConfig struct {
	Strategy           string  `yaml:"strategy,omitempty"`
	ChunkSize          int     `yaml:"chunk_size,omitempty"`
	ChunkOverlap       int     `yaml:"chunk_overlap,omitempty"`
	IntervalSeconds    float64 `yaml:"interval_seconds,omitempty"`
	SemanticPercentile float64 `yaml:"semantic_percentile,omitempty"`
}

// ServerConfig holds HTTP server settings for `vsum serve`
type ServerConfig struct {
	// Port is the HTTP listen port (default: 8080)
	Port int `yaml:"port,omitempty"`

	// APIKey for authentication (optional, if set all requests must include X-API-Key header)
	APIKey string `yaml:"api_key,omitempty"`

	// MaxJobs caps how many finished jobs are kept in memory (default: 100)
	MaxJobs int `yaml:"max_jobs,omitempty"`
}

// WebDAVServer represents a WebDAV server configuration
type WebDAVServer struct {
	// URL is the WebDAV server URL (e.g., "https://dav.example.com/remote.php/dav")
	URL string `yaml:"url"`

	// Username for authentication
	Username string `yaml:"username,omitempty"`

	// Password for authentication
	Password string `yaml:"password,omitempty"`
}

// GetWebDAVServer returns a WebDAV server by name, or nil if not found
func (c *Config) GetWebDAVServer(name string) *WebDAVServer {
	if c.WebDAVServers == nil {
		return nil
	}
	if s, ok := c.WebDAVServers[name]; ok {
		return &s
	}
	return nil
}

// SetWebDAVServer adds or updates a WebDAV server
func (c *Config) SetWebDAVServer(name string, server WebDAVServer) {
	if c.WebDAVServers == nil {
		c.WebDAVServers = make(map[string]WebDAVServer)
	}
	c.WebDAVServers[name] = server
}

// DeleteWebDAVServer removes a WebDAV server by name
func (c *Config) DeleteWebDAVServer(name string) {
	if c.WebDAVServers != nil {
		delete(c.WebDAVServers, name)
	}
}

// DefaultOutputDir is relative to the working directory.
const DefaultOutputDir = "summaries"

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		OutputDir: DefaultOutputDir,
		Languages: []string{"en", "en-US", "en-GB"},
		Format:    "detailed",
		LLM: LLMConfig{
			Provider:       ProviderAnthropic,
			Model:          DefaultModel(ProviderAnthropic),
			MaxTokens:      4096,
			Temperature:    0,
			ThinkingBudget: 4096,
		},
		Embedding: EmbeddingConfig{
			Provider: ProviderOpenAI,
			Model:    "text-embedding-3-small",
		},
		Chunking: ChunkingConfig{
			Strategy:           "auto",
			ChunkSize:          1000,
			ChunkOverlap:       200,
			IntervalSeconds:    300,
			SemanticPercentile: 95,
		},
		Server: ServerConfig{
			Port:    8080,
			MaxJobs: 100,
		},
	}
}

// DefaultModel returns the model used when llm.model is empty.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-4.1"
	case ProviderQwen:
		return "qwen-plus"
	default:
		return "claude-sonnet-4-20250514"
	}
}

// APIKeyEnv names the environment variable holding a provider's key.
func APIKeyEnv(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderQwen:
		return "DASHSCOPE_API_KEY"
	default:
		return "ANTHROPIC_API_KEY"
	}
}

// fillDefaults sets zero fields from DefaultConfig so a partial config file
// still yields a usable Config.
func (c *Config) fillDefaults() {
	d := DefaultConfig()
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
	if len(c.Languages) == 0 {
		c.Languages = d.Languages
	}
	if c.Format == "" {
		c.Format = d.Format
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = d.LLM.Provider
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModel(c.LLM.Provider)
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = d.LLM.MaxTokens
	}
	if c.LLM.ThinkingBudget <= 0 {
		c.LLM.ThinkingBudget = d.LLM.ThinkingBudget
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = d.Embedding.Provider
	}
	if c.Embedding.Model == "" && c.Embedding.Provider == ProviderOpenAI {
		c.Embedding.Model = d.Embedding.Model
	}
	if c.Chunking.Strategy == "" {
		c.Chunking.Strategy = d.Chunking.Strategy
	}
	if c.Chunking.ChunkSize <= 0 {
		c.Chunking.ChunkSize = d.Chunking.ChunkSize
	}
	if c.Chunking.ChunkOverlap <= 0 {
		c.Chunking.ChunkOverlap = d.Chunking.ChunkOverlap
	}
	if c.Chunking.IntervalSeconds <= 0 {
		c.Chunking.IntervalSeconds = d.Chunking.IntervalSeconds
	}
	if c.Chunking.SemanticPercentile <= 0 {
		c.Chunking.SemanticPercentile = d.Chunking.SemanticPercentile
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.MaxJobs <= 0 {
		c.Server.MaxJobs = d.Server.MaxJobs
	}
}

// ApplyEnv loads ./.env (if present) and lets environment variables override
// file values. Keys already set in the environment win over .env entries.
func (c *Config) ApplyEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	c.applyEnv(os.Getenv)
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if key := getenv(APIKeyEnv(c.LLM.Provider)); key != "" {
		c.LLM.APIKey = key
	}
	if key := getenv(APIKeyEnv(c.Embedding.Provider)); key != "" && c.Embedding.APIKey == "" {
		c.Embedding.APIKey = key
	}
	if model := firstNonEmpty(getenv("VSUM_MODEL"), getenv("CLAUDE_MODEL")); model != "" {
		c.LLM.Model = model
	}
	if dir := firstNonEmpty(getenv("VSUM_OUTPUT_DIR"), getenv("OUTPUT_DIR")); dir != "" {
		c.OutputDir = expandPath(dir)
	}
	if v := getenv("MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.LLM.MaxTokens = n
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Exists checks if config file exists
func Exists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Load reads the config from ~/.config/vsum/config.yml
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads and normalizes a config file at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.OutputDir = expandPath(cfg.OutputDir)
	cfg.YtDlpPath = expandPath(cfg.YtDlpPath)
	cfg.fillDefaults()

	return cfg, nil
}

// expandPath expands the tilde (~) in the path to the user's home directory.
// It handles both forward and backward slashes to ensure cross-platform compatibility
// for configuration files.
func expandPath(path string) string {
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "~") {
		// Only expand if it's explicitly "~", "~/", or "~\"
		if len(path) == 1 || path[1] == '/' || path[1] == '\\' {
			home, err := os.UserHomeDir()
			if err == nil {
				subPath := path[1:]
				if len(subPath) > 0 && (subPath[0] == '/' || subPath[0] == '\\') {
					subPath = subPath[1:]
				}
				return filepath.Join(home, subPath)
			}
		}
	}

	return path
}

// Save writes the config to ~/.config/vsum/config.yml
func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return SaveFile(cfg, configPath)
}

// SaveFile writes cfg to path, creating parent directories.
func SaveFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	header := "# vsum configuration file\n# Run 'vsum init' to regenerate with defaults\n\n"
	content := header + string(data)

	// The file can hold plain API keys.
	return os.WriteFile(path, []byte(content), 0600)
}

// SavePath returns the path where config will be saved
func SavePath() string {
	if path, err := ConfigPath(); err == nil {
		return path
	}
	return "config.yml"
}

// Init creates a new config.yml with default values
func Init() error {
	if Exists() {
		path, _ := ConfigPath()
		return fmt.Errorf("%s already exists", path)
	}
	return Save(DefaultConfig())
}

// LoadOrDefault loads config if it exists, otherwise returns defaults
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		cfg = DefaultConfig()
	}
	return cfg
}
