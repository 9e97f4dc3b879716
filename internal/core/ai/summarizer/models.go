package summarizer

import "github.com/guiyumin/vsum/internal/core/config"

// Model describes an LLM suitable for summarization.
type Model struct {
	Provider    string `json:"provider"`    // config.Provider* name
	ID          string `json:"id"`          // API model ID
	Name        string `json:"name"`        // Display name
	Description string `json:"description"` // Brief description
	Tier        string `json:"tier"`        // "flagship", "standard", "fast", "reasoning"
	Thinking    bool   `json:"thinking"`    // supports extended thinking / reasoning effort
}

// Models lists models known to work for transcript summarization.
// Any other model ID is still accepted and passed through to the provider.
var Models = []Model{
	// Anthropic
	{Provider: config.ProviderAnthropic, ID: "claude-opus-4-1-20250805", Name: "Claude Opus 4.1", Description: "Deepest analysis, slowest", Tier: "flagship", Thinking: true},
	{Provider: config.ProviderAnthropic, ID: "claude-sonnet-4-5-20250929", Name: "Claude Sonnet 4.5", Description: "Best balance for long transcripts", Tier: "flagship", Thinking: true},
	{Provider: config.ProviderAnthropic, ID: "claude-sonnet-4-20250514", Name: "Claude Sonnet 4", Description: "Default, 200k context", Tier: "standard", Thinking: true},
	{Provider: config.ProviderAnthropic, ID: "claude-haiku-4-5-20251001", Name: "Claude Haiku 4.5", Description: "Fast and cheap", Tier: "fast", Thinking: true},
	{Provider: config.ProviderAnthropic, ID: "claude-3-5-haiku-20241022", Name: "Claude Haiku 3.5", Description: "Legacy fast model", Tier: "fast"},

	// OpenAI
	{Provider: config.ProviderOpenAI, ID: "gpt-5", Name: "GPT-5", Description: "Flagship reasoning model", Tier: "flagship", Thinking: true},
	{Provider: config.ProviderOpenAI, ID: "gpt-5-mini", Name: "GPT-5 Mini", Description: "Faster GPT-5 for defined tasks", Tier: "fast", Thinking: true},
	{Provider: config.ProviderOpenAI, ID: "gpt-4.1", Name: "GPT-4.1", Description: "Smartest non-reasoning model, 1M context", Tier: "standard"},
	{Provider: config.ProviderOpenAI, ID: "gpt-4.1-mini", Name: "GPT-4.1 Mini", Description: "Faster version of GPT-4.1", Tier: "fast"},
	{Provider: config.ProviderOpenAI, ID: "gpt-4o", Name: "GPT-4o", Description: "Fast, intelligent, flexible", Tier: "standard"},
	{Provider: config.ProviderOpenAI, ID: "o3", Name: "o3", Description: "Reasoning for complex tasks", Tier: "reasoning", Thinking: true},
	{Provider: config.ProviderOpenAI, ID: "o4-mini", Name: "o4 Mini", Description: "Fast, cost-efficient reasoning", Tier: "reasoning", Thinking: true},

	// Qwen (DashScope)
	{Provider: config.ProviderQwen, ID: "qwen-max", Name: "Qwen Max", Description: "Most capable Qwen model", Tier: "flagship"},
	{Provider: config.ProviderQwen, ID: "qwen-plus", Name: "Qwen Plus", Description: "Good balance of cost and quality", Tier: "standard", Thinking: true},
	{Provider: config.ProviderQwen, ID: "qwen-turbo", Name: "Qwen Turbo", Description: "Fast, 1M context", Tier: "fast", Thinking: true},
	{Provider: config.ProviderQwen, ID: "qwen-long", Name: "Qwen Long", Description: "Very long documents", Tier: "standard"},
}

// LookupModel returns model info by ID, or nil if not found.
func LookupModel(id string) *Model {
	for _, m := range Models {
		if m.ID == id {
			return &m
		}
	}
	return nil
}

// ModelsFor returns the catalog entries of one provider, or all models when
// provider is empty.
func ModelsFor(provider string) []Model {
	var result []Model
	for _, m := range Models {
		if provider == "" || m.Provider == provider {
			result = append(result, m)
		}
	}
	return result
}
