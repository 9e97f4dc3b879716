package summarizer

import (
	"fmt"

	"github.com/guiyumin/vsum/internal/core/config"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// QwenDefaultBaseURL is the OpenAI-compatible endpoint for Qwen
	QwenDefaultBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"
)

// NewQwen creates a provider for Alibaba Qwen via the OpenAI-compatible API.
// The apiKey parameter is a DashScope API key.
func NewQwen(cfg config.LLMConfig, apiKey string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Qwen API key not provided (set DASHSCOPE_API_KEY)")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = QwenDefaultBaseURL
	}

	return &OpenAI{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
		),
		name: "qwen",
		// DashScope takes its own body fields for hybrid thinking models.
		thinkingOptions: func(req Request) []option.RequestOption {
			return []option.RequestOption{
				option.WithJSONSet("enable_thinking", true),
				option.WithJSONSet("thinking_budget", req.ThinkingBudget),
			}
		},
	}, nil
}
