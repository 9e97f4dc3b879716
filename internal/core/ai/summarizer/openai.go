package summarizer

import (
	"context"
	"fmt"

	"github.com/guiyumin/vsum/internal/core/config"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI implements Provider using the OpenAI chat completions API
// (official SDK). Qwen reuses it through the DashScope compatible endpoint.
type OpenAI struct {
	client openai.Client
	name   string

	// thinkingOptions returns extra request options for extended reasoning.
	thinkingOptions func(req Request) []option.RequestOption
}

// NewOpenAI creates a new OpenAI provider.
func NewOpenAI(cfg config.LLMConfig, apiKey string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not provided (set OPENAI_API_KEY)")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		name:   "openai",
	}, nil
}

// Name returns the provider name.
func (o *OpenAI) Name() string {
	return o.name
}

// Complete sends the prompt as a single user message.
func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
	}

	var reqOpts []option.RequestOption
	switch {
	case req.Thinking && o.thinkingOptions != nil:
		reqOpts = o.thinkingOptions(req)
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	case req.Thinking:
		// Reasoning tokens count against max_completion_tokens.
		params.ReasoningEffort = openai.ReasoningEffortHigh
		params.MaxCompletionTokens = openai.Int(int64(req.ThinkingBudget + req.MaxTokens))
	default:
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
		params.Temperature = openai.Float(req.Temperature)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params, reqOpts...)
	if err != nil {
		return "", &ProviderError{Provider: o.Name(), Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: o.Name(), Err: fmt.Errorf("no choices in response")}
	}

	return resp.Choices[0].Message.Content, nil
}
