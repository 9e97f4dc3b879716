// Package embedder provides sentence embeddings for semantic chunking.
package embedder

import (
	"context"
	"fmt"
	"sort"

	"github.com/guiyumin/vsum/internal/core/config"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultModel is used with OpenAI when embedding.model is empty.
	DefaultModel = string(openai.SmallEmbedding3)

	// QwenModel is the DashScope embedding model used for provider qwen.
	QwenModel = "text-embedding-v3"

	// QwenBaseURL is the OpenAI-compatible DashScope endpoint.
	QwenBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"

	// DefaultBatchSize keeps requests under provider input limits
	// (DashScope accepts at most 10 inputs per call).
	DefaultBatchSize = 10
)

// OpenAI embeds text through an OpenAI-compatible embeddings endpoint.
type OpenAI struct {
	client    *openai.Client
	model     openai.EmbeddingModel
	batchSize int
}

// New creates an embedder from configuration. It returns nil, nil when no
// API key is available so callers can treat semantic chunking as unavailable.
func New(cfg config.EmbeddingConfig, apiKey string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, nil
	}

	clientConfig := openai.DefaultConfig(apiKey)
	model := cfg.Model
	batch := 100

	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		if model == "" {
			model = DefaultModel
		}
	case config.ProviderQwen:
		clientConfig.BaseURL = QwenBaseURL
		if model == "" {
			model = QwenModel
		}
		batch = DefaultBatchSize
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}

	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAI{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     openai.EmbeddingModel(model),
		batchSize: batch,
	}, nil
}

// Embed returns one vector per input text, in input order.
func (o *OpenAI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += o.batchSize {
		end := min(start+o.batchSize, len(texts))

		resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: texts[start:end],
			Model: o.model,
		})
		if err != nil {
			return nil, fmt.Errorf("embedding API error: %w", err)
		}
		if len(resp.Data) != end-start {
			return nil, fmt.Errorf("embedding API returned %d vectors for %d inputs", len(resp.Data), end-start)
		}

		data := resp.Data
		sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })
		for _, d := range data {
			vectors = append(vectors, d.Embedding)
		}
	}

	return vectors, nil
}
