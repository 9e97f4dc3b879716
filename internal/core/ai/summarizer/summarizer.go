package summarizer

import (
	"context"
	"fmt"
	"time"

	"github.com/guiyumin/vsum/internal/core/ai/chunker"
	"github.com/guiyumin/vsum/internal/core/transcript"
)

// Summary is the structured result of one summarization call.
type Summary struct {
	Metadata           transcript.Metadata `json:"metadata"`
	ExecutiveSummary   string              `json:"executive_summary"`
	KeyPoints          []string            `json:"key_points"`
	DetailedSummary    string              `json:"detailed_summary"`
	TopicsCovered      []string            `json:"topics_covered"`
	NotableQuotes      []string            `json:"notable_quotes,omitempty"`
	ResourcesMentioned []string            `json:"resources_mentioned,omitempty"`
	TargetAudience     string              `json:"target_audience,omitempty"`
	GeneratedAt        time.Time           `json:"generated_at"`
}

// Settings are the per-call model parameters.
type Settings struct {
	Model            string
	MaxTokens        int
	Temperature      float64
	ExtendedThinking bool
	ThinkingBudget   int
}

// Summarizer drives a Provider through the direct and map-reduce paths.
// Calls are sequential and hold no state between invocations.
type Summarizer struct {
	provider Provider
	settings Settings
	now      func() time.Time

	// OnChunk, when set, is called before each map-phase request with the
	// 1-based chunk number and the chunk count, and once more before the
	// reduce request with number == total+1.
	OnChunk func(number, total int)
}

// New returns a Summarizer using provider.
func New(provider Provider, settings Settings) *Summarizer {
	if settings.MaxTokens <= 0 {
		settings.MaxTokens = 4096
	}
	if settings.ThinkingBudget <= 0 {
		settings.ThinkingBudget = 4096
	}
	return &Summarizer{
		provider: provider,
		settings: settings,
		now:      time.Now,
	}
}

// Provider returns the backing provider.
func (s *Summarizer) Provider() Provider {
	return s.provider
}

func (s *Summarizer) complete(ctx context.Context, prompt string) (string, error) {
	return s.provider.Complete(ctx, Request{
		Model:          s.settings.Model,
		Prompt:         prompt,
		MaxTokens:      s.settings.MaxTokens,
		Temperature:    s.settings.Temperature,
		Thinking:       s.settings.ExtendedThinking,
		ThinkingBudget: s.settings.ThinkingBudget,
	})
}

// SummarizeTranscript summarizes the whole transcript with one request.
// A non-empty customPrompt replaces the generated prompt entirely.
func (s *Summarizer) SummarizeTranscript(ctx context.Context, t *transcript.Transcript, f Format, customPrompt string) (*Summary, error) {
	prompt := customPrompt
	if prompt == "" {
		prompt = DocumentPrompt(t, f)
	}

	response, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return Parse(response, t.Metadata, s.now()), nil
}

// SummarizeChunks runs map-reduce: one request per chunk in order, then one
// request combining the chunk summaries. The first failing request aborts
// the call.
func (s *Summarizer) SummarizeChunks(ctx context.Context, chunks []chunker.Chunk, t *transcript.Transcript, f Format) (*Summary, error) {
	if len(chunks) == 0 {
		return nil, chunker.ErrEmptyTranscript
	}

	summaries := make([]string, 0, len(chunks))
	for i, c := range chunks {
		if s.OnChunk != nil {
			s.OnChunk(i+1, len(chunks))
		}
		out, err := s.complete(ctx, ChunkPrompt(c, i+1, len(chunks)))
		if err != nil {
			return nil, fmt.Errorf("chunk %d of %d: %w", i+1, len(chunks), err)
		}
		summaries = append(summaries, out)
	}

	if s.OnChunk != nil {
		s.OnChunk(len(chunks)+1, len(chunks))
	}
	response, err := s.complete(ctx, ReducePrompt(summaries, t, f))
	if err != nil {
		return nil, fmt.Errorf("combining chunk summaries: %w", err)
	}
	return Parse(response, t.Metadata, s.now()), nil
}
