// Package ai turns YouTube videos into markdown summaries: it fetches the
// transcript, picks a chunking strategy, summarizes with an LLM and writes
// the rendered result locally or to WebDAV.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/guiyumin/vsum/internal/core/ai/chunker"
	"github.com/guiyumin/vsum/internal/core/ai/embedder"
	"github.com/guiyumin/vsum/internal/core/ai/output"
	"github.com/guiyumin/vsum/internal/core/ai/summarizer"
	"github.com/guiyumin/vsum/internal/core/config"
	"github.com/guiyumin/vsum/internal/core/logger"
	"github.com/guiyumin/vsum/internal/core/secret"
	"github.com/guiyumin/vsum/internal/core/transcript"
)

// Pipeline processes videos through fetching, chunking and summarization.
type Pipeline struct {
	config      *config.Config
	transcripts transcript.Provider
	summarizer  *summarizer.Summarizer
	embedder    chunker.Embedder
	writer      *output.Writer
	log         logger.Logger
	now         func() time.Time
	prefix      string

	// OnStage, when set, receives a short description of each step.
	OnStage func(stage string)
}

// Options configures one Process call. Empty fields fall back to config.
type Options struct {
	// Strategy is a chunking strategy name or "auto".
	Strategy string
	// Format is a summary format name.
	Format string
	// Output is a file (ending in .md), a directory or a remote target.
	Output string
	// CustomPrompt replaces the generated prompt on the unchunked path.
	CustomPrompt   string
	SaveTranscript bool
	Languages      []string
}

// Result contains the output of pipeline processing.
type Result struct {
	VideoID            string
	Transcript         *transcript.Transcript
	Strategy           chunker.Strategy
	Chunks             int
	Summary            *summarizer.Summary
	Markdown           string
	SummaryLocation    string
	TranscriptLocation string
}

// NewPipeline creates a pipeline from cfg. The pin unseals encrypted API
// keys; it may be empty when keys are stored in plain text or come from the
// environment.
func NewPipeline(cfg *config.Config, pin string, log logger.Logger) (*Pipeline, error) {
	p := newPipeline(cfg, pin, log)

	apiKey, err := secret.Resolve(cfg.LLM.APIKey, cfg.LLM.APIKeyEncrypted, pin)
	if err != nil {
		return nil, fmt.Errorf("failed to unlock %s API key: %w", cfg.LLM.Provider, err)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no API key for %s\nSet %s or run: vsum config set-key", cfg.LLM.Provider, config.APIKeyEnv(cfg.LLM.Provider))
	}

	provider, err := summarizer.NewProvider(cfg.LLM, apiKey)
	if err != nil {
		return nil, err
	}
	p.summarizer = summarizer.New(provider, summarizer.Settings{
		Model:            cfg.LLM.Model,
		MaxTokens:        cfg.LLM.MaxTokens,
		Temperature:      cfg.LLM.Temperature,
		ExtendedThinking: cfg.LLM.ExtendedThinking,
		ThinkingBudget:   cfg.LLM.ThinkingBudget,
	})
	p.summarizer.OnChunk = p.chunkProgress
	return p, nil
}

// NewChunkingPipeline creates a pipeline that can fetch and chunk but not
// summarize, so no LLM key is needed.
func NewChunkingPipeline(cfg *config.Config, pin string, log logger.Logger) *Pipeline {
	return newPipeline(cfg, pin, log)
}

func newPipeline(cfg *config.Config, pin string, log logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}

	p := &Pipeline{
		config:      cfg,
		transcripts: transcript.NewYtDlp(cfg.YtDlpPath),
		writer:      output.NewWriter(cfg),
		log:         log,
		now:         time.Now,
	}

	embedKey, err := secret.Resolve(cfg.Embedding.APIKey, cfg.Embedding.APIKeyEncrypted, pin)
	if err != nil {
		log.Warn(context.Background(), "semantic chunking disabled: %v", err)
	} else {
		e, err := embedder.New(cfg.Embedding, embedKey)
		switch {
		case err != nil:
			log.Warn(context.Background(), "semantic chunking disabled: %v", err)
		case e != nil:
			p.embedder = e
		}
	}
	return p
}

// Config returns the configuration the pipeline was built from.
func (p *Pipeline) Config() *config.Config {
	return p.config
}

// SemanticAvailable reports whether an embedding provider is configured.
func (p *Pipeline) SemanticAvailable() bool {
	return p.embedder != nil
}

func (p *Pipeline) stage(format string, args ...interface{}) {
	if p.OnStage != nil {
		p.OnStage(p.prefix + fmt.Sprintf(format, args...))
	}
}

func (p *Pipeline) chunkProgress(number, total int) {
	if number > total {
		p.stage("Combining %d chunk summaries", total)
		return
	}
	p.stage("Summarizing chunk %d/%d", number, total)
}

// Fetch resolves input to a video ID and downloads its transcript.
func (p *Pipeline) Fetch(ctx context.Context, input string, languages []string) (*transcript.Transcript, error) {
	videoID, err := transcript.ExtractVideoID(input)
	if err != nil {
		return nil, err
	}
	if len(languages) == 0 {
		languages = p.config.Languages
	}

	p.stage("Fetching transcript for %s", videoID)
	p.log.Debug(ctx, "fetching %s via %s (languages %s)", videoID, p.transcripts.Name(), strings.Join(languages, ","))
	return p.transcripts.Fetch(ctx, videoID, languages)
}

// ResolveStrategy turns a strategy name into a concrete strategy for t.
// An empty name uses the configured default; "auto" asks Recommend.
func (p *Pipeline) ResolveStrategy(name string, t *transcript.Transcript) (chunker.Strategy, error) {
	if name == "" {
		name = p.config.Chunking.Strategy
	}
	strategy, err := chunker.ParseStrategy(name)
	if err != nil {
		return "", err
	}
	if strategy == chunker.StrategyAuto {
		strategy = chunker.RecommendFor(t, p.SemanticAvailable())
	}
	return strategy, nil
}

// Chunk splits t with the named strategy using the configured chunking
// parameters.
func (p *Pipeline) Chunk(ctx context.Context, t *transcript.Transcript, name string) (chunker.Strategy, []chunker.Chunk, error) {
	strategy, err := p.ResolveStrategy(name, t)
	if err != nil {
		return "", nil, err
	}

	c := p.config.Chunking
	engine, err := chunker.New(chunker.Options{
		Strategy:        strategy,
		ChunkSize:       c.ChunkSize,
		ChunkOverlap:    c.ChunkOverlap,
		IntervalSeconds: c.IntervalSeconds,
		Percentile:      c.SemanticPercentile,
		Embedder:        p.embedder,
	})
	if err != nil {
		return strategy, nil, err
	}

	p.stage("Chunking transcript (%s)", strategy)
	chunks, err := engine.Chunk(ctx, t)
	if err != nil {
		return strategy, nil, err
	}
	p.log.Debug(ctx, "%s: %d chunk(s) with %s strategy", t.Metadata.VideoID, len(chunks), strategy)
	return strategy, chunks, nil
}

// ErrNoSummarizer is returned by Process on a pipeline built without an LLM.
var ErrNoSummarizer = errors.New("summarization not configured")

// Process summarizes one video and writes the markdown.
func (p *Pipeline) Process(ctx context.Context, input string, opts Options) (*Result, error) {
	if p.summarizer == nil {
		return nil, ErrNoSummarizer
	}
	format, err := summarizer.ParseFormat(firstNonEmpty(opts.Format, p.config.Format))
	if err != nil {
		return nil, err
	}

	t, err := p.Fetch(ctx, input, opts.Languages)
	if err != nil {
		return nil, err
	}
	result := &Result{VideoID: t.Metadata.VideoID, Transcript: t}

	strategy, chunks, err := p.Chunk(ctx, t, opts.Strategy)
	if err != nil {
		return nil, err
	}
	result.Strategy = strategy
	result.Chunks = len(chunks)

	var summary *summarizer.Summary
	if strategy == chunker.StrategyNone {
		p.stage("Summarizing with %s", p.summarizer.Provider().Name())
		summary, err = p.summarizer.SummarizeTranscript(ctx, t, format, opts.CustomPrompt)
	} else {
		if opts.CustomPrompt != "" {
			p.log.Warn(ctx, "custom prompt ignored for chunked summaries (%s strategy)", strategy)
		}
		summary, err = p.summarizer.SummarizeChunks(ctx, chunks, t, format)
	}
	if err != nil {
		return nil, fmt.Errorf("summarization failed: %w", err)
	}
	result.Summary = summary
	result.Markdown = output.Render(summary, format)

	p.stage("Writing summary")
	target := p.SummaryTarget(opts.Output, t.Metadata)
	result.SummaryLocation, err = p.writer.Write(ctx, target, []byte(result.Markdown))
	if err != nil {
		return result, fmt.Errorf("failed to write summary: %w", err)
	}
	p.log.Info(ctx, "summary written: %s", result.SummaryLocation)

	if opts.SaveTranscript {
		content := output.RenderTranscript(t, p.now())
		result.TranscriptLocation, err = p.writer.Write(ctx, output.TranscriptPathFor(target), []byte(content))
		if err != nil {
			return result, fmt.Errorf("failed to write transcript: %w", err)
		}
		p.log.Info(ctx, "transcript written: %s", result.TranscriptLocation)
	}

	return result, nil
}

// SummaryTarget returns where the summary for md goes. An out ending in .md
// is used as is; any other non-empty out is treated as a directory.
func (p *Pipeline) SummaryTarget(out string, md transcript.Metadata) string {
	if strings.HasSuffix(strings.ToLower(out), ".md") {
		return out
	}
	if out == "" {
		out = p.config.OutputDir
	}
	return p.writer.Join(out, output.SummaryPath(md))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
