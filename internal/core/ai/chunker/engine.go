// Package chunker splits transcripts into bounded pieces for summarization.
package chunker

import (
	"context"
	"errors"
	"fmt"

	"github.com/guiyumin/vsum/internal/core/transcript"
)

var (
	// ErrSemanticUnavailable is returned when semantic chunking is requested
	// without an embedding provider.
	ErrSemanticUnavailable = errors.New("semantic chunking requires an embedding provider (set embedding.api_key or OPENAI_API_KEY)")
	// ErrEmptyTranscript is returned for transcripts without segments.
	ErrEmptyTranscript = errors.New("transcript has no segments")
)

// Default size budget for recursive chunking, in characters.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Options configures an Engine.
type Options struct {
	Strategy        Strategy
	ChunkSize       int
	ChunkOverlap    int
	IntervalSeconds float64
	Percentile      float64
	Embedder        Embedder // required for StrategySemantic
}

// strategyFunc produces ordered chunks for one strategy.
type strategyFunc func(ctx context.Context, t *transcript.Transcript) ([]Chunk, error)

// Engine chunks transcripts with a single, validated strategy.
// It holds no per-call state and is safe for concurrent use when its
// Embedder is.
type Engine struct {
	strategy  Strategy
	recursive *RecursiveSplitter
	semantic  *SemanticSplitter
	interval  float64
	dispatch  map[Strategy]strategyFunc
}

// New validates opts and returns an Engine. StrategyAuto must be resolved
// by the caller with Recommend before construction.
func New(opts Options) (*Engine, error) {
	e := &Engine{strategy: opts.Strategy, interval: opts.IntervalSeconds}
	if e.interval <= 0 {
		e.interval = DefaultInterval
	}

	switch opts.Strategy {
	case StrategyNone, StrategyTimestamp:
	case StrategyRecursive:
		size, overlap := opts.ChunkSize, opts.ChunkOverlap
		if size == 0 {
			size = DefaultChunkSize
		}
		r, err := NewRecursiveSplitter(size, overlap)
		if err != nil {
			return nil, err
		}
		e.recursive = r
	case StrategySemantic:
		s, err := NewSemanticSplitter(opts.Embedder, opts.Percentile)
		if err != nil {
			return nil, err
		}
		e.semantic = s
	case StrategyAuto:
		return nil, errors.New("strategy auto must be resolved before creating a chunker")
	default:
		return nil, fmt.Errorf("unknown chunking strategy: %q", opts.Strategy)
	}

	e.dispatch = map[Strategy]strategyFunc{
		StrategyNone:      e.chunkNone,
		StrategyRecursive: e.chunkRecursive,
		StrategySemantic:  e.chunkSemantic,
		StrategyTimestamp: e.chunkTimestamp,
	}
	return e, nil
}

// Strategy returns the strategy the engine was built with.
func (e *Engine) Strategy() Strategy {
	return e.strategy
}

// Chunk splits t. The result is never empty on success.
func (e *Engine) Chunk(ctx context.Context, t *transcript.Transcript) ([]Chunk, error) {
	if t == nil || len(t.Segments) == 0 {
		return nil, ErrEmptyTranscript
	}
	chunks, err := e.dispatch[e.strategy](ctx, t)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrEmptyTranscript
	}
	if e.strategy == StrategyNone {
		return chunks, nil
	}
	return annotate(chunks, e.strategy), nil
}

func (e *Engine) chunkNone(_ context.Context, t *transcript.Transcript) ([]Chunk, error) {
	return []Chunk{{
		Content:  t.FullTextWithTimestamps(),
		Metadata: baseMetadata(t),
	}}, nil
}

func (e *Engine) chunkRecursive(_ context.Context, t *transcript.Transcript) ([]Chunk, error) {
	spans, err := e.recursive.Split(t.FullTextWithTimestamps())
	if err != nil {
		return nil, err
	}
	chunks := make([]Chunk, 0, len(spans))
	for _, s := range spans {
		md := baseMetadata(t)
		md.StartOffset = s.Start
		md.EndOffset = s.End
		md.Overlap = s.Overlap
		chunks = append(chunks, Chunk{Content: s.Text, Metadata: md})
	}
	return chunks, nil
}

func (e *Engine) chunkSemantic(ctx context.Context, t *transcript.Transcript) ([]Chunk, error) {
	groups, err := e.semantic.Split(ctx, t.FullText())
	if err != nil {
		return nil, err
	}
	chunks := make([]Chunk, 0, len(groups))
	for _, g := range groups {
		chunks = append(chunks, Chunk{Content: g, Metadata: baseMetadata(t)})
	}
	return chunks, nil
}

func (e *Engine) chunkTimestamp(_ context.Context, t *transcript.Transcript) ([]Chunk, error) {
	windows := splitByInterval(t.Segments, e.interval)
	chunks := make([]Chunk, 0, len(windows))
	for _, w := range windows {
		start := w[0].Start
		end := w[len(w)-1].End()
		md := baseMetadata(t)
		md.StartTime = &start
		md.EndTime = &end
		chunks = append(chunks, Chunk{Content: transcript.JoinTimestamped(w), Metadata: md})
	}
	return chunks, nil
}

// Reassemble joins recursive chunks back into the source text by dropping
// the overlapping prefix of every chunk after the first.
func Reassemble(chunks []Chunk) string {
	var out []byte
	for _, c := range chunks {
		out = append(out, c.Content[min(c.Metadata.Overlap, len(c.Content)):]...)
	}
	return string(out)
}
