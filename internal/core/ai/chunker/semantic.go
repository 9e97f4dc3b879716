package chunker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
)

// Embedder turns text units into fixed-dimension vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// DefaultPercentile is the breakpoint percentile for semantic chunking.
const DefaultPercentile = 95

// SemanticSplitter places chunk boundaries where the distance between
// neighbouring sentences exceeds a per-document percentile of all distances.
type SemanticSplitter struct {
	embedder   Embedder
	Percentile float64
	// BufferSize is how many neighbouring sentences on each side are embedded
	// together with a sentence to smooth out very short utterances.
	BufferSize int
}

// NewSemanticSplitter returns a splitter backed by embedder.
func NewSemanticSplitter(embedder Embedder, percentile float64) (*SemanticSplitter, error) {
	if embedder == nil {
		return nil, ErrSemanticUnavailable
	}
	if percentile <= 0 || percentile > 100 {
		percentile = DefaultPercentile
	}
	return &SemanticSplitter{
		embedder:   embedder,
		Percentile: percentile,
		BufferSize: 1,
	}, nil
}

// Split groups the sentences of text into semantically coherent pieces.
func (s *SemanticSplitter) Split(ctx context.Context, text string) ([]string, error) {
	sentences := SplitSentences(text)
	if len(sentences) <= 1 {
		return sentences, nil
	}

	windows := combineSentences(sentences, s.BufferSize)
	vectors, err := s.embedder.Embed(ctx, windows)
	if err != nil {
		return nil, fmt.Errorf("embedding sentences: %w", err)
	}
	if len(vectors) != len(windows) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d inputs", len(vectors), len(windows))
	}

	distances := make([]float64, len(vectors)-1)
	for i := range distances {
		sim, err := CosineSimilarity(vectors[i], vectors[i+1])
		if err != nil {
			return nil, fmt.Errorf("sentence %d: %w", i, err)
		}
		distances[i] = 1 - sim
	}

	threshold := Percentile(distances, s.Percentile)

	var groups []string
	start := 0
	for i, d := range distances {
		if d > threshold {
			groups = append(groups, strings.Join(sentences[start:i+1], " "))
			start = i + 1
		}
	}
	if start < len(sentences) {
		groups = append(groups, strings.Join(sentences[start:], " "))
	}
	return groups, nil
}

// SplitSentences cuts text after '.', '?' or '!' when followed by whitespace.
func SplitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '?' && r != '!' {
			continue
		}
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j == i+1 {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = j
		i = j - 1
	}
	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// combineSentences joins each sentence with buffer neighbours on both sides.
func combineSentences(sentences []string, buffer int) []string {
	out := make([]string, len(sentences))
	for i := range sentences {
		lo := max(0, i-buffer)
		hi := min(len(sentences), i+buffer+1)
		out[i] = strings.Join(sentences[lo:hi], " ")
	}
	return out
}

// CosineSimilarity returns a·b / (|a| |b|).
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, errors.New("vectors have different or zero length")
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, errors.New("zero vector")
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Percentile returns the p-th percentile of values using linear
// interpolation between closest ranks.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if upper >= len(sorted) {
		upper = len(sorted) - 1
	}
	frac := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*frac
}
