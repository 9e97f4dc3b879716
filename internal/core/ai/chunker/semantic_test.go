package chunker

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
)

// topicEmbedder places text on a two-topic plane by counting keywords.
type topicEmbedder struct {
	calls int
}

func (e *topicEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{
			float32(strings.Count(text, "Cats")),
			float32(strings.Count(text, "Stocks")),
		}
	}
	return out, nil
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("quota exceeded")
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"One sentence", []string{"One sentence"}},
		{"Hi there. How are you? Great!", []string{"Hi there.", "How are you?", "Great!"}},
		{"Version 1.2 shipped. Done.", []string{"Version 1.2 shipped.", "Done."}},
		{"Wait...  what?\nYes.", []string{"Wait...", "what?", "Yes."}},
	}
	for _, tt := range tests {
		got := SplitSentences(tt.input)
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("SplitSentences(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		values   []float64
		p        float64
		expected float64
	}{
		{nil, 95, 0},
		{[]float64{7}, 95, 7},
		{[]float64{5, 1, 3, 2, 4}, 50, 3},
		{[]float64{10, 20}, 95, 19.5},
		{[]float64{1, 2, 3, 4, 5}, 100, 5},
	}
	for _, tt := range tests {
		got := Percentile(tt.values, tt.p)
		if math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("Percentile(%v, %v) = %v, want %v", tt.values, tt.p, got, tt.expected)
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	sim, err := CosineSimilarity([]float32{1, 0}, []float32{2, 0})
	if err != nil || math.Abs(sim-1) > 1e-9 {
		t.Errorf("parallel vectors: got %v, %v", sim, err)
	}
	sim, err = CosineSimilarity([]float32{1, 0}, []float32{0, 3})
	if err != nil || math.Abs(sim) > 1e-9 {
		t.Errorf("orthogonal vectors: got %v, %v", sim, err)
	}
	if _, err := CosineSimilarity([]float32{1}, []float32{1, 2}); err == nil {
		t.Error("expected error for mismatched lengths")
	}
	if _, err := CosineSimilarity([]float32{0, 0}, []float32{1, 2}); err == nil {
		t.Error("expected error for zero vector")
	}
}

func TestSemanticSplitsOnTopicShift(t *testing.T) {
	emb := &topicEmbedder{}
	s, err := NewSemanticSplitter(emb, 95)
	if err != nil {
		t.Fatal(err)
	}

	text := "Cats purr. Cats nap. Cats climb. Stocks rose. Stocks fell. Stocks rallied."
	groups, err := s.Split(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{
		"Cats purr. Cats nap. Cats climb.",
		"Stocks rose. Stocks fell. Stocks rallied.",
	}
	if !reflect.DeepEqual(groups, expected) {
		t.Errorf("groups = %q, want %q", groups, expected)
	}
	if emb.calls != 1 {
		t.Errorf("embedder called %d times, want 1", emb.calls)
	}
}

func TestSemanticSingleSentenceSkipsEmbedding(t *testing.T) {
	emb := &topicEmbedder{}
	s, _ := NewSemanticSplitter(emb, 95)
	groups, err := s.Split(context.Background(), "Just one thought")
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 1 || emb.calls != 0 {
		t.Errorf("groups = %q, calls = %d", groups, emb.calls)
	}
}

func TestSemanticPropagatesEmbedderError(t *testing.T) {
	s, _ := NewSemanticSplitter(failingEmbedder{}, 95)
	_, err := s.Split(context.Background(), "One. Two. Three.")
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected embedder error, got %v", err)
	}
}

func TestNewSemanticSplitterRequiresEmbedder(t *testing.T) {
	if _, err := NewSemanticSplitter(nil, 95); !errors.Is(err, ErrSemanticUnavailable) {
		t.Errorf("expected ErrSemanticUnavailable, got %v", err)
	}
}
