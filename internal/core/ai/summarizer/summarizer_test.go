package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/guiyumin/vsum/internal/core/ai/chunker"
	"github.com/guiyumin/vsum/internal/core/transcript"
)

// fakeProvider records requests and answers from a script.
type fakeProvider struct {
	requests []Request
	replies  []string
	failAt   int // 1-based call number that fails; 0 never fails
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(_ context.Context, req Request) (string, error) {
	f.requests = append(f.requests, req)
	n := len(f.requests)
	if n == f.failAt {
		return "", &ProviderError{Provider: "fake", Err: errors.New("rate limited")}
	}
	if n <= len(f.replies) {
		return f.replies[n-1], nil
	}
	return fmt.Sprintf("- reply %d", n), nil
}

func sampleTranscript() *transcript.Transcript {
	return &transcript.Transcript{
		Metadata: transcript.Metadata{
			VideoID:  "abcdefghijk",
			Title:    "Intro to Go",
			Channel:  "Gophers",
			Duration: 754,
			URL:      "https://www.youtube.com/watch?v=abcdefghijk",
		},
		Segments: []transcript.Segment{
			{Text: "welcome", Start: 0, Duration: 3},
			{Text: "goroutines are cheap", Start: 3, Duration: 4},
		},
		Language: "en",
	}
}

func TestSummarizeTranscriptPromptOrder(t *testing.T) {
	p := &fakeProvider{replies: []string{detailedResponse}}
	s := New(p, Settings{Model: "claude-test", MaxTokens: 1000, Temperature: 0.2})

	summary, err := s.SummarizeTranscript(context.Background(), sampleTranscript(), FormatDetailed, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.requests) != 1 {
		t.Fatalf("got %d requests, want 1", len(p.requests))
	}

	req := p.requests[0]
	if req.Model != "claude-test" || req.MaxTokens != 1000 || req.Temperature != 0.2 || req.Thinking {
		t.Errorf("request settings not propagated: %+v", req)
	}

	doc := strings.Index(req.Prompt, "<documents>")
	content := strings.Index(req.Prompt, "[00:00] welcome\n[00:03] goroutines are cheap")
	task := strings.Index(req.Prompt, "Analyze the video transcript above")
	if doc != 0 || content < doc || task < content {
		t.Errorf("transcript must precede instructions (doc=%d content=%d task=%d)", doc, content, task)
	}
	for _, want := range []string{"- Channel: Gophers", "- Duration: 12:34", "**Detailed Summary**"} {
		if !strings.Contains(req.Prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	if summary.Metadata.Title != "Intro to Go" || len(summary.KeyPoints) != 3 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestSummarizeTranscriptCustomPrompt(t *testing.T) {
	p := &fakeProvider{}
	s := New(p, Settings{})
	if _, err := s.SummarizeTranscript(context.Background(), sampleTranscript(), FormatConcise, "just say hi"); err != nil {
		t.Fatal(err)
	}
	if p.requests[0].Prompt != "just say hi" {
		t.Errorf("prompt = %q", p.requests[0].Prompt)
	}
	if p.requests[0].MaxTokens != 4096 {
		t.Errorf("default max tokens = %d", p.requests[0].MaxTokens)
	}
}

func TestSummarizeChunksMapReduce(t *testing.T) {
	p := &fakeProvider{replies: []string{"- alpha", "- beta", "- gamma", detailedResponse}}
	s := New(p, Settings{Model: "m", ExtendedThinking: true, ThinkingBudget: 2048})

	var progress []string
	s.OnChunk = func(n, total int) { progress = append(progress, fmt.Sprintf("%d/%d", n, total)) }

	chunks := []chunker.Chunk{
		{Content: "first part", Metadata: chunker.Metadata{Title: "Intro to Go"}},
		{Content: "second part", Metadata: chunker.Metadata{Title: "Intro to Go"}},
		{Content: "third part"},
	}
	summary, err := s.SummarizeChunks(context.Background(), chunks, sampleTranscript(), FormatConcise)
	if err != nil {
		t.Fatal(err)
	}

	if len(p.requests) != 4 {
		t.Fatalf("got %d requests, want 4", len(p.requests))
	}
	for i := 0; i < 3; i++ {
		prompt := p.requests[i].Prompt
		if !strings.Contains(prompt, fmt.Sprintf("Chunk %d of 3", i+1)) || !strings.Contains(prompt, chunks[i].Content) {
			t.Errorf("map prompt %d malformed:\n%s", i, prompt)
		}
		if !p.requests[i].Thinking || p.requests[i].ThinkingBudget != 2048 {
			t.Errorf("request %d lost thinking settings", i)
		}
	}
	if !strings.Contains(p.requests[2].Prompt, "Video: Unknown") {
		t.Errorf("missing title should read Unknown")
	}

	reduce := p.requests[3].Prompt
	wantSegments := "**Segment 1**:\n- alpha\n\n---\n\n**Segment 2**:\n- beta\n\n---\n\n**Segment 3**:\n- gamma"
	if !strings.Contains(reduce, wantSegments) {
		t.Errorf("reduce prompt segments malformed:\n%s", reduce)
	}
	if !strings.Contains(reduce, "Title: Intro to Go") || !strings.Contains(reduce, "**Key Takeaways**") {
		t.Errorf("reduce prompt missing metadata or concise instructions")
	}

	if strings.Join(progress, ",") != "1/3,2/3,3/3,4/3" {
		t.Errorf("progress = %v", progress)
	}
	if summary.ExecutiveSummary == "" {
		t.Error("summary not parsed from reduce response")
	}
}

func TestSummarizeChunksAbortsOnFirstFailure(t *testing.T) {
	p := &fakeProvider{failAt: 2}
	s := New(p, Settings{})

	chunks := []chunker.Chunk{{Content: "a"}, {Content: "b"}, {Content: "c"}}
	_, err := s.SummarizeChunks(context.Background(), chunks, sampleTranscript(), FormatDetailed)
	if err == nil {
		t.Fatal("expected error")
	}
	var perr *ProviderError
	if !errors.As(err, &perr) || perr.Provider != "fake" {
		t.Errorf("error should wrap ProviderError, got %v", err)
	}
	if len(p.requests) != 2 {
		t.Errorf("made %d requests after failure, want 2", len(p.requests))
	}
}

func TestSummarizeChunksEmpty(t *testing.T) {
	s := New(&fakeProvider{}, Settings{})
	if _, err := s.SummarizeChunks(context.Background(), nil, sampleTranscript(), FormatDetailed); !errors.Is(err, chunker.ErrEmptyTranscript) {
		t.Errorf("got %v", err)
	}
}

func TestSummaryTimestampUsesClock(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s := New(&fakeProvider{}, Settings{})
	s.now = func() time.Time { return at }

	summary, err := s.SummarizeTranscript(context.Background(), sampleTranscript(), FormatDetailed, "")
	if err != nil {
		t.Fatal(err)
	}
	if !summary.GeneratedAt.Equal(at) {
		t.Errorf("GeneratedAt = %v", summary.GeneratedAt)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", FormatDetailed, false},
		{"concise", FormatConcise, false},
		{"ACADEMIC", FormatAcademic, false},
		{"bullet_points", FormatBulletPoints, false},
		{"haiku", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.input, got, err)
		}
	}
}

func TestTaskInstructionsDefaultToDetailed(t *testing.T) {
	if TaskInstructions("unknown") != TaskInstructions(FormatDetailed) {
		t.Error("unknown format should use detailed instructions")
	}
	if !FormatAcademic.IncludesDetailed() || FormatConcise.IncludesDetailed() {
		t.Error("IncludesDetailed mismatch")
	}
}

func TestModelCatalog(t *testing.T) {
	if m := LookupModel("qwen-plus"); m == nil || m.Provider != "qwen" {
		t.Errorf("LookupModel(qwen-plus) = %+v", m)
	}
	if LookupModel("nope") != nil {
		t.Error("unknown model should be nil")
	}
	if len(ModelsFor("")) != len(Models) {
		t.Error("ModelsFor(\"\") should return the whole catalog")
	}
	for _, m := range ModelsFor("anthropic") {
		if m.Provider != "anthropic" {
			t.Errorf("ModelsFor(anthropic) returned %s", m.ID)
		}
	}
}
