package ai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/guiyumin/vsum/internal/core/ai/chunker"
	"github.com/guiyumin/vsum/internal/core/ai/output"
	"github.com/guiyumin/vsum/internal/core/ai/summarizer"
	"github.com/guiyumin/vsum/internal/core/config"
	"github.com/guiyumin/vsum/internal/core/logger"
	"github.com/guiyumin/vsum/internal/core/transcript"
)

const cannedResponse = `## Executive Summary
A short talk.

## Key Points
- First point
- Second point

## Topics Covered
- Testing`

type fakeTranscripts struct {
	videos map[string]*transcript.Transcript
}

func (f *fakeTranscripts) Name() string { return "fake" }

func (f *fakeTranscripts) Fetch(_ context.Context, videoID string, _ []string) (*transcript.Transcript, error) {
	t, ok := f.videos[videoID]
	if !ok {
		return nil, &transcript.UnavailableError{VideoID: videoID, Reason: "no captions"}
	}
	return t, nil
}

type recordingProvider struct {
	mu      sync.Mutex
	prompts []string
}

func (r *recordingProvider) Name() string { return "recording" }

func (r *recordingProvider) Complete(_ context.Context, req summarizer.Request) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, req.Prompt)
	return cannedResponse, nil
}

func video(id string, duration int, segments int) *transcript.Transcript {
	t := &transcript.Transcript{
		Metadata: transcript.Metadata{
			VideoID:  id,
			Title:    "Test Talk",
			Channel:  "Test Channel",
			Duration: duration,
			URL:      transcript.WatchURL(id),
		},
		Language: "en",
	}
	step := float64(duration) / float64(segments)
	for i := 0; i < segments; i++ {
		t.Segments = append(t.Segments, transcript.Segment{
			Text:     fmt.Sprintf("segment %d talks about something worth summarizing in a few words", i),
			Start:    float64(i) * step,
			Duration: step,
		})
	}
	return t
}

func newTestPipeline(t *testing.T, provider summarizer.Provider, videos ...*transcript.Transcript) *Pipeline {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.OutputDir = t.TempDir()

	known := make(map[string]*transcript.Transcript)
	for _, v := range videos {
		known[v.Metadata.VideoID] = v
	}

	return &Pipeline{
		config:      cfg,
		transcripts: &fakeTranscripts{videos: known},
		summarizer:  summarizer.New(provider, summarizer.Settings{Model: "test-model"}),
		writer:      output.NewWriter(cfg),
		log:         logger.Nop(),
		now:         func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func TestProcessShortVideo(t *testing.T) {
	provider := &recordingProvider{}
	p := newTestPipeline(t, provider, video("aaaaaaaaaaa", 120, 4))

	var stages []string
	p.OnStage = func(s string) { stages = append(stages, s) }

	res, err := p.Process(context.Background(), "https://youtu.be/aaaaaaaaaaa", Options{SaveTranscript: true})
	if err != nil {
		t.Fatal(err)
	}

	if res.Strategy != chunker.StrategyNone || res.Chunks != 1 {
		t.Errorf("strategy = %s with %d chunks, want none with 1", res.Strategy, res.Chunks)
	}
	if len(provider.prompts) != 1 {
		t.Fatalf("provider called %d times, want 1", len(provider.prompts))
	}
	if !strings.Contains(provider.prompts[0], "[00:00] segment 0") {
		t.Errorf("direct prompt should carry the timestamped transcript:\n%s", provider.prompts[0])
	}

	want := filepath.Join(p.config.OutputDir, "Test-Channel", "Test-Talk_aaaaaaaaaaa.md")
	if res.SummaryLocation != want {
		t.Errorf("summary written to %q, want %q", res.SummaryLocation, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != res.Markdown || !strings.HasPrefix(res.Markdown, "# Video Summary: Test Talk") {
		t.Errorf("unexpected summary file:\n%s", data)
	}

	if res.TranscriptLocation != strings.TrimSuffix(want, ".md")+".transcript.md" {
		t.Errorf("transcript written to %q", res.TranscriptLocation)
	}
	if _, err := os.Stat(res.TranscriptLocation); err != nil {
		t.Errorf("transcript file missing: %v", err)
	}

	if len(stages) == 0 || stages[0] != "Fetching transcript for aaaaaaaaaaa" {
		t.Errorf("stages = %v", stages)
	}
}

func TestProcessLongVideoUsesMapReduce(t *testing.T) {
	provider := &recordingProvider{}
	p := newTestPipeline(t, provider, video("bbbbbbbbbbb", 1200, 60))

	res, err := p.Process(context.Background(), "bbbbbbbbbbb", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Strategy != chunker.StrategyRecursive {
		t.Errorf("strategy = %s, want recursive", res.Strategy)
	}
	if res.Chunks < 2 {
		t.Fatalf("expected several chunks, got %d", res.Chunks)
	}
	if len(provider.prompts) != res.Chunks+1 {
		t.Errorf("provider called %d times, want %d", len(provider.prompts), res.Chunks+1)
	}
	if last := provider.prompts[len(provider.prompts)-1]; !strings.Contains(last, "**Segment 1**:") {
		t.Errorf("last request should combine segment summaries:\n%s", last)
	}
}

func TestProcessExplicitStrategy(t *testing.T) {
	provider := &recordingProvider{}
	p := newTestPipeline(t, provider, video("ccccccccccc", 900, 30))

	res, err := p.Process(context.Background(), "ccccccccccc", Options{Strategy: "timestamp"})
	if err != nil {
		t.Fatal(err)
	}
	// 900s in 300s windows.
	if res.Strategy != chunker.StrategyTimestamp || res.Chunks != 3 {
		t.Errorf("strategy = %s with %d chunks, want timestamp with 3", res.Strategy, res.Chunks)
	}

	_, err = p.Process(context.Background(), "ccccccccccc", Options{Strategy: "semantic"})
	if !errors.Is(err, chunker.ErrSemanticUnavailable) {
		t.Errorf("semantic without embedder: got %v", err)
	}

	_, err = p.Process(context.Background(), "ccccccccccc", Options{Strategy: "fancy"})
	if err == nil {
		t.Error("unknown strategy should fail")
	}
}

func TestProcessCustomPromptAndOutputFile(t *testing.T) {
	provider := &recordingProvider{}
	p := newTestPipeline(t, provider, video("ddddddddddd", 60, 2))

	out := filepath.Join(t.TempDir(), "notes", "mine.md")
	res, err := p.Process(context.Background(), "ddddddddddd", Options{
		CustomPrompt: "Just say hi.",
		Output:       out,
		Format:       "concise",
	})
	if err != nil {
		t.Fatal(err)
	}
	if provider.prompts[0] != "Just say hi." {
		t.Errorf("custom prompt not used: %q", provider.prompts[0])
	}
	if res.SummaryLocation != out {
		t.Errorf("summary written to %q, want %q", res.SummaryLocation, out)
	}
	if strings.Contains(res.Markdown, "## Detailed Summary") {
		t.Error("concise summary should not have a detailed section")
	}
}

func TestProcessErrors(t *testing.T) {
	p := newTestPipeline(t, &recordingProvider{})

	_, err := p.Process(context.Background(), "not a url", Options{})
	var invalid *transcript.InvalidURLError
	if !errors.As(err, &invalid) {
		t.Errorf("want InvalidURLError, got %v", err)
	}

	_, err = p.Process(context.Background(), "eeeeeeeeeee", Options{})
	var unavailable *transcript.UnavailableError
	if !errors.As(err, &unavailable) || unavailable.VideoID != "eeeeeeeeeee" {
		t.Errorf("want UnavailableError for eeeeeeeeeee, got %v", err)
	}

	_, err = p.Process(context.Background(), "eeeeeeeeeee", Options{Format: "haiku"})
	if err == nil {
		t.Error("unknown format should fail")
	}
}

func TestProcessBatchIsolatesFailures(t *testing.T) {
	provider := &recordingProvider{}
	p := newTestPipeline(t, provider, video("fffffffffff", 60, 2), video("ggggggggggg", 60, 2))

	results := p.ProcessBatch(context.Background(), []string{"fffffffffff", "bad input", "ggggggggggg"}, Options{})
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("valid videos failed: %v, %v", results[0].Err, results[2].Err)
	}
	if results[1].Err == nil {
		t.Error("invalid input should fail")
	}
	if Failed(results) != 1 {
		t.Errorf("Failed = %d, want 1", Failed(results))
	}
}

func TestProcessBatchCancelled(t *testing.T) {
	p := newTestPipeline(t, &recordingProvider{}, video("fffffffffff", 60, 2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := p.ProcessBatch(ctx, []string{"fffffffffff", "fffffffffff"}, Options{})
	for _, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("%s: got %v, want context.Canceled", r.Input, r.Err)
		}
	}
}

func TestReadURLList(t *testing.T) {
	input := "# weekly\nhttps://youtu.be/aaaaaaaaaaa\n\n  bbbbbbbbbbb  \n#skip\n"
	got, err := ReadURLList(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"https://youtu.be/aaaaaaaaaaa", "bbbbbbbbbbb"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("ReadURLList = %v, want %v", got, want)
	}
}

func TestNewPipeline(t *testing.T) {
	cfg := config.DefaultConfig()
	if _, err := NewPipeline(cfg, "", nil); err == nil {
		t.Error("missing API key should fail")
	}

	cfg.LLM.APIKey = "sk-test"
	p, err := NewPipeline(cfg, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.SemanticAvailable() {
		t.Error("semantic chunking should be unavailable without an embedding key")
	}
	if p.summarizer.Provider().Name() != config.ProviderAnthropic {
		t.Errorf("provider = %s", p.summarizer.Provider().Name())
	}

	cfg.Embedding.APIKey = "sk-embed"
	p, err = NewPipeline(cfg, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !p.SemanticAvailable() {
		t.Error("semantic chunking should be available with an embedding key")
	}
}

func TestSummaryTarget(t *testing.T) {
	p := newTestPipeline(t, &recordingProvider{})
	md := transcript.Metadata{VideoID: "hhhhhhhhhhh", Title: "T"}

	tests := []struct {
		out  string
		want string
	}{
		{"", filepath.Join(p.config.OutputDir, "T_hhhhhhhhhhh.md")},
		{"x/out.MD", "x/out.MD"},
		{"dir", filepath.Join("dir", "T_hhhhhhhhhhh.md")},
	}
	for _, tt := range tests {
		if got := p.SummaryTarget(tt.out, md); got != tt.want {
			t.Errorf("SummaryTarget(%q) = %q, want %q", tt.out, got, tt.want)
		}
	}
}

func TestChunkingPipeline(t *testing.T) {
	cfg := config.DefaultConfig()
	p := NewChunkingPipeline(cfg, "", nil)

	if _, err := p.Process(context.Background(), "aaaaaaaaaaa", Options{}); !errors.Is(err, ErrNoSummarizer) {
		t.Errorf("Process without LLM: got %v", err)
	}

	strategy, chunks, err := p.Chunk(context.Background(), video("aaaaaaaaaaa", 900, 30), "timestamp")
	if err != nil {
		t.Fatal(err)
	}
	if strategy != chunker.StrategyTimestamp || len(chunks) != 3 {
		t.Errorf("got %s with %d chunks", strategy, len(chunks))
	}
}

func TestProcessBatchStagePrefix(t *testing.T) {
	p := newTestPipeline(t, &recordingProvider{}, video("fffffffffff", 60, 2), video("ggggggggggg", 60, 2))
	var stages []string
	p.OnStage = func(s string) { stages = append(stages, s) }

	p.ProcessBatch(context.Background(), []string{"fffffffffff", "ggggggggggg"}, Options{})

	var sawFirst, sawSecond bool
	for _, s := range stages {
		sawFirst = sawFirst || s == "[1/2] Fetching transcript for fffffffffff"
		sawSecond = sawSecond || s == "[2/2] Fetching transcript for ggggggggggg"
	}
	if !sawFirst || !sawSecond {
		t.Errorf("stages = %v", stages)
	}
}
