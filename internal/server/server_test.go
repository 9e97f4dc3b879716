package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guiyumin/vsum/internal/core/ai"
	"github.com/guiyumin/vsum/internal/core/ai/chunker"
	"github.com/guiyumin/vsum/internal/core/config"
	"github.com/guiyumin/vsum/internal/core/transcript"
)

type apiResponse struct {
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func newTestServer(t *testing.T, apiKey string, process ProcessFunc) (*Server, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.DefaultConfig()
	cfg.Server.APIKey = apiKey
	s := New(cfg, process, nil)
	s.jobQueue.Start()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.jobQueue.Stop()
	})
	return s, ts
}

func succeed(_ context.Context, req JobRequest, stage func(string)) (*ai.Result, error) {
	stage("Summarizing")
	id, _ := transcript.ExtractVideoID(req.URL)
	return &ai.Result{
		VideoID:         id,
		Transcript:      &transcript.Transcript{Metadata: transcript.Metadata{VideoID: id, Title: "A Talk"}},
		Strategy:        chunker.StrategyNone,
		Chunks:          1,
		Markdown:        "# Video Summary: A Talk",
		SummaryLocation: "summaries/A-Talk_" + id + ".md",
	}, nil
}

func do(t *testing.T, method, url, apiKey string, body interface{}) (*http.Response, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out apiResponse
	if resp.Header.Get("Content-Type") == "application/json; charset=utf-8" {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatal(err)
		}
	}
	return resp, out
}

func waitForStatus(t *testing.T, jq *JobQueue, id string, want JobStatus) *Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if job := jq.GetJob(id); job != nil && job.Status == want {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached %s (last: %+v)", id, want, jq.GetJob(id))
	return nil
}

func createJob(t *testing.T, baseURL, apiKey string, req JobRequest) Job {
	t.Helper()
	resp, out := do(t, http.MethodPost, baseURL+"/api/summaries", apiKey, req)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("create: status %d: %s", resp.StatusCode, out.Message)
	}
	var job Job
	if err := json.Unmarshal(out.Data, &job); err != nil {
		t.Fatal(err)
	}
	if job.ID == "" || job.Status != JobStatusQueued {
		t.Fatalf("unexpected job: %+v", job)
	}
	return job
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, "secret", succeed)

	resp, out := do(t, http.MethodGet, ts.URL+"/api/health", "", nil)
	if resp.StatusCode != http.StatusOK || out.Code != 200 {
		t.Errorf("health: status %d code %d", resp.StatusCode, out.Code)
	}
}

func TestAuth(t *testing.T) {
	_, ts := newTestServer(t, "secret", succeed)

	tests := []struct {
		name string
		key  string
		want int
	}{
		{"missing key", "", http.StatusUnauthorized},
		{"wrong key", "nope", http.StatusUnauthorized},
		{"right key", "secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := do(t, http.MethodGet, ts.URL+"/api/summaries", tt.key, nil)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestCreateValidation(t *testing.T) {
	_, ts := newTestServer(t, "", succeed)

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing url", map[string]string{}},
		{"invalid url", JobRequest{URL: "https://example.com/video"}},
		{"playlist", JobRequest{URL: "https://www.youtube.com/playlist?list=PL123"}},
		{"bad format", JobRequest{URL: "dQw4w9WgXcQ", Format: "poem"}},
		{"bad chunking", JobRequest{URL: "dQw4w9WgXcQ", Chunking: "random"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := do(t, http.MethodPost, ts.URL+"/api/summaries", "", tt.body)
			if resp.StatusCode != http.StatusBadRequest || out.Code != 400 {
				t.Errorf("status %d code %d, want 400", resp.StatusCode, out.Code)
			}
		})
	}
}

func TestSummaryLifecycle(t *testing.T) {
	s, ts := newTestServer(t, "", succeed)

	job := createJob(t, ts.URL, "", JobRequest{URL: "https://youtu.be/dQw4w9WgXcQ", Format: "concise"})
	done := waitForStatus(t, s.jobQueue, job.ID, JobStatusCompleted)
	if done.VideoID != "dQw4w9WgXcQ" || done.Title != "A Talk" || done.Strategy != "none" || done.Chunks != 1 {
		t.Errorf("completed job = %+v", done)
	}

	resp, out := do(t, http.MethodGet, ts.URL+"/api/summaries/"+job.ID, "", nil)
	if resp.StatusCode != http.StatusOK || out.Message != string(JobStatusCompleted) {
		t.Errorf("get: status %d message %q", resp.StatusCode, out.Message)
	}

	mdResp, err := http.Get(ts.URL + "/api/summaries/" + job.ID + "/markdown")
	if err != nil {
		t.Fatal(err)
	}
	var body bytes.Buffer
	body.ReadFrom(mdResp.Body)
	mdResp.Body.Close()
	if mdResp.StatusCode != http.StatusOK || body.String() != "# Video Summary: A Talk" {
		t.Errorf("markdown: status %d body %q", mdResp.StatusCode, body.String())
	}

	_, out = do(t, http.MethodGet, ts.URL+"/api/summaries", "", nil)
	var jobs []Job
	if err := json.Unmarshal(out.Data, &jobs); err != nil || len(jobs) != 1 {
		t.Errorf("list = %s (%v)", out.Data, err)
	}

	resp, _ = do(t, http.MethodDelete, ts.URL+"/api/summaries/"+job.ID, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete: status %d", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodGet, ts.URL+"/api/summaries/"+job.ID, "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete: status %d", resp.StatusCode)
	}
}

func TestFailedJob(t *testing.T) {
	fail := func(context.Context, JobRequest, func(string)) (*ai.Result, error) {
		return nil, errors.New("transcript unavailable for dQw4w9WgXcQ")
	}
	s, ts := newTestServer(t, "", fail)

	job := createJob(t, ts.URL, "", JobRequest{URL: "dQw4w9WgXcQ"})
	failed := waitForStatus(t, s.jobQueue, job.ID, JobStatusFailed)
	if failed.Error != "transcript unavailable for dQw4w9WgXcQ" {
		t.Errorf("error = %q", failed.Error)
	}

	resp, _ := do(t, http.MethodGet, ts.URL+"/api/summaries/"+job.ID+"/markdown", "", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("markdown of failed job: status %d, want 409", resp.StatusCode)
	}
}

func TestProcessJobReleasesContext(t *testing.T) {
	fail := func(context.Context, JobRequest, func(string)) (*ai.Result, error) {
		return nil, errors.New("rate limited")
	}
	tests := []struct {
		name    string
		process ProcessFunc
		want    JobStatus
	}{
		{"completed", succeed, JobStatusCompleted},
		{"failed", fail, JobStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jq := NewJobQueue(10, tt.process)
			job, err := jq.AddJob(JobRequest{URL: "dQw4w9WgXcQ"})
			if err != nil {
				t.Fatal(err)
			}

			jq.processJob(job)

			if got := jq.GetJob(job.ID).Status; got != tt.want {
				t.Errorf("status = %s, want %s", got, tt.want)
			}
			if job.ctx.Err() == nil {
				t.Error("job context still live after processing")
			}
		})
	}
}

func TestCancelRunningJob(t *testing.T) {
	started := make(chan struct{})
	block := func(ctx context.Context, _ JobRequest, _ func(string)) (*ai.Result, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	s, ts := newTestServer(t, "", block)

	job := createJob(t, ts.URL, "", JobRequest{URL: "dQw4w9WgXcQ"})
	<-started

	resp, _ := do(t, http.MethodGet, ts.URL+"/api/summaries/"+job.ID+"/markdown", "", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("markdown while running: status %d, want 409", resp.StatusCode)
	}

	resp, out := do(t, http.MethodDelete, ts.URL+"/api/summaries/"+job.ID, "", nil)
	if resp.StatusCode != http.StatusOK || out.Message != "job cancelled" {
		t.Errorf("cancel: status %d message %q", resp.StatusCode, out.Message)
	}
	waitForStatus(t, s.jobQueue, job.ID, JobStatusCancelled)
}

func TestJobsRunSequentially(t *testing.T) {
	var active, peak int
	process := func(ctx context.Context, req JobRequest, stage func(string)) (*ai.Result, error) {
		active++
		if active > peak {
			peak = active
		}
		time.Sleep(5 * time.Millisecond)
		active--
		return succeed(ctx, req, stage)
	}
	s, ts := newTestServer(t, "", process)

	var ids []string
	for i := 0; i < 3; i++ {
		ids = append(ids, createJob(t, ts.URL, "", JobRequest{URL: "dQw4w9WgXcQ"}).ID)
	}
	for _, id := range ids {
		waitForStatus(t, s.jobQueue, id, JobStatusCompleted)
	}
	if peak != 1 {
		t.Errorf("peak concurrency = %d, want 1", peak)
	}
}

func TestTrimFinished(t *testing.T) {
	jq := NewJobQueue(2, succeed)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, status := range []JobStatus{JobStatusCompleted, JobStatusFailed, JobStatusCompleted, JobStatusQueued} {
		id := string(rune('a' + i))
		jq.jobs[id] = &Job{ID: id, Status: status, UpdatedAt: base.Add(time.Duration(i) * time.Minute)}
	}

	jq.trimFinished()

	if jq.GetJob("a") != nil {
		t.Error("oldest finished job should be dropped")
	}
	for _, id := range []string{"b", "c", "d"} {
		if jq.GetJob(id) == nil {
			t.Errorf("job %s should be kept", id)
		}
	}
}

func TestCleanupOldJobs(t *testing.T) {
	jq := NewJobQueue(10, succeed)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	jq.now = func() time.Time { return now }
	jq.jobs["old"] = &Job{ID: "old", Status: JobStatusCompleted, UpdatedAt: now.Add(-2 * time.Hour)}
	jq.jobs["stuck"] = &Job{ID: "stuck", Status: JobStatusRunning, UpdatedAt: now.Add(-2 * time.Hour)}
	jq.jobs["fresh"] = &Job{ID: "fresh", Status: JobStatusFailed, UpdatedAt: now.Add(-time.Minute)}

	jq.cleanupOldJobs(time.Hour)

	if jq.GetJob("old") != nil {
		t.Error("old finished job should be removed")
	}
	if jq.GetJob("stuck") == nil || jq.GetJob("fresh") == nil {
		t.Error("running and fresh jobs should be kept")
	}
}
