package server

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/guiyumin/vsum/internal/core/ai"
)

// JobStatus represents the current state of a summary job
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

func (s JobStatus) finished() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// JobRequest is what a client asks to be summarized.
type JobRequest struct {
	URL            string `json:"url" binding:"required"`
	Format         string `json:"format,omitempty"`
	Chunking       string `json:"chunking,omitempty"`
	Prompt         string `json:"prompt,omitempty"`
	SaveTranscript bool   `json:"save_transcript,omitempty"`
}

// Job represents a summary job
type Job struct {
	ID       string     `json:"id"`
	Request  JobRequest `json:"request"`
	Status   JobStatus  `json:"status"`
	Stage    string     `json:"stage,omitempty"`
	Error    string     `json:"error,omitempty"`
	VideoID  string     `json:"video_id,omitempty"`
	Title    string     `json:"title,omitempty"`
	Strategy string     `json:"chunking_strategy,omitempty"`
	Chunks   int        `json:"chunks,omitempty"`
	Location string     `json:"location,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	markdown string
	cancel   context.CancelFunc
	ctx      context.Context
}

// Markdown returns the rendered summary of a completed job.
func (j *Job) Markdown() string {
	return j.markdown
}

// ProcessFunc summarizes one request. stage reports progress text.
type ProcessFunc func(ctx context.Context, req JobRequest, stage func(string)) (*ai.Result, error)

// PipelineProcess runs jobs through p. The queue runs one job at a time, so
// OnStage can be swapped per job.
func PipelineProcess(p *ai.Pipeline) ProcessFunc {
	return func(ctx context.Context, req JobRequest, stage func(string)) (*ai.Result, error) {
		p.OnStage = stage
		defer func() { p.OnStage = nil }()
		return p.Process(ctx, req.URL, ai.Options{
			Format:         req.Format,
			Strategy:       req.Chunking,
			CustomPrompt:   req.Prompt,
			SaveTranscript: req.SaveTranscript,
		})
	}
}

// JobQueue runs summary jobs one at a time, in submission order.
type JobQueue struct {
	jobs          map[string]*Job
	mu            sync.RWMutex
	queue         chan *Job
	maxJobs       int
	processFn     ProcessFunc
	wg            sync.WaitGroup
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	now           func() time.Time
}

// NewJobQueue creates a queue keeping at most maxJobs finished jobs.
func NewJobQueue(maxJobs int, processFn ProcessFunc) *JobQueue {
	if maxJobs <= 0 {
		maxJobs = 100
	}

	return &JobQueue{
		jobs:        make(map[string]*Job),
		queue:       make(chan *Job, 100),
		maxJobs:     maxJobs,
		processFn:   processFn,
		stopCleanup: make(chan struct{}),
		now:         time.Now,
	}
}

// Start begins the worker and cleanup routine
func (jq *JobQueue) Start() {
	jq.wg.Add(1)
	go jq.worker()

	// Every 10 minutes, remove finished jobs older than 1 hour
	jq.cleanupTicker = time.NewTicker(10 * time.Minute)
	go jq.cleanupLoop()
}

// Stop gracefully shuts down the job queue
func (jq *JobQueue) Stop() {
	close(jq.queue)
	close(jq.stopCleanup)
	if jq.cleanupTicker != nil {
		jq.cleanupTicker.Stop()
	}
	jq.wg.Wait()
}

func (jq *JobQueue) worker() {
	defer jq.wg.Done()

	for job := range jq.queue {
		if job.ctx.Err() != nil {
			continue
		}
		jq.processJob(job)
	}
}

func (jq *JobQueue) processJob(job *Job) {
	defer job.cancel()
	jq.update(job.ID, func(j *Job) { j.Status = JobStatusRunning })

	stage := func(s string) {
		jq.update(job.ID, func(j *Job) { j.Stage = s })
	}

	result, err := jq.processFn(job.ctx, job.Request, stage)
	if err != nil {
		jq.update(job.ID, func(j *Job) {
			if job.ctx.Err() == context.Canceled {
				j.Status = JobStatusCancelled
				j.Error = "cancelled by user"
				return
			}
			j.Status = JobStatusFailed
			j.Error = err.Error()
		})
		return
	}

	jq.update(job.ID, func(j *Job) {
		j.Status = JobStatusCompleted
		j.Stage = ""
		j.VideoID = result.VideoID
		j.Strategy = string(result.Strategy)
		j.Chunks = result.Chunks
		j.Location = result.SummaryLocation
		j.markdown = result.Markdown
		if result.Transcript != nil {
			j.Title = result.Transcript.Metadata.Title
		}
	})
}

func (jq *JobQueue) cleanupLoop() {
	for {
		select {
		case <-jq.cleanupTicker.C:
			jq.cleanupOldJobs(time.Hour)
		case <-jq.stopCleanup:
			return
		}
	}
}

func (jq *JobQueue) cleanupOldJobs(maxAge time.Duration) {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	cutoff := jq.now().Add(-maxAge)
	for id, job := range jq.jobs {
		if job.Status.finished() && job.UpdatedAt.Before(cutoff) {
			delete(jq.jobs, id)
		}
	}
}

// trimFinished drops the oldest finished jobs beyond maxJobs. Caller holds mu.
func (jq *JobQueue) trimFinished() {
	var finished []*Job
	for _, job := range jq.jobs {
		if job.Status.finished() {
			finished = append(finished, job)
		}
	}
	if len(finished) <= jq.maxJobs {
		return
	}

	sort.Slice(finished, func(i, j int) bool {
		return finished[i].UpdatedAt.Before(finished[j].UpdatedAt)
	})
	for _, job := range finished[:len(finished)-jq.maxJobs] {
		delete(jq.jobs, job.ID)
	}
}

// AddJob creates and queues a new summary job
func (jq *JobQueue) AddJob(req JobRequest) (*Job, error) {
	ctx, cancel := context.WithCancel(context.Background())
	now := jq.now()

	job := &Job{
		ID:        uuid.NewString(),
		Request:   req,
		Status:    JobStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
		ctx:       ctx,
		cancel:    cancel,
	}

	jq.mu.Lock()
	jq.trimFinished()
	jq.jobs[job.ID] = job
	jq.mu.Unlock()

	select {
	case jq.queue <- job:
		jobCopy := *job
		return &jobCopy, nil
	default:
		jq.mu.Lock()
		delete(jq.jobs, job.ID)
		jq.mu.Unlock()
		cancel()
		return nil, fmt.Errorf("job queue is full")
	}
}

// GetJob returns a copy of the job with id, or nil.
func (jq *JobQueue) GetJob(id string) *Job {
	jq.mu.RLock()
	defer jq.mu.RUnlock()

	if job, ok := jq.jobs[id]; ok {
		jobCopy := *job
		return &jobCopy
	}
	return nil
}

// GetAllJobs returns copies of all jobs, oldest first.
func (jq *JobQueue) GetAllJobs() []*Job {
	jq.mu.RLock()
	defer jq.mu.RUnlock()

	jobs := make([]*Job, 0, len(jq.jobs))
	for _, job := range jq.jobs {
		jobCopy := *job
		jobs = append(jobs, &jobCopy)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})
	return jobs
}

// CancelJob cancels a queued or running job.
func (jq *JobQueue) CancelJob(id string) bool {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	job, ok := jq.jobs[id]
	if !ok || job.Status.finished() {
		return false
	}

	job.cancel()
	job.Status = JobStatusCancelled
	job.UpdatedAt = jq.now()
	return true
}

// RemoveJob removes a finished job by ID
func (jq *JobQueue) RemoveJob(id string) bool {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	job, ok := jq.jobs[id]
	if !ok || !job.Status.finished() {
		return false
	}

	delete(jq.jobs, id)
	return true
}

func (jq *JobQueue) update(id string, fn func(*Job)) {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	if job, ok := jq.jobs[id]; ok {
		// A cancelled job keeps its status.
		if job.Status == JobStatusCancelled {
			return
		}
		fn(job)
		job.UpdatedAt = jq.now()
	}
}
