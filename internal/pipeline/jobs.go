package pipeline

import (
	"sync"
	"time"

	"github.com/jmertens/pmcminer/internal/article"
)

// JobStatus represents the state of a mining job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusFetching   JobStatus = "fetching"
	StatusParsing    JobStatus = "parsing"
	StatusSegmenting JobStatus = "segmenting"
	StatusAnnotating JobStatus = "annotating"
	StatusScoring    JobStatus = "scoring"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusPartial    JobStatus = "partial"
)

// ScoredSentence pairs one sentence record with its demographic scores.
type ScoredSentence struct {
	Scope         string            `json:"scope"` // "abstract" or "body"
	Sentence      *article.Sentence `json:"sentence"`
	Score         int               `json:"score"`
	WeightedScore float64           `json:"weighted_score"`
}

// Job tracks the state of a single article mining run.
type Job struct {
	mu sync.Mutex

	ID       string `json:"job_id"`
	PMCID    string `json:"pmc_id,omitempty"`
	Filename string `json:"filename,omitempty"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	data    []byte
	html    bool
	results []ScoredSentence
	errors  []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalSentences int      `json:"total_sentences"`
	Annotated      int      `json:"annotated"`
	Scored         int      `json:"scored"`
	Errors         []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes jobs idle for longer than the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records a processing error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// IncrAnnotated atomically bumps the annotated-sentence count.
func (j *Job) IncrAnnotated() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Annotated++
	j.UpdatedAt = time.Now()
}

// SetTotalSentences records the number of sentences found in the article.
func (j *Job) SetTotalSentences(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalSentences = n
	j.UpdatedAt = time.Now()
}

// SetData sets the raw document bytes; html marks an HTML rendering
// rather than NXML.
func (j *Job) SetData(data []byte, html bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.data = data
	j.html = html
}

// Data returns the raw document bytes and whether they are HTML.
func (j *Job) Data() ([]byte, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.data, j.html
}

// SetResults records the scored sentences for a completed run.
func (j *Job) SetResults(results []ScoredSentence) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results = results
	j.Progress.Scored = len(results)
	j.UpdatedAt = time.Now()
}

// Results returns the scored sentences, best first.
func (j *Job) Results() []ScoredSentence {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]ScoredSentence, len(j.results))
	copy(out, j.results)
	return out
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	PMCID    string    `json:"pmc_id,omitempty"`
	Filename string    `json:"filename,omitempty"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:       j.ID,
		PMCID:    j.PMCID,
		Filename: j.Filename,
		Status:   j.Status,
		Phase:    j.Phase,
		Progress: Progress{
			TotalSentences: j.Progress.TotalSentences,
			Annotated:      j.Progress.Annotated,
			Scored:         j.Progress.Scored,
			Errors:         errs,
		},
	}
}
