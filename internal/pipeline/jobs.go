package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/gnkm/mdstruct/internal/document"
)

// JobStatus represents the state of a generation job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusGenerating JobStatus = "generating"
	StatusValidating JobStatus = "validating"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks one LLM generation through validation to a canonical document.
type Job struct {
	mu sync.Mutex

	ID      string `json:"job_id"`
	Backend string `json:"backend"`
	Model   string `json:"model"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	system      string
	user        string
	temperature float64

	canonical  string
	stats      document.Stats
	structured bool
	errors     []string
}

// Progress tracks generation attempts and their diagnostics.
type Progress struct {
	Attempts    int      `json:"attempts"`
	MaxAttempts int      `json:"max_attempts"`
	Errors      []string `json:"errors"`
}

// NewJob creates a queued generation job.
func NewJob(backend, model, system, user string, temperature float64, maxAttempts int) *Job {
	now := time.Now()
	return &Job{
		ID:          NewJobID(backend + "\x00" + user),
		Backend:     backend,
		Model:       model,
		Status:      StatusQueued,
		Phase:       "queued",
		Progress:    Progress{MaxAttempts: maxAttempts},
		CreatedAt:   now,
		UpdatedAt:   now,
		system:      system,
		user:        user,
		temperature: temperature,
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

// AddError records one attempt's full diagnostic. Diagnostics are never
// truncated: the offending LLM output is the evidence an operator needs.
func (j *Job) AddError(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, msg)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// IncrAttempts bumps the attempt counter and returns the new value.
func (j *Job) IncrAttempts() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Attempts++
	j.UpdatedAt = time.Now()
	return j.Progress.Attempts
}

// SetResult records the canonical document produced by a successful run.
func (j *Job) SetResult(canonical string, stats document.Stats, structured bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.canonical = canonical
	j.stats = stats
	j.structured = structured
	j.UpdatedAt = time.Now()
}

// touchedAt reads the last-update time under the job lock. Workers update
// the timestamp concurrently with store sweeps.
func (j *Job) touchedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// Request returns the prompt data for this job.
func (j *Job) Request() (system, user string, temperature float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.system, j.user, j.temperature
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID         string         `json:"job_id"`
	Backend    string         `json:"backend"`
	Model      string         `json:"model"`
	Status     JobStatus      `json:"status"`
	Phase      string         `json:"phase"`
	Progress   Progress       `json:"progress"`
	Canonical  string         `json:"-"`
	Stats      document.Stats `json:"stats"`
	Structured bool           `json:"structured"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.errors))
	copy(errs, j.errors)
	return JobSnapshot{
		ID:      j.ID,
		Backend: j.Backend,
		Model:   j.Model,
		Status:  j.Status,
		Phase:   j.Phase,
		Progress: Progress{
			Attempts:    j.Progress.Attempts,
			MaxAttempts: j.Progress.MaxAttempts,
			Errors:      errs,
		},
		Canonical:  j.canonical,
		Stats:      j.stats,
		Structured: j.structured,
	}
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

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.touchedAt()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// NewJobID derives a short unique job ID from a seed and the current time.
func NewJobID(seed string) string {
	h := sha256.Sum256(fmt.Appendf(nil, "%s-%d", seed, time.Now().UnixNano()))
	return fmt.Sprintf("%x", h[:])[:20]
}
