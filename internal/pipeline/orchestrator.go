package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gnkm/mdstruct/internal/config"
	"github.com/gnkm/mdstruct/internal/document"
	"github.com/gnkm/mdstruct/internal/ingest"
	"github.com/gnkm/mdstruct/internal/llm"
)

// Orchestrator owns the generation job queue, the worker pool, and the
// backends the workers invoke.
type Orchestrator struct {
	backends    map[string]llm.Backend
	pipe        *ingest.Pipeline
	store       *JobStore
	stats       *llm.Stats
	queue       chan *Job
	maxTokens   int
	maxAttempts int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(cfg *config.Config, backends map[string]llm.Backend) *Orchestrator {
	return &Orchestrator{
		backends:    backends,
		pipe:        ingest.New(document.Options{CheckLevelRange: cfg.CheckLevelRange}),
		store:       NewJobStore(cfg.JobTTL),
		stats:       llm.NewStats(time.Hour),
		queue:       make(chan *Job, cfg.MaxQueueSize),
		maxTokens:   cfg.MaxTokens,
		maxAttempts: cfg.MaxAttempts,
	}
}

// Start launches the worker pool and the expiry sweeper.
func (o *Orchestrator) Start(workers int) {
	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel

	for i := 0; i < workers; i++ {
		o.wg.Add(1)
		go o.worker(ctx, i)
	}

	o.wg.Add(1)
	go o.sweeper(ctx)

	slog.Info("orchestrator started", "workers", workers, "queue_capacity", cap(o.queue))
}

// Stop signals workers to finish and waits for them.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
	for _, b := range o.backends {
		b.Close()
	}
	slog.Info("orchestrator stopped")
}

func (o *Orchestrator) worker(ctx context.Context, id int) {
	defer o.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-o.queue:
			slog.Debug("worker picked up job", "worker", id, "job_id", job.ID)
			o.Process(ctx, job)
		}
	}
}

func (o *Orchestrator) sweeper(ctx context.Context) {
	defer o.wg.Done()
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.store.Cleanup()
		}
	}
}

// Submit creates a job for the given request and enqueues it. It fails
// immediately when the queue is full rather than blocking the caller.
func (o *Orchestrator) Submit(backendName, model, system, user string, temperature float64) (*Job, error) {
	if _, ok := o.backends[backendName]; !ok {
		return nil, fmt.Errorf("unknown backend %q (have %v)", backendName, llm.Providers())
	}

	job := NewJob(backendName, model, system, user, temperature, o.maxAttempts)
	o.store.Put(job)

	select {
	case o.queue <- job:
		slog.Info("job queued", "job_id", job.ID, "backend", backendName, "queue_depth", len(o.queue))
		return job, nil
	default:
		job.SetStatus(StatusFailed, "queue full")
		return nil, fmt.Errorf("queue full (%d jobs pending)", cap(o.queue))
	}
}

func (o *Orchestrator) GetJob(id string) *Job {
	return o.store.Get(id)
}

func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Validate runs already-generated text through the same strip, parse, and
// decode stages the workers use.
func (o *Orchestrator) Validate(text string) (*document.Document, error) {
	return o.pipe.Run(text)
}

// LLMStats reports latency figures for recent model invocations.
func (o *Orchestrator) LLMStats() llm.StatsSnapshot {
	return o.stats.Snapshot()
}
