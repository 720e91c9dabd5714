package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gnkm/mdstruct/internal/document"
	"github.com/gnkm/mdstruct/internal/ingest"
	"github.com/gnkm/mdstruct/internal/llm"
)

// Process drives a single generation job to completion. Each attempt invokes
// the model and validates its output; invalid output is never repaired, the
// model is simply asked again up to the attempt limit.
func (o *Orchestrator) Process(ctx context.Context, job *Job) {
	logger := slog.With("job_id", job.ID, "backend", job.Backend, "model", job.Model)

	backend, ok := o.backends[job.Backend]
	if !ok {
		job.AddError(fmt.Sprintf("unknown backend %q", job.Backend))
		job.SetStatus(StatusFailed, "no such backend")
		return
	}

	system, user, temperature := job.Request()
	req := llm.Request{
		System:      system,
		User:        user,
		Model:       job.Model,
		Temperature: temperature,
		MaxTokens:   o.maxTokens,
	}

	for {
		attempt := job.IncrAttempts()
		job.SetStatus(StatusGenerating, fmt.Sprintf("attempt %d/%d", attempt, job.Progress.MaxAttempts))

		start := time.Now()
		res, err := backend.Generate(ctx, req)
		elapsed := time.Since(start)

		if err != nil {
			job.AddError(err.Error())
			if ctx.Err() != nil {
				job.SetStatus(StatusFailed, "canceled")
				return
			}
			if !IsTransient(err) {
				job.SetStatus(StatusFailed, "provider error")
				logger.Error("generation failed", "error", err)
				return
			}
			if attempt >= job.Progress.MaxAttempts {
				job.SetStatus(StatusFailed, "attempt limit reached")
				logger.Error("generation exhausted attempts", "attempts", attempt)
				return
			}
			pause := Backoff(attempt-1, err)
			logger.Warn("provider busy, backing off", "pause", pause, "error", err)
			select {
			case <-time.After(pause):
			case <-ctx.Done():
				job.SetStatus(StatusFailed, "canceled")
				return
			}
			continue
		}

		o.stats.Record(elapsed)

		job.SetStatus(StatusValidating, "checking model output")
		doc, err := o.pipe.Run(res.Text)
		if err != nil {
			job.AddError(describeInvalid(err, res.Text))
			logger.Warn("model output rejected", "attempt", attempt, "error", err)
			if attempt >= job.Progress.MaxAttempts {
				job.SetStatus(StatusFailed, "attempt limit reached")
				logger.Error("generation exhausted attempts", "attempts", attempt)
				return
			}
			continue
		}

		canonical, err := document.Marshal(doc)
		if err != nil {
			job.AddError(err.Error())
			job.SetStatus(StatusFailed, "serialization error")
			return
		}

		job.SetResult(string(canonical), document.Summarize(doc), res.Structured)
		job.SetStatus(StatusCompleted, "")
		logger.Info("generation completed", "attempts", attempt,
			"latency_ms", elapsed.Milliseconds(), "structured", res.Structured)
		return
	}
}

// describeInvalid renders a rejection with enough detail to diagnose it
// later: the failure kind, every violation, and the raw model text.
func describeInvalid(err error, raw string) string {
	kind, ok := ingest.Classify(err)
	if !ok {
		return err.Error()
	}
	return fmt.Sprintf("%s: %v\nraw output:\n%s", kind, err, raw)
}
