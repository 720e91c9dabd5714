package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gnkm/mdstruct/internal/config"
	"github.com/gnkm/mdstruct/internal/llm"
)

// fakeBackend returns scripted responses in order, one per Generate call.
type fakeBackend struct {
	responses []fakeResponse
	calls     int
}

type fakeResponse struct {
	text string
	err  error
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Generate(ctx context.Context, req llm.Request) (*llm.Result, error) {
	if f.calls >= len(f.responses) {
		return nil, errors.New("no scripted response left")
	}
	r := f.responses[f.calls]
	f.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &llm.Result{Text: r.text, Model: req.Model}, nil
}

func (f *fakeBackend) Close() {}

const validPayload = `{"contents": [{"content": "序文です。"}, {"level": 1, "text": "導入", "children": []}]}`

func testOrchestrator(t *testing.T, fake *fakeBackend) *Orchestrator {
	t.Helper()
	cfg := &config.Config{
		MaxTokens:    1024,
		MaxAttempts:  3,
		MaxQueueSize: 4,
		JobTTL:       time.Hour,
	}
	return New(cfg, map[string]llm.Backend{"fake": fake})
}

func TestProcessSuccess(t *testing.T) {
	fake := &fakeBackend{responses: []fakeResponse{
		{text: "```json\n" + validPayload + "\n```"},
	}}
	o := testOrchestrator(t, fake)

	job := NewJob("fake", "test-model", "sys", "user", 0.2, 3)
	o.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("status = %s, want %s (errors: %v)", snap.Status, StatusCompleted, snap.Progress.Errors)
	}
	if !strings.Contains(snap.Canonical, `"導入"`) {
		t.Errorf("canonical output missing heading text:\n%s", snap.Canonical)
	}
	if snap.Stats.Headings != 1 || snap.Stats.Contents != 1 {
		t.Errorf("stats = %+v, want 1 heading and 1 content", snap.Stats)
	}
	if snap.Progress.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", snap.Progress.Attempts)
	}
}

func TestProcessRetriesInvalidOutput(t *testing.T) {
	fake := &fakeBackend{responses: []fakeResponse{
		{text: "sorry, I cannot produce JSON"},
		{text: `{"contents": [{"level": "one", "text": "x", "children": []}]}`},
		{text: validPayload},
	}}
	o := testOrchestrator(t, fake)

	job := NewJob("fake", "test-model", "sys", "user", 0.2, 3)
	o.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("status = %s, want %s", snap.Status, StatusCompleted)
	}
	if fake.calls != 3 {
		t.Errorf("backend calls = %d, want 3", fake.calls)
	}
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("recorded errors = %d, want 2: %v", len(snap.Progress.Errors), snap.Progress.Errors)
	}
	if !strings.Contains(snap.Progress.Errors[0], "malformed_payload") {
		t.Errorf("first error should be malformed_payload: %s", snap.Progress.Errors[0])
	}
	if !strings.Contains(snap.Progress.Errors[0], "sorry, I cannot produce JSON") {
		t.Errorf("first error should retain the raw model text: %s", snap.Progress.Errors[0])
	}
	if !strings.Contains(snap.Progress.Errors[1], "schema_violation") {
		t.Errorf("second error should be schema_violation: %s", snap.Progress.Errors[1])
	}
}

func TestProcessExhaustsAttempts(t *testing.T) {
	fake := &fakeBackend{responses: []fakeResponse{
		{text: "garbage"},
		{text: "garbage"},
		{text: "garbage"},
	}}
	o := testOrchestrator(t, fake)

	job := NewJob("fake", "test-model", "sys", "user", 0.2, 3)
	o.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Fatalf("status = %s, want %s", snap.Status, StatusFailed)
	}
	if fake.calls != 3 {
		t.Errorf("backend calls = %d, want 3", fake.calls)
	}
	if len(snap.Progress.Errors) != 3 {
		t.Errorf("recorded errors = %d, want 3", len(snap.Progress.Errors))
	}
}

func TestProcessTransientThenSuccess(t *testing.T) {
	fake := &fakeBackend{responses: []fakeResponse{
		{err: &llm.RetryableError{Provider: "fake", StatusCode: 429, Message: "rate limited", RetryAfter: time.Millisecond}},
		{text: validPayload},
	}}
	o := testOrchestrator(t, fake)

	job := NewJob("fake", "test-model", "sys", "user", 0.2, 3)
	o.Process(context.Background(), job)

	if snap := job.Snapshot(); snap.Status != StatusCompleted {
		t.Fatalf("status = %s, want %s (errors: %v)", snap.Status, StatusCompleted, snap.Progress.Errors)
	}
}

func TestProcessNonRetryableFailsImmediately(t *testing.T) {
	fake := &fakeBackend{responses: []fakeResponse{
		{err: errors.New("api key invalid")},
	}}
	o := testOrchestrator(t, fake)

	job := NewJob("fake", "test-model", "sys", "user", 0.2, 3)
	o.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Fatalf("status = %s, want %s", snap.Status, StatusFailed)
	}
	if fake.calls != 1 {
		t.Errorf("backend calls = %d, want 1", fake.calls)
	}
}

func TestProcessUnknownBackend(t *testing.T) {
	o := testOrchestrator(t, &fakeBackend{})
	job := NewJob("missing", "m", "sys", "user", 0.2, 3)
	o.Process(context.Background(), job)
	if snap := job.Snapshot(); snap.Status != StatusFailed {
		t.Fatalf("status = %s, want %s", snap.Status, StatusFailed)
	}
}

func TestSubmitQueueFull(t *testing.T) {
	o := testOrchestrator(t, &fakeBackend{})
	// Workers never started, so jobs stay queued.
	for i := 0; i < 4; i++ {
		if _, err := o.Submit("fake", "m", "sys", "user", 0.2); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if _, err := o.Submit("fake", "m", "sys", "user", 0.2); err == nil {
		t.Fatal("expected queue full error")
	}
	if depth := o.QueueDepth(); depth != 4 {
		t.Errorf("queue depth = %d, want 4", depth)
	}
}

func TestSubmitUnknownBackend(t *testing.T) {
	o := testOrchestrator(t, &fakeBackend{})
	if _, err := o.Submit("nope", "m", "sys", "user", 0.2); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestBackoffHonorsRetryAfter(t *testing.T) {
	err := &llm.RetryableError{Provider: "p", StatusCode: 429, Message: "slow down", RetryAfter: 17 * time.Second}
	if got := Backoff(0, err); got != 17*time.Second {
		t.Errorf("Backoff = %v, want 17s", got)
	}
}

func TestBackoffBounds(t *testing.T) {
	for attempt := 0; attempt < 12; attempt++ {
		got := Backoff(attempt, nil)
		if got < time.Second || got >= 45*time.Second {
			t.Errorf("Backoff(%d) = %v, out of range", attempt, got)
		}
	}
}

func TestIsTransient(t *testing.T) {
	retryable := &llm.RetryableError{Provider: "p", StatusCode: 503, Message: "overloaded"}
	if !IsTransient(retryable) {
		t.Error("RetryableError should be transient")
	}
	if IsTransient(errors.New("bad key")) {
		t.Error("plain error should not be transient")
	}
}

func TestJobStoreCleanup(t *testing.T) {
	store := NewJobStore(time.Millisecond)
	job := NewJob("fake", "m", "sys", "user", 0.2, 3)
	store.Put(job)
	time.Sleep(5 * time.Millisecond)
	store.Cleanup()
	if store.Get(job.ID) != nil {
		t.Error("expired job should have been removed")
	}
}

func TestJobStoreCleanupConcurrentWithUpdates(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := NewJob("fake", "m", "sys", "user", 0.2, 3)
	store.Put(job)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			job.SetStatus(StatusGenerating, "working")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			store.Cleanup()
		}
	}()
	wg.Wait()

	if store.Get(job.ID) == nil {
		t.Error("live job evicted during concurrent updates")
	}
}

func TestNewJobIDDistinct(t *testing.T) {
	a := NewJobID("seed")
	b := NewJobID("seed")
	if a == b {
		t.Error("ids should differ across calls")
	}
	if len(a) != 20 {
		t.Errorf("id length = %d, want 20", len(a))
	}
}
