// Package llm holds the LLM invocation collaborators: provider clients that
// accept a system instruction, user instruction, model, and temperature, and
// return raw (or provider-validated) text for the ingestion pipeline.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Request is one generation call.
type Request struct {
	System      string
	User        string
	Model       string
	Temperature float64
	MaxTokens   int
}

// Result is the provider's answer.
type Result struct {
	Text string
	// Structured is set when the provider enforced the document schema
	// during decoding. Such output still runs through the pipeline (fence
	// stripping is a no-op on clean JSON); the flag is diagnostic.
	Structured bool
	Model      string
}

// Backend generates document text from a prompt pair.
type Backend interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Result, error)
	Close()
}

// Factory builds a backend from an API key.
type Factory func(apiKey, defaultModel string) Backend

var backends = map[string]Factory{}

// Register adds a backend factory by provider name.
func Register(name string, factory Factory) {
	backends[name] = factory
}

// For returns a backend for the named provider.
func For(name, apiKey, defaultModel string) (Backend, error) {
	factory, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown llm backend: %s", name)
	}
	return factory(apiKey, defaultModel), nil
}

// Providers lists the registered backend names.
func Providers() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	return names
}

// RetryableError indicates a transient provider failure (rate limit or
// server error) worth retrying after a pause.
type RetryableError struct {
	Provider   string
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *RetryableError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: retryable error (status %d, retry after %s): %s",
			e.Provider, e.StatusCode, e.RetryAfter, truncate(e.Message, 200))
	}
	return fmt.Sprintf("%s: retryable error (status %d): %s",
		e.Provider, e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
