package pipeline

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/gnkm/mdstruct/internal/ingest"
	"github.com/gnkm/mdstruct/internal/llm"
)

// IsTransient checks if an error is a provider failure worth retrying after
// a pause.
func IsTransient(err error) bool {
	var retryErr *llm.RetryableError
	return errors.As(err, &retryErr)
}

// IsInvalidOutput checks if an error means the model produced unusable text.
// Such failures are retried by re-invoking the model, never by repairing the
// output with guessed content.
func IsInvalidOutput(err error) bool {
	_, ok := ingest.Classify(err)
	return ok
}

// Backoff returns a pause for attempt n (0-indexed) with jitter. A provider
// Retry-After hint takes precedence when present.
func Backoff(attempt int, err error) time.Duration {
	var retryErr *llm.RetryableError
	if errors.As(err, &retryErr) && retryErr.RetryAfter > 0 {
		return retryErr.RetryAfter
	}
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}
