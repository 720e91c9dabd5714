package ingest

import (
	"errors"
	"fmt"

	"github.com/gnkm/mdstruct/internal/document"
)

// Kind classifies pipeline failures for callers that branch on them.
type Kind string

const (
	KindMalformedPayload Kind = "malformed_payload"
	KindSchemaViolation  Kind = "schema_violation"
)

// MalformedError reports text that is not well-formed JSON after fence
// stripping. It keeps the full pre-parse text: the root cause is almost
// always a quirk of one specific LLM response, and truncating the evidence
// would make it undiagnosable.
type MalformedError struct {
	Err  error  // underlying parser error with position/message
	Text string // the full text handed to the parse stage
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed payload: %v", e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// Classify maps a pipeline error to its kind. Returns false for errors that
// originate outside the pipeline.
func Classify(err error) (Kind, bool) {
	var malformed *MalformedError
	if errors.As(err, &malformed) {
		return KindMalformedPayload, true
	}
	var violation *document.ValidationError
	if errors.As(err, &violation) {
		return KindSchemaViolation, true
	}
	return "", false
}
