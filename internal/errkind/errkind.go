// Package errkind gives the error taxonomy from the system's error-handling
// design a typed home: a Kind enum plus a wrapping Error so callers can
// branch on the kind with errors.As instead of string-matching messages.
package errkind

import "fmt"

// Kind names one of the error categories the orchestrator must branch on.
type Kind string

const (
	// TransientExternal covers HTTP 5xx, network timeouts, and rate limits.
	// Retried locally; surfaced only after the retry budget is exhausted.
	TransientExternal Kind = "transient_external"

	// PermanentExternal covers HTTP 4xx (other than 429) and malformed
	// responses. Not retried.
	PermanentExternal Kind = "permanent_external"

	// DataShape marks a registry payload missing a required sub-module.
	// Callers must degrade to a partially-populated record, never panic.
	DataShape Kind = "data_shape"

	// ExtractionFailure marks a study-card extraction that returned
	// invalid JSON, failed schema validation, or omitted an evidence
	// span for a numeric field.
	ExtractionFailure Kind = "extraction_failure"

	// ValidationFailure marks a pivotal study card missing a required
	// pivotal field. No score is computed when this kind is returned.
	ValidationFailure Kind = "validation_failure"

	// IntegrityError marks a database constraint or foreign-key
	// violation inside a per-trial nested transaction.
	IntegrityError Kind = "integrity_error"

	// Fatal marks missing required configuration: DSN, storage, or any
	// other condition that should halt the process.
	Fatal Kind = "fatal"
)

// Error wraps an underlying error with a stable Kind, the offending
// entity id, and a human-readable message, per the audit requirement that
// every error carry all three.
type Error struct {
	Kind   Kind
	Entity string // offending entity id (trial id, doc id, run id, ...)
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("[%s] %s (entity=%s): %v", e.Kind, e.Msg, e.Entity, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Msg, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs a typed Error.
func New(kind Kind, entity, msg string, cause error) *Error {
	return &Error{Kind: kind, Entity: entity, Msg: msg, Err: cause}
}

// Is reports whether err carries the given Kind, unwrapping as needed.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if ke, ok := err.(*Error); ok {
			e = ke
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return e != nil && e.Kind == kind
}

// Retryable reports whether the kind should be retried by the caller
// (TransientExternal only — rate limits are handled separately by the
// registry client's own backoff loop, which does not consume this path).
func (k Kind) Retryable() bool {
	return k == TransientExternal
}

// HaltsProcess reports whether the kind should stop the orchestrator
// entirely rather than being recorded as a per-trial/per-batch error.
func (k Kind) HaltsProcess() bool {
	return k == Fatal
}
