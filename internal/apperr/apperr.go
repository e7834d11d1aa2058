// Package apperr defines the error taxonomy shared by the coaching core and
// its transports.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error by how the caller is expected to react to it.
type Kind string

const (
	// KindNotFound means the referenced question, set or user does not
	// exist or is inactive. Not retried.
	KindNotFound Kind = "not_found"

	// KindInvalidInput means a malformed or missing field. Never partially applied.
	KindInvalidInput Kind = "invalid_input"

	// KindAccessDenied means the entitlement evaluator refused access. The
	// caller shows an upgrade prompt; it is not a system fault.
	KindAccessDenied Kind = "access_denied"

	// KindDependencyUnavailable means the store, billing or identity
	// dependency failed or timed out. Retryable.
	KindDependencyUnavailable Kind = "dependency_unavailable"

	// KindGenerationFailed means the text-generation API failed or returned
	// unusable content. Retryable on the next cycle.
	KindGenerationFailed Kind = "generation_failed"

	// KindInternal is anything that does not fit the taxonomy.
	KindInternal Kind = "internal"
)

// Error is a classified error.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "coach.SubmitAnswer"
	Msg  string // user-facing message; falls back to Err
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the operation may succeed if resubmitted.
func (e *Error) Retryable() bool {
	return e.Kind == KindDependencyUnavailable || e.Kind == KindGenerationFailed
}

// New creates an Error with a message and no cause.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Wrap classifies err under kind. Returns nil if err is nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func NotFound(op, format string, args ...any) *Error {
	return New(KindNotFound, op, fmt.Sprintf(format, args...))
}

func InvalidInput(op, format string, args ...any) *Error {
	return New(KindInvalidInput, op, fmt.Sprintf(format, args...))
}

func AccessDenied(op, format string, args ...any) *Error {
	return New(KindAccessDenied, op, fmt.Sprintf(format, args...))
}

func Unavailable(op string, err error) error {
	return Wrap(KindDependencyUnavailable, op, err)
}

func GenerationFailed(op string, err error) error {
	return Wrap(KindGenerationFailed, op, err)
}

// KindOf returns the Kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsRetryable reports whether err is a transient failure.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable()
	}
	return false
}
