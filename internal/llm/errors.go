package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// RateLimitError is a 429 from the provider.
type RateLimitError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// InvalidOutputError means the completion was not the JSON we asked for.
type InvalidOutputError struct {
	Content json.RawMessage
	Err     error
}

func (e *InvalidOutputError) Error() string {
	return fmt.Sprintf("invalid LLM output: %v", e.Err)
}

func (e *InvalidOutputError) Unwrap() error { return e.Err }

// UnavailableError covers network failures and 5xx responses.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return "LLM provider unavailable"
	}
	return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// TruncatedError means generation stopped at MaxTokens.
type TruncatedError struct {
	Content json.RawMessage
}

func (e *TruncatedError) Error() string {
	return "LLM output truncated at max tokens"
}

// IsInvalidOutput reports whether err carries an InvalidOutputError.
func IsInvalidOutput(err error) bool {
	var inv *InvalidOutputError
	return errors.As(err, &inv)
}
