package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// Kind discriminates the failure classes a caller can recover from differently.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransient
	KindResponse
	KindConsistency
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindResponse:
		return "response"
	case KindConsistency:
		return "consistency"
	default:
		return "unknown"
	}
}

// TransientError is a transport-level failure of a remote call.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// ResponseError is a non-success status reported by a remote service.
// Payload holds the raw response body.
type ResponseError struct {
	Provider string
	Status   int
	Payload  json.RawMessage
}

func (e *ResponseError) Error() string {
	msg := e.Message()
	if msg == "" {
		msg = Truncate(string(e.Payload), 200)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.Status, msg)
}

// Message extracts a human readable message from the payload, if it has a
// recognizable shape.
func (e *ResponseError) Message() string {
	if !gjson.ValidBytes(e.Payload) {
		return ""
	}
	for _, path := range []string{"error.message", "error.description", "message", "error"} {
		if r := gjson.GetBytes(e.Payload, path); r.Exists() && r.Type == gjson.String {
			return r.String()
		}
	}
	return ""
}

// ConsistencyError is an internal invariant violation: the number of results
// does not match the number of inputs.
type ConsistencyError struct {
	Stage string
	Want  int
	Got   int
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency failure in %s: expected %d results, got %d", e.Stage, e.Want, e.Got)
}

// ExhaustedError reports that a retried call failed on every attempt.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// KindOf classifies err. Wrapped errors are inspected through errors.As.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var ce *ConsistencyError
	if errors.As(err, &ce) {
		return KindConsistency
	}
	var re *ResponseError
	if errors.As(err, &re) {
		return KindResponse
	}
	var te *TransientError
	if errors.As(err, &te) {
		return KindTransient
	}
	return KindUnknown
}

// Retryable reports whether a failed single-unit call may be attempted again.
// Cancellation and consistency failures are final.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return KindOf(err) != KindConsistency
}

// Truncate shortens s to at most n bytes without splitting a rune and marks
// the cut with "...".
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
