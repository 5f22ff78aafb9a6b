package leetcode

import (
	"errors"
	"fmt"
)

// TransportError covers anything that kept a response envelope from being
// read: network failures, timeouts, cancellation and non-2xx statuses.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// GraphQLError is returned when the envelope carried a non-empty errors array.
// StatusCode is set when the envelope arrived with a non-2xx status.
type GraphQLError struct {
	Op         string
	Message    string
	Count      int
	StatusCode int
}

func (e *GraphQLError) Error() string {
	if e.Count > 1 {
		return fmt.Sprintf("%s: %s (and %d more)", e.Op, e.Message, e.Count-1)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

type NotFoundError struct {
	Op    string
	Field string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s not found", e.Op, e.Field)
}

// DecodeError means the response did not have the expected shape.
type DecodeError struct {
	Op    string
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: decode %s: %v", e.Op, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: decode: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Classify returns a short label for err, used as a metric and log value.
func Classify(err error) string {
	var (
		transportErr  *TransportError
		graphqlErr    *GraphQLError
		notFoundErr   *NotFoundError
		decodeErr     *DecodeError
		validationErr *ValidationError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &notFoundErr):
		return "not_found"
	case errors.As(err, &graphqlErr):
		return "graphql"
	case errors.As(err, &decodeErr):
		return "decode"
	case errors.As(err, &validationErr):
		return "validation"
	case errors.As(err, &transportErr):
		return "transport"
	default:
		return "unknown"
	}
}

// Retryable reports whether retrying the same call may succeed.
func Retryable(err error) bool {
	var graphqlErr *GraphQLError
	if errors.As(err, &graphqlErr) {
		return graphqlErr.StatusCode == 429 || graphqlErr.StatusCode >= 500
	}
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		return false
	}
	if transportErr.StatusCode >= 400 && transportErr.StatusCode < 500 && transportErr.StatusCode != 429 {
		return false
	}
	return true
}
