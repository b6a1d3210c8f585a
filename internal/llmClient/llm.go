package llmclient

import (
	"context"
	"errors"
	"fmt"
)

// TextClient is the minimal contract for a remote text generation provider:
// one prompt in, one block of generated text out.
type TextClient interface {
	Name() string
	Close() error
	// GenerateText returns the generated text. An empty string with a nil
	// error means the provider answered without usable text.
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ErrorClass tells the caller whether a failed call is worth retrying.
type ErrorClass int

const (
	ClassFatal ErrorClass = iota
	ClassRetryable
)

func (c ErrorClass) String() string {
	switch c {
	case ClassRetryable:
		return "retryable"
	default:
		return "fatal"
	}
}

// ServiceError is what provider adapters return for failed calls. Adapters
// decide the class from structured status information, never from message text.
type ServiceError struct {
	Class      ErrorClass
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s service error (status %d): %v", e.Class, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s service error: %v", e.Class, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// NewRetryableError marks err as a transient overload condition.
func NewRetryableError(statusCode int, err error) error {
	return &ServiceError{Class: ClassRetryable, StatusCode: statusCode, Err: err}
}

// NewPermanentError marks err as a failure that will not resolve with retries.
func NewPermanentError(statusCode int, err error) error {
	return &ServiceError{Class: ClassFatal, StatusCode: statusCode, Err: err}
}

// Classify reports the class of err. Errors that did not pass through an
// adapter are fatal.
func Classify(err error) ErrorClass {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Class
	}
	return ClassFatal
}

// IsRetryable is shorthand for Classify(err) == ClassRetryable.
func IsRetryable(err error) bool {
	return err != nil && Classify(err) == ClassRetryable
}

// classifyStatus maps an HTTP-ish status code onto an error class. Only the
// overload class (503) is retried.
func classifyStatus(code int) ErrorClass {
	if code == 503 {
		return ClassRetryable
	}
	return ClassFatal
}
