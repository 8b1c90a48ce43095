package errx

import (
	"errors"
	"fmt"
)

// Kind classifies where a failure came from. It replaces an HTTP status
// because nothing in the engine answers HTTP requests.
type Kind string

const (
	// KindTransport covers connection, DNS and context failures talking to the backend.
	KindTransport Kind = "transport"
	// KindStatus is an HTTP-level failure reported by the backend (4xx/5xx).
	KindStatus Kind = "status"
	// KindMalformed is a response that decoded but lacks the expected field.
	KindMalformed Kind = "malformed"
	// KindConfig is a bad configuration or response table detected at start-up.
	KindConfig Kind = "config"
	// KindRedis wraps failures from the event publisher.
	KindRedis Kind = "redis"
)

const (
	// BackendErrorMessage is the message used for transport failures.
	BackendErrorMessage = "backend request failed"
	// MalformedMessage describes a response missing its expected field.
	MalformedMessage = "unexpected backend response"
	// ConfigErrorMessage describes start-up validation failures.
	ConfigErrorMessage = "invalid configuration"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
)

// AppError wraps an underlying error with a kind and safe message.
type AppError struct {
	Err     error
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, kind Kind, message string) *AppError {
	return &AppError{
		Err:     err,
		Kind:    kind,
		Message: message,
	}
}

// Transport wraps a network-layer failure.
func Transport(err error) error {
	if err == nil {
		return nil
	}
	return New(err, KindTransport, BackendErrorMessage)
}

// Malformed reports a response that is missing the named field.
func Malformed(field string) error {
	return New(fmt.Errorf("missing %q field", field), KindMalformed, MalformedMessage)
}

// Config reports a configuration problem found during validation.
func Config(format string, args ...any) error {
	return New(fmt.Errorf(format, args...), KindConfig, ConfigErrorMessage)
}

// KindOf returns the kind of the first AppError in err's chain, or "".
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}
