// Package apperr carries the service's error taxonomy. Every component
// raises the most specific applicable kind; nothing is swallowed on the
// way to the transport boundary, which maps kinds to HTTP statuses.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindConfiguration is fatal misconfiguration: startup failures,
	// dimension mismatches. Never retried.
	KindConfiguration Kind = iota
	// KindValidation is malformed caller input. Never retried.
	KindValidation
	// KindNotFound is an unknown tool or index name.
	KindNotFound
	// KindExternal is a failed or timed-out embedding, vector-store or
	// LLM call. The caller may retry the whole request; the service
	// itself does not.
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindExternal:
		return "external service"
	}
	return "unknown"
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Details returns the human-readable portion of the error, suitable for
// the "details" field of an error response.
func (e *Error) Details() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func Configurationf(format string, args ...interface{}) error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Externalf(format string, args ...interface{}) error {
	return &Error{Kind: KindExternal, Message: fmt.Sprintf(format, args...)}
}

// External wraps a provider error, preserving the cause (timeout vs.
// refusal) in the detail without changing control flow.
func External(msg string, err error) error {
	return &Error{Kind: KindExternal, Message: msg, Err: err}
}

// Configuration wraps a fatal configuration error.
func Configuration(msg string, err error) error {
	return &Error{Kind: KindConfiguration, Message: msg, Err: err}
}

// KindOf extracts the kind of err, or KindExternal if err does not carry
// one (an unclassified failure is treated as a provider failure).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindExternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
