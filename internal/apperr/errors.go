// Package apperr defines the error kinds surfaced by the gateway.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so transports can map it to a protocol error.
type Kind int

const (
	// Unknown is reported for errors not created by this package.
	Unknown Kind = iota
	// Configuration covers a missing or unusable credential.
	Configuration
	// Validation covers tool arguments that do not match the tool schema.
	Validation
	// Upstream covers a non-OK status returned by the Maps API.
	Upstream
	// NoResults covers an OK status with an empty result set.
	NoResults
	// Transport covers network, HTTP and decoding failures.
	Transport
)

var kindNames = map[Kind]string{
	Unknown:       "unknown",
	Configuration: "configuration",
	Validation:    "validation",
	Upstream:      "upstream",
	NoResults:     "no_results",
	Transport:     "transport",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified failure with a human-readable message.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

// Error implements the error interface. Only the message is rendered so
// upstream messages pass through to clients unchanged.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err. The message defaults to err's message.
func Wrap(kind Kind, op string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Message: err.Error(), Err: err}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
