// Package errs defines the error taxonomy shared across kraterm's
// components so the outer supervisor can decide how to react to a
// failure without string-matching error messages.
package errs

import "fmt"

// Kind classifies an error by how the caller should respond to it.
type Kind string

const (
	// Transient indicates a retryable failure: a dropped connection, a
	// timed-out request, a rate limit. The caller should back off and
	// retry.
	Transient Kind = "transient"
	// Expiry indicates the auth token has expired or is about to, and
	// the caller must refresh before continuing.
	Expiry Kind = "expiry"
	// ProtocolParse indicates a message from the exchange could not be
	// decoded into the expected shape.
	ProtocolParse Kind = "protocol_parse"
	// Consistency indicates local state has diverged from the
	// exchange's (a checksum mismatch, an unexpected sequence gap) and
	// must be resynchronized.
	Consistency Kind = "consistency"
	// Config indicates a misconfiguration that will not resolve itself
	// by retrying.
	Config Kind = "config"
	// Fatal indicates the process cannot continue and should exit.
	Fatal Kind = "fatal"
	// User indicates the operator or agent requested something invalid
	// (a malformed order, an unknown symbol).
	User Kind = "user"
)

// Error wraps a cause with a Kind so callers can branch on
// errors.As-style classification instead of parsing messages.
type Error struct {
	Kind    Kind
	Op      string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an Error of the given kind for operation op, wrapping cause.
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Cause: cause}
}

// Is reports whether err (or any error it wraps) is a kraterm Error of
// the given kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Kind == kind {
				return true
			}
			err = e.Cause
			continue
		}
		return false
	}
	return false
}
