// Package diag defines the diagnostics contract shared by the pipeline
// passes and the runtime service loop: a machine-matchable Kind plus an
// Error type that wraps an underlying cause without losing it, so callers
// can errors.As their way back to a Kind regardless of how many layers
// wrapped it on the way up.
package diag

import "fmt"

// Kind classifies a diagnostic. Pipeline passes use the first group;
// runtime components use the second.
type Kind string

const (
	MalformedInput    Kind = "malformed_input"
	Unsupported       Kind = "unsupported"
	InvariantViolation Kind = "invariant_violation"
	IOFailure         Kind = "io_failure"

	TransportIO      Kind = "transport_io"
	ProtocolFraming  Kind = "protocol_framing"
	UnknownFunction  Kind = "unknown_function"
	MissingCallback  Kind = "missing_callback"
	Shutdown         Kind = "shutdown"
	Interrupted      Kind = "interrupted"
	EmulationError   Kind = "emulation_error"
)

// Warning is a non-blocking diagnostic: passes collect these instead of
// only logging them, so driver- and test-level code can assert on them
// (e.g. loom_instrument's "last resort: constant 1" valid-condition
// fallback, §4.4.2).
type Warning struct {
	Kind   Kind
	Entity string
	Msg    string
}

func (w Warning) String() string {
	if w.Entity != "" {
		return fmt.Sprintf("%s: %s (%s)", w.Kind, w.Msg, w.Entity)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Msg)
}

// Error is a diagnostic carrying a Kind, a human-readable message, the
// name of the offending IR/runtime entity (if any), and an optional
// wrapped cause.
type Error struct {
	Kind   Kind
	Entity string // e.g. a module, cell or wire name; empty if not applicable
	Msg    string
	Cause  error
}

func (e *Error) Error() string {
	if e.Entity != "" {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s (%s): %v", e.Kind, e.Msg, e.Entity, e.Cause)
		}
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Msg, e.Entity)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with no offending entity.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// On attaches an offending entity name to an Error.
func (e *Error) On(entity string) *Error {
	e.Entity = entity
	return e
}

// Wrap creates an Error that wraps cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

// Is reports whether err is a *Error of the given Kind, unwrapping as
// needed via errors.As semantics (callers typically use errors.As
// directly; this is a convenience for the common "just tell me the kind
// matches" case used by runtime/dpi's ServiceLoop recovery path).
func Is(err error, kind Kind) bool {
	for err != nil {
		if de, ok := err.(*Error); ok {
			if de.Kind == kind {
				return true
			}
			err = de.Cause
			continue
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
