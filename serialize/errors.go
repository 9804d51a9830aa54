package serialize

import "errors"

// Kind is a stable category for programmatic error handling.
type Kind string

const (
	// KindMalformedHeader: the input's header tag does not identify the
	// expected type, or the input is shorter than a full header.
	KindMalformedHeader Kind = "MalformedHeader"
	// KindUnsupportedVersion: the header names the expected type but at a
	// version this decoder does not understand.
	KindUnsupportedVersion Kind = "UnsupportedVersion"
	// KindMalformedPayload: the header was accepted but structural decoding
	// failed (truncation, out-of-range field, non-canonical encoding, or
	// trailing bytes).
	KindMalformedPayload Kind = "MalformedPayload"
)

// Error is the codec's structured error type.
//
// For header errors the Message text is a documented stable contract; see the
// package documentation. For payload errors, branch on Kind rather than text.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

func wrapError(kind Kind, msg string, cause error) error {
	if cause == nil {
		return newError(kind, msg)
	}
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
