package neutralipc

import (
	"errors"
	"fmt"
)

// Kind classifies client errors so callers can branch without matching on
// message strings.
type Kind string

const (
	// KindConnection covers dial failures, timeouts, and I/O errors on the
	// socket.
	KindConnection Kind = "connection"
	// KindSerialization means the schema could not be represented in the
	// chosen wire encoding.
	KindSerialization Kind = "serialization"
	// KindProtocol means the server's response was malformed or truncated.
	KindProtocol Kind = "protocol"
	// KindRender means the server reported a failure status for a
	// well-formed request. The RenderResult still carries diagnostics.
	KindRender Kind = "render"
	// KindConfig means the connection configuration is invalid.
	KindConfig Kind = "config"
)

// Error is the structured error type returned by all library operations.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s/%s] %s", e.Kind, e.Code, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by kind and code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind && e.Code == t.Code
	}
	return false
}

// IsKind reports whether err is a client Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func newConnectionError(code, message string, cause error) *Error {
	return &Error{Kind: KindConnection, Code: code, Message: message, Cause: cause}
}

func newSerializationError(code, message string, cause error) *Error {
	return &Error{Kind: KindSerialization, Code: code, Message: message, Cause: cause}
}

func newProtocolError(code, message string) *Error {
	return &Error{Kind: KindProtocol, Code: code, Message: message}
}

func newRenderError(code, message string) *Error {
	return &Error{Kind: KindRender, Code: code, Message: message}
}

func newConfigError(code, message string) *Error {
	return &Error{Kind: KindConfig, Code: code, Message: message}
}
