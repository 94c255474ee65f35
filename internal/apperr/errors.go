// Package apperr defines the tagged errors that cross operation boundaries.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure for boundary mapping.
type Kind string

const (
	KindVault      Kind = "vault"      // vault root missing or unusable
	KindValidation Kind = "validation" // bad or missing argument
	KindNotFound   Kind = "not_found"  // lookup failed
	KindIO         Kind = "io"         // file read or write failed
	KindInternal   Kind = "internal"   // anything unexpected
)

// Error carries a kind plus a message fit for the client payload. Internal
// helpers return plain errors; the service boundary tags them.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// New builds a tagged error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Vault(format string, args ...any) *Error      { return New(KindVault, format, args...) }
func Validation(format string, args ...any) *Error { return New(KindValidation, format, args...) }
func NotFound(format string, args ...any) *Error   { return New(KindNotFound, format, args...) }
func IO(format string, args ...any) *Error         { return New(KindIO, format, args...) }

// KindOf reports the kind of err, unwrapping as needed. Untagged errors
// classify as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
