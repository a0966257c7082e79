package errors

import (
	stderrors "errors"
	"net/http"
)

// Kind classifies an HTTPError independently of its status code, since
// validation and conflict failures share 400.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindIO           Kind = "io"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Kind    Kind
	Code    int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(kind Kind, code int, message string) *HTTPError {
	return &HTTPError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// Helpers for common errors
var (
	ErrValidation   = func(msg string) *HTTPError { return NewHTTPError(KindValidation, http.StatusBadRequest, msg) }
	ErrConflict     = func(msg string) *HTTPError { return NewHTTPError(KindConflict, http.StatusBadRequest, msg) }
	ErrNotFound     = func(msg string) *HTTPError { return NewHTTPError(KindNotFound, http.StatusNotFound, msg) }
	ErrUnauthorized = func(msg string) *HTTPError { return NewHTTPError(KindUnauthorized, http.StatusUnauthorized, msg) }
)

// ErrIO wraps a storage failure. The cause is kept for logs only.
func ErrIO(msg string, err error) *HTTPError {
	e := NewHTTPError(KindIO, http.StatusInternalServerError, msg)
	e.Err = err
	return e
}

// As returns the HTTPError in err's chain, if any.
func As(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if stderrors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

// IsKind reports whether err carries an HTTPError of the given kind.
func IsKind(err error, kind Kind) bool {
	httpErr, ok := As(err)
	return ok && httpErr.Kind == kind
}
