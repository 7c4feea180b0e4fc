package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the error taxonomy shared by repositories, services and the HTTP layer.
// Its string value is what clients see in the "type" field.
type Kind string

const (
	KindValidation   Kind = "ValidationError"
	KindUnauthorized Kind = "UnauthorizedError"
	KindForbidden    Kind = "ForbiddenError"
	KindNotFound     Kind = "NotFoundError"
	KindConflict     Kind = "ConflictError"
	KindInternal     Kind = "InternalServerError"
)

func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(format string, args ...any) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...), nil)
}

func Unauthorized(msg string) *Error { return New(KindUnauthorized, msg, nil) }

func Forbidden(msg string) *Error { return New(KindForbidden, msg, nil) }

func NotFound(entity string) *Error { return New(KindNotFound, entity+" not found", nil) }

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...), nil)
}

func Internal(msg string, err error) *Error { return New(KindInternal, msg, err) }

// KindOf reports the kind of the first *Error in err's chain. Errors outside the
// taxonomy are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Kind != "" {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the client-facing message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
