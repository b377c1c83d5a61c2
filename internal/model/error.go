package model

import (
	"errors"
	"net/http"
)

// Kind classifies an error at the request boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindForbidden
	KindNotFound
	KindUpload
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindUpload:
		return "upload"
	default:
		return "internal"
	}
}

// StatusCode maps the kind onto the HTTP status returned to clients.
func (k Kind) StatusCode() int {
	switch k {
	case KindValidation, KindConflict, KindUpload:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error carrying a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func ValidationError(message string) *Error {
	return NewError(KindValidation, message, nil)
}

func ConflictError(message string) *Error {
	return NewError(KindConflict, message, nil)
}

func AuthError(message string) *Error {
	return NewError(KindAuth, message, nil)
}

func ForbiddenError(message string) *Error {
	return NewError(KindForbidden, message, nil)
}

func NotFoundError(message string) *Error {
	return NewError(KindNotFound, message, nil)
}

func UploadError(message string, err error) *Error {
	return NewError(KindUpload, message, err)
}

func InternalError(err error) *Error {
	return NewError(KindInternal, "Internal server error", err)
}

// KindOf reports the kind of err, treating anything unclassified as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
