package service

import (
	"errors"
	"sort"
	"strings"
)

// Kind classifies service errors so transports can map them to status codes.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindDuplicateEmail
	KindAuthenticationFailed
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindDuplicateEmail:
		return "duplicate_email"
	case KindAuthenticationFailed:
		return "authentication_failed"
	default:
		return "internal"
	}
}

// Error is a classified, caller-safe service error.
// Fields lists per-field messages for validation failures.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string][]string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// ValidationError builds a validation error from per-field messages.
func ValidationError(msg string, fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

var (
	ErrUnauthenticated      = newError(KindUnauthenticated, "authentication required")
	ErrAuthenticationFailed = newError(KindAuthenticationFailed, "Login failed")
	ErrDuplicateEmail       = newError(KindDuplicateEmail, "user with this email already exists")
	ErrFileNotFound         = newError(KindNotFound, "file not found")
	ErrUserNotFound         = newError(KindNotFound, "user not found")
	ErrAccessNotFound       = newError(KindNotFound, "User not found in the list of co-authors")
	ErrNotOwner             = newError(KindForbidden, "You are not the owner of this file")
	ErrSelfRevoke           = newError(KindForbidden, "You cannot remove yourself from the list of co-authors")
	ErrEmptyName            = ValidationError("File name cannot be empty", map[string][]string{"name": {"can not be blank"}})
	ErrEmptyEmail           = ValidationError("Email cannot be empty", map[string][]string{"email": {"can not be blank"}})
	ErrSelfGrant            = ValidationError("The owner already has full access", map[string][]string{"email": {"is the owner of this file"}})
)

// KindOf returns the Kind of err, or KindInternal when err is not a service error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// AsError extracts a service error from the chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
