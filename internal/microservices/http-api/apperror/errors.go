// Package apperror holds the error taxonomy shared by services and handlers.
// Every failure a client can cause is one of these kinds; anything else is an
// internal error.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindInvalidCredentials
	KindNotAuthenticated
	KindPermission
	KindMethodNotAllowed
	KindThrottled
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindNotAuthenticated:
		return "not_authenticated"
	case KindPermission:
		return "permission_denied"
	case KindMethodNotAllowed:
		return "method_not_allowed"
	case KindThrottled:
		return "throttled"
	default:
		return "internal"
	}
}

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict, KindInvalidCredentials:
		return http.StatusBadRequest
	case KindNotAuthenticated:
		return http.StatusUnauthorized
	case KindPermission:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case KindThrottled:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Fields carries per-field messages for
// validation and conflict errors.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string][]string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], ", ")))
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// With adds a field message and returns the same error for chaining.
func (e *Error) With(field, message string) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
	return e
}

// HasFields reports whether any field messages were collected.
func (e *Error) HasFields() bool {
	return len(e.Fields) > 0
}

var (
	ErrValidation         = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrConflict           = &Error{Kind: KindConflict, Message: "conflict"}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: "invalid credentials"}
	ErrNotAuthenticated   = &Error{Kind: KindNotAuthenticated, Message: "authentication credentials were not provided"}
	ErrPermission         = &Error{Kind: KindPermission, Message: "you do not have permission to perform this action"}
	ErrMethodNotAllowed   = &Error{Kind: KindMethodNotAllowed, Message: "method not allowed"}
	ErrThrottled          = &Error{Kind: KindThrottled, Message: "request was throttled"}
)

// Validation starts a validation error; add more fields with With.
func Validation(field, message string) *Error {
	return (&Error{Kind: KindValidation, Message: "validation failed"}).With(field, message)
}

// NewValidation returns an empty validation error to collect fields into.
func NewValidation() *Error {
	return &Error{Kind: KindValidation, Message: "validation failed"}
}

func Conflict(field, message string) *Error {
	return (&Error{Kind: KindConflict, Message: message}).With(field, message)
}

func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

func InvalidCredentials(message string) *Error {
	return &Error{Kind: KindInvalidCredentials, Message: message}
}

func NotAuthenticated(message string) *Error {
	return &Error{Kind: KindNotAuthenticated, Message: message}
}

func Permission(message string) *Error {
	return &Error{Kind: KindPermission, Message: message}
}

func MethodNotAllowed(method string) *Error {
	return &Error{Kind: KindMethodNotAllowed, Message: fmt.Sprintf("method %q not allowed", method)}
}

// KindOf returns the kind of err, or KindInternal when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Status returns the HTTP status for err.
func Status(err error) int {
	return KindOf(err).Status()
}

// BodyOf renders err as the JSON error body. Unclassified errors are not
// exposed to the client.
func BodyOf(err error) map[string]any {
	var e *Error
	if !errors.As(err, &e) {
		return map[string]any{"error": "internal server error"}
	}
	body := map[string]any{"error": e.Message}
	if len(e.Fields) > 0 {
		body["fields"] = e.Fields
	}
	return body
}
