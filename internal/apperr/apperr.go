package apperr

import (
	"net/http"
	"strings"
)

// Kind is the machine readable error code written into every error entry.
type Kind string

const (
	InvalidInput       Kind = "INVALID_INPUT"
	ResourceExists     Kind = "RESOURCE_EXISTS"
	ResourceNotFound   Kind = "RESOURCE_NOT_FOUND"
	InvalidCredentials Kind = "INVALID_CREDENTIALS"
	NotAuthenticated   Kind = "NOT_AUTHENTICATED"
	NotAuthorized      Kind = "NOT_AUTHORIZED"
	Internal           Kind = "INTERNAL_SERVER_ERROR"
	RouteNotFound      Kind = "NOT_FOUND"
)

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case InvalidInput, ResourceExists:
		return http.StatusBadRequest
	case ResourceNotFound, RouteNotFound:
		return http.StatusNotFound
	case InvalidCredentials, NotAuthenticated:
		return http.StatusUnauthorized
	case NotAuthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Detail is one entry of the envelope's errors array.
type Detail struct {
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
	Code    Kind   `json:"code"`
}

// Error is the typed outcome returned by services for expected failures.
// All details of one Error share the same Kind.
type Error struct {
	Kind    Kind
	Details []Detail
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		msgs = append(msgs, d.Message)
	}
	return string(e.Kind) + ": " + strings.Join(msgs, "; ")
}

// Status returns the HTTP status for the error kind.
func (e *Error) Status() int { return e.Kind.Status() }

// New builds an Error with a single detail. param may be empty.
func New(kind Kind, param, message string) *Error {
	return &Error{Kind: kind, Details: []Detail{{Param: param, Message: message, Code: kind}}}
}

// Validation collects INVALID_INPUT details; the zero value is ready to use.
type Validation struct {
	details []Detail
}

// Add records a failed field.
func (v *Validation) Add(param, message string) {
	v.details = append(v.details, Detail{Param: param, Message: message, Code: InvalidInput})
}

// Err returns nil when nothing was recorded.
func (v *Validation) Err() error {
	if len(v.details) == 0 {
		return nil
	}
	return &Error{Kind: InvalidInput, Details: v.details}
}

// common outcomes shared across handlers
var (
	messageNotAuthenticated = "You need to sign in to proceed."
	messageNotAuthorized    = "You are not authorized to perform this action."
)

// Unauthenticated is the 401 outcome for anonymous callers.
func Unauthenticated() *Error { return New(NotAuthenticated, "", messageNotAuthenticated) }

// Forbidden is the 403 outcome for signed-in callers lacking permission.
func Forbidden() *Error { return New(NotAuthorized, "", messageNotAuthorized) }

// NotFound is the 404 outcome for a referenced entity.
func NotFound(param, message string) *Error { return New(ResourceNotFound, param, message) }

// Exists is the uniqueness conflict outcome.
func Exists(param, message string) *Error { return New(ResourceExists, param, message) }
