// Package apierror normalizes the backend's heterogeneous error payloads into a
// single taxonomy so application code never inspects backend-specific shapes.
// Errors carry a Kind, a human-readable message, and the HTTP status that
// produced them, and participate in errors.Is via per-kind sentinels.
package apierror

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind classifies a normalized error.
type Kind string

const (
	// KindNetwork is a transport-level failure with no response.
	KindNetwork Kind = "network"
	// KindUnauthorized means expired or invalid credentials, not recoverable
	// within the current expiry episode.
	KindUnauthorized Kind = "unauthorized"
	// KindForbidden means valid credentials with insufficient rights.
	KindForbidden Kind = "forbidden"
	// KindValidation is a 4xx with field-level detail.
	KindValidation Kind = "validation"
	// KindServer is a 5xx.
	KindServer Kind = "server"
	// KindUnknown is anything else.
	KindUnknown Kind = "unknown"
)

// Per-kind sentinels for errors.Is checks. A sentinel matches any *Error of the
// same kind.
var (
	ErrNetwork      = &Error{kind: KindNetwork}
	ErrUnauthorized = &Error{kind: KindUnauthorized}
	ErrForbidden    = &Error{kind: KindForbidden}
	ErrValidation   = &Error{kind: KindValidation}
	ErrServer       = &Error{kind: KindServer}
	ErrUnknown      = &Error{kind: KindUnknown}
)

// Error is a normalized backend error.
type Error struct {
	kind       Kind
	message    string
	statusCode int
	err        error
}

// New creates a normalized error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

// Error returns the human-readable message.
func (e *Error) Error() string {
	if e.message == "" {
		return string(e.kind) + " error"
	}
	return e.message
}

// Kind returns the error's classification.
func (e *Error) Kind() Kind {
	return e.kind
}

// StatusCode returns the HTTP status that produced the error, or 0 for
// transport-level failures.
func (e *Error) StatusCode() int {
	return e.statusCode
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.err
}

// Is matches the per-kind sentinels: two *Error values match when the target
// carries no message of its own and the kinds agree.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.message == "" && t.kind == e.kind
}

// WithStatus returns a copy carrying the HTTP status code.
func (e *Error) WithStatus(code int) *Error {
	cp := *e
	cp.statusCode = code
	return &cp
}

// Wrap returns a copy wrapping the given cause.
func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.err = err
	return &cp
}

// genericMessage is used when the error body carries no usable detail.
const genericMessage = "something went wrong; please try again"

// FromStatus normalizes an HTTP error response. The body is the raw response
// payload; its "detail" field may be a plain string or a list of field-level
// validation issues of the form [{"msg": ...}, ...]. Anything else falls back
// to a generic message.
func FromStatus(statusCode int, body []byte) *Error {
	msg := messageFromBody(body)

	var kind Kind
	switch {
	case statusCode == http.StatusUnauthorized:
		kind = KindUnauthorized
		if msg == genericMessage {
			msg = "session expired, please log in again"
		}
	case statusCode == http.StatusForbidden:
		kind = KindForbidden
		if msg == genericMessage {
			msg = "you do not have access to this resource"
		}
	case statusCode >= 400 && statusCode < 500:
		kind = KindValidation
	case statusCode >= 500:
		kind = KindServer
		if msg == genericMessage {
			msg = "the server encountered an error; please try again later"
		}
	default:
		kind = KindUnknown
	}

	return &Error{kind: kind, message: msg, statusCode: statusCode}
}

// FromTransport normalizes a transport-level failure (no response received).
func FromTransport(err error) *Error {
	return &Error{
		kind:    KindNetwork,
		message: fmt.Sprintf("network error: %v", err),
		err:     err,
	}
}

// messageFromBody extracts the human-readable message from a backend error
// payload.
func messageFromBody(body []byte) string {
	detail := gjson.GetBytes(body, "detail")
	switch {
	case detail.Type == gjson.String:
		if s := detail.String(); s != "" {
			return s
		}
	case detail.IsArray():
		var msgs []string
		for _, item := range detail.Array() {
			if m := item.Get("msg").String(); m != "" {
				msgs = append(msgs, m)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return genericMessage
}
