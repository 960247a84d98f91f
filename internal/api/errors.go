package api

import (
	"errors"
	"fmt"

	"github.com/phrazzld/scry-words/internal/domain"
)

// Error kinds. Every error returned by Client matches exactly one of them
// under errors.Is.
var (
	// ErrCommunication covers unreachable servers, timeouts and responses
	// that cannot be parsed.
	ErrCommunication = errors.New("communication error")

	// ErrServer is a non-success status carrying a server-supplied message.
	ErrServer = errors.New("server error")

	// ErrNotFound is a 404 for the requested user or word.
	ErrNotFound = errors.New("not found")

	// ErrValidation is malformed input rejected before any request is sent.
	ErrValidation = domain.ErrValidation
)

// User-facing fallback messages.
const (
	MessageCommunication = "failed to communicate with server"
	MessageRequestFailed = "request failed"
)

// Error is the normalized failure of one API operation: a user-facing
// Message plus the underlying cause.
type Error struct {
	Op      string // operation name, e.g. "get_user"
	Status  int    // HTTP status, 0 when no response was received
	Message string // user-facing message
	Kind    error  // one of the Err* kinds above
	Err     error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Message
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Message returns the text to show a user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// KindOf returns the kind of err, or nil when err did not come from Client.
func KindOf(err error) error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return nil
}

// StatusOf returns the HTTP status attached to err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
