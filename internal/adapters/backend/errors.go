package backend

import (
	"errors"
	"fmt"
)

// Sentinel kinds for backend failures. Every error returned by Client wraps
// exactly one of ErrTransport, ErrValidation or ErrUnauthorized.
var (
	ErrTransport         = errors.New("backend unreachable or failed")
	ErrValidation        = errors.New("request rejected by backend")
	ErrUnauthorized      = errors.New("not authorized")
	ErrUnsupportedFormat = errors.New("unsupported export format")

	errMissingAccess = errors.New("token response has no access token")
)

// Error describes one failed round-trip.
type Error struct {
	Op      string
	Status  int
	Message string
	Kind    error
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Kind != nil {
		msg = e.Kind.Error()
	}
	switch {
	case e.Status > 0 && e.Err != nil:
		return fmt.Sprintf("%s: status %d: %s: %v", e.Op, e.Status, msg, e.Err)
	case e.Status > 0:
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}
