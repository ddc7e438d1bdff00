package service

import (
	"errors"

	"github.com/okian/gradebase/internal/adapters/backend"
)

// Sentinel kinds for workflow failures.
var (
	ErrPrecondition       = errors.New("precondition not met")
	ErrDeleteNotConfirmed = errors.New("delete not confirmed")
	ErrSuperseded         = errors.New("superseded by a newer request")
	ErrRosterUnavailable  = errors.New("roster unavailable")
	ErrInvalidInput       = errors.New("invalid input")
	ErrRefresh            = errors.New("refresh failed")
)

// Guidance messages for precondition failures.
const (
	MsgSelectSection = "Select a section, or a course and a section name, before running predictions."
	MsgNotEnoughRows = "There are not enough grade rows in this section to run predictions."
	MsgSearchFirst   = "Search this section before running predictions."
)

// guidance is a failure that carries the message to show the user.
type guidance struct {
	kind error
	msg  string
}

func (g *guidance) Error() string { return g.kind.Error() + ": " + g.msg }
func (g *guidance) Unwrap() error { return g.kind }

func guide(kind error, msg string) error {
	return &guidance{kind: kind, msg: msg}
}

// UserMessage renders err as a short message for the person at the screen.
// Backend validation details are passed through verbatim.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrRefresh) {
		return "The change was saved but the table could not be refreshed."
	}

	var g *guidance
	if errors.As(err, &g) {
		return g.msg
	}
	var be *backend.Error
	if errors.As(err, &be) && errors.Is(err, backend.ErrValidation) {
		if be.Message != "" {
			return be.Message
		}
		return "The backend rejected the request. Check the values and try again."
	}

	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		return "Your session has expired. Sign in again."
	case errors.Is(err, ErrDeleteNotConfirmed):
		return "Confirm the deletion to continue."
	case errors.Is(err, ErrSuperseded):
		return "A newer request replaced this one."
	case errors.Is(err, ErrRosterUnavailable):
		return "Grades were loaded but student names could not be recovered."
	case errors.Is(err, backend.ErrUnsupportedFormat):
		return "Choose csv, xlsx or pdf."
	case errors.Is(err, backend.ErrTransport):
		return "Could not reach the grades service. Try again."
	default:
		return "Something went wrong. Try again."
	}
}
