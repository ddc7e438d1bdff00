package api

import (
	"errors"
	"net/http"

	"github.com/okian/gradebase/internal/adapters/backend"
	"github.com/okian/gradebase/internal/adapters/repository"
	service "github.com/okian/gradebase/internal/app"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrUnknownML  = errors.New("unknown prediction kind")
)

// classify maps a workflow error to an HTTP status and a stable code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrUnknownML):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, service.ErrDeleteNotConfirmed):
		return http.StatusBadRequest, "confirmation_required"
	case errors.Is(err, backend.ErrUnsupportedFormat):
		return http.StatusBadRequest, "unsupported_format"
	case errors.Is(err, service.ErrPrecondition):
		return http.StatusUnprocessableEntity, "precondition"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrSuperseded):
		return http.StatusConflict, "superseded"
	case errors.Is(err, backend.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, backend.ErrValidation):
		return http.StatusUnprocessableEntity, "rejected"
	case errors.Is(err, backend.ErrTransport):
		return http.StatusBadGateway, "backend_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
