package api

import (
	"net/http"

	service "github.com/okian/gradebase/internal/app"
	"github.com/okian/gradebase/internal/domain/model"
)

func mlKind(r *http.Request) (service.MLKind, error) {
	switch k := service.MLKind(r.PathValue("kind")); k {
	case service.KindProjection, service.KindRisk:
		return k, nil
	default:
		return "", ErrUnknownML
	}
}

// handleRunML handles POST /ml/{kind}. The body is the filter naming the
// section; an empty body uses the active filter.
func (s *Server) handleRunML(w http.ResponseWriter, r *http.Request) {
	const op = "api.run_ml"
	kind, err := mlKind(r)
	if err != nil {
		s.writeError(w, r, op, err)
		return
	}
	var f model.Filter
	present, err := decodeOptional(r, &f)
	if err != nil {
		s.writeError(w, r, op, err)
		return
	}
	if !present {
		f = s.wf.View(r.Context()).Filter
	}

	var res any
	switch kind {
	case service.KindProjection:
		res, err = s.wf.RunProjection(r.Context(), f)
	case service.KindRisk:
		res, err = s.wf.RunRisk(r.Context(), f)
	}
	if err != nil {
		s.writeError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleMLStatus handles GET /ml/{kind}.
func (s *Server) handleMLStatus(w http.ResponseWriter, r *http.Request) {
	kind, err := mlKind(r)
	if err != nil {
		s.writeError(w, r, "api.ml_status", err)
		return
	}
	writeJSON(w, http.StatusOK, s.wf.MLStatus(kind))
}

// handleResetML handles DELETE /ml/{kind}. The other overlay is kept.
func (s *Server) handleResetML(w http.ResponseWriter, r *http.Request) {
	kind, err := mlKind(r)
	if err != nil {
		s.writeError(w, r, "api.reset_ml", err)
		return
	}
	if kind == service.KindProjection {
		s.wf.ResetProjection()
	} else {
		s.wf.ResetRisk()
	}
	w.WriteHeader(http.StatusNoContent)
}
