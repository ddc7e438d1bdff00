package api

import (
	"errors"
	"net/http"
	"strconv"

	service "github.com/okian/gradebase/internal/app"
	"github.com/okian/gradebase/internal/domain/model"
)

// handleView handles GET /grades. It returns the published table with both
// overlays and never contacts the backend.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.wf.View(r.Context()))
}

// handleSearch handles POST /grades/search. The body is a filter; an empty
// body searches without one.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	const op = "api.search"
	var f model.Filter
	if _, err := decodeOptional(r, &f); err != nil {
		s.writeError(w, r, op, err)
		return
	}
	_, err := s.wf.Search(r.Context(), f)
	s.respondView(w, r, op, err)
}

// handleRefresh handles POST /grades/refresh by repeating the active search.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	_, err := s.wf.Refetch(r.Context())
	s.respondView(w, r, "api.refresh", err)
}

// respondView answers a search. A roster failure still published rows, so
// the view is returned with its message instead of an error status.
func (s *Server) respondView(w http.ResponseWriter, r *http.Request, op string, err error) {
	if err != nil && !errors.Is(err, service.ErrRosterUnavailable) {
		s.writeError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, s.wf.View(r.Context()))
}

// handleCreate handles POST /grades.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create"
	var in model.GradeInput
	if err := decode(r, &in); err != nil {
		s.writeError(w, r, op, err)
		return
	}
	s.respondWrite(w, r, op, http.StatusCreated, s.wf.Create(r.Context(), in))
}

// handleUpdate handles PUT /grades/{id}.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update"
	id, ok := pathID(r)
	if !ok {
		s.writeError(w, r, op, invalid("grade id must be a positive integer"))
		return
	}
	var in model.GradeInput
	if err := decode(r, &in); err != nil {
		s.writeError(w, r, op, err)
		return
	}
	s.respondWrite(w, r, op, http.StatusOK, s.wf.Update(r.Context(), id, in))
}

// handleDelete handles DELETE /grades/{id}?confirm=true.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete"
	id, ok := pathID(r)
	if !ok {
		s.writeError(w, r, op, invalid("grade id must be a positive integer"))
		return
	}
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	s.respondWrite(w, r, op, http.StatusOK, s.wf.Delete(r.Context(), id, confirmed))
}

// respondWrite answers a write. A write that went through but whose refetch
// failed is reported as a success with a warning.
func (s *Server) respondWrite(w http.ResponseWriter, r *http.Request, op string, status int, err error) {
	if !service.Saved(err) {
		s.writeError(w, r, op, err)
		return
	}
	writeJSON(w, status, writeResponse{Status: "ok", Warning: service.UserMessage(err)})
}

// handleGetDraft handles GET /draft.
func (s *Server) handleGetDraft(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.wf.Draft())
}

// handlePutDraft handles PUT /draft.
func (s *Server) handlePutDraft(w http.ResponseWriter, r *http.Request) {
	var d model.Draft
	if err := decode(r, &d); err != nil {
		s.writeError(w, r, "api.put_draft", err)
		return
	}
	s.wf.SetDraft(d)
	writeJSON(w, http.StatusOK, d)
}

// handleClearDraft handles DELETE /draft.
func (s *Server) handleClearDraft(w http.ResponseWriter, _ *http.Request) {
	s.wf.ClearDraft()
	w.WriteHeader(http.StatusNoContent)
}

// handleEdit handles POST /draft/edit/{id}.
func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	const op = "api.edit"
	id, ok := pathID(r)
	if !ok {
		s.writeError(w, r, op, invalid("grade id must be a positive integer"))
		return
	}
	d, err := s.wf.Edit(r.Context(), id)
	if err != nil {
		s.writeError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleSave handles POST /draft/save.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	s.respondWrite(w, r, "api.save", http.StatusOK, s.wf.Save(r.Context()))
}
