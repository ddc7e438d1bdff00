package api

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/okian/gradebase/internal/domain/model"
	"github.com/okian/gradebase/pkg/logger"
)

// handleSections handles GET /sections.
func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	sections, err := s.wf.Sections(r.Context())
	if err != nil {
		s.writeError(w, r, "api.sections", err)
		return
	}
	writeJSON(w, http.StatusOK, sections)
}

// handleStudents handles GET /sections/{id}/students.
func (s *Server) handleStudents(w http.ResponseWriter, r *http.Request) {
	const op = "api.students"
	id, ok := pathID(r)
	if !ok {
		s.writeError(w, r, op, invalid("section id must be a positive integer"))
		return
	}
	students, err := s.wf.Students(r.Context(), id)
	if err != nil {
		s.writeError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, students)
}

type savedResponse struct {
	Path string `json:"path"`
}

// handleExport handles GET /grades/export/{format}. The file is streamed
// back, or written to the download directory when save=true and one is
// configured.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.export"
	f, err := filterFromQuery(r)
	if err != nil {
		s.writeError(w, r, op, err)
		return
	}
	blob, err := s.wf.Export(r.Context(), r.PathValue("format"), f)
	if err != nil {
		s.writeError(w, r, op, err)
		return
	}

	if save, _ := strconv.ParseBool(r.URL.Query().Get("save")); save && s.saver != nil {
		path, err := s.saver.Save(r.Context(), blob.Name, blob.Data)
		if err != nil {
			s.writeError(w, r, op, err)
			return
		}
		writeJSON(w, http.StatusOK, savedResponse{Path: path})
		return
	}

	ct := blob.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": blob.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(blob.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(blob.Data); err != nil {
		s.logger.Warn(r.Context(), "export write failed", logger.Error(err))
	}
}

// handleRegister handles POST /auth/register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "api.register"
	var reg model.Registration
	if err := decode(r, &reg); err != nil {
		s.writeError(w, r, op, err)
		return
	}
	if err := s.wf.Register(r.Context(), reg); err != nil {
		s.writeError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, writeResponse{Status: "ok"})
}

// handleLogin handles POST /auth/login. Tokens stay with the gateway's
// backend client; only the outcome is returned.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.login"
	var c model.Credentials
	if err := decode(r, &c); err != nil {
		s.writeError(w, r, op, err)
		return
	}
	if _, err := s.wf.Login(r.Context(), c); err != nil {
		s.writeError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, writeResponse{Status: "ok"})
}
