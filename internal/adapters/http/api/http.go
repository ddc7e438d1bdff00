// Package api exposes the grade workflow over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/gradebase/internal/adapters/backend"
	"github.com/okian/gradebase/internal/adapters/download"
	service "github.com/okian/gradebase/internal/app"
	"github.com/okian/gradebase/internal/domain/model"
	"github.com/okian/gradebase/pkg/logger"
)

// Workflow is the grade workflow the handlers drive. *service.Service
// satisfies it.
type Workflow interface {
	Search(ctx context.Context, f model.Filter) ([]model.GradeRow, error)
	Refetch(ctx context.Context) ([]model.GradeRow, error)
	View(ctx context.Context) service.View

	Create(ctx context.Context, in model.GradeInput) error
	Update(ctx context.Context, id int64, in model.GradeInput) error
	Delete(ctx context.Context, id int64, confirmed bool) error
	Draft() model.Draft
	SetDraft(d model.Draft)
	ClearDraft()
	Edit(ctx context.Context, id int64) (model.Draft, error)
	Save(ctx context.Context) error

	RunProjection(ctx context.Context, f model.Filter) (model.Projection, error)
	RunRisk(ctx context.Context, f model.Filter) (model.Risk, error)
	ResetProjection()
	ResetRisk()
	MLStatus(kind service.MLKind) service.MLStatus

	Sections(ctx context.Context) ([]model.SectionRecord, error)
	Students(ctx context.Context, sectionID int64) ([]model.StudentRecord, error)
	Export(ctx context.Context, format string, f model.Filter) (backend.Blob, error)
	Register(ctx context.Context, r model.Registration) error
	Login(ctx context.Context, c model.Credentials) (model.TokenPair, error)
}

// Server wires HTTP routes for the grade workflow.
type Server struct {
	wf     Workflow
	saver  *download.Saver
	logger logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithSaver stores exports on disk when a request asks for it.
func WithSaver(s *download.Saver) Option {
	return func(srv *Server) {
		srv.saver = s
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(srv *Server) {
		if l != nil {
			srv.logger = l
		}
	}
}

// NewServer creates a new API server.
func NewServer(wf Workflow, opts ...Option) *Server {
	s := &Server{
		wf:     wf,
		logger: logger.Default().Named("api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("GET /healthz", MetricsMiddleware(handleHealth, "healthz"))
	mux.Handle("GET /metrics", metricsHandler())

	mux.HandleFunc("GET /grades", MetricsMiddleware(s.handleView, "grades"))
	mux.HandleFunc("POST /grades/search", MetricsMiddleware(s.handleSearch, "grades_search"))
	mux.HandleFunc("POST /grades/refresh", MetricsMiddleware(s.handleRefresh, "grades_refresh"))
	mux.HandleFunc("POST /grades", MetricsMiddleware(s.handleCreate, "grades_create"))
	mux.HandleFunc("PUT /grades/{id}", MetricsMiddleware(s.handleUpdate, "grades_update"))
	mux.HandleFunc("DELETE /grades/{id}", MetricsMiddleware(s.handleDelete, "grades_delete"))
	mux.HandleFunc("GET /grades/export/{format}", MetricsMiddleware(s.handleExport, "grades_export"))

	mux.HandleFunc("GET /draft", MetricsMiddleware(s.handleGetDraft, "draft"))
	mux.HandleFunc("PUT /draft", MetricsMiddleware(s.handlePutDraft, "draft"))
	mux.HandleFunc("DELETE /draft", MetricsMiddleware(s.handleClearDraft, "draft"))
	mux.HandleFunc("POST /draft/edit/{id}", MetricsMiddleware(s.handleEdit, "draft_edit"))
	mux.HandleFunc("POST /draft/save", MetricsMiddleware(s.handleSave, "draft_save"))

	mux.HandleFunc("POST /ml/{kind}", MetricsMiddleware(s.handleRunML, "ml_run"))
	mux.HandleFunc("GET /ml/{kind}", MetricsMiddleware(s.handleMLStatus, "ml_status"))
	mux.HandleFunc("DELETE /ml/{kind}", MetricsMiddleware(s.handleResetML, "ml_reset"))

	mux.HandleFunc("GET /sections", MetricsMiddleware(s.handleSections, "sections"))
	mux.HandleFunc("GET /sections/{id}/students", MetricsMiddleware(s.handleStudents, "students"))
	mux.HandleFunc("POST /auth/register", MetricsMiddleware(s.handleRegister, "auth_register"))
	mux.HandleFunc("POST /auth/login", MetricsMiddleware(s.handleLogin, "auth_login"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeResponse is the body of a successful write.
type writeResponse struct {
	Status  string `json:"status"`
	Warning string `json:"warning,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status and a user-facing message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", logger.String("op", op), logger.Error(err))
	} else {
		s.logger.Debug(r.Context(), "request rejected", logger.String("op", op), logger.Error(err))
	}
	msg := service.UserMessage(err)
	if errors.Is(err, ErrBadRequest) {
		msg = strings.TrimPrefix(err.Error(), ErrBadRequest.Error()+": ")
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrBadRequest}, args...)...)
}

func decode(r *http.Request, v any) error {
	present, err := decodeOptional(r, v)
	if err != nil {
		return err
	}
	if !present {
		return invalid("request body is required")
	}
	return nil
}

// decodeOptional is decode for routes where the body may be omitted. It
// reports whether a body was present. Content length is not trusted, since
// chunked requests report -1.
func decodeOptional(r *http.Request, v any) (bool, error) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, invalid("malformed JSON body: %v", err)
	}
	return true, nil
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// filterFromQuery reads a filter from the query string. Numeric keys that do
// not parse are reported.
func filterFromQuery(r *http.Request) (model.Filter, error) {
	q := r.URL.Query()
	f := model.Filter{
		CourseCode:  q.Get("course"),
		SectionName: q.Get("section"),
		StudentCode: q.Get("student"),
	}
	ints := []struct {
		key string
		dst func(int64)
	}{
		{"section_id", func(v int64) { f.SectionID = v }},
		{"page", func(v int64) { f.Page = int(v) }},
		{"page_size", func(v int64) { f.PageSize = int(v) }},
	}
	for _, p := range ints {
		raw := q.Get(p.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			return model.Filter{}, invalid("%s must be a non-negative integer", p.key)
		}
		p.dst(v)
	}
	return f.Normalized(), nil
}
