// Package service sequences the grade workflow: fetch, reconcile and
// publish rows; submit writes and refetch; run ML overlays.
package service

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"github.com/okian/gradebase/internal/adapters/backend"
	"github.com/okian/gradebase/internal/adapters/repository"
	"github.com/okian/gradebase/internal/domain/model"
	"github.com/okian/gradebase/internal/domain/overlay"
	"github.com/okian/gradebase/pkg/logger"
)

// Backend is the transport the workflow depends on.
type Backend interface {
	Grades(ctx context.Context, f model.Filter) ([]model.RawRecord, error)
	Students(ctx context.Context, sectionID int64) ([]model.StudentRecord, error)
	Sections(ctx context.Context) ([]model.SectionRecord, error)

	CreateGrade(ctx context.Context, body map[string]any) (model.RawRecord, error)
	UpdateGrade(ctx context.Context, id int64, body map[string]any) (model.RawRecord, error)
	DeleteGrade(ctx context.Context, id int64) error

	Export(ctx context.Context, format backend.ExportFormat, f model.Filter) (backend.Blob, error)

	Projection(ctx context.Context, f model.Filter) (model.Projection, error)
	Risk(ctx context.Context, f model.Filter) (model.Risk, error)

	Register(ctx context.Context, r model.Registration) error
	Login(ctx context.Context, c model.Credentials) (model.TokenPair, error)
}

// mlSlot is the state of one overlay kind.
type mlSlot struct {
	state MLState
	gen   uint64
	model model.ModelInfo
	err   error
}

// Service is the grade workflow controller. It is safe for concurrent use;
// no lock is held across a backend call.
type Service struct {
	mu sync.Mutex

	backend  Backend
	store    repository.Store
	rosters  singleflight.Group
	validate *validator.Validate

	mlMinRows int

	// guarded by mu
	state     State
	searchGen uint64
	filter    model.Filter
	lastErr   error
	draft     model.Draft
	epoch     uint64
	ml        map[MLKind]*mlSlot
	proj      overlay.Projections
	risk      overlay.Risks

	logger logger.Logger
}

// New constructs a Service over b.
func New(b Backend, opts ...Option) *Service {
	s := &Service{
		backend:   b,
		validate:  newValidator(),
		mlMinRows: 5,
		ml: map[MLKind]*mlSlot{
			KindProjection: {},
			KindRisk:       {},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewRowStore()
	}
	if s.logger == nil {
		s.logger = logger.Default().Named("workflow")
	}
	return s
}

// State returns the grade-fetch state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Filter returns the active filter.
func (s *Service) Filter() model.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Err returns the failure of the latest search, if any.
func (s *Service) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
