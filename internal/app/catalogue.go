package service

import (
	"context"
	"fmt"

	"github.com/okian/gradebase/internal/adapters/backend"
	"github.com/okian/gradebase/internal/domain/model"
	"github.com/okian/gradebase/pkg/logger"
)

// Sections returns the section catalogue ordered by course code, then name.
func (s *Service) Sections(ctx context.Context) ([]model.SectionRecord, error) {
	return s.backend.Sections(ctx)
}

// Students returns the roster of one section.
func (s *Service) Students(ctx context.Context, sectionID int64) ([]model.StudentRecord, error) {
	if sectionID <= 0 {
		return nil, guide(ErrInvalidInput, "Select a section.")
	}
	return s.backend.Students(ctx, sectionID)
}

// Export asks the backend for a file of the grades matching f. An unknown
// format fails before any request.
func (s *Service) Export(ctx context.Context, format string, f model.Filter) (backend.Blob, error) {
	ef, err := backend.ParseExportFormat(format)
	if err != nil {
		return backend.Blob{}, err
	}
	blob, err := s.backend.Export(ctx, ef, f.Normalized())
	if err != nil {
		return backend.Blob{}, fmt.Errorf("export %s: %w", ef, err)
	}
	s.logger.Info(ctx, "export ready",
		logger.String("format", string(ef)),
		logger.String("name", blob.Name),
		logger.Int("bytes", len(blob.Data)))
	return blob, nil
}

// Register validates and submits a teacher account request.
func (s *Service) Register(ctx context.Context, r model.Registration) error {
	if err := s.check(r); err != nil {
		return err
	}
	return s.backend.Register(ctx, r)
}

// Login exchanges credentials for tokens.
func (s *Service) Login(ctx context.Context, c model.Credentials) (model.TokenPair, error) {
	if err := s.check(c); err != nil {
		return model.TokenPair{}, err
	}
	return s.backend.Login(ctx, c)
}
