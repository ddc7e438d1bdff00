package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/volatiletech/null/v8"

	"github.com/okian/gradebase/internal/adapters/backend"
	"github.com/okian/gradebase/internal/adapters/repository"
	"github.com/okian/gradebase/internal/domain/model"
	"github.com/okian/gradebase/internal/domain/resolve"
	"github.com/okian/gradebase/internal/domain/scoring"
	"github.com/okian/gradebase/pkg/logger"
	"github.com/okian/gradebase/pkg/metrics"
)

// Write operations as labelled on the write metric.
const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// Create submits a new grade and refetches the table. Scores are clamped
// to the grading scale before submission.
func (s *Service) Create(ctx context.Context, in model.GradeInput) error {
	in.Scores = scoring.ClampScores(in.Scores)
	if err := s.check(in); err != nil {
		metrics.RecordGradeWrite(opCreate, "invalid")
		return err
	}
	_, err := s.backend.CreateGrade(ctx, resolve.Payload(in))
	return s.afterWrite(ctx, opCreate, 0, err)
}

// Update replaces grade id and refetches the table. Section and student ids
// missing from in are taken from the published row.
func (s *Service) Update(ctx context.Context, id int64, in model.GradeInput) error {
	if id <= 0 {
		metrics.RecordGradeWrite(opUpdate, "invalid")
		return guide(ErrInvalidInput, "Select the grade to update.")
	}
	if row, err := s.store.Row(ctx, id); err == nil {
		if !in.SectionID.Valid && row.SectionID > 0 {
			in.SectionID = null.Int64From(row.SectionID)
		}
		if !in.StudentID.Valid && row.StudentID > 0 {
			in.StudentID = null.Int64From(row.StudentID)
		}
	}
	in.Scores = scoring.ClampScores(in.Scores)
	if err := s.check(in); err != nil {
		metrics.RecordGradeWrite(opUpdate, "invalid")
		return err
	}
	_, err := s.backend.UpdateGrade(ctx, id, resolve.Payload(in))
	return s.afterWrite(ctx, opUpdate, id, err)
}

// Delete removes grade id once confirmed is true, then refetches the table.
// Without confirmation nothing is sent.
func (s *Service) Delete(ctx context.Context, id int64, confirmed bool) error {
	if !confirmed {
		metrics.RecordGradeWrite(opDelete, "unconfirmed")
		return ErrDeleteNotConfirmed
	}
	if id <= 0 {
		metrics.RecordGradeWrite(opDelete, "invalid")
		return guide(ErrInvalidInput, "Select the grade to delete.")
	}
	err := s.backend.DeleteGrade(ctx, id)
	return s.afterWrite(ctx, opDelete, id, err)
}

// afterWrite records the outcome of a submission and, on success, refetches.
// A failed refetch does not undo the write. Its error is returned wrapped in
// ErrRefresh, except a roster failure, which still published the rows.
func (s *Service) afterWrite(ctx context.Context, op string, id int64, err error) error {
	if err != nil {
		outcome := "error"
		if errors.Is(err, backend.ErrValidation) {
			outcome = "validation"
		}
		metrics.RecordGradeWrite(op, outcome)
		s.logger.Warn(ctx, "grade write failed",
			logger.String("op", op),
			logger.Int64("id", id),
			logger.Error(err))
		return fmt.Errorf("%s grade: %w", op, err)
	}

	metrics.RecordGradeWrite(op, "ok")
	s.logger.Info(ctx, "grade written", logger.String("op", op), logger.Int64("id", id))

	_, err = s.Refetch(ctx)
	switch {
	case err == nil, errors.Is(err, ErrSuperseded):
		return nil
	case errors.Is(err, ErrRosterUnavailable):
		return fmt.Errorf("after %s: %w", op, err)
	default:
		return fmt.Errorf("%w after %s: %w", ErrRefresh, op, err)
	}
}

// Saved reports whether a write that returned err still went through. That
// is the case when only the refetch that follows it failed.
func Saved(err error) bool {
	return err == nil || errors.Is(err, ErrRefresh) || errors.Is(err, ErrRosterUnavailable)
}

// Draft returns the pending form state.
func (s *Service) Draft() model.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetDraft replaces the pending form state.
func (s *Service) SetDraft(d model.Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = d
}

// ClearDraft empties the pending form state.
func (s *Service) ClearDraft() {
	s.SetDraft(model.Draft{})
}

// Edit loads published grade id into the draft.
func (s *Service) Edit(ctx context.Context, id int64) (model.Draft, error) {
	row, err := s.store.Row(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Draft{}, guide(ErrInvalidInput, "That grade is not in the current table.")
		}
		return model.Draft{}, err
	}
	d := model.DraftFromRow(row)
	s.SetDraft(d)
	return d, nil
}

// Save submits the draft, as an update when it edits a grade and as a create
// otherwise. Success clears the draft unless it changed meanwhile; failure
// leaves it untouched for a retry.
func (s *Service) Save(ctx context.Context) error {
	d := s.Draft()
	if d.Empty() {
		return guide(ErrInvalidInput, "There is nothing to save.")
	}

	var err error
	if d.EditID > 0 {
		err = s.Update(ctx, d.EditID, d.GradeInput)
	} else {
		err = s.Create(ctx, d.GradeInput)
	}
	if !Saved(err) {
		return err
	}

	s.mu.Lock()
	if s.draft == d {
		s.draft = model.Draft{}
	}
	s.mu.Unlock()
	return err
}
