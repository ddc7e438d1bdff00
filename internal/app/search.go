package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/okian/gradebase/internal/adapters/repository"
	"github.com/okian/gradebase/internal/domain/model"
	"github.com/okian/gradebase/internal/domain/resolve"
	"github.com/okian/gradebase/internal/domain/roster"
	"github.com/okian/gradebase/pkg/logger"
	"github.com/okian/gradebase/pkg/metrics"
)

// Search outcomes recorded on the search metric.
const (
	searchOK         = "ok"
	searchPartial    = "partial"
	searchError      = "error"
	searchSuperseded = "superseded"
)

// Search fetches the grades matching f, backfills missing identities from
// the section roster and publishes the result as the table. The roster is
// only fetched when some row lacks a code or name and f selects a section by
// id.
//
// A grade fetch failure clears the table. A roster failure still publishes
// the unreconciled rows and returns ErrRosterUnavailable. A search that a
// newer one overtook publishes nothing and returns ErrSuperseded.
func (s *Service) Search(ctx context.Context, f model.Filter) ([]model.GradeRow, error) {
	f = f.Normalized()
	gen := s.begin(ctx, f)
	log := s.logger.Named("search")

	raws, err := s.backend.Grades(ctx, f)
	if err != nil {
		return nil, s.fail(ctx, gen, f, fmt.Errorf("fetch grades: %w", err))
	}
	rows := resolve.ResolveAll(raws, f)

	var rosterErr error
	incomplete := roster.Incomplete(rows)
	metrics.RecordRowsIncomplete(incomplete)
	if incomplete > 0 && f.HasSection() {
		if !s.advance(gen, StateLoadingRoster) {
			metrics.RecordSearch(searchSuperseded)
			return nil, ErrSuperseded
		}
		rosterErr = s.reconcile(ctx, f.SectionID, rows)
	}

	if err := s.store.Publish(ctx, gen, f, rows); err != nil {
		if errors.Is(err, repository.ErrStale) {
			metrics.RecordSearch(searchSuperseded)
			return nil, ErrSuperseded
		}
		return nil, s.fail(ctx, gen, f, err)
	}

	s.mu.Lock()
	if gen == s.searchGen {
		s.state = StateReady
		s.lastErr = rosterErr
	}
	s.mu.Unlock()

	outcome := searchOK
	if rosterErr != nil {
		outcome = searchPartial
	}
	metrics.RecordSearch(outcome)
	log.Debug(ctx, "rows published",
		logger.Uint64("generation", gen),
		logger.Int("rows", len(rows)),
		logger.String("outcome", outcome))
	return rows, rosterErr
}

// Refetch repeats the search for the active filter.
func (s *Service) Refetch(ctx context.Context) ([]model.GradeRow, error) {
	return s.Search(ctx, s.Filter())
}

// begin reserves a generation for a search on f. Changing the scope drops
// both overlays.
func (s *Service) begin(ctx context.Context, f model.Filter) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !f.SameScope(s.filter) {
		s.epoch++
		s.resetOverlayLocked(KindProjection)
		s.resetOverlayLocked(KindRisk)
	}
	s.searchGen = s.store.Begin(ctx)
	s.filter = f
	s.state = StateLoadingGrades
	s.lastErr = nil
	return s.searchGen
}

// advance moves the latest search to next. It reports false when gen is no
// longer the latest search.
func (s *Service) advance(gen uint64, next State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.searchGen {
		return false
	}
	s.state = next
	return true
}

// fail clears the table on behalf of search gen and returns the error to
// report.
func (s *Service) fail(ctx context.Context, gen uint64, f model.Filter, err error) error {
	if cerr := s.store.Clear(ctx, gen, f); errors.Is(cerr, repository.ErrStale) {
		metrics.RecordSearch(searchSuperseded)
		return ErrSuperseded
	}

	s.mu.Lock()
	if gen == s.searchGen {
		s.state = StateIdle
		s.lastErr = err
	}
	s.mu.Unlock()

	metrics.RecordSearch(searchError)
	metrics.RecordErrorByComponent("workflow", "search")
	s.logger.Warn(ctx, "search failed", logger.Uint64("generation", gen), logger.Error(err))
	return err
}

// reconcile fetches the roster of sectionID and fills identities in rows.
// Concurrent searches on the same section share one roster request.
func (s *Service) reconcile(ctx context.Context, sectionID int64, rows []model.GradeRow) error {
	v, err, shared := s.rosters.Do(strconv.FormatInt(sectionID, 10), func() (any, error) {
		return s.backend.Students(ctx, sectionID)
	})
	if err != nil {
		metrics.RecordErrorByComponent("workflow", "roster")
		s.logger.Warn(ctx, "roster unavailable",
			logger.Int64("section", sectionID),
			logger.Error(err))
		return fmt.Errorf("%w: %w", ErrRosterUnavailable, err)
	}

	rep := roster.Reconcile(rows, roster.Build(v.([]model.StudentRecord)))
	rep.Each(metrics.RecordRosterLookups)
	s.logger.Debug(ctx, "rows reconciled",
		logger.Int64("section", sectionID),
		logger.Bool("shared", shared),
		logger.Int("by_id", rep.ByID),
		logger.Int("by_code", rep.ByCode),
		logger.Int("unresolved", rep.Unresolved))
	return nil
}
