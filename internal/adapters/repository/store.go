// Package repository holds the published grade table behind a
// request-generation guard.
package repository

import (
	"context"
	"time"

	"github.com/okian/gradebase/internal/domain/model"
)

// Store owns the table currently shown to the user. Searches reserve a
// generation with Begin and may only publish or clear under the latest one,
// so a slow search can never overwrite the result of a newer one.
type Store interface {
	// Begin reserves and returns the next generation.
	Begin(ctx context.Context) uint64

	// Latest returns the most recently reserved generation.
	Latest(ctx context.Context) uint64

	// Publish replaces the table wholesale. Returns ErrStale if gen is not
	// the latest reserved generation.
	Publish(ctx context.Context, gen uint64, filter model.Filter, rows []model.GradeRow) error

	// Clear empties the table, keeping filter as the active scope.
	// Returns ErrStale if gen is not the latest.
	Clear(ctx context.Context, gen uint64, filter model.Filter) error

	// Snapshot returns the current immutable table. Never nil.
	Snapshot(ctx context.Context) *Snapshot

	// Row returns one published row by grade id.
	// Returns ErrNotFound if it is not in the table.
	Row(ctx context.Context, id int64) (model.GradeRow, error)

	// Count returns the number of published rows.
	Count(ctx context.Context) int
}

// Snapshot is one published table.
type Snapshot struct {
	Generation  uint64
	Filter      model.Filter
	PublishedAt time.Time

	rows []model.GradeRow
	byID map[int64]int
}

func newSnapshot(gen uint64, filter model.Filter, rows []model.GradeRow, at time.Time) *Snapshot {
	s := &Snapshot{
		Generation:  gen,
		Filter:      filter,
		PublishedAt: at,
		rows:        append([]model.GradeRow(nil), rows...),
		byID:        make(map[int64]int, len(rows)),
	}
	for i, r := range s.rows {
		if r.ID != 0 {
			s.byID[r.ID] = i
		}
	}
	return s
}

// Rows returns a copy of the published rows in backend order.
func (s *Snapshot) Rows() []model.GradeRow {
	return append([]model.GradeRow(nil), s.rows...)
}

// Len returns the number of rows.
func (s *Snapshot) Len() int { return len(s.rows) }

// Row looks a row up by grade id.
func (s *Snapshot) Row(id int64) (model.GradeRow, bool) {
	i, ok := s.byID[id]
	if !ok {
		return model.GradeRow{}, false
	}
	return s.rows[i], true
}
