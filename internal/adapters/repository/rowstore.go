package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/gradebase/internal/domain/model"
	"github.com/okian/gradebase/pkg/metrics"
)

// RowStore is the in-memory Store. Readers load the current snapshot without
// locking; writers serialize on mu so the generation check and the swap are
// one step.
type RowStore struct {
	mu       sync.Mutex
	latest   atomic.Uint64
	snapshot atomic.Pointer[Snapshot]
	now      func() time.Time
}

var _ Store = (*RowStore)(nil)

// NewRowStore constructs an empty store at generation zero.
func NewRowStore(opts ...Option) *RowStore {
	s := &RowStore{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.snapshot.Store(newSnapshot(0, model.Filter{}, nil, time.Time{}))
	return s
}

// Begin implements Store.Begin.
func (s *RowStore) Begin(ctx context.Context) uint64 {
	return s.latest.Add(1)
}

// Latest implements Store.Latest.
func (s *RowStore) Latest(ctx context.Context) uint64 {
	return s.latest.Load()
}

// Publish implements Store.Publish.
func (s *RowStore) Publish(ctx context.Context, gen uint64, filter model.Filter, rows []model.GradeRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.latest.Load() {
		return ErrStale
	}
	s.snapshot.Store(newSnapshot(gen, filter, rows, s.now()))
	metrics.UpdateRowsPublished(len(rows))
	return nil
}

// Clear implements Store.Clear.
func (s *RowStore) Clear(ctx context.Context, gen uint64, filter model.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.latest.Load() {
		return ErrStale
	}
	s.snapshot.Store(newSnapshot(gen, filter, nil, s.now()))
	metrics.UpdateRowsPublished(0)
	return nil
}

// Snapshot implements Store.Snapshot.
func (s *RowStore) Snapshot(ctx context.Context) *Snapshot {
	return s.snapshot.Load()
}

// Row implements Store.Row.
func (s *RowStore) Row(ctx context.Context, id int64) (model.GradeRow, error) {
	r, ok := s.snapshot.Load().Row(id)
	if !ok {
		return model.GradeRow{}, ErrNotFound
	}
	return r, nil
}

// Count implements Store.Count.
func (s *RowStore) Count(ctx context.Context) int {
	return s.snapshot.Load().Len()
}
