package repository

import "time"

// Option applies a configuration option to the RowStore.
type Option func(*RowStore)

// WithClock sets the time source used to stamp published snapshots.
func WithClock(now func() time.Time) Option {
	return func(s *RowStore) {
		if now != nil {
			s.now = now
		}
	}
}

