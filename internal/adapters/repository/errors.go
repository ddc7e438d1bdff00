package repository

import "errors"

// Sentinel kinds for row store errors.
var (
	ErrNotFound = errors.New("grade not in published table")
	ErrStale    = errors.New("stale search generation")
)
