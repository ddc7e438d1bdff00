package service

import (
	"github.com/okian/gradebase/internal/adapters/repository"
	"github.com/okian/gradebase/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore replaces the published-row store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithMLMinRows sets how many published rows an ML run needs. Zero disables
// the check.
func WithMLMinRows(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.mlMinRows = n
		}
	}
}
