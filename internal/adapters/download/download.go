// Package download writes exported files to a local directory.
package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/gradebase/pkg/logger"
)

// ErrInvalidName is returned for names that do not denote a plain file.
var ErrInvalidName = errors.New("invalid file name")

// Saver stores blobs under one directory.
type Saver struct {
	dir string
	log logger.Logger
}

// Option applies a configuration option to the Saver.
type Option func(*Saver)

// WithLogger sets the saver logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Saver) {
		if l != nil {
			s.log = l
		}
	}
}

// NewSaver returns a saver writing into dir, created on first use.
func NewSaver(dir string, opts ...Option) *Saver {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	s := &Saver{dir: dir, log: logger.Default().Named("download")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save writes data as name inside the saver's directory and returns the
// final path. Directory components in name are dropped. The file appears
// atomically: it is written to a temporary file and renamed.
func (s *Saver) Save(ctx context.Context, name string, data []byte) (string, error) {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+base+".*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close export: %w", err)
	}

	path := filepath.Join(s.dir, base)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename export: %w", err)
	}
	s.log.Info(ctx, "export saved", logger.String("path", path), logger.Int("bytes", len(data)))
	return path, nil
}
