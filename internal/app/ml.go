package service

import (
	"context"
	"fmt"

	"github.com/okian/gradebase/internal/domain/model"
	"github.com/okian/gradebase/internal/domain/overlay"
	"github.com/okian/gradebase/pkg/logger"
	"github.com/okian/gradebase/pkg/metrics"
)

// RunProjection runs the projection model for the section f identifies and
// replaces the projection overlay with its predictions.
func (s *Service) RunProjection(ctx context.Context, f model.Filter) (model.Projection, error) {
	f, gen, epoch, err := s.startML(ctx, KindProjection, f)
	if err != nil {
		return model.Projection{}, err
	}

	res, err := s.backend.Projection(ctx, f)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.finishMLLocked(ctx, KindProjection, gen, epoch, res.Model, err); err != nil {
		return model.Projection{}, err
	}
	s.proj = overlay.Build(res.Predictions)
	metrics.UpdateOverlayEntries(string(KindProjection), len(s.proj))
	return res, nil
}

// RunRisk runs the risk model for the section f identifies and replaces the
// risk overlay with its predictions.
func (s *Service) RunRisk(ctx context.Context, f model.Filter) (model.Risk, error) {
	f, gen, epoch, err := s.startML(ctx, KindRisk, f)
	if err != nil {
		return model.Risk{}, err
	}

	res, err := s.backend.Risk(ctx, f)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.finishMLLocked(ctx, KindRisk, gen, epoch, res.Model, err); err != nil {
		return model.Risk{}, err
	}
	s.risk = overlay.Build(res.Predictions)
	metrics.UpdateOverlayEntries(string(KindRisk), len(s.risk))
	return res, nil
}

// ResetProjection drops the projection overlay. The risk overlay is kept.
func (s *Service) ResetProjection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetOverlayLocked(KindProjection)
}

// ResetRisk drops the risk overlay. The projection overlay is kept.
func (s *Service) ResetRisk() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetOverlayLocked(KindRisk)
}

// startML checks the preconditions of a run without touching the network
// and marks the overlay as loading. An empty filter means the active one.
// The run must target the scope of the published table, since its
// predictions are shown on those rows.
func (s *Service) startML(ctx context.Context, kind MLKind, f model.Filter) (model.Filter, uint64, uint64, error) {
	f = f.Normalized()
	if f.SameScope(model.Filter{}) {
		f = s.Filter()
	}
	if !f.IdentifiesSection() {
		metrics.RecordMLRun(string(kind), "precondition")
		return f, 0, 0, guide(ErrPrecondition, MsgSelectSection)
	}
	snap := s.store.Snapshot(ctx)
	if !f.SameScope(snap.Filter) {
		metrics.RecordMLRun(string(kind), "precondition")
		return f, 0, 0, guide(ErrPrecondition, MsgSearchFirst)
	}
	if s.mlMinRows > 0 && snap.Len() < s.mlMinRows {
		metrics.RecordMLRun(string(kind), "precondition")
		return f, 0, 0, guide(ErrPrecondition, MsgNotEnoughRows)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	slot := s.ml[kind]
	slot.gen++
	slot.state = MLLoading
	slot.err = nil
	return f, slot.gen, s.epoch, nil
}

// finishMLLocked records the outcome of run gen. A failed run empties its
// overlay. A run that is no longer the latest of its kind, or that started
// under another filter, is discarded with ErrSuperseded.
func (s *Service) finishMLLocked(ctx context.Context, kind MLKind, gen, epoch uint64, info model.ModelInfo, err error) error {
	slot := s.ml[kind]
	if slot.gen != gen || s.epoch != epoch {
		metrics.RecordMLRun(string(kind), "superseded")
		return ErrSuperseded
	}
	if err != nil {
		slot.state = MLError
		slot.err = err
		slot.model = nil
		s.dropOverlayLocked(kind)
		metrics.RecordMLRun(string(kind), "error")
		metrics.RecordErrorByComponent("workflow", "ml")
		s.logger.Warn(ctx, "ml run failed", logger.String("kind", string(kind)), logger.Error(err))
		return fmt.Errorf("run %s: %w", kind, err)
	}
	slot.state = MLReady
	slot.model = info
	metrics.RecordMLRun(string(kind), "ok")
	return nil
}

func (s *Service) resetOverlayLocked(kind MLKind) {
	slot := s.ml[kind]
	slot.gen++
	slot.state = MLIdle
	slot.model = nil
	slot.err = nil
	s.dropOverlayLocked(kind)
}

func (s *Service) dropOverlayLocked(kind MLKind) {
	switch kind {
	case KindProjection:
		s.proj = nil
	case KindRisk:
		s.risk = nil
	}
	metrics.UpdateOverlayEntries(string(kind), 0)
}
