package service

import (
	"context"
	"time"

	"github.com/okian/gradebase/internal/domain/model"
	"github.com/okian/gradebase/internal/domain/overlay"
)

// MLStatus describes one overlay.
type MLStatus struct {
	State   MLState         `json:"state"`
	Model   model.ModelInfo `json:"model,omitempty"`
	Entries int             `json:"entries"`
	Error   string          `json:"error,omitempty"`
}

// View is what the table shows: the published rows annotated with both
// overlays, plus the workflow state.
type View struct {
	State       State           `json:"state"`
	Filter      model.Filter    `json:"filter"`
	Generation  uint64          `json:"generation"`
	PublishedAt time.Time       `json:"published_at"`
	Rows        []model.ViewRow `json:"rows"`
	Projection  MLStatus        `json:"projection"`
	Risk        MLStatus        `json:"risk"`
	Error       string          `json:"error,omitempty"`
}

// View renders the current table. Rows are copies; the overlays are
// consulted by student code and never merged into them.
func (s *Service) View(ctx context.Context) View {
	snap := s.store.Snapshot(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		State:       s.state,
		Filter:      s.filter,
		Generation:  snap.Generation,
		PublishedAt: snap.PublishedAt,
		Rows:        overlay.Annotate(snap.Rows(), s.proj, s.risk),
		Projection:  s.statusLocked(KindProjection, len(s.proj)),
		Risk:        s.statusLocked(KindRisk, len(s.risk)),
		Error:       UserMessage(s.lastErr),
	}
}

// MLStatus returns the state of one overlay.
func (s *Service) MLStatus(kind MLKind) MLStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.risk)
	if kind == KindProjection {
		n = len(s.proj)
	}
	return s.statusLocked(kind, n)
}

func (s *Service) statusLocked(kind MLKind, entries int) MLStatus {
	slot, ok := s.ml[kind]
	if !ok {
		return MLStatus{}
	}
	return MLStatus{
		State:   slot.state,
		Model:   slot.model,
		Entries: entries,
		Error:   UserMessage(slot.err),
	}
}

// Projection returns the projection for a student code, if the overlay has one.
func (s *Service) Projection(code string) *model.ProjectionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proj.Lookup(code)
}

// Risk returns the risk classification for a student code, if the overlay has one.
func (s *Service) Risk(code string) *model.RiskResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.risk.Lookup(code)
}
