// Package overlay keys ML results by student code so they can annotate rows
// at render time without touching the rows themselves.
package overlay

import "github.com/okian/gradebase/internal/domain/model"

// Overlay maps a student code to its prediction.
type Overlay[T model.Keyed] map[string]T

// Projections is the overlay of projected final grades.
type Projections = Overlay[model.ProjectionResult]

// Risks is the overlay of risk classifications.
type Risks = Overlay[model.RiskResult]

// Build keys results by student code. A later result for the same code
// replaces an earlier one; results without a code are skipped.
func Build[T model.Keyed](results []T) Overlay[T] {
	o := make(Overlay[T], len(results))
	for _, r := range results {
		if k := r.Key(); k != "" {
			o[k] = r
		}
	}
	return o
}

// Lookup returns a copy of the prediction for code, or nil.
func (o Overlay[T]) Lookup(code string) *T {
	if code == "" {
		return nil
	}
	v, ok := o[code]
	if !ok {
		return nil
	}
	return &v
}

// Annotate pairs each row with the predictions known for its student. The
// rows are copied; neither overlay is required.
func Annotate(rows []model.GradeRow, proj Projections, risk Risks) []model.ViewRow {
	out := make([]model.ViewRow, len(rows))
	for i, r := range rows {
		out[i] = model.ViewRow{
			GradeRow:   r,
			Projection: proj.Lookup(r.StudentCode),
			Risk:       risk.Lookup(r.StudentCode),
		}
	}
	return out
}
