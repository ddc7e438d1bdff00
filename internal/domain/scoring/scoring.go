// Package scoring holds the score-range policy applied to manually entered grades.
package scoring

import (
	"math"

	"github.com/okian/gradebase/internal/domain/model"
	"github.com/volatiletech/null/v8"
)

// Score range accepted by the backend.
const (
	MinScore = 0
	MaxScore = 20
)

// Clamp bounds v to [MinScore, MaxScore]. NaN is treated as MinScore.
func Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return MinScore
	}
	return math.Max(MinScore, math.Min(MaxScore, v))
}

// ClampNull clamps a set score and leaves an unset one unset.
func ClampNull(v null.Float64) null.Float64 {
	if !v.Valid {
		return v
	}
	return null.Float64From(Clamp(v.Float64))
}

// ClampScores applies ClampNull to all six assessment fields.
func ClampScores(s model.Scores) model.Scores {
	return model.Scores{
		Assessment1:   ClampNull(s.Assessment1),
		Assessment2:   ClampNull(s.Assessment2),
		Assessment3:   ClampNull(s.Assessment3),
		Participation: ClampNull(s.Participation),
		Project:       ClampNull(s.Project),
		FinalGrade:    ClampNull(s.FinalGrade),
	}
}
