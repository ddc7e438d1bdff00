// Package model contains the records exchanged with the grades backend and
// the canonical shapes derived from them.
package model

import (
	"strings"

	"github.com/volatiletech/null/v8"
)

// RawRecord is one decoded JSON object as served by the backend. Its shape
// depends on the backend revision that produced it.
type RawRecord map[string]any

// StudentRecord is a roster entry.
type StudentRecord struct {
	ID         int64  `json:"id"`
	Code       string `json:"code"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// DisplayName renders "Family, Given", falling back to the code when both
// names are empty.
func (s StudentRecord) DisplayName() string {
	if name := ComposeName(s.FamilyName, s.GivenName); name != "" {
		return name
	}
	return s.Code
}

// ComposeName joins family and given names as "Family, Given". A single
// present name is used alone; two empty names yield "".
func ComposeName(family, given string) string {
	family, given = strings.TrimSpace(family), strings.TrimSpace(given)
	switch {
	case family != "" && given != "":
		return family + ", " + given
	case family != "":
		return family
	default:
		return given
	}
}

// SectionRecord is a scheduled offering of a course.
type SectionRecord struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CourseCode string `json:"course_code"`
}

// Scores holds the six assessment fields. An invalid null.Float64 means
// "not yet graded" and is distinct from a graded zero.
type Scores struct {
	Assessment1   null.Float64 `json:"assessment1"`
	Assessment2   null.Float64 `json:"assessment2"`
	Assessment3   null.Float64 `json:"assessment3"`
	Participation null.Float64 `json:"participation"`
	Project       null.Float64 `json:"project"`
	FinalGrade    null.Float64 `json:"final_grade"`
}

// GradeRow is the canonical, alias-resolved projection of one grade record.
type GradeRow struct {
	ID          int64  `json:"id"`
	StudentID   int64  `json:"student_id"`
	SectionID   int64  `json:"section_id"`
	StudentCode string `json:"student_code"`
	StudentName string `json:"student_name"`
	CourseCode  string `json:"course_code"`
	SectionName string `json:"section_name"`
	Scores

	// Raw is the record the row was resolved from, kept for payload round-trips.
	Raw RawRecord `json:"-"`
}

// Complete reports whether the row already carries both identity fields.
func (r *GradeRow) Complete() bool {
	return r.StudentCode != "" && r.StudentName != ""
}

// RiskClass buckets a risk probability.
type RiskClass string

// Risk classes reported by the backend.
const (
	RiskLow     RiskClass = "LOW"
	RiskMedium  RiskClass = "MEDIUM"
	RiskHigh    RiskClass = "HIGH"
	RiskUnknown RiskClass = ""
)

// ProjectionResult is one predicted final grade.
type ProjectionResult struct {
	StudentCode    string  `json:"student_code"`
	PredictedFinal float64 `json:"predicted_final"`
}

// RiskResult is one risk classification.
type RiskResult struct {
	StudentCode     string    `json:"student_code"`
	RiskProbability float64   `json:"risk_probability"`
	RiskClass       RiskClass `json:"risk_class"`
	Threshold       float64   `json:"threshold"`
}

// Keyed is implemented by ML results that can be overlaid by student code.
type Keyed interface {
	Key() string
}

// Key returns the student code.
func (p ProjectionResult) Key() string { return p.StudentCode }

// Key returns the student code.
func (r RiskResult) Key() string { return r.StudentCode }

// ModelInfo is the opaque model description returned next to predictions.
type ModelInfo map[string]any

// Projection is a full projection response.
type Projection struct {
	Model       ModelInfo          `json:"model"`
	Predictions []ProjectionResult `json:"predictions"`
}

// Risk is a full risk response.
type Risk struct {
	Model       ModelInfo    `json:"model"`
	Predictions []RiskResult `json:"predictions"`
}

// ViewRow is a published row annotated with whatever overlays know about its
// student. The base row is never modified by the annotation.
type ViewRow struct {
	GradeRow
	Projection *ProjectionResult `json:"projection,omitempty"`
	Risk       *RiskResult       `json:"risk,omitempty"`
}
