package resolve

import (
	"sort"
	"strings"

	"github.com/okian/gradebase/internal/domain/model"
)

// Student normalizes a roster entry.
func Student(raw model.RawRecord) model.StudentRecord {
	s := model.StudentRecord{
		ID:         integer(raw, studentAliases.id),
		Code:       text(raw, studentAliases.code),
		GivenName:  nonBlankText(raw, studentAliases.given),
		FamilyName: nonBlankText(raw, studentAliases.family),
	}
	if s.GivenName == "" && s.FamilyName == "" {
		s.GivenName = nonBlankText(raw, studentAliases.full)
	}
	return s
}

// Students normalizes a roster collection in order.
func Students(raws []model.RawRecord) []model.StudentRecord {
	out := make([]model.StudentRecord, len(raws))
	for i, raw := range raws {
		out[i] = Student(raw)
	}
	return out
}

// Section normalizes a section catalogue entry.
func Section(raw model.RawRecord) model.SectionRecord {
	return model.SectionRecord{
		ID:         integer(raw, sectionAliases.id),
		Name:       text(raw, sectionAliases.name),
		CourseCode: text(raw, sectionAliases.course),
	}
}

// Sections normalizes the catalogue and orders it by course code, then
// section name.
func Sections(raws []model.RawRecord) []model.SectionRecord {
	out := make([]model.SectionRecord, len(raws))
	for i, raw := range raws {
		out[i] = Section(raw)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CourseCode != out[j].CourseCode {
			return out[i].CourseCode < out[j].CourseCode
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Projections normalizes projection predictions. Entries without a student
// code cannot be overlaid and are dropped.
func Projections(raws []model.RawRecord) []model.ProjectionResult {
	out := make([]model.ProjectionResult, 0, len(raws))
	for _, raw := range raws {
		code := strings.TrimSpace(text(raw, predictionAliases.code))
		if code == "" {
			continue
		}
		predicted, _ := number(raw, predictionAliases.predicted)
		out = append(out, model.ProjectionResult{StudentCode: code, PredictedFinal: predicted})
	}
	return out
}

// Risks normalizes risk predictions. Entries without a student code are dropped.
func Risks(raws []model.RawRecord) []model.RiskResult {
	out := make([]model.RiskResult, 0, len(raws))
	for _, raw := range raws {
		code := strings.TrimSpace(text(raw, predictionAliases.code))
		if code == "" {
			continue
		}
		probability, _ := number(raw, predictionAliases.probability)
		threshold, _ := number(raw, predictionAliases.threshold)
		out = append(out, model.RiskResult{
			StudentCode:     code,
			RiskProbability: probability,
			RiskClass:       ParseRiskClass(text(raw, predictionAliases.class)),
			Threshold:       threshold,
		})
	}
	return out
}

// ParseRiskClass maps English and Spanish class labels to a RiskClass.
func ParseRiskClass(s string) model.RiskClass {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW", "BAJO":
		return model.RiskLow
	case "MEDIUM", "MEDIO":
		return model.RiskMedium
	case "HIGH", "ALTO":
		return model.RiskHigh
	default:
		return model.RiskUnknown
	}
}
