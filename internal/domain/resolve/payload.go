package resolve

import (
	"github.com/okian/gradebase/internal/domain/model"
	"github.com/volatiletech/null/v8"
)

// Payload maps a canonical grade input to the backend's native field names.
// Ids are written only when set; scores are always written, unset ones as
// null. Short aliases are never written.
func Payload(in model.GradeInput) map[string]any {
	body := make(map[string]any, len(ScoreFields)+2)
	if in.SectionID.Valid {
		body[NativeKey(FieldSectionID)] = in.SectionID.Int64
	}
	if in.StudentID.Valid {
		body[NativeKey(FieldStudentID)] = in.StudentID.Int64
	}
	for _, f := range ScoreFields {
		body[NativeKey(f)] = nullable(scoreOf(in.Scores, f))
	}
	return body
}

func scoreOf(s model.Scores, f Field) null.Float64 {
	switch f {
	case FieldAssessment1:
		return s.Assessment1
	case FieldAssessment2:
		return s.Assessment2
	case FieldAssessment3:
		return s.Assessment3
	case FieldParticipation:
		return s.Participation
	case FieldProject:
		return s.Project
	case FieldFinalGrade:
		return s.FinalGrade
	}
	return null.Float64{}
}

func nullable(v null.Float64) any {
	if !v.Valid {
		return nil
	}
	return v.Float64
}
