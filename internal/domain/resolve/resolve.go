package resolve

import (
	"github.com/okian/gradebase/internal/domain/model"
	"github.com/volatiletech/null/v8"
)

// Resolve normalizes one raw grade record. It never fails: absent or
// malformed fields take their defaults (unset scores, empty text, zero ids).
// scope supplies the course code and section name when the record carries
// neither.
func Resolve(raw model.RawRecord, scope model.Filter) model.GradeRow {
	row := model.GradeRow{
		ID:          integer(raw, gradeAliases[FieldGradeID]),
		StudentID:   integer(raw, gradeAliases[FieldStudentID]),
		SectionID:   integer(raw, gradeAliases[FieldSectionID]),
		StudentCode: text(raw, gradeAliases[FieldStudentCode]),
		StudentName: studentName(raw),
		CourseCode:  text(raw, gradeAliases[FieldCourseCode]),
		SectionName: text(raw, gradeAliases[FieldSectionName]),
		Scores: model.Scores{
			Assessment1:   score(raw, FieldAssessment1),
			Assessment2:   score(raw, FieldAssessment2),
			Assessment3:   score(raw, FieldAssessment3),
			Participation: score(raw, FieldParticipation),
			Project:       score(raw, FieldProject),
			FinalGrade:    score(raw, FieldFinalGrade),
		},
		Raw: raw,
	}

	if _, ok := lookup(raw, gradeAliases[FieldCourseCode]); !ok {
		row.CourseCode = scope.Normalized().CourseCode
	}
	if _, ok := lookup(raw, gradeAliases[FieldSectionName]); !ok {
		row.SectionName = scope.Normalized().SectionName
	}
	return row
}

// ResolveAll resolves every record in order.
func ResolveAll(raws []model.RawRecord, scope model.Filter) []model.GradeRow {
	rows := make([]model.GradeRow, len(raws))
	for i, raw := range raws {
		rows[i] = Resolve(raw, scope)
	}
	return rows
}

// studentName composes "Family, Given" from the embedded student and falls
// back to the flat name aliases.
func studentName(raw model.RawRecord) string {
	name := model.ComposeName(
		nonBlankText(raw, gradeAliases[FieldFamilyName]),
		nonBlankText(raw, gradeAliases[FieldGivenName]),
	)
	if name != "" {
		return name
	}
	return nonBlankText(raw, gradeAliases[FieldStudentName])
}

func score(raw model.RawRecord, f Field) null.Float64 {
	v, ok := number(raw, gradeAliases[f])
	if !ok {
		return null.Float64{}
	}
	return null.Float64From(v)
}
