// Package resolve turns heterogeneous backend records into canonical rows.
//
// Every canonical field is read through a fixed, ordered alias list; the
// first usable candidate wins. The table below is the single source of truth
// for reads: Resolve consults every alias. Payload writes only the native
// key of each field (see NativeKey).
package resolve

// Field names a canonical field resolved from a grade record.
type Field int

// Canonical grade record fields.
const (
	FieldGradeID Field = iota
	FieldStudentID
	FieldSectionID
	FieldStudentCode
	FieldFamilyName
	FieldGivenName
	FieldStudentName
	FieldCourseCode
	FieldSectionName
	FieldAssessment1
	FieldAssessment2
	FieldAssessment3
	FieldParticipation
	FieldProject
	FieldFinalGrade
)

var fieldNames = map[Field]string{
	FieldGradeID:       "id",
	FieldStudentID:     "student_id",
	FieldSectionID:     "section_id",
	FieldStudentCode:   "student_code",
	FieldFamilyName:    "family_name",
	FieldGivenName:     "given_name",
	FieldStudentName:   "student_name",
	FieldCourseCode:    "course_code",
	FieldSectionName:   "section_name",
	FieldAssessment1:   "assessment1",
	FieldAssessment2:   "assessment2",
	FieldAssessment3:   "assessment3",
	FieldParticipation: "participation",
	FieldProject:       "project",
	FieldFinalGrade:    "final_grade",
}

func (f Field) String() string {
	if n, ok := fieldNames[f]; ok {
		return n
	}
	return "unknown"
}

// gradeAliases lists, per field, the keys consulted in priority order.
// Dotted keys walk embedded objects. Within one priority level the Spanish
// key (served by the backend) precedes its English counterpart.
var gradeAliases = map[Field][]string{
	FieldGradeID:   {"id"},
	FieldStudentID: {"estudiante.id", "student.id", "estudiante", "student", "estudiante_id", "student_id"},
	FieldSectionID: {"seccion.id", "section.id", "seccion", "section", "seccion_id", "section_id"},

	FieldStudentCode: {"estudiante.codigo", "student.code", "estudiante_codigo", "student_code", "estudiante__codigo", "codigo", "code"},
	FieldFamilyName:  {"estudiante.apellido", "estudiante.apellidos", "student.familyName", "student.family_name"},
	FieldGivenName:   {"estudiante.nombre", "estudiante.nombres", "student.givenName", "student.given_name"},
	FieldStudentName: {"estudiante_nombre", "student_name", "estudiante.full_name", "student.fullName", "estudiante__nombre"},
	FieldCourseCode:  {"seccion.curso.codigo", "section.course.code", "curso_codigo", "course_code", "seccion__curso__codigo"},
	FieldSectionName: {"seccion.nombre", "section.name", "seccion_nombre", "section_name", "seccion__nombre"},

	FieldAssessment1:   {"avance1", "assessment1", "av1"},
	FieldAssessment2:   {"avance2", "assessment2", "av2"},
	FieldAssessment3:   {"avance3", "assessment3", "av3"},
	FieldParticipation: {"participacion", "participation", "part"},
	FieldProject:       {"proyecto_final", "project_final", "proyecto", "project"},
	FieldFinalGrade:    {"nota_final", "final_grade", "final"},
}

// Aliases returns a copy of the ordered alias list for f.
func Aliases(f Field) []string {
	return append([]string(nil), gradeAliases[f]...)
}

// nativeKeys overrides the write key for fields whose first alias is a
// nested read path. Writes send the bare foreign key.
var nativeKeys = map[Field]string{
	FieldStudentID: "estudiante",
	FieldSectionID: "seccion",
}

// NativeKey is the key the backend expects on writes for f.
func NativeKey(f Field) string {
	if k, ok := nativeKeys[f]; ok {
		return k
	}
	if a := gradeAliases[f]; len(a) > 0 {
		return a[0]
	}
	return ""
}

// ScoreFields lists the six assessment fields in display order.
var ScoreFields = []Field{
	FieldAssessment1, FieldAssessment2, FieldAssessment3,
	FieldParticipation, FieldProject, FieldFinalGrade,
}

// Roster, section and ML prediction aliases.
var (
	studentAliases = struct{ id, code, given, family, full []string }{
		id:     []string{"id"},
		code:   []string{"codigo", "code"},
		given:  []string{"nombre", "nombres", "given_name", "givenName", "first_name"},
		family: []string{"apellido", "apellidos", "family_name", "familyName", "last_name"},
		full:   []string{"full_name", "fullName"},
	}

	sectionAliases = struct{ id, name, course []string }{
		id:     []string{"id"},
		name:   []string{"nombre", "name"},
		course: []string{"curso.codigo", "course.code", "curso_codigo", "course_code", "curso", "course"},
	}

	predictionAliases = struct{ code, predicted, probability, class, threshold []string }{
		code:        []string{"studentCode", "student_code", "estudiante_codigo", "codigo"},
		predicted:   []string{"predictedFinal", "predicted_final", "nota_final_proyectada", "proyeccion"},
		probability: []string{"riskProbability", "risk_probability", "probabilidad_riesgo", "probabilidad"},
		class:       []string{"riskClass", "risk_class", "clase_riesgo", "riesgo"},
		threshold:   []string{"threshold", "umbral"},
	}
)
