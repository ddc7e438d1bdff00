package resolve_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/okian/gradebase/internal/domain/model"
	"github.com/okian/gradebase/internal/domain/resolve"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/volatiletech/null/v8"
)

// nest builds a record holding value under a dotted alias.
func nest(alias string, value any) model.RawRecord {
	parts := strings.Split(alias, ".")
	var cur any = value
	for i := len(parts) - 1; i >= 0; i-- {
		cur = map[string]any{parts[i]: cur}
	}
	return model.RawRecord(cur.(map[string]any))
}

func scoreOf(row model.GradeRow, f resolve.Field) null.Float64 {
	switch f {
	case resolve.FieldAssessment1:
		return row.Assessment1
	case resolve.FieldAssessment2:
		return row.Assessment2
	case resolve.FieldAssessment3:
		return row.Assessment3
	case resolve.FieldParticipation:
		return row.Participation
	case resolve.FieldProject:
		return row.Project
	default:
		return row.FinalGrade
	}
}

func TestResolveScenario(t *testing.T) {
	Convey("Given a legacy record with mixed aliases", t, func() {
		raw := model.RawRecord{"estudiante_codigo": "S1", "av1": 15.0, "nota_final": 18.0}

		row := resolve.Resolve(raw, model.Filter{})

		Convey("Then present fields resolve and absent scores default to zero", func() {
			So(row.StudentCode, ShouldEqual, "S1")
			So(row.Assessment1.Float64, ShouldEqual, 15)
			So(row.FinalGrade.Float64, ShouldEqual, 18)
			So(row.Assessment2.Float64, ShouldEqual, 0)
			So(row.Assessment3.Float64, ShouldEqual, 0)
			So(row.Participation.Float64, ShouldEqual, 0)
			So(row.Project.Float64, ShouldEqual, 0)
		})

		Convey("And absent scores stay distinguishable from graded zeros", func() {
			So(row.Assessment1.Valid, ShouldBeTrue)
			So(row.Assessment2.Valid, ShouldBeFalse)
		})

		Convey("And the raw record is kept for round-trips", func() {
			So(row.Raw, ShouldResemble, raw)
		})
	})
}

func TestAliasEquivalence(t *testing.T) {
	Convey("Given each score alias holding the same value", t, func() {
		for _, f := range resolve.ScoreFields {
			for _, alias := range resolve.Aliases(f) {
				row := resolve.Resolve(nest(alias, 12.5), model.Filter{})
				So(scoreOf(row, f), ShouldResemble, null.Float64From(12.5))
			}
		}
	})

	Convey("Given each text alias holding the same value", t, func() {
		cases := map[resolve.Field]func(model.GradeRow) string{
			resolve.FieldStudentCode: func(r model.GradeRow) string { return r.StudentCode },
			resolve.FieldCourseCode:  func(r model.GradeRow) string { return r.CourseCode },
			resolve.FieldSectionName: func(r model.GradeRow) string { return r.SectionName },
			resolve.FieldStudentName: func(r model.GradeRow) string { return r.StudentName },
		}
		for f, get := range cases {
			for _, alias := range resolve.Aliases(f) {
				row := resolve.Resolve(nest(alias, "X1"), model.Filter{CourseCode: "FALLBACK", SectionName: "FALLBACK"})
				So(get(row), ShouldEqual, "X1")
			}
		}
	})

	Convey("Given each id alias holding the same value", t, func() {
		for _, alias := range resolve.Aliases(resolve.FieldStudentID) {
			So(resolve.Resolve(nest(alias, 7.0), model.Filter{}).StudentID, ShouldEqual, 7)
		}
		for _, alias := range resolve.Aliases(resolve.FieldSectionID) {
			So(resolve.Resolve(nest(alias, json.Number("3")), model.Filter{}).SectionID, ShouldEqual, 3)
		}
	})

	Convey("Given every pair of family and given name aliases", t, func() {
		for _, fam := range resolve.Aliases(resolve.FieldFamilyName) {
			for _, giv := range resolve.Aliases(resolve.FieldGivenName) {
				raw := nest(fam, "Ruiz")
				for k, v := range nest(giv, "Ana") {
					if existing, ok := raw[k].(map[string]any); ok {
						for ik, iv := range v.(map[string]any) {
							existing[ik] = iv
						}
						continue
					}
					raw[k] = v
				}
				So(resolve.Resolve(raw, model.Filter{}).StudentName, ShouldEqual, "Ruiz, Ana")
			}
		}
	})
}

func TestResolveDefaults(t *testing.T) {
	Convey("Given a record with no known aliases", t, func() {
		row := resolve.Resolve(model.RawRecord{"unrelated": true}, model.Filter{})

		Convey("Then every field holds its documented default", func() {
			So(row.ID, ShouldEqual, 0)
			So(row.StudentID, ShouldEqual, 0)
			So(row.StudentCode, ShouldEqual, "")
			So(row.StudentName, ShouldEqual, "")
			So(row.CourseCode, ShouldEqual, "")
			So(row.SectionName, ShouldEqual, "")
			So(row.Scores, ShouldResemble, model.Scores{})
		})
	})

	Convey("Given a nil record", t, func() {
		So(func() { resolve.Resolve(nil, model.Filter{}) }, ShouldNotPanic)
	})

	Convey("Given a record without course or section and an active filter", t, func() {
		row := resolve.Resolve(model.RawRecord{"id": 1.0}, model.Filter{CourseCode: " MAT101 ", SectionName: "A"})

		Convey("Then the filter supplies them", func() {
			So(row.CourseCode, ShouldEqual, "MAT101")
			So(row.SectionName, ShouldEqual, "A")
		})
	})
}

func TestResolvePriority(t *testing.T) {
	Convey("Given a record exposing several aliases for one field", t, func() {
		raw := model.RawRecord{
			"estudiante":        map[string]any{"id": 9.0, "codigo": "NEW"},
			"estudiante_codigo": "OLD",
			"avance1":           11.0,
			"av1":               3.0,
			"proyecto_final":    nil,
			"proyecto":          16.0,
			"nota_final":        "17.50",
			"final":             2.0,
		}

		row := resolve.Resolve(raw, model.Filter{})

		Convey("Then the earliest usable alias wins", func() {
			So(row.StudentCode, ShouldEqual, "NEW")
			So(row.StudentID, ShouldEqual, 9)
			So(row.Assessment1.Float64, ShouldEqual, 11)
		})

		Convey("And null candidates are skipped", func() {
			So(row.Project, ShouldResemble, null.Float64From(16))
		})

		Convey("And numeric strings are numbers", func() {
			So(row.FinalGrade, ShouldResemble, null.Float64From(17.5))
		})
	})

	Convey("Given a malformed score under the winning alias", t, func() {
		row := resolve.Resolve(model.RawRecord{"avance2": "n/a", "av2": 4.0}, model.Filter{})

		Convey("Then the field falls back to its default rather than a later alias", func() {
			So(row.Assessment2.Valid, ShouldBeFalse)
		})
	})

	Convey("Given a scalar student reference", t, func() {
		row := resolve.Resolve(model.RawRecord{"estudiante": 7.0, "seccion": 2.0}, model.Filter{})

		So(row.StudentID, ShouldEqual, 7)
		So(row.SectionID, ShouldEqual, 2)
		So(row.StudentCode, ShouldEqual, "")
	})

	Convey("Given a numeric student code", t, func() {
		row := resolve.Resolve(model.RawRecord{"codigo": json.Number("20231")}, model.Filter{})

		So(row.StudentCode, ShouldEqual, "20231")
	})
}

func TestResolveName(t *testing.T) {
	Convey("Given name parts on the embedded student", t, func() {
		Convey("When only the family name is present", func() {
			row := resolve.Resolve(model.RawRecord{"estudiante": map[string]any{"apellido": "Ruiz", "nombre": "  "}}, model.Filter{})
			So(row.StudentName, ShouldEqual, "Ruiz")
		})

		Convey("When only the given name is present", func() {
			row := resolve.Resolve(model.RawRecord{"student": map[string]any{"givenName": "Ana"}}, model.Filter{})
			So(row.StudentName, ShouldEqual, "Ana")
		})

		Convey("When neither part is present the flat name is used", func() {
			row := resolve.Resolve(model.RawRecord{
				"estudiante":        map[string]any{"full_name": "Ana Ruiz"},
				"estudiante_nombre": "Ruiz Ana",
			}, model.Filter{})
			So(row.StudentName, ShouldEqual, "Ruiz Ana")
		})

		Convey("When nothing is present the name stays empty", func() {
			So(resolve.Resolve(model.RawRecord{"estudiante": map[string]any{}}, model.Filter{}).StudentName, ShouldEqual, "")
		})
	})
}

func TestResolveAll(t *testing.T) {
	Convey("Given several records", t, func() {
		rows := resolve.ResolveAll([]model.RawRecord{{"id": 1.0}, {"id": 2.0}}, model.Filter{})

		So(len(rows), ShouldEqual, 2)
		So(rows[0].ID, ShouldEqual, 1)
		So(rows[1].ID, ShouldEqual, 2)
	})
}
