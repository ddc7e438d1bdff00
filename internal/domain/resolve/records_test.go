package resolve_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/gradebase/internal/domain/model"
	"github.com/okian/gradebase/internal/domain/resolve"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/volatiletech/null/v8"
)

func TestPayload(t *testing.T) {
	Convey("Given a canonical grade input", t, func() {
		in := model.GradeInput{
			SectionID: null.Int64From(4),
			StudentID: null.Int64From(7),
			Scores: model.Scores{
				Assessment1: null.Float64From(15),
				Project:     null.Float64From(12),
				FinalGrade:  null.Float64From(0),
			},
		}

		body := resolve.Payload(in)

		Convey("Then only native backend names are written", func() {
			So(body, ShouldResemble, map[string]any{
				"seccion":        int64(4),
				"estudiante":     int64(7),
				"avance1":        15.0,
				"avance2":        nil,
				"avance3":        nil,
				"participacion":  nil,
				"proyecto_final": 12.0,
				"nota_final":     0.0,
			})
		})

		Convey("And the payload resolves back to the same scores", func() {
			raw := model.RawRecord(body)
			row := resolve.Resolve(raw, model.Filter{})
			So(row.Scores, ShouldResemble, in.Scores)
			So(row.SectionID, ShouldEqual, 4)
			So(row.StudentID, ShouldEqual, 7)
		})
	})

	Convey("Given the id fields", t, func() {
		Convey("Then writes use the bare foreign keys", func() {
			So(resolve.NativeKey(resolve.FieldSectionID), ShouldEqual, "seccion")
			So(resolve.NativeKey(resolve.FieldStudentID), ShouldEqual, "estudiante")
		})

		Convey("And reads still prefer the embedded object", func() {
			So(resolve.Aliases(resolve.FieldStudentID)[0], ShouldEqual, "estudiante.id")
			row := resolve.Resolve(model.RawRecord{"estudiante": map[string]any{"id": 7.0}, "estudiante_id": 3.0}, model.Filter{})
			So(row.StudentID, ShouldEqual, 7)
		})

		Convey("And no write key is a dotted path", func() {
			for k := range resolve.Payload(model.GradeInput{SectionID: null.Int64From(1), StudentID: null.Int64From(2)}) {
				So(k, ShouldNotContainSubstring, ".")
			}
		})
	})

	Convey("Given an input without ids", t, func() {
		body := resolve.Payload(model.GradeInput{})

		So(body, ShouldNotContainKey, "seccion")
		So(body, ShouldNotContainKey, "estudiante")
		So(body, ShouldContainKey, "nota_final")
	})
}

func TestStudentsAndSections(t *testing.T) {
	Convey("Given roster entries in both vocabularies", t, func() {
		students := resolve.Students([]model.RawRecord{
			{"id": json.Number("7"), "codigo": "S7", "nombre": "Ana", "apellido": "Ruiz"},
			{"id": 8.0, "code": "S8", "givenName": "Luis", "familyName": "Paz"},
			{"id": 9.0, "codigo": "S9", "full_name": "Eva Sol"},
		})

		So(students[0], ShouldResemble, model.StudentRecord{ID: 7, Code: "S7", GivenName: "Ana", FamilyName: "Ruiz"})
		So(students[1].DisplayName(), ShouldEqual, "Paz, Luis")
		So(students[2].DisplayName(), ShouldEqual, "Eva Sol")
	})

	Convey("Given an unsorted section catalogue", t, func() {
		sections := resolve.Sections([]model.RawRecord{
			{"id": 3.0, "nombre": "B", "curso": map[string]any{"codigo": "MAT101"}},
			{"id": 1.0, "nombre": "A", "curso": map[string]any{"codigo": "FIS100"}},
			{"id": 2.0, "nombre": "A", "curso_codigo": "MAT101"},
		})

		Convey("Then it is ordered by course code, then name", func() {
			So(sections[0].ID, ShouldEqual, 1)
			So(sections[1].ID, ShouldEqual, 2)
			So(sections[2].ID, ShouldEqual, 3)
			So(sections[2].CourseCode, ShouldEqual, "MAT101")
		})
	})
}

func TestPredictions(t *testing.T) {
	Convey("Given projection predictions", t, func() {
		out := resolve.Projections([]model.RawRecord{
			{"studentCode": "S1", "predictedFinal": 16.2},
			{"estudiante_codigo": "S2", "nota_final_proyectada": "13"},
			{"predictedFinal": 10.0},
		})

		Convey("Then keyed entries are kept in order and unkeyed ones dropped", func() {
			So(out, ShouldResemble, []model.ProjectionResult{
				{StudentCode: "S1", PredictedFinal: 16.2},
				{StudentCode: "S2", PredictedFinal: 13},
			})
		})
	})

	Convey("Given risk predictions", t, func() {
		out := resolve.Risks([]model.RawRecord{
			{"studentCode": "S1", "riskProbability": 0.8, "riskClass": "high", "threshold": 0.5},
			{"codigo": "S2", "probabilidad_riesgo": 0.1, "clase_riesgo": "BAJO", "umbral": 0.5},
			{"codigo": "S3", "riskClass": "severe"},
		})

		So(out[0], ShouldResemble, model.RiskResult{StudentCode: "S1", RiskProbability: 0.8, RiskClass: model.RiskHigh, Threshold: 0.5})
		So(out[1].RiskClass, ShouldEqual, model.RiskLow)
		So(out[2].RiskClass, ShouldEqual, model.RiskUnknown)
		So(resolve.ParseRiskClass(" medio "), ShouldEqual, model.RiskMedium)
	})
}

func TestDecodeCollection(t *testing.T) {
	Convey("Given a bare list", t, func() {
		page, err := resolve.DecodeCollection([]byte(` [{"id": 1}, 5, {"id": 2}] `))

		So(err, ShouldBeNil)
		So(len(page.Records), ShouldEqual, 2)
		So(page.Records[0]["id"], ShouldEqual, json.Number("1"))
		So(page.Count, ShouldEqual, 2)
	})

	Convey("Given a paginated envelope", t, func() {
		page, err := resolve.DecodeCollection([]byte(`{"count": 40, "next": "http://x/notas/?page=2", "results": [{"id": 1}]}`))

		So(err, ShouldBeNil)
		So(len(page.Records), ShouldEqual, 1)
		So(page.Count, ShouldEqual, 40)
		So(page.Next, ShouldEqual, "http://x/notas/?page=2")
	})

	Convey("Given shapes that are not collections", t, func() {
		for _, body := range []string{``, `"x"`, `{"detail": "nope"}`} {
			_, err := resolve.DecodeCollection([]byte(body))
			So(errors.Is(err, resolve.ErrNotCollection), ShouldBeTrue)
		}
		_, err := resolve.DecodeCollection([]byte(`[{`))
		So(err, ShouldNotBeNil)
	})

	Convey("Given an ML response", t, func() {
		info, records, err := resolve.DecodePredictions([]byte(`{"model": {"name": "ridge"}, "predictions": [{"studentCode": "S1", "predictedFinal": 17}]}`))

		So(err, ShouldBeNil)
		So(info["name"], ShouldEqual, "ridge")
		So(resolve.Projections(records), ShouldResemble, []model.ProjectionResult{{StudentCode: "S1", PredictedFinal: 17}})
	})

	Convey("Given a single record", t, func() {
		rec, err := resolve.DecodeRecord([]byte(`{"id": 3}`))
		So(err, ShouldBeNil)
		So(rec["id"], ShouldEqual, json.Number("3"))

		_, err = resolve.DecodeRecord([]byte(`null`))
		So(err, ShouldNotBeNil)
	})
}
