package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/volatiletech/null/v8"

	"github.com/okian/gradebase/internal/adapters/backend"
	service "github.com/okian/gradebase/internal/app"
	"github.com/okian/gradebase/internal/domain/model"
	"github.com/okian/gradebase/pkg/logger"
)

var _ service.Backend = (*fakeBackend)(nil)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

// nativeWriteKeys are the body keys the backend accepts on create and update.
var nativeWriteKeys = []string{
	"avance1", "avance2", "avance3", "estudiante",
	"nota_final", "participacion", "proyecto_final", "seccion",
}

var errDown = &backend.Error{Op: "grades.list", Kind: backend.ErrTransport, Err: errors.New("connection refused")}

func TestService_New(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(newFakeBackend())

		Convey("Then it starts idle with an empty table", func() {
			So(svc.State(), ShouldEqual, service.StateIdle)
			v := svc.View(context.Background())
			So(len(v.Rows), ShouldEqual, 0)
			So(v.Projection.State, ShouldEqual, service.MLIdle)
			So(v.Risk.State, ShouldEqual, service.MLIdle)
		})
	})
}

func TestService_Search(t *testing.T) {
	ctx := context.Background()

	Convey("Given complete grade rows", t, func() {
		fb := newFakeBackend()
		fb.grades = func(context.Context, model.Filter) ([]model.RawRecord, error) { return sectionRows(), nil }
		svc := service.New(fb)

		rows, err := svc.Search(ctx, model.Filter{SectionID: 4, CourseCode: " MAT101 "})

		Convey("Then the table is published without a roster fetch", func() {
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 5)
			So(fb.count("students"), ShouldEqual, 0)
			So(svc.State(), ShouldEqual, service.StateReady)
			So(len(svc.View(ctx).Rows), ShouldEqual, 5)
		})

		Convey("And the normalized filter becomes active", func() {
			So(svc.Filter().CourseCode, ShouldEqual, "MAT101")
			So(fb.lastFilter.CourseCode, ShouldEqual, "MAT101")
		})
	})

	Convey("Given rows without identity in a selected section", t, func() {
		fb := newFakeBackend()
		fb.grades = func(context.Context, model.Filter) ([]model.RawRecord, error) {
			return []model.RawRecord{{"id": 1.0, "estudiante": 7.0}}, nil
		}
		fb.students = func(_ context.Context, sectionID int64) ([]model.StudentRecord, error) {
			So(sectionID, ShouldEqual, 4)
			return []model.StudentRecord{{ID: 7, Code: "S7", GivenName: "Ana", FamilyName: "Ruiz"}}, nil
		}
		svc := service.New(fb)

		rows, err := svc.Search(ctx, model.Filter{SectionID: 4})

		Convey("Then the roster fills code and name", func() {
			So(err, ShouldBeNil)
			So(fb.count("students"), ShouldEqual, 1)
			So(rows[0].StudentCode, ShouldEqual, "S7")
			So(rows[0].StudentName, ShouldEqual, "Ruiz, Ana")
			So(svc.View(ctx).Rows[0].StudentName, ShouldEqual, "Ruiz, Ana")
		})
	})

	Convey("Given rows without identity and no section id", t, func() {
		fb := newFakeBackend()
		fb.grades = func(context.Context, model.Filter) ([]model.RawRecord, error) {
			return []model.RawRecord{{"id": 1.0, "estudiante": 7.0}}, nil
		}
		svc := service.New(fb)

		rows, err := svc.Search(ctx, model.Filter{CourseCode: "MAT101", SectionName: "A"})

		So(err, ShouldBeNil)
		So(fb.count("students"), ShouldEqual, 0)
		So(rows[0].StudentName, ShouldEqual, "")
		So(rows[0].CourseCode, ShouldEqual, "MAT101")
	})

	Convey("Given a published table and a failing grade fetch", t, func() {
		fb := newFakeBackend()
		fb.grades = func(context.Context, model.Filter) ([]model.RawRecord, error) { return sectionRows(), nil }
		svc := service.New(fb)
		_, _ = svc.Search(ctx, model.Filter{SectionID: 4})

		fb.mu.Lock()
		fb.grades = func(context.Context, model.Filter) ([]model.RawRecord, error) { return nil, errDown }
		fb.mu.Unlock()
		_, err := svc.Search(ctx, model.Filter{SectionID: 4})

		Convey("Then the table is cleared and the workflow is idle again", func() {
			So(errors.Is(err, backend.ErrTransport), ShouldBeTrue)
			So(svc.State(), ShouldEqual, service.StateIdle)
			v := svc.View(ctx)
			So(len(v.Rows), ShouldEqual, 0)
			So(v.Error, ShouldEqual, service.UserMessage(err))
			So(v.Filter.SectionID, ShouldEqual, 4)
		})
	})

	Convey("Given a roster that cannot be fetched", t, func() {
		fb := newFakeBackend()
		fb.grades = func(context.Context, model.Filter) ([]model.RawRecord, error) {
			return []model.RawRecord{{"id": 1.0, "estudiante": 7.0, "nota_final": 15.0}}, nil
		}
		fb.students = func(context.Context, int64) ([]model.StudentRecord, error) { return nil, errDown }
		svc := service.New(fb)

		rows, err := svc.Search(ctx, model.Filter{SectionID: 4})

		Convey("Then the unreconciled rows are still published", func() {
			So(errors.Is(err, service.ErrRosterUnavailable), ShouldBeTrue)
			So(errors.Is(err, backend.ErrTransport), ShouldBeTrue)
			So(len(rows), ShouldEqual, 1)
			So(svc.View(ctx).Rows[0].FinalGrade.Float64, ShouldEqual, 15)
			So(svc.State(), ShouldEqual, service.StateReady)
		})
	})
}

func TestService_SearchSuperseded(t *testing.T) {
	ctx := context.Background()

	Convey("Given a slow search overtaken by a newer one", t, func() {
		release := make(chan struct{})
		entered := make(chan struct{})
		fb := newFakeBackend()
		fb.grades = func(_ context.Context, f model.Filter) ([]model.RawRecord, error) {
			if f.SectionID == 1 {
				close(entered)
				<-release
				return []model.RawRecord{{"id": 100.0, "estudiante_codigo": "OLD", "estudiante_nombre": "Old"}}, nil
			}
			return []model.RawRecord{{"id": 200.0, "estudiante_codigo": "NEW", "estudiante_nombre": "New"}}, nil
		}
		svc := service.New(fb)

		slow := make(chan error, 1)
		go func() {
			_, err := svc.Search(ctx, model.Filter{SectionID: 1})
			slow <- err
		}()
		<-entered

		_, err := svc.Search(ctx, model.Filter{SectionID: 2})
		So(err, ShouldBeNil)
		close(release)

		var slowErr error
		select {
		case slowErr = <-slow:
		case <-time.After(5 * time.Second):
			t.Fatal("slow search did not return")
		}

		Convey("Then the older search publishes nothing", func() {
			So(errors.Is(slowErr, service.ErrSuperseded), ShouldBeTrue)
			v := svc.View(ctx)
			So(len(v.Rows), ShouldEqual, 1)
			So(v.Rows[0].StudentCode, ShouldEqual, "NEW")
			So(v.Filter.SectionID, ShouldEqual, 2)
			So(v.State, ShouldEqual, service.StateReady)
		})
	})
}

func TestService_Writes(t *testing.T) {
	ctx := context.Background()

	Convey("Given a section table", t, func() {
		fb := newFakeBackend()
		fb.grades = func(context.Context, model.Filter) ([]model.RawRecord, error) { return sectionRows(), nil }
		svc := service.New(fb)
		_, _ = svc.Search(ctx, model.Filter{SectionID: 4})
		fetches := fb.count("grades")

		Convey("When creating a grade with out-of-range scores", func() {
			err := svc.Create(ctx, model.GradeInput{
				SectionID: null.Int64From(4),
				StudentID: null.Int64From(10),
				Scores: model.Scores{
					Assessment1: null.Float64From(25),
					Assessment2: null.Float64From(-3),
					Project:     null.Float64From(14.5),
				},
			})

			Convey("Then the body carries exactly the native keys", func() {
				So(keysOf(fb.lastBody), ShouldResemble, nativeWriteKeys)
			})

			Convey("Then native keys carry clamped values", func() {
				So(err, ShouldBeNil)
				So(fb.lastBody, ShouldResemble, map[string]any{
					"seccion":        int64(4),
					"estudiante":     int64(10),
					"avance1":        20.0,
					"avance2":        0.0,
					"avance3":        nil,
					"participacion":  nil,
					"proyecto_final": 14.5,
					"nota_final":     nil,
				})
			})

			Convey("And the table is refetched with the active filter", func() {
				So(fb.count("grades"), ShouldEqual, fetches+1)
				So(fb.lastFilter.SectionID, ShouldEqual, 4)
			})
		})

		Convey("When creating a grade without a section", func() {
			err := svc.Create(ctx, model.GradeInput{StudentID: null.Int64From(10)})

			Convey("Then nothing is submitted", func() {
				So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
				So(service.UserMessage(err), ShouldEqual, "section_id is required.")
				So(fb.count("create"), ShouldEqual, 0)
			})
		})

		Convey("When updating a grade with only new scores", func() {
			err := svc.Update(ctx, 2, model.GradeInput{Scores: model.Scores{FinalGrade: null.Float64From(19)}})

			Convey("Then its ids come from the published row", func() {
				So(err, ShouldBeNil)
				So(fb.lastID, ShouldEqual, 2)
				So(fb.lastBody["seccion"], ShouldEqual, int64(4))
				So(fb.lastBody["estudiante"], ShouldEqual, int64(11))
				So(fb.lastBody["nota_final"], ShouldEqual, 19.0)
			})

			Convey("And the body carries exactly the native keys", func() {
				So(keysOf(fb.lastBody), ShouldResemble, nativeWriteKeys)
			})
		})

		Convey("When deleting without confirmation", func() {
			err := svc.Delete(ctx, 1, false)

			Convey("Then no request is issued", func() {
				So(errors.Is(err, service.ErrDeleteNotConfirmed), ShouldBeTrue)
				So(fb.count("delete"), ShouldEqual, 0)
			})
		})

		Convey("When deleting with confirmation", func() {
			err := svc.Delete(ctx, 1, true)

			So(err, ShouldBeNil)
			So(fb.lastID, ShouldEqual, 1)
			So(fb.count("grades"), ShouldEqual, fetches+1)
		})

		Convey("When the backend rejects a write", func() {
			fb.mu.Lock()
			fb.write = func(string, int64, map[string]any) error {
				return &backend.Error{Op: "grades.create", Status: 400, Message: "Ya existe una nota para este estudiante", Kind: backend.ErrValidation}
			}
			fb.mu.Unlock()
			draft := model.Draft{GradeInput: model.GradeInput{
				SectionID: null.Int64From(4),
				StudentID: null.Int64From(10),
				Scores:    model.Scores{Assessment1: null.Float64From(30)},
			}}
			svc.SetDraft(draft)

			err := svc.Save(ctx)

			Convey("Then the backend message is shown verbatim", func() {
				So(errors.Is(err, backend.ErrValidation), ShouldBeTrue)
				So(service.UserMessage(err), ShouldEqual, "Ya existe una nota para este estudiante")
			})

			Convey("And the draft is kept as entered", func() {
				So(svc.Draft(), ShouldResemble, draft)
			})

			Convey("And the table is not refetched", func() {
				So(fb.count("grades"), ShouldEqual, fetches)
			})
		})

		Convey("When editing a row and saving it", func() {
			d, err := svc.Edit(ctx, 3)
			So(err, ShouldBeNil)
			So(d.EditID, ShouldEqual, 3)
			So(d.StudentID, ShouldResemble, null.Int64From(12))

			d.FinalGrade = null.Float64From(16)
			svc.SetDraft(d)
			err = svc.Save(ctx)

			Convey("Then an update is sent and the draft is cleared", func() {
				So(err, ShouldBeNil)
				So(fb.count("update"), ShouldEqual, 1)
				So(fb.lastBody["nota_final"], ShouldEqual, 16.0)
				So(svc.Draft().Empty(), ShouldBeTrue)
			})
		})

		Convey("When the refetch after a write fails", func() {
			fb.mu.Lock()
			fb.grades = func(context.Context, model.Filter) ([]model.RawRecord, error) { return nil, errDown }
			fb.mu.Unlock()
			svc.SetDraft(model.Draft{GradeInput: model.GradeInput{SectionID: null.Int64From(4), StudentID: null.Int64From(10)}})

			err := svc.Save(ctx)

			Convey("Then the write stands and the refresh failure is reported", func() {
				So(errors.Is(err, service.ErrRefresh), ShouldBeTrue)
				So(errors.Is(err, backend.ErrTransport), ShouldBeTrue)
				So(fb.count("create"), ShouldEqual, 1)
				So(svc.Draft().Empty(), ShouldBeTrue)
			})
		})

		Convey("When the refetch after a write cannot recover student names", func() {
			fb.mu.Lock()
			fb.grades = func(context.Context, model.Filter) ([]model.RawRecord, error) {
				return []model.RawRecord{{"id": 1.0, "estudiante": 10.0, "nota_final": 12.0}}, nil
			}
			fb.mu.Unlock()
			fb.students = func(context.Context, int64) ([]model.StudentRecord, error) { return nil, errDown }
			svc.SetDraft(model.Draft{GradeInput: model.GradeInput{SectionID: null.Int64From(4), StudentID: null.Int64From(10)}})

			err := svc.Save(ctx)

			Convey("Then the write counts as saved and the roster failure is reported", func() {
				So(errors.Is(err, service.ErrRosterUnavailable), ShouldBeTrue)
				So(errors.Is(err, service.ErrRefresh), ShouldBeFalse)
				So(service.Saved(err), ShouldBeTrue)
				So(service.UserMessage(err), ShouldEqual, "Grades were loaded but student names could not be recovered.")
				So(svc.Draft().Empty(), ShouldBeTrue)
				So(len(svc.View(ctx).Rows), ShouldEqual, 1)
			})
		})

		Convey("When editing a grade that is not in the table", func() {
			_, err := svc.Edit(ctx, 999)
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("When saving an empty draft", func() {
			So(errors.Is(svc.Save(ctx), service.ErrInvalidInput), ShouldBeTrue)
		})
	})
}

func TestService_Catalogue(t *testing.T) {
	ctx := context.Background()

	Convey("Given the catalogue helpers", t, func() {
		fb := newFakeBackend()
		svc := service.New(fb)

		sections, err := svc.Sections(ctx)
		So(err, ShouldBeNil)
		So(sections[0].CourseCode, ShouldEqual, "MAT101")

		_, err = svc.Students(ctx, 0)
		So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
		So(fb.count("students"), ShouldEqual, 0)

		Convey("When exporting in an unknown format", func() {
			_, err := svc.Export(ctx, "docx", model.Filter{})
			So(errors.Is(err, backend.ErrUnsupportedFormat), ShouldBeTrue)
			So(fb.count("export"), ShouldEqual, 0)
		})

		Convey("When exporting as xlsx", func() {
			blob, err := svc.Export(ctx, "xlsx", model.Filter{CourseCode: "MAT101"})
			So(err, ShouldBeNil)
			So(blob.Name, ShouldEqual, "notas.xlsx")
		})
	})
}

func TestService_Auth(t *testing.T) {
	ctx := context.Background()

	Convey("Given a registration whose passwords differ", t, func() {
		fb := newFakeBackend()
		err := service.New(fb).Register(ctx, model.Registration{
			Username: "docente", Password: "secret123", PasswordConfirm: "secret124",
		})

		So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
		So(service.UserMessage(err), ShouldEqual, "password_confirm does not match.")
		So(fb.count("register"), ShouldEqual, 0)
	})

	Convey("Given a valid registration and login", t, func() {
		fb := newFakeBackend()
		svc := service.New(fb)

		So(svc.Register(ctx, model.Registration{
			Username: "docente", Password: "secret123", PasswordConfirm: "secret123", Email: "d@x.io",
		}), ShouldBeNil)
		pair, err := svc.Login(ctx, model.Credentials{Username: "docente", Password: "secret123"})

		So(err, ShouldBeNil)
		So(pair.Access, ShouldEqual, "a")
		So(fb.count("register"), ShouldEqual, 1)
	})

	Convey("Given empty credentials", t, func() {
		fb := newFakeBackend()
		_, err := service.New(fb).Login(ctx, model.Credentials{})

		So(service.UserMessage(err), ShouldEqual, "username is required.")
		So(fb.count("login"), ShouldEqual, 0)
	})
}
