package service_test

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/gradebase/internal/adapters/backend"
	"github.com/okian/gradebase/internal/domain/model"
)

// fakeBackend records calls and answers from overridable funcs.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	grades     func(ctx context.Context, f model.Filter) ([]model.RawRecord, error)
	students   func(ctx context.Context, sectionID int64) ([]model.StudentRecord, error)
	write      func(op string, id int64, body map[string]any) error
	projection func(ctx context.Context, f model.Filter) (model.Projection, error)
	risk       func(ctx context.Context, f model.Filter) (model.Risk, error)

	lastFilter model.Filter
	lastBody   map[string]any
	lastID     int64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{calls: map[string]int{}}
}

func (f *fakeBackend) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) Grades(ctx context.Context, flt model.Filter) ([]model.RawRecord, error) {
	f.hit("grades")
	f.mu.Lock()
	f.lastFilter = flt
	fn := f.grades
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx, flt)
}

func (f *fakeBackend) Students(ctx context.Context, sectionID int64) ([]model.StudentRecord, error) {
	f.hit("students")
	if f.students == nil {
		return nil, nil
	}
	return f.students(ctx, sectionID)
}

func (f *fakeBackend) Sections(ctx context.Context) ([]model.SectionRecord, error) {
	f.hit("sections")
	return []model.SectionRecord{{ID: 4, Name: "A", CourseCode: "MAT101"}}, nil
}

func (f *fakeBackend) submit(op string, id int64, body map[string]any) error {
	f.hit(op)
	f.mu.Lock()
	f.lastBody, f.lastID = body, id
	fn := f.write
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(op, id, body)
}

func (f *fakeBackend) CreateGrade(ctx context.Context, body map[string]any) (model.RawRecord, error) {
	return nil, f.submit("create", 0, body)
}

func (f *fakeBackend) UpdateGrade(ctx context.Context, id int64, body map[string]any) (model.RawRecord, error) {
	return nil, f.submit("update", id, body)
}

func (f *fakeBackend) DeleteGrade(ctx context.Context, id int64) error {
	return f.submit("delete", id, nil)
}

func (f *fakeBackend) Export(ctx context.Context, format backend.ExportFormat, flt model.Filter) (backend.Blob, error) {
	f.hit("export")
	return backend.Blob{Name: "notas." + string(format), Data: []byte("x")}, nil
}

func (f *fakeBackend) Projection(ctx context.Context, flt model.Filter) (model.Projection, error) {
	f.hit("projection")
	if f.projection == nil {
		return model.Projection{}, nil
	}
	return f.projection(ctx, flt)
}

func (f *fakeBackend) Risk(ctx context.Context, flt model.Filter) (model.Risk, error) {
	f.hit("risk")
	if f.risk == nil {
		return model.Risk{}, nil
	}
	return f.risk(ctx, flt)
}

func (f *fakeBackend) Register(ctx context.Context, r model.Registration) error {
	f.hit("register")
	return nil
}

func (f *fakeBackend) Login(ctx context.Context, c model.Credentials) (model.TokenPair, error) {
	f.hit("login")
	return model.TokenPair{Access: "a"}, nil
}

// keysOf returns the sorted keys of a write body.
func keysOf(body map[string]any) []string {
	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// section rows: five complete grades in section 4
func sectionRows() []model.RawRecord {
	rows := make([]model.RawRecord, 0, 5)
	for i, code := range []string{"S1", "S2", "S3", "S4", "S5"} {
		rows = append(rows, model.RawRecord{
			"id":                float64(i + 1),
			"seccion":           4.0,
			"estudiante":        float64(10 + i),
			"estudiante_codigo": code,
			"estudiante_nombre": "Student " + code,
			"nota_final":        12.0,
		})
	}
	return rows
}
