// Package roster indexes a section's students and backfills identity fields
// on grade rows that arrived without them.
package roster

import "github.com/okian/gradebase/internal/domain/model"

// Index is a read-only lookup over one roster, by numeric id and by code.
// Codes match exactly (case-sensitive). When two students share a code the
// last one in the input wins.
type Index struct {
	byID   map[int64]model.StudentRecord
	byCode map[string]model.StudentRecord
}

// Build indexes students in a single pass.
func Build(students []model.StudentRecord) *Index {
	idx := &Index{
		byID:   make(map[int64]model.StudentRecord, len(students)),
		byCode: make(map[string]model.StudentRecord, len(students)),
	}
	for _, s := range students {
		if s.ID != 0 {
			idx.byID[s.ID] = s
		}
		if s.Code != "" {
			idx.byCode[s.Code] = s
		}
	}
	return idx
}

// ByID returns the student with the given id.
func (x *Index) ByID(id int64) (model.StudentRecord, bool) {
	if x == nil || id == 0 {
		return model.StudentRecord{}, false
	}
	s, ok := x.byID[id]
	return s, ok
}

// ByCode returns the student with the given code.
func (x *Index) ByCode(code string) (model.StudentRecord, bool) {
	if x == nil || code == "" {
		return model.StudentRecord{}, false
	}
	s, ok := x.byCode[code]
	return s, ok
}

// Len returns the number of distinct student ids indexed.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.byID)
}
