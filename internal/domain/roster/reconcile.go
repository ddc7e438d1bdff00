package roster

import "github.com/okian/gradebase/internal/domain/model"

// Lookup outcomes reported by Reconcile.
const (
	MatchedByID   = "id"
	MatchedByCode = "code"
	Unresolved    = "unresolved"
)

// Report counts what Reconcile did with the incomplete rows it saw.
type Report struct {
	Incomplete int
	ByID       int
	ByCode     int
	Unresolved int
}

// Each calls fn once per outcome with its count, skipping zero counts.
func (r Report) Each(fn func(outcome string, n int)) {
	for _, o := range []struct {
		name string
		n    int
	}{{MatchedByID, r.ByID}, {MatchedByCode, r.ByCode}, {Unresolved, r.Unresolved}} {
		if o.n > 0 {
			fn(o.name, o.n)
		}
	}
}

// Incomplete counts rows missing a student code or name.
func Incomplete(rows []model.GradeRow) int {
	n := 0
	for i := range rows {
		if !rows[i].Complete() {
			n++
		}
	}
	return n
}

// Reconcile fills the student code and name of incomplete rows in place.
// Rows that already carry both are left untouched. For the rest the raw
// student id is tried first and the resolved code second; a row neither
// matches keeps whatever it had. Running it again on its own output changes
// nothing.
func Reconcile(rows []model.GradeRow, idx *Index) Report {
	var rep Report
	for i := range rows {
		row := &rows[i]
		if row.Complete() {
			continue
		}
		rep.Incomplete++

		if s, ok := idx.ByID(row.StudentID); ok {
			row.StudentCode = s.Code
			row.StudentName = s.DisplayName()
			rep.ByID++
			continue
		}
		if s, ok := idx.ByCode(row.StudentCode); ok {
			row.StudentName = s.DisplayName()
			if row.StudentID == 0 {
				row.StudentID = s.ID
			}
			rep.ByCode++
			continue
		}
		rep.Unresolved++
	}
	return rep
}
