package backend

import (
	"net/url"
	"strconv"

	"github.com/okian/gradebase/internal/domain/model"
)

// Native query keys of the grades collection.
const (
	queryCourse      = "seccion__curso__codigo"
	querySectionID   = "seccion"
	querySectionName = "seccion__nombre"
	queryStudentCode = "estudiante__codigo"
	queryPage        = "page"
	queryPageSize    = "page_size"
)

// gradeQuery maps a filter to the backend's query keys. A section id takes
// precedence over a section name; page is only sent when set.
func (c *Client) gradeQuery(f model.Filter) url.Values {
	f = f.Normalized()
	q := url.Values{}
	if f.CourseCode != "" {
		q.Set(queryCourse, f.CourseCode)
	}
	switch {
	case f.SectionID > 0:
		q.Set(querySectionID, strconv.FormatInt(f.SectionID, 10))
	case f.SectionName != "":
		q.Set(querySectionName, f.SectionName)
	}
	if f.StudentCode != "" {
		q.Set(queryStudentCode, f.StudentCode)
	}
	if f.Page > 0 {
		q.Set(queryPage, strconv.Itoa(f.Page))
	}
	size := f.PageSize
	if size <= 0 {
		size = c.pageSize
	}
	q.Set(queryPageSize, strconv.Itoa(size))
	return q
}
