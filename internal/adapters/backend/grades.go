package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/okian/gradebase/internal/domain/model"
	"github.com/okian/gradebase/internal/domain/resolve"
)

const (
	pathGrades   = "notas/"
	pathSections = "secciones/"
	pathStudents = "estudiantes/"
)

// Grades returns the raw grade records matching f. When f asks for no
// particular page, "next" links are followed until the collection ends.
func (c *Client) Grades(ctx context.Context, f model.Filter) ([]model.RawRecord, error) {
	return c.collection(ctx, "grades.list", pathGrades, c.gradeQuery(f), f.Page == 0)
}

// Sections returns the section catalogue ordered by course code, then name.
func (c *Client) Sections(ctx context.Context) ([]model.SectionRecord, error) {
	q := url.Values{queryPageSize: {strconv.Itoa(c.pageSize)}}
	raws, err := c.collection(ctx, "sections.list", pathSections, q, true)
	if err != nil {
		return nil, err
	}
	return resolve.Sections(raws), nil
}

// Students returns the roster of one section.
func (c *Client) Students(ctx context.Context, sectionID int64) ([]model.StudentRecord, error) {
	q := url.Values{
		querySectionID: {strconv.FormatInt(sectionID, 10)},
		queryPageSize:  {strconv.Itoa(c.pageSize)},
	}
	raws, err := c.collection(ctx, "students.list", pathStudents, q, true)
	if err != nil {
		return nil, err
	}
	return resolve.Students(raws), nil
}

func (c *Client) collection(ctx context.Context, op, path string, q url.Values, follow bool) ([]model.RawRecord, error) {
	var out []model.RawRecord
	next := call{op: op, method: http.MethodGet, path: path, query: q}
	for page := 0; page < maxPages; page++ {
		res, err := c.do(ctx, next)
		if err != nil {
			return nil, err
		}
		p, err := resolve.DecodeCollection(res.body)
		if err != nil {
			return nil, &Error{Op: op, Status: res.status, Kind: ErrTransport, Err: err}
		}
		out = append(out, p.Records...)
		if !follow || p.Next == "" {
			return out, nil
		}
		// next links carry their own query string
		next = call{op: op, method: http.MethodGet, path: p.Next}
	}
	return out, nil
}

// CreateGrade posts a native-keyed grade body and returns the stored record.
func (c *Client) CreateGrade(ctx context.Context, body map[string]any) (model.RawRecord, error) {
	res, err := c.do(ctx, call{op: "grades.create", method: http.MethodPost, path: pathGrades, body: body})
	if err != nil {
		return nil, err
	}
	return optionalRecord(res.body), nil
}

// UpdateGrade replaces grade id with a native-keyed body.
func (c *Client) UpdateGrade(ctx context.Context, id int64, body map[string]any) (model.RawRecord, error) {
	res, err := c.do(ctx, call{op: "grades.update", method: http.MethodPut, path: gradePath(id), body: body})
	if err != nil {
		return nil, err
	}
	return optionalRecord(res.body), nil
}

// DeleteGrade removes grade id.
func (c *Client) DeleteGrade(ctx context.Context, id int64) error {
	_, err := c.do(ctx, call{op: "grades.delete", method: http.MethodDelete, path: gradePath(id)})
	return err
}

func gradePath(id int64) string {
	return fmt.Sprintf("%s%d/", pathGrades, id)
}

// optionalRecord decodes a write response. Writes are judged by status;
// an empty or non-object body is not an error.
func optionalRecord(body []byte) model.RawRecord {
	rec, err := resolve.DecodeRecord(body)
	if err != nil {
		return nil
	}
	return rec
}
