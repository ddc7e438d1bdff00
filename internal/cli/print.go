package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/volatiletech/null/v8"

	"github.com/okian/gradebase/internal/domain/model"
)

// overlay columns appended to the grade table
type columns int

const (
	columnsNone columns = iota
	columnsProjection
	columnsRisk
)

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func row(w io.Writer, cells ...string) {
	fmt.Fprintln(w, strings.Join(cells, "\t"))
}

func printSections(out io.Writer, sections []model.SectionRecord) error {
	tw := newTable(out)
	row(tw, "ID", "COURSE", "SECTION")
	for _, s := range sections {
		row(tw, strconv.FormatInt(s.ID, 10), s.CourseCode, s.Name)
	}
	return tw.Flush()
}

func printStudents(out io.Writer, students []model.StudentRecord) error {
	tw := newTable(out)
	row(tw, "ID", "CODE", "NAME")
	for _, s := range students {
		row(tw, strconv.FormatInt(s.ID, 10), s.Code, s.DisplayName())
	}
	return tw.Flush()
}

func printRows(out io.Writer, rows []model.ViewRow, extra columns) error {
	tw := newTable(out)
	header := []string{"ID", "CODE", "NAME", "COURSE", "SECTION", "AV1", "AV2", "AV3", "PART", "PROJECT", "FINAL"}
	switch extra {
	case columnsProjection:
		header = append(header, "PROJECTED")
	case columnsRisk:
		header = append(header, "RISK", "PROBABILITY")
	}
	row(tw, header...)

	for _, r := range rows {
		cells := []string{
			strconv.FormatInt(r.ID, 10), dash(r.StudentCode), dash(r.StudentName), r.CourseCode, r.SectionName,
			score(r.Assessment1), score(r.Assessment2), score(r.Assessment3),
			score(r.Participation), score(r.Project), score(r.FinalGrade),
		}
		switch extra {
		case columnsProjection:
			if r.Projection != nil {
				cells = append(cells, number(r.Projection.PredictedFinal))
			} else {
				cells = append(cells, "-")
			}
		case columnsRisk:
			if r.Risk != nil {
				cells = append(cells, dash(string(r.Risk.RiskClass)), number(r.Risk.RiskProbability))
			} else {
				cells = append(cells, "-", "-")
			}
		}
		row(tw, cells...)
	}
	if _, err := fmt.Fprintf(tw, "\n%d rows\n", len(rows)); err != nil {
		return err
	}
	return tw.Flush()
}

func score(v null.Float64) string {
	if !v.Valid {
		return "-"
	}
	return number(v.Float64)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
