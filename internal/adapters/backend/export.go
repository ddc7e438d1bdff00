package backend

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/okian/gradebase/internal/domain/model"
)

// ExportFormat is a file format the backend can render grades into.
type ExportFormat string

// Supported export formats.
const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
	FormatPDF  ExportFormat = "pdf"
)

// ParseExportFormat accepts csv, xlsx or pdf in any case.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Blob is an exported file as served by the backend.
type Blob struct {
	Name        string
	ContentType string
	Data        []byte
}

// Export asks the backend to render the grades matching f. The bytes are
// returned untouched; Name is the backend's suggested file name or
// notas_<UTC timestamp>.<format>.
func (c *Client) Export(ctx context.Context, format ExportFormat, f model.Filter) (Blob, error) {
	format, err := ParseExportFormat(string(format))
	if err != nil {
		return Blob{}, err
	}
	res, err := c.do(ctx, call{
		op:     "grades.export",
		method: http.MethodGet,
		path:   fmt.Sprintf("%sexport/%s/", pathGrades, format),
		query:  c.gradeQuery(f),
	})
	if err != nil {
		return Blob{}, err
	}

	name := attachmentName(res.header.Get("Content-Disposition"))
	if name == "" {
		name = fmt.Sprintf("notas_%s.%s", c.now().UTC().Format("20060102T150405Z"), format)
	}
	return Blob{Name: name, ContentType: res.header.Get("Content-Type"), Data: res.body}, nil
}

func attachmentName(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	name := filepath.Base(params["filename"])
	if name == "." || name == "/" {
		return ""
	}
	return name
}
