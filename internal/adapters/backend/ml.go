package backend

import (
	"context"
	"net/http"

	"github.com/okian/gradebase/internal/domain/model"
	"github.com/okian/gradebase/internal/domain/resolve"
)

const (
	pathProjection = pathGrades + "ml/proyeccion/"
	pathRisk       = pathGrades + "ml/riesgo/"
)

// mlBody scopes an ML run by section id, or by course and section name.
func mlBody(f model.Filter) map[string]any {
	f = f.Normalized()
	if f.SectionID > 0 {
		return map[string]any{"seccion_id": f.SectionID}
	}
	return map[string]any{"curso": f.CourseCode, "seccion": f.SectionName}
}

// Projection runs the final-grade projection model for one section.
func (c *Client) Projection(ctx context.Context, f model.Filter) (model.Projection, error) {
	info, records, err := c.predictions(ctx, "ml.projection", pathProjection, f)
	if err != nil {
		return model.Projection{}, err
	}
	return model.Projection{Model: info, Predictions: resolve.Projections(records)}, nil
}

// Risk runs the risk classification model for one section.
func (c *Client) Risk(ctx context.Context, f model.Filter) (model.Risk, error) {
	info, records, err := c.predictions(ctx, "ml.risk", pathRisk, f)
	if err != nil {
		return model.Risk{}, err
	}
	return model.Risk{Model: info, Predictions: resolve.Risks(records)}, nil
}

func (c *Client) predictions(ctx context.Context, op, path string, f model.Filter) (model.ModelInfo, []model.RawRecord, error) {
	res, err := c.do(ctx, call{op: op, method: http.MethodPost, path: path, body: mlBody(f)})
	if err != nil {
		return nil, nil, err
	}
	info, records, err := resolve.DecodePredictions(res.body)
	if err != nil {
		return nil, nil, &Error{Op: op, Status: res.status, Kind: ErrTransport, Err: err}
	}
	return info, records, nil
}
