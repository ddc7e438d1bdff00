package resolve

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/okian/gradebase/internal/domain/model"
)

// ErrNotCollection is returned when a body is neither a list nor a
// {"results": [...]} envelope.
var ErrNotCollection = errors.New("response is not a collection")

// Page is a decoded collection with the envelope's paging hints, if any.
type Page struct {
	Records []model.RawRecord
	Count   int
	Next    string
}

// DecodeCollection accepts either a bare JSON array or a paginated envelope.
// Numbers are kept as json.Number; non-object items are skipped.
func DecodeCollection(body []byte) (Page, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Page{}, ErrNotCollection
	}

	var items []any
	var page Page
	switch body[0] {
	case '[':
		if err := decode(body, &items); err != nil {
			return Page{}, err
		}
	case '{':
		var env struct {
			Results *[]any      `json:"results"`
			Count   json.Number `json:"count"`
			Next    *string     `json:"next"`
		}
		if err := decode(body, &env); err != nil {
			return Page{}, err
		}
		if env.Results == nil {
			return Page{}, ErrNotCollection
		}
		items = *env.Results
		if n, err := env.Count.Int64(); err == nil {
			page.Count = int(n)
		}
		if env.Next != nil {
			page.Next = *env.Next
		}
	default:
		return Page{}, ErrNotCollection
	}

	page.Records = make([]model.RawRecord, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			page.Records = append(page.Records, model.RawRecord(m))
		}
	}
	if page.Count == 0 {
		page.Count = len(page.Records)
	}
	return page, nil
}

// DecodeRecord decodes a single JSON object.
func DecodeRecord(body []byte) (model.RawRecord, error) {
	var m map[string]any
	if err := decode(body, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: null object", ErrNotCollection)
	}
	return model.RawRecord(m), nil
}

func decode(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// DecodePredictions splits an ML response into its model description and
// prediction records. A bare array is accepted as predictions only.
func DecodePredictions(body []byte) (model.ModelInfo, []model.RawRecord, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		page, err := DecodeCollection(body)
		return nil, page.Records, err
	}

	var env struct {
		Model       map[string]any `json:"model"`
		Predictions []any          `json:"predictions"`
	}
	if err := decode(body, &env); err != nil {
		return nil, nil, err
	}
	records := make([]model.RawRecord, 0, len(env.Predictions))
	for _, it := range env.Predictions {
		if m, ok := it.(map[string]any); ok {
			records = append(records, model.RawRecord(m))
		}
	}
	return model.ModelInfo(env.Model), records, nil
}
