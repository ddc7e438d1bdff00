package resolve

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/okian/gradebase/internal/domain/model"
)

// lookup returns the first usable candidate among aliases. A candidate is
// usable when it is present, not null and scalar; embedded objects and
// arrays are skipped so "estudiante" can be either an id or an object.
func lookup(raw model.RawRecord, aliases []string) (any, bool) {
	for _, alias := range aliases {
		v, ok := walk(raw, alias)
		if !ok || v == nil || !scalar(v) {
			continue
		}
		return v, true
	}
	return nil, false
}

func walk(raw map[string]any, path string) (any, bool) {
	var cur any = raw
	for _, part := range strings.Split(path, ".") {
		var m map[string]any
		switch t := cur.(type) {
		case map[string]any:
			m = t
		case model.RawRecord:
			m = t
		default:
			return nil, false
		}
		v, ok := m[part]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func scalar(v any) bool {
	switch v.(type) {
	case string, bool, json.Number,
		float64, float32,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func text(raw model.RawRecord, aliases []string) string {
	v, ok := lookup(raw, aliases)
	if !ok {
		return ""
	}
	return toText(v)
}

// nonBlankText is like text but treats whitespace-only values as absent.
func nonBlankText(raw model.RawRecord, aliases []string) string {
	for _, alias := range aliases {
		if s := strings.TrimSpace(text(raw, []string{alias})); s != "" {
			return s
		}
	}
	return ""
}

func number(raw model.RawRecord, aliases []string) (float64, bool) {
	v, ok := lookup(raw, aliases)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

func integer(raw model.RawRecord, aliases []string) int64 {
	f, ok := number(raw, aliases)
	if !ok || f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0
	}
	return int64(f)
}

func toText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int8:
		f = float64(t)
	case int16:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint8:
		f = float64(t)
	case uint16:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		p, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = p
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
