package yahoo

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"

	"yfin/internal/fetcher"
	"yfin/internal/record"
)

// raw unwraps Yahoo's {"raw": 1.5, "fmt": "1.50"} value objects. An empty
// object stands for a missing value.
func raw(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if r, ok := t["raw"]; ok {
			return r
		}
		if len(t) == 0 {
			return nil
		}
	case *record.Record:
		if r, ok := t.Get("raw"); ok {
			return r
		}
		if t.Len() == 0 {
			return nil
		}
	}
	return v
}

// isScalar reports whether v can be a field of a flat record.
func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, float64, float32, int, int64, int32:
		return true
	}
	return false
}

// flatten keeps the scalar fields of r, unwrapping raw values first. Nested
// objects and lists are dropped.
func flatten(r *record.Record) *record.Record {
	out := record.New()
	r.Each(func(key string, v any) {
		if v = raw(v); isScalar(v) {
			out.Set(key, v)
		}
	})
	return out
}

// epoch converts Unix seconds to a UTC time. Missing values stay nil.
func epoch(v any) any {
	v = raw(v)
	if v == nil {
		return nil
	}
	secs, err := cast.ToInt64E(v)
	if err != nil {
		return v
	}
	return time.Unix(secs, 0).UTC()
}

// epochDate converts Unix seconds to the UTC calendar date.
func epochDate(v any) any {
	t, ok := epoch(v).(time.Time)
	if !ok {
		return epoch(v)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z", time.DateTime, time.DateOnly}

// parseTime converts the date strings Yahoo uses into times. Values that do
// not parse are returned unchanged.
func parseTime(v any) any {
	s, ok := v.(string)
	if !ok || s == "" {
		return raw(v)
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return s
}

// number reads a numeric value, mapping missing values to nil.
func number(v any) any {
	v = raw(v)
	if v == nil {
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) {
		return nil
	}
	return f
}

// percentToFraction converts a 0-100 value to a fraction.
func percentToFraction(v any) any {
	f, ok := number(v).(float64)
	if !ok {
		return nil
	}
	return f / 100
}

// column maps one source key to an output column.
type column struct {
	key  string
	name string
	conv func(any) any
}

func (c column) value(r *record.Record) any {
	v, _ := r.Get(c.key)
	if c.conv != nil {
		return c.conv(v)
	}
	v = raw(v)
	if !isScalar(v) {
		return nil
	}
	return v
}

func columnNames(cols []column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}
	return names
}

// frameOf builds a frame from items. When index is set its value labels each
// row under indexName; otherwise the frame has a range index.
func frameOf(items []*record.Record, indexName string, index *column, cols []column) *fetcher.Frame {
	f := &fetcher.Frame{IndexName: indexName, Columns: columnNames(cols)}
	if index != nil {
		f.Index = []any{}
	}
	for _, item := range items {
		row := make([]any, len(cols))
		for i, c := range cols {
			row[i] = c.value(item)
		}
		if index != nil {
			f.AddRow(index.value(item), row...)
		} else {
			f.AddRow(nil, row...)
		}
	}
	return f
}

var (
	camelBoundary   = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	acronymBoundary = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
)

// prettyName turns a camel case metric key into words: "DilutedEPS" becomes
// "Diluted EPS".
func prettyName(key string) string {
	s := acronymBoundary.ReplaceAllString(key, "$1 $2")
	s = camelBoundary.ReplaceAllString(s, "$1 $2")
	return strings.TrimSpace(s)
}

// recordsOf flattens items, dropping empty ones.
func recordsOf(items []*record.Record) []*record.Record {
	out := make([]*record.Record, 0, len(items))
	for _, item := range items {
		if item.Len() > 0 {
			out = append(out, flatten(item))
		}
	}
	return out
}
