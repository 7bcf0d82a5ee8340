// Package normalize reduces the raw values returned by the data source to a
// single record or an ordered list of records.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"time"

	"yfin/internal/fetcher"
	"yfin/internal/record"
)

// DefaultIndexField names the row label field when neither the caller nor the
// frame provides one.
const DefaultIndexField = "index"

// defaultSeriesField names the value field of an unnamed series.
const defaultSeriesField = "value"

// ErrUnsupportedResultType is returned for raw values of a shape the normalizer
// does not know. It indicates a command wired to the wrong source call.
var ErrUnsupportedResultType = errors.New("unsupported result type")

// Result is the canonical form of a raw value: Single, List or NoData.
type Result interface {
	result()
}

// Single is a result consisting of one record.
type Single struct {
	Record *record.Record
}

// List is a result consisting of an ordered, non-empty list of records.
type List struct {
	Records []*record.Record
}

// NoData is the result of a nil or empty raw value.
type NoData struct{}

func (Single) result() {}
func (List) result()   {}
func (NoData) result() {}

// Records returns the records of r in order. NoData has none.
func Records(r Result) []*record.Record {
	switch v := r.(type) {
	case Single:
		return []*record.Record{v.Record}
	case List:
		return v.Records
	case NoData:
		return nil
	default:
		panic(fmt.Sprintf("normalize: unknown result %T", r))
	}
}

// Normalize converts raw into a Result. For labeled tables and sequences,
// indexField names the field the row label is stored under; when empty the
// table's own index name is used, then DefaultIndexField.
func Normalize(raw any, indexField string) (Result, error) {
	if isNil(raw) {
		return NoData{}, nil
	}

	switch v := raw.(type) {
	case *fetcher.Frame:
		return fromFrame(v, indexField)
	case *fetcher.Series:
		return fromSeries(v, indexField)
	case *record.Record:
		return fromRecord(v)
	case map[string]any:
		return fromMap(v)
	case []*record.Record:
		return fromRecords(v)
	case []map[string]any:
		recs := make([]*record.Record, 0, len(v))
		for _, m := range v {
			recs = append(recs, mapRecord(m))
		}
		return fromRecords(recs)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedResultType, raw)
	}
}

func fromFrame(f *fetcher.Frame, indexField string) (Result, error) {
	if f.Len() == 0 {
		return NoData{}, nil
	}
	if f.Index != nil && len(f.Index) != len(f.Rows) {
		return nil, fmt.Errorf("%w: frame has %d index labels for %d rows",
			ErrUnsupportedResultType, len(f.Index), len(f.Rows))
	}

	withIndex := !isRangeIndex(f.Index)
	name := indexName(indexField, f.IndexName, DefaultIndexField)

	recs := make([]*record.Record, 0, len(f.Rows))
	for i, row := range f.Rows {
		if len(row) != len(f.Columns) {
			return nil, fmt.Errorf("%w: row %d has %d values for %d columns",
				ErrUnsupportedResultType, i, len(row), len(f.Columns))
		}

		rec := record.New()
		if withIndex {
			label, err := scalar(f.Index[i])
			if err != nil {
				return nil, fmt.Errorf("index of row %d: %w", i, err)
			}
			rec.Set(name, label)
		}
		for j, col := range f.Columns {
			val, err := scalar(row[j])
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", i, col, err)
			}
			rec.Set(col, val)
		}
		recs = append(recs, rec)
	}
	return List{Records: recs}, nil
}

func fromSeries(s *fetcher.Series, indexField string) (Result, error) {
	valueField := s.Name
	if valueField == "" {
		valueField = defaultSeriesField
	}

	f := &fetcher.Frame{
		IndexName: s.IndexName,
		Index:     s.Index,
		Columns:   []string{valueField},
		Rows:      make([][]any, 0, len(s.Values)),
	}
	for _, v := range s.Values {
		f.Rows = append(f.Rows, []any{v})
	}
	return fromFrame(f, indexField)
}

func fromRecord(r *record.Record) (Result, error) {
	if r.Len() == 0 {
		return NoData{}, nil
	}
	clean, err := canonical(r)
	if err != nil {
		return nil, err
	}
	return Single{Record: clean}, nil
}

func fromMap(m map[string]any) (Result, error) {
	if len(m) == 0 {
		return NoData{}, nil
	}
	return fromRecord(mapRecord(m))
}

func fromRecords(recs []*record.Record) (Result, error) {
	if len(recs) == 0 {
		return NoData{}, nil
	}
	out := make([]*record.Record, len(recs))
	for i, r := range recs {
		clean, err := canonical(r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out[i] = clean
	}
	return List{Records: out}, nil
}

// mapRecord converts a Go map to a record with keys in sorted order, since the
// map itself carries none.
func mapRecord(m map[string]any) *record.Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	r := record.New()
	for _, k := range keys {
		r.Set(k, m[k])
	}
	return r
}

// canonical returns r itself when every value is already a plain scalar, and a
// converted copy otherwise.
func canonical(r *record.Record) (*record.Record, error) {
	out := record.New()
	changed := false
	var err error
	r.Each(func(key string, v any) {
		if err != nil {
			return
		}
		s, serr := scalar(v)
		if serr != nil {
			err = fmt.Errorf("field %q: %w", key, serr)
			return
		}
		if isTime(v) {
			changed = true
		}
		out.Set(key, s)
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return r, nil
	}
	return out, nil
}

func isTime(v any) bool {
	switch v.(type) {
	case time.Time, *time.Time:
		return true
	}
	return false
}

// scalar checks that v is a string, number, bool or nil. Times are rendered as
// YYYY-MM-DD when they carry no time of day, RFC 3339 otherwise.
func scalar(v any) (any, error) {
	switch t := v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return v, nil
	case time.Time:
		return formatTime(t), nil
	case *time.Time:
		if t == nil {
			return nil, nil
		}
		return formatTime(*t), nil
	default:
		return nil, fmt.Errorf("%w: non-scalar value of type %T", ErrUnsupportedResultType, v)
	}
}

func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}

// isRangeIndex reports whether index is absent or exactly 0, 1, ..., n-1.
func isRangeIndex(index []any) bool {
	if index == nil {
		return true
	}
	for i, label := range index {
		n, ok := asInt(label)
		if !ok || n != int64(i) {
			return false
		}
	}
	return true
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	default:
		return 0, false
	}
}

func indexName(candidates ...string) string {
	i := slices.IndexFunc(candidates, func(s string) bool { return s != "" })
	if i < 0 {
		return ""
	}
	return candidates[i]
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
