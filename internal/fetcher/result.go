package fetcher

// Frame is a two-dimensional labeled table as returned by the data source.
// Rows[i] holds one value per entry in Columns. A nil Index is a plain
// 0..n-1 range index carrying no meaning of its own.
type Frame struct {
	// IndexName names the row labels, e.g. "Date" or "Symbol". It may be empty.
	IndexName string

	// Index holds one label per row, or nil for a range index.
	Index []any

	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

// AddRow appends a row labeled with label. A frame stays range-indexed while
// every label is nil; the first non-nil label gives the earlier rows nil labels.
func (f *Frame) AddRow(label any, values ...any) {
	if f.Index == nil && label != nil {
		f.Index = make([]any, len(f.Rows), len(f.Rows)+1)
	}
	if f.Index != nil {
		f.Index = append(f.Index, label)
	}
	f.Rows = append(f.Rows, values)
}

// Series is a one-dimensional labeled sequence.
type Series struct {
	// Name is the series name; it becomes the value field name.
	Name      string
	IndexName string
	Index     []any
	Values    []any
}

// Len returns the number of values.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Values)
}
