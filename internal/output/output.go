// Package output writes normalized results as JSON documents or tables.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"yfin/internal/format"
	"yfin/internal/normalize"
	"yfin/internal/record"
)

// Mode selects how results are written.
type Mode string

const (
	JSON  Mode = "json"
	Table Mode = "table"
)

// Modes lists every accepted output mode.
var Modes = []string{string(JSON), string(Table)}

// ErrNothingToWrite is returned when a writer is handed a NoData result.
var ErrNothingToWrite = errors.New("nothing to write")

// ParseMode converts s to a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case JSON, Table:
		return m, nil
	default:
		return "", fmt.Errorf("invalid output mode %q, choose from: %s", s, strings.Join(Modes, ", "))
	}
}

// Writer renders a result to w.
type Writer interface {
	Write(w io.Writer, res normalize.Result) error
}

// NewWriter returns the writer for mode. Spec selects per-field cell
// formatting in table mode and is ignored for JSON.
func NewWriter(mode Mode, spec *format.Spec) Writer {
	if mode == Table {
		return &TableWriter{Spec: spec}
	}
	return &JSONWriter{Indent: "  "}
}

// JSONWriter writes a single record as an object and a list as an array of
// objects.
type JSONWriter struct {
	Indent string
}

func (jw *JSONWriter) Write(w io.Writer, res normalize.Result) error {
	var doc any
	switch r := res.(type) {
	case normalize.Single:
		doc = r.Record
	case normalize.List:
		doc = r.Records
	case normalize.NoData:
		return ErrNothingToWrite
	default:
		return fmt.Errorf("unknown result %T", res)
	}

	data, err := json.MarshalIndent(doc, "", jw.Indent)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// TableWriter renders records as a bordered table. Headers are the fields of
// the first record; a record missing one of them gets an empty cell.
type TableWriter struct {
	Spec *format.Spec
}

func (tw *TableWriter) Write(w io.Writer, res normalize.Result) error {
	var recs []*record.Record
	switch r := res.(type) {
	case normalize.Single:
		recs = []*record.Record{r.Record}
	case normalize.List:
		recs = r.Records
	case normalize.NoData:
		return ErrNothingToWrite
	default:
		return fmt.Errorf("unknown result %T", res)
	}

	headers := recs[0].Keys()
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		row := make([]string, len(headers))
		for i, h := range headers {
			if v, ok := rec.Get(h); ok {
				row[i] = tw.Spec.Cell(h, v)
			}
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)

	_, err := fmt.Fprintln(w, t.Render())
	return err
}
