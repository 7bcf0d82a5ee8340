package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"yfin/internal/fetcher"
	"yfin/internal/format"
	"yfin/internal/normalize"
	"yfin/internal/output"
	"yfin/internal/record"
	"yfin/internal/validate"
)

func fetchOf(v any, err error) fetcher.Func {
	return func(ctx context.Context) (any, error) { return v, err }
}

func TestRun_OHLCV(t *testing.T) {
	frame := &fetcher.Frame{
		IndexName: "Date",
		Columns:   []string{"Open", "High", "Low", "Close", "Volume"},
	}
	frame.AddRow(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), 187.15, 188.44, 183.89, 185.64, int64(82488700))
	frame.AddRow(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), 184.22, 185.88, 183.43, 184.25, int64(58414500))

	var buf bytes.Buffer
	err := Run(context.Background(), Job{Fetch: fetchOf(frame, nil), IndexField: "Date"}, output.JSON, &buf)
	if err != nil {
		t.Fatalf("Run() returned unexpected error: %v", err)
	}

	want := `[
  {
    "Date": "2024-01-02",
    "Open": 187.15,
    "High": 188.44,
    "Low": 183.89,
    "Close": 185.64,
    "Volume": 82488700
  },
  {
    "Date": "2024-01-03",
    "Open": 184.22,
    "High": 185.88,
    "Low": 183.43,
    "Close": 184.25,
    "Volume": 58414500
  }
]
`
	if got := buf.String(); got != want {
		t.Errorf("Run() wrote\n%s\nwant\n%s", got, want)
	}
}

func TestRun_NoData(t *testing.T) {
	tests := []struct {
		name string
		raw  any
	}{
		{"nil", nil},
		{"typed nil frame", (*fetcher.Frame)(nil)},
		{"zero row frame", &fetcher.Frame{Columns: []string{"Open"}}},
		{"empty list", []*record.Record{}},
		{"empty mapping", map[string]any{}},
		{"empty record", record.New()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Run(context.Background(), Job{Fetch: fetchOf(tt.raw, nil)}, output.JSON, &buf)
			if !errors.Is(err, ErrNoData) {
				t.Fatalf("Run() error = %v, want ErrNoData", err)
			}
			if buf.Len() != 0 {
				t.Errorf("Run() wrote %q for no data", buf.String())
			}
			if got := ExitCode(err); got != ExitError {
				t.Errorf("ExitCode() = %d, want %d", got, ExitError)
			}
		})
	}
}

func TestRun_ValidationFailsFast(t *testing.T) {
	fetched := false
	job := Job{
		Validate: func() error {
			_, err := validate.Date("2024-13-01")
			return err
		},
		Fetch: func(ctx context.Context) (any, error) {
			fetched = true
			return record.Of("a", 1), nil
		},
	}

	var buf bytes.Buffer
	err := Run(context.Background(), job, output.JSON, &buf)
	if validate.KindOf(err) != validate.InvalidDateFormat {
		t.Fatalf("Run() error = %v, want an invalid date usage error", err)
	}
	if fetched {
		t.Error("Run() fetched despite a validation failure")
	}
	if got := ExitCode(err); got != ExitUsage {
		t.Errorf("ExitCode() = %d, want %d", got, ExitUsage)
	}
}

func TestRun_FetchError(t *testing.T) {
	fetchErr := fetcher.NewServerError(503)

	var buf bytes.Buffer
	err := Run(context.Background(), Job{Fetch: fetchOf(nil, fetchErr)}, output.JSON, &buf)

	var fe *fetcher.FetchError
	if !errors.As(err, &fe) || fe.Type != fetcher.ErrorTypeServer {
		t.Fatalf("Run() error = %v, want the server FetchError", err)
	}
	if got := ExitCode(err); got != ExitError {
		t.Errorf("ExitCode() = %d, want %d", got, ExitError)
	}
}

func TestRun_UnsupportedResult(t *testing.T) {
	var buf bytes.Buffer
	err := Run(context.Background(), Job{Fetch: fetchOf("just a string", nil)}, output.JSON, &buf)
	if !errors.Is(err, normalize.ErrUnsupportedResultType) {
		t.Fatalf("Run() error = %v, want ErrUnsupportedResultType", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Run() wrote %q for an unsupported result", buf.String())
	}
}

func TestRun_TableUsesFormat(t *testing.T) {
	job := Job{
		Fetch: fetchOf(record.Of("lastPrice", 1234.5, "marketCap", 2.5e12, "yearChange", 0.1234), nil),
		Format: &format.Spec{Fields: map[string]format.Func{
			"lastPrice":  format.Price,
			"marketCap":  format.MarketCap,
			"yearChange": format.PercentOf("yearChange"),
		}},
	}

	var buf bytes.Buffer
	if err := Run(context.Background(), job, output.Table, &buf); err != nil {
		t.Fatalf("Run() returned unexpected error: %v", err)
	}
	for _, want := range []string{"$1,234.50", "$2.50T", "12.34%"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("table output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"usage", validate.Usage(validate.TooManyOptions, "too many"), ExitUsage},
		{"wrapped usage", fmt.Errorf("command: %w", validate.Usage(validate.InvalidChoice, "bad")), ExitUsage},
		{"no data", ErrNoData, ExitError},
		{"other", errors.New("boom"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
