package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"yfin/internal/config"
	"yfin/internal/fetcher"
	"yfin/internal/pipeline"
	"yfin/internal/record"
	"yfin/internal/screener"
	"yfin/internal/testutil"
	"yfin/internal/yahoo"
)

var testNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

type result struct {
	stdout string
	stderr string
	code   int
}

// runCLI runs yfin against src with no config file in reach.
func runCLI(t *testing.T, src *testutil.FakeSource, args ...string) result {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	var stdout, stderr bytes.Buffer
	a := newApp(&stdout, &stderr, func(*config.Config) (Source, func() error) { return src, nil })
	a.now = func() time.Time { return testNow }

	code := a.run(context.Background(), args)
	return result{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func decodeList(t *testing.T, s string) []map[string]any {
	t.Helper()
	var out []map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		t.Fatalf("decoding output %q: %v", s, err)
	}
	return out
}

func ohlcvFrame() *fetcher.Frame {
	f := &fetcher.Frame{IndexName: "Date", Columns: []string{"Open", "High", "Low", "Close", "Volume"}}
	f.AddRow(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), 187.15, 188.44, 183.89, 185.64, int64(82488700))
	f.AddRow(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), 184.22, 185.88, 183.43, 184.25, int64(58414500))
	return f
}

func TestHistory(t *testing.T) {
	var gotSymbol string
	var gotParams yahoo.HistoryParams
	src := &testutil.FakeSource{
		HistoryFunc: func(_ context.Context, symbol string, p yahoo.HistoryParams) (*fetcher.Frame, error) {
			gotSymbol, gotParams = symbol, p
			return ohlcvFrame(), nil
		},
	}

	res := runCLI(t, src, "history", "aapl")
	if res.code != pipeline.ExitOK {
		t.Fatalf("exit code = %d, want 0 (stderr %q)", res.code, res.stderr)
	}
	if gotSymbol != "AAPL" {
		t.Errorf("symbol = %q, want AAPL", gotSymbol)
	}
	if want := (yahoo.HistoryParams{Interval: "1d", Period: "1mo"}); gotParams != want {
		t.Errorf("params = %+v, want %+v", gotParams, want)
	}

	want := []map[string]any{
		{"Date": "2024-01-02", "Open": 187.15, "High": 188.44, "Low": 183.89, "Close": 185.64, "Volume": 82488700.0},
		{"Date": "2024-01-03", "Open": 184.22, "High": 185.88, "Low": 183.43, "Close": 184.25, "Volume": 58414500.0},
	}
	if diff := cmp.Diff(want, decodeList(t, res.stdout)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestHistory_Params(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want yahoo.HistoryParams
	}{
		{"start and end", []string{"--start", "2024-01-01", "--end", "2024-02-01"},
			yahoo.HistoryParams{Interval: "1d", Start: "2024-01-01", End: "2024-02-01"}},
		{"period and start", []string{"-p", "5d", "-s", "2024-01-01", "-i", "1h"},
			yahoo.HistoryParams{Interval: "1h", Period: "5d", Start: "2024-01-01"}},
		{"end only", []string{"--end", "2024-02-01"},
			yahoo.HistoryParams{Interval: "1d", End: "2024-02-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got yahoo.HistoryParams
			src := &testutil.FakeSource{
				HistoryFunc: func(_ context.Context, _ string, p yahoo.HistoryParams) (*fetcher.Frame, error) {
					got = p
					return ohlcvFrame(), nil
				},
			}
			res := runCLI(t, src, append([]string{"history", "MSFT"}, tt.args...)...)
			if res.code != pipeline.ExitOK {
				t.Fatalf("exit code = %d, want 0 (stderr %q)", res.code, res.stderr)
			}
			if got != tt.want {
				t.Errorf("params = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"too many range options", []string{"history", "AAPL", "--period", "1mo", "--start", "2024-01-01", "--end", "2024-02-01"}, "At most 2 of --period, --start, --end"},
		{"bad date", []string{"history", "AAPL", "--start", "2024-13-01"}, "Invalid date format: 2024-13-01"},
		{"bad interval", []string{"history", "AAPL", "--interval", "2h"}, "Invalid choice '2h'"},
		{"bad period", []string{"dividends", "AAPL", "--period", "7y"}, "Invalid choice '7y'"},
		{"missing ticker", []string{"history"}, "accepts 1 arg"},
		{"unknown flag", []string{"history", "AAPL", "--color"}, "unknown flag: --color"},
		{"unknown command", []string{"quote", "AAPL"}, "unknown command"},
		{"bad output", []string{"--output", "xml", "market-status"}, "Invalid choice 'xml'"},
		{"bad log level", []string{"--log-level", "chatty", "market-status"}, "Invalid log level 'chatty'"},
		{"news count", []string{"news", "AAPL", "--count", "0"}, "--count must be at least 1"},
		{"news tab", []string{"news", "AAPL", "--tab", "blogs"}, "Invalid choice 'blogs'"},
		{"calendar range", []string{"calendar-ipo", "--start", "2024-03-10", "--end", "2024-03-01"}, "Start date must be before end date."},
		{"market cap on ipo calendar", []string{"calendar-ipo", "--market-cap", "1000"}, "unknown flag: --market-cap"},
		{"trailing balance sheet", []string{"balance-sheet", "AAPL", "--frequency", "trailing"}, "Invalid choice 'trailing'"},
		{"negative offset", []string{"earnings-dates", "AAPL", "--offset", "-1"}, "--offset must be at least 0"},
		{"bad ticker", []string{"recommendations", "BRK/B"}, "Invalid ticker symbol"},
		{"bad sector key", []string{"sector-overview", "tech"}, "Invalid sector key 'tech'"},
		{"bad industry key", []string{"industry-overview", "technology"}, "Invalid industry key 'technology'"},
		{"bad industry-keys sector", []string{"industry-keys", "--sector", "nope"}, "Invalid sector key 'nope'"},
		{"screen predefined and filter", []string{"screen", "--predefined", "day_gainers", "--filter", "sector eq Technology"}, "Exactly one of --filter, --predefined, or --json-query must be specified."},
		{"screen predefined and empty filter", []string{"screen", "--predefined", "day_gainers", "--filter", ""}, "Exactly one of --filter, --predefined, or --json-query must be specified."},
		{"screen empty filter", []string{"screen", "--filter", ""}, "Invalid filter format: ''"},
		{"screen non-finite value", []string{"screen", "--filter", "beta gt NaN"}, "must be numeric"},
		{"screen nothing", []string{"screen"}, "Exactly one of"},
		{"screen non-numeric", []string{"screen", "--filter", "beta gt abc"}, "must be numeric"},
		{"screen limit", []string{"screen", "--predefined", "day_gainers", "--limit", "251"}, "--limit must be at most 250"},
		{"screen sort order", []string{"screen", "--predefined", "day_gainers", "--sort-order", "up"}, "Invalid choice 'up'"},
		{"screen sort field", []string{"screen", "--predefined", "day_gainers", "--sort-field", "color"}, "Invalid field: 'color'"},
		{"screen predefined", []string{"screen", "--predefined", "moonshots"}, "Invalid predefined query: 'moonshots'"},
		{"screen json", []string{"screen", "--json-query", "{"}, "Invalid JSON query"},
		{"screen-query-values field", []string{"screen-query-values", "color"}, "Invalid field: 'color'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &testutil.FakeSource{}
			res := runCLI(t, src, tt.args...)

			if res.code != pipeline.ExitUsage {
				t.Errorf("exit code = %d, want %d (stderr %q)", res.code, pipeline.ExitUsage, res.stderr)
			}
			if !strings.Contains(res.stderr, tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", res.stderr, tt.wantErr)
			}
			if res.stdout != "" {
				t.Errorf("stdout = %q, want nothing", res.stdout)
			}
			if calls := src.Calls(); len(calls) != 0 {
				t.Errorf("source called %v despite a usage error", calls)
			}
		})
	}
}

func TestNoData(t *testing.T) {
	tests := []struct {
		name string
		src  *testutil.FakeSource
		args []string
	}{
		{"empty frame", &testutil.FakeSource{
			HistoryFunc: func(context.Context, string, yahoo.HistoryParams) (*fetcher.Frame, error) {
				return &fetcher.Frame{IndexName: "Date", Columns: []string{"Open"}}, nil
			},
		}, []string{"history", "AAPL"}},
		{"nil record", &testutil.FakeSource{}, []string{"fast-info", "AAPL"}},
		{"empty list", &testutil.FakeSource{
			NewsFunc: func(context.Context, string, int, string) ([]*record.Record, error) {
				return []*record.Record{}, nil
			},
		}, []string{"news", "AAPL"}},
		{"empty mapping", &testutil.FakeSource{
			AnalysisFunc: func(context.Context, string, yahoo.AnalysisKind) (any, error) {
				return map[string]any{}, nil
			},
		}, []string{"price-targets", "AAPL"}},
		{"numeric field values", &testutil.FakeSource{}, []string{"screen-query-values", "beta"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, tt.src, tt.args...)
			if res.code != pipeline.ExitError {
				t.Errorf("exit code = %d, want %d", res.code, pipeline.ExitError)
			}
			if !strings.Contains(res.stderr, "No data found") {
				t.Errorf("stderr = %q, want a no data warning", res.stderr)
			}
			if res.stdout != "" {
				t.Errorf("stdout = %q, want nothing", res.stdout)
			}
		})
	}
}

func TestUnexpectedError(t *testing.T) {
	src := &testutil.FakeSource{
		StatementFunc: func(context.Context, string, yahoo.StatementKind, string) (*fetcher.Frame, error) {
			return nil, fetcher.NewServerError(503)
		},
	}

	res := runCLI(t, src, "income-stmt", "AAPL")
	if res.code != pipeline.ExitError {
		t.Errorf("exit code = %d, want %d", res.code, pipeline.ExitError)
	}
	if !strings.Contains(res.stderr, "Unexpected error: ") {
		t.Errorf("stderr = %q, want an unexpected error", res.stderr)
	}
}

func TestConfigError(t *testing.T) {
	t.Setenv("YFIN_CONCURRENCY", "0")

	res := runCLI(t, &testutil.FakeSource{}, "market-status")
	if res.code != pipeline.ExitError {
		t.Errorf("exit code = %d, want %d", res.code, pipeline.ExitError)
	}
	if !strings.Contains(res.stderr, "invalid configuration: concurrency") {
		t.Errorf("stderr = %q, want the configuration error", res.stderr)
	}
}

func TestFastInfo(t *testing.T) {
	infos := map[string]*record.Record{
		"AAPL": record.Of("currency", "USD", "lastPrice", 190.5),
		"MSFT": record.Of("currency", "USD", "lastPrice", 410.25),
	}

	t.Run("single ticker", func(t *testing.T) {
		src := &testutil.FakeSource{FastInfoFunc: testutil.FastInfoFor(infos)}
		res := runCLI(t, src, "fast-info", "aapl")
		if res.code != pipeline.ExitOK {
			t.Fatalf("exit code = %d, want 0 (stderr %q)", res.code, res.stderr)
		}

		var got map[string]any
		if err := json.Unmarshal([]byte(res.stdout), &got); err != nil {
			t.Fatalf("decoding output: %v", err)
		}
		if diff := cmp.Diff(map[string]any{"currency": "USD", "lastPrice": 190.5}, got); diff != "" {
			t.Errorf("output mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("several tickers keep order", func(t *testing.T) {
		src := &testutil.FakeSource{FastInfoFunc: testutil.FastInfoFor(infos)}
		res := runCLI(t, src, "fast-info", "MSFT", "AAPL")
		if res.code != pipeline.ExitOK {
			t.Fatalf("exit code = %d, want 0 (stderr %q)", res.code, res.stderr)
		}

		want := []map[string]any{
			{"symbol": "MSFT", "currency": "USD", "lastPrice": 410.25},
			{"symbol": "AAPL", "currency": "USD", "lastPrice": 190.5},
		}
		if diff := cmp.Diff(want, decodeList(t, res.stdout)); diff != "" {
			t.Errorf("output mismatch (-want +got):\n%s", diff)
		}
		if !strings.HasPrefix(strings.TrimSpace(res.stdout), "[\n  {\n    \"symbol\"") {
			t.Errorf("symbol is not the first field:\n%s", res.stdout)
		}
	})

	t.Run("one missing ticker fails the command", func(t *testing.T) {
		src := &testutil.FakeSource{FastInfoFunc: testutil.FastInfoFor(infos)}
		res := runCLI(t, src, "fast-info", "AAPL", "NOPE")
		if res.code != pipeline.ExitError {
			t.Errorf("exit code = %d, want %d", res.code, pipeline.ExitError)
		}
		if !strings.Contains(res.stderr, "NOPE") {
			t.Errorf("stderr = %q, want it to name NOPE", res.stderr)
		}
		if res.stdout != "" {
			t.Errorf("stdout = %q, want nothing", res.stdout)
		}
	})
}

func TestTableOutput(t *testing.T) {
	src := &testutil.FakeSource{
		HistoryFunc: func(context.Context, string, yahoo.HistoryParams) (*fetcher.Frame, error) {
			return ohlcvFrame(), nil
		},
	}

	res := runCLI(t, src, "--output", "table", "history", "AAPL")
	if res.code != pipeline.ExitOK {
		t.Fatalf("exit code = %d, want 0 (stderr %q)", res.code, res.stderr)
	}
	for _, want := range []string{"Date", "2024-01-02", "$187.15", "82,488,700"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("table missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestCalendar(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantKind yahoo.CalendarKind
		want     yahoo.CalendarParams
	}{
		{"default range", []string{"calendar-earnings"}, yahoo.EarningsCalendar,
			yahoo.CalendarParams{Start: "2024-03-15", End: "2024-03-22", Limit: 12}},
		{"start only", []string{"calendar-ipo", "--start", "2024-04-01", "--limit", "5", "--offset", "10"}, yahoo.IPOCalendar,
			yahoo.CalendarParams{Start: "2024-04-01", End: "2024-04-08", Limit: 5, Offset: 10}},
		{"end only", []string{"calendar-economic-events", "-e", "2024-04-08"}, yahoo.EconomicEventsCalendar,
			yahoo.CalendarParams{Start: "2024-04-01", End: "2024-04-08", Limit: 12}},
		{"market cap", []string{"calendar-earnings", "--market-cap", "1e10"}, yahoo.EarningsCalendar,
			yahoo.CalendarParams{Start: "2024-03-15", End: "2024-03-22", Limit: 12, MarketCap: 1e10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotKind yahoo.CalendarKind
			var got yahoo.CalendarParams
			src := &testutil.FakeSource{
				CalendarFunc: func(_ context.Context, kind yahoo.CalendarKind, p yahoo.CalendarParams) (*fetcher.Frame, error) {
					gotKind, got = kind, p
					f := &fetcher.Frame{IndexName: "Symbol", Columns: []string{"Company"}}
					f.AddRow("ACME", "Acme Corp")
					return f, nil
				},
			}

			res := runCLI(t, src, tt.args...)
			if res.code != pipeline.ExitOK {
				t.Fatalf("exit code = %d, want 0 (stderr %q)", res.code, res.stderr)
			}
			if gotKind != tt.wantKind {
				t.Errorf("kind = %q, want %q", gotKind, tt.wantKind)
			}
			if got != tt.want {
				t.Errorf("params = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStatement(t *testing.T) {
	var gotKind yahoo.StatementKind
	var gotFreq string
	src := &testutil.FakeSource{
		StatementFunc: func(_ context.Context, _ string, kind yahoo.StatementKind, freq string) (*fetcher.Frame, error) {
			gotKind, gotFreq = kind, freq
			f := &fetcher.Frame{IndexName: "Metric", Columns: []string{"2023-09-30"}}
			f.AddRow("Free Cash Flow", 99584000000.0)
			return f, nil
		},
	}

	res := runCLI(t, src, "--output", "table", "cashflow", "AAPL", "--frequency", "trailing")
	if res.code != pipeline.ExitOK {
		t.Fatalf("exit code = %d, want 0 (stderr %q)", res.code, res.stderr)
	}
	if gotKind != yahoo.CashFlow || gotFreq != "trailing" {
		t.Errorf("Statement(%q, %q), want (%q, trailing)", gotKind, gotFreq, yahoo.CashFlow)
	}
	for _, want := range []string{"Free Cash Flow", "99.58B"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("table missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestEarningsDates_SurpriseIsPoints(t *testing.T) {
	src := &testutil.FakeSource{
		EarningsDatesFunc: func(_ context.Context, _ string, limit, offset int) (*fetcher.Frame, error) {
			if limit != 4 || offset != 2 {
				t.Errorf("EarningsDates(limit %d, offset %d), want (4, 2)", limit, offset)
			}
			f := &fetcher.Frame{IndexName: "Earnings Date", Columns: []string{"EPS Estimate", "Reported EPS", "Surprise(%)"}}
			f.AddRow(time.Date(2024, 2, 1, 21, 30, 0, 0, time.UTC), 2.1, 2.18, 3.81)
			return f, nil
		},
	}

	res := runCLI(t, src, "--output", "table", "earnings-dates", "AAPL", "--limit", "4", "--offset", "2")
	if res.code != pipeline.ExitOK {
		t.Fatalf("exit code = %d, want 0 (stderr %q)", res.code, res.stderr)
	}
	for _, want := range []string{"2024-02-01", "2.18", "3.81%"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("table missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestAnalysisCommands(t *testing.T) {
	for _, kind := range yahoo.AnalysisKinds() {
		t.Run(string(kind), func(t *testing.T) {
			var got yahoo.AnalysisKind
			src := &testutil.FakeSource{
				AnalysisFunc: func(_ context.Context, symbol string, k yahoo.AnalysisKind) (any, error) {
					got = k
					return record.Of("symbol", symbol), nil
				},
			}

			res := runCLI(t, src, string(kind), "tsla")
			if res.code != pipeline.ExitOK {
				t.Fatalf("exit code = %d, want 0 (stderr %q)", res.code, res.stderr)
			}
			if got != kind {
				t.Errorf("Analysis kind = %q, want %q", got, kind)
			}
			if !strings.Contains(res.stdout, `"TSLA"`) {
				t.Errorf("output %q does not carry the normalized ticker", res.stdout)
			}
		})
	}
}

func TestHoldersTable(t *testing.T) {
	src := &testutil.FakeSource{
		AnalysisFunc: func(context.Context, string, yahoo.AnalysisKind) (any, error) {
			f := &fetcher.Frame{Columns: []string{"Date Reported", "Holder", "pctHeld", "Shares", "Value", "pctChange"}}
			f.AddRow(nil, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), "Vanguard Group Inc", 0.0834, 1.29e9, 2.48e11, -0.0123)
			return f, nil
		},
	}

	res := runCLI(t, src, "--output", "table", "institutional-holders", "AAPL")
	if res.code != pipeline.ExitOK {
		t.Fatalf("exit code = %d, want 0 (stderr %q)", res.code, res.stderr)
	}
	for _, want := range []string{"2023-12-31", "Vanguard Group Inc", "8.34%", "1,290,000,000", "248.00B", "-1.23%"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("table missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestSectorCommands(t *testing.T) {
	t.Run("keys", func(t *testing.T) {
		src := &testutil.FakeSource{}
		res := runCLI(t, src, "sector-keys")
		if res.code != pipeline.ExitOK {
			t.Fatalf("exit code = %d, want 0 (stderr %q)", res.code, res.stderr)
		}
		got := decodeList(t, res.stdout)
		if len(got) != len(screener.Sectors) {
			t.Fatalf("got %d sectors, want %d", len(got), len(screener.Sectors))
		}
		if diff := cmp.Diff(map[string]any{"key": "basic-materials", "name": "Basic Materials"}, got[0]); diff != "" {
			t.Errorf("first sector mismatch (-want +got):\n%s", diff)
		}
		if calls := src.Calls(); len(calls) != 0 {
			t.Errorf("sector-keys called the source: %v", calls)
		}
	})

	t.Run("view", func(t *testing.T) {
		var gotKey string
		var gotView yahoo.SectorView
		src := &testutil.FakeSource{
			SectorFunc: func(_ context.Context, key string, view yahoo.SectorView) (any, error) {
				gotKey, gotView = key, view
				return record.Of("name", "Technology"), nil
			},
		}
		res := runCLI(t, src, "sector-top-etfs", "technology")
		if res.code != pipeline.ExitOK {
			t.Fatalf("exit code = %d, want 0 (stderr %q)", res.code, res.stderr)
		}
		if gotKey != "technology" || gotView != yahoo.SectorTopETFs {
			t.Errorf("Sector(%q, %q), want (technology, %q)", gotKey, gotView, yahoo.SectorTopETFs)
		}
	})
}

func TestIndustryCommands(t *testing.T) {
	t.Run("keys of one sector", func(t *testing.T) {
		res := runCLI(t, &testutil.FakeSource{}, "industry-keys", "--sector", "technology")
		if res.code != pipeline.ExitOK {
			t.Fatalf("exit code = %d, want 0 (stderr %q)", res.code, res.stderr)
		}
		got := decodeList(t, res.stdout)
		if len(got) != len(screener.IndustriesBySector["Technology"]) {
			t.Errorf("got %d industries, want %d", len(got), len(screener.IndustriesBySector["Technology"]))
		}
		for _, rec := range got {
			if rec["sector"] != "technology" {
				t.Errorf("industry %v is not in technology", rec)
			}
		}
	})

	t.Run("view", func(t *testing.T) {
		var gotKey string
		var gotView yahoo.IndustryView
		src := &testutil.FakeSource{
			IndustryFunc: func(_ context.Context, key string, view yahoo.IndustryView) (any, error) {
				gotKey, gotView = key, view
				return []*record.Record{record.Of("symbol", "NVDA")}, nil
			},
		}
		key := yahoo.Slug(screener.IndustriesBySector["Technology"][0])
		res := runCLI(t, src, "industry-top-growth-companies", key)
		if res.code != pipeline.ExitOK {
			t.Fatalf("exit code = %d, want 0 (stderr %q)", res.code, res.stderr)
		}
		if gotKey != key || gotView != yahoo.IndustryTopGrowthCompanies {
			t.Errorf("Industry(%q, %q), want (%q, %q)", gotKey, gotView, key, yahoo.IndustryTopGrowthCompanies)
		}
	})
}

func TestScreen(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, req yahoo.ScreenRequest)
	}{
		{
			name: "predefined",
			args: []string{"--predefined", "day_gainers", "--limit", "25", "--sort-field", "percentchange", "--sort-order", "asc"},
			check: func(t *testing.T, req yahoo.ScreenRequest) {
				if req.Predefined != "day_gainers" || req.Query != nil {
					t.Errorf("request = %+v, want the day_gainers screen", req)
				}
				if req.Limit != 25 || req.SortField != "percentchange" || !req.SortAsc {
					t.Errorf("request = %+v, want limit 25 sorted ascending by percentchange", req)
				}
			},
		},
		{
			name: "filters are joined with and",
			args: []string{"--filter", "sector eq Technology", "-f", "beta btwn 0.5,1.5"},
			check: func(t *testing.T, req yahoo.ScreenRequest) {
				if req.Query == nil || req.Query.Operator != "and" || len(req.Query.Operands) != 2 {
					t.Fatalf("query = %+v, want an and of two filters", req.Query)
				}
				if diff := cmp.Diff([]any{0.5, 1.5}, req.Query.Operands[1].Values); diff != "" {
					t.Errorf("btwn values mismatch (-want +got):\n%s", diff)
				}
				if req.SortAsc {
					t.Error("sort order defaulted to ascending")
				}
			},
		},
		{
			name: "json query",
			args: []string{"--json-query", `{"operator":"or","queries":["region eq us"]}`},
			check: func(t *testing.T, req yahoo.ScreenRequest) {
				if req.Query == nil || req.Query.Field != "region" || req.Query.Operator != "eq" {
					t.Errorf("query = %+v, want the unwrapped region filter", req.Query)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got yahoo.ScreenRequest
			src := &testutil.FakeSource{
				ScreenFunc: func(_ context.Context, req yahoo.ScreenRequest) ([]*record.Record, error) {
					got = req
					return []*record.Record{record.Of("symbol", "NVDA", "regularMarketPrice", 880.1)}, nil
				},
			}

			res := runCLI(t, src, append([]string{"screen"}, tt.args...)...)
			if res.code != pipeline.ExitOK {
				t.Fatalf("exit code = %d, want 0 (stderr %q)", res.code, res.stderr)
			}
			tt.check(t, got)
		})
	}
}

func TestScreenLists(t *testing.T) {
	tests := []struct {
		args  []string
		field string
		want  []string
	}{
		{[]string{"screen-query-fields"}, "field", screener.Fields()},
		{[]string{"screen-query-values", "Sector"}, "value", screener.Values("sector")},
		{[]string{"screen-predefined-queries"}, "query", sortedCopy(screener.PredefinedQueries)},
	}

	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			res := runCLI(t, &testutil.FakeSource{}, tt.args...)
			if res.code != pipeline.ExitOK {
				t.Fatalf("exit code = %d, want 0 (stderr %q)", res.code, res.stderr)
			}

			var got []string
			for _, rec := range decodeList(t, res.stdout) {
				got = append(got, rec[tt.field].(string))
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("values mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMarketStatus(t *testing.T) {
	src := &testutil.FakeSource{
		MarketStatusFunc: func(context.Context) (*record.Record, error) {
			return record.Of("status", "open", "timezone", "America/New_York"), nil
		},
	}

	res := runCLI(t, src, "market-status")
	if res.code != pipeline.ExitOK {
		t.Fatalf("exit code = %d, want 0 (stderr %q)", res.code, res.stderr)
	}
	want := "{\n  \"status\": \"open\",\n  \"timezone\": \"America/New_York\"\n}\n"
	if res.stdout != want {
		t.Errorf("stdout = %q, want %q", res.stdout, want)
	}
}

func TestNews(t *testing.T) {
	var gotCount int
	var gotTab string
	src := &testutil.FakeSource{
		NewsFunc: func(_ context.Context, _ string, count int, tab string) ([]*record.Record, error) {
			gotCount, gotTab = count, tab
			return []*record.Record{record.Of("Title", "Earnings beat")}, nil
		},
	}

	res := runCLI(t, src, "news", "AAPL", "-c", "3", "--tab", "press releases")
	if res.code != pipeline.ExitOK {
		t.Fatalf("exit code = %d, want 0 (stderr %q)", res.code, res.stderr)
	}
	if gotCount != 3 || gotTab != "press releases" {
		t.Errorf("News(count %d, tab %q), want (3, press releases)", gotCount, gotTab)
	}
}

func TestReport(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no data", pipeline.ErrNoData, "No data found"},
		{"unexpected", errors.New("boom"), "Unexpected error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			newApp(&bytes.Buffer{}, &stderr, nil).report(tt.err)
			if !strings.Contains(stderr.String(), tt.want) {
				t.Errorf("report() wrote %q, want it to contain %q", stderr.String(), tt.want)
			}
		})
	}
}
