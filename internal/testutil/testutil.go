// Package testutil provides a fake data source for command tests.
package testutil

import (
	"context"
	"sync"

	"yfin/internal/fetcher"
	"yfin/internal/record"
	"yfin/internal/yahoo"
)

// FakeSource is a stand-in for the Yahoo client. Each method calls the
// matching func field, or returns nothing when the field is unset. Calls are
// recorded by method name.
type FakeSource struct {
	HistoryFunc       func(ctx context.Context, symbol string, p yahoo.HistoryParams) (*fetcher.Frame, error)
	DividendsFunc     func(ctx context.Context, symbol, period string) (*fetcher.Series, error)
	FastInfoFunc      func(ctx context.Context, symbol string) (*record.Record, error)
	NewsFunc          func(ctx context.Context, symbol string, count int, tab string) ([]*record.Record, error)
	CalendarFunc      func(ctx context.Context, kind yahoo.CalendarKind, p yahoo.CalendarParams) (*fetcher.Frame, error)
	EarningsDatesFunc func(ctx context.Context, symbol string, limit, offset int) (*fetcher.Frame, error)
	StatementFunc     func(ctx context.Context, symbol string, kind yahoo.StatementKind, freq string) (*fetcher.Frame, error)
	AnalysisFunc      func(ctx context.Context, symbol string, kind yahoo.AnalysisKind) (any, error)
	SectorFunc        func(ctx context.Context, key string, view yahoo.SectorView) (any, error)
	IndustryFunc      func(ctx context.Context, key string, view yahoo.IndustryView) (any, error)
	ScreenFunc        func(ctx context.Context, req yahoo.ScreenRequest) ([]*record.Record, error)
	MarketStatusFunc  func(ctx context.Context) (*record.Record, error)

	mu    sync.Mutex
	calls []string
}

func (f *FakeSource) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method)
}

// Calls returns the names of the methods called so far.
func (f *FakeSource) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeSource) History(ctx context.Context, symbol string, p yahoo.HistoryParams) (*fetcher.Frame, error) {
	f.record("History")
	if f.HistoryFunc != nil {
		return f.HistoryFunc(ctx, symbol, p)
	}
	return nil, nil
}

func (f *FakeSource) Dividends(ctx context.Context, symbol, period string) (*fetcher.Series, error) {
	f.record("Dividends")
	if f.DividendsFunc != nil {
		return f.DividendsFunc(ctx, symbol, period)
	}
	return nil, nil
}

func (f *FakeSource) FastInfo(ctx context.Context, symbol string) (*record.Record, error) {
	f.record("FastInfo")
	if f.FastInfoFunc != nil {
		return f.FastInfoFunc(ctx, symbol)
	}
	return nil, nil
}

func (f *FakeSource) News(ctx context.Context, symbol string, count int, tab string) ([]*record.Record, error) {
	f.record("News")
	if f.NewsFunc != nil {
		return f.NewsFunc(ctx, symbol, count, tab)
	}
	return nil, nil
}

func (f *FakeSource) Calendar(ctx context.Context, kind yahoo.CalendarKind, p yahoo.CalendarParams) (*fetcher.Frame, error) {
	f.record("Calendar")
	if f.CalendarFunc != nil {
		return f.CalendarFunc(ctx, kind, p)
	}
	return nil, nil
}

func (f *FakeSource) EarningsDates(ctx context.Context, symbol string, limit, offset int) (*fetcher.Frame, error) {
	f.record("EarningsDates")
	if f.EarningsDatesFunc != nil {
		return f.EarningsDatesFunc(ctx, symbol, limit, offset)
	}
	return nil, nil
}

func (f *FakeSource) Statement(ctx context.Context, symbol string, kind yahoo.StatementKind, freq string) (*fetcher.Frame, error) {
	f.record("Statement")
	if f.StatementFunc != nil {
		return f.StatementFunc(ctx, symbol, kind, freq)
	}
	return nil, nil
}

func (f *FakeSource) Analysis(ctx context.Context, symbol string, kind yahoo.AnalysisKind) (any, error) {
	f.record("Analysis")
	if f.AnalysisFunc != nil {
		return f.AnalysisFunc(ctx, symbol, kind)
	}
	return nil, nil
}

func (f *FakeSource) Sector(ctx context.Context, key string, view yahoo.SectorView) (any, error) {
	f.record("Sector")
	if f.SectorFunc != nil {
		return f.SectorFunc(ctx, key, view)
	}
	return nil, nil
}

func (f *FakeSource) Industry(ctx context.Context, key string, view yahoo.IndustryView) (any, error) {
	f.record("Industry")
	if f.IndustryFunc != nil {
		return f.IndustryFunc(ctx, key, view)
	}
	return nil, nil
}

func (f *FakeSource) Screen(ctx context.Context, req yahoo.ScreenRequest) ([]*record.Record, error) {
	f.record("Screen")
	if f.ScreenFunc != nil {
		return f.ScreenFunc(ctx, req)
	}
	return nil, nil
}

func (f *FakeSource) MarketStatus(ctx context.Context) (*record.Record, error) {
	f.record("MarketStatus")
	if f.MarketStatusFunc != nil {
		return f.MarketStatusFunc(ctx)
	}
	return nil, nil
}

// FastInfoFor returns a FastInfoFunc serving fixed records by symbol. Unknown
// symbols have no data.
func FastInfoFor(records map[string]*record.Record) func(context.Context, string) (*record.Record, error) {
	return func(_ context.Context, symbol string) (*record.Record, error) {
		return records[symbol], nil
	}
}
