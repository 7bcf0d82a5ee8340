package coordinator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"yfin/internal/record"
	"yfin/internal/testutil"
)

func TestNew(t *testing.T) {
	tests := []struct {
		concurrency int
		want        int
	}{
		{4, 4},
		{1, 1},
		{0, 1},
		{-3, 1},
	}

	for _, tt := range tests {
		coord := New(nil, tt.concurrency, "symbol")
		if coord.maxConcurrency != tt.want {
			t.Errorf("New(%d).maxConcurrency = %d, want %d", tt.concurrency, coord.maxConcurrency, tt.want)
		}
	}
}

func TestRun_Success(t *testing.T) {
	src := &testutil.FakeSource{
		FastInfoFunc: testutil.FastInfoFor(map[string]*record.Record{
			"AAPL": record.Of("currency", "USD", "lastPrice", 190.5),
			"MSFT": record.Of("currency", "USD", "lastPrice", 410.25),
			"SAP":  record.Of("currency", "EUR", "lastPrice", 175.0),
		}),
	}

	coord := New(src.FastInfo, 2, "symbol")
	got, err := coord.Run(context.Background(), []string{"MSFT", "SAP", "AAPL"})
	if err != nil {
		t.Fatalf("Run() returned unexpected error: %v", err)
	}

	want := []*record.Record{
		record.Of("symbol", "MSFT", "currency", "USD", "lastPrice", 410.25),
		record.Of("symbol", "SAP", "currency", "EUR", "lastPrice", 175.0),
		record.Of("symbol", "AAPL", "currency", "USD", "lastPrice", 190.5),
	}
	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b *record.Record) bool { return a.Equal(b) })); diff != "" {
		t.Errorf("Run() mismatch (-want +got):\n%s", diff)
	}
	if calls := len(src.Calls()); calls != 3 {
		t.Errorf("FastInfo called %d times, want 3", calls)
	}
}

func TestRun_KeepsOrderUnderSkewedLatency(t *testing.T) {
	delays := map[string]time.Duration{"A": 30 * time.Millisecond, "B": 0, "C": 10 * time.Millisecond}
	lookup := func(ctx context.Context, key string) (*record.Record, error) {
		time.Sleep(delays[key])
		return record.Of("n", key), nil
	}

	got, err := New(lookup, 3, "symbol").Run(context.Background(), []string{"A", "B", "C"})
	if err != nil {
		t.Fatalf("Run() returned unexpected error: %v", err)
	}
	for i, key := range []string{"A", "B", "C"} {
		if v, _ := got[i].Get("symbol"); v != key {
			t.Errorf("result %d symbol = %v, want %s", i, v, key)
		}
	}
}

func TestRun_BoundsConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	lookup := func(ctx context.Context, key string) (*record.Record, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return record.Of("k", key), nil
	}

	keys := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	if _, err := New(lookup, 2, "symbol").Run(context.Background(), keys); err != nil {
		t.Fatalf("Run() returned unexpected error: %v", err)
	}
	if got := peak.Load(); got > 2 {
		t.Errorf("peak concurrency = %d, want at most 2", got)
	}
}

func TestRun_AllOrNothing(t *testing.T) {
	testErr := errors.New("fetch failed")
	lookup := func(ctx context.Context, key string) (*record.Record, error) {
		if key == "BAD" {
			return nil, testErr
		}
		return record.Of("k", key), nil
	}

	got, err := New(lookup, 1, "symbol").Run(context.Background(), []string{"AAPL", "BAD", "MSFT"})
	if !errors.Is(err, testErr) {
		t.Fatalf("Run() error = %v, want %v", err, testErr)
	}
	if got != nil {
		t.Errorf("Run() returned %d records alongside an error", len(got))
	}
	if want := "BAD: fetch failed"; err.Error() != want {
		t.Errorf("Run() error = %q, want %q", err.Error(), want)
	}
}

func TestRun_MissingRecord(t *testing.T) {
	src := &testutil.FakeSource{
		FastInfoFunc: testutil.FastInfoFor(map[string]*record.Record{
			"AAPL": record.Of("lastPrice", 190.5),
		}),
	}

	_, err := New(src.FastInfo, 2, "symbol").Run(context.Background(), []string{"AAPL", "NOPE"})
	if !errors.Is(err, ErrMissing) {
		t.Errorf("Run() error = %v, want ErrMissing", err)
	}
}

func TestRun_NoKeys(t *testing.T) {
	_, err := New(nil, 1, "symbol").Run(context.Background(), nil)
	if err == nil {
		t.Fatal("Run() expected error for no keys, got nil")
	}

	expectedErrMsg := "no keys to look up"
	if err.Error() != expectedErrMsg {
		t.Errorf("Run() error = %q, want %q", err.Error(), expectedErrMsg)
	}
}

func TestRun_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lookup := func(ctx context.Context, key string) (*record.Record, error) {
		return record.Of("k", key), nil
	}
	if _, err := New(lookup, 1, "symbol").Run(ctx, []string{"A"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestFirstError(t *testing.T) {
	real := errors.New("real")
	tests := []struct {
		name string
		errs []error
		want error
	}{
		{"none", []error{nil, nil}, nil},
		{"cancellation before cause", []error{context.Canceled, nil, real}, real},
		{"only cancellations", []error{nil, context.Canceled}, context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstError(tt.errs); !errors.Is(got, tt.want) && got != tt.want {
				t.Errorf("firstError() = %v, want %v", got, tt.want)
			}
		})
	}
}
