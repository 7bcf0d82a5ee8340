package ratelimit

import (
	"context"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestNew_TestModeIsUnlimited(t *testing.T) {
	l := New(1)
	if l.Limit() != rate.Inf {
		t.Errorf("Limit() = %v, want rate.Inf under go test", l.Limit())
	}
}

func TestNew_NonPositiveRateIsUnlimited(t *testing.T) {
	for _, rps := range []float64{0, -1} {
		if got := New(rps).Limit(); got != rate.Inf {
			t.Errorf("New(%v).Limit() = %v, want rate.Inf", rps, got)
		}
	}
}

func TestLimiter_PerHost(t *testing.T) {
	l := &Limiter{limit: rate.Every(time.Hour), burst: 1, limiters: map[string]*rate.Limiter{}}

	if !l.Allow("query1.finance.yahoo.com") {
		t.Fatal("first request to query1 was not allowed")
	}
	if l.Allow("query1.finance.yahoo.com") {
		t.Error("second request to query1 was allowed within the same hour")
	}
	if !l.Allow("query2.finance.yahoo.com") {
		t.Error("first request to query2 was throttled by query1's bucket")
	}
}

func TestLimiter_WaitHonorsContext(t *testing.T) {
	l := &Limiter{limit: rate.Every(time.Hour), burst: 1, limiters: map[string]*rate.Limiter{}}
	host := "finance.yahoo.com"

	if err := l.Wait(context.Background(), host); err != nil {
		t.Fatalf("first Wait() returned unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, host); err == nil {
		t.Error("Wait() returned nil, want an error for a token an hour away")
	}
}

func TestLimiter_UnlimitedNeverBlocks(t *testing.T) {
	l := New(0)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := 0; i < 100; i++ {
		if err := l.Wait(ctx, "query1.finance.yahoo.com"); err != nil {
			t.Fatalf("Wait() #%d returned unexpected error: %v", i, err)
		}
	}
}
