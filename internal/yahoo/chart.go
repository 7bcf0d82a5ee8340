package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"sort"
	"time"

	"github.com/google/go-querystring/query"

	"yfin/internal/fetcher"
)

// Intervals lists the accepted bar intervals.
var Intervals = []string{"1m", "2m", "5m", "15m", "30m", "60m", "90m", "1h", "1d", "5d", "1wk", "1mo", "3mo"}

// Periods lists the accepted look-back periods.
var Periods = []string{"1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max"}

// dailyIntervals are labeled by calendar date rather than bar start time.
var dailyIntervals = []string{"1d", "5d", "1wk", "1mo", "3mo"}

// firstTimestamp is 1900-01-01, the earliest start the chart endpoint takes.
const firstTimestamp int64 = -2208994789

// HistoryParams selects the bars returned by History. Start and End are
// YYYY-MM-DD dates; Period is used when neither is set, or to derive the
// missing one.
type HistoryParams struct {
	Interval string
	Period   string
	Start    string
	End      string
}

type chartQuery struct {
	Range          string `url:"range,omitempty"`
	Period1        *int64 `url:"period1,omitempty"`
	Period2        *int64 `url:"period2,omitempty"`
	Interval       string `url:"interval"`
	Events         string `url:"events,omitempty"`
	IncludePrePost bool   `url:"includePrePost"`
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Currency             string `json:"currency"`
		Symbol               string `json:"symbol"`
		ExchangeTimezoneName string `json:"exchangeTimezoneName"`
		Timezone             string `json:"timezone"`
		GMTOffset            int    `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp []int64 `json:"timestamp"`
	Events    struct {
		Dividends map[string]struct {
			Amount float64 `json:"amount"`
			Date   int64   `json:"date"`
		} `json:"dividends"`
	} `json:"events"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

func (r *chartResult) location() *time.Location {
	name := r.Meta.Timezone
	if name == "" {
		name = r.Meta.ExchangeTimezoneName
	}
	return time.FixedZone(name, r.Meta.GMTOffset)
}

// chartQueryFor translates p into query parameters. A start without end runs
// to now, or to start plus the period; an end without start runs from end
// minus the period, or from 1900.
func (c *Client) chartQueryFor(p HistoryParams) (chartQuery, error) {
	q := chartQuery{Interval: p.Interval}
	if p.Start == "" && p.End == "" {
		q.Range = p.Period
		return q, nil
	}

	var start, end time.Time
	var err error
	if p.End != "" {
		if end, err = time.Parse(time.DateOnly, p.End); err != nil {
			return q, fmt.Errorf("invalid end date: %w", err)
		}
	}
	if p.Start != "" {
		if start, err = time.Parse(time.DateOnly, p.Start); err != nil {
			return q, fmt.Errorf("invalid start date: %w", err)
		}
	}

	switch {
	case p.Start != "" && p.End == "" && p.Period != "":
		end = addPeriod(start, p.Period, 1)
	case p.Start != "" && p.End == "":
		end = c.now()
	case p.Start == "" && p.Period != "":
		start = addPeriod(end, p.Period, -1)
	}

	period1 := firstTimestamp
	if !start.IsZero() {
		period1 = start.Unix()
	}
	period2 := end.Unix()
	q.Period1, q.Period2 = &period1, &period2
	return q, nil
}

// addPeriod moves t by one look-back period in direction sign.
func addPeriod(t time.Time, period string, sign int) time.Time {
	switch period {
	case "1d":
		return t.AddDate(0, 0, sign)
	case "5d":
		return t.AddDate(0, 0, 5*sign)
	case "1mo":
		return t.AddDate(0, sign, 0)
	case "3mo":
		return t.AddDate(0, 3*sign, 0)
	case "6mo":
		return t.AddDate(0, 6*sign, 0)
	case "1y":
		return t.AddDate(sign, 0, 0)
	case "2y":
		return t.AddDate(2*sign, 0, 0)
	case "5y":
		return t.AddDate(5*sign, 0, 0)
	case "10y":
		return t.AddDate(10*sign, 0, 0)
	case "ytd":
		if sign < 0 {
			return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
		}
		return time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, t.Location())
	default:
		if sign < 0 {
			return time.Unix(firstTimestamp, 0).UTC()
		}
		return t.AddDate(100, 0, 0)
	}
}

// chart fetches one chart result. A symbol Yahoo does not know yields nil.
func (c *Client) chart(ctx context.Context, symbol string, q chartQuery) (*chartResult, error) {
	params, err := query.Values(q)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chart query: %w", err)
	}

	var result chartResponse
	endpoint := c.cfg.Query2URL + "/v8/finance/chart/" + url.PathEscape(symbol)
	if _, err := c.get(ctx, endpoint, params, &result); err != nil {
		var fe *fetcher.FetchError
		if errors.As(err, &fe) && fe.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch chart for %s: %w", symbol, err)
	}
	if err := checkError(result.Chart.Error); err != nil {
		return nil, fmt.Errorf("failed to fetch chart for %s: %w", symbol, err)
	}
	if len(result.Chart.Result) == 0 {
		return nil, nil
	}
	return &result.Chart.Result[0], nil
}

// History returns OHLCV bars indexed by Date. Bars without any price are
// skipped. An unknown symbol yields an empty frame.
func (c *Client) History(ctx context.Context, symbol string, p HistoryParams) (*fetcher.Frame, error) {
	q, err := c.chartQueryFor(p)
	if err != nil {
		return nil, err
	}
	frame := &fetcher.Frame{
		IndexName: "Date",
		Columns:   []string{"Open", "High", "Low", "Close", "Volume"},
	}

	res, err := c.chart(ctx, symbol, q)
	if err != nil || res == nil || len(res.Indicators.Quote) == 0 {
		return frame, err
	}

	loc := res.location()
	daily := slices.Contains(dailyIntervals, p.Interval)
	bars := res.Indicators.Quote[0]
	for i, ts := range res.Timestamp {
		open, high, low, closing := at(bars.Open, i), at(bars.High, i), at(bars.Low, i), at(bars.Close, i)
		if open == nil && high == nil && low == nil && closing == nil {
			continue
		}

		var volume any
		if v := at(bars.Volume, i); v != nil {
			volume = int64(v.(float64))
		}
		frame.AddRow(barTime(ts, loc, daily), open, high, low, closing, volume)
	}
	return frame, nil
}

// Dividends returns cash dividends per share indexed by ex-date, oldest first.
func (c *Client) Dividends(ctx context.Context, symbol, period string) (*fetcher.Series, error) {
	series := &fetcher.Series{Name: "Dividends", IndexName: "Date"}

	res, err := c.chart(ctx, symbol, chartQuery{Range: period, Interval: "1d", Events: "div"})
	if err != nil || res == nil {
		return series, err
	}

	type dividend struct {
		date   int64
		amount float64
	}
	divs := make([]dividend, 0, len(res.Events.Dividends))
	for _, d := range res.Events.Dividends {
		divs = append(divs, dividend{date: d.Date, amount: d.Amount})
	}
	sort.Slice(divs, func(i, j int) bool { return divs[i].date < divs[j].date })

	loc := res.location()
	for _, d := range divs {
		series.Index = append(series.Index, barTime(d.date, loc, true))
		series.Values = append(series.Values, d.amount)
	}
	return series, nil
}

func at(values []*float64, i int) any {
	if i >= len(values) || values[i] == nil {
		return nil
	}
	return *values[i]
}

func barTime(ts int64, loc *time.Location, daily bool) time.Time {
	t := time.Unix(ts, 0).In(loc)
	if daily {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	}
	return t
}
