package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"yfin/internal/record"
)

type quoteResponse struct {
	QuoteResponse struct {
		Result []*record.Record `json:"result"`
		Error  *apiError        `json:"error"`
	} `json:"quoteResponse"`
}

// fastInfoFields maps each fast info field to the quote field it is read
// from. yearChange is converted from percentage points to a fraction.
var fastInfoFields = []column{
	{key: "currency", name: "currency"},
	{key: "regularMarketPrice", name: "lastPrice", conv: number},
	{key: "regularMarketVolume", name: "lastVolume", conv: number},
	{key: "regularMarketOpen", name: "open", conv: number},
	{key: "regularMarketPreviousClose", name: "previousClose", conv: number},
	{key: "regularMarketDayHigh", name: "dayHigh", conv: number},
	{key: "regularMarketDayLow", name: "dayLow", conv: number},
	{key: "fiftyTwoWeekHigh", name: "yearHigh", conv: number},
	{key: "fiftyTwoWeekLow", name: "yearLow", conv: number},
	{key: "fiftyTwoWeekChangePercent", name: "yearChange", conv: percentToFraction},
	{key: "marketCap", name: "marketCap", conv: number},
	{key: "sharesOutstanding", name: "shares", conv: number},
	{key: "averageDailyVolume10Day", name: "tenDayAverageVolume", conv: number},
	{key: "averageDailyVolume3Month", name: "threeMonthAverageVolume", conv: number},
	{key: "fiftyDayAverage", name: "fiftyDayAverage", conv: number},
	{key: "twoHundredDayAverage", name: "twoHundredDayAverage", conv: number},
	{key: "exchange", name: "exchange"},
	{key: "quoteType", name: "quoteType"},
	{key: "exchangeTimezoneName", name: "timezone"},
}

// FastInfo returns a summary of the latest quote of symbol, or nil when Yahoo
// has no quote for it.
func (c *Client) FastInfo(ctx context.Context, symbol string) (*record.Record, error) {
	var result quoteResponse
	params := url.Values{"symbols": {symbol}, "formatted": {"false"}}
	if _, err := c.get(ctx, c.cfg.Query1URL+"/v7/finance/quote", params, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}
	if err := checkError(result.QuoteResponse.Error); err != nil {
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}
	if len(result.QuoteResponse.Result) == 0 {
		return nil, nil
	}

	quote := result.QuoteResponse.Result[0]
	info := record.New()
	for _, col := range fastInfoFields {
		info.Set(col.name, col.value(quote))
	}
	return info, nil
}

type marketTimeResponse struct {
	Finance struct {
		MarketTimes []struct {
			MarketTime []struct {
				ID           string `json:"id"`
				Name         string `json:"name"`
				Status       string `json:"status"`
				YfitMarketID string `json:"yfit_market_id"`
				Open         string `json:"open"`
				Close        string `json:"close"`
				Message      string `json:"message"`
				Time         string `json:"time"`
				Timezone     []struct {
					Name      string `json:"$text"`
					Short     string `json:"short"`
					GMTOffset string `json:"gmtoffset"`
					DST       string `json:"dst"`
				} `json:"timezone"`
			} `json:"marketTime"`
		} `json:"marketTimes"`
		Error *apiError `json:"error"`
	} `json:"finance"`
}

// MarketStatus returns the opening state of the US market.
func (c *Client) MarketStatus(ctx context.Context) (*record.Record, error) {
	var result marketTimeResponse
	params := url.Values{"formatted": {"true"}, "key": {"finance"}, "lang": {"en-US"}, "region": {"US"}}
	if _, err := c.get(ctx, c.cfg.Query1URL+"/v6/finance/markettime", params, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch market status: %w", err)
	}
	if err := checkError(result.Finance.Error); err != nil {
		return nil, fmt.Errorf("failed to fetch market status: %w", err)
	}
	if len(result.Finance.MarketTimes) == 0 || len(result.Finance.MarketTimes[0].MarketTime) == 0 {
		return nil, nil
	}

	m := result.Finance.MarketTimes[0].MarketTime[0]
	status := record.Of(
		"id", m.ID,
		"name", m.Name,
		"status", m.Status,
		"yfit_market_id", m.YfitMarketID,
		"open", parseTime(m.Open),
		"close", parseTime(m.Close),
		"message", m.Message,
		"time", parseTime(m.Time),
	)
	if len(m.Timezone) > 0 {
		tz := m.Timezone[0]
		status.Set("timezone", tz.Name).Set("tz_short", tz.Short)
		if ms, err := strconv.ParseInt(tz.GMTOffset, 10, 64); err == nil {
			status.Set("gmtoffset", int64(time.Duration(ms)*time.Millisecond/time.Second))
		}
		status.Set("dst", tz.DST == "true")
	}
	return status, nil
}
