package yahoo

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"yfin/internal/record"
	"yfin/internal/screener"
)

// MaxScreenSize is the largest page the screener endpoints return.
const MaxScreenSize = 250

// ScreenRequest describes one page of screener results. Exactly one of Query
// and Predefined is set.
type ScreenRequest struct {
	Query      *screener.Query
	Predefined string

	Offset    int
	Limit     int
	SortField string
	SortAsc   bool
}

type screenBody struct {
	Offset     int             `json:"offset"`
	Size       int             `json:"size"`
	SortField  string          `json:"sortField"`
	SortType   string          `json:"sortType"`
	QuoteType  string          `json:"quoteType"`
	Query      *screener.Query `json:"query"`
	UserID     string          `json:"userId"`
	UserIDType string          `json:"userIdType"`
}

type screenResponse struct {
	Finance struct {
		Result []struct {
			Total  int              `json:"total"`
			Quotes []*record.Record `json:"quotes"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"finance"`
}

// Screen returns the quotes matching req, flattened to their scalar fields.
func (c *Client) Screen(ctx context.Context, req ScreenRequest) ([]*record.Record, error) {
	if (req.Query == nil) == (req.Predefined == "") {
		return nil, fmt.Errorf("screen request needs exactly one of a query or a predefined screen")
	}

	slog.Debug("running screen", "request", req.describe(), "offset", req.Offset, "limit", req.Limit)

	sortType := "DESC"
	if req.SortAsc {
		sortType = "ASC"
	}
	params := url.Values{"formatted": {"false"}, "lang": {"en-US"}, "region": {"US"}, "corsDomain": {"finance.yahoo.com"}}

	var result screenResponse
	var err error
	if req.Predefined != "" {
		params.Set("scrIds", req.Predefined)
		params.Set("count", strconv.Itoa(req.Limit))
		params.Set("start", strconv.Itoa(req.Offset))
		if req.SortField != "" {
			params.Set("sortField", req.SortField)
			params.Set("sortType", sortType)
		}
		_, err = c.get(ctx, c.cfg.Query1URL+"/v1/finance/screener/predefined/saved", params, &result)
	} else {
		sortField := req.SortField
		if sortField == "" {
			sortField = "ticker"
		}
		body := screenBody{
			Offset:     req.Offset,
			Size:       req.Limit,
			SortField:  sortField,
			SortType:   sortType,
			QuoteType:  "EQUITY",
			Query:      req.Query,
			UserIDType: "guid",
		}
		_, err = c.post(ctx, c.cfg.Query1URL+"/v1/finance/screener", params, body, &result)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to run screen: %w", err)
	}
	if err := checkError(result.Finance.Error); err != nil {
		return nil, fmt.Errorf("failed to run screen: %w", err)
	}
	if len(result.Finance.Result) == 0 {
		return nil, nil
	}
	return recordsOf(result.Finance.Result[0].Quotes), nil
}

// describe is used in debug logs.
func (r ScreenRequest) describe() string {
	if r.Predefined != "" {
		return "predefined " + r.Predefined
	}
	return strings.ToLower(r.Query.Operator) + " query"
}
