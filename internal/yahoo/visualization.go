package yahoo

import (
	"context"
	"fmt"
	"net/url"

	"yfin/internal/fetcher"
)

// CalendarKind selects one of the market wide event calendars.
type CalendarKind string

const (
	EarningsCalendar       CalendarKind = "earnings"
	IPOCalendar            CalendarKind = "ipo"
	EconomicEventsCalendar CalendarKind = "economic-events"
)

// CalendarParams bounds a calendar query. Start and End are YYYY-MM-DD.
// MarketCap, when positive, keeps only companies at least that large and
// applies to the earnings calendar only.
type CalendarParams struct {
	Start     string
	End       string
	Limit     int
	Offset    int
	MarketCap float64
}

type visualizationColumn struct {
	id   string
	name string
	conv func(any) any
}

type calendarDef struct {
	entity    string
	sortField string
	index     visualizationColumn
	columns   []visualizationColumn
}

var calendars = map[CalendarKind]calendarDef{
	EarningsCalendar: {
		entity:    "sp_earnings",
		sortField: "intradaymarketcap",
		index:     visualizationColumn{id: "ticker", name: "Symbol"},
		columns: []visualizationColumn{
			{id: "companyshortname", name: "Company"},
			{id: "intradaymarketcap", name: "Marketcap", conv: number},
			{id: "eventname", name: "Event Name"},
			{id: "startdatetime", name: "Event Start Date", conv: parseTime},
			{id: "startdatetimetype", name: "Timing"},
			{id: "epsestimate", name: "EPS Estimate", conv: number},
			{id: "epsactual", name: "Reported EPS", conv: number},
			{id: "epssurprisepct", name: "Surprise(%)", conv: number},
		},
	},
	IPOCalendar: {
		entity:    "ipo_info",
		sortField: "startdatetime",
		index:     visualizationColumn{id: "ticker", name: "Symbol"},
		columns: []visualizationColumn{
			{id: "companyshortname", name: "Company"},
			{id: "exchange_short_name", name: "Exchange"},
			{id: "filingdate", name: "Filing Date", conv: parseTime},
			{id: "startdatetime", name: "Date", conv: parseTime},
			{id: "amendeddate", name: "Amended Date", conv: parseTime},
			{id: "pricefrom", name: "Price From", conv: number},
			{id: "priceto", name: "Price To", conv: number},
			{id: "offerprice", name: "Price", conv: number},
			{id: "currencyname", name: "Currency"},
			{id: "shares", name: "Shares", conv: number},
			{id: "dealtype", name: "Deal Type"},
		},
	},
	EconomicEventsCalendar: {
		entity:    "economic_event",
		sortField: "startdatetime",
		index:     visualizationColumn{id: "econ_release", name: "Event"},
		columns: []visualizationColumn{
			{id: "country_code", name: "Region"},
			{id: "startdatetime", name: "Event Time", conv: parseTime},
			{id: "period", name: "For"},
			{id: "after_release_actual", name: "Actual", conv: number},
			{id: "consensus_estimate", name: "Expected", conv: number},
			{id: "prior_release_actual", name: "Last", conv: number},
			{id: "originally_reported_actual", name: "Revised", conv: number},
		},
	},
}

var earningsDatesDef = calendarDef{
	entity:    "earnings",
	sortField: "startdatetime",
	index:     visualizationColumn{id: "startdatetime", name: "Earnings Date", conv: parseTime},
	columns: []visualizationColumn{
		{id: "epsestimate", name: "EPS Estimate", conv: number},
		{id: "epsactual", name: "Reported EPS", conv: number},
		{id: "epssurprisepct", name: "Surprise(%)", conv: number},
		{id: "eventtype", name: "Event Type"},
	},
}

type visualizationRequest struct {
	Offset        int       `json:"offset"`
	Size          int       `json:"size"`
	SortField     string    `json:"sortField"`
	SortType      string    `json:"sortType"`
	EntityIDType  string    `json:"entityIdType"`
	IncludeFields []string  `json:"includeFields"`
	Query         *operator `json:"query"`
}

// operator is a node of the visualization query language.
type operator struct {
	Operator string `json:"operator"`
	Operands []any  `json:"operands"`
}

func op(name string, operands ...any) *operator {
	return &operator{Operator: name, Operands: operands}
}

type visualizationResponse struct {
	Finance struct {
		Result []struct {
			Documents []struct {
				Columns []struct {
					ID    string `json:"id"`
					Label string `json:"label"`
				} `json:"columns"`
				Rows [][]any `json:"rows"`
			} `json:"documents"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"finance"`
}

func (d calendarDef) fields() []string {
	ids := []string{d.index.id}
	for _, c := range d.columns {
		ids = append(ids, c.id)
	}
	return ids
}

func (c *Client) visualization(ctx context.Context, def calendarDef, q *operator, limit, offset int) (*fetcher.Frame, error) {
	body := visualizationRequest{
		Offset:        offset,
		Size:          limit,
		SortField:     def.sortField,
		SortType:      "DESC",
		EntityIDType:  def.entity,
		IncludeFields: def.fields(),
		Query:         q,
	}
	params := url.Values{"lang": {"en-US"}, "region": {"US"}}

	var result visualizationResponse
	if _, err := c.post(ctx, c.cfg.Query1URL+"/v1/finance/visualization", params, body, &result); err != nil {
		return nil, err
	}
	if err := checkError(result.Finance.Error); err != nil {
		return nil, err
	}

	names := make([]string, len(def.columns))
	for i, col := range def.columns {
		names[i] = col.name
	}
	frame := &fetcher.Frame{IndexName: def.index.name, Columns: names}
	if len(result.Finance.Result) == 0 || len(result.Finance.Result[0].Documents) == 0 {
		return frame, nil
	}

	doc := result.Finance.Result[0].Documents[0]
	position := make(map[string]int, len(doc.Columns))
	for i, col := range doc.Columns {
		position[col.ID] = i
	}
	cell := func(row []any, col visualizationColumn) any {
		i, ok := position[col.id]
		if !ok || i >= len(row) {
			return nil
		}
		v := row[i]
		if col.conv != nil {
			return col.conv(v)
		}
		return v
	}

	for _, row := range doc.Rows {
		values := make([]any, len(def.columns))
		for i, col := range def.columns {
			values[i] = cell(row, col)
		}
		frame.AddRow(cell(row, def.index), values...)
	}
	return frame, nil
}

// Calendar returns the events of kind between p.Start and p.End.
func (c *Client) Calendar(ctx context.Context, kind CalendarKind, p CalendarParams) (*fetcher.Frame, error) {
	def, ok := calendars[kind]
	if !ok {
		return nil, fmt.Errorf("unknown calendar %q", kind)
	}

	operands := []any{
		op("gte", "startdatetime", p.Start),
		op("lte", "startdatetime", p.End),
	}
	if kind == EarningsCalendar && p.MarketCap > 0 {
		operands = append(operands, op("gte", "intradaymarketcap", p.MarketCap))
	}

	frame, err := c.visualization(ctx, def, op("and", operands...), p.Limit, p.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s calendar: %w", kind, err)
	}
	return frame, nil
}

// EarningsDates returns past and upcoming earnings dates of symbol, newest
// first.
func (c *Client) EarningsDates(ctx context.Context, symbol string, limit, offset int) (*fetcher.Frame, error) {
	frame, err := c.visualization(ctx, earningsDatesDef, op("eq", "ticker", symbol), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch earnings dates for %s: %w", symbol, err)
	}
	return frame, nil
}
