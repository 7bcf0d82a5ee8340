package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"yfin/internal/fetcher"
	"yfin/internal/record"
)

// AnalysisKind selects one analyst or ownership dataset of a ticker.
type AnalysisKind string

const (
	Recommendations      AnalysisKind = "recommendations"
	UpgradesDowngrades   AnalysisKind = "upgrades-downgrades"
	PriceTargets         AnalysisKind = "price-targets"
	EarningsEstimate     AnalysisKind = "earnings-estimate"
	RevenueEstimate      AnalysisKind = "revenue-estimate"
	EarningsHistory      AnalysisKind = "earnings-history"
	EPSTrend             AnalysisKind = "eps-trend"
	EPSRevisions         AnalysisKind = "eps-revisions"
	GrowthEstimates      AnalysisKind = "growth-estimates"
	InsiderPurchases     AnalysisKind = "insider-purchases"
	InsiderTransactions  AnalysisKind = "insider-transactions"
	InsiderRosterHolders AnalysisKind = "insider-roster-holders"
	MajorHolders         AnalysisKind = "major-holders"
	InstitutionalHolders AnalysisKind = "institutional-holders"
	MutualFundHolders    AnalysisKind = "mutualfund-holders"
)

// module is one quoteSummary module decoded as field name to raw JSON.
type module map[string]json.RawMessage

type analysisDef struct {
	modules []string
	parse   func(modules map[string]module) (any, error)
}

var analyses = map[AnalysisKind]analysisDef{
	Recommendations:      {[]string{"recommendationTrend"}, parseRecommendations},
	UpgradesDowngrades:   {[]string{"upgradeDowngradeHistory"}, parseUpgradesDowngrades},
	PriceTargets:         {[]string{"financialData"}, parsePriceTargets},
	EarningsEstimate:     {[]string{"earningsTrend"}, trendTable("earningsEstimate", earningsEstimateColumns)},
	RevenueEstimate:      {[]string{"earningsTrend"}, trendTable("revenueEstimate", revenueEstimateColumns)},
	EarningsHistory:      {[]string{"earningsHistory"}, parseEarningsHistory},
	EPSTrend:             {[]string{"earningsTrend"}, trendTable("epsTrend", epsTrendColumns)},
	EPSRevisions:         {[]string{"earningsTrend"}, trendTable("epsRevisions", epsRevisionsColumns)},
	GrowthEstimates:      {[]string{"earningsTrend", "indexTrend"}, parseGrowthEstimates},
	InsiderPurchases:     {[]string{"netSharePurchaseActivity"}, parseInsiderPurchases},
	InsiderTransactions:  {[]string{"insiderTransactions"}, listTable("insiderTransactions", "transactions", insiderTransactionColumns)},
	InsiderRosterHolders: {[]string{"insiderHolders"}, listTable("insiderHolders", "holders", insiderHolderColumns)},
	MajorHolders:         {[]string{"majorHoldersBreakdown"}, parseMajorHolders},
	InstitutionalHolders: {[]string{"institutionOwnership"}, listTable("institutionOwnership", "ownershipList", ownershipColumns)},
	MutualFundHolders:    {[]string{"fundOwnership"}, listTable("fundOwnership", "ownershipList", ownershipColumns)},
}

// AnalysisKinds lists every supported kind.
func AnalysisKinds() []AnalysisKind {
	kinds := make([]AnalysisKind, 0, len(analyses))
	for k := range analyses {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []map[string]json.RawMessage `json:"result"`
		Error  *apiError                    `json:"error"`
	} `json:"quoteSummary"`
}

// Analysis returns the dataset of kind for symbol. The raw shape depends on
// the kind: most are frames, price targets is a record and major holders a
// series. A dataset Yahoo does not have for symbol yields nil.
func (c *Client) Analysis(ctx context.Context, symbol string, kind AnalysisKind) (any, error) {
	def, ok := analyses[kind]
	if !ok {
		return nil, fmt.Errorf("unknown analysis %q", kind)
	}

	modules, err := c.quoteSummary(ctx, symbol, def.modules)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s for %s: %w", kind, symbol, err)
	}
	if modules == nil {
		return nil, nil
	}
	out, err := def.parse(modules)
	if err != nil {
		return nil, fetcher.NewValidationError(fmt.Sprintf("malformed %s response: %v", kind, err))
	}
	return out, nil
}

func (c *Client) quoteSummary(ctx context.Context, symbol string, names []string) (map[string]module, error) {
	params := url.Values{
		"modules":    {strings.Join(names, ",")},
		"formatted":  {"false"},
		"symbol":     {symbol},
		"corsDomain": {"finance.yahoo.com"},
	}

	var result quoteSummaryResponse
	endpoint := c.cfg.Query2URL + "/v10/finance/quoteSummary/" + url.PathEscape(symbol)
	if _, err := c.get(ctx, endpoint, params, &result); err != nil {
		return nil, err
	}
	if err := checkError(result.QuoteSummary.Error); err != nil {
		return nil, err
	}
	if len(result.QuoteSummary.Result) == 0 {
		return nil, nil
	}

	modules := make(map[string]module, len(names))
	for _, name := range names {
		data, ok := result.QuoteSummary.Result[0][name]
		if !ok || string(data) == "null" {
			continue
		}
		var m module
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fetcher.NewValidationError(fmt.Sprintf("malformed %s module: %v", name, err))
		}
		modules[name] = m
	}
	if len(modules) == 0 {
		return nil, nil
	}
	return modules, nil
}

// items decodes the list stored under key of m, keeping each item's field
// order. A missing module or key yields no items.
func (m module) items(key string) ([]*record.Record, error) {
	if m == nil {
		return nil, nil
	}
	data, ok := m[key]
	if !ok {
		return nil, nil
	}
	var items []*record.Record
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return slices.DeleteFunc(items, func(r *record.Record) bool { return r == nil }), nil
}

// record decodes all of m into one record.
func (m module) record() (*record.Record, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	r := record.New()
	if err := json.Unmarshal(data, r); err != nil {
		return nil, err
	}
	return r, nil
}

func parseRecommendations(modules map[string]module) (any, error) {
	items, err := modules["recommendationTrend"].items("trend")
	if err != nil {
		return nil, err
	}
	cols := []column{
		{key: "period", name: "period"},
		{key: "strongBuy", name: "strongBuy", conv: number},
		{key: "buy", name: "buy", conv: number},
		{key: "hold", name: "hold", conv: number},
		{key: "sell", name: "sell", conv: number},
		{key: "strongSell", name: "strongSell", conv: number},
	}
	return frameOf(items, "", nil, cols), nil
}

func parseUpgradesDowngrades(modules map[string]module) (any, error) {
	items, err := modules["upgradeDowngradeHistory"].items("history")
	if err != nil {
		return nil, err
	}
	index := &column{key: "epochGradeDate", conv: epoch}
	cols := []column{
		{key: "firm", name: "Firm"},
		{key: "toGrade", name: "ToGrade"},
		{key: "fromGrade", name: "FromGrade"},
		{key: "action", name: "Action"},
		{key: "priceTargetAction", name: "priceTargetAction"},
		{key: "currentPriceTarget", name: "currentPriceTarget", conv: number},
		{key: "priorPriceTarget", name: "priorPriceTarget", conv: number},
	}
	return frameOf(items, "GradeDate", index, cols), nil
}

func parsePriceTargets(modules map[string]module) (any, error) {
	data, err := modules["financialData"].record()
	if err != nil || data == nil {
		return nil, err
	}
	targets := record.New()
	for _, col := range []column{
		{key: "currentPrice", name: "current", conv: number},
		{key: "targetHighPrice", name: "high", conv: number},
		{key: "targetLowPrice", name: "low", conv: number},
		{key: "targetMeanPrice", name: "mean", conv: number},
		{key: "targetMedianPrice", name: "median", conv: number},
	} {
		targets.Set(col.name, col.value(data))
	}
	return targets, nil
}

// trendPeriods are the estimate horizons reported by the trend tables.
var trendPeriods = []string{"0q", "+1q", "0y", "+1y"}

var (
	earningsEstimateColumns = []string{"avg", "low", "high", "yearAgoEps", "numberOfAnalysts", "growth"}
	revenueEstimateColumns  = []string{"avg", "low", "high", "numberOfAnalysts", "yearAgoRevenue", "growth"}
	epsTrendColumns         = []string{"current", "7daysAgo", "30daysAgo", "60daysAgo", "90daysAgo"}
	epsRevisionsColumns     = []string{"upLast7days", "upLast30days", "downLast30days", "downLast7Days"}
)

// trendTable builds a parser for one nested object of the earningsTrend
// items, indexed by period.
func trendTable(nested string, fields []string) func(map[string]module) (any, error) {
	return func(modules map[string]module) (any, error) {
		items, err := modules["earningsTrend"].items("trend")
		if err != nil {
			return nil, err
		}
		frame := &fetcher.Frame{IndexName: "period", Columns: fields}
		for _, item := range items {
			period, _ := item.Get("period")
			if !slices.Contains(trendPeriods, fmt.Sprint(period)) {
				continue
			}
			values, _ := item.Get(nested)
			obj, _ := values.(map[string]any)
			row := make([]any, len(fields))
			for i, f := range fields {
				row[i] = number(obj[f])
			}
			frame.AddRow(period, row...)
		}
		return frame, nil
	}
}

func parseGrowthEstimates(modules map[string]module) (any, error) {
	trend, err := modules["earningsTrend"].items("trend")
	if err != nil {
		return nil, err
	}
	index, err := modules["indexTrend"].items("estimates")
	if err != nil {
		return nil, err
	}

	var periods []string
	stock := make(map[string]any)
	idx := make(map[string]any)
	collect := func(items []*record.Record, into map[string]any) {
		for _, item := range items {
			p, _ := item.Get("period")
			period := fmt.Sprint(p)
			g, _ := item.Get("growth")
			into[period] = number(g)
			if !slices.Contains(periods, period) {
				periods = append(periods, period)
			}
		}
	}
	collect(trend, stock)
	collect(index, idx)

	frame := &fetcher.Frame{IndexName: "period", Columns: []string{"stockTrend", "indexTrend"}}
	for _, p := range periods {
		frame.AddRow(p, stock[p], idx[p])
	}
	return frame, nil
}

func parseEarningsHistory(modules map[string]module) (any, error) {
	items, err := modules["earningsHistory"].items("history")
	if err != nil {
		return nil, err
	}
	index := &column{key: "quarter", conv: epochDate}
	cols := []column{
		{key: "epsActual", name: "epsActual", conv: number},
		{key: "epsEstimate", name: "epsEstimate", conv: number},
		{key: "epsDifference", name: "epsDifference", conv: number},
		{key: "surprisePercent", name: "surprisePercent", conv: number},
	}
	return frameOf(items, "quarter", index, cols), nil
}

func parseInsiderPurchases(modules map[string]module) (any, error) {
	data, err := modules["netSharePurchaseActivity"].record()
	if err != nil || data == nil {
		return nil, err
	}
	get := func(key string) any {
		v, _ := data.Get(key)
		return number(v)
	}
	period, _ := data.Get("period")

	frame := &fetcher.Frame{Columns: []string{fmt.Sprintf("Insider Purchases Last %v", period), "Shares", "Trans"}}
	frame.AddRow(nil, "Purchases", get("buyInfoShares"), get("buyInfoCount"))
	frame.AddRow(nil, "Sales", get("sellInfoShares"), get("sellInfoCount"))
	frame.AddRow(nil, "Net Shares Purchased (Sold)", get("netInfoShares"), get("netInfoCount"))
	frame.AddRow(nil, "Total Insider Shares Held", get("totalInsiderShares"), nil)
	frame.AddRow(nil, "% Net Shares Purchased (Sold)", get("netPercentInsiderShares"), nil)
	frame.AddRow(nil, "% Buy Shares", get("buyPercentInsiderShares"), nil)
	frame.AddRow(nil, "% Sell Shares", get("sellPercentInsiderShares"), nil)
	return frame, nil
}

var insiderTransactionColumns = []column{
	{key: "shares", name: "Shares", conv: number},
	{key: "value", name: "Value", conv: number},
	{key: "filerUrl", name: "URL"},
	{key: "transactionText", name: "Text"},
	{key: "filerName", name: "Insider"},
	{key: "filerRelation", name: "Position"},
	{key: "moneyText", name: "Transaction"},
	{key: "startDate", name: "Start Date", conv: epochDate},
	{key: "ownership", name: "Ownership"},
}

var insiderHolderColumns = []column{
	{key: "name", name: "Name"},
	{key: "relation", name: "Position"},
	{key: "url", name: "URL"},
	{key: "transactionDescription", name: "Most Recent Transaction"},
	{key: "latestTransDate", name: "Latest Transaction Date", conv: epochDate},
	{key: "positionDirect", name: "Shares Owned Directly", conv: number},
	{key: "positionDirectDate", name: "Position Direct Date", conv: epochDate},
}

var ownershipColumns = []column{
	{key: "reportDate", name: "Date Reported", conv: epochDate},
	{key: "organization", name: "Holder"},
	{key: "pctHeld", name: "pctHeld", conv: number},
	{key: "position", name: "Shares", conv: number},
	{key: "value", name: "Value", conv: number},
	{key: "pctChange", name: "pctChange", conv: number},
}

// listTable builds a parser for a module holding a list of items under key.
func listTable(name, key string, cols []column) func(map[string]module) (any, error) {
	return func(modules map[string]module) (any, error) {
		items, err := modules[name].items(key)
		if err != nil {
			return nil, err
		}
		return frameOf(items, "", nil, cols), nil
	}
}

var majorHolderRows = []string{
	"insidersPercentHeld",
	"institutionsPercentHeld",
	"institutionsFloatPercentHeld",
	"institutionsCount",
}

func parseMajorHolders(modules map[string]module) (any, error) {
	data, err := modules["majorHoldersBreakdown"].record()
	if err != nil || data == nil {
		return nil, err
	}
	series := &fetcher.Series{Name: "Value", IndexName: "Breakdown"}
	for _, key := range majorHolderRows {
		v, ok := data.Get(key)
		if !ok {
			continue
		}
		series.Index = append(series.Index, key)
		series.Values = append(series.Values, number(v))
	}
	return series, nil
}
