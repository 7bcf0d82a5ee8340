package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/go-querystring/query"

	"yfin/internal/fetcher"
)

// StatementKind selects a financial statement.
type StatementKind string

const (
	IncomeStatement StatementKind = "income"
	BalanceSheet    StatementKind = "balance-sheet"
	CashFlow        StatementKind = "cash-flow"
)

// Frequencies lists the reporting frequencies of a statement kind. Balance
// sheets have no trailing figures.
func Frequencies(kind StatementKind) []string {
	if kind == BalanceSheet {
		return []string{"yearly", "quarterly"}
	}
	return []string{"yearly", "quarterly", "trailing"}
}

var frequencyPrefix = map[string]string{
	"yearly":    "annual",
	"quarterly": "quarterly",
	"trailing":  "trailing",
}

// statementKeys lists the metrics requested per statement, in display order.
var statementKeys = map[StatementKind][]string{
	IncomeStatement: {
		"TotalRevenue", "OperatingRevenue", "CostOfRevenue", "GrossProfit",
		"OperatingExpense", "SellingGeneralAndAdministration", "ResearchAndDevelopment",
		"OperatingIncome", "NetNonOperatingInterestIncomeExpense", "InterestIncome",
		"InterestExpense", "OtherIncomeExpense", "PretaxIncome", "TaxProvision",
		"NetIncomeCommonStockholders", "NetIncome", "NetIncomeContinuousOperations",
		"DilutedNIAvailtoComStockholders", "BasicEPS", "DilutedEPS",
		"BasicAverageShares", "DilutedAverageShares", "TotalExpenses", "EBIT", "EBITDA",
		"NormalizedEBITDA", "NormalizedIncome", "ReconciledCostOfRevenue",
		"ReconciledDepreciation", "TaxRateForCalcs",
	},
	BalanceSheet: {
		"TotalAssets", "CurrentAssets", "CashAndCashEquivalents",
		"CashCashEquivalentsAndShortTermInvestments", "Receivables", "Inventory",
		"TotalNonCurrentAssets", "NetPPE", "Goodwill",
		"TotalLiabilitiesNetMinorityInterest", "CurrentLiabilities", "AccountsPayable",
		"CurrentDebt", "LongTermDebt", "TotalDebt", "NetDebt", "StockholdersEquity",
		"CommonStockEquity", "RetainedEarnings", "TotalCapitalization", "WorkingCapital",
		"TangibleBookValue", "InvestedCapital", "ShareIssued", "OrdinarySharesNumber",
		"TreasurySharesNumber",
	},
	CashFlow: {
		"OperatingCashFlow", "CashFlowFromContinuingOperatingActivities",
		"NetIncomeFromContinuingOperations", "DepreciationAndAmortization",
		"StockBasedCompensation", "ChangeInWorkingCapital", "InvestingCashFlow",
		"CapitalExpenditure", "PurchaseOfInvestment", "SaleOfInvestment",
		"FinancingCashFlow", "IssuanceOfDebt", "RepaymentOfDebt",
		"RepurchaseOfCapitalStock", "CashDividendsPaid", "ChangesInCash",
		"BeginningCashPosition", "EndCashPosition", "FreeCashFlow",
		"IncomeTaxPaidSupplementalData", "InterestPaidSupplementalData",
	},
}

// statementStart is the earliest period end requested.
var statementStart = time.Date(2016, time.December, 31, 0, 0, 0, 0, time.UTC)

type timeseriesQuery struct {
	Symbol  string `url:"symbol"`
	Type    string `url:"type"`
	Period1 int64  `url:"period1"`
	Period2 int64  `url:"period2"`
}

type timeseriesResponse struct {
	Timeseries struct {
		Result []map[string]json.RawMessage `json:"result"`
		Error  *apiError                    `json:"error"`
	} `json:"timeseries"`
}

type timeseriesPoint struct {
	AsOfDate      string `json:"asOfDate"`
	ReportedValue struct {
		Raw *float64 `json:"raw"`
	} `json:"reportedValue"`
}

// Statement returns a financial statement with one row per metric, labeled
// by its readable name under Metric, and one column per period end date,
// newest first. Metrics without any reported value are left out.
func (c *Client) Statement(ctx context.Context, symbol string, kind StatementKind, freq string) (*fetcher.Frame, error) {
	keys, ok := statementKeys[kind]
	if !ok {
		return nil, fmt.Errorf("unknown statement kind %q", kind)
	}
	prefix, ok := frequencyPrefix[freq]
	if !ok {
		return nil, fmt.Errorf("unknown frequency %q", freq)
	}

	types := make([]string, len(keys))
	for i, k := range keys {
		types[i] = prefix + k
	}
	params, err := query.Values(timeseriesQuery{
		Symbol:  symbol,
		Type:    strings.Join(types, ","),
		Period1: statementStart.Unix(),
		Period2: c.now().Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode timeseries query: %w", err)
	}

	var result timeseriesResponse
	endpoint := c.cfg.Query2URL + "/ws/fundamentals-timeseries/v1/finance/timeseries/" + url.PathEscape(symbol)
	if _, err := c.get(ctx, endpoint, params, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch %s statement for %s: %w", kind, symbol, err)
	}
	if err := checkError(result.Timeseries.Error); err != nil {
		return nil, fmt.Errorf("failed to fetch %s statement for %s: %w", kind, symbol, err)
	}

	// metric -> period end -> value
	values := make(map[string]map[string]float64)
	dates := make(map[string]bool)
	for _, res := range result.Timeseries.Result {
		for _, typ := range types {
			data, ok := res[typ]
			if !ok {
				continue
			}
			var points []*timeseriesPoint
			if err := json.Unmarshal(data, &points); err != nil {
				return nil, fetcher.NewValidationError(fmt.Sprintf("malformed %s series: %v", typ, err))
			}
			for _, p := range points {
				if p == nil || p.ReportedValue.Raw == nil || p.AsOfDate == "" {
					continue
				}
				metric := strings.TrimPrefix(typ, prefix)
				if values[metric] == nil {
					values[metric] = make(map[string]float64)
				}
				values[metric][p.AsOfDate] = *p.ReportedValue.Raw
				dates[p.AsOfDate] = true
			}
		}
	}

	columns := make([]string, 0, len(dates))
	for d := range dates {
		columns = append(columns, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(columns)))

	frame := &fetcher.Frame{IndexName: "Metric", Columns: columns}
	for _, key := range keys {
		byDate, ok := values[key]
		if !ok {
			continue
		}
		row := make([]any, len(columns))
		for i, d := range columns {
			if v, ok := byDate[d]; ok {
				row[i] = v
			}
		}
		frame.AddRow(prettyName(key), row...)
	}
	return frame, nil
}
