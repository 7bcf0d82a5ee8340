package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"yfin/internal/fetcher"
	"yfin/internal/record"
	"yfin/internal/screener"
)

// SectorView selects one dataset of a sector.
type SectorView string

const (
	SectorOverview        SectorView = "overview"
	SectorIndustries      SectorView = "industries"
	SectorResearchReports SectorView = "research-reports"
	SectorTopCompanies    SectorView = "top-companies"
	SectorTopETFs         SectorView = "top-etfs"
	SectorTopMutualFunds  SectorView = "top-mutual-funds"
)

// IndustryView selects one dataset of an industry.
type IndustryView string

const (
	IndustryOverview               IndustryView = "overview"
	IndustryResearchReports        IndustryView = "research-reports"
	IndustryTopCompanies           IndustryView = "top-companies"
	IndustryTopGrowthCompanies     IndustryView = "top-growth-companies"
	IndustryTopPerformingCompanies IndustryView = "top-performing-companies"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug derives the key Yahoo uses for a sector or industry name, e.g.
// "Oil & Gas E&P" becomes "oil-gas-e-p".
func Slug(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// SectorKeys returns the key and name of every sector.
func SectorKeys() *fetcher.Frame {
	f := &fetcher.Frame{Columns: []string{"key", "name"}}
	for _, name := range screener.Sectors {
		f.AddRow(nil, Slug(name), name)
	}
	return f
}

// IsSectorKey reports whether key names a sector.
func IsSectorKey(key string) bool {
	return lo.ContainsBy(screener.Sectors, func(name string) bool { return Slug(name) == key })
}

// IndustryKeys returns the key, name and sector key of every industry, or of
// the industries of sectorKey when it is set.
func IndustryKeys(sectorKey string) *fetcher.Frame {
	f := &fetcher.Frame{Columns: []string{"key", "name", "sector"}}
	for _, sector := range screener.Sectors {
		if sectorKey != "" && Slug(sector) != sectorKey {
			continue
		}
		for _, name := range screener.IndustriesBySector[sector] {
			f.AddRow(nil, Slug(name), name, Slug(sector))
		}
	}
	return f
}

// IsIndustryKey reports whether key names an industry.
func IsIndustryKey(key string) bool {
	all := lo.Flatten(lo.Values(screener.IndustriesBySector))
	return lo.ContainsBy(all, func(name string) bool { return Slug(name) == key })
}

type domainResponse struct {
	Data  map[string]json.RawMessage `json:"data"`
	Error *apiError                  `json:"error"`
}

// domain fetches the sector or industry document of key.
func (c *Client) domain(ctx context.Context, kind, key string) (map[string]json.RawMessage, error) {
	params := url.Values{"formatted": {"true"}, "withReturns": {"true"}, "lang": {"en-US"}, "region": {"US"}}

	var result domainResponse
	endpoint := c.cfg.Query1URL + "/v1/finance/" + kind + "/" + url.PathEscape(key)
	if _, err := c.get(ctx, endpoint, params, &result); err != nil {
		return nil, err
	}
	if err := checkError(result.Error); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// Sector returns view of the sector key.
func (c *Client) Sector(ctx context.Context, key string, view SectorView) (any, error) {
	data, err := c.domain(ctx, "sectors", key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sector %s: %w", key, err)
	}
	if data == nil {
		return nil, nil
	}

	var out any
	switch view {
	case SectorOverview:
		out, err = overview(data)
	case SectorIndustries:
		out, err = industries(data)
	case SectorResearchReports:
		out, err = researchReports(data)
	case SectorTopCompanies:
		out, err = companies(data, "topCompanies", []column{
			{key: "name", name: "name"},
			{key: "rating", name: "rating"},
			{key: "marketWeight", name: "market weight", conv: number},
		})
	case SectorTopETFs:
		out, err = funds(data, "topETFs")
	case SectorTopMutualFunds:
		out, err = funds(data, "topMutualFunds")
	default:
		return nil, fmt.Errorf("unknown sector view %q", view)
	}
	if err != nil {
		return nil, fetcher.NewValidationError(fmt.Sprintf("malformed sector %s: %v", key, err))
	}
	return out, nil
}

// Industry returns view of the industry key.
func (c *Client) Industry(ctx context.Context, key string, view IndustryView) (any, error) {
	data, err := c.domain(ctx, "industries", key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch industry %s: %w", key, err)
	}
	if data == nil {
		return nil, nil
	}

	var out any
	switch view {
	case IndustryOverview:
		out, err = overview(data)
	case IndustryResearchReports:
		out, err = researchReports(data)
	case IndustryTopCompanies:
		out, err = companies(data, "topCompanies", []column{
			{key: "name", name: "name"},
			{key: "rating", name: "rating"},
			{key: "marketWeight", name: "market weight", conv: number},
		})
	case IndustryTopGrowthCompanies:
		out, err = companies(data, "topGrowthCompanies", []column{
			{key: "name", name: "name"},
			{key: "ytdReturn", name: "ytd return", conv: number},
			{key: "growthEstimate", name: "growth estimate", conv: number},
		})
	case IndustryTopPerformingCompanies:
		out, err = companies(data, "topPerformingCompanies", []column{
			{key: "name", name: "name"},
			{key: "ytdReturn", name: "ytd return", conv: number},
			{key: "lastPrice", name: "last price", conv: number},
			{key: "targetPrice", name: "target price", conv: number},
		})
	default:
		return nil, fmt.Errorf("unknown industry view %q", view)
	}
	if err != nil {
		return nil, fetcher.NewValidationError(fmt.Sprintf("malformed industry %s: %v", key, err))
	}
	return out, nil
}

func listOf(data map[string]json.RawMessage, key string) ([]*record.Record, error) {
	raw, ok := data[key]
	if !ok || string(raw) == "null" {
		return nil, nil
	}
	var items []*record.Record
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return items, nil
}

var overviewFields = []column{
	{key: "companiesCount", name: "companies_count", conv: number},
	{key: "marketCap", name: "market_cap", conv: number},
	{key: "messageBoardId", name: "message_board_id"},
	{key: "description", name: "description"},
	{key: "industriesCount", name: "industries_count", conv: number},
	{key: "marketWeight", name: "market_weight", conv: number},
	{key: "employeeCount", name: "employee_count", conv: number},
}

func overview(data map[string]json.RawMessage) (any, error) {
	raw, ok := data["overview"]
	if !ok || string(raw) == "null" {
		return nil, nil
	}
	src := record.New()
	if err := json.Unmarshal(raw, src); err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}

	out := record.New()
	for _, col := range overviewFields {
		if _, ok := src.Get(col.key); ok {
			out.Set(col.name, col.value(src))
		}
	}
	return out, nil
}

func companies(data map[string]json.RawMessage, key string, cols []column) (any, error) {
	items, err := listOf(data, key)
	if err != nil {
		return nil, err
	}
	return frameOf(items, "symbol", &column{key: "symbol"}, cols), nil
}

// funds maps each fund symbol to its name, in source order.
func funds(data map[string]json.RawMessage, key string) (any, error) {
	items, err := listOf(data, key)
	if err != nil {
		return nil, err
	}
	out := record.New()
	for _, item := range items {
		symbol, _ := item.Get("symbol")
		name, _ := item.Get("name")
		if s, ok := symbol.(string); ok {
			out.Set(s, name)
		}
	}
	return out, nil
}

func industries(data map[string]json.RawMessage) (any, error) {
	items, err := listOf(data, "industries")
	if err != nil {
		return nil, err
	}
	items = lo.Reject(items, func(item *record.Record, _ int) bool {
		name, _ := item.Get("name")
		return name == "All Industries"
	})
	return frameOf(items, "key", &column{key: "key"}, []column{
		{key: "name", name: "name"},
		{key: "symbol", name: "symbol"},
		{key: "marketWeight", name: "market weight", conv: number},
	}), nil
}

func researchReports(data map[string]json.RawMessage) (any, error) {
	items, err := listOf(data, "researchReports")
	if err != nil {
		return nil, err
	}
	return recordsOf(items), nil
}
