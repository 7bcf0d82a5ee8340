package yahoo

import (
	"context"
	"fmt"
	"net/url"

	"yfin/internal/record"
)

// NewsTabs maps each news tab to the query Yahoo's news service knows it by.
var NewsTabs = map[string]string{
	"all":            "newsAll",
	"news":           "latestNews",
	"press releases": "pressRelease",
}

type newsBody struct {
	ServiceConfig struct {
		SnippetCount int      `json:"snippetCount"`
		Symbols      []string `json:"s"`
	} `json:"serviceConfig"`
}

type newsResponse struct {
	Data struct {
		TickerStream struct {
			Stream []struct {
				Content *struct {
					Title        string `json:"title"`
					Summary      string `json:"summary"`
					PubDate      string `json:"pubDate"`
					CanonicalURL *struct {
						URL string `json:"url"`
					} `json:"canonicalUrl"`
					Provider *struct {
						DisplayName string `json:"displayName"`
					} `json:"provider"`
				} `json:"content"`
			} `json:"stream"`
		} `json:"tickerStream"`
	} `json:"data"`
}

// News returns up to count articles about symbol from tab, newest first.
// Stream entries that are not articles, such as ads, are skipped.
func (c *Client) News(ctx context.Context, symbol string, count int, tab string) ([]*record.Record, error) {
	queryRef, ok := NewsTabs[tab]
	if !ok {
		return nil, fmt.Errorf("unknown news tab %q", tab)
	}

	var body newsBody
	body.ServiceConfig.SnippetCount = count
	body.ServiceConfig.Symbols = []string{symbol}
	params := url.Values{"queryRef": {queryRef}, "serviceKey": {"ncp_fin"}}

	var result newsResponse
	if _, err := c.post(ctx, c.cfg.RootURL+"/xhrapi/ncp", params, body, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch news for %s: %w", symbol, err)
	}

	var articles []*record.Record
	for _, item := range result.Data.TickerStream.Stream {
		a := item.Content
		if a == nil || a.Title == "" {
			continue
		}
		var link, source any
		if a.CanonicalURL != nil {
			link = a.CanonicalURL.URL
		}
		if a.Provider != nil {
			source = a.Provider.DisplayName
		}
		articles = append(articles, record.Of(
			"Date", parseTime(a.PubDate),
			"Title", a.Title,
			"Summary", a.Summary,
			"URL", link,
			"Source", source,
		))
		if len(articles) == count {
			break
		}
	}
	return articles, nil
}
