package eodhd

import (
	"context"
	"net/url"

	"github.com/etnz/folio"
)

// Search searches for securities via EOD Historical Data API.
func (c *Client) Search(ctx context.Context, query string) ([]folio.SearchResult, error) {
	// https://eodhd.com/api/search/Apple?api_token=...&fmt=json
	// [{"Code":"AAPL","Exchange":"US","Name":"Apple Inc","Type":"Common Stock","Country":"USA","Currency":"USD","ISIN":"US0378331005"}]
	type result struct {
		Code     string `json:"Code"`
		Exchange string `json:"Exchange"`
		Name     string `json:"Name"`
		Type     string `json:"Type"`
		Currency string `json:"Currency"`
	}
	var content []result
	if err := folio.GetJSON(ctx, c.HTTP, c.url("/api/search/"+url.PathEscape(query), ""), &content); err != nil {
		return nil, err
	}
	results := make([]folio.SearchResult, 0, len(content))
	for _, r := range content {
		results = append(results, folio.SearchResult{
			Symbol:   Symbol(r.Code, r.Exchange),
			Name:     r.Name,
			Exchange: r.Exchange,
			Type:     r.Type,
			Currency: r.Currency,
		})
	}
	return results, nil
}

// Symbol converts an EODHD code and exchange back into a market data
// symbol, the reverse of Ticker.
func Symbol(code, exchange string) string {
	if exchange == "US" {
		return code
	}
	for suffix, e := range exchanges {
		if e == exchange && suffix != "" {
			return code + "." + suffix
		}
	}
	return code + "." + exchange
}
