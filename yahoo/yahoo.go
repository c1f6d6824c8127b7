// Package yahoo fetches prices, fundamentals and symbols from Yahoo Finance.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultSearchURL = "https://query2.finance.yahoo.com"
)

// Client is a Yahoo Finance client. It implements folio.Provider.
type Client struct {
	BaseURL   string
	SearchURL string
	HTTP      *http.Client
}

// New returns a client using opts for its transport. Yahoo sets session
// cookies on the first requests, they are kept in a cookie jar.
func New(opts folio.ClientOptions) (*Client, error) {
	if opts.Name == "" {
		opts.Name = "yahoo"
	}
	client := folio.NewHTTPClient(opts)
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	client.Jar = jar
	return &Client{BaseURL: DefaultBaseURL, SearchURL: DefaultSearchURL, HTTP: client}, nil
}

// notFound reports whether err is Yahoo's answer for an unknown symbol.
func notFound(err error) bool {
	var status *folio.StatusError
	return errors.As(err, &status) && status.StatusCode == http.StatusNotFound
}

// Prices returns the daily closes of symbol between from and to, both
// included. Days without a close are skipped.
func (c *Client) Prices(ctx context.Context, symbol string, from, to date.Date) ([]folio.Quote, error) {
	// https://query1.finance.yahoo.com/v8/finance/chart/AIR.PA?period1=1704067200&period2=1706745600&interval=1d
	// {"chart":{"result":[{"meta":{"currency":"EUR",...},
	//   "timestamp":[1704182400,...],
	//   "indicators":{"quote":[{"close":[136.5,null,...]}]}}],"error":null}}
	q := url.Values{}
	q.Set("period1", fmt.Sprint(from.Time().Unix()))
	q.Set("period2", fmt.Sprint(to.Add(1).Time().Unix()))
	q.Set("interval", "1d")
	q.Set("events", "history")
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.BaseURL, url.PathEscape(symbol), q.Encode())

	var jobj any
	if err := folio.GetJSON(ctx, c.HTTP, addr, &jobj); err != nil {
		if notFound(err) {
			log.Debug().Str("symbol", symbol).Msg("unknown symbol")
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving prices for %q: %w", symbol, err)
	}

	timestamps, err := list(jobj, "$.chart.result[0].timestamp")
	if err != nil {
		// a symbol without trading days has no timestamp
		return nil, nil
	}
	closes, err := list(jobj, "$.chart.result[0].indicators.quote[0].close")
	if err != nil {
		return nil, fmt.Errorf("error parsing prices for %q: %w", symbol, err)
	}

	quotes := make([]folio.Quote, 0, len(timestamps))
	for i, ts := range timestamps {
		if i >= len(closes) {
			break
		}
		sec, ok1 := ts.(float64)
		price, ok2 := closes[i].(float64)
		if !ok1 || !ok2 || price <= 0 {
			continue
		}
		t := time.Unix(int64(sec), 0).UTC()
		if d := date.FromTime(t); d.Before(from) || d.After(to) {
			continue
		}
		quotes = append(quotes, folio.Quote{Time: t, Close: price})
	}
	return quotes, nil
}

// series are the timeseries requested for fundamentals.
var series = []string{
	"trailingPeRatio",
	"trailingDilutedEPS",
	"trailingFreeCashFlow",
	"trailingTotalRevenue",
	"quarterlyDilutedAverageShares",
}

// Fundamentals returns a snapshot per published quarter over the last years.
// The P/E ratio is only kept on dates with published figures.
func (c *Client) Fundamentals(ctx context.Context, symbol string, years int) ([]folio.FundamentalsSnapshot, error) {
	// https://query1.finance.yahoo.com/ws/fundamentals-timeseries/v1/finance/timeseries/AAPL?type=trailingDilutedEPS,...
	// {"timeseries":{"result":[{"meta":{"symbol":["AAPL"],"type":["trailingDilutedEPS"]},
	//   "timestamp":[...],
	//   "trailingDilutedEPS":[{"asOfDate":"2024-03-31","reportedValue":{"raw":6.43,"fmt":"6.43"}},...]},...]}}
	now := time.Now()
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("type", strings.Join(series, ","))
	q.Set("period1", fmt.Sprint(now.AddDate(-years, 0, 0).Unix()))
	q.Set("period2", fmt.Sprint(now.Unix()))
	addr := fmt.Sprintf("%s/ws/fundamentals-timeseries/v1/finance/timeseries/%s?%s", c.BaseURL, url.PathEscape(symbol), q.Encode())

	var jobj any
	if err := folio.GetJSON(ctx, c.HTTP, addr, &jobj); err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving fundamentals for %q: %w", symbol, err)
	}
	results, err := list(jobj, "$.timeseries.result")
	if err != nil {
		return nil, nil
	}

	byDate := make(map[date.Date]*folio.FundamentalsSnapshot)
	for _, r := range results {
		res, ok := r.(map[string]any)
		if !ok {
			continue
		}
		kind, err := jsonpath.Get("$.meta.type[0]", res)
		if err != nil {
			continue
		}
		name, _ := kind.(string)
		points, _ := res[name].([]any)
		for _, p := range points {
			on, v, ok := reported(p)
			if !ok {
				continue
			}
			snap, exists := byDate[on]
			if !exists {
				snap = &folio.FundamentalsSnapshot{AsOf: on}
				byDate[on] = snap
			}
			switch name {
			case "trailingPeRatio":
				snap.TrailingPE = &v
			case "trailingDilutedEPS":
				snap.TrailingEPS = &v
			case "trailingFreeCashFlow":
				snap.TrailingFCF = &v
			case "trailingTotalRevenue":
				snap.TrailingRevenue = &v
			case "quarterlyDilutedAverageShares":
				snap.TrailingShares = &v
			}
		}
	}

	snaps := make([]folio.FundamentalsSnapshot, 0, len(byDate))
	for _, s := range byDate {
		if s.TrailingEPS == nil && s.TrailingFCF == nil && s.TrailingRevenue == nil {
			continue
		}
		snaps = append(snaps, *s)
	}
	slices.SortFunc(snaps, func(a, b folio.FundamentalsSnapshot) int { return a.AsOf.Compare(b.AsOf) })
	return snaps, nil
}

// Search returns the securities matching query.
func (c *Client) Search(ctx context.Context, query string) ([]folio.SearchResult, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("quotesCount", "8")
	q.Set("newsCount", "0")
	q.Set("listsCount", "0")
	q.Set("enableFuzzyQuery", "false")
	addr := fmt.Sprintf("%s/v1/finance/search?%s", c.SearchURL, q.Encode())

	var content struct {
		Quotes []struct {
			Symbol    string `json:"symbol"`
			LongName  string `json:"longname"`
			ShortName string `json:"shortname"`
			Exchange  string `json:"exchDisp"`
			Type      string `json:"quoteType"`
		} `json:"quotes"`
	}
	if err := folio.GetJSON(ctx, c.HTTP, addr, &content); err != nil {
		return nil, fmt.Errorf("error searching %q: %w", query, err)
	}
	results := make([]folio.SearchResult, 0, len(content.Quotes))
	for _, q := range content.Quotes {
		name := q.LongName
		if name == "" {
			name = q.ShortName
		}
		results = append(results, folio.SearchResult{Symbol: q.Symbol, Name: name, Exchange: q.Exchange, Type: q.Type})
	}
	return results, nil
}

// list evaluates path on jobj and expects a list.
func list(jobj any, path string) ([]any, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %w", path, err)
	}
	l, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("error parsing %q: not a list: %v", path, jval)
	}
	return l, nil
}

// reported decodes a timeseries point. Points can be null.
func reported(p any) (date.Date, float64, bool) {
	m, ok := p.(map[string]any)
	if !ok {
		return date.Date{}, 0, false
	}
	s, _ := m["asOfDate"].(string)
	on, err := date.Parse(s)
	if err != nil {
		return date.Date{}, 0, false
	}
	raw, err := jsonpath.Get("$.reportedValue.raw", m)
	if err != nil {
		return date.Date{}, 0, false
	}
	v, ok := raw.(float64)
	return on, v, ok
}
