package eodhd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/rs/zerolog/log"
)

// This file contains functions to access the EODHD API.

func notFound(err error) bool {
	var status *folio.StatusError
	return errors.As(err, &status) && status.StatusCode == http.StatusNotFound
}

// Prices returns the daily closes of symbol between from and to.
func (c *Client) Prices(ctx context.Context, symbol string, from, to date.Date) ([]folio.Quote, error) {
	// https://eodhd.com/api/eod/NVD.F?api_token=demo&fmt=json&from=2024-02-01&to=2024-02-29
	// [
	//	{
	//		"date": "2024-02-13",
	//		"open": 675.066,
	//		"high": 684.219,
	//		"low": 648.659,
	//		"close": 668.445,
	//		"adjusted_close": 67.705,
	//		"volume": 0
	//	  },
	// bounds are included in the response.
	ticker := Ticker(symbol)
	addr := c.url("/api/eod/"+url.PathEscape(ticker), fmt.Sprintf("from=%s&to=%s", from, to))

	type Info struct {
		Date  date.Date `json:"date"`
		Close float64   `json:"close"`
	}
	content := make([]Info, 0)
	if err := folio.GetJSON(ctx, c.HTTP, addr, &content); err != nil {
		if notFound(err) {
			log.Debug().Str("symbol", symbol).Str("ticker", ticker).Msg("unknown ticker")
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving prices for %q: %w", ticker, err)
	}

	quotes := make([]folio.Quote, 0, len(content))
	for _, info := range content {
		if info.Close <= 0 {
			continue
		}
		quotes = append(quotes, folio.Quote{Time: info.Date.Time(), Close: info.Close})
	}
	slices.SortFunc(quotes, func(a, b folio.Quote) int { return a.Time.Compare(b.Time) })
	return quotes, nil
}

// Fundamentals returns a snapshot per reported quarter over the last years.
// Trailing figures are the sum of the last four quarters.
func (c *Client) Fundamentals(ctx context.Context, symbol string, years int) ([]folio.FundamentalsSnapshot, error) {
	// https://eodhd.com/api/fundamentals/AAPL.US?api_token=demo&fmt=json
	// {
	//   "Earnings": {"History": {"2024-03-31": {"date": "2024-03-31", "epsActual": 1.53}, ...}},
	//   "Financials": {
	//     "Cash_Flow": {"quarterly": {"2024-03-31": {"date": "2024-03-31", "freeCashFlow": "20694000000.00"}, ...}},
	//     "Income_Statement": {"quarterly": {"2024-03-31": {"date": "2024-03-31", "totalRevenue": "90753000000.00"}, ...}}
	//   },
	//   "outstandingShares": {"quarterly": {"0": {"date": "2024-Q1", "dateFormatted": "2024-03-31", "shares": 15337686000}, ...}}
	// }
	ticker := Ticker(symbol)
	addr := c.url("/api/fundamentals/"+url.PathEscape(ticker), "")

	var jobj any
	if err := folio.GetJSON(ctx, c.HTTP, addr, &jobj); err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving fundamentals for %q: %w", ticker, err)
	}

	eps := trailing(quarterly(jobj, "$.Earnings.History", "epsActual"))
	fcf := trailing(quarterly(jobj, "$.Financials.Cash_Flow.quarterly", "freeCashFlow"))
	revenue := trailing(quarterly(jobj, "$.Financials.Income_Statement.quarterly", "totalRevenue"))
	shares := quarterly(jobj, "$.outstandingShares.quarterly", "shares")

	since := date.FromTime(time.Now().AddDate(-years, 0, 0))
	byDate := make(map[date.Date]*folio.FundamentalsSnapshot)
	get := func(on date.Date) *folio.FundamentalsSnapshot {
		s, ok := byDate[on]
		if !ok {
			s = &folio.FundamentalsSnapshot{AsOf: on}
			byDate[on] = s
		}
		return s
	}
	for on, v := range eps.Values() {
		if !on.Before(since) {
			get(on).TrailingEPS = &v
		}
	}
	for on, v := range fcf.Values() {
		if !on.Before(since) {
			get(on).TrailingFCF = &v
		}
	}
	for on, v := range revenue.Values() {
		if !on.Before(since) {
			get(on).TrailingRevenue = &v
		}
	}

	snaps := make([]folio.FundamentalsSnapshot, 0, len(byDate))
	for on, s := range byDate {
		if v, ok := shares.ValueAsOf(on); ok && v > 0 {
			s.TrailingShares = &v
		}
		snaps = append(snaps, *s)
	}
	slices.SortFunc(snaps, func(a, b folio.FundamentalsSnapshot) int { return a.AsOf.Compare(b.AsOf) })
	return snaps, nil
}

// quarterly reads the field of every entry of the object at path. Entries
// are dated by "dateFormatted" or "date".
func quarterly(jobj any, path, field string) *date.History[float64] {
	h := new(date.History[float64])
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return h
	}
	entries, ok := jval.(map[string]any)
	if !ok {
		return h
	}
	for _, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			continue
		}
		v, ok := number(entry[field])
		if !ok {
			continue
		}
		for _, key := range []string{"dateFormatted", "date"} {
			s, _ := entry[key].(string)
			if on, err := date.Parse(s); err == nil {
				h.Append(on, v)
				break
			}
		}
	}
	return h
}

// trailing sums four consecutive quarters. A window spanning more than
// about a year has a missing quarter and is skipped.
func trailing(q *date.History[float64]) *date.History[float64] {
	type point struct {
		on date.Date
		v  float64
	}
	var points []point
	for on, v := range q.Values() {
		points = append(points, point{on, v})
	}
	h := new(date.History[float64])
	for i := 3; i < len(points); i++ {
		first, last := points[i-3].on, points[i].on
		if last.Time().Sub(first.Time()) > 300*24*time.Hour {
			continue
		}
		h.Append(last, points[i-3].v+points[i-2].v+points[i-1].v+points[i].v)
	}
	return h
}
