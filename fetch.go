package folio

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/etnz/folio/date"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// PriceProvider returns the daily closes of a symbol between two days,
// in ascending order. An unknown symbol yields no quotes.
type PriceProvider interface {
	Prices(ctx context.Context, symbol string, from, to date.Date) ([]Quote, error)
}

// FundamentalsProvider returns the fundamentals snapshots of a symbol
// published during the last years.
type FundamentalsProvider interface {
	Fundamentals(ctx context.Context, symbol string, years int) ([]FundamentalsSnapshot, error)
}

// SearchResult is a security matching a search query.
type SearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Type     string `json:"type"`
	Currency string `json:"currency,omitempty"`
}

// Searcher looks up securities by name, symbol or ISIN.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// Provider is a market data source.
type Provider interface {
	PriceProvider
	FundamentalsProvider
	Searcher
}

// Fetcher retrieves market data for many symbols in parallel. A failure
// for a symbol never prevents fetching the others.
type Fetcher struct {
	Prices       PriceProvider
	Fundamentals FundamentalsProvider
	Concurrency  int           // maximum number of fetches in flight
	Timeout      time.Duration // per symbol

	memo *cache.Cache
}

// NewFetcher returns a Fetcher fetching 4 symbols at a time, with a 15s
// timeout per symbol. Results are remembered for ttl.
func NewFetcher(prices PriceProvider, fundamentals FundamentalsProvider, ttl time.Duration) *Fetcher {
	return &Fetcher{
		Prices:       prices,
		Fundamentals: fundamentals,
		Concurrency:  4,
		Timeout:      15 * time.Second,
		memo:         cache.New(ttl, 2*ttl),
	}
}

// MarketData is the outcome of a fetch. Unavailable holds the reason for
// each symbol that could not be fetched.
type MarketData struct {
	Prices       map[string]*date.History[float64]
	Quotes       map[string][]Quote
	Fundamentals map[string][]FundamentalsSnapshot
	Unavailable  map[string]error
}

// Err summarizes the unavailable symbols, nil when there is none.
func (m *MarketData) Err() error {
	symbols := make([]string, 0, len(m.Unavailable))
	for s := range m.Unavailable {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	errs := make([]error, 0, len(symbols))
	for _, s := range symbols {
		errs = append(errs, fmt.Errorf("%s: %w", s, m.Unavailable[s]))
	}
	return errors.Join(errs...)
}

func newMarketData() *MarketData {
	return &MarketData{
		Prices:       make(map[string]*date.History[float64]),
		Quotes:       make(map[string][]Quote),
		Fundamentals: make(map[string][]FundamentalsSnapshot),
		Unavailable:  make(map[string]error),
	}
}

// FetchPrices fetches the closes of every symbol between from and to.
func (f *Fetcher) FetchPrices(ctx context.Context, symbols []string, from, to date.Date) *MarketData {
	results := make([][]Quote, len(symbols))
	errs := f.each(ctx, symbols, func(ctx context.Context, i int, symbol string) error {
		key := fmt.Sprintf("prices/%s/%s/%s", symbol, from, to)
		if v, ok := f.cached(key); ok {
			results[i] = v.([]Quote)
			return nil
		}
		quotes, err := f.Prices.Prices(ctx, symbol, from, to)
		if err != nil {
			return err
		}
		f.remember(key, quotes)
		results[i] = quotes
		return nil
	})

	m := newMarketData()
	for i, symbol := range symbols {
		if errs[i] != nil {
			m.Unavailable[symbol] = errs[i]
			continue
		}
		m.Quotes[symbol] = results[i]
		m.Prices[symbol] = QuoteHistory(results[i])
	}
	return m
}

// FetchFundamentals fetches the fundamentals of every symbol over the last
// years.
func (f *Fetcher) FetchFundamentals(ctx context.Context, symbols []string, years int) *MarketData {
	results := make([][]FundamentalsSnapshot, len(symbols))
	errs := f.each(ctx, symbols, func(ctx context.Context, i int, symbol string) error {
		key := fmt.Sprintf("fundamentals/%s/%d", symbol, years)
		if v, ok := f.cached(key); ok {
			results[i] = v.([]FundamentalsSnapshot)
			return nil
		}
		snaps, err := f.Fundamentals.Fundamentals(ctx, symbol, years)
		if err != nil {
			return err
		}
		f.remember(key, snaps)
		results[i] = snaps
		return nil
	})

	m := newMarketData()
	for i, symbol := range symbols {
		if errs[i] != nil {
			m.Unavailable[symbol] = errs[i]
			continue
		}
		m.Fundamentals[symbol] = results[i]
	}
	return m
}

// each calls fetch for every symbol with bounded parallelism and a timeout
// per call. It returns the error of each call, by index.
func (f *Fetcher) each(ctx context.Context, symbols []string, fetch func(ctx context.Context, i int, symbol string) error) []error {
	errs := make([]error, len(symbols))
	var g errgroup.Group
	g.SetLimit(max(1, f.Concurrency))
	for i, symbol := range symbols {
		g.Go(func() error {
			ctx := ctx
			if f.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, f.Timeout)
				defer cancel()
			}
			if err := fetch(ctx, i, symbol); err != nil {
				log.Warn().Err(err).Str("symbol", symbol).Msg("market data unavailable")
				errs[i] = err
			}
			// errors stay per symbol, they must not cancel the group.
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

func (f *Fetcher) cached(key string) (any, bool) {
	if f.memo == nil {
		return nil, false
	}
	return f.memo.Get(key)
}

func (f *Fetcher) remember(key string, v any) {
	if f.memo == nil {
		return
	}
	f.memo.SetDefault(key, v)
}
