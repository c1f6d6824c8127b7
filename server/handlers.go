package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/etnz/folio"
	"github.com/etnz/folio/params"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// peResult is the P/E of a ticker. Forward values are not provided by the
// market data sources and are always null.
type peResult struct {
	TrailingPE  *float64 `json:"trailingPE"`
	ForwardPE   *float64 `json:"forwardPE"`
	TrailingEPS *float64 `json:"trailingEps"`
	ForwardEPS  *float64 `json:"forwardEps"`
}

func tickers(raw string) []string {
	var res []string
	seen := make(map[string]bool)
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		res = append(res, t)
	}
	return res
}

// handlePE serves GET /pe?tickers=AAPL,MC.PA with the trailing P/E and EPS
// of the latest fundamentals of each ticker.
func (s *Server) handlePE(w http.ResponseWriter, r *http.Request) {
	symbols := tickers(r.URL.Query().Get("tickers"))
	if len(symbols) == 0 {
		respondError(w, http.StatusBadRequest, "missing tickers param")
		return
	}
	m := s.fetcher.FetchFundamentals(r.Context(), symbols, 1)
	res := make(map[string]peResult, len(symbols))
	for _, symbol := range symbols {
		if _, ok := m.Unavailable[symbol]; ok {
			s.metrics.unavailable.WithLabelValues("pe").Inc()
			res[symbol] = peResult{}
			continue
		}
		snap, ok := folio.LatestSnapshot(m.Fundamentals[symbol])
		if !ok {
			res[symbol] = peResult{}
			continue
		}
		res[symbol] = peResult{TrailingPE: snap.TrailingPE, TrailingEPS: snap.TrailingEPS}
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondError(w, http.StatusBadRequest, "missing q param")
		return
	}
	results, err := s.search.Search(r.Context(), q)
	if err != nil {
		log.Warn().Err(err).Str("query", q).Msg("search failed")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []folio.SearchResult{}
	}
	respondJSON(w, http.StatusOK, results)
}

type ratiosResult struct {
	Symbol string `json:"symbol"`
	folio.Ratios
}

// handleRatios serves GET /ratios/{symbol}[?years=N].
func (s *Server) handleRatios(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSpace(mux.Vars(r)["symbol"])
	years := s.Years
	if v := r.URL.Query().Get("years"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "invalid years param")
			return
		}
		years = n
	}

	to := s.today()
	from := to.Add(-365 * years)
	prices := s.fetcher.FetchPrices(r.Context(), []string{symbol}, from, to)
	funds := s.fetcher.FetchFundamentals(r.Context(), []string{symbol}, years)
	for _, m := range []*folio.MarketData{prices, funds} {
		if err := m.Err(); err != nil {
			s.metrics.unavailable.WithLabelValues("ratios").Inc()
			respondError(w, http.StatusBadGateway, err.Error())
			return
		}
	}
	respondJSON(w, http.StatusOK, ratiosResult{
		Symbol: symbol,
		Ratios: folio.BuildRatios(prices.Quotes[symbol], funds.Fundamentals[symbol]),
	})
}

type fairValueResult struct {
	Symbol        string        `json:"symbol"`
	Params        params.Params `json:"params"`
	Metric        *float64      `json:"metric"`
	CurrentPrice  *float64      `json:"currentPrice"`
	FairPrice     *float64      `json:"fairPrice"`
	ImpliedReturn *float64      `json:"impliedReturn"`
}

// handleFairValue serves GET /fairvalue/{symbol} with the stored
// parameters of the symbol. Missing market data leaves fields null.
func (s *Server) handleFairValue(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSpace(mux.Vars(r)["symbol"])
	p := params.Default(symbol)
	if s.params != nil {
		var err error
		p, err = s.params.GetOrDefault(r.Context(), symbol)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	to := s.today()
	prices := s.fetcher.FetchPrices(r.Context(), []string{symbol}, to.Add(-10), to)
	funds := s.fetcher.FetchFundamentals(r.Context(), []string{symbol}, 2)
	if prices.Err() != nil || funds.Err() != nil {
		s.metrics.unavailable.WithLabelValues("fairvalue").Inc()
	}

	in, fv := p.Evaluate(funds.Fundamentals[symbol], prices.Quotes[symbol])
	res := fairValueResult{
		Symbol:        symbol,
		Params:        p,
		Metric:        in.Metric(),
		FairPrice:     fv.Price,
		ImpliedReturn: fv.ImpliedReturn,
	}
	if in.CurrentPrice > 0 {
		res.CurrentPrice = &in.CurrentPrice
	}
	respondJSON(w, http.StatusOK, res)
}
