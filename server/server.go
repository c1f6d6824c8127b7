// Package server exposes market data analytics over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/params"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// ParamStore provides the fair value parameters of a ticker.
type ParamStore interface {
	GetOrDefault(ctx context.Context, ticker string) (params.Params, error)
}

// Server routes the API requests.
type Server struct {
	router  *mux.Router
	fetcher *folio.Fetcher
	search  folio.Searcher
	params  ParamStore
	metrics *metrics

	// Years of history used for ratios.
	Years int
	// Timeout bounds the handling of one request.
	Timeout time.Duration

	today func() date.Date
}

// New returns a Server. store can be nil, default parameters are used then.
func New(fetcher *folio.Fetcher, search folio.Searcher, store ParamStore) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		fetcher: fetcher,
		search:  search,
		params:  store,
		metrics: newMetrics(prometheus.NewRegistry()),
		Years:   5,
		Timeout: 30 * time.Second,
		today:   date.Today,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.logging)
	s.router.Use(s.cors)
	s.router.Use(s.timeout)

	api := s.router.PathPrefix("/").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/pe", s.handlePE).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/ratios/{symbol}", s.handleRatios).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/fairvalue/{symbol}", s.handleFairValue).Methods(http.MethodGet, http.MethodOptions)
	s.router.Handle("/metrics", s.metrics.handler()).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "not found")
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: s.Timeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("serving")
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(shutdown)
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Debug().Err(err).Msg("writing response")
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
