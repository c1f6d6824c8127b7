// Package params stores the fair value parameters of each ticker in SQLite.
package params

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/folio"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a ticker has no parameters.
var ErrNotFound = errors.New("no parameters for ticker")

// Params are the valuation parameters of a ticker.
type Params struct {
	Ticker           string               `json:"ticker"`
	Model            folio.ValuationModel `json:"model"`
	Growth           float64              `json:"growth"`
	Years            float64              `json:"years"`
	TerminalMultiple float64              `json:"terminalMultiple"`
	TargetReturn     float64              `json:"targetReturn"`
	Override         *float64             `json:"override,omitempty"` // per-share metric set by hand
	UpdatedAt        time.Time            `json:"updatedAt"`
}

// Default returns the parameters used for a ticker never configured.
func Default(ticker string) Params {
	return Params{
		Ticker:           ticker,
		Model:            folio.ModelPE,
		Growth:           0.08,
		Years:            5,
		TerminalMultiple: 15,
		TargetReturn:     0.10,
	}
}

// Input returns the fair value input for these parameters.
func (p Params) Input(auto *float64, currentPrice float64) folio.FairValueInput {
	return folio.FairValueInput{
		Model:            p.Model,
		Override:         p.Override,
		Auto:             auto,
		Growth:           p.Growth,
		Years:            p.Years,
		TerminalMultiple: p.TerminalMultiple,
		TargetReturn:     p.TargetReturn,
		CurrentPrice:     currentPrice,
	}
}

// Evaluate computes the fair value from the latest fundamentals snapshot
// and the last quote.
func (p Params) Evaluate(snaps []folio.FundamentalsSnapshot, quotes []folio.Quote) (folio.FairValueInput, folio.FairValue) {
	var auto *float64
	if snap, ok := folio.LatestSnapshot(snaps); ok {
		auto = folio.TrailingMetric(p.Model, snap)
	}
	var price float64
	if len(quotes) > 0 {
		price = quotes[len(quotes)-1].Close
	}
	in := p.Input(auto, price)
	return in, folio.ComputeFairValue(in)
}

// Keys are the names accepted by Set.
var Keys = []string{"model", "growth", "years", "multiple", "target", "override"}

// Set changes the parameter named key. An empty override value clears it.
func (p *Params) Set(key, value string) error {
	value = strings.TrimSpace(value)
	if key == "model" {
		m, err := folio.ParseValuationModel(value)
		if err != nil {
			return err
		}
		p.Model = m
		return nil
	}
	if key == "override" && value == "" {
		p.Override = nil
		return nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	switch key {
	case "growth":
		p.Growth = v
	case "years":
		p.Years = v
	case "multiple":
		p.TerminalMultiple = v
	case "target":
		p.TargetReturn = v
	case "override":
		p.Override = &v
	default:
		return fmt.Errorf("unknown parameter %q, valid ones are %s", key, strings.Join(Keys, ", "))
	}
	return nil
}

// Store persists Params.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at path. ":memory:" opens a private
// in-memory store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}
	// sqlite serializes writes anyway, and an in-memory database lives in
	// its connection.
	db.SetMaxOpenConns(1)

	const schema = `
	CREATE TABLE IF NOT EXISTS fair_value_params (
		ticker TEXT PRIMARY KEY,
		model TEXT NOT NULL DEFAULT 'pe',
		growth REAL NOT NULL,
		years REAL NOT NULL,
		terminal_multiple REAL NOT NULL,
		target_return REAL NOT NULL,
		override REAL,
		updated_at INTEGER NOT NULL DEFAULT 0
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	log.Debug().Str("path", path).Msg("params store opened")
	return &Store{db: db}, nil
}

// Close closes the store.
func (s *Store) Close() error { return s.db.Close() }

func normalize(ticker string) string { return strings.ToUpper(strings.TrimSpace(ticker)) }

// Get returns the parameters of ticker, ErrNotFound when there is none.
func (s *Store) Get(ctx context.Context, ticker string) (Params, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT ticker, model, growth, years, terminal_multiple, target_return, override, updated_at
	FROM fair_value_params WHERE ticker = ?`, normalize(ticker))
	p, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Params{}, fmt.Errorf("%w %s", ErrNotFound, normalize(ticker))
	}
	return p, err
}

// GetOrDefault returns the parameters of ticker, Default when there is none.
func (s *Store) GetOrDefault(ctx context.Context, ticker string) (Params, error) {
	p, err := s.Get(ctx, ticker)
	if errors.Is(err, ErrNotFound) {
		return Default(normalize(ticker)), nil
	}
	return p, err
}

// Put creates or replaces the parameters of p.Ticker.
func (s *Store) Put(ctx context.Context, p Params) error {
	var override sql.NullFloat64
	if p.Override != nil {
		override = sql.NullFloat64{Float64: *p.Override, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO fair_value_params (ticker, model, growth, years, terminal_multiple, target_return, override, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(ticker) DO UPDATE SET
		model = excluded.model,
		growth = excluded.growth,
		years = excluded.years,
		terminal_multiple = excluded.terminal_multiple,
		target_return = excluded.target_return,
		override = excluded.override,
		updated_at = excluded.updated_at`,
		normalize(p.Ticker), p.Model.String(), p.Growth, p.Years, p.TerminalMultiple, p.TargetReturn, override, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save parameters of %s: %w", p.Ticker, err)
	}
	return nil
}

// Delete removes the parameters of ticker.
func (s *Store) Delete(ctx context.Context, ticker string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM fair_value_params WHERE ticker = ?`, normalize(ticker))
	if err != nil {
		return fmt.Errorf("failed to delete parameters of %s: %w", ticker, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w %s", ErrNotFound, normalize(ticker))
	}
	return nil
}

// List returns every stored parameters, sorted by ticker.
func (s *Store) List(ctx context.Context) ([]Params, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT ticker, model, growth, years, terminal_multiple, target_return, override, updated_at
	FROM fair_value_params ORDER BY ticker`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Params
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

type scanner interface{ Scan(dest ...any) error }

func scan(row scanner) (Params, error) {
	var (
		p        Params
		model    string
		override sql.NullFloat64
		updated  int64
	)
	if err := row.Scan(&p.Ticker, &model, &p.Growth, &p.Years, &p.TerminalMultiple, &p.TargetReturn, &override, &updated); err != nil {
		return Params{}, err
	}
	m, err := folio.ParseValuationModel(model)
	if err != nil {
		return Params{}, err
	}
	p.Model = m
	p.UpdatedAt = time.Unix(updated, 0).UTC()
	if override.Valid {
		p.Override = &override.Float64
	}
	return p, nil
}
