// Package cmd implements the pfa command line application.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/config"
	"github.com/etnz/folio/eodhd"
	"github.com/etnz/folio/params"
	"github.com/etnz/folio/yahoo"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&importCmd{}, "transactions")

	c.Register(&navCmd{}, "reports")
	c.Register(&twrCmd{}, "reports")

	c.Register(&ratiosCmd{}, "valuation")
	c.Register(&fairValueCmd{}, "valuation")
	c.Register(&paramsCmd{}, "valuation")
	c.Register(&searchCmd{}, "valuation")

	c.Register(&serveCmd{}, "server")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile = flag.String("config", "", "Path to the YAML configuration file")
	ledgerFile = flag.String("ledger-file", "transactions.jsonl", "Path to the normalized transactions file (JSONL format)")
	Verbose    = flag.Bool("v", false, "Log debug messages")
	Raw        = flag.Bool("raw", false, "Print markdown without terminal rendering")
)

var cfg = config.Default()

// Init loads the configuration and sets up logging. It must be called
// after the flags are parsed.
func Init() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	c, err := config.Load(*configFile)
	if err != nil {
		return err
	}
	cfg = c
	level := cfg.Level()
	if *Verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	return nil
}

// DecodeTransactions reads the transactions file.
func DecodeTransactions() ([]folio.Transaction, error) {
	txs, err := readTransactions(*ledgerFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("no transactions file %q, create one with the import command", *ledgerFile)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", *ledgerFile, err)
	}
	return txs, nil
}

// securities returns the symbols traded in txs, sorted.
func securities(txs []folio.Transaction) []string {
	var symbols []string
	for _, tx := range txs {
		switch tx.Kind {
		case folio.Buy, folio.Sell, folio.TransferIn, folio.TransferOut:
			if !slices.Contains(symbols, tx.Symbol) {
				symbols = append(symbols, tx.Symbol)
			}
		}
	}
	slices.Sort(symbols)
	return symbols
}

// newProvider returns the market data provider of the configuration.
func newProvider() (folio.Provider, error) {
	switch cfg.Provider {
	case "eodhd":
		c := eodhd.New(cfg.EODHDAPIKey, cfg.ClientOptions("eodhd"))
		if c.APIKey == "" {
			return nil, fmt.Errorf("the eodhd provider needs an API key, set %s", eodhd.APIKeyEnv)
		}
		return c, nil
	default:
		return yahoo.New(cfg.ClientOptions("yahoo"))
	}
}

func newFetcher(p folio.Provider) *folio.Fetcher {
	f := folio.NewFetcher(p, p, time.Hour)
	f.Concurrency = cfg.FetchConcurrency
	f.Timeout = cfg.FetchTimeout
	return f
}

func openParams() (*params.Store, error) {
	s, err := params.Open(cfg.ParamsDB)
	if err != nil {
		return nil, fmt.Errorf("opening parameters %q: %w", cfg.ParamsDB, err)
	}
	return s, nil
}
