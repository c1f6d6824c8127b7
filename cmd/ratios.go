package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

type ratiosCmd struct {
	years int
	json  bool
}

func (*ratiosCmd) Name() string     { return "ratios" }
func (*ratiosCmd) Synopsis() string { return "display the P/E, P/FCF and P/S history of securities" }
func (*ratiosCmd) Usage() string {
	return `pfa ratios [-years <n>] [-json] <symbol>...

  Computes the valuation ratios of each symbol for every daily close of
  the last years, using the fundamentals published at that time, and
  displays their high, median and low.
`
}

func (c *ratiosCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.years, "years", 5, "Years of history")
	f.BoolVar(&c.json, "json", false, "Print the series as JSON")
}

func (c *ratiosCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one symbol is required.")
		return subcommands.ExitUsageError
	}
	symbols := f.Args()
	p, err := newProvider()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fetcher := newFetcher(p)
	to := date.Today()
	prices := fetcher.FetchPrices(ctx, symbols, to.Add(-365*c.years), to)
	funds := fetcher.FetchFundamentals(ctx, symbols, c.years)

	status := subcommands.ExitSuccess
	all := make(map[string]folio.Ratios)
	var b strings.Builder
	for _, symbol := range symbols {
		if err := unavailable(symbol, prices, funds); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", symbol, err)
			status = subcommands.ExitFailure
			continue
		}
		r := folio.BuildRatios(prices.Quotes[symbol], funds.Fundamentals[symbol])
		all[symbol] = r
		b.WriteString(renderer.RatiosMarkdown(symbol, r))
		b.WriteString("\n")
	}

	if c.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(all); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return status
	}
	printMarkdown(b.String())
	return status
}

// unavailable returns the first fetch error of symbol.
func unavailable(symbol string, data ...*folio.MarketData) error {
	for _, m := range data {
		if err, ok := m.Unavailable[symbol]; ok {
			return err
		}
	}
	return nil
}
