package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/folio/date"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

type fairValueCmd struct {
	model string
}

func (*fairValueCmd) Name() string     { return "fairvalue" }
func (*fairValueCmd) Synopsis() string { return "estimate the fair price of securities" }
func (*fairValueCmd) Usage() string {
	return `pfa fairvalue [-model <pe|pfcf|ps>] <symbol>...

  Projects the trailing per-share metric of each symbol with its stored
  parameters (see 'pfa params'), prices it with the terminal multiple and
  discounts it at the target return. Symbols never configured use the
  default parameters.
`
}

func (c *fairValueCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.model, "model", "", "Override the stored valuation model")
}

func (c *fairValueCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one symbol is required.")
		return subcommands.ExitUsageError
	}
	symbols := f.Args()

	store, err := openParams()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	p, err := newProvider()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fetcher := newFetcher(p)
	to := date.Today()
	prices := fetcher.FetchPrices(ctx, symbols, to.Add(-10), to)
	funds := fetcher.FetchFundamentals(ctx, symbols, 2)

	var b strings.Builder
	for _, symbol := range symbols {
		if err := unavailable(symbol, prices, funds); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %s: %v\n", symbol, err)
		}
		params, err := store.GetOrDefault(ctx, symbol)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		if c.model != "" {
			if err := params.Set("model", c.model); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return subcommands.ExitUsageError
			}
		}
		in, fv := params.Evaluate(funds.Fundamentals[symbol], prices.Quotes[symbol])
		b.WriteString(renderer.RenderFairValue(&renderer.FairValue{Symbol: symbol, Input: in, Result: fv}))
		b.WriteString("\n")
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
