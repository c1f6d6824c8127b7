package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
)

type searchCmd struct{}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "search securities by name, symbol or ISIN" }
func (*searchCmd) Usage() string {
	return `pfa search <search term>

  Searches the market data provider and prints the matching symbols.
`
}

func (c *searchCmd) SetFlags(f *flag.FlagSet) {}

func (c *searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: a search term is required.")
		return subcommands.ExitUsageError
	}
	term := strings.Join(f.Args(), " ")
	p, err := newProvider()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	results, err := p.Search(ctx, term)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error searching securities: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(results) == 0 {
		fmt.Printf("No results found for '%s'.\n", term)
		return subcommands.ExitSuccess
	}

	var b strings.Builder
	fmt.Fprintf(&b, "| Symbol | Name | Exchange | Type | Currency |\n|:---|:---|:---|:---|:---|\n")
	for _, r := range results {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", r.Symbol, r.Name, r.Exchange, r.Type, r.Currency)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
