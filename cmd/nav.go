package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
)

// simulate replays the transactions up to on with market closes.
func simulate(ctx context.Context, txs []folio.Transaction, on date.Date) (*folio.Simulator, []folio.DailySnapshot, error) {
	p, err := newProvider()
	if err != nil {
		return nil, nil, err
	}
	// a week back so that the first days are priced
	m := newFetcher(p).FetchPrices(ctx, securities(txs), txs[0].Date.Add(-7), on)
	if err := m.Err(); err != nil {
		log.Warn().Err(err).Msg("positions without prices are not valued")
	}
	sim := folio.NewSimulator(cfg.ReportingCurrency, m.Prices)
	sim.FX = cfg.FXPolicy()
	return sim, sim.Snapshots(txs, on), nil
}

// navCmd holds the flags for the 'nav' subcommand.
type navCmd struct {
	date string
	html string
}

func (*navCmd) Name() string     { return "nav" }
func (*navCmd) Synopsis() string { return "display the portfolio net asset value and holdings" }
func (*navCmd) Usage() string {
	return `pfa nav [-d <date>] [-html <file>]

  Replays the transactions day by day with the market closes and displays
  the net asset value, its time-weighted returns, the holdings and the
  value of the transferred securities at cost basis and at market.
`
}

func (c *navCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Date of the report (YYYY-MM-DD)")
	f.StringVar(&c.html, "html", "", "Also write the report as HTML to this file")
}

func (c *navCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	txs, err := DecodeTransactions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(txs) == 0 {
		fmt.Fprintln(os.Stderr, "Warning: no transactions.")
		return subcommands.ExitSuccess
	}

	sim, snaps, err := simulate(ctx, txs, on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	md := renderer.RenderNAV(renderer.NewNAV(snaps, on, cfg.ReportingCurrency, sim.Transfers(txs)))

	if c.html != "" {
		html, err := renderer.HTML(md)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := os.WriteFile(c.html, []byte(html), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", c.html, err)
			return subcommands.ExitFailure
		}
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

// twrCmd holds the flags for the 'twr' subcommand.
type twrCmd struct {
	date string
}

func (*twrCmd) Name() string     { return "twr" }
func (*twrCmd) Synopsis() string { return "display the time-weighted returns" }
func (*twrCmd) Usage() string {
	return `pfa twr [-d <date>]

  Displays the time-weighted return of the portfolio for the day, the
  week, month, quarter and year to date, and since inception. Deposits,
  withdrawals and security transfers do not count as performance.
`
}

func (c *twrCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Date of the report (YYYY-MM-DD)")
}

func (c *twrCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	txs, err := DecodeTransactions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(txs) == 0 {
		fmt.Fprintln(os.Stderr, "Warning: no transactions.")
		return subcommands.ExitSuccess
	}
	_, snaps, err := simulate(ctx, txs, on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderPerformance(folio.PeriodReturns(snaps, on, cfg.ReportingCurrency)))
	return subcommands.ExitSuccess
}
