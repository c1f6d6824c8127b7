package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio"
	"github.com/etnz/folio/statement"
	"github.com/google/subcommands"
)

type importCmd struct {
	output string
	append bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "normalize broker statements into the transactions file" }
func (*importCmd) Usage() string {
	return `pfa import [-o <file>] [-append] <statement.csv>...

  Reads broker account statements (CSV exports, comma, semicolon or tab
  separated) and writes the recognized deposits, withdrawals, trades,
  transfers and dividends as JSON lines, sorted by date.
  Rows that are not recognized are skipped, run with -v to list them.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file. Defaults to the -ledger-file.")
	f.BoolVar(&c.append, "append", false, "Merge with the transactions already in the output file")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one statement file is required.")
		return subcommands.ExitUsageError
	}
	if c.output == "" {
		c.output = *ledgerFile
	}

	txs, stats, err := importStatements(f.Args(), cfg.Symbols())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.append {
		existing, err := readTransactions(c.output)
		if err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error reading %q: %v\n", c.output, err)
			return subcommands.ExitFailure
		}
		txs = append(existing, txs...)
		folio.SortTransactions(txs)
	}

	out, err := os.Create(c.output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", c.output, err)
		return subcommands.ExitFailure
	}
	defer out.Close()
	if err := folio.EncodeTransactions(out, txs); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", c.output, err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(os.Stderr, "Imported %d transactions from %d rows (%d skipped) into %s\n", stats.Kept, stats.Rows, stats.Skipped, c.output)
	return subcommands.ExitSuccess
}

// importStatements reads and normalizes statement files.
func importStatements(files []string, symbols *folio.SymbolTable) ([]folio.Transaction, folio.NormalizeStats, error) {
	var rows []folio.Row
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return nil, folio.NormalizeStats{}, err
		}
		r, err := statement.Read(f)
		f.Close()
		if err != nil {
			return nil, folio.NormalizeStats{}, fmt.Errorf("reading statement %q: %w", name, err)
		}
		rows = append(rows, r...)
	}
	txs, stats := folio.NewNormalizer(symbols).Normalize(rows)
	return txs, stats, nil
}

func readTransactions(name string) ([]folio.Transaction, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return folio.DecodeTransactions(f)
}
