package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/folio/params"
	"github.com/google/subcommands"
)

type paramsCmd struct{}

func (*paramsCmd) Name() string     { return "params" }
func (*paramsCmd) Synopsis() string { return "manage the fair value parameters of securities" }
func (*paramsCmd) Usage() string {
	return `pfa params list
pfa params get <symbol>
pfa params set <symbol> <key>=<value>...
pfa params delete <symbol>

  Keys are model (pe, pfcf or ps), growth, years, multiple, target and
  override. Rates are fractions, 0.08 is 8%. An empty override goes back
  to the metric computed from the fundamentals.

Usage Examples:
$ pfa params set AAPL model=pe growth=0.1 multiple=20
$ pfa params set AAPL override=
`
}

func (c *paramsCmd) SetFlags(f *flag.FlagSet) {}

func (c *paramsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	store, err := openParams()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	if err := runParams(ctx, store, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

var errUsage = errors.New("invalid arguments")

func runParams(ctx context.Context, store *params.Store, args []string) error {
	action, args := args[0], args[1:]
	switch {
	case action == "list" && len(args) == 0:
		list, err := store.List(ctx)
		if err != nil {
			return err
		}
		printMarkdown(paramsTable(list))
	case action == "get" && len(args) == 1:
		p, err := store.GetOrDefault(ctx, args[0])
		if err != nil {
			return err
		}
		printMarkdown(paramsTable([]params.Params{p}))
	case action == "set" && len(args) >= 2:
		p, err := store.GetOrDefault(ctx, args[0])
		if err != nil {
			return err
		}
		for _, kv := range args[1:] {
			key, value, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("%w: %q is not key=value", errUsage, kv)
			}
			if err := p.Set(key, value); err != nil {
				return err
			}
		}
		if err := store.Put(ctx, p); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved parameters of %s\n", p.Ticker)
	case action == "delete" && len(args) == 1:
		if err := store.Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Deleted parameters of %s\n", args[0])
	default:
		return fmt.Errorf("%w: params %s", errUsage, strings.Join(append([]string{action}, args...), " "))
	}
	return nil
}

func paramsTable(list []params.Params) string {
	if len(list) == 0 {
		return "No parameters stored.\n"
	}
	var b strings.Builder
	b.WriteString("| Ticker | Model | Growth | Years | Multiple | Target | Override |\n")
	b.WriteString("|:---|:---|---:|---:|---:|---:|---:|\n")
	for _, p := range list {
		override := "-"
		if p.Override != nil {
			override = fmt.Sprintf("%.2f", *p.Override)
		}
		fmt.Fprintf(&b, "| %s | %s | %.2f%% | %g | %g | %.2f%% | %s |\n",
			p.Ticker, p.Model, 100*p.Growth, p.Years, p.TerminalMultiple, 100*p.TargetReturn, override)
	}
	return b.String()
}
