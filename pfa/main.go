// Command pfa imports broker statements and reports on the portfolio
// performance and the valuation of its securities.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio/cmd"
	"github.com/google/subcommands"
)

func main() {
	c := subcommands.NewCommander(flag.CommandLine, "pfa")
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")
	cmd.Register(c)

	cmd.Completion(c, flag.CommandLine).Complete("pfa")
	flag.Parse()

	if err := cmd.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(int(subcommands.ExitFailure))
	}

	if flag.NArg() > 0 && !registered(c, flag.Arg(0)) {
		if found, code := cmd.RunExtension(flag.Arg(0), flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(c.Execute(context.Background())))
}

func registered(c *subcommands.Commander, name string) bool {
	found := false
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		if cmd.Name() == name {
			found = true
		}
	})
	return found
}
