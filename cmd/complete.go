package cmd

import (
	"flag"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// positional predicts the positional arguments of some commands.
var positional = map[string]complete.Predictor{
	"import": predict.Files("*.csv"),
	"params": predict.Set{"list", "get", "set", "delete"},
}

// Completion describes the commands registered in c and their flags for
// shell completion.
func Completion(c *subcommands.Commander, global *flag.FlagSet) *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flags(global),
	}
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
		cmd.SetFlags(fs)
		root.Sub[cmd.Name()] = &complete.Command{Flags: flags(fs), Args: positional[cmd.Name()]}
	})
	return root
}

func flags(fs *flag.FlagSet) map[string]complete.Predictor {
	m := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			m[f.Name] = predict.Nothing
			return
		}
		m[f.Name] = predict.Something
	})
	return m
}
