package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"
)

// printMarkdown renders md for the terminal, or prints it as is with -raw.
func printMarkdown(md string) {
	if *Raw {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		log.Debug().Err(err).Msg("no terminal renderer")
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		log.Debug().Err(err).Msg("rendering markdown")
		fmt.Print(md)
		return
	}
	fmt.Fprint(os.Stdout, out)
}
