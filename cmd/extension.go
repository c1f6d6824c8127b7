package cmd

import (
	"errors"
	"os"
	"os/exec"
	"strconv"

	"github.com/rs/zerolog/log"
)

const (
	EnvConfigFile        = "FOLIO_CONFIG_FILE"
	EnvLedgerFile        = "FOLIO_LEDGER_FILE"
	EnvReportingCurrency = "FOLIO_REPORTING_CURRENCY"
	EnvVerbose           = "FOLIO_VERBOSE"
)

// RunExtension attempts to find and execute an external pfa-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found or executed.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := "pfa-" + subcommand

	lp, err := exec.LookPath(name)
	if err != nil {
		log.Debug().Err(err).Str("command", name).Msg("no extension")
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// Global flags are passed as environment variables.
	cmd.Env = append(os.Environ(),
		EnvConfigFile+"="+*configFile,
		EnvLedgerFile+"="+*ledgerFile,
		EnvReportingCurrency+"="+cfg.ReportingCurrency,
		EnvVerbose+"="+strconv.FormatBool(*Verbose),
	)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return true, exitErr.ExitCode()
		}
		log.Error().Err(err).Str("command", name).Msg("running extension")
		return true, 1
	}
	return true, 0
}
