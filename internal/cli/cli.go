package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/modlink/internal/config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*config.Config, bool, error) {
	slog.Debug("CLI parser started.")
	defaults := config.Defaults()

	flagSet := flag.NewFlagSet("modlink", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
modlink - Links and evaluates modules declared in HCL manifests.

Usage:
  modlink [options] MODULE...

Arguments:
  MODULE
    Name of a module to load. Its exports are printed once it is evaluated.

Options:
`)
		flagSet.PrintDefaults()
	}

	modulesPathFlag := flagSet.String("modules-path", defaults.ModulesPath, "Path to a manifest file or a directory of .hcl manifests.")
	mFlag := flagSet.String("m", "", "Path to the manifests (shorthand).")
	healthPortFlag := flagSet.Int("healthcheck-port", defaults.HealthcheckPort, "Port for the HTTP health and metrics server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", defaults.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	allowRemoteFlag := flagSet.Bool("allow-remote", false, "Resolve imports of http(s) URLs by fetching JSON documents.")
	outputFlag := flagSet.String("output", defaults.Output, "Format of the printed exports. Options: 'json' or 'text'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() == 0 {
		slog.Debug("No modules provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	modulesPath := *modulesPathFlag
	if *mFlag != "" {
		modulesPath = *mFlag
	}

	cfg, err := config.New(config.Config{
		ModulesPath:     modulesPath,
		Targets:         flagSet.Args(),
		LogLevel:        *logLevelFlag,
		LogFormat:       *logFormatFlag,
		Output:          *outputFlag,
		HealthcheckPort: *healthPortFlag,
		AllowRemote:     *allowRemoteFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return cfg, false, nil
}
