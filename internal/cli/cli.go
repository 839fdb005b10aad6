// Package cli implements the nepse-report command line tool.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/subcommands"

	"nepsereport/internal/config"
	"nepsereport/internal/history"
	"nepsereport/internal/logging"
	"nepsereport/internal/service"
)

// Version is stamped at build time with -ldflags "-X nepsereport/internal/cli.Version=...".
var Version = "dev"

// env is what every command receives from Run.
type env struct {
	stdout     io.Writer
	stderr     io.Writer
	configPath string
	envFile    string
}

// Run parses args and executes the chosen command, returning the process
// exit code.
func Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	e := &env{stdout: stdout, stderr: stderr}
	fs.StringVar(&e.configPath, "config", "", "Path to a YAML or JSON config file")
	fs.StringVar(&e.envFile, "env-file", ".env", "Path to a .env file")

	commander := subcommands.NewCommander(fs, name)
	commander.Output = stdout
	commander.Error = stderr
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	Register(commander)

	if err := fs.Parse(args); err != nil {
		return int(subcommands.ExitUsageError)
	}
	return int(commander.Execute(ctx, e))
}

// Register adds the report commands to c.
func Register(c *subcommands.Commander) {
	c.Register(&reportCmd{}, "reports")
	c.Register(&reportCmd{name: "sectors"}, "reports")
	c.Register(&reportCmd{name: "realized"}, "reports")
	c.Register(&historyCmd{}, "reports")
	c.Register(&templateCmd{}, "inputs")
	c.Register(&configCmd{}, "setup")
	c.Register(&versionCmd{}, "")
}

func envOf(args []interface{}) *env {
	if len(args) > 0 {
		if e, ok := args[0].(*env); ok {
			return e
		}
	}
	return &env{stdout: io.Discard, stderr: io.Discard}
}

func (e *env) loadConfig() (config.Config, error) {
	return config.Load(config.LoadOptions{Path: e.configPath, EnvFile: e.envFile})
}

// openService loads the configuration and builds a service logging to
// stderr and the daily log file.
func (e *env) openService() (*service.Service, func(), error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	level := logging.ParseLevel(cfg.LogLevel, slog.LevelWarn)
	logger, writer, err := logging.NewLogger(cfg.LogDir, level, e.stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}
	var store *history.Store
	if cfg.HistoryDB != "" {
		if store, err = history.Open(cfg.HistoryDB, logger); err != nil {
			logger.Warn("report history disabled", "path", cfg.HistoryDB, "err", err)
			store = nil
		}
	}
	closeFn := func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close history", "err", err)
		}
		if err := writer.Close(); err != nil {
			logger.Error("failed to close log writer", "err", err)
		}
	}
	return service.New(service.Options{Config: cfg, Logger: logger, History: store}), closeFn, nil
}

func (e *env) fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(e.stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}
