package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/google/uuid"

	"smabacktest/internal/config"
	"smabacktest/internal/md"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&runCmd{}, "backtest")
	commander.Register(&signalsCmd{}, "backtest")
	commander.Register(&fetchCmd{}, "data")

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(int(commander.Execute(ctx)))
}

func newProvider(cfg config.Config) md.Provider {
	if cfg.Source == config.SourceCSV {
		return md.CSVProvider{Path: cfg.CSVPath}
	}
	return md.NewAlpacaProvider(cfg.APIKey, cfg.APISecret, cfg.Feed)
}

func generateRunID() string {
	return time.Now().UTC().Format("20060102T150405") + "-" + uuid.NewString()[:8]
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

func usageError(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitUsageError
}
