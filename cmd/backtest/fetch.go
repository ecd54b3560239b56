package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/subcommands"

	"smabacktest/internal/backtest"
	"smabacktest/internal/config"
	"smabacktest/internal/md"
)

type fetchCmd struct {
	cfg config.Config
	out string
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "download daily closes into a CSV file" }
func (*fetchCmd) Usage() string {
	return `backtest fetch [-out prices.csv] [-symbol SPY] [-start YYYY-MM-DD] [-end YYYY-MM-DD]

  Downloads adjusted daily closes and writes them as date,close rows, ready
  for "backtest run -source csv -csv prices.csv".
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	c.cfg.SetFlags(f)
	f.StringVar(&c.out, "out", "", "output file, stdout when empty")
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.cfg.Finalize(); err != nil {
		return usageError(err)
	}
	series, err := backtest.Load(ctx, newProvider(c.cfg), c.cfg.Symbol, c.cfg.Start, c.cfg.End)
	if err != nil {
		return fail(err)
	}

	var w io.Writer = os.Stdout
	if c.out != "" {
		file, err := os.Create(c.out)
		if err != nil {
			return fail(err)
		}
		defer file.Close()
		w = file
	}
	if err := md.WriteCSV(w, series); err != nil {
		return fail(fmt.Errorf("write csv: %w", err))
	}
	if c.out != "" {
		log.Printf("wrote %d prices to %s", len(series), c.out)
	}
	return subcommands.ExitSuccess
}
