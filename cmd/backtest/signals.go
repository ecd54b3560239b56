package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"smabacktest/internal/backtest"
	"smabacktest/internal/config"
	"smabacktest/internal/md"
	"smabacktest/internal/strategy"
)

type signalsCmd struct {
	cfg config.Config
	all bool
}

func (*signalsCmd) Name() string     { return "signals" }
func (*signalsCmd) Synopsis() string { return "print the golden and death crosses of a price series" }
func (*signalsCmd) Usage() string {
	return `backtest signals [-all] [flags]

  Prints one JSON line per crossover. With -all every dated signal is printed.
`
}

func (c *signalsCmd) SetFlags(f *flag.FlagSet) {
	c.cfg.SetFlags(f)
	f.BoolVar(&c.all, "all", false, "print every date, not just crossovers")
}

func (c *signalsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.cfg.Finalize(); err != nil {
		return usageError(err)
	}
	series, err := backtest.Load(ctx, newProvider(c.cfg), c.cfg.Symbol, c.cfg.Start, c.cfg.End)
	if err != nil {
		return fail(err)
	}
	strat, err := strategy.NewSMACross(c.cfg.ShortWindow, c.cfg.LongWindow)
	if err != nil {
		return usageError(err)
	}
	points, err := strat.Generate(series)
	if err != nil {
		return fail(err)
	}
	if !c.all {
		points = strategy.Crossovers(points)
	}

	enc := json.NewEncoder(os.Stdout)
	for _, p := range points {
		if err := enc.Encode(p); err != nil {
			return fail(err)
		}
	}
	if !c.all {
		fmt.Fprintf(os.Stderr, "%d crossovers between %s and %s\n", len(points),
			series[0].Date.Format(md.DateLayout), series[len(series)-1].Date.Format(md.DateLayout))
	}
	return subcommands.ExitSuccess
}
