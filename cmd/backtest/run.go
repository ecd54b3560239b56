package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/subcommands"

	"smabacktest/internal/backtest"
	"smabacktest/internal/config"
	"smabacktest/internal/engine"
	"smabacktest/internal/report"
)

type runCmd struct {
	cfg   config.Config
	style string
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "backtest the SMA crossover strategy and print a report" }
func (*runCmd) Usage() string {
	return `backtest run [-symbol SPY] [-start YYYY-MM-DD] [-end YYYY-MM-DD] [-short-window 50] [-long-window 200] [-capital 100000]

  Simulates a long-only SMA crossover strategy over daily closes and prints
  total return, CAGR, Sharpe ratio and maximum drawdown next to buy and hold.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	c.cfg.SetFlags(f)
	f.StringVar(&c.style, "style", "dark", "terminal style: dark, light, notty")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.cfg.Finalize(); err != nil {
		return usageError(err)
	}
	params := backtest.ParamsFromConfig(c.cfg)

	series, err := backtest.Load(ctx, newProvider(c.cfg), c.cfg.Symbol, c.cfg.Start, c.cfg.End)
	if err != nil {
		return fail(err)
	}

	var journal *engine.Journal
	if c.cfg.TradesPath != "" {
		journal, err = engine.NewJournal(c.cfg.TradesPath, generateRunID())
		if err != nil {
			return fail(fmt.Errorf("trade journal: %w", err))
		}
		defer func() {
			if err := journal.Close(); err != nil {
				log.Printf("failed to close trade journal: %v", err)
			}
		}()
		log.Printf("journaling trades to %s run_id=%s", c.cfg.TradesPath, journal.RunID())
	}

	outcome, err := backtest.Run(series, params, journal)
	if err != nil {
		return fail(err)
	}

	markdown := report.Markdown(report.Report{
		Symbol:      c.cfg.Symbol,
		GeneratedAt: time.Now().UTC(),
		Outcome:     outcome,
	})
	if c.cfg.ReportPath != "" {
		if err := os.WriteFile(c.cfg.ReportPath, []byte(markdown), 0o644); err != nil {
			return fail(fmt.Errorf("write report: %w", err))
		}
		log.Printf("report written to %s", c.cfg.ReportPath)
	}
	if c.cfg.ChartDir != "" {
		paths, err := report.WriteCharts(c.cfg.ChartDir, c.cfg.Symbol, outcome)
		if err != nil {
			return fail(fmt.Errorf("write charts: %w", err))
		}
		log.Printf("charts written: %v", paths)
	}

	out, err := report.Terminal(markdown, c.style)
	if err != nil {
		log.Printf("terminal rendering failed, printing raw markdown: %v", err)
		out = markdown
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}
