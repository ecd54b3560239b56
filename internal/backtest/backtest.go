// Package backtest wires signal generation, simulation, reconciliation and
// performance analysis into one run over a price series.
package backtest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"smabacktest/internal/config"
	"smabacktest/internal/engine"
	"smabacktest/internal/md"
	"smabacktest/internal/performance"
	"smabacktest/internal/risk"
	"smabacktest/internal/strategy"
)

// Params configures one run.
type Params struct {
	ShortWindow    int
	LongWindow     int
	InitialCapital decimal.Decimal
}

// ParamsFromConfig converts the command line configuration.
func ParamsFromConfig(cfg config.Config) Params {
	return Params{
		ShortWindow:    cfg.ShortWindow,
		LongWindow:     cfg.LongWindow,
		InitialCapital: decimal.NewFromFloat(cfg.InitialCapital),
	}
}

func (p Params) Validate() error {
	if err := config.ValidateWindows(p.ShortWindow, p.LongWindow); err != nil {
		return err
	}
	if !p.InitialCapital.IsPositive() {
		return &config.ValidationError{Field: "capital", Value: p.InitialCapital.String(), Reason: "must be > 0"}
	}
	return nil
}

// Outcome holds every series a presentation layer needs.
type Outcome struct {
	Params           Params
	Series           md.Series
	Signals          []strategy.SignalPoint
	Result           *engine.Result
	Summary          *performance.Summary
	Benchmark        []performance.EquityPoint
	BenchmarkSummary *performance.Summary
}

// Load fetches and validates a price series.
func Load(ctx context.Context, provider md.Provider, symbol string, start, end time.Time) (md.Series, error) {
	series, err := provider.Bars(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	if err := md.Validate(series); err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}
	log.Printf("loaded %d prices for %s from %s to %s", len(series), symbol,
		series[0].Date.Format(md.DateLayout), series[len(series)-1].Date.Format(md.DateLayout))
	return series, nil
}

// Run executes the full pipeline. journal may be nil.
func Run(series md.Series, params Params, journal *engine.Journal) (*Outcome, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	strat, err := strategy.NewSMACross(params.ShortWindow, params.LongWindow)
	if err != nil {
		return nil, err
	}

	signals, err := strat.Generate(series)
	if err != nil {
		return nil, err
	}

	result, err := engine.New(strat, risk.Gate{}, journal).Run(signals, params.InitialCapital)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	if err := engine.Reconcile(result, params.InitialCapital); err != nil {
		return nil, err
	}

	summary, err := performance.Analyze(result.States, params.InitialCapital)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	benchmark := performance.BuyAndHold(series, params.InitialCapital)
	benchmarkSummary, err := performance.AnalyzeCurve(benchmark, params.InitialCapital)
	if err != nil {
		return nil, fmt.Errorf("analyze benchmark: %w", err)
	}

	log.Printf("backtest complete: %d days, %d trades, %d skipped, final value %s",
		len(result.States), len(result.Trades), len(result.Skipped), result.Final().Total.StringFixed(2))

	return &Outcome{
		Params:           params,
		Series:           series,
		Signals:          signals,
		Result:           result,
		Summary:          summary,
		Benchmark:        benchmark,
		BenchmarkSummary: benchmarkSummary,
	}, nil
}
