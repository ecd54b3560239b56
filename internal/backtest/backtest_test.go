package backtest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smabacktest/internal/config"
	"smabacktest/internal/md"
	"smabacktest/internal/performance"
	"smabacktest/internal/strategy"
)

func makeSeries(prices ...float64) md.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make(md.Series, len(prices))
	for i, p := range prices {
		series[i] = md.PricePoint{Date: start.AddDate(0, 0, i), Price: p}
	}
	return series
}

type stubProvider struct {
	series md.Series
	err    error
}

func (s stubProvider) Bars(_ context.Context, _ string, _, _ time.Time) (md.Series, error) {
	return s.series, s.err
}

func params(short, long int, capital int64) Params {
	return Params{ShortWindow: short, LongWindow: long, InitialCapital: decimal.NewFromInt(capital)}
}

func TestRun_GoldenThenDeathCross(t *testing.T) {
	outcome, err := Run(makeSeries(100, 150, 90), params(1, 2, 1000), nil)
	require.NoError(t, err)

	require.Len(t, outcome.Signals, 3)
	require.Len(t, outcome.Result.States, 3)
	require.Len(t, outcome.Result.Trades, 2)
	assert.True(t, outcome.Result.Final().Total.Equal(decimal.NewFromInt(640)))
	assert.InDelta(t, -0.36, outcome.Summary.TotalReturn, 1e-12)
	assert.InDelta(t, -0.1, outcome.BenchmarkSummary.TotalReturn, 1e-12)
}

func TestRun_RisingSeries(t *testing.T) {
	prices := make([]float64, 300)
	for i := range prices {
		prices[i] = 100 + 100*float64(i)/299
	}
	outcome, err := Run(makeSeries(prices...), params(5, 20, 10000), nil)
	require.NoError(t, err)

	crosses := strategy.Crossovers(outcome.Signals)
	require.Len(t, crosses, 1)
	require.Len(t, outcome.Result.Trades, 1)
	assert.Equal(t, strategy.Buy, outcome.Result.Trades[0].Side)
	assert.Greater(t, outcome.Summary.FinalValue, 10000.0)
	assert.True(t, outcome.Summary.Sharpe.Defined())
	assert.True(t, outcome.Summary.CAGR.Defined())
}

func TestRun_ConstantSeries(t *testing.T) {
	prices := make([]float64, 120)
	for i := range prices {
		prices[i] = 50
	}
	outcome, err := Run(makeSeries(prices...), params(5, 20, 10000), nil)
	require.NoError(t, err)

	assert.Empty(t, outcome.Result.Trades)
	assert.Equal(t, 0.0, outcome.Summary.MaxDrawdown)
	assert.Equal(t, 0.0, outcome.Summary.TotalReturn)
	assert.False(t, outcome.Summary.Sharpe.Defined())
}

func TestRun_SinglePrice(t *testing.T) {
	outcome, err := Run(makeSeries(100), params(5, 20, 10000), nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, outcome.Summary.TotalReturn)
	assert.True(t, errors.Is(outcome.Summary.CAGR.Err, performance.ErrDegenerateSeries))
}

func TestRun_RejectsEqualWindows(t *testing.T) {
	_, err := Run(makeSeries(1, 2, 3), params(20, 20, 10000), nil)
	var verr *config.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRun_RejectsZeroCapital(t *testing.T) {
	_, err := Run(makeSeries(1, 2, 3), params(1, 2, 0), nil)
	var verr *config.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "capital", verr.Field)
}

func TestRun_RejectsEmptySeries(t *testing.T) {
	_, err := Run(nil, params(1, 2, 100), nil)
	assert.True(t, errors.Is(err, md.ErrEmptySeries))
}

func TestLoad_ValidatesSeries(t *testing.T) {
	provider := stubProvider{series: md.Series{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Price: 10},
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Price: 11},
	}}
	_, err := Load(context.Background(), provider, "SPY", time.Time{}, time.Time{})
	var serr *md.SeriesError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 1, serr.Index)
}

func TestLoad_EmptyProviderResult(t *testing.T) {
	_, err := Load(context.Background(), stubProvider{}, "SPY", time.Time{}, time.Time{})
	assert.True(t, errors.Is(err, md.ErrEmptySeries))
}

func TestLoad_FromCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	require.NoError(t, writeCSV(path, makeSeries(10, 11, 12)))

	series, err := Load(context.Background(), md.CSVProvider{Path: path}, "SPY", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, series, 3)
}
