// Package performance computes return, risk and drawdown statistics from a
// portfolio state series.
package performance

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"smabacktest/internal/config"
	"smabacktest/internal/md"
	"smabacktest/internal/state"
)

// TradingDaysPerYear annualizes the Sharpe ratio of daily returns.
const TradingDaysPerYear = 252

// ErrDegenerateSeries matches every DegenerateSeriesError via errors.Is.
var ErrDegenerateSeries = errors.New("degenerate series")

// DegenerateSeriesError marks a metric that is undefined for the given series.
type DegenerateSeriesError struct {
	Metric string
	Reason string
	Count  int
}

func (e *DegenerateSeriesError) Error() string {
	return fmt.Sprintf("%s undefined: %s (n=%d)", e.Metric, e.Reason, e.Count)
}

func (e *DegenerateSeriesError) Is(target error) bool {
	return target == ErrDegenerateSeries
}

// Metric is a value that may be undefined. When Err is set Value is meaningless.
type Metric struct {
	Value float64
	Err   error
}

func (m Metric) Defined() bool {
	return m.Err == nil
}

func metricOf(value float64, err error) Metric {
	if err != nil {
		return Metric{Err: err}
	}
	return Metric{Value: value}
}

type Return struct {
	Date  time.Time
	Value float64
}

type DrawdownPoint struct {
	Date       time.Time
	Total      float64
	RunningMax float64
	Drawdown   float64
}

type Summary struct {
	InitialCapital float64
	FinalValue     float64
	TotalReturn    float64
	CAGR           Metric
	Sharpe         Metric
	MaxDrawdown    float64
	ElapsedDays    int
	DailyReturns   []Return
	Drawdown       []DrawdownPoint
}

// EquityPoint is one date of an equity curve.
type EquityPoint struct {
	Date  time.Time
	Value float64
}

// Analyze derives every statistic from states. CAGR and Sharpe are reported as
// undefined metrics, not errors, when the series cannot support them.
func Analyze(states []state.PortfolioState, capital decimal.Decimal) (*Summary, error) {
	return analyze(Equity(states), capital)
}

func analyze(curve []EquityPoint, capital decimal.Decimal) (*Summary, error) {
	total, err := totalReturn(curve, capital)
	if err != nil {
		return nil, err
	}
	returns := dailyReturns(curve)
	drawdown := drawdowns(curve)

	return &Summary{
		InitialCapital: capital.InexactFloat64(),
		FinalValue:     curve[len(curve)-1].Value,
		TotalReturn:    total,
		CAGR:           metricOf(cagr(curve, capital)),
		Sharpe:         metricOf(Sharpe(returns)),
		MaxDrawdown:    MaxDrawdown(drawdown),
		ElapsedDays:    elapsedDays(curve),
		DailyReturns:   returns,
		Drawdown:       drawdown,
	}, nil
}

// Equity converts portfolio totals to a float equity curve.
func Equity(states []state.PortfolioState) []EquityPoint {
	curve := make([]EquityPoint, len(states))
	for i, st := range states {
		curve[i] = EquityPoint{Date: st.Date, Value: st.Total.InexactFloat64()}
	}
	return curve
}

// BuyAndHold is the equity of spending capital on the asset at the first
// price and holding it, fractional shares allowed.
func BuyAndHold(series md.Series, capital decimal.Decimal) []EquityPoint {
	if len(series) == 0 {
		return nil
	}
	c := capital.InexactFloat64()
	first := series[0].Price
	curve := make([]EquityPoint, len(series))
	for i, p := range series {
		curve[i] = EquityPoint{Date: p.Date, Value: c * p.Price / first}
	}
	return curve
}

// AnalyzeCurve summarizes an arbitrary equity curve, such as BuyAndHold.
func AnalyzeCurve(curve []EquityPoint, capital decimal.Decimal) (*Summary, error) {
	return analyze(curve, capital)
}

func TotalReturn(states []state.PortfolioState, capital decimal.Decimal) (float64, error) {
	return totalReturn(Equity(states), capital)
}

func totalReturn(curve []EquityPoint, capital decimal.Decimal) (float64, error) {
	if len(curve) == 0 {
		return 0, md.ErrEmptySeries
	}
	if !capital.IsPositive() {
		return 0, &config.ValidationError{Field: "capital", Value: capital.String(), Reason: "must be > 0"}
	}
	return curve[len(curve)-1].Value/capital.InexactFloat64() - 1, nil
}

// CAGR is (final/capital)^(365/days) - 1 over the calendar days between the
// first and last state.
func CAGR(states []state.PortfolioState, capital decimal.Decimal) (float64, error) {
	return cagr(Equity(states), capital)
}

func cagr(curve []EquityPoint, capital decimal.Decimal) (float64, error) {
	total, err := totalReturn(curve, capital)
	if err != nil {
		return 0, err
	}
	days := elapsedDays(curve)
	if days <= 0 {
		return 0, &DegenerateSeriesError{Metric: "cagr", Reason: "no calendar time elapsed", Count: len(curve)}
	}
	return math.Pow(1+total, 365.0/float64(days)) - 1, nil
}

func elapsedDays(curve []EquityPoint) int {
	if len(curve) < 2 {
		return 0
	}
	first := md.Day(curve[0].Date)
	last := md.Day(curve[len(curve)-1].Date)
	return int(math.Round(last.Sub(first).Hours() / 24))
}

// DailyReturns is the percent change of total value from one state to the
// next; the first state has no return.
func DailyReturns(states []state.PortfolioState) []Return {
	return dailyReturns(Equity(states))
}

func dailyReturns(curve []EquityPoint) []Return {
	if len(curve) < 2 {
		return nil
	}
	returns := make([]Return, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		returns = append(returns, Return{
			Date:  curve[i].Date,
			Value: curve[i].Value/curve[i-1].Value - 1,
		})
	}
	return returns
}

// Sharpe annualizes mean over sample standard deviation (n-1) of daily
// returns with a zero risk-free rate.
func Sharpe(returns []Return) (float64, error) {
	n := len(returns)
	if n < 2 {
		return 0, &DegenerateSeriesError{Metric: "sharpe", Reason: "need at least two daily returns", Count: n}
	}
	values := make([]float64, n)
	for i, r := range returns {
		values[i] = r.Value
	}
	avg := mean(values)
	sd := stddev(values, avg)
	if sd == 0 {
		return 0, &DegenerateSeriesError{Metric: "sharpe", Reason: "daily returns have zero variance", Count: n}
	}
	return math.Sqrt(TradingDaysPerYear) * avg / sd, nil
}

func Drawdowns(states []state.PortfolioState) []DrawdownPoint {
	return drawdowns(Equity(states))
}

func drawdowns(curve []EquityPoint) []DrawdownPoint {
	points := make([]DrawdownPoint, len(curve))
	peak := math.Inf(-1)
	for i, p := range curve {
		if p.Value > peak {
			peak = p.Value
		}
		dd := 0.0
		if peak > 0 {
			dd = p.Value/peak - 1
		}
		points[i] = DrawdownPoint{Date: p.Date, Total: p.Value, RunningMax: peak, Drawdown: dd}
	}
	return points
}

// MaxDrawdown is the most negative drawdown, 0 for a series that never falls.
func MaxDrawdown(points []DrawdownPoint) float64 {
	worst := 0.0
	for _, p := range points {
		if p.Drawdown < worst {
			worst = p.Drawdown
		}
	}
	return worst
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64, avg float64) float64 {
	sumSq := 0.0
	for _, v := range values {
		diff := v - avg
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}
