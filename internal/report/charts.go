package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/vicanso/go-charts/v2"

	"smabacktest/internal/backtest"
	"smabacktest/internal/md"
	"smabacktest/internal/strategy"
)

const maxChartPoints = 500

// sampleIndexes picks at most maxChartPoints evenly spaced indexes, always
// keeping the last one and every index in keep.
func sampleIndexes(n int, keep ...int) []int {
	step := 1
	if n > maxChartPoints {
		step = (n + maxChartPoints - 1) / maxChartPoints
	}
	selected := make(map[int]bool, n/step+len(keep)+1)
	for i := 0; i < n; i += step {
		selected[i] = true
	}
	if n > 0 {
		selected[n-1] = true
	}
	for _, k := range keep {
		if k >= 0 && k < n {
			selected[k] = true
		}
	}
	idx := make([]int, 0, len(selected))
	for i := range selected {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

func render(title string, labels []string, legend []string, values [][]float64) ([]byte, error) {
	split := 8
	if len(labels) < split {
		split = len(labels)
	}
	p, err := charts.LineRender(
		values,
		charts.TitleTextOptionFunc(title),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			SplitNumber: split,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.LegendOptionFunc(charts.LegendOption{Data: legend}),
		charts.WidthOptionFunc(1200),
		charts.HeightOptionFunc(600),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}

// EquityChart plots the strategy equity curve against buy and hold.
func EquityChart(symbol string, o *backtest.Outcome) ([]byte, error) {
	idx := sampleIndexes(len(o.Result.States))
	labels := make([]string, len(idx))
	strategy := make([]float64, len(idx))
	hold := make([]float64, len(idx))
	for i, j := range idx {
		labels[i] = o.Result.States[j].Date.Format(md.DateLayout)
		strategy[i] = o.Result.States[j].Total.InexactFloat64()
		hold[i] = o.Benchmark[j].Value
	}
	return render(symbol+" Strategy vs. Buy and Hold", labels,
		[]string{"Strategy Equity Curve", "Buy and Hold " + symbol}, [][]float64{strategy, hold})
}

type priceSeries struct {
	labels []string
	price  []float64
	short  []float64
	long   []float64
	buys   []float64
	sells  []float64
}

// pricePlot samples the signal series, keeping every crossover date. Buy and
// sell markers sit on the short SMA and are null away from a crossover.
func pricePlot(o *backtest.Outcome) priceSeries {
	var crosses []int
	for i, p := range o.Signals {
		if p.Signal != strategy.NoCross {
			crosses = append(crosses, i)
		}
	}
	idx := sampleIndexes(len(o.Signals), crosses...)
	ps := priceSeries{
		labels: make([]string, len(idx)),
		price:  make([]float64, len(idx)),
		short:  make([]float64, len(idx)),
		long:   make([]float64, len(idx)),
		buys:   make([]float64, len(idx)),
		sells:  make([]float64, len(idx)),
	}
	for i, j := range idx {
		p := o.Signals[j]
		ps.labels[i] = p.Date.Format(md.DateLayout)
		ps.price[i] = p.Price
		ps.short[i] = p.ShortMA
		ps.long[i] = p.LongMA
		ps.buys[i] = charts.GetNullValue()
		ps.sells[i] = charts.GetNullValue()
		switch p.Signal {
		case strategy.GoldenCross:
			ps.buys[i] = p.ShortMA
		case strategy.DeathCross:
			ps.sells[i] = p.ShortMA
		}
	}
	return ps
}

// PriceChart plots the closing price, both moving averages and the buy and
// sell signals.
func PriceChart(symbol string, o *backtest.Outcome) ([]byte, error) {
	ps := pricePlot(o)
	legend := []string{
		"Price",
		fmt.Sprintf("%d-Day SMA", o.Params.ShortWindow),
		fmt.Sprintf("%d-Day SMA", o.Params.LongWindow),
		"Buy Signal",
		"Sell Signal",
	}
	return render(symbol+" Price with SMA Crossover", ps.labels, legend,
		[][]float64{ps.price, ps.short, ps.long, ps.buys, ps.sells})
}

// DrawdownChart plots the strategy drawdown in percent.
func DrawdownChart(symbol string, o *backtest.Outcome) ([]byte, error) {
	points := o.Summary.Drawdown
	idx := sampleIndexes(len(points))
	labels := make([]string, len(idx))
	dd := make([]float64, len(idx))
	for i, j := range idx {
		labels[i] = points[j].Date.Format(md.DateLayout)
		dd[i] = points[j].Drawdown * 100
	}
	return render(symbol+" Strategy Drawdown (%)", labels, []string{"Drawdown"}, [][]float64{dd})
}

// WriteCharts renders every chart into dir as PNG files and returns their paths.
func WriteCharts(dir, symbol string, o *backtest.Outcome) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	renders := []struct {
		name   string
		render func(string, *backtest.Outcome) ([]byte, error)
	}{
		{"equity.png", EquityChart},
		{"price.png", PriceChart},
		{"drawdown.png", DrawdownChart},
	}
	paths := make([]string, 0, len(renders))
	for _, c := range renders {
		img, err := c.render(symbol, o)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.name, err)
		}
		path := filepath.Join(dir, c.name)
		if err := os.WriteFile(path, img, 0o644); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
