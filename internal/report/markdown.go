package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"smabacktest/internal/backtest"
	"smabacktest/internal/md"
	"smabacktest/internal/performance"
)

type Report struct {
	Symbol      string
	GeneratedAt time.Time
	Outcome     *backtest.Outcome
}

func usd(v float64) string {
	return money.NewFromFloat(v, money.USD).Display()
}

func usdDecimal(d decimal.Decimal) string {
	return usd(d.InexactFloat64())
}

func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func metric(m performance.Metric, format func(float64) string) string {
	if !m.Defined() {
		return "undefined"
	}
	return format(m.Value)
}

func ratio(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// Markdown renders the report as a Markdown document.
func Markdown(r Report) string {
	o := r.Outcome
	var sb strings.Builder

	first := o.Series[0].Date.Format(md.DateLayout)
	last := o.Series[len(o.Series)-1].Date.Format(md.DateLayout)

	sb.WriteString(fmt.Sprintf("# %s SMA Crossover Backtest\n\n", r.Symbol))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Windows: %d/%d days | Capital: %s | Period: %s to %s (%d prices)\n\n",
		o.Params.ShortWindow, o.Params.LongWindow, usdDecimal(o.Params.InitialCapital), first, last, len(o.Series)))

	s, b := o.Summary, o.BenchmarkSummary
	sb.WriteString("## Performance\n\n")
	sb.WriteString("| Metric | Strategy | Buy & Hold |\n")
	sb.WriteString("|--------|----------|------------|\n")
	sb.WriteString(fmt.Sprintf("| Final Value | %s | %s |\n", usd(s.FinalValue), usd(b.FinalValue)))
	sb.WriteString(fmt.Sprintf("| Total Return | %s | %s |\n", pct(s.TotalReturn), pct(b.TotalReturn)))
	sb.WriteString(fmt.Sprintf("| CAGR | %s | %s |\n", metric(s.CAGR, pct), metric(b.CAGR, pct)))
	sb.WriteString(fmt.Sprintf("| Sharpe Ratio | %s | %s |\n", metric(s.Sharpe, ratio), metric(b.Sharpe, ratio)))
	sb.WriteString(fmt.Sprintf("| Max Drawdown | %s | %s |\n", pct(s.MaxDrawdown), pct(b.MaxDrawdown)))
	sb.WriteString("\n")

	var notes []string
	for _, m := range []performance.Metric{s.CAGR, s.Sharpe} {
		if !m.Defined() {
			notes = append(notes, m.Err.Error())
		}
	}
	if len(notes) > 0 {
		sb.WriteString("Undefined metrics:\n\n")
		for _, n := range notes {
			sb.WriteString(fmt.Sprintf("- %s\n", n))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Trades\n\n")
	if len(o.Result.Trades) > 0 {
		sb.WriteString("| Date | Side | Shares | Price | Cash | Holdings |\n")
		sb.WriteString("|------|------|--------|-------|------|----------|\n")
		for _, t := range o.Result.Trades {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %s | %s |\n",
				t.Date.Format(md.DateLayout), t.Side, t.Shares,
				usdDecimal(t.Price), usdDecimal(t.Cash), usdDecimal(t.Holdings)))
		}
	} else {
		sb.WriteString("No trades executed.\n")
	}
	sb.WriteString("\n")

	if len(o.Result.Skipped) > 0 {
		sb.WriteString("## Skipped Signals\n\n")
		sb.WriteString("| Date | Side | Price | Cash | Reason |\n")
		sb.WriteString("|------|------|-------|------|--------|\n")
		for _, sk := range o.Result.Skipped {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
				sk.Date.Format(md.DateLayout), sk.Side, usdDecimal(sk.Price), usdDecimal(sk.Cash), sk.Reason))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
