package engine

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"smabacktest/internal/config"
	"smabacktest/internal/md"
	"smabacktest/internal/risk"
	"smabacktest/internal/state"
	"smabacktest/internal/strategy"
)

type Trade struct {
	Date     time.Time
	Side     strategy.Action
	Shares   int64
	Price    decimal.Decimal
	Cash     decimal.Decimal
	Holdings decimal.Decimal
	Reason   string
}

// SkippedTrade is a buy signal that fired while flat but could not pay for a single share.
type SkippedTrade struct {
	Date   time.Time
	Side   strategy.Action
	Price  decimal.Decimal
	Cash   decimal.Decimal
	Reason string
}

type Result struct {
	States  []state.PortfolioState
	Trades  []Trade
	Skipped []SkippedTrade
}

// Final returns the last portfolio state.
func (r *Result) Final() state.PortfolioState {
	return r.States[len(r.States)-1]
}

// Engine replays a signal series through a single long-only account.
type Engine struct {
	strategy strategy.Strategy
	gate     risk.Gate
	journal  *Journal
}

// New builds an Engine. journal may be nil.
func New(strategy strategy.Strategy, gate risk.Gate, journal *Journal) *Engine {
	return &Engine{
		strategy: strategy,
		gate:     gate,
		journal:  journal,
	}
}

// Run folds signals into one portfolio state per date. The state of day i
// depends only on the state of day i-1 and the signal and price of day i.
func (e *Engine) Run(signals []strategy.SignalPoint, capital decimal.Decimal) (*Result, error) {
	if len(signals) == 0 {
		return nil, md.ErrEmptySeries
	}
	if !capital.IsPositive() {
		return nil, &config.ValidationError{Field: "capital", Value: capital.String(), Reason: "must be > 0"}
	}

	account := state.NewAccount(capital)
	result := &Result{States: make([]state.PortfolioState, 0, len(signals))}

	for _, point := range signals {
		price := decimal.NewFromFloat(point.Price)
		intent := e.strategy.Decide(strategy.MarketSnapshot{
			Date:        point.Date,
			Close:       point.Price,
			ShortMA:     point.ShortMA,
			LongMA:      point.LongMA,
			Signal:      point.Signal,
			PositionQty: account.Shares,
		})

		approved, err := e.gate.Evaluate(intent, risk.RiskContext{
			Date:        point.Date,
			Price:       price,
			Cash:        account.Cash,
			PositionQty: account.Shares,
		})
		switch {
		case errors.Is(err, risk.ErrInsufficientCash):
			skipped := SkippedTrade{
				Date:   point.Date,
				Side:   intent.Action,
				Price:  price,
				Cash:   account.Cash,
				Reason: err.Error(),
			}
			result.Skipped = append(result.Skipped, skipped)
			if err := e.journal.AppendSkipped(skipped); err != nil {
				return nil, err
			}
			log.Printf("%s: SKIP %s at $%s, cash $%s", point.Date.Format(md.DateLayout), intent.Action, price.StringFixed(2), account.Cash.StringFixed(2))
		case errors.Is(err, risk.ErrAlreadyLong), errors.Is(err, risk.ErrNoPosition):
			// the signal contradicts the current position: no trade
		case err != nil:
			return nil, fmt.Errorf("evaluate %s on %s: %w", intent.Action, point.Date.Format(md.DateLayout), err)
		case approved.Intent.Action == strategy.Buy:
			account, err = account.Buy(approved.Intent.Qty, price)
			if err != nil {
				return nil, fmt.Errorf("buy on %s: %w", point.Date.Format(md.DateLayout), err)
			}
		case approved.Intent.Action == strategy.Sell:
			account = account.Sell(price)
		}

		current := account.Mark(point.Date, price)
		result.States = append(result.States, current)

		if err == nil && approved.Intent.Action != strategy.Hold {
			trade := Trade{
				Date:     point.Date,
				Side:     approved.Intent.Action,
				Shares:   approved.Intent.Qty,
				Price:    price,
				Cash:     current.Cash,
				Holdings: current.Holdings,
				Reason:   approved.Intent.Reason,
			}
			result.Trades = append(result.Trades, trade)
			if err := e.journal.AppendTrade(trade); err != nil {
				return nil, err
			}
			log.Printf("%s: %s %d shares at $%s", point.Date.Format(md.DateLayout), trade.Side, trade.Shares, price.StringFixed(2))
		}
	}

	return result, nil
}
