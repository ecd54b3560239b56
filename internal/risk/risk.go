package risk

import (
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"smabacktest/internal/md"
	"smabacktest/internal/strategy"
)

var (
	ErrInsufficientCash = errors.New("insufficient_cash")
	ErrAlreadyLong      = errors.New("already_long")
	ErrNoPosition       = errors.New("no_position_to_sell")
	ErrInvalidPrice     = errors.New("invalid_price")
)

type RiskContext struct {
	Date        time.Time
	Price       decimal.Decimal
	Cash        decimal.Decimal
	PositionQty int64
}

type ApprovedIntent struct {
	Intent strategy.TradeIntent
	Reason string
}

// Gate sizes orders for an all-in, all-out long-only account: a buy commits
// every whole share the cash can pay for, a sell liquidates the position.
type Gate struct{}

func (g Gate) Evaluate(intent strategy.TradeIntent, ctx RiskContext) (ApprovedIntent, error) {
	if intent.Action == strategy.Hold {
		return ApprovedIntent{Intent: intent, Reason: "hold"}, nil
	}

	day := ctx.Date.Format(md.DateLayout)
	if !ctx.Price.IsPositive() {
		slog.Info("risk rejected", "date", day, "reason", ErrInvalidPrice, "price", ctx.Price)
		return ApprovedIntent{}, ErrInvalidPrice
	}

	switch intent.Action {
	case strategy.Buy:
		if ctx.PositionQty > 0 {
			slog.Info("risk rejected", "date", day, "reason", ErrAlreadyLong, "position", ctx.PositionQty)
			return ApprovedIntent{}, ErrAlreadyLong
		}
		qty := MaxShares(ctx.Cash, ctx.Price)
		if qty == 0 {
			slog.Info("risk rejected", "date", day, "reason", ErrInsufficientCash, "cash", ctx.Cash, "price", ctx.Price)
			return ApprovedIntent{}, ErrInsufficientCash
		}
		intent.Qty = qty
	case strategy.Sell:
		if ctx.PositionQty <= 0 {
			slog.Info("risk rejected", "date", day, "reason", ErrNoPosition)
			return ApprovedIntent{}, ErrNoPosition
		}
		intent.Qty = ctx.PositionQty
	}

	slog.Info("risk approved", "date", day, "intent", intent.Action, "qty", intent.Qty, "price", ctx.Price, "reason", intent.Reason)
	return ApprovedIntent{Intent: intent, Reason: "approved"}, nil
}

// MaxShares is floor(cash / price), exact for decimal inputs.
func MaxShares(cash, price decimal.Decimal) int64 {
	if !cash.IsPositive() || !price.IsPositive() {
		return 0
	}
	quotient, _ := cash.QuoRem(price, 0)
	return quotient.IntPart()
}
