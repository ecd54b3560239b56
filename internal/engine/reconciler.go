package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"smabacktest/internal/md"
	"smabacktest/internal/strategy"
)

type ReconcileError struct {
	Index  int
	Date   time.Time
	Reason string
}

func (e *ReconcileError) Error() string {
	return fmt.Sprintf("reconcile state %d (%s): %s", e.Index, e.Date.Format(md.DateLayout), e.Reason)
}

// Reconcile replays the trade list against the state series and checks that
// every state balances, never holds negative cash or shares, and only changes
// position on a recorded trade.
func Reconcile(result *Result, capital decimal.Decimal) error {
	if result == nil || len(result.States) == 0 {
		return &ReconcileError{Reason: "no states"}
	}

	cash := capital
	var shares int64
	next := 0
	for i, st := range result.States {
		fail := func(format string, args ...any) error {
			return &ReconcileError{Index: i, Date: st.Date, Reason: fmt.Sprintf(format, args...)}
		}

		if !st.Total.Equal(st.Cash.Add(st.Holdings)) {
			return fail("total %s != cash %s + holdings %s", st.Total, st.Cash, st.Holdings)
		}
		if st.Cash.IsNegative() {
			return fail("negative cash %s", st.Cash)
		}
		if st.Shares < 0 {
			return fail("negative shares %d", st.Shares)
		}
		if (st.Shares == 0) != st.Holdings.IsZero() {
			return fail("shares %d inconsistent with holdings %s", st.Shares, st.Holdings)
		}

		if next < len(result.Trades) && result.Trades[next].Date.Equal(st.Date) {
			trade := result.Trades[next]
			next++
			notional := trade.Price.Mul(decimal.NewFromInt(trade.Shares))
			switch trade.Side {
			case strategy.Buy:
				if shares != 0 {
					return fail("buy while holding %d shares", shares)
				}
				if notional.GreaterThan(cash) {
					return fail("buy of %s exceeds cash %s", notional, cash)
				}
				cash = cash.Sub(notional)
				shares = trade.Shares
			case strategy.Sell:
				if shares != trade.Shares {
					return fail("sell of %d shares while holding %d", trade.Shares, shares)
				}
				cash = cash.Add(notional)
				shares = 0
			default:
				return fail("unknown trade side %q", trade.Side)
			}
		}

		if st.Shares != shares {
			return fail("shares %d, expected %d from trades", st.Shares, shares)
		}
		if !st.Cash.Equal(cash) {
			return fail("cash %s, expected %s from trades", st.Cash, cash)
		}
	}
	if next != len(result.Trades) {
		return &ReconcileError{Index: len(result.States) - 1, Date: result.Final().Date, Reason: fmt.Sprintf("%d trades do not match any state", len(result.Trades)-next)}
	}
	return nil
}
