package state

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrOverdraft       = errors.New("order cost exceeds available cash")
)

// PortfolioState is the end-of-day account valuation.
type PortfolioState struct {
	Date     time.Time       `json:"date"`
	Cash     decimal.Decimal `json:"cash"`
	Holdings decimal.Decimal `json:"holdings_value"`
	Total    decimal.Decimal `json:"total_value"`
	Shares   int64           `json:"shares_held"`
}

func (s PortfolioState) Long() bool {
	return s.Shares > 0
}

// Account is the value carried from one day to the next. Its methods return
// a new Account and never modify the receiver.
type Account struct {
	Cash   decimal.Decimal
	Shares int64
}

func NewAccount(capital decimal.Decimal) Account {
	return Account{Cash: capital}
}

func (a Account) Flat() bool {
	return a.Shares == 0
}

func (a Account) Buy(qty int64, price decimal.Decimal) (Account, error) {
	if qty <= 0 {
		return a, ErrInvalidQuantity
	}
	cost := price.Mul(decimal.NewFromInt(qty))
	if cost.GreaterThan(a.Cash) {
		return a, fmt.Errorf("buy %d at %s with cash %s: %w", qty, price, a.Cash, ErrOverdraft)
	}
	return Account{
		Cash:   a.Cash.Sub(cost),
		Shares: a.Shares + qty,
	}, nil
}

func (a Account) Sell(price decimal.Decimal) Account {
	return Account{
		Cash: a.Cash.Add(price.Mul(decimal.NewFromInt(a.Shares))),
	}
}

// Mark values the account at price on date.
func (a Account) Mark(date time.Time, price decimal.Decimal) PortfolioState {
	holdings := decimal.Zero
	if a.Shares > 0 {
		holdings = price.Mul(decimal.NewFromInt(a.Shares))
	}
	return PortfolioState{
		Date:     date,
		Cash:     a.Cash,
		Holdings: holdings,
		Total:    a.Cash.Add(holdings),
		Shares:   a.Shares,
	}
}
