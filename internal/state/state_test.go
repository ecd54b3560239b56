package state

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var today = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func TestAccountBuyDebitsWholeShares(t *testing.T) {
	account := NewAccount(decimal.NewFromInt(1000))
	next, err := account.Buy(6, decimal.NewFromInt(150))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.Cash.Equal(decimal.NewFromInt(100)) || next.Shares != 6 {
		t.Fatalf("expected cash 100 and 6 shares, got %s and %d", next.Cash, next.Shares)
	}
	if !account.Cash.Equal(decimal.NewFromInt(1000)) || account.Shares != 0 {
		t.Fatalf("expected receiver to be unchanged, got %+v", account)
	}
}

func TestAccountBuyRejectsOverdraft(t *testing.T) {
	account := NewAccount(decimal.NewFromInt(1000))
	if _, err := account.Buy(7, decimal.NewFromInt(150)); !errors.Is(err, ErrOverdraft) {
		t.Fatalf("expected overdraft, got %v", err)
	}
}

func TestAccountBuyRejectsZeroQuantity(t *testing.T) {
	account := NewAccount(decimal.NewFromInt(1000))
	if _, err := account.Buy(0, decimal.NewFromInt(150)); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
}

func TestAccountSellLiquidates(t *testing.T) {
	account := Account{Cash: decimal.NewFromInt(100), Shares: 6}
	next := account.Sell(decimal.NewFromInt(90))
	if !next.Cash.Equal(decimal.NewFromInt(640)) || next.Shares != 0 {
		t.Fatalf("expected cash 640 and no shares, got %s and %d", next.Cash, next.Shares)
	}
	if !next.Flat() {
		t.Fatalf("expected flat account after sell")
	}
}

func TestAccountMarkBalances(t *testing.T) {
	account := Account{Cash: decimal.RequireFromString("12.34"), Shares: 3}
	st := account.Mark(today, decimal.RequireFromString("101.01"))
	if !st.Holdings.Equal(decimal.RequireFromString("303.03")) {
		t.Fatalf("expected holdings 303.03, got %s", st.Holdings)
	}
	if !st.Total.Equal(st.Cash.Add(st.Holdings)) {
		t.Fatalf("expected total to equal cash + holdings, got %s", st.Total)
	}
	if !st.Long() {
		t.Fatalf("expected long state")
	}
}

func TestAccountMarkFlatHasNoHoldings(t *testing.T) {
	st := NewAccount(decimal.NewFromInt(500)).Mark(today, decimal.NewFromInt(42))
	if !st.Holdings.IsZero() || st.Shares != 0 || !st.Total.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("unexpected flat state: %+v", st)
	}
}
