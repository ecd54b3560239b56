package md

import (
	"context"
	"time"
)

// Provider returns the daily closing prices of symbol between start and end, inclusive.
type Provider interface {
	Bars(ctx context.Context, symbol string, start, end time.Time) (Series, error)
}
