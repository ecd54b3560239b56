package strategy

import "time"

type Action string

const (
	Hold Action = "HOLD"
	Buy  Action = "BUY"
	Sell Action = "SELL"
)

// Signal values are the change in position between consecutive points.
const (
	DeathCross  = -1
	NoCross     = 0
	GoldenCross = 1
)

type SignalPoint struct {
	Date     time.Time `json:"date"`
	Price    float64   `json:"price"`
	ShortMA  float64   `json:"short_ma"`
	LongMA   float64   `json:"long_ma"`
	Position int       `json:"position"`
	Signal   int       `json:"signal"`
}

type MarketSnapshot struct {
	Date        time.Time
	Close       float64
	ShortMA     float64
	LongMA      float64
	Signal      int
	PositionQty int64
}

// TradeIntent is what the strategy wants to do. Qty is left for the risk gate
// to size on buys.
type TradeIntent struct {
	Action Action
	Qty    int64
	Reason string
}

type Strategy interface {
	Decide(snapshot MarketSnapshot) TradeIntent
}
