package strategy

import (
	"fmt"

	"smabacktest/internal/config"
	"smabacktest/internal/md"
)

// SMACross is long while the short simple moving average is strictly above
// the long one and flat otherwise.
type SMACross struct {
	ShortWindow int
	LongWindow  int
}

func NewSMACross(shortWindow, longWindow int) (SMACross, error) {
	if err := config.ValidateWindows(shortWindow, longWindow); err != nil {
		return SMACross{}, err
	}
	return SMACross{ShortWindow: shortWindow, LongWindow: longWindow}, nil
}

// Generate computes both moving averages, the position and the crossover
// signal for every point of series. Averages over the first W-1 points use
// the points available so far rather than being left undefined.
func (s SMACross) Generate(series md.Series) ([]SignalPoint, error) {
	if err := config.ValidateWindows(s.ShortWindow, s.LongWindow); err != nil {
		return nil, err
	}
	if err := md.Validate(series); err != nil {
		return nil, fmt.Errorf("generate signals: %w", err)
	}

	short := md.NewRingBuffer(s.ShortWindow)
	long := md.NewRingBuffer(s.LongWindow)
	points := make([]SignalPoint, len(series))
	for i, p := range series {
		short.Add(p.Price)
		long.Add(p.Price)

		point := SignalPoint{
			Date:    p.Date,
			Price:   p.Price,
			ShortMA: short.Mean(),
			LongMA:  long.Mean(),
		}
		if point.ShortMA > point.LongMA {
			point.Position = 1
		}
		if i > 0 {
			point.Signal = point.Position - points[i-1].Position
		}
		points[i] = point
	}
	return points, nil
}

func (s SMACross) Decide(snapshot MarketSnapshot) TradeIntent {
	if snapshot.Signal == GoldenCross && snapshot.PositionQty == 0 {
		return TradeIntent{
			Action: Buy,
			Reason: "golden_cross",
		}
	}
	if snapshot.Signal == DeathCross && snapshot.PositionQty > 0 {
		return TradeIntent{
			Action: Sell,
			Qty:    snapshot.PositionQty,
			Reason: "death_cross",
		}
	}
	return TradeIntent{Action: Hold, Reason: "no_signal"}
}

// Crossovers returns the points where the position changed.
func Crossovers(points []SignalPoint) []SignalPoint {
	var out []SignalPoint
	for _, p := range points {
		if p.Signal != NoCross {
			out = append(out, p)
		}
	}
	return out
}
