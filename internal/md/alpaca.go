package md

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

type barsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// AlpacaProvider reads split and dividend adjusted daily bars from the alpaca
// market data API. A bar that does not fall on a later day than the previous
// one fails the fetch with a *SeriesError.
type AlpacaProvider struct {
	client barsClient
	feed   marketdata.Feed
}

func NewAlpacaProvider(apiKey, apiSecret, feed string) *AlpacaProvider {
	client := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	})
	return &AlpacaProvider{client: client, feed: parseFeed(feed)}
}

func (p *AlpacaProvider) Bars(ctx context.Context, symbol string, start, end time.Time) (Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bars, err := p.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Adjustment: marketdata.All,
		Start:      start,
		End:        end,
		Feed:       p.feed,
	})
	if err != nil {
		slog.Error("fetch bars failed", "symbol", symbol, "start", start.Format(DateLayout), "end", end.Format(DateLayout), "error", err)
		return nil, fmt.Errorf("fetch bars for %s: %w", symbol, err)
	}

	series := make(Series, 0, len(bars))
	for _, bar := range bars {
		day := Day(bar.Timestamp)
		if n := len(series); n > 0 && !day.After(series[n-1].Date) {
			slog.Error("out of order bar", "symbol", symbol, "date", day.Format(DateLayout), "previous", series[n-1].Date.Format(DateLayout))
			return nil, fmt.Errorf("fetch bars for %s: %w", symbol,
				&SeriesError{Index: n, Date: day, Reason: "bar is not after the previous trading day"})
		}
		series = append(series, PricePoint{Date: day, Price: bar.Close})
	}
	slog.Info("bars fetched", "symbol", symbol, "count", len(series), "feed", p.feed)
	return series, nil
}

func parseFeed(feed string) marketdata.Feed {
	switch feed {
	case "iex":
		return marketdata.IEX
	case "sip":
		return marketdata.SIP
	default:
		return marketdata.IEX
	}
}
