package md

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

type fakeBarsClient struct {
	bars []marketdata.Bar
	err  error
	req  marketdata.GetBarsRequest
}

func (f *fakeBarsClient) GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error) {
	f.req = req
	return f.bars, f.err
}

func TestAlpacaProviderConvertsBars(t *testing.T) {
	client := &fakeBarsClient{bars: []marketdata.Bar{
		{Timestamp: time.Date(2024, 1, 2, 5, 0, 0, 0, time.UTC), Close: 470.1},
		{Timestamp: time.Date(2024, 1, 3, 5, 0, 0, 0, time.UTC), Close: 468.8},
	}}
	provider := &AlpacaProvider{client: client, feed: parseFeed("sip")}

	series, err := provider.Bars(context.Background(), "SPY", day(0), day(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("expected 2 points, got %d", len(series))
	}
	if !series[0].Date.Equal(day(1)) || series[0].Price != 470.1 {
		t.Fatalf("unexpected first point: %+v", series[0])
	}
	if client.req.TimeFrame != marketdata.OneDay {
		t.Fatalf("expected daily bars, got %v", client.req.TimeFrame)
	}
	if client.req.Adjustment != marketdata.All {
		t.Fatalf("expected adjusted bars, got %v", client.req.Adjustment)
	}
	if client.req.Feed != marketdata.SIP {
		t.Fatalf("expected sip feed, got %v", client.req.Feed)
	}
}

func TestAlpacaProviderRejectsOutOfOrderBars(t *testing.T) {
	cases := map[string][]marketdata.Bar{
		"duplicate": {
			{Timestamp: time.Date(2024, 1, 2, 5, 0, 0, 0, time.UTC), Close: 470.1},
			{Timestamp: time.Date(2024, 1, 3, 5, 0, 0, 0, time.UTC), Close: 468.8},
			{Timestamp: time.Date(2024, 1, 3, 5, 0, 0, 0, time.UTC), Close: 468.8},
		},
		"backwards": {
			{Timestamp: time.Date(2024, 1, 3, 5, 0, 0, 0, time.UTC), Close: 468.8},
			{Timestamp: time.Date(2024, 1, 2, 5, 0, 0, 0, time.UTC), Close: 470.1},
		},
	}
	for name, bars := range cases {
		provider := &AlpacaProvider{client: &fakeBarsClient{bars: bars}, feed: marketdata.IEX}
		series, err := provider.Bars(context.Background(), "SPY", day(0), day(5))
		var serr *SeriesError
		if !errors.As(err, &serr) {
			t.Fatalf("%s: expected SeriesError, got %v", name, err)
		}
		if series != nil {
			t.Fatalf("%s: expected no series, got %d points", name, len(series))
		}
		if serr.Index != len(bars)-1 {
			t.Fatalf("%s: expected index %d, got %d", name, len(bars)-1, serr.Index)
		}
	}
}

func TestAlpacaProviderWrapsErrors(t *testing.T) {
	boom := errors.New("boom")
	provider := &AlpacaProvider{client: &fakeBarsClient{err: boom}, feed: marketdata.IEX}
	if _, err := provider.Bars(context.Background(), "SPY", day(0), day(5)); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestAlpacaProviderHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	provider := &AlpacaProvider{client: &fakeBarsClient{}, feed: marketdata.IEX}
	if _, err := provider.Bars(ctx, "SPY", day(0), day(5)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
