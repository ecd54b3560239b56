package md

import (
	"errors"
	"math"
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestValidateRejectsEmptySeries(t *testing.T) {
	if err := Validate(nil); !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
}

func TestValidateRejectsNonPositivePrice(t *testing.T) {
	series := Series{{Date: day(0), Price: 10}, {Date: day(1), Price: 0}}
	err := Validate(series)
	var seriesErr *SeriesError
	if !errors.As(err, &seriesErr) {
		t.Fatalf("expected SeriesError, got %v", err)
	}
	if seriesErr.Index != 1 {
		t.Fatalf("expected offending index 1, got %d", seriesErr.Index)
	}
}

func TestValidateRejectsNaNPrice(t *testing.T) {
	series := Series{{Date: day(0), Price: math.NaN()}}
	if err := Validate(series); err == nil {
		t.Fatalf("expected error for NaN price")
	}
}

func TestValidateRejectsUnorderedDates(t *testing.T) {
	series := Series{{Date: day(1), Price: 10}, {Date: day(1), Price: 11}}
	var seriesErr *SeriesError
	if err := Validate(series); !errors.As(err, &seriesErr) {
		t.Fatalf("expected SeriesError for duplicate date, got %v", err)
	}
}

func TestValidateAcceptsGaps(t *testing.T) {
	series := Series{{Date: day(0), Price: 10}, {Date: day(3), Price: 11}, {Date: day(4), Price: 12}}
	if err := Validate(series); err != nil {
		t.Fatalf("expected valid series, got %v", err)
	}
}

func TestDayTruncatesToUTCMidnight(t *testing.T) {
	ts := time.Date(2024, 3, 5, 4, 0, 0, 0, time.UTC)
	if got := Day(ts); !got.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected 2024-03-05, got %s", got)
	}
}
