package md

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const DateLayout = "2006-01-02"

// ErrEmptySeries is returned when there is nothing to simulate.
var ErrEmptySeries = errors.New("price series is empty")

type PricePoint struct {
	Date  time.Time
	Price float64
}

// Series is a closing price series ordered by strictly increasing date.
type Series []PricePoint

// SeriesError reports the first offending point of an invalid series.
type SeriesError struct {
	Index  int
	Date   time.Time
	Reason string
}

func (e *SeriesError) Error() string {
	return fmt.Sprintf("invalid price series at index %d (%s): %s", e.Index, e.Date.Format(DateLayout), e.Reason)
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return t, nil
}

func Validate(series Series) error {
	if len(series) == 0 {
		return ErrEmptySeries
	}
	for i, p := range series {
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price <= 0 {
			return &SeriesError{Index: i, Date: p.Date, Reason: fmt.Sprintf("price must be > 0, got %v", p.Price)}
		}
		if i > 0 && !p.Date.After(series[i-1].Date) {
			return &SeriesError{Index: i, Date: p.Date, Reason: "dates must be strictly increasing"}
		}
	}
	return nil
}
