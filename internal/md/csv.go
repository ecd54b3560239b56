package md

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// CSVProvider serves prices from a "date,close" file, such as one written by WriteCSV.
type CSVProvider struct {
	Path string
}

func (p CSVProvider) Bars(ctx context.Context, symbol string, start, end time.Time) (Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(p.Path)
	if err != nil {
		return nil, fmt.Errorf("open price file: %w", err)
	}
	defer file.Close()

	series, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("read %s prices from %s: %w", symbol, p.Path, err)
	}
	return series.Between(start, end), nil
}

func ReadCSV(r io.Reader) (Series, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var series Series
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(record) < 2 {
			return nil, fmt.Errorf("line %d: expected date and close columns", line)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "date") {
			continue
		}
		date, err := ParseDate(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse close: %w", line, err)
		}
		series = append(series, PricePoint{Date: date, Price: price})
	}
	return series, nil
}

func WriteCSV(w io.Writer, series Series) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"date", "close"}); err != nil {
		return err
	}
	for _, p := range series {
		record := []string{p.Date.Format(DateLayout), strconv.FormatFloat(p.Price, 'f', -1, 64)}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Between keeps the points dated within [start, end]. A zero bound is open.
func (s Series) Between(start, end time.Time) Series {
	out := make(Series, 0, len(s))
	for _, p := range s {
		if !start.IsZero() && p.Date.Before(Day(start)) {
			continue
		}
		if !end.IsZero() && p.Date.After(Day(end)) {
			continue
		}
		out = append(out, p)
	}
	return out
}
