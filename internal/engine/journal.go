package engine

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"smabacktest/internal/md"
	"smabacktest/internal/strategy"
)

const (
	ResultExecuted = "executed"
	ResultSkipped  = "skipped"
)

type JournalEntry struct {
	RunID    string          `json:"run_id"`
	Date     string          `json:"date"`
	Result   string          `json:"result"`
	Side     strategy.Action `json:"side"`
	Shares   int64           `json:"shares,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Cash     decimal.Decimal `json:"cash"`
	Holdings decimal.Decimal `json:"holdings_value"`
	Reason   string          `json:"reason,omitempty"`
	LoggedAt time.Time       `json:"logged_at"`
}

// Journal appends one NDJSON line per executed or skipped trade. The zero
// *Journal (nil) discards everything.
type Journal struct {
	runID  string
	file   *os.File
	writer *bufio.Writer
	mu     sync.Mutex
	now    func() time.Time
}

func NewJournal(path string, runID string) (*Journal, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &Journal{
		runID:  runID,
		file:   file,
		writer: bufio.NewWriter(file),
		now:    time.Now,
	}, nil
}

func (j *Journal) RunID() string {
	if j == nil {
		return ""
	}
	return j.runID
}

func (j *Journal) AppendTrade(trade Trade) error {
	if j == nil {
		return nil
	}
	return j.append(JournalEntry{
		Date:     trade.Date.Format(md.DateLayout),
		Result:   ResultExecuted,
		Side:     trade.Side,
		Shares:   trade.Shares,
		Price:    trade.Price,
		Cash:     trade.Cash,
		Holdings: trade.Holdings,
		Reason:   trade.Reason,
	})
}

func (j *Journal) AppendSkipped(skipped SkippedTrade) error {
	if j == nil {
		return nil
	}
	return j.append(JournalEntry{
		Date:     skipped.Date.Format(md.DateLayout),
		Result:   ResultSkipped,
		Side:     skipped.Side,
		Price:    skipped.Price,
		Cash:     skipped.Cash,
		Holdings: decimal.Zero,
		Reason:   skipped.Reason,
	})
}

func (j *Journal) append(entry JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	entry.RunID = j.runID
	entry.LoggedAt = j.now().UTC()
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}
	if _, err := j.writer.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("write journal entry: %w", err)
	}
	if err := j.writer.Flush(); err != nil {
		return fmt.Errorf("flush journal: %w", err)
	}
	return nil
}

func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.writer.Flush(); err != nil {
		_ = j.file.Close()
		return err
	}
	return j.file.Close()
}
