package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"smabacktest/internal/md"
)

type Source string

const (
	SourceAlpaca Source = "alpaca"
	SourceCSV    Source = "csv"
)

// ValidationError is a configuration error: it names the offending setting
// and is raised before any simulation starts.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s=%v: %s", e.Field, e.Value, e.Reason)
}

type Config struct {
	Source         Source
	Symbol         string
	Feed           string
	CSVPath        string
	Start          time.Time
	End            time.Time
	ShortWindow    int
	LongWindow     int
	InitialCapital float64
	TradesPath     string
	ReportPath     string
	ChartDir       string
	EnvPath        string
	APIKey         string
	APISecret      string

	source string
	start  string
	end    string
}

// SetFlags registers every setting on fs with its default value.
func (c *Config) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.source, "source", string(SourceAlpaca), "price source: alpaca or csv")
	fs.StringVar(&c.Symbol, "symbol", "SPY", "ticker to backtest")
	fs.StringVar(&c.Feed, "feed", "iex", "alpaca data feed: iex or sip")
	fs.StringVar(&c.CSVPath, "csv", "", "path to a date,close price file (csv source)")
	fs.StringVar(&c.start, "start", "2010-01-01", "first date, YYYY-MM-DD")
	fs.StringVar(&c.end, "end", time.Now().UTC().Format(md.DateLayout), "last date, YYYY-MM-DD")
	fs.IntVar(&c.ShortWindow, "short-window", 50, "short SMA window in days")
	fs.IntVar(&c.LongWindow, "long-window", 200, "long SMA window in days")
	fs.Float64Var(&c.InitialCapital, "capital", 100000, "initial cash")
	fs.StringVar(&c.TradesPath, "trades-path", "", "append executed trades to this NDJSON file")
	fs.StringVar(&c.ReportPath, "report-path", "", "write the markdown report to this file")
	fs.StringVar(&c.ChartDir, "chart-dir", "", "write PNG charts to this directory")
	fs.StringVar(&c.EnvPath, "env-file", ".env", "dotenv file with API credentials")
}

// Finalize resolves parsed flags, pulls credentials from the environment and validates.
func (c *Config) Finalize() error {
	loadDotEnvIfPresent(c.EnvPath)

	c.Source = Source(c.source)
	c.APIKey = os.Getenv("APCA_API_KEY_ID")
	c.APISecret = os.Getenv("APCA_API_SECRET_KEY")

	var err error
	if c.Start, err = parseDate("start", c.start); err != nil {
		return err
	}
	if c.End, err = parseDate("end", c.end); err != nil {
		return err
	}
	return validate(*c)
}

// Load parses args into a fresh Config.
func Load(args []string) (Config, error) {
	var cfg Config
	fs := flag.NewFlagSet("backtest", flag.ContinueOnError)
	cfg.SetFlags(fs)
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if err := cfg.Finalize(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadDotEnvIfPresent(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: could not load %s: %v", path, err)
	}
}

func parseDate(field, value string) (time.Time, error) {
	t, err := md.ParseDate(value)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Value: value, Reason: "expected YYYY-MM-DD"}
	}
	return t, nil
}

// ValidateWindows checks the SMA windows of a crossover strategy.
func ValidateWindows(short, long int) error {
	if short <= 0 {
		return &ValidationError{Field: "short-window", Value: short, Reason: "must be > 0"}
	}
	if long <= 0 {
		return &ValidationError{Field: "long-window", Value: long, Reason: "must be > 0"}
	}
	if short >= long {
		return &ValidationError{Field: "short-window", Value: short, Reason: fmt.Sprintf("must be < long-window (%d)", long)}
	}
	return nil
}

func ValidateCapital(capital float64) error {
	if !(capital > 0) {
		return &ValidationError{Field: "capital", Value: capital, Reason: "must be > 0"}
	}
	return nil
}

func validate(cfg Config) error {
	if cfg.Source != SourceAlpaca && cfg.Source != SourceCSV {
		return &ValidationError{Field: "source", Value: cfg.Source, Reason: "must be alpaca or csv"}
	}
	if cfg.Symbol == "" {
		return &ValidationError{Field: "symbol", Value: cfg.Symbol, Reason: "must not be empty"}
	}
	if cfg.Source == SourceAlpaca && (cfg.APIKey == "" || cfg.APISecret == "") {
		return &ValidationError{Field: "source", Value: cfg.Source, Reason: "APCA_API_KEY_ID and APCA_API_SECRET_KEY are required"}
	}
	if cfg.Source == SourceCSV && cfg.CSVPath == "" {
		return &ValidationError{Field: "csv", Value: cfg.CSVPath, Reason: "required with the csv source"}
	}
	if !cfg.End.After(cfg.Start) {
		return &ValidationError{Field: "end", Value: cfg.End.Format(md.DateLayout), Reason: "must be after start"}
	}
	if err := ValidateWindows(cfg.ShortWindow, cfg.LongWindow); err != nil {
		return err
	}
	return ValidateCapital(cfg.InitialCapital)
}
