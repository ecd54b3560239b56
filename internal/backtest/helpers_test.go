package backtest

import (
	"os"

	"smabacktest/internal/md"
)

func writeCSV(path string, series md.Series) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return md.WriteCSV(file, series)
}
