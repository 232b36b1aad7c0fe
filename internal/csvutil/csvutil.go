// Package csvutil exports normalized tables as CSV files under the data
// directory, one timestamped file per write.
package csvutil

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantview/tickersheet/pkg/ticker"
)

type Manager struct {
	basePath string
}

func NewManager(basePath string) *Manager {
	return &Manager{basePath: basePath}
}

// WriteHistory writes a price history under csv/history/{symbol}/ and
// returns the file path.
func (m *Manager) WriteHistory(h ticker.History) (string, error) {
	dirPath := filepath.Join(m.basePath, "csv", "history", h.Symbol)
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	filename := fmt.Sprintf("%s_history_%d_bars_%s.csv",
		h.Symbol, len(h.Bars), time.Now().Format("20060102_150405"))
	filePath := filepath.Join(dirPath, filename)

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("create csv file: %w", err)
	}
	defer file.Close()

	if err := WriteHistoryTo(file, h); err != nil {
		return "", err
	}
	return filePath, nil
}

// WriteHistoryTo streams a price history as CSV. Null prices become empty
// cells; intraday bars keep their full timestamp.
func WriteHistoryTo(w io.Writer, h ticker.History) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	headers := []string{"Date", "Open", "High", "Low", "Close", "Adj Close", "Volume", "Dividends", "Stock Splits"}
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}

	dateFormat := "2006-01-02"
	if h.Interval.Intraday() {
		dateFormat = time.RFC3339
	}

	for _, b := range h.Bars {
		row := []string{
			b.Time.Format(dateFormat),
			formatNull(b.Open),
			formatNull(b.High),
			formatNull(b.Low),
			formatNull(b.Close),
			formatNull(b.AdjClose),
			strconv.FormatInt(b.Volume, 10),
			b.Dividends.String(),
			b.StockSplits.String(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteStatement writes a financial statement under csv/statements/{symbol}/
// and returns the file path.
func (m *Manager) WriteStatement(symbol, name string, st ticker.Statement) (string, error) {
	dirPath := filepath.Join(m.basePath, "csv", "statements", symbol)
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s_%s.csv",
		symbol, slugify(name), time.Now().Format("20060102_150405"))
	filePath := filepath.Join(dirPath, filename)

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("create csv file: %w", err)
	}
	defer file.Close()

	if err := WriteStatementTo(file, st); err != nil {
		return "", err
	}
	return filePath, nil
}

// WriteStatementTo streams a statement as CSV: one row per line item, the
// nesting depth kept as its own column so the hierarchy survives the flat
// format.
func WriteStatementTo(w io.Writer, st ticker.Statement) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	headers := append([]string{"Item", "Level"}, st.Columns...)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}

	for _, row := range st.Rows {
		record := []string{row.Label, strconv.Itoa(row.Level)}
		for _, v := range row.Values {
			record = append(record, formatNull(v))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// FindLatestHistory returns the newest history CSV for a symbol that holds
// at least minBars rows.
func (m *Manager) FindLatestHistory(symbol string, minBars int) (string, error) {
	dirPath := filepath.Join(m.basePath, "csv", "history", symbol)
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return "", fmt.Errorf("no csv directory for symbol %s", symbol)
	}

	files, err := filepath.Glob(filepath.Join(dirPath, fmt.Sprintf("%s_history_*_bars_*.csv", symbol)))
	if err != nil {
		return "", fmt.Errorf("search csv files: %w", err)
	}

	var bestFile string
	var latestTime time.Time
	for _, file := range files {
		parts := strings.Split(filepath.Base(file), "_")
		if len(parts) < 4 {
			continue
		}
		barCount, err := strconv.Atoi(parts[2])
		if err != nil || barCount < minBars {
			continue
		}

		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			bestFile = file
		}
	}

	if bestFile == "" {
		return "", fmt.Errorf("no csv file for %s with at least %d bars", symbol, minBars)
	}
	return bestFile, nil
}

// CleanOldFiles removes exported CSVs older than maxAge.
func (m *Manager) CleanOldFiles(maxAge time.Duration) error {
	for _, dir := range []string{
		filepath.Join(m.basePath, "csv", "history"),
		filepath.Join(m.basePath, "csv", "statements"),
	} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}

		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && strings.HasSuffix(info.Name(), ".csv") {
				if time.Since(info.ModTime()) > maxAge {
					if err := os.Remove(path); err != nil {
						return fmt.Errorf("remove old file %s: %w", path, err)
					}
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("clean directory %s: %w", dir, err)
		}
	}
	return nil
}

func formatNull(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.String()
}

func slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}
