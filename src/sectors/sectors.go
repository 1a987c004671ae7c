package sectors

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"stock-analysis/src/models"
)

// Known maps tickers to their sector.
var Known = models.MSectorMapping{
	"SBIN":      "BANKING",
	"HDFCBANK":  "BANKING",
	"ICICIBANK": "BANKING",
	"AXISBANK":  "BANKING",

	"TCS":     "IT",
	"INFY":    "IT",
	"HCLTECH": "IT",
	"WIPRO":   "IT",

	"RELIANCE": "ENERGY",
	"ONGC":     "ENERGY",
	"BPCL":     "ENERGY",

	"ITC":        "FMCG",
	"HINDUNILVR": "FMCG",
	"NESTLEIND":  "FMCG",

	"BAJFINANCE": "FINANCE",
	"BAJAJFINSV": "FINANCE",

	"BAJAJ-AUTO": "AUTOMOBILES",
}

// Columns of the mapping file.
var Columns = []string{"ticker", "sector"}

// -----------------------------------------------------------------------------

// Generate maps the given tickers with Known. Unmapped tickers are dropped.
func Generate(tickers []string) models.MSectorMapping {
	out := make(models.MSectorMapping)
	for _, t := range tickers {
		t = normalize(t)
		if sector, ok := Known[t]; ok {
			out[t] = sector
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// WriteCSV writes mapping to path sorted by ticker, creating parent directories.
func WriteCSV(path string, mapping models.MSectorMapping) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create sector mapping '%s': %w", path, err)
	}
	defer f.Close()

	tickers := make([]string, 0, len(mapping))
	for t := range mapping {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return err
	}
	for _, t := range tickers {
		if err := w.Write([]string{t, mapping[t]}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// -----------------------------------------------------------------------------

// LoadCSV reads a ticker,sector file. Header names are case-insensitive and
// tickers are trimmed and upper-cased.
func LoadCSV(path string) (models.MSectorMapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sector mapping '%s': %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read sector mapping header: %w", err)
	}
	tickerCol, sectorCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "ticker":
			tickerCol = i
		case "sector":
			sectorCol = i
		}
	}
	if tickerCol < 0 || sectorCol < 0 {
		return nil, errors.New("sector mapping needs ticker and sector columns")
	}

	mapping := make(models.MSectorMapping)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read sector mapping: %w", err)
		}
		if tickerCol >= len(row) || sectorCol >= len(row) {
			continue
		}
		ticker := normalize(row[tickerCol])
		sector := strings.TrimSpace(row[sectorCol])
		if ticker == "" || sector == "" {
			continue
		}
		mapping[ticker] = sector
	}
	return mapping, nil
}

func normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
