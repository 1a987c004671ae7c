package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"stock-analysis/src/models"

	"github.com/araddon/dateparse"
)

// Accepted header names, compared after trimming and lower-casing.
var (
	symbolHeaders = []string{"symbol", "ticker"}
	dateHeaders   = []string{"date", "trade_date"}
)

// -----------------------------------------------------------------------------

// Load reads the combined artifact at path into rows sorted by symbol then date.
func Load(path string) ([]models.MPriceRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset '%s': %w", path, err)
	}
	defer f.Close()

	rows, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset '%s': %w", path, err)
	}
	return rows, nil
}

// -----------------------------------------------------------------------------

// Read parses combined-artifact CSV from r. Rows with an unparseable date are dropped.
func Read(r io.Reader) ([]models.MPriceRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("dataset is empty")
	}
	if err != nil {
		return nil, err
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	symbolCol, ok := lookup(columns, symbolHeaders)
	if !ok {
		return nil, errors.New("dataset has no symbol column")
	}
	dateCol, ok := lookup(columns, dateHeaders)
	if !ok {
		return nil, errors.New("dataset has no date column")
	}
	monthCol, hasMonth := columns["month"]

	var rows []models.MPriceRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		symbol := strings.ToUpper(strings.TrimSpace(cell(record, symbolCol)))
		date, err := dateparse.ParseAny(strings.TrimSpace(cell(record, dateCol)))
		if symbol == "" || err != nil {
			continue
		}

		row := models.MPriceRow{
			Symbol: symbol,
			Date:   date,
			Open:   number(record, columns, "open"),
			High:   number(record, columns, "high"),
			Low:    number(record, columns, "low"),
			Close:  number(record, columns, "close"),
			Volume: number(record, columns, "volume"),
		}
		if hasMonth {
			row.Month = strings.TrimSpace(cell(record, monthCol))
		}
		if row.Month == "" {
			row.Month = date.Format("2006-01")
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Symbol != rows[j].Symbol {
			return rows[i].Symbol < rows[j].Symbol
		}
		return rows[i].Date.Before(rows[j].Date)
	})
	return rows, nil
}

func lookup(columns map[string]int, names []string) (int, bool) {
	for _, name := range names {
		if i, ok := columns[name]; ok {
			return i, true
		}
	}
	return 0, false
}

func cell(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}

func number(record []string, columns map[string]int, name string) *float64 {
	i, ok := columns[name]
	if !ok {
		return nil
	}
	s := strings.TrimSpace(strings.ReplaceAll(cell(record, i), ",", ""))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// -----------------------------------------------------------------------------

// Filter selects rows by inclusive date range and symbol subset.
// Zero dates and an empty symbol list select everything.
type Filter struct {
	From    time.Time
	To      time.Time
	Symbols []string
}

// Apply returns the rows matching f, preserving order.
func (f Filter) Apply(rows []models.MPriceRow) []models.MPriceRow {
	wanted := make(map[string]struct{}, len(f.Symbols))
	for _, s := range f.Symbols {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			wanted[s] = struct{}{}
		}
	}

	var to time.Time
	if !f.To.IsZero() {
		// inclusive: everything before the next day
		to = dayStart(f.To).AddDate(0, 0, 1)
	}
	from := dayStart(f.From)

	out := make([]models.MPriceRow, 0, len(rows))
	for _, row := range rows {
		if len(wanted) > 0 {
			if _, ok := wanted[row.Symbol]; !ok {
				continue
			}
		}
		day := dayStart(row.Date)
		if !f.From.IsZero() && day.Before(from) {
			continue
		}
		if !to.IsZero() && !day.Before(to) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// dayStart drops the time of day, keeping the calendar date as written.
func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// -----------------------------------------------------------------------------

// Symbols returns the sorted distinct symbols of rows.
func Symbols(rows []models.MPriceRow) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, row := range rows {
		if _, ok := seen[row.Symbol]; ok {
			continue
		}
		seen[row.Symbol] = struct{}{}
		out = append(out, row.Symbol)
	}
	sort.Strings(out)
	return out
}

// -----------------------------------------------------------------------------

// DateRange returns the first and last dates of rows.
func DateRange(rows []models.MPriceRow) (time.Time, time.Time) {
	var first, last time.Time
	for i, row := range rows {
		if i == 0 || row.Date.Before(first) {
			first = row.Date
		}
		if i == 0 || row.Date.After(last) {
			last = row.Date
		}
	}
	return first, last
}
