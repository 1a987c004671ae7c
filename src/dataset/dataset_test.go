package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const combined = `symbol,date,month,open,high,low,close,volume
tcs ,2023-10-03 00:00:00,2023-10,,,,110,
SBIN,2023-10-30 00:00:00,2023-10,600,605,598,602.95,1000
TCS,2023-10-02 00:00:00,2023-10,99,101,98,100,"1,500"
INFY,not a date,2023-10,,,,1400,
`

func TestReadNormalizesRows(t *testing.T) {
	rows, err := Read(strings.NewReader(combined))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t, "SBIN", rows[0].Symbol)
	require.Equal(t, 602.95, *rows[0].Close)
	require.Equal(t, 1000.0, *rows[0].Volume)

	require.Equal(t, "TCS", rows[1].Symbol)
	require.Equal(t, 2, rows[1].Date.Day())
	require.Equal(t, 1500.0, *rows[1].Volume)

	require.Equal(t, "TCS", rows[2].Symbol)
	require.Nil(t, rows[2].Open)
	require.Nil(t, rows[2].Volume)
	require.Equal(t, "2023-10", rows[2].Month)
}

func TestReadAcceptsTickerHeader(t *testing.T) {
	rows, err := Read(strings.NewReader(" Ticker ,Date,Close\nsbin,2023-10-30,602.95\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "SBIN", rows[0].Symbol)
	require.Equal(t, "2023-10", rows[0].Month)
}

func TestReadRequiresSymbolColumn(t *testing.T) {
	_, err := Read(strings.NewReader("date,close\n2023-10-30,1\n"))
	require.Error(t, err)

	_, err = Read(strings.NewReader(""))
	require.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "all_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(combined), 0644))

	rows, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"SBIN", "TCS"}, Symbols(rows))

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}

func TestFilterApply(t *testing.T) {
	rows, err := Read(strings.NewReader(combined))
	require.NoError(t, err)

	day := func(d int) time.Time { return time.Date(2023, 10, d, 0, 0, 0, 0, time.UTC) }

	require.Len(t, Filter{}.Apply(rows), 3)
	require.Len(t, Filter{Symbols: []string{" tcs"}}.Apply(rows), 2)
	require.Len(t, Filter{From: day(3)}.Apply(rows), 2)
	require.Len(t, Filter{To: day(3)}.Apply(rows), 2)
	require.Len(t, Filter{From: day(3), To: day(3)}.Apply(rows), 1)
	require.Empty(t, Filter{Symbols: []string{"WIPRO"}}.Apply(rows))
}

func TestDateRange(t *testing.T) {
	rows, err := Read(strings.NewReader(combined))
	require.NoError(t, err)

	first, last := DateRange(rows)
	require.Equal(t, 2, first.Day())
	require.Equal(t, 30, last.Day())
}
