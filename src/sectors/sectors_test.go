package sectors

import (
	"os"
	"path/filepath"
	"testing"

	"stock-analysis/src/models"

	"github.com/stretchr/testify/require"
)

func TestGenerateDropsUnknownTickers(t *testing.T) {
	mapping := Generate([]string{"sbin", " TCS ", "BAJAJ-AUTO", "UNKNOWN"})
	require.Equal(t, models.MSectorMapping{
		"SBIN":       "BANKING",
		"TCS":        "IT",
		"BAJAJ-AUTO": "AUTOMOBILES",
	}, mapping)
}

func TestWriteAndLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "sector_mapping.csv")
	mapping := Generate([]string{"TCS", "SBIN"})

	require.NoError(t, WriteCSV(path, mapping))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "ticker,sector\nSBIN,BANKING\nTCS,IT\n", string(data))

	loaded, err := LoadCSV(path)
	require.NoError(t, err)
	require.Equal(t, mapping, loaded)
}

func TestLoadCSVNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sector_mapping.csv")
	require.NoError(t, os.WriteFile(path, []byte("Sector,TICKER\nIT, infy \nENERGY,\n"), 0644))

	mapping, err := LoadCSV(path)
	require.NoError(t, err)
	require.Equal(t, models.MSectorMapping{"INFY": "IT"}, mapping)
}

func TestLoadCSVErrors(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("symbol,industry\nTCS,IT\n"), 0644))
	_, err = LoadCSV(path)
	require.Error(t, err)
}
