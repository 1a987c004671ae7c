package etl

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"stock-analysis/src/helpers"
	"stock-analysis/src/logger"

	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDiscoverSortedAndCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	b := writeSource(t, root, "2023-11/b.yaml", "[]")
	a := writeSource(t, root, "2023-10/a.YML", "[]")
	c := writeSource(t, root, "c.Yaml", "[]")
	writeSource(t, root, "notes.txt", "ignored")
	writeSource(t, root, "2023-10/data.json", "{}")

	ex := NewExtractor(root, logger.NewLoggerWithWriter(&bytes.Buffer{}, "INFO", "extractor"))
	files, err := ex.Discover()
	require.NoError(t, err)
	require.Equal(t, []string{a, b, c}, files)
}

func TestDiscoverMissingRoot(t *testing.T) {
	ex := NewExtractor(filepath.Join(t.TempDir(), "missing"), logger.NewLoggerWithWriter(&bytes.Buffer{}, "INFO", "extractor"))

	_, err := ex.Discover()
	var discoveryErr *helpers.DiscoveryError
	require.ErrorAs(t, err, &discoveryErr)
}

func TestExtractEntries(t *testing.T) {
	root := t.TempDir()
	path := writeSource(t, root, "oct.yaml", `
- Ticker: SBIN
  date: "2023-10-30"
  month: 2023-10
  open: "600"
  close: "602.95"
  volume: 1,45,000
- symbol: TCS
  date: 2023-10-31
  close: 3500
`)
	ex := NewExtractor(root, logger.NewLoggerWithWriter(&bytes.Buffer{}, "INFO", "extractor"))

	records, err := ex.Extract(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Equal(t, "SBIN", records[0].Symbol)
	require.Equal(t, "2023-10", records[0].Month)
	require.Equal(t, "1,45,000", records[0].Numbers["volume"])
	require.Equal(t, path, records[0].Source)

	require.Equal(t, "TCS", records[1].Symbol)
	require.Equal(t, 3500, records[1].Numbers["close"])
	require.Nil(t, records[1].Numbers["volume"])
}

func TestExtractMalformedFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
		logged  string
	}{
		{"mapping at top level", "Ticker: SBIN\nclose: 1\n", "does not contain a list"},
		{"scalar at top level", "hello\n", "does not contain a list"},
		{"list of scalars", "- 1\n- 2\n", "not a mapping"},
		{"broken syntax", "- Ticker: [SBIN\n", "Error reading"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			root := t.TempDir()
			path := writeSource(t, root, "bad.yaml", tt.content)
			ex := NewExtractor(root, logger.NewLoggerWithWriter(&buf, "INFO", "extractor"))

			records, err := ex.Extract(path)
			require.Empty(t, records)
			var parseErr *helpers.FileParseError
			require.ErrorAs(t, err, &parseErr)
			require.Contains(t, buf.String(), tt.logged)
		})
	}
}
