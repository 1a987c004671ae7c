package etl

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"stock-analysis/src/helpers"
	"stock-analysis/src/logger"
	"stock-analysis/src/models"

	"github.com/shopspring/decimal"
)

const (
	CombinedFileName     = "all_data.csv"
	MonthlyFilePrefix    = "monthly_summary_"
	artifactFileMode     = 0644
	artifactDirFileMode  = 0755
	perKeyOpenFlags      = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	unsafeFileNameRunes  = `/\:*?"<>|`
	unsafeFileNameSubst  = "_"
	monthlyFileExtension = ".csv"
)

// -----------------------------------------------------------------------------

// perKeyFile is an open per-symbol artifact in append mode.
type perKeyFile struct {
	file   *os.File
	writer *csv.Writer
}

// -----------------------------------------------------------------------------

// Loader persists canonical records: per-symbol append-only CSV files, one
// combined CSV replaced every run, and one monthly summary CSV per month.
// It keeps the records of the current run in memory for the last two.
type Loader struct {
	PerSymbolDir string
	CombinedDir  string
	ReportsDir   string
	SkipExisting bool
	Logger       *logger.Logger

	records []models.MCanonicalRecord
	open    map[string]*perKeyFile          // keyed by artifact path
	known   map[string]map[string]struct{} // artifact path -> record keys, only with SkipExisting
}

// -----------------------------------------------------------------------------

// NewLoader creates the output directories. Failure is a *helpers.PersistenceError.
func NewLoader(cfg models.METLConfig, log *logger.Logger) (*Loader, error) {
	l := &Loader{
		PerSymbolDir: cfg.PerSymbolDir,
		CombinedDir:  cfg.CombinedDir,
		ReportsDir:   cfg.ReportsDir,
		SkipExisting: cfg.SkipExisting,
		Logger:       log,
		open:         make(map[string]*perKeyFile),
		known:        make(map[string]map[string]struct{}),
	}

	for _, dir := range []string{l.PerSymbolDir, l.CombinedDir, l.ReportsDir} {
		if err := os.MkdirAll(dir, artifactDirFileMode); err != nil {
			return nil, helpers.NewPersistenceError(dir, err)
		}
	}
	return l, nil
}

// -----------------------------------------------------------------------------

// PerKeyPath returns the artifact path for a symbol. Symbols that differ only
// in unsafe characters share one artifact.
func (l *Loader) PerKeyPath(symbol string) string {
	return filepath.Join(l.PerSymbolDir, safeFileName(symbol)+".csv")
}

func safeFileName(name string) string {
	for _, r := range unsafeFileNameRunes {
		name = strings.ReplaceAll(name, string(r), unsafeFileNameSubst)
	}
	return name
}

// -----------------------------------------------------------------------------

// WritePerKey appends rec to its symbol's artifact, writing the header only
// when the artifact is new. It reports false when SkipExisting is on and the
// symbol already holds a row for rec's timestamp.
func (l *Loader) WritePerKey(rec models.MCanonicalRecord) (bool, error) {
	if rec.Symbol == "" {
		return false, nil
	}

	path := l.PerKeyPath(rec.Symbol)
	out, err := l.perKey(path)
	if err != nil {
		return false, err
	}

	if l.SkipExisting {
		seen := l.known[path]
		if _, dup := seen[rec.Key()]; dup {
			return false, nil
		}
		seen[rec.Key()] = struct{}{}
	}

	if err := out.writer.Write(rec.Row()); err != nil {
		return false, helpers.NewPersistenceError(out.file.Name(), err)
	}
	out.writer.Flush()
	if err := out.writer.Error(); err != nil {
		return false, helpers.NewPersistenceError(out.file.Name(), err)
	}

	l.records = append(l.records, rec)
	return true, nil
}

// perKey opens (once per run) the append handle for a per-key artifact.
func (l *Loader) perKey(path string) (*perKeyFile, error) {
	if out, ok := l.open[path]; ok {
		return out, nil
	}

	if l.SkipExisting {
		seen, err := readKeys(path)
		if err != nil {
			return nil, helpers.NewPersistenceError(path, err)
		}
		l.known[path] = seen
	}

	f, err := os.OpenFile(path, perKeyOpenFlags, artifactFileMode)
	if err != nil {
		return nil, helpers.NewPersistenceError(path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, helpers.NewPersistenceError(path, err)
	}

	out := &perKeyFile{file: f, writer: csv.NewWriter(f)}
	if info.Size() == 0 {
		if err := out.writer.Write(models.CanonicalColumns); err != nil {
			f.Close()
			return nil, helpers.NewPersistenceError(path, err)
		}
	}

	l.open[path] = out
	return out, nil
}

// readKeys returns the record keys already stored in a per-key artifact.
func readKeys(path string) (map[string]struct{}, error) {
	seen := make(map[string]struct{})

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return seen, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if header {
			header = false
			continue
		}
		if len(row) > 1 {
			seen[models.MCanonicalRecord{Symbol: row[0], Timestamp: row[1]}.Key()] = struct{}{}
		}
	}
	return seen, nil
}

// -----------------------------------------------------------------------------

// PerKeyArtifacts is the number of per-symbol artifacts touched this run.
func (l *Loader) PerKeyArtifacts() int {
	return len(l.open)
}

// -----------------------------------------------------------------------------

// Records returns the records accumulated in the current run.
func (l *Loader) Records() []models.MCanonicalRecord {
	return l.records
}

// -----------------------------------------------------------------------------

// Close releases the per-symbol handles.
func (l *Loader) Close() error {
	var errs []error
	for path, out := range l.open {
		out.writer.Flush()
		if err := out.writer.Error(); err != nil {
			errs = append(errs, err)
		}
		if err := out.file.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(l.open, path)
	}
	return errors.Join(errs...)
}

// -----------------------------------------------------------------------------

// CombinedPath is the combined artifact location.
func (l *Loader) CombinedPath() string {
	return filepath.Join(l.CombinedDir, CombinedFileName)
}

// -----------------------------------------------------------------------------

// WriteCombined replaces the combined artifact with this run's records.
// It does nothing and reports false when no record was accumulated.
func (l *Loader) WriteCombined() (bool, error) {
	if len(l.records) == 0 {
		return false, nil
	}

	rows := make([][]string, 0, len(l.records))
	for _, rec := range l.records {
		rows = append(rows, rec.Row())
	}

	if err := writeCSVAtomic(l.CombinedPath(), models.CanonicalColumns, rows); err != nil {
		return false, err
	}
	return true, nil
}

// -----------------------------------------------------------------------------

// MonthlyPath is the report location for month.
func (l *Loader) MonthlyPath(month string) string {
	return filepath.Join(l.ReportsDir, MonthlyFilePrefix+safeFileName(month)+monthlyFileExtension)
}

// -----------------------------------------------------------------------------

// WriteMonthlyAggregates writes one report per month and returns how many
// were written. It does nothing when no record was accumulated.
func (l *Loader) WriteMonthlyAggregates() (int, error) {
	if len(l.records) == 0 {
		return 0, nil
	}

	byMonth := make(map[string][][]string)
	var months []string
	for _, agg := range Aggregate(l.records) {
		if _, ok := byMonth[agg.Month]; !ok {
			months = append(months, agg.Month)
		}
		byMonth[agg.Month] = append(byMonth[agg.Month], aggregateRow(agg))
	}

	for _, month := range months {
		if err := writeCSVAtomic(l.MonthlyPath(month), models.MonthlyColumns, byMonth[month]); err != nil {
			return 0, err
		}
	}
	return len(months), nil
}

// -----------------------------------------------------------------------------

type aggregateKey struct {
	month  string
	symbol string
}

type aggregateAcc struct {
	sums   [4]decimal.Decimal
	counts [4]int64
	volume decimal.Decimal
	rows   int
}

// Aggregate groups records by (month, symbol) and returns the summaries sorted
// by month then symbol. A record without month falls back to its timestamp.
func Aggregate(records []models.MCanonicalRecord) []models.MMonthlyAggregate {
	groups := make(map[aggregateKey]*aggregateAcc)

	for _, rec := range records {
		month := rec.Month
		if month == "" && len(rec.Timestamp) >= 7 {
			month = rec.Timestamp[:7]
		}
		key := aggregateKey{month: month, symbol: rec.Symbol}

		acc, ok := groups[key]
		if !ok {
			acc = &aggregateAcc{}
			groups[key] = acc
		}
		acc.rows++

		for i, n := range []*models.Number{rec.Open, rec.High, rec.Low, rec.Close} {
			if n == nil {
				continue
			}
			acc.sums[i] = acc.sums[i].Add(toDecimal(*n))
			acc.counts[i]++
		}
		if rec.Volume != nil {
			acc.volume = acc.volume.Add(toDecimal(*rec.Volume))
		}
	}

	keys := make([]aggregateKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].month != keys[j].month {
			return keys[i].month < keys[j].month
		}
		return keys[i].symbol < keys[j].symbol
	})

	out := make([]models.MMonthlyAggregate, 0, len(keys))
	for _, k := range keys {
		acc := groups[k]
		var means [4]*float64
		for i := range means {
			if acc.counts[i] == 0 {
				continue
			}
			mean := acc.sums[i].Div(decimal.NewFromInt(acc.counts[i])).InexactFloat64()
			means[i] = &mean
		}
		out = append(out, models.MMonthlyAggregate{
			Month:     k.month,
			Symbol:    k.symbol,
			OpenAvg:   means[0],
			HighAvg:   means[1],
			LowAvg:    means[2],
			CloseAvg:  means[3],
			VolumeSum: acc.volume.InexactFloat64(),
			Rows:      acc.rows,
		})
	}
	return out
}

func toDecimal(n models.Number) decimal.Decimal {
	if n.IsFloat {
		return decimal.NewFromFloat(n.Float)
	}
	return decimal.NewFromInt(n.Int)
}

func aggregateRow(agg models.MMonthlyAggregate) []string {
	return []string{
		agg.Month,
		agg.Symbol,
		formatOptional(agg.OpenAvg),
		formatOptional(agg.HighAvg),
		formatOptional(agg.LowAvg),
		formatOptional(agg.CloseAvg),
		strconv.FormatFloat(agg.VolumeSum, 'f', -1, 64),
		strconv.Itoa(agg.Rows),
	}
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return models.FormatFloat(*v)
}

// -----------------------------------------------------------------------------

// writeCSVAtomic writes header and rows to a temporary file next to path and
// renames it over path, so readers never see a half-written artifact.
func writeCSVAtomic(path string, header []string, rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return helpers.NewPersistenceError(path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return helpers.NewPersistenceError(path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return helpers.NewPersistenceError(path, err)
	}
	if err := tmp.Close(); err != nil {
		return helpers.NewPersistenceError(path, err)
	}
	if err := os.Chmod(tmpName, artifactFileMode); err != nil {
		return helpers.NewPersistenceError(path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return helpers.NewPersistenceError(path, fmt.Errorf("replace: %w", err))
	}
	return nil
}
