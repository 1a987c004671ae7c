package storage

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"stock-analysis/src/logger"
	"stock-analysis/src/models"

	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(models.MStorageConfig{
		DBType:     "sqlite",
		DBPath:     filepath.Join(t.TempDir(), "test.db"),
		Table:      "stock_prices",
		MaxRetries: 1,
	}, logger.NewLoggerWithWriter(io.Discard, "INFO", "storage"))
	require.NoError(t, err)
	require.NoError(t, db.Initialize(context.Background()))
	t.Cleanup(func() { db.Close() })
	return db
}

func f(v float64) *float64 { return &v }

func TestSQLiteSaveAndRead(t *testing.T) {
	ctx := context.Background()
	db := newTestSQLite(t)

	rows := []models.MPriceRow{
		{Symbol: "TCS", Date: time.Date(2023, 10, 2, 0, 0, 0, 0, time.UTC), Month: "2023-10", Close: f(100), Volume: f(1000)},
		{Symbol: "SBIN", Date: time.Date(2023, 10, 30, 0, 0, 0, 0, time.UTC), Open: f(600), Close: f(602.95)},
	}
	n, err := db.SaveStockPricesBulk(ctx, rows)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	// appends, never replaces
	_, err = db.SaveStockPricesBulk(ctx, rows[:1])
	require.NoError(t, err)

	tickers, err := db.DistinctTickers(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"SBIN", "TCS"}, tickers)

	sample, err := db.SampleRows(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sample, 3)

	sbin := sample[0]
	require.Equal(t, "SBIN", sbin.Symbol)
	require.Equal(t, "2023-10", sbin.Month)
	require.Equal(t, 602.95, *sbin.Close)
	require.Equal(t, 600.0, *sbin.Open)
	require.Nil(t, sbin.Volume)
	require.True(t, rows[1].Date.Equal(sbin.Date))

	limited, err := db.SampleRows(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
}

func TestSQLiteInitializeKeepsExistingRows(t *testing.T) {
	ctx := context.Background()
	db := newTestSQLite(t)

	_, err := db.SaveStockPricesBulk(ctx, []models.MPriceRow{{Symbol: "TCS", Date: time.Now(), Close: f(1)}})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	require.NoError(t, db.Initialize(ctx))
	tickers, err := db.DistinctTickers(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"TCS"}, tickers)
}

func TestSaveEmptyBatch(t *testing.T) {
	n, err := newTestSQLite(t).SaveStockPricesBulk(context.Background(), nil)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestNewDatabase(t *testing.T) {
	log := logger.NewLoggerWithWriter(io.Discard, "INFO", "storage")

	db, err := NewDatabase(models.MStorageConfig{DBType: "sqlite", Table: "stock_prices"}, log)
	require.NoError(t, err)
	require.IsType(t, &SQLiteDB{}, db)

	db, err = NewDatabase(models.MStorageConfig{DBType: "postgres", Table: "stock_prices", Schema: "markets"}, log)
	require.NoError(t, err)
	require.Equal(t, `"markets"."stock_prices"`, db.(*PostgresDB).table())

	_, err = NewDatabase(models.MStorageConfig{DBType: "mysql", Table: "stock_prices"}, log)
	require.Error(t, err)

	_, err = NewDatabase(models.MStorageConfig{DBType: "sqlite", Table: "prices; DROP TABLE x"}, log)
	require.Error(t, err)
}
