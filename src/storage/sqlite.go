package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stock-analysis/src/helpers"
	"stock-analysis/src/logger"
	"stock-analysis/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteDB struct {
	Config models.MStorageConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteDB(cfg models.MStorageConfig, log *logger.Logger) (*SQLiteDB, error) {
	if err := validateTable(cfg.Table); err != nil {
		return nil, err
	}
	return &SQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Initialize(ctx context.Context) error {
	dsn := d.Config.DBPath

	err := helpers.RetryWithBackoff(ctx, d.Logger, "sqlite connect", d.Config.MaxRetries, connectBaseDelay, func() error {
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return err
		}
		d.DB = db
		return nil
	})
	if err != nil {
		return helpers.NewDatabaseError("sqlite connect", err)
	}

	// PRAGMA optimizations
	if _, err := d.DB.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := d.DB.ExecContext(ctx, "PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables(ctx)
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) createTables(ctx context.Context) error {
	// SQLite types: REAL for float64, TEXT for dates
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			ticker TEXT NOT NULL,
			trade_date TEXT NOT NULL,
			month TEXT,
			open REAL,
			high REAL,
			low REAL,
			close REAL,
			volume REAL
		);
	`, d.Config.Table)
	if _, err := d.DB.ExecContext(ctx, query); err != nil {
		return helpers.NewDatabaseError(fmt.Sprintf("create %s", d.Config.Table), err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) SaveStockPricesBulk(ctx context.Context, rows []models.MPriceRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, helpers.NewDatabaseError("begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (ticker, trade_date, month, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, d.Config.Table))
	if err != nil {
		return 0, helpers.NewDatabaseError("prepare insert", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.ExecContext(ctx,
			r.Symbol,
			r.Date.Format(models.TimestampLayout),
			monthOf(r),
			nullable(r.Open),
			nullable(r.High),
			nullable(r.Low),
			nullable(r.Close),
			nullable(r.Volume),
		)
		if err != nil {
			return 0, helpers.NewDatabaseError("insert", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, helpers.NewDatabaseError("commit", err)
	}
	return len(rows), nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) DistinctTickers(ctx context.Context) ([]string, error) {
	rows, err := d.DB.QueryContext(ctx, fmt.Sprintf(`SELECT DISTINCT ticker FROM %s ORDER BY ticker`, d.Config.Table))
	if err != nil {
		return nil, helpers.NewDatabaseError("distinct tickers", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, helpers.NewDatabaseError("scan ticker", err)
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) SampleRows(ctx context.Context, limit int) ([]models.MPriceRow, error) {
	rows, err := d.DB.QueryContext(ctx, fmt.Sprintf(`
		SELECT ticker, trade_date, month, open, high, low, close, volume
		FROM %s ORDER BY ticker, trade_date LIMIT ?
	`, d.Config.Table), limit)
	if err != nil {
		return nil, helpers.NewDatabaseError("sample rows", err)
	}
	defer rows.Close()

	var out []models.MPriceRow
	for rows.Next() {
		var (
			row           models.MPriceRow
			tradeDate     string
			month         sql.NullString
			o, h, l, c, v sql.NullFloat64
		)
		if err := rows.Scan(&row.Symbol, &tradeDate, &month, &o, &h, &l, &c, &v); err != nil {
			return nil, helpers.NewDatabaseError("scan row", err)
		}
		if row.Date, err = time.Parse(models.TimestampLayout, tradeDate); err != nil {
			return nil, helpers.NewDatabaseError("parse trade_date", err)
		}
		row.Month = month.String
		row.Open, row.High, row.Low = fromNullable(o), fromNullable(h), fromNullable(l)
		row.Close, row.Volume = fromNullable(c), fromNullable(v)
		out = append(out, row)
	}
	return out, rows.Err()
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
