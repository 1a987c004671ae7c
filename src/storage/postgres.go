package storage

import (
	"context"
	"database/sql"
	"fmt"

	"stock-analysis/src/helpers"
	"stock-analysis/src/logger"
	"stock-analysis/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config models.MStorageConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg models.MStorageConfig, log *logger.Logger) (*PostgresDB, error) {
	if err := validateTable(cfg.Table); err != nil {
		return nil, err
	}
	if cfg.Schema != "" {
		if err := validateTable(cfg.Schema); err != nil {
			return nil, fmt.Errorf("invalid schema: %w", err)
		}
	}

	return &PostgresDB{
		Config: cfg,
		Schema: cfg.Schema,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

// table returns the quoted, schema-qualified table name.
func (d *PostgresDB) table() string {
	if d.Schema == "" {
		return fmt.Sprintf(`"%s"`, d.Config.Table)
	}
	return fmt.Sprintf(`"%s"."%s"`, d.Schema, d.Config.Table)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize(ctx context.Context) error {
	dsn := d.Config.DBConnectionString

	err := helpers.RetryWithBackoff(ctx, d.Logger, "postgres connect", d.Config.MaxRetries, connectBaseDelay, func() error {
		db, err := sql.Open("postgres", dsn)
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
		return helpers.NewDatabaseError("postgres connect", err)
	}

	// Create Schema
	if d.Schema != "" {
		if _, err := d.DB.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
			return helpers.NewDatabaseError(fmt.Sprintf("create schema %s", d.Schema), err)
		}
	}

	if err := d.createTables(ctx); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Table: %s)", d.table())
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) createTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			ticker TEXT NOT NULL,
			trade_date TIMESTAMP NOT NULL,
			month TEXT,
			open DOUBLE PRECISION,
			high DOUBLE PRECISION,
			low DOUBLE PRECISION,
			close DOUBLE PRECISION,
			volume DOUBLE PRECISION
		);
	`, d.table())
	if _, err := d.DB.ExecContext(ctx, query); err != nil {
		return helpers.NewDatabaseError(fmt.Sprintf("create %s", d.table()), err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveStockPricesBulk(ctx context.Context, rows []models.MPriceRow) (int, error) {
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, d.table()))
	if err != nil {
		return 0, helpers.NewDatabaseError("prepare insert", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.ExecContext(ctx,
			r.Symbol,
			r.Date,
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

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
