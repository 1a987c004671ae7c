package storage

import (
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"stock-analysis/src/interfaces"
	"stock-analysis/src/logger"
	"stock-analysis/src/models"
)

// Connection retry policy for Initialize.
const connectBaseDelay = 500 * time.Millisecond

var tableNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// -----------------------------------------------------------------------------

// NewDatabase builds the store selected by cfg.DBType. It does not connect.
func NewDatabase(cfg models.MStorageConfig, log *logger.Logger) (interfaces.IDatabase, error) {
	switch cfg.DBType {
	case "postgres":
		return NewPostgresDB(cfg, log)
	case "sqlite", "":
		return NewSQLiteDB(cfg, log)
	default:
		return nil, fmt.Errorf("unsupported database type: %q", cfg.DBType)
	}
}

// -----------------------------------------------------------------------------

func validateTable(table string) error {
	if !tableNameRegex.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	return nil
}

// -----------------------------------------------------------------------------

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// monthOf returns row.Month, derived from the date when empty.
func monthOf(row models.MPriceRow) string {
	if row.Month != "" {
		return row.Month
	}
	return row.Date.Format("2006-01")
}
