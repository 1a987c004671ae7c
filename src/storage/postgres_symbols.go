package storage

import (
	"context"
	"database/sql"
	"fmt"

	"stock-analysis/src/helpers"
	"stock-analysis/src/models"
)

// Info: Separate file for read-side queries specific to Postgres

// -----------------------------------------------------------------------------

// DistinctTickers returns every stored ticker, sorted.
func (d *PostgresDB) DistinctTickers(ctx context.Context) ([]string, error) {
	rows, err := d.DB.QueryContext(ctx, fmt.Sprintf(`SELECT DISTINCT ticker FROM %s ORDER BY ticker`, d.table()))
	if err != nil {
		return nil, helpers.NewDatabaseError("distinct tickers", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, helpers.NewDatabaseError("scan ticker", err)
		}
		if s != "" {
			tickers = append(tickers, s)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, helpers.NewDatabaseError("distinct tickers", err)
	}

	return tickers, nil
}

// -----------------------------------------------------------------------------

// SampleRows returns up to limit stored rows ordered by ticker and date.
func (d *PostgresDB) SampleRows(ctx context.Context, limit int) ([]models.MPriceRow, error) {
	rows, err := d.DB.QueryContext(ctx, fmt.Sprintf(`
		SELECT ticker, trade_date, month, open, high, low, close, volume
		FROM %s ORDER BY ticker, trade_date LIMIT $1
	`, d.table()), limit)
	if err != nil {
		return nil, helpers.NewDatabaseError("sample rows", err)
	}
	defer rows.Close()

	var out []models.MPriceRow
	for rows.Next() {
		var (
			row           models.MPriceRow
			month         sql.NullString
			o, h, l, c, v sql.NullFloat64
		)
		if err := rows.Scan(&row.Symbol, &row.Date, &month, &o, &h, &l, &c, &v); err != nil {
			return nil, helpers.NewDatabaseError("scan row", err)
		}
		row.Month = month.String
		row.Open, row.High, row.Low = fromNullable(o), fromNullable(h), fromNullable(l)
		row.Close, row.Volume = fromNullable(c), fromNullable(v)
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, helpers.NewDatabaseError("sample rows", err)
	}

	return out, nil
}
