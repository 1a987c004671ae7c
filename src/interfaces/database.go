package interfaces

import (
	"context"

	"stock-analysis/src/models"
)

// -----------------------------------------------------------------------------
// IDatabase defines the contract for the persistence store collaborator.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// -----------------------------------------------------------------------------

	// Initialize connects and creates the price table if it does not exist.
	Initialize(ctx context.Context) error

	// -----------------------------------------------------------------------------

	// SaveStockPricesBulk appends rows in one transaction and returns how many were stored.
	SaveStockPricesBulk(ctx context.Context, rows []models.MPriceRow) (int, error)

	// -----------------------------------------------------------------------------

	// DistinctTickers returns every stored ticker, sorted.
	DistinctTickers(ctx context.Context) ([]string, error)

	// -----------------------------------------------------------------------------

	// SampleRows returns up to limit stored rows.
	SampleRows(ctx context.Context, limit int) ([]models.MPriceRow, error)

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
