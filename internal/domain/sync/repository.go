package sync

import (
	"context"
	"time"

	"possync/internal/domain/product"
	"possync/internal/domain/sale"
	"possync/internal/domain/stock"
)

// Repository is the server-side persistence surface for sync operations.
type Repository interface {
	// InsertSales stores uploaded sales, skipping duplicates by invoice
	// number. Returns the number of rows actually inserted.
	InsertSales(ctx context.Context, sales []sale.Sale) (int, error)

	// InsertMovements stores uploaded stock movements, skipping duplicates
	// by movement ID. Returns the number of rows actually inserted.
	InsertMovements(ctx context.Context, movements []stock.Movement) (int, error)

	// ProductsModifiedSince returns catalog entries changed after the cursor.
	ProductsModifiedSince(ctx context.Context, since time.Time, limit int) ([]product.Product, error)

	// SalesSince returns sales recorded after the cursor by other devices.
	SalesSince(ctx context.Context, since time.Time, excludeDeviceID string, limit int) ([]sale.Sale, error)

	// MovementsSince returns stock movements recorded after the cursor by
	// other devices.
	MovementsSince(ctx context.Context, since time.Time, excludeDeviceID string, limit int) ([]stock.Movement, error)

	// TouchDeviceSync records when a device last uploaded.
	TouchDeviceSync(ctx context.Context, deviceID string, at time.Time) error
}
