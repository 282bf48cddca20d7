package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"possync/internal/domain/product"
	"possync/internal/domain/sale"
	"possync/internal/domain/stock"
	syncdomain "possync/internal/domain/sync"
)

// SyncRepository is the authority-side store for uploaded records.
// Sales and movements are insert-only: a replayed upload hits the conflict
// target and changes nothing, which is what makes retries safe.
type SyncRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewSyncRepository(pool *pgxpool.Pool, log *slog.Logger) *SyncRepository {
	return &SyncRepository{
		pool: pool,
		log:  log,
	}
}

func (r *SyncRepository) InsertSales(ctx context.Context, sales []sale.Sale) (int, error) {
	inserted := 0
	for i := range sales {
		sl := &sales[i]
		items, err := json.Marshal(sl.Items)
		if err != nil {
			return inserted, fmt.Errorf("marshal sale items: %w", err)
		}

		tag, err := r.pool.Exec(ctx, `
			INSERT INTO sales (id, invoice_no, items, total, created_at, device_id, received_at)
			VALUES ($1, $2, $3, $4, $5, $6, now())
			ON CONFLICT (invoice_no) DO NOTHING
		`, sl.ID, sl.InvoiceNo, items, sl.Total, sl.CreatedAt, sl.DeviceID)
		if err != nil {
			return inserted, fmt.Errorf("insert sale %s: %w", sl.InvoiceNo, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (r *SyncRepository) InsertMovements(ctx context.Context, movements []stock.Movement) (int, error) {
	inserted := 0
	for i := range movements {
		mv := &movements[i]
		tag, err := r.pool.Exec(ctx, `
			INSERT INTO stock_movements (id, product_id, kind, delta, reason, occurred_at, device_id, received_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, now())
			ON CONFLICT (id) DO NOTHING
		`, mv.ID, mv.ProductID, string(mv.Kind), mv.Delta, mv.Reason, mv.OccurredAt, mv.DeviceID)
		if err != nil {
			return inserted, fmt.Errorf("insert movement %s: %w", mv.ID, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (r *SyncRepository) ProductsModifiedSince(ctx context.Context, since time.Time, limit int) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, sku, name, barcode, price, active, created_at, updated_at
		FROM products
		WHERE updated_at > $1
		ORDER BY updated_at ASC
		LIMIT $2
	`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []product.Product
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Barcode, &p.Price,
			&p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *SyncRepository) SalesSince(ctx context.Context, since time.Time, excludeDeviceID string, limit int) ([]sale.Sale, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, invoice_no, items, total, created_at, device_id, received_at
		FROM sales
		WHERE received_at > $1 AND device_id <> $2
		ORDER BY received_at ASC
		LIMIT $3
	`, since, excludeDeviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	var sales []sale.Sale
	for rows.Next() {
		var sl sale.Sale
		var items []byte
		if err := rows.Scan(&sl.ID, &sl.InvoiceNo, &items, &sl.Total,
			&sl.CreatedAt, &sl.DeviceID, &sl.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		if len(items) > 0 {
			if err := json.Unmarshal(items, &sl.Items); err != nil {
				return nil, fmt.Errorf("unmarshal sale items: %w", err)
			}
		}
		sales = append(sales, sl)
	}
	return sales, rows.Err()
}

func (r *SyncRepository) MovementsSince(ctx context.Context, since time.Time, excludeDeviceID string, limit int) ([]stock.Movement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, kind, delta, reason, occurred_at, device_id, received_at
		FROM stock_movements
		WHERE received_at > $1 AND device_id <> $2
		ORDER BY received_at ASC
		LIMIT $3
	`, since, excludeDeviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("query movements: %w", err)
	}
	defer rows.Close()

	var movements []stock.Movement
	for rows.Next() {
		var mv stock.Movement
		var kind string
		if err := rows.Scan(&mv.ID, &mv.ProductID, &kind, &mv.Delta,
			&mv.Reason, &mv.OccurredAt, &mv.DeviceID, &mv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		mv.Kind = stock.Kind(kind)
		movements = append(movements, mv)
	}
	return movements, rows.Err()
}

func (r *SyncRepository) TouchDeviceSync(ctx context.Context, deviceID string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE devices SET last_sync_at = $2, last_seen_at = $2 WHERE id = $1
	`, deviceID, at)
	if err != nil {
		return fmt.Errorf("touch device sync: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return syncdomain.ErrDeviceNotFound
	}
	return nil
}
