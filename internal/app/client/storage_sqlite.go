package client

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"possync/internal/domain/entity"
	"possync/internal/domain/product"
	"possync/internal/domain/sale"
	"possync/internal/domain/stock"
	syncdomain "possync/internal/domain/sync"
)

const timeLayout = time.RFC3339Nano

// SQLiteStore is the till's durable local store. Every business mutation is
// committed together with its transaction-log entry and sync bookkeeping in
// one SQLite transaction, so a crash can never leave a record half-tracked.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init tables: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			sku TEXT NOT NULL,
			name TEXT NOT NULL,
			barcode TEXT NOT NULL DEFAULT '',
			price INTEGER NOT NULL,
			active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			device_id TEXT NOT NULL DEFAULT '',
			sync_status TEXT NOT NULL,
			server_synced_at TEXT,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS sales (
			id TEXT PRIMARY KEY,
			invoice_no TEXT NOT NULL UNIQUE,
			total INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			device_id TEXT NOT NULL,
			sync_status TEXT NOT NULL,
			server_synced_at TEXT,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS sale_items (
			id TEXT PRIMARY KEY,
			sale_id TEXT NOT NULL REFERENCES sales(id),
			product_id TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			unit_price INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS stock_movements (
			id TEXT PRIMARY KEY,
			product_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			delta INTEGER NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			occurred_at TEXT NOT NULL,
			device_id TEXT NOT NULL,
			sync_status TEXT NOT NULL,
			server_synced_at TEXT,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS transaction_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			op TEXT NOT NULL,
			logged_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS sync_cursor (
			device_id TEXT PRIMARY KEY,
			last_sync_timestamp TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS sync_stats (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			total_syncs INTEGER NOT NULL DEFAULT 0,
			total_uploaded INTEGER NOT NULL DEFAULT 0,
			total_downloaded INTEGER NOT NULL DEFAULT 0,
			total_conflicts_resolved INTEGER NOT NULL DEFAULT 0,
			last_success TEXT,
			last_failure TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_sales_status ON sales(sync_status);
		CREATE INDEX IF NOT EXISTS idx_movements_status ON stock_movements(sync_status);
		CREATE INDEX IF NOT EXISTS idx_movements_product ON stock_movements(product_id);
	`)
	return err
}

// RecordSale commits a sale, its items, the matching stock movements and the
// transaction-log entries in a single local transaction, before any network
// attempt can happen.
func (s *SQLiteStore) RecordSale(sl *sale.Sale) error {
	if len(sl.Items) == 0 {
		return sale.ErrEmptySale
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO sales (id, invoice_no, total, created_at, device_id, sync_status, server_synced_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL, ?)
	`, sl.ID.String(), sl.InvoiceNo, sl.Total, formatTime(sl.CreatedAt),
		sl.DeviceID, string(sl.Status), formatTime(sl.UpdatedAt))
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return sale.ErrDuplicateInvoice
		}
		return fmt.Errorf("insert sale: %w", err)
	}

	for _, item := range sl.Items {
		_, err = tx.Exec(`
			INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price)
			VALUES (?, ?, ?, ?, ?)
		`, item.ID.String(), sl.ID.String(), item.ProductID.String(), item.Quantity, item.UnitPrice)
		if err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}

		mv := stock.NewMovement(sl.DeviceID, item.ProductID, stock.KindSale, -item.Quantity, sl.InvoiceNo)
		if err := insertMovementTx(tx, mv); err != nil {
			return err
		}
		if err := logTx(tx, "stock_movement", mv.ID.String(), entity.OpInsert); err != nil {
			return err
		}
	}

	if err := logTx(tx, "sale", sl.ID.String(), entity.OpInsert); err != nil {
		return err
	}

	return tx.Commit()
}

// AdjustStock commits a manual movement with its log entry.
func (s *SQLiteStore) AdjustStock(mv *stock.Movement) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := insertMovementTx(tx, mv); err != nil {
		return err
	}
	if err := logTx(tx, "stock_movement", mv.ID.String(), entity.OpInsert); err != nil {
		return err
	}

	return tx.Commit()
}

func insertMovementTx(tx *sql.Tx, mv *stock.Movement) error {
	_, err := tx.Exec(`
		INSERT INTO stock_movements (id, product_id, kind, delta, reason, occurred_at, device_id, sync_status, server_synced_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, mv.ID.String(), mv.ProductID.String(), string(mv.Kind), mv.Delta, mv.Reason,
		formatTime(mv.OccurredAt), mv.DeviceID, string(mv.Status),
		formatNullableTime(mv.ServerSyncedAt), formatTime(mv.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

func logTx(tx *sql.Tx, entityType, entityID string, op entity.Operation) error {
	_, err := tx.Exec(`
		INSERT INTO transaction_log (entity_type, entity_id, op, logged_at)
		VALUES (?, ?, ?, ?)
	`, entityType, entityID, string(op), formatTime(time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("write transaction log: %w", err)
	}
	return nil
}

// UnsyncedSales returns the upload candidates with their items.
func (s *SQLiteStore) UnsyncedSales() ([]sale.Sale, error) {
	rows, err := s.db.Query(`
		SELECT id, invoice_no, total, created_at, device_id, sync_status, server_synced_at, updated_at
		FROM sales
		WHERE sync_status IN (?, ?)
		ORDER BY created_at ASC
	`, string(entity.NotSynced), string(entity.SyncFailed))
	if err != nil {
		return nil, fmt.Errorf("query unsynced sales: %w", err)
	}
	defer rows.Close()

	var sales []sale.Sale
	for rows.Next() {
		sl, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, *sl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sales {
		items, err := s.saleItems(sales[i].ID)
		if err != nil {
			return nil, err
		}
		sales[i].Items = items
	}

	return sales, nil
}

func (s *SQLiteStore) saleItems(saleID uuid.UUID) ([]sale.Item, error) {
	rows, err := s.db.Query(`
		SELECT id, sale_id, product_id, quantity, unit_price
		FROM sale_items WHERE sale_id = ?
	`, saleID.String())
	if err != nil {
		return nil, fmt.Errorf("query sale items: %w", err)
	}
	defer rows.Close()

	var items []sale.Item
	for rows.Next() {
		var item sale.Item
		var id, sid, pid string
		if err := rows.Scan(&id, &sid, &pid, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		item.ID, _ = uuid.Parse(id)
		item.SaleID, _ = uuid.Parse(sid)
		item.ProductID, _ = uuid.Parse(pid)
		items = append(items, item)
	}
	return items, rows.Err()
}

// UnsyncedMovements returns movements still waiting for upload.
func (s *SQLiteStore) UnsyncedMovements() ([]stock.Movement, error) {
	return s.queryMovements(`
		SELECT id, product_id, kind, delta, reason, occurred_at, device_id, sync_status, server_synced_at, updated_at
		FROM stock_movements
		WHERE sync_status IN (?, ?)
		ORDER BY occurred_at ASC
	`, string(entity.NotSynced), string(entity.SyncFailed))
}

// Movements returns the full movement log for quantity replay.
func (s *SQLiteStore) Movements() ([]stock.Movement, error) {
	return s.queryMovements(`
		SELECT id, product_id, kind, delta, reason, occurred_at, device_id, sync_status, server_synced_at, updated_at
		FROM stock_movements
		ORDER BY occurred_at ASC
	`)
}

func (s *SQLiteStore) queryMovements(query string, args ...interface{}) ([]stock.Movement, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query movements: %w", err)
	}
	defer rows.Close()

	var movements []stock.Movement
	for rows.Next() {
		var mv stock.Movement
		var id, pid, kind, occurredAt, updatedAt, status string
		var serverSyncedAt sql.NullString
		if err := rows.Scan(&id, &pid, &kind, &mv.Delta, &mv.Reason,
			&occurredAt, &mv.DeviceID, &status, &serverSyncedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		mv.ID, _ = uuid.Parse(id)
		mv.ProductID, _ = uuid.Parse(pid)
		mv.Kind = stock.Kind(kind)
		mv.Status = entity.SyncStatus(status)
		mv.OccurredAt = parseTime(occurredAt)
		mv.UpdatedAt = parseTime(updatedAt)
		mv.ServerSyncedAt = parseNullableTime(serverSyncedAt)
		movements = append(movements, mv)
	}
	return movements, rows.Err()
}

// MarkUploaded flips the uploaded records to Synced with the acknowledgement
// time, atomically for the whole batch.
func (s *SQLiteStore) MarkUploaded(saleIDs, movementIDs []uuid.UUID, at time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, id := range saleIDs {
		if _, err := tx.Exec(`
			UPDATE sales SET sync_status = ?, server_synced_at = ? WHERE id = ?
		`, string(entity.Synced), formatTime(at), id.String()); err != nil {
			return fmt.Errorf("mark sale synced: %w", err)
		}
	}
	for _, id := range movementIDs {
		if _, err := tx.Exec(`
			UPDATE stock_movements SET sync_status = ?, server_synced_at = ? WHERE id = ?
		`, string(entity.Synced), formatTime(at), id.String()); err != nil {
			return fmt.Errorf("mark movement synced: %w", err)
		}
	}

	return tx.Commit()
}

// MarkUploadFailed leaves the batch queued as SyncFailed for the next cycle.
func (s *SQLiteStore) MarkUploadFailed(saleIDs, movementIDs []uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, id := range saleIDs {
		if _, err := tx.Exec(`UPDATE sales SET sync_status = ? WHERE id = ?`,
			string(entity.SyncFailed), id.String()); err != nil {
			return fmt.Errorf("mark sale failed: %w", err)
		}
	}
	for _, id := range movementIDs {
		if _, err := tx.Exec(`UPDATE stock_movements SET sync_status = ? WHERE id = ?`,
			string(entity.SyncFailed), id.String()); err != nil {
			return fmt.Errorf("mark movement failed: %w", err)
		}
	}

	return tx.Commit()
}

// GetProduct returns the local catalog entry or nil when absent.
func (s *SQLiteStore) GetProduct(id uuid.UUID) (*product.Product, error) {
	row := s.db.QueryRow(`
		SELECT id, sku, name, barcode, price, active, created_at, device_id, sync_status, server_synced_at, updated_at
		FROM products WHERE id = ?
	`, id.String())

	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Products lists the local catalog.
func (s *SQLiteStore) Products() ([]product.Product, error) {
	rows, err := s.db.Query(`
		SELECT id, sku, name, barcode, price, active, created_at, device_id, sync_status, server_synced_at, updated_at
		FROM products ORDER BY sku ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// HasSale reports whether a sale with this ID exists locally.
func (s *SQLiteStore) HasSale(id uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM sales WHERE id = ?)`, id.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check sale: %w", err)
	}
	return exists, nil
}

// GetSale loads one sale with items.
func (s *SQLiteStore) GetSale(id uuid.UUID) (*sale.Sale, error) {
	row := s.db.QueryRow(`
		SELECT id, invoice_no, total, created_at, device_id, sync_status, server_synced_at, updated_at
		FROM sales WHERE id = ?
	`, id.String())

	sl, err := scanSale(row)
	if err == sql.ErrNoRows {
		return nil, sale.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get sale: %w", err)
	}

	items, err := s.saleItems(sl.ID)
	if err != nil {
		return nil, err
	}
	sl.Items = items
	return sl, nil
}

// HasMovement reports whether a movement with this ID exists locally.
func (s *SQLiteStore) HasMovement(id uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM stock_movements WHERE id = ?)`, id.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check movement: %w", err)
	}
	return exists, nil
}

// ApplyResolution commits the merged download in one transaction: server-won
// products, remote sales, merged movements and the advanced cursor all land
// together or not at all.
func (s *SQLiteStore) ApplyResolution(res *Resolution, deviceID string, cursor time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for i := range res.Products {
		p := &res.Products[i]
		_, err := tx.Exec(`
			INSERT INTO products (id, sku, name, barcode, price, active, created_at, device_id, sync_status, server_synced_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				sku = excluded.sku,
				name = excluded.name,
				barcode = excluded.barcode,
				price = excluded.price,
				active = excluded.active,
				sync_status = excluded.sync_status,
				server_synced_at = excluded.server_synced_at,
				updated_at = excluded.updated_at
		`, p.ID.String(), p.SKU, p.Name, p.Barcode, p.Price, boolToInt(p.Active),
			formatTime(p.CreatedAt), p.DeviceID, string(entity.Synced),
			formatTime(cursor), formatTime(p.UpdatedAt))
		if err != nil {
			return fmt.Errorf("upsert product: %w", err)
		}
		if err := logTx(tx, "product", p.ID.String(), entity.OpUpdate); err != nil {
			return err
		}
	}

	for i := range res.Sales {
		sl := &res.Sales[i]
		_, err := tx.Exec(`
			INSERT INTO sales (id, invoice_no, total, created_at, device_id, sync_status, server_synced_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`, sl.ID.String(), sl.InvoiceNo, sl.Total, formatTime(sl.CreatedAt),
			sl.DeviceID, string(entity.Synced), formatTime(cursor), formatTime(sl.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert remote sale: %w", err)
		}
		for _, item := range sl.Items {
			_, err := tx.Exec(`
				INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(id) DO NOTHING
			`, item.ID.String(), sl.ID.String(), item.ProductID.String(), item.Quantity, item.UnitPrice)
			if err != nil {
				return fmt.Errorf("insert remote sale item: %w", err)
			}
		}
		if err := logTx(tx, "sale", sl.ID.String(), entity.OpInsert); err != nil {
			return err
		}
	}

	for i := range res.Movements {
		mv := res.Movements[i]
		mv.MarkSynced(cursor)
		if err := insertMovementTx(tx, &mv); err != nil {
			return err
		}
		if err := logTx(tx, "stock_movement", mv.ID.String(), entity.OpInsert); err != nil {
			return err
		}
	}

	now := formatTime(time.Now().UTC())
	_, err = tx.Exec(`
		INSERT INTO sync_cursor (device_id, last_sync_timestamp, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			last_sync_timestamp = excluded.last_sync_timestamp,
			updated_at = excluded.updated_at
	`, deviceID, formatTime(cursor), now)
	if err != nil {
		return fmt.Errorf("advance cursor: %w", err)
	}

	return tx.Commit()
}

// Cursor returns the device's last successful sync position, zero when the
// device has never completed a download.
func (s *SQLiteStore) Cursor(deviceID string) (syncdomain.Cursor, error) {
	var c syncdomain.Cursor
	var last, updated string
	err := s.db.QueryRow(`
		SELECT device_id, last_sync_timestamp, updated_at FROM sync_cursor WHERE device_id = ?
	`, deviceID).Scan(&c.DeviceID, &last, &updated)
	if err == sql.ErrNoRows {
		return syncdomain.Cursor{DeviceID: deviceID}, nil
	}
	if err != nil {
		return c, fmt.Errorf("get cursor: %w", err)
	}
	c.LastSyncTimestamp = parseTime(last)
	c.UpdatedAt = parseTime(updated)
	return c, nil
}

// Stats returns the cumulative sync statistics.
func (s *SQLiteStore) Stats() (*SyncStats, error) {
	var st SyncStats
	var lastSuccess, lastFailure sql.NullString
	err := s.db.QueryRow(`
		SELECT total_syncs, total_uploaded, total_downloaded, total_conflicts_resolved, last_success, last_failure
		FROM sync_stats WHERE id = 1
	`).Scan(&st.TotalSyncs, &st.TotalUploaded, &st.TotalDownloaded,
		&st.TotalConflictsResolved, &lastSuccess, &lastFailure)
	if err == sql.ErrNoRows {
		return &SyncStats{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	if lastSuccess.Valid {
		st.LastSuccessful = parseTime(lastSuccess.String)
	}
	if lastFailure.Valid {
		st.LastFailed = parseTime(lastFailure.String)
	}
	return &st, nil
}

// UpdateStats folds a cycle result into the cumulative statistics.
func (s *SQLiteStore) UpdateStats(result *CycleResult) error {
	var success, failure interface{}
	if result.Success {
		success = formatTime(time.Now().UTC())
	}
	if !result.Success {
		failure = formatTime(time.Now().UTC())
	}

	_, err := s.db.Exec(`
		INSERT INTO sync_stats (id, total_syncs, total_uploaded, total_downloaded, total_conflicts_resolved, last_success, last_failure)
		VALUES (1, 1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			total_syncs = total_syncs + 1,
			total_uploaded = total_uploaded + excluded.total_uploaded,
			total_downloaded = total_downloaded + excluded.total_downloaded,
			total_conflicts_resolved = total_conflicts_resolved + excluded.total_conflicts_resolved,
			last_success = COALESCE(excluded.last_success, last_success),
			last_failure = COALESCE(excluded.last_failure, last_failure)
	`, result.Uploaded, result.Downloaded, result.ConflictsResolved, success, failure)
	if err != nil {
		return fmt.Errorf("update stats: %w", err)
	}
	return nil
}

// TransactionLog returns the most recent durability entries, newest first.
func (s *SQLiteStore) TransactionLog(limit int) ([]entity.TransactionLogEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, entity_type, entity_id, op, logged_at
		FROM transaction_log ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query transaction log: %w", err)
	}
	defer rows.Close()

	var entries []entity.TransactionLogEntry
	for rows.Next() {
		var e entity.TransactionLogEntry
		var op, loggedAt string
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &op, &loggedAt); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		e.Op = entity.Operation(op)
		e.LoggedAt = parseTime(loggedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSale(row rowScanner) (*sale.Sale, error) {
	var sl sale.Sale
	var id, createdAt, updatedAt, status string
	var serverSyncedAt sql.NullString
	if err := row.Scan(&id, &sl.InvoiceNo, &sl.Total, &createdAt,
		&sl.DeviceID, &status, &serverSyncedAt, &updatedAt); err != nil {
		return nil, err
	}
	sl.ID, _ = uuid.Parse(id)
	sl.Status = entity.SyncStatus(status)
	sl.CreatedAt = parseTime(createdAt)
	sl.UpdatedAt = parseTime(updatedAt)
	sl.ServerSyncedAt = parseNullableTime(serverSyncedAt)
	return &sl, nil
}

func scanProduct(row rowScanner) (*product.Product, error) {
	var p product.Product
	var id, createdAt, updatedAt, status string
	var active int
	var serverSyncedAt sql.NullString
	if err := row.Scan(&id, &p.SKU, &p.Name, &p.Barcode, &p.Price, &active,
		&createdAt, &p.DeviceID, &status, &serverSyncedAt, &updatedAt); err != nil {
		return nil, err
	}
	p.ID, _ = uuid.Parse(id)
	p.Active = active != 0
	p.Status = entity.SyncStatus(status)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	p.ServerSyncedAt = parseNullableTime(serverSyncedAt)
	return &p, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatNullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

func parseNullableTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t := parseTime(s.String)
	return &t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
