package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"possync/internal/domain/device"
)

type DeviceRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewDeviceRepository(pool *pgxpool.Pool, log *slog.Logger) *DeviceRepository {
	return &DeviceRepository{
		pool: pool,
		log:  log,
	}
}

func (r *DeviceRepository) Upsert(ctx context.Context, dev *device.Device) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO devices (id, name, registered_at, last_seen_at, last_sync_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			last_seen_at = EXCLUDED.last_seen_at
	`, dev.ID, dev.Name, dev.RegisteredAt, dev.LastSeenAt, dev.LastSyncAt)
	if err != nil {
		return fmt.Errorf("upsert device: %w", err)
	}
	return nil
}

func (r *DeviceRepository) Find(ctx context.Context, deviceID string) (*device.Device, error) {
	var dev device.Device
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, registered_at, last_seen_at, last_sync_at
		FROM devices WHERE id = $1
	`, deviceID).Scan(&dev.ID, &dev.Name, &dev.RegisteredAt, &dev.LastSeenAt, &dev.LastSyncAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, device.ErrNotRegistered
	}
	if err != nil {
		return nil, fmt.Errorf("find device: %w", err)
	}
	return &dev, nil
}

func (r *DeviceRepository) SaveSession(ctx context.Context, deviceID, tokenHash string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO device_sessions (token_hash, device_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE SET expires_at = EXCLUDED.expires_at
	`, tokenHash, deviceID, expiresAt)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *DeviceRepository) LookupSession(ctx context.Context, tokenHash string) (string, error) {
	var deviceID string
	err := r.pool.QueryRow(ctx, `
		SELECT device_id FROM device_sessions
		WHERE token_hash = $1 AND expires_at > now()
	`, tokenHash).Scan(&deviceID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", device.ErrInvalidToken
	}
	if err != nil {
		return "", fmt.Errorf("lookup session: %w", err)
	}
	return deviceID, nil
}
