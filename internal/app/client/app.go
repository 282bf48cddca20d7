package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"possync/internal/app/client/config"
	"possync/internal/domain/entity"
	"possync/internal/domain/product"
	"possync/internal/domain/sale"
	"possync/internal/domain/stock"
	syncdomain "possync/internal/domain/sync"
)

// App wires the till agent together: durable store, API client, credential
// manager, connectivity monitor and the sync engine.
type App struct {
	config  *config.Config
	log     *slog.Logger
	store   *SQLiteStore
	api     *apiClient
	creds   *CredentialManager
	monitor *Monitor
	engine  *Engine
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	if cfg.DeviceID == "" {
		return nil, fmt.Errorf("DEVICE_ID is required")
	}

	store, err := NewSQLiteStore(cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	api := NewAPIClient(cfg, log)
	creds := NewCredentialManager(api, log, cfg.DeviceID, cfg.APIKey)
	retrier := NewRetrier(cfg.RetryMaxAttempts,
		time.Duration(cfg.RetryInitialDelay)*time.Millisecond,
		float64(cfg.RetryMultiplier), log)
	monitor := NewMonitor(ProbeFunc(api.HealthCheck), log, time.Duration(cfg.ProbeInterval)*time.Second)

	engine := NewEngine(EngineParams{
		Store:      store,
		API:        api,
		Creds:      creds,
		Retrier:    retrier,
		Monitor:    monitor,
		Log:        log,
		DeviceID:   cfg.DeviceID,
		DeviceName: cfg.DeviceName,
		Interval:   time.Duration(cfg.SyncInterval) * time.Second,
	})

	return &App{
		config:  cfg,
		log:     log,
		store:   store,
		api:     api,
		creds:   creds,
		monitor: monitor,
		engine:  engine,
	}, nil
}

// DeviceID returns the configured till identity.
func (a *App) DeviceID() string {
	return a.config.DeviceID
}

// CheckConnection probes server reachability once.
func (a *App) CheckConnection(ctx context.Context) error {
	return a.api.HealthCheck(ctx)
}

// Register announces this till to the authority server.
func (a *App) Register(ctx context.Context) error {
	return a.engine.Register(ctx)
}

// Authenticate obtains an access credential using the configured API key.
func (a *App) Authenticate(ctx context.Context) error {
	return a.creds.EnsureValid(ctx)
}

// AuthenticateWithKey authenticates with an operator-provided key instead of
// the configured one.
func (a *App) AuthenticateWithKey(ctx context.Context, apiKey string) error {
	a.creds.SetAPIKey(apiKey)
	return a.creds.EnsureValid(ctx)
}

// RecordSale commits a sale locally. The sale is durable whether or not the
// server is reachable; the next cycle picks it up.
func (a *App) RecordSale(invoiceNo string, items []sale.Item) (*sale.Sale, error) {
	sl := sale.New(a.config.DeviceID, invoiceNo, items)
	if err := a.store.RecordSale(sl); err != nil {
		return nil, err
	}
	a.log.Info("sale recorded", "invoice_no", invoiceNo, "total", sl.Total)
	return sl, nil
}

// AdjustStock commits a manual stock movement locally.
func (a *App) AdjustStock(productID uuid.UUID, kind stock.Kind, delta int, reason string) (*stock.Movement, error) {
	mv := stock.NewMovement(a.config.DeviceID, productID, kind, delta, reason)
	if err := a.store.AdjustStock(mv); err != nil {
		return nil, err
	}
	return mv, nil
}

// Products lists the local catalog copy.
func (a *App) Products() ([]product.Product, error) {
	return a.store.Products()
}

// StockLevels replays the local movement log into current quantities.
func (a *App) StockLevels() (map[uuid.UUID]int, error) {
	movements, err := a.store.Movements()
	if err != nil {
		return nil, err
	}
	return stock.Replay(movements), nil
}

// TransactionLog returns the most recent durability entries.
func (a *App) TransactionLog(limit int) ([]entity.TransactionLogEntry, error) {
	return a.store.TransactionLog(limit)
}

// PendingCounts reports how many records still wait for upload.
func (a *App) PendingCounts() (sales, movements int, err error) {
	s, err := a.store.UnsyncedSales()
	if err != nil {
		return 0, 0, err
	}
	m, err := a.store.UnsyncedMovements()
	if err != nil {
		return 0, 0, err
	}
	return len(s), len(m), nil
}

// SyncOnce runs a single sync cycle.
func (a *App) SyncOnce(ctx context.Context) (*CycleResult, error) {
	return a.engine.Cycle(ctx)
}

// Run drives the periodic sync loop until the context is done.
func (a *App) Run(ctx context.Context) {
	a.engine.Run(ctx)
}

// Stats returns cumulative sync statistics.
func (a *App) Stats() (*SyncStats, error) {
	return a.store.Stats()
}

// Cursor returns this till's sync position.
func (a *App) Cursor() (syncdomain.Cursor, error) {
	return a.store.Cursor(a.config.DeviceID)
}

// Connected reports the monitor's last known connectivity state.
func (a *App) Connected() bool {
	return a.monitor.IsConnected()
}

func (a *App) Close() error {
	return a.store.Close()
}
