// Authority server HTTP surface.
//
// GET  /api/v1/health                # liveness, doubles as the tills' connectivity probe (public)
// POST /api/v1/devices/register      # device registration (public)
// POST /api/v1/devices/authenticate  # API key for access token exchange (public)
// POST /api/v1/sync/upload           # upload sales and stock movements (auth)
// GET  /api/v1/sync/download         # download changes since cursor (auth)

package api

import (
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	deviceAPI "possync/internal/app/server/api/http/device"
	healthAPI "possync/internal/app/server/api/http/health"
	"possync/internal/app/server/api/http/middleware"
	"possync/internal/app/server/api/http/middleware/auth"
	"possync/internal/app/server/api/http/middleware/logger"
	syncAPI "possync/internal/app/server/api/http/sync"
	"possync/internal/app/server/config"
	"possync/internal/domain/device"
	"possync/internal/domain/sync"
	"possync/internal/infrastructure/storage/postgres"
)

type Handlers struct {
	Health *healthAPI.Handler
	Device *deviceAPI.Handler
	Sync   *syncAPI.Handler
}

// New builds a *chi.Mux with all operations registered through huma.
func New(storage *postgres.Storage, cfg *config.Config, log *slog.Logger) (*chi.Mux, error) {
	mux := chi.NewMux()

	humaConfig := huma.DefaultConfig("POS Sync API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, humaConfig)

	h, err := handlers(storage, cfg, log)
	if err != nil {
		return nil, err
	}
	h.Health.SetupRoutes(API)
	h.Device.SetupRoutes(API)
	h.Sync.SetupRoutes(API)

	return mux, nil
}

func handlers(storage *postgres.Storage, cfg *config.Config, log *slog.Logger) (*Handlers, error) {
	deviceRepo := postgres.NewDeviceRepository(storage.Pool(), log)
	deviceService, err := device.NewService(deviceRepo, log, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("device service: %w", err)
	}

	authMW := auth.New(deviceService, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	deviceHandler := deviceAPI.NewHandler(deviceService, log, middlewares.GetAllAndClear())

	syncRepo := postgres.NewSyncRepository(storage.Pool(), log)
	syncService := sync.NewService(syncRepo, log, &sync.ServiceConfig{MaxBatch: cfg.Sync.MaxBatch})
	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	syncHandler := syncAPI.NewHandler(syncService, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health: healthHandler,
		Device: deviceHandler,
		Sync:   syncHandler,
	}, nil
}
