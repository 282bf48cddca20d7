package sync

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"possync/internal/domain/sale"
)

// Servicer is the server-side sync surface consumed by the HTTP handlers.
type Servicer interface {
	// ProcessUpload applies a device upload batch. Idempotent per sale
	// invoice number and per movement ID.
	ProcessUpload(ctx context.Context, req UploadRequest) (*UploadOutcome, error)

	// GetChanges returns remote changes for a device since the given cursor.
	GetChanges(ctx context.Context, deviceID string, since time.Time) (*DownloadResponse, error)
}

// UploadOutcome summarizes what an upload batch actually changed.
type UploadOutcome struct {
	SalesAccepted     int `json:"sales_accepted"`
	MovementsAccepted int `json:"movements_accepted"`
	Duplicates        int `json:"duplicates"`
}

type ServiceConfig struct {
	MaxBatch int
}

type Service struct {
	repo   Repository
	log    *slog.Logger
	config *ServiceConfig
}

func NewService(repo Repository, log *slog.Logger, config *ServiceConfig) *Service {
	if config == nil {
		config = &ServiceConfig{MaxBatch: 500}
	}
	return &Service{
		repo:   repo,
		log:    log,
		config: config,
	}
}

func (s *Service) ProcessUpload(ctx context.Context, req UploadRequest) (*UploadOutcome, error) {
	if req.DeviceID == "" {
		return nil, &ValidationError{Op: "upload", Err: fmt.Errorf("device_id is required")}
	}
	if len(req.Sales) > s.config.MaxBatch || len(req.StockUpdates) > s.config.MaxBatch {
		return nil, &ValidationError{Op: "upload", Err: fmt.Errorf("batch exceeds %d records", s.config.MaxBatch)}
	}

	for i := range req.Sales {
		if len(req.Sales[i].Items) == 0 {
			return nil, &ValidationError{Op: "upload", Err: sale.ErrEmptySale}
		}
	}

	outcome := &UploadOutcome{}

	accepted, err := s.repo.InsertSales(ctx, req.Sales)
	if err != nil {
		return nil, fmt.Errorf("insert sales: %w", err)
	}
	outcome.SalesAccepted = accepted
	outcome.Duplicates += len(req.Sales) - accepted

	accepted, err = s.repo.InsertMovements(ctx, req.StockUpdates)
	if err != nil {
		return nil, fmt.Errorf("insert movements: %w", err)
	}
	outcome.MovementsAccepted = accepted
	outcome.Duplicates += len(req.StockUpdates) - accepted

	if err := s.repo.TouchDeviceSync(ctx, req.DeviceID, time.Now().UTC()); err != nil {
		s.log.Warn("failed to update device sync time", "device_id", req.DeviceID, "error", err)
	}

	s.log.Info("upload processed",
		"device_id", req.DeviceID,
		"sales", outcome.SalesAccepted,
		"movements", outcome.MovementsAccepted,
		"duplicates", outcome.Duplicates,
	)

	return outcome, nil
}

func (s *Service) GetChanges(ctx context.Context, deviceID string, since time.Time) (*DownloadResponse, error) {
	if deviceID == "" {
		return nil, &ValidationError{Op: "download", Err: fmt.Errorf("device_id is required")}
	}

	limit := s.config.MaxBatch

	products, err := s.repo.ProductsModifiedSince(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	sales, err := s.repo.SalesSince(ctx, since, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}

	movements, err := s.repo.MovementsSince(ctx, since, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("load movements: %w", err)
	}

	hasMore := len(products) >= limit || len(sales) >= limit || len(movements) >= limit

	// The paging cursor is the newest row actually delivered, never the wall
	// clock: a truncated page must not move the device past rows it has not
	// seen. An empty page leaves the cursor where it was.
	cursor := since
	for i := range products {
		if products[i].UpdatedAt.After(cursor) {
			cursor = products[i].UpdatedAt
		}
	}
	for i := range sales {
		if sales[i].UpdatedAt.After(cursor) {
			cursor = sales[i].UpdatedAt
		}
	}
	for i := range movements {
		if movements[i].UpdatedAt.After(cursor) {
			cursor = movements[i].UpdatedAt
		}
	}

	return &DownloadResponse{
		ServerTimestamp: cursor,
		Products:        products,
		Sales:           sales,
		Stock:           movements,
		HasMoreData:     hasMore,
	}, nil
}
