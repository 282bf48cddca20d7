package client

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"possync/internal/domain/sale"
	"possync/internal/domain/stock"
	syncdomain "possync/internal/domain/sync"
)

// Phase is where a cycle currently is. The engine always returns to
// PhaseIdle, including on the fast path after an unrecoverable failure.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseAuthenticating Phase = "authenticating"
	PhaseUploading      Phase = "uploading"
	PhaseDownloading    Phase = "downloading"
	PhaseResolving      Phase = "resolving"
	PhaseCommitting     Phase = "committing"
)

// maxDownloadPages bounds the paging loop of one cycle.
const maxDownloadPages = 100

// LocalStore is the narrow data-access surface the engine needs from the
// till's durable store.
type LocalStore interface {
	localReader
	UnsyncedSales() ([]sale.Sale, error)
	UnsyncedMovements() ([]stock.Movement, error)
	MarkUploaded(saleIDs, movementIDs []uuid.UUID, at time.Time) error
	MarkUploadFailed(saleIDs, movementIDs []uuid.UUID) error
	ApplyResolution(res *Resolution, deviceID string, cursor time.Time) error
	Cursor(deviceID string) (syncdomain.Cursor, error)
	UpdateStats(result *CycleResult) error
	Stats() (*SyncStats, error)
}

// RemoteAPI is the slice of the authority server the engine talks to.
type RemoteAPI interface {
	RegisterDevice(ctx context.Context, deviceID, deviceName string) (*syncdomain.APIResult, error)
	UploadChanges(ctx context.Context, req syncdomain.UploadRequest) (*syncdomain.APIResult, error)
	DownloadChanges(ctx context.Context, deviceID string, since time.Time) (*syncdomain.DownloadResponse, error)
}

// CycleResult is the structured outcome of one sync cycle. Errors are
// aggregated here; the engine never lets one escape to crash the host.
type CycleResult struct {
	Success           bool          `json:"success"`
	Uploaded          int           `json:"uploaded"`
	Downloaded        int           `json:"downloaded"`
	ConflictsResolved int           `json:"conflicts_resolved"`
	Errors            []string      `json:"errors,omitempty"`
	Fatal             bool          `json:"fatal,omitempty"`
	StartTime         time.Time     `json:"start_time"`
	EndTime           time.Time     `json:"end_time"`
	Duration          time.Duration `json:"duration"`
}

func (r *CycleResult) fail(op string, err error) {
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", op, err))
}

// SyncStats is cumulative sync bookkeeping persisted across restarts.
type SyncStats struct {
	TotalSyncs             int       `json:"total_syncs"`
	TotalUploaded          int       `json:"total_uploaded"`
	TotalDownloaded        int       `json:"total_downloaded"`
	TotalConflictsResolved int       `json:"total_conflicts_resolved"`
	LastSuccessful         time.Time `json:"last_successful"`
	LastFailed             time.Time `json:"last_failed"`
}

// Engine orchestrates sync cycles: gather unsynced records, upload them
// through the retry controller gated by the credential manager, download
// remote changes, resolve conflicts and commit bookkeeping atomically.
type Engine struct {
	store    LocalStore
	api      RemoteAPI
	creds    *CredentialManager
	retrier  *Retrier
	resolver *Resolver
	monitor  *Monitor
	log      *slog.Logger

	deviceID   string
	deviceName string
	interval   time.Duration

	mu      gosync.Mutex
	phase   Phase
	running bool
}

type EngineParams struct {
	Store      LocalStore
	API        RemoteAPI
	Creds      *CredentialManager
	Retrier    *Retrier
	Monitor    *Monitor
	Log        *slog.Logger
	DeviceID   string
	DeviceName string
	Interval   time.Duration
}

func NewEngine(p EngineParams) *Engine {
	return &Engine{
		store:      p.Store,
		api:        p.API,
		creds:      p.Creds,
		retrier:    p.Retrier,
		resolver:   NewResolver(p.Store, p.Log),
		monitor:    p.Monitor,
		log:        p.Log,
		deviceID:   p.DeviceID,
		deviceName: p.DeviceName,
		interval:   p.Interval,
		phase:      PhaseIdle,
	}
}

// Phase returns the current cycle phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

func (e *Engine) setPhase(p Phase) {
	e.mu.Lock()
	e.phase = p
	e.mu.Unlock()
}

// Register announces the device identity to the server. Public call, safe to
// repeat.
func (e *Engine) Register(ctx context.Context) error {
	result, err := e.api.RegisterDevice(ctx, e.deviceID, e.deviceName)
	if err != nil {
		return fmt.Errorf("register device: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("register device: %s", result.Message)
	}
	e.log.Info("device registered", "device_id", e.deviceID)
	return nil
}

// Run drives the engine until the context is done: a periodic tick plus the
// connectivity monitor's offline-to-online transitions both funnel into the
// same mutually exclusive cycle executor.
func (e *Engine) Run(ctx context.Context) {
	go e.monitor.Run(ctx)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.log.Info("sync engine started", "interval", e.interval, "device_id", e.deviceID)

	for {
		select {
		case <-ctx.Done():
			e.log.Info("sync engine stopped")
			return
		case <-ticker.C:
			if !e.monitor.IsConnected() {
				continue
			}
			e.runCycle(ctx)
		case online := <-e.monitor.Transitions():
			if !online {
				continue
			}
			e.log.Info("connectivity restored, triggering sync")
			e.runCycle(ctx)
		}
	}
}

func (e *Engine) runCycle(ctx context.Context) {
	result, err := e.Cycle(ctx)
	if errors.Is(err, syncdomain.ErrCycleInProgress) {
		e.log.Debug("cycle request coalesced")
		return
	}
	if !result.Success {
		e.log.Warn("sync cycle finished with errors", "errors", result.Errors)
	}
}

// Cycle executes one upload-download-resolve-commit pass. Only one cycle may
// run per device at a time; a concurrent request gets ErrCycleInProgress and
// is expected to be coalesced by the caller.
func (e *Engine) Cycle(ctx context.Context) (*CycleResult, error) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return &CycleResult{}, syncdomain.ErrCycleInProgress
	}
	e.running = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.running = false
		e.phase = PhaseIdle
		e.mu.Unlock()
	}()

	result := &CycleResult{StartTime: time.Now()}
	e.cycle(ctx, result)

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	result.Success = len(result.Errors) == 0

	if err := e.store.UpdateStats(result); err != nil {
		e.log.Warn("failed to persist sync stats", "error", err)
	}

	if result.Success {
		e.log.Info("sync cycle complete",
			"uploaded", result.Uploaded,
			"downloaded", result.Downloaded,
			"conflicts_resolved", result.ConflictsResolved,
			"duration", result.Duration,
		)
	}

	return result, nil
}

// cycle is the state machine body. Every error is folded into the result;
// nothing panics and nothing escapes.
func (e *Engine) cycle(ctx context.Context, result *CycleResult) {
	e.setPhase(PhaseAuthenticating)
	if err := e.creds.EnsureValid(ctx); err != nil {
		if syncdomain.IsAuthError(err) {
			e.creds.Invalidate()
		}
		result.fail("authenticate", err)
		return
	}

	if err := ctx.Err(); err != nil {
		result.fail("cycle", err)
		return
	}

	cursor, err := e.store.Cursor(e.deviceID)
	if err != nil {
		result.fail("read cursor", err)
		return
	}

	e.setPhase(PhaseUploading)
	if !e.upload(ctx, cursor, result) {
		return
	}

	if err := ctx.Err(); err != nil {
		result.fail("cycle", err)
		return
	}

	e.download(ctx, cursor, result)
}

// upload ships the pending batch. Returns false when the cycle must abort.
func (e *Engine) upload(ctx context.Context, cursor syncdomain.Cursor, result *CycleResult) bool {
	sales, err := e.store.UnsyncedSales()
	if err != nil {
		result.fail("load unsynced sales", err)
		return false
	}
	movements, err := e.store.UnsyncedMovements()
	if err != nil {
		result.fail("load unsynced movements", err)
		return false
	}

	if len(sales) == 0 && len(movements) == 0 {
		return true
	}

	req := syncdomain.UploadRequest{
		DeviceID:          e.deviceID,
		LastSyncTimestamp: cursor.LastSyncTimestamp,
		Sales:             sales,
		StockUpdates:      movements,
	}

	saleIDs := make([]uuid.UUID, len(sales))
	for i := range sales {
		saleIDs[i] = sales[i].ID
	}
	movementIDs := make([]uuid.UUID, len(movements))
	for i := range movements {
		movementIDs[i] = movements[i].ID
	}

	err = e.retrier.Do(ctx, "upload", func(ctx context.Context) error {
		_, err := e.api.UploadChanges(ctx, req)
		return err
	})
	if err != nil {
		if syncdomain.IsAuthError(err) {
			e.creds.Invalidate()
		}
		if markErr := e.store.MarkUploadFailed(saleIDs, movementIDs); markErr != nil {
			result.Fatal = true
			result.fail("mark upload failed", &syncdomain.FatalStorageError{Err: markErr})
		}
		result.fail("upload", err)
		return false
	}

	if err := e.store.MarkUploaded(saleIDs, movementIDs, time.Now().UTC()); err != nil {
		result.Fatal = true
		result.fail("mark uploaded", &syncdomain.FatalStorageError{Err: err})
		return false
	}

	result.Uploaded = len(sales) + len(movements)
	return true
}

// download pulls remote pages, resolves each against local state and commits
// the merge together with the advanced cursor. The cursor only moves after a
// page fully lands.
func (e *Engine) download(ctx context.Context, cursor syncdomain.Cursor, result *CycleResult) {
	since := cursor.LastSyncTimestamp

	for page := 0; page < maxDownloadPages; page++ {
		if err := ctx.Err(); err != nil {
			result.fail("cycle", err)
			return
		}

		e.setPhase(PhaseDownloading)
		var resp *syncdomain.DownloadResponse
		err := e.retrier.Do(ctx, "download", func(ctx context.Context) error {
			var err error
			resp, err = e.api.DownloadChanges(ctx, e.deviceID, since)
			return err
		})
		if err != nil {
			if syncdomain.IsAuthError(err) {
				e.creds.Invalidate()
			}
			result.fail("download", err)
			return
		}

		e.setPhase(PhaseResolving)
		res, err := e.resolver.Resolve(resp)
		if err != nil {
			result.fail("resolve", err)
			return
		}

		e.setPhase(PhaseCommitting)
		if err := e.store.ApplyResolution(res, e.deviceID, resp.ServerTimestamp); err != nil {
			result.Fatal = true
			result.fail("commit", &syncdomain.FatalStorageError{Err: err})
			return
		}

		result.Downloaded += len(res.Products) + len(res.Sales) + len(res.Movements)
		result.ConflictsResolved += res.ConflictsResolved
		since = resp.ServerTimestamp

		if !resp.HasMoreData {
			return
		}
	}
}
