package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	gosync "sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"possync/internal/app/client/config"
	"possync/internal/domain/product"
	"possync/internal/domain/sale"
	"possync/internal/domain/stock"
	syncdomain "possync/internal/domain/sync"
)

// fakeAuthority is an in-memory stand-in for the authority server, enforcing
// the registration/authentication gating and the download paging contract the
// real one does: rows newer than the requested cursor, capped per page, with
// the newest delivered row timestamp as the next cursor.
type fakeAuthority struct {
	mu            gosync.Mutex
	registered    map[string]bool
	apiKey        string
	token         string
	sales         map[string]sale.Sale // by invoice number
	products      []product.Product
	remoteSales   []sale.Sale
	remoteStock   []stock.Movement
	pageLimit     int
	baseTime      time.Time
	stampN        int
	uploadCalls   int
	downloadCalls int
	downloadDelay time.Duration
}

func newFakeAuthority() *fakeAuthority {
	return &fakeAuthority{
		registered: make(map[string]bool),
		apiKey:     "key123",
		token:      "tok-test",
		sales:      make(map[string]sale.Sale),
		pageLimit:  500,
		baseTime:   time.Now().UTC(),
	}
}

// stamp issues strictly increasing server receive times. Callers hold mu.
func (f *fakeAuthority) stamp() time.Time {
	f.stampN++
	return f.baseTime.Add(time.Duration(f.stampN) * time.Millisecond)
}

// publishProducts makes products visible to downloads, stamped with the
// authority's receive time. Returns the stamped copies.
func (f *fakeAuthority) publishProducts(ps ...product.Product) []product.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range ps {
		ps[i].UpdatedAt = f.stamp()
		f.products = append(f.products, ps[i])
	}
	return ps
}

func (f *fakeAuthority) publishSales(sls ...sale.Sale) []sale.Sale {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range sls {
		sls[i].UpdatedAt = f.stamp()
		f.remoteSales = append(f.remoteSales, sls[i])
	}
	return sls
}

func (f *fakeAuthority) publishStock(mvs ...stock.Movement) []stock.Movement {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range mvs {
		mvs[i].UpdatedAt = f.stamp()
		f.remoteStock = append(f.remoteStock, mvs[i])
	}
	return mvs
}

func (f *fakeAuthority) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/api/v1/devices/register", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			DeviceID   string `json:"device_id"`
			DeviceName string `json:"device_name"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.registered[body.DeviceID] = true
		f.mu.Unlock()
		json.NewEncoder(w).Encode(syncdomain.APIResult{Success: true, StatusCode: 200})
	})

	mux.HandleFunc("/api/v1/devices/authenticate", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			DeviceID string `json:"device_id"`
			APIKey   string `json:"api_key"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		ok := f.registered[body.DeviceID] && body.APIKey == f.apiKey
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "unauthorized"})
			return
		}
		json.NewEncoder(w).Encode(syncdomain.AuthenticationResponse{
			AccessToken: f.token,
			ExpiresAt:   time.Now().Add(time.Hour),
			DeviceID:    body.DeviceID,
		})
	})

	mux.HandleFunc("/api/v1/sync/upload", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "unauthorized"})
			return
		}
		var req syncdomain.UploadRequest
		json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.uploadCalls++
		for _, s := range req.Sales {
			if _, exists := f.sales[s.InvoiceNo]; !exists {
				f.sales[s.InvoiceNo] = s
			}
		}
		f.mu.Unlock()
		json.NewEncoder(w).Encode(syncdomain.APIResult{Success: true, StatusCode: 200})
	})

	mux.HandleFunc("/api/v1/sync/download", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "unauthorized"})
			return
		}
		if f.downloadDelay > 0 {
			time.Sleep(f.downloadDelay)
		}
		since, _ := time.Parse(time.RFC3339Nano, r.URL.Query().Get("since"))

		f.mu.Lock()
		f.downloadCalls++
		cursor := since
		var products []product.Product
		for _, p := range f.products {
			if !p.UpdatedAt.After(since) || len(products) >= f.pageLimit {
				continue
			}
			products = append(products, p)
			if p.UpdatedAt.After(cursor) {
				cursor = p.UpdatedAt
			}
		}
		var sales []sale.Sale
		for _, sl := range f.remoteSales {
			if !sl.UpdatedAt.After(since) || len(sales) >= f.pageLimit {
				continue
			}
			sales = append(sales, sl)
			if sl.UpdatedAt.After(cursor) {
				cursor = sl.UpdatedAt
			}
		}
		var movements []stock.Movement
		for _, mv := range f.remoteStock {
			if !mv.UpdatedAt.After(since) || len(movements) >= f.pageLimit {
				continue
			}
			movements = append(movements, mv)
			if mv.UpdatedAt.After(cursor) {
				cursor = mv.UpdatedAt
			}
		}
		resp := syncdomain.DownloadResponse{
			ServerTimestamp: cursor,
			Products:        products,
			Sales:           sales,
			Stock:           movements,
			HasMoreData:     len(products) >= f.pageLimit || len(sales) >= f.pageLimit || len(movements) >= f.pageLimit,
		}
		f.mu.Unlock()
		json.NewEncoder(w).Encode(resp)
	})

	return mux
}

func (f *fakeAuthority) authorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer "+f.token
}

type testRig struct {
	engine    *Engine
	store     *SQLiteStore
	api       *apiClient
	authority *fakeAuthority
	server    *httptest.Server
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()

	authority := newFakeAuthority()
	server := httptest.NewServer(authority.handler())
	t.Cleanup(server.Close)

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "till.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	log := slog.Default()
	cfg := &config.Config{ServerAddress: strings.TrimPrefix(server.URL, "http://")}
	api := NewAPIClient(cfg, log)
	creds := NewCredentialManager(api, log, "abc", "key123")
	retrier := NewRetrier(3, time.Millisecond, 2.0, log)
	monitor := NewMonitor(ProbeFunc(api.HealthCheck), log, time.Second)

	engine := NewEngine(EngineParams{
		Store:      store,
		API:        api,
		Creds:      creds,
		Retrier:    retrier,
		Monitor:    monitor,
		Log:        log,
		DeviceID:   "abc",
		DeviceName: "Till-1",
		Interval:   time.Minute,
	})

	return &testRig{
		engine:    engine,
		store:     store,
		api:       api,
		authority: authority,
		server:    server,
	}
}

func recordTestSale(t *testing.T, store *SQLiteStore, invoiceNo string) *sale.Sale {
	t.Helper()
	sl := sale.New("abc", invoiceNo, []sale.Item{
		{ProductID: uuid.New(), Quantity: 2, UnitPrice: 250},
	})
	require.NoError(t, store.RecordSale(sl))
	return sl
}

func TestEngine_RegistrationAndAuthGating(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	// Unregistered device: protected calls are rejected with a 401-class
	// error before a single record moves.
	_, err := rig.api.Authenticate(ctx, "abc", "key123")
	assert.True(t, syncdomain.IsAuthError(err), "unregistered device must not authenticate")

	recordTestSale(t, rig.store, "INV-X")
	result, err := rig.engine.Cycle(ctx)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Uploaded)

	// Register, then the same flow succeeds end to end.
	require.NoError(t, rig.engine.Register(ctx))

	auth, err := rig.api.Authenticate(ctx, "abc", "key123")
	require.NoError(t, err)
	assert.True(t, auth.ExpiresAt.After(time.Now()), "token expiry lies in the future")

	result, err = rig.engine.Cycle(ctx)
	require.NoError(t, err)
	assert.True(t, result.Success, "cycle errors: %v", result.Errors)
	assert.Greater(t, result.Uploaded, 0)

	sales, err := rig.store.UnsyncedSales()
	require.NoError(t, err)
	assert.Empty(t, sales, "sale acknowledged by the server is no longer pending")

	sl, err := rig.store.GetSale(saleIDByInvoice(t, rig.store, "INV-X"))
	require.NoError(t, err)
	require.NotNil(t, sl.ServerSyncedAt, "synced sale carries the acknowledgement time")
}

func TestEngine_CycleIdempotency(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	require.NoError(t, rig.engine.Register(ctx))

	recordTestSale(t, rig.store, "INV-1")

	first, err := rig.engine.Cycle(ctx)
	require.NoError(t, err)
	require.True(t, first.Success)

	callsAfterFirst := rig.authority.uploadCalls

	// With no interleaved local writes, repeating the cycle changes nothing
	// and uploads nothing new.
	for i := 0; i < 3; i++ {
		result, err := rig.engine.Cycle(ctx)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, 0, result.Uploaded)
	}

	assert.Equal(t, callsAfterFirst, rig.authority.uploadCalls,
		"already-synced data must not be re-uploaded")
	assert.Len(t, rig.authority.sales, 1, "server holds exactly one copy")
}

func TestEngine_ProductServerWins(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	require.NoError(t, rig.engine.Register(ctx))

	productID := uuid.New()
	local := product.Product{ID: productID, SKU: "SKU-1", Name: "Cola", Price: 120}
	require.NoError(t, rig.store.ApplyResolution(&Resolution{Products: []product.Product{local}}, "abc", time.Time{}))

	remote := local
	remote.Price = 150
	rig.authority.publishProducts(remote)

	result, err := rig.engine.Cycle(ctx)
	require.NoError(t, err)
	require.True(t, result.Success, "cycle errors: %v", result.Errors)
	assert.Equal(t, 1, result.ConflictsResolved)

	got, err := rig.store.GetProduct(productID)
	require.NoError(t, err)
	assert.Equal(t, int64(150), got.Price, "server price wins regardless of local recency")
}

func TestEngine_SaleAppendOnly(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	require.NoError(t, rig.engine.Register(ctx))

	localSale := recordTestSale(t, rig.store, "INV-X")

	// The server sends back a conflicting copy of the same sale plus an
	// unrelated one from another till.
	conflicting := *localSale
	conflicting.Total = 99999
	other := *sale.New("till-2", "INV-OTHER", []sale.Item{
		{ProductID: uuid.New(), Quantity: 1, UnitPrice: 500},
	})
	rig.authority.publishSales(conflicting, other)

	for i := 0; i < 3; i++ {
		result, err := rig.engine.Cycle(ctx)
		require.NoError(t, err)
		require.True(t, result.Success, "cycle errors: %v", result.Errors)
	}

	got, err := rig.store.GetSale(localSale.ID)
	require.NoError(t, err)
	assert.Equal(t, localSale.Total, got.Total, "local sale survives conflicting server data")
	assert.Equal(t, localSale.InvoiceNo, got.InvoiceNo)

	remote, err := rig.store.GetSale(other.ID)
	require.NoError(t, err)
	require.NotNil(t, remote, "unrelated remote sale is merged in")
}

func TestEngine_StockRecompute(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	require.NoError(t, rig.engine.Register(ctx))

	productID := uuid.New()
	delivery := stock.NewMovement("abc", productID, stock.KindDelivery, 20, "initial stock")
	require.NoError(t, rig.store.AdjustStock(delivery))

	remoteSale := stock.Movement{
		ID:         uuid.New(),
		ProductID:  productID,
		Kind:       stock.KindSale,
		Delta:      -4,
		OccurredAt: time.Now().UTC(),
	}
	rig.authority.publishStock(remoteSale)

	result, err := rig.engine.Cycle(ctx)
	require.NoError(t, err)
	require.True(t, result.Success, "cycle errors: %v", result.Errors)

	movements, err := rig.store.Movements()
	require.NoError(t, err)
	levels := stock.Replay(movements)
	assert.Equal(t, 16, levels[productID], "quantity replayed from the merged movement log")
}

func TestEngine_CursorAdvancesOnlyOnSuccess(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	published := rig.authority.publishProducts(
		product.Product{ID: uuid.New(), SKU: "SKU-1", Name: "Cola", Price: 120},
	)

	// Unauthenticated cycle fails; the cursor must not move.
	_, err := rig.engine.Cycle(ctx)
	require.NoError(t, err)
	cursor, err := rig.store.Cursor("abc")
	require.NoError(t, err)
	assert.True(t, cursor.LastSyncTimestamp.IsZero())

	require.NoError(t, rig.engine.Register(ctx))
	result, err := rig.engine.Cycle(ctx)
	require.NoError(t, err)
	require.True(t, result.Success)

	// The cursor lands exactly on the newest delivered row, never ahead.
	cursor, err = rig.store.Cursor("abc")
	require.NoError(t, err)
	assert.True(t, cursor.LastSyncTimestamp.Equal(published[0].UpdatedAt),
		"cursor matches the newest downloaded record")
}

func TestEngine_PagedDownloadDeliversFullBacklog(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	require.NoError(t, rig.engine.Register(ctx))
	rig.authority.pageLimit = 2

	var backlog []product.Product
	for i := 0; i < 5; i++ {
		backlog = append(backlog, product.Product{
			ID:    uuid.New(),
			SKU:   "SKU-" + string(rune('A'+i)),
			Name:  "Item",
			Price: int64(100 + i),
		})
	}
	published := rig.authority.publishProducts(backlog...)

	result, err := rig.engine.Cycle(ctx)
	require.NoError(t, err)
	require.True(t, result.Success, "cycle errors: %v", result.Errors)
	assert.Equal(t, 5, result.Downloaded, "a backlog wider than one page lands in full")

	products, err := rig.store.Products()
	require.NoError(t, err)
	require.Len(t, products, 5, "no record behind a full page is ever skipped")

	// The cursor stops at the newest row the server actually handed over.
	cursor, err := rig.store.Cursor("abc")
	require.NoError(t, err)
	newest := published[len(published)-1].UpdatedAt
	assert.True(t, cursor.LastSyncTimestamp.Equal(newest))

	// The backlog is drained: another cycle downloads nothing.
	result, err = rig.engine.Cycle(ctx)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, 0, result.Downloaded)
}

func TestEngine_ConcurrentCyclesAreCoalesced(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	require.NoError(t, rig.engine.Register(ctx))
	rig.authority.downloadDelay = 100 * time.Millisecond

	var wg gosync.WaitGroup
	var mu gosync.Mutex
	var busy int
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := rig.engine.Cycle(ctx)
			if err != nil {
				mu.Lock()
				assert.ErrorIs(t, err, syncdomain.ErrCycleInProgress)
				busy++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, busy, 1, "overlapping cycle requests are rejected, not queued")
}

func saleIDByInvoice(t *testing.T, store *SQLiteStore, invoiceNo string) uuid.UUID {
	t.Helper()
	var id string
	err := store.db.QueryRow(`SELECT id FROM sales WHERE invoice_no = ?`, invoiceNo).Scan(&id)
	require.NoError(t, err)
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	return parsed
}
