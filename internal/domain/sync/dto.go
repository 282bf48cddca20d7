package sync

import (
	"time"

	"possync/internal/domain/product"
	"possync/internal/domain/sale"
	"possync/internal/domain/stock"
)

// Wire shapes shared by the client API and the server handlers.

// UploadRequest carries everything a device has recorded since its last
// successful upload. The invoice number on each sale and the movement ID on
// each stock update are the natural keys the server deduplicates on, so a
// retried upload never double-applies.
type UploadRequest struct {
	DeviceID          string           `json:"device_id"`
	LastSyncTimestamp time.Time        `json:"last_sync_timestamp"`
	Sales             []sale.Sale      `json:"sales,omitempty"`
	StockUpdates      []stock.Movement `json:"stock_updates,omitempty"`
}

// APIResult is the generic server acknowledgement.
type APIResult struct {
	Success    bool     `json:"success"`
	StatusCode int      `json:"status_code"`
	Message    string   `json:"message,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

// DownloadResponse carries remote changes since the requested cursor.
// ServerTimestamp is the paging cursor to resume from: the server-side
// timestamp of the newest record in this page, or the request cursor
// unchanged when the page is empty. It is never ahead of an undelivered row.
type DownloadResponse struct {
	ServerTimestamp time.Time         `json:"server_timestamp"`
	Products        []product.Product `json:"products,omitempty"`
	Sales           []sale.Sale       `json:"sales,omitempty"`
	Stock           []stock.Movement  `json:"stock,omitempty"`
	HasMoreData     bool              `json:"has_more_data"`
}

// AuthenticationResponse is returned by a successful authenticate call.
type AuthenticationResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	DeviceID     string    `json:"device_id"`
}

// Cursor is the per-device sync position, advanced only after a fully
// successful download-and-merge step.
type Cursor struct {
	DeviceID          string    `json:"device_id"`
	LastSyncTimestamp time.Time `json:"last_sync_timestamp"`
	UpdatedAt         time.Time `json:"updated_at"`
}
