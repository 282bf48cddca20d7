package sync

import (
	"time"

	"possync/internal/domain/sync"
)

type uploadInput struct {
	Body sync.UploadRequest
}

type uploadOutput struct {
	Body UploadResponse
}

type UploadResponse struct {
	Success           bool   `json:"success"`
	StatusCode        int    `json:"status_code"`
	Message           string `json:"message,omitempty"`
	SalesAccepted     int    `json:"sales_accepted"`
	MovementsAccepted int    `json:"movements_accepted"`
	Duplicates        int    `json:"duplicates"`
}

type downloadInput struct {
	DeviceID string    `query:"device_id" doc:"Device requesting changes"`
	Since    time.Time `query:"since" doc:"Cursor of the last successful sync"`
}

type downloadOutput struct {
	Body sync.DownloadResponse
}
