package entity

import "time"

// SyncStatus tracks where a local record stands in the upload pipeline.
type SyncStatus string

const (
	// NotSynced means the record was created or changed locally and has not
	// been acknowledged by the server yet.
	NotSynced SyncStatus = "not_synced"

	// Synced means the server has acknowledged the record.
	Synced SyncStatus = "synced"

	// SyncFailed means the last upload attempt failed; the record stays
	// queued for the next cycle.
	SyncFailed SyncStatus = "sync_failed"
)

// SyncMeta is embedded by every syncable record. It carries the originating
// device, the sync status and the server acknowledgement time.
type SyncMeta struct {
	DeviceID       string     `json:"device_id"`
	Status         SyncStatus `json:"sync_status"`
	ServerSyncedAt *time.Time `json:"server_synced_at,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Touch marks a local modification: the record drops back to NotSynced and
// loses its acknowledgement time.
func (m *SyncMeta) Touch() {
	m.Status = NotSynced
	m.ServerSyncedAt = nil
	m.UpdatedAt = time.Now().UTC()
}

// MarkSynced records the server acknowledgement.
func (m *SyncMeta) MarkSynced(at time.Time) {
	m.Status = Synced
	t := at.UTC()
	m.ServerSyncedAt = &t
}

// MarkFailed flags a failed upload attempt without losing the record.
func (m *SyncMeta) MarkFailed() {
	m.Status = SyncFailed
}

// Pending reports whether the record still needs to reach the server.
func (m *SyncMeta) Pending() bool {
	return m.Status == NotSynced || m.Status == SyncFailed
}
