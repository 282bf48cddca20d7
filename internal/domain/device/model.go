package device

import "time"

// Device is a registered till identity.
type Device struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	RegisteredAt time.Time  `json:"registered_at"`
	LastSeenAt   time.Time  `json:"last_seen_at"`
	LastSyncAt   *time.Time `json:"last_sync_at,omitempty"`
}

// Credential is the time-limited access credential issued by Authenticate.
// Only the token hash is persisted; the plaintext token lives in the response
// and in the client's session.
type Credential struct {
	DeviceID     string    `json:"device_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}
