package device

import (
	"context"
	"time"
)

// Repository is the persistence surface for device identities and sessions.
type Repository interface {
	// Upsert creates the device or refreshes its metadata. Registration is
	// idempotent, so re-registering an existing device is not an error.
	Upsert(ctx context.Context, dev *Device) error

	// Find returns the device or ErrNotRegistered.
	Find(ctx context.Context, deviceID string) (*Device, error)

	// SaveSession stores a hashed access token with its expiry.
	SaveSession(ctx context.Context, deviceID, tokenHash string, expiresAt time.Time) error

	// LookupSession resolves a token hash to a device ID; expired sessions
	// resolve to ErrInvalidToken.
	LookupSession(ctx context.Context, tokenHash string) (string, error)
}
