package client

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"golang.org/x/exp/slog"

	"possync/internal/domain/sync"
)

// renewMargin is how close to expiry a credential may get before a cycle
// proactively renews it.
const renewMargin = 5 * time.Minute

// Authenticator is the slice of the remote API the credential manager needs.
type Authenticator interface {
	Authenticate(ctx context.Context, deviceID, apiKey string) (*sync.AuthenticationResponse, error)
	SetToken(token string)
}

// CredentialManager gates protected calls: it holds the current device
// credential in memory only and renews it before it expires. The plaintext
// token never touches disk.
type CredentialManager struct {
	api      Authenticator
	log      *slog.Logger
	deviceID string
	apiKey   string

	mu   gosync.RWMutex
	cred *sync.AuthenticationResponse
	now  func() time.Time
}

func NewCredentialManager(api Authenticator, log *slog.Logger, deviceID, apiKey string) *CredentialManager {
	return &CredentialManager{
		api:      api,
		log:      log,
		deviceID: deviceID,
		apiKey:   apiKey,
		now:      time.Now,
	}
}

// EnsureValid makes sure a non-expired credential is installed on the API
// client before a cycle begins, re-authenticating when the current one is
// missing, expired or inside the renewal margin.
func (m *CredentialManager) EnsureValid(ctx context.Context) error {
	m.mu.RLock()
	cred := m.cred
	apiKey := m.apiKey
	m.mu.RUnlock()

	if cred != nil && m.now().Add(renewMargin).Before(cred.ExpiresAt) {
		return nil
	}

	if cred != nil {
		m.log.Debug("credential near expiry, renewing", "expires_at", cred.ExpiresAt)
	}

	fresh, err := m.api.Authenticate(ctx, m.deviceID, apiKey)
	if err != nil {
		return fmt.Errorf("renew credential: %w", err)
	}

	m.mu.Lock()
	m.cred = fresh
	m.mu.Unlock()

	m.api.SetToken(fresh.AccessToken)
	m.log.Info("device authenticated", "device_id", m.deviceID, "expires_at", fresh.ExpiresAt)
	return nil
}

// SetAPIKey replaces the provisioning key, for example when the operator
// types it in at login instead of configuring it. Drops any cached
// credential obtained with the old key.
func (m *CredentialManager) SetAPIKey(apiKey string) {
	m.mu.Lock()
	m.apiKey = apiKey
	m.cred = nil
	m.mu.Unlock()
}

// Invalidate drops the cached credential, forcing re-authentication on the
// next cycle. Called after a 401-class response.
func (m *CredentialManager) Invalidate() {
	m.mu.Lock()
	m.cred = nil
	m.mu.Unlock()
	m.api.SetToken("")
}

// Current returns the cached credential, if any.
func (m *CredentialManager) Current() (*sync.AuthenticationResponse, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cred == nil {
		return nil, false
	}
	cred := *m.cred
	return &cred, true
}
