package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"possync/internal/domain/sync"
)

type fakeAuthenticator struct {
	calls int
	token string
	err   error
	ttl   time.Duration
	set   []string
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, deviceID, _ string) (*sync.AuthenticationResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &sync.AuthenticationResponse{
		AccessToken: f.token,
		ExpiresAt:   time.Now().Add(f.ttl),
		DeviceID:    deviceID,
	}, nil
}

func (f *fakeAuthenticator) SetToken(token string) {
	f.set = append(f.set, token)
}

func TestCredentialManager_EnsureValid(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()

	t.Run("authenticates when no credential cached", func(t *testing.T) {
		auth := &fakeAuthenticator{token: "tok-1", ttl: time.Hour}
		mgr := NewCredentialManager(auth, log, "abc", "key123")

		require.NoError(t, mgr.EnsureValid(ctx))

		assert.Equal(t, 1, auth.calls)
		cred, ok := mgr.Current()
		require.True(t, ok)
		assert.Equal(t, "tok-1", cred.AccessToken)
		assert.Contains(t, auth.set, "tok-1")
	})

	t.Run("reuses a credential far from expiry", func(t *testing.T) {
		auth := &fakeAuthenticator{token: "tok-1", ttl: time.Hour}
		mgr := NewCredentialManager(auth, log, "abc", "key123")

		require.NoError(t, mgr.EnsureValid(ctx))
		require.NoError(t, mgr.EnsureValid(ctx))

		assert.Equal(t, 1, auth.calls, "no redundant authenticate call")
	})

	t.Run("renews inside the expiry margin", func(t *testing.T) {
		auth := &fakeAuthenticator{token: "tok-1", ttl: time.Hour}
		mgr := NewCredentialManager(auth, log, "abc", "key123")

		require.NoError(t, mgr.EnsureValid(ctx))

		// Move the clock to one minute before expiry.
		mgr.now = func() time.Time { return time.Now().Add(time.Hour - time.Minute) }

		require.NoError(t, mgr.EnsureValid(ctx))
		assert.Equal(t, 2, auth.calls, "near-expiry credential is renewed proactively")
	})

	t.Run("surfaces authentication failure", func(t *testing.T) {
		auth := &fakeAuthenticator{err: &sync.AuthError{StatusCode: 401}}
		mgr := NewCredentialManager(auth, log, "abc", "wrong")

		err := mgr.EnsureValid(ctx)

		assert.True(t, sync.IsAuthError(err))
		_, ok := mgr.Current()
		assert.False(t, ok)
	})
}

func TestCredentialManager_Invalidate(t *testing.T) {
	auth := &fakeAuthenticator{token: "tok-1", ttl: time.Hour}
	mgr := NewCredentialManager(auth, slog.Default(), "abc", "key123")

	require.NoError(t, mgr.EnsureValid(context.Background()))
	mgr.Invalidate()

	_, ok := mgr.Current()
	assert.False(t, ok)
	assert.Equal(t, "", auth.set[len(auth.set)-1], "token cleared on the API client")
}
