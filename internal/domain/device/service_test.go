package device

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

// MockRepository is a mock implementation of the Repository interface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Upsert(ctx context.Context, dev *Device) error {
	args := m.Called(ctx, dev)
	return args.Error(0)
}

func (m *MockRepository) Find(ctx context.Context, deviceID string) (*Device, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Device), args.Error(1)
}

func (m *MockRepository) SaveSession(ctx context.Context, deviceID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, deviceID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockRepository) LookupSession(ctx context.Context, tokenHash string) (string, error) {
	args := m.Called(ctx, tokenHash)
	return args.String(0), args.Error(1)
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	svc, err := NewService(repo, slog.Default(), "key123")
	require.NoError(t, err)
	return svc
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("new device", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(t, repo)

		repo.On("Find", ctx, "abc").Return(nil, ErrNotRegistered)
		repo.On("Upsert", ctx, mock.Anything).Return(nil)

		dev, err := svc.Register(ctx, "abc", "Till-1")

		assert.NoError(t, err)
		assert.Equal(t, "abc", dev.ID)
		assert.Equal(t, "Till-1", dev.Name)
		repo.AssertExpectations(t)
	})

	t.Run("re-registering is idempotent", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(t, repo)

		registeredAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		repo.On("Find", ctx, "abc").
			Return(&Device{ID: "abc", Name: "Till-1", RegisteredAt: registeredAt}, nil)
		repo.On("Upsert", ctx, mock.Anything).Return(nil)

		dev, err := svc.Register(ctx, "abc", "Till-1-renamed")

		assert.NoError(t, err)
		assert.Equal(t, registeredAt, dev.RegisteredAt, "original registration time survives")
		assert.Equal(t, "Till-1-renamed", dev.Name)
	})

	t.Run("empty device id", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(t, repo)

		_, err := svc.Register(ctx, "", "Till-1")

		assert.ErrorIs(t, err, ErrEmptyDeviceID)
	})
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid key issues credential", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(t, repo)

		repo.On("Find", ctx, "abc").Return(&Device{ID: "abc"}, nil)
		repo.On("SaveSession", ctx, "abc", mock.Anything, mock.Anything).Return(nil)

		cred, err := svc.Authenticate(ctx, "abc", "key123")

		require.NoError(t, err)
		assert.Equal(t, "abc", cred.DeviceID)
		assert.NotEmpty(t, cred.AccessToken)
		assert.True(t, cred.ExpiresAt.After(time.Now()), "credential expires in the future")
	})

	t.Run("unregistered device", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(t, repo)

		repo.On("Find", ctx, "ghost").Return(nil, ErrNotRegistered)

		_, err := svc.Authenticate(ctx, "ghost", "key123")

		assert.ErrorIs(t, err, ErrNotRegistered)
	})

	t.Run("wrong api key", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(t, repo)

		repo.On("Find", ctx, "abc").Return(&Device{ID: "abc"}, nil)

		_, err := svc.Authenticate(ctx, "abc", "wrong")

		assert.ErrorIs(t, err, ErrInvalidAPIKey)
	})
}

func TestService_Validate(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := newTestService(t, repo)

	repo.On("LookupSession", ctx, hashToken("tok")).Return("abc", nil)
	repo.On("LookupSession", ctx, hashToken("stale")).Return("", ErrInvalidToken)

	deviceID, err := svc.Validate(ctx, "tok")
	assert.NoError(t, err)
	assert.Equal(t, "abc", deviceID)

	_, err = svc.Validate(ctx, "stale")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
