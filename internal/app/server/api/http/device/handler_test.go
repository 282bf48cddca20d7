package device

import (
	"context"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"possync/internal/domain/device"
)

type MockServicer struct {
	mock.Mock
}

func (m *MockServicer) Register(ctx context.Context, deviceID, name string) (*device.Device, error) {
	args := m.Called(ctx, deviceID, name)
	if dev := args.Get(0); dev != nil {
		return dev.(*device.Device), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockServicer) Authenticate(ctx context.Context, deviceID, apiKey string) (*device.Credential, error) {
	args := m.Called(ctx, deviceID, apiKey)
	if cred := args.Get(0); cred != nil {
		return cred.(*device.Credential), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockServicer) Validate(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func TestHandler_register(t *testing.T) {
	service := new(MockServicer)
	service.On("Register", mock.Anything, "till-1", "Front till").
		Return(&device.Device{ID: "till-1", Name: "Front till"}, nil)

	handler := NewHandler(service, slog.Default(), huma.Middlewares{})

	output, err := handler.register(context.Background(), &registerInput{
		Body: RegisterRequest{DeviceID: "till-1", DeviceName: "Front till"},
	})

	require.NoError(t, err)
	assert.True(t, output.Body.Success)
	assert.Equal(t, "till-1", output.Body.DeviceID)
	service.AssertExpectations(t)
}

func TestHandler_register_emptyDeviceID(t *testing.T) {
	service := new(MockServicer)
	service.On("Register", mock.Anything, "", "").Return(nil, device.ErrEmptyDeviceID)

	handler := NewHandler(service, slog.Default(), huma.Middlewares{})

	_, err := handler.register(context.Background(), &registerInput{})

	require.Error(t, err)
	var status huma.StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, 400, status.GetStatus())
}

func TestHandler_authenticate(t *testing.T) {
	expires := time.Now().Add(24 * time.Hour)
	service := new(MockServicer)
	service.On("Authenticate", mock.Anything, "till-1", "key123").
		Return(&device.Credential{DeviceID: "till-1", AccessToken: "tok", ExpiresAt: expires}, nil)

	handler := NewHandler(service, slog.Default(), huma.Middlewares{})

	output, err := handler.authenticate(context.Background(), &authenticateInput{
		Body: AuthenticateRequest{DeviceID: "till-1", APIKey: "key123"},
	})

	require.NoError(t, err)
	assert.Equal(t, "tok", output.Body.AccessToken)
	assert.Equal(t, expires, output.Body.ExpiresAt)
}

func TestHandler_authenticate_unregistered(t *testing.T) {
	service := new(MockServicer)
	service.On("Authenticate", mock.Anything, "ghost", "key123").
		Return(nil, device.ErrNotRegistered)

	handler := NewHandler(service, slog.Default(), huma.Middlewares{})

	_, err := handler.authenticate(context.Background(), &authenticateInput{
		Body: AuthenticateRequest{DeviceID: "ghost", APIKey: "key123"},
	})

	require.Error(t, err)
	var status huma.StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, 401, status.GetStatus(), "unregistered devices get 401, not a hint that the key was fine")
}

func TestHandler_authenticate_wrongKey(t *testing.T) {
	service := new(MockServicer)
	service.On("Authenticate", mock.Anything, "till-1", "bad").
		Return(nil, device.ErrInvalidAPIKey)

	handler := NewHandler(service, slog.Default(), huma.Middlewares{})

	_, err := handler.authenticate(context.Background(), &authenticateInput{
		Body: AuthenticateRequest{DeviceID: "till-1", APIKey: "bad"},
	})

	require.Error(t, err)
	var status huma.StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, 401, status.GetStatus())
}
