package sync

import (
	"context"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"possync/internal/app/server/api/http/middleware/auth"
	"possync/internal/domain/sale"
	"possync/internal/domain/sync"
)

type MockServicer struct {
	mock.Mock
}

func (m *MockServicer) ProcessUpload(ctx context.Context, req sync.UploadRequest) (*sync.UploadOutcome, error) {
	args := m.Called(ctx, req)
	if out := args.Get(0); out != nil {
		return out.(*sync.UploadOutcome), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockServicer) GetChanges(ctx context.Context, deviceID string, since time.Time) (*sync.DownloadResponse, error) {
	args := m.Called(ctx, deviceID, since)
	if resp := args.Get(0); resp != nil {
		return resp.(*sync.DownloadResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func authedCtx(deviceID string) context.Context {
	return context.WithValue(context.Background(), auth.DeviceIDKey, deviceID)
}

func TestHandler_upload(t *testing.T) {
	service := new(MockServicer)
	service.On("ProcessUpload", mock.Anything, mock.Anything).
		Return(&sync.UploadOutcome{SalesAccepted: 2, MovementsAccepted: 3, Duplicates: 1}, nil)

	handler := NewHandler(service, slog.Default(), huma.Middlewares{})

	sl := *sale.New("till-1", "INV-1", []sale.Item{
		{ProductID: uuid.New(), Quantity: 1, UnitPrice: 100},
	})
	output, err := handler.upload(authedCtx("till-1"), &uploadInput{
		Body: sync.UploadRequest{DeviceID: "till-1", Sales: []sale.Sale{sl}},
	})

	require.NoError(t, err)
	assert.True(t, output.Body.Success)
	assert.Equal(t, 2, output.Body.SalesAccepted)
	assert.Equal(t, 3, output.Body.MovementsAccepted)
	assert.Equal(t, 1, output.Body.Duplicates)
}

func TestHandler_upload_deviceMismatch(t *testing.T) {
	service := new(MockServicer)
	handler := NewHandler(service, slog.Default(), huma.Middlewares{})

	_, err := handler.upload(authedCtx("till-1"), &uploadInput{
		Body: sync.UploadRequest{DeviceID: "till-2"},
	})

	require.Error(t, err)
	var status huma.StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, 403, status.GetStatus())
	service.AssertNotCalled(t, "ProcessUpload")
}

func TestHandler_upload_unauthenticated(t *testing.T) {
	service := new(MockServicer)
	handler := NewHandler(service, slog.Default(), huma.Middlewares{})

	_, err := handler.upload(context.Background(), &uploadInput{
		Body: sync.UploadRequest{DeviceID: "till-1"},
	})

	require.Error(t, err)
	var status huma.StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, 401, status.GetStatus())
}

func TestHandler_upload_validationError(t *testing.T) {
	service := new(MockServicer)
	service.On("ProcessUpload", mock.Anything, mock.Anything).
		Return(nil, &sync.ValidationError{Op: "upload", Err: sale.ErrEmptySale})

	handler := NewHandler(service, slog.Default(), huma.Middlewares{})

	_, err := handler.upload(authedCtx("till-1"), &uploadInput{
		Body: sync.UploadRequest{DeviceID: "till-1"},
	})

	require.Error(t, err)
	var status huma.StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, 400, status.GetStatus())
}

func TestHandler_download(t *testing.T) {
	since := time.Now().Add(-time.Hour)
	service := new(MockServicer)
	service.On("GetChanges", mock.Anything, "till-1", since).
		Return(&sync.DownloadResponse{ServerTimestamp: time.Now(), HasMoreData: false}, nil)

	handler := NewHandler(service, slog.Default(), huma.Middlewares{})

	output, err := handler.download(authedCtx("till-1"), &downloadInput{DeviceID: "till-1", Since: since})

	require.NoError(t, err)
	assert.False(t, output.Body.HasMoreData)
	assert.False(t, output.Body.ServerTimestamp.IsZero())
	service.AssertExpectations(t)
}
