package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"possync/internal/app/server/api/http/middleware/auth"
	"possync/internal/domain/sync"
)

type Handler struct {
	service    sync.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service sync.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.uploadOp(), h.upload)
	huma.Register(api, h.downloadOp(), h.download)
}

func (h *Handler) upload(ctx context.Context, input *uploadInput) (*uploadOutput, error) {
	if err := checkDeviceScope(ctx, input.Body.DeviceID); err != nil {
		return nil, err
	}

	outcome, err := h.service.ProcessUpload(ctx, input.Body)
	if err != nil {
		var verr *sync.ValidationError
		if errors.As(err, &verr) {
			return nil, huma.Error400BadRequest(verr.Error())
		}
		h.log.Error("upload processing failed", "device_id", input.Body.DeviceID, "error", err)
		return nil, huma.Error500InternalServerError("upload failed")
	}

	return &uploadOutput{
		Body: UploadResponse{
			Success:           true,
			StatusCode:        http.StatusOK,
			Message:           "upload accepted",
			SalesAccepted:     outcome.SalesAccepted,
			MovementsAccepted: outcome.MovementsAccepted,
			Duplicates:        outcome.Duplicates,
		},
	}, nil
}

func (h *Handler) download(ctx context.Context, input *downloadInput) (*downloadOutput, error) {
	if err := checkDeviceScope(ctx, input.DeviceID); err != nil {
		return nil, err
	}

	response, err := h.service.GetChanges(ctx, input.DeviceID, input.Since)
	if err != nil {
		var verr *sync.ValidationError
		if errors.As(err, &verr) {
			return nil, huma.Error400BadRequest(verr.Error())
		}
		h.log.Error("download failed", "device_id", input.DeviceID, "error", err)
		return nil, huma.Error500InternalServerError("download failed")
	}

	return &downloadOutput{Body: *response}, nil
}

// checkDeviceScope rejects requests where the claimed device does not match
// the authenticated one.
func checkDeviceScope(ctx context.Context, claimed string) error {
	authenticated, ok := auth.GetDeviceID(ctx)
	if !ok {
		return huma.Error401Unauthorized("unauthorized")
	}
	if claimed != "" && claimed != authenticated {
		return huma.Error403Forbidden(fmt.Sprintf("device %s cannot act for %s", authenticated, claimed))
	}
	return nil
}
