package device

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"possync/internal/domain/device"
)

type Handler struct {
	service    device.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service device.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.registerOp(), h.register)
	huma.Register(api, h.authenticateOp(), h.authenticate)
}

func (h *Handler) register(ctx context.Context, input *registerInput) (*registerOutput, error) {
	dev, err := h.service.Register(ctx, input.Body.DeviceID, input.Body.DeviceName)
	if err != nil {
		if errors.Is(err, device.ErrEmptyDeviceID) {
			return nil, huma.Error400BadRequest(err.Error())
		}
		h.log.Error("device registration failed", "error", err)
		return nil, huma.Error500InternalServerError("registration failed")
	}

	return &registerOutput{
		Body: RegisterResponse{
			Success:    true,
			StatusCode: http.StatusOK,
			Message:    "device registered",
			DeviceID:   dev.ID,
		},
	}, nil
}

func (h *Handler) authenticate(ctx context.Context, input *authenticateInput) (*authenticateOutput, error) {
	cred, err := h.service.Authenticate(ctx, input.Body.DeviceID, input.Body.APIKey)
	if err != nil {
		switch {
		case errors.Is(err, device.ErrNotRegistered), errors.Is(err, device.ErrInvalidAPIKey):
			return nil, huma.Error401Unauthorized("unauthorized")
		case errors.Is(err, device.ErrEmptyDeviceID), errors.Is(err, device.ErrEmptyDeviceKey):
			return nil, huma.Error400BadRequest(err.Error())
		default:
			h.log.Error("device authentication failed", "error", err)
			return nil, huma.Error500InternalServerError("authentication failed")
		}
	}

	return &authenticateOutput{
		Body: AuthenticateResponse{
			AccessToken:  cred.AccessToken,
			RefreshToken: cred.RefreshToken,
			ExpiresAt:    cred.ExpiresAt,
			DeviceID:     cred.DeviceID,
		},
	}, nil
}
