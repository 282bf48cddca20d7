package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"possync/internal/domain/device"
)

type Auth struct {
	devices device.Servicer
	log     *slog.Logger
}

func New(devices device.Servicer, log *slog.Logger) *Auth {
	return &Auth{
		devices: devices,
		log:     log.With(slog.String("component", "auth_middleware")),
	}
}

type contextKey string

const DeviceIDKey contextKey = "deviceID"

// Middleware rejects requests without a valid bearer token and puts the
// resolved device ID into the request context.
func (a *Auth) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		token := ctx.Header("Authorization")

		if len(token) < 7 || token[:7] != "Bearer " {
			a.log.Warn("missing bearer token", "path", ctx.URL().Path)
			reject(ctx)
			return
		}

		deviceID, err := a.devices.Validate(ctx.Context(), token[7:])
		if err != nil {
			a.log.Warn("token validation failed", "error", err)
			reject(ctx)
			return
		}

		newCtx := context.WithValue(ctx.Context(), DeviceIDKey, deviceID)
		next(huma.WithContext(ctx, newCtx))
	}
}

func reject(ctx huma.Context) {
	ctx.SetStatus(http.StatusUnauthorized)
	ctx.SetHeader("Content-Type", "application/json")
	json.NewEncoder(ctx.BodyWriter()).Encode(map[string]string{
		"message": "unauthorized",
	})
}

// GetDeviceID extracts the authenticated device ID from a request context.
func GetDeviceID(ctx context.Context) (string, bool) {
	deviceID, ok := ctx.Value(DeviceIDKey).(string)
	return deviceID, ok
}
