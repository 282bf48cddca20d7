package device

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) registerOp() huma.Operation {
	return huma.Operation{
		OperationID: "device-register",
		Method:      http.MethodPost,
		Path:        "/api/v1/devices/register",
		Summary:     "Register a device",
		Description: "Creates or refreshes a till identity. Public and idempotent.",
		Tags:        []string{"devices"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) authenticateOp() huma.Operation {
	return huma.Operation{
		OperationID: "device-authenticate",
		Method:      http.MethodPost,
		Path:        "/api/v1/devices/authenticate",
		Summary:     "Authenticate a device",
		Description: "Exchanges the fleet API key for a time-limited access token.",
		Tags:        []string{"devices"},
		Middlewares: h.middleware,
	}
}
