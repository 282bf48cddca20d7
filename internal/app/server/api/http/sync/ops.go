package sync

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) uploadOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-upload",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/upload",
		Summary:     "Upload local changes",
		Description: "Accepts a batch of sales and stock movements recorded on a till. Idempotent per invoice number and movement ID.",
		Tags:        []string{"sync"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) downloadOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-download",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/download",
		Summary:     "Download remote changes",
		Description: "Returns catalog updates and other tills' records since the given cursor.",
		Tags:        []string{"sync"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
