package health

import (
	"context"
	"time"

	"github.com/collectionvault/index-engine/internal/docstore"
	"github.com/collectionvault/index-engine/internal/kvs"
)

// Version is the application version, set at build time
var Version = "dev"

// Handler handles health check requests against the document store and
// key-value store the index engine depends on.
type Handler struct {
	doc docstore.Store
	kv  kvs.Store
}

// NewHandler creates a new health handler.
func NewHandler(doc docstore.Store, kv kvs.Store) *Handler {
	return &Handler{doc: doc, kv: kv}
}

// HealthInput is the input for the health check endpoint.
type HealthInput struct{}

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Body HealthBody
}

// HealthBody is the response body for health check.
type HealthBody struct {
	Status  string            `json:"status" doc:"Overall system status: healthy, degraded, or unhealthy"`
	Version string            `json:"version" doc:"Application version"`
	Checks  map[string]string `json:"checks" doc:"Individual dependency health checks"`
}

// Health performs health checks on all dependencies and returns the overall status.
func (h *Handler) Health(ctx context.Context, input *HealthInput) (*HealthResponse, error) {
	checks := make(map[string]string)

	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := h.doc.Ping(checkCtx); err != nil {
		checks["docstore"] = "unhealthy"
	} else {
		checks["docstore"] = "healthy"
	}

	if err := h.kv.Ping(checkCtx); err != nil {
		checks["kvs"] = "unhealthy"
	} else {
		checks["kvs"] = "healthy"
	}

	status := "healthy"
	for _, checkStatus := range checks {
		if checkStatus == "unhealthy" {
			status = "degraded"
			break
		}
	}

	return &HealthResponse{
		Body: HealthBody{
			Status:  status,
			Version: Version,
			Checks:  checks,
		},
	}, nil
}
