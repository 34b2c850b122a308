// Package dashboard exposes the index engine's cached dashboard
// statistics over HTTP.
package dashboard

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/collectionvault/index-engine/internal/index"
)

// Handler adapts index.Engine's dashboard cache to HTTP.
type Handler struct {
	engine *index.Engine
}

// NewHandler wraps an index engine for the dashboard façade.
func NewHandler(engine *index.Engine) *Handler {
	return &Handler{engine: engine}
}

// GetDashboardInput has no parameters; the dashboard is a singleton view.
type GetDashboardInput struct{}

// GetDashboardOutput is the cached dashboard statistics. When no cache
// entry exists yet, GetDashboard returns 503 instead of recomputing them.
type GetDashboardOutput struct {
	Body index.DashboardStatistics
}

func (h *Handler) GetDashboard(ctx context.Context, input *GetDashboardInput) (*GetDashboardOutput, error) {
	stats, ok := h.engine.GetDashboardStats(ctx)
	if !ok {
		return nil, huma.Error503ServiceUnavailable("dashboard statistics are not ready yet; a rebuild must run first")
	}
	return &GetDashboardOutput{Body: stats}, nil
}

// RegisterRoutes registers the dashboard read operation.
func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-dashboard",
		Method:      http.MethodGet,
		Path:        "/dashboard",
		Summary:     "Get cached dashboard statistics",
		Tags:        []string{"Dashboard"},
	}, h.GetDashboard)
}
