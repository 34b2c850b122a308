package api

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/collectionvault/index-engine/internal/api/authhttp"
	"github.com/collectionvault/index-engine/internal/api/collections"
	"github.com/collectionvault/index-engine/internal/api/dashboard"
	"github.com/collectionvault/index-engine/internal/api/health"
	apijobs "github.com/collectionvault/index-engine/internal/api/jobs"
	appMiddleware "github.com/collectionvault/index-engine/internal/api/middleware"
	"github.com/collectionvault/index-engine/internal/auth"
	"github.com/collectionvault/index-engine/internal/docstore"
	"github.com/collectionvault/index-engine/internal/index"
	"github.com/collectionvault/index-engine/internal/infra/events"
	"github.com/collectionvault/index-engine/internal/jobs"
	"github.com/collectionvault/index-engine/internal/kvs"
	"github.com/collectionvault/index-engine/internal/shared/jwt"
)

// Dependencies bundles everything the router needs to wire the External API
// Façade's handlers. One instance is built once in cmd/server/main.go.
type Dependencies struct {
	Doc         docstore.Store
	KV          kvs.Store
	Engine      *index.Engine
	Jobs        *jobs.Repository
	AuthService *auth.Service
	JWTService  *jwt.Service
	Broadcaster *events.Broadcaster
	DebugMode   bool
}

// NewRouter creates and configures the main router: public health and auth
// routes, and JWT-protected collection/job/dashboard routes.
func NewRouter(deps Dependencies) chi.Router {
	r := chi.NewRouter()

	r.Use(appMiddleware.StructuredLogger(appMiddleware.NewLogger(deps.DebugMode)))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(appMiddleware.CORS)

	humaConfig := huma.DefaultConfig("Collection Vault API", "1.0.0")
	humaConfig.Info.Description = APIDescription
	humaConfig.Info.Contact = &huma.Contact{Name: "Collection Vault", Email: "support@example.com"}
	humaConfig.Info.License = &huma.License{Name: "MIT", URL: "https://opensource.org/licenses/MIT"}
	humaConfig.Servers = []*huma.Server{{URL: "http://localhost:8080", Description: "Local development server"}}
	api := humachi.New(r, humaConfig)

	healthHandler := health.NewHandler(deps.Doc, deps.KV)
	huma.Get(api, "/health", func(ctx context.Context, input *health.HealthInput) (*health.HealthResponse, error) {
		return healthHandler.Health(ctx, input)
	})

	RegisterDocsRoutes(r)

	authHandler := authhttp.NewHandler(deps.AuthService)
	authHandler.RegisterRoutes(api)

	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.JWTAuth(deps.JWTService))

		protectedConfig := huma.DefaultConfig("Collection Vault API", "1.0.0")
		protectedConfig.DocsPath = ""
		protectedConfig.OpenAPIPath = ""
		protectedAPI := humachi.New(r, protectedConfig)

		jobsHandler := apijobs.NewHandler(deps.Jobs, deps.Broadcaster)

		collections.NewHandler(deps.Engine).RegisterRoutes(protectedAPI)
		jobsHandler.RegisterRoutes(protectedAPI)
		dashboard.NewHandler(deps.Engine).RegisterRoutes(protectedAPI)

		jobsHandler.RegisterStreamRoute(r)
	})

	return r
}
