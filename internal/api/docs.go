package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"net/http"
)

// RegisterDocsRoutes registers additional documentation routes on the chi router.
// The standard /docs and /openapi.json are already provided by Huma.
// This adds alternative documentation UIs.
func RegisterDocsRoutes(r chi.Router) {
	// Swagger UI is available via the default Huma docs at /docs
	// This provides an alternative Redoc UI
	r.Get("/redoc", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(redocHTML))
	})
}

// redocHTML provides a Redoc documentation UI
const redocHTML = `<!DOCTYPE html>
<html>
  <head>
    <title>Collection Vault API Documentation</title>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <link href="https://fonts.googleapis.com/css?family=Montserrat:300,400,700|Roboto:300,400,700" rel="stylesheet">
    <style>
      body {
        margin: 0;
        padding: 0;
      }
    </style>
  </head>
  <body>
    <redoc spec-url='/openapi.json'></redoc>
    <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
  </body>
</html>`

// GetOpenAPIInfo returns the OpenAPI info for the API.
func GetOpenAPIInfo() *huma.Info {
	return &huma.Info{
		Title:       "Collection Vault API",
		Version:     "1.0.0",
		Description: APIDescription,
		Contact: &huma.Contact{
			Name:  "Collection Vault",
			Email: "support@example.com",
		},
		License: &huma.License{
			Name: "MIT",
			URL:  "https://opensource.org/licenses/MIT",
		},
	}
}

// APIDescription is the full API description for OpenAPI docs.
const APIDescription = `
# Collection Vault API

A read-oriented façade over the collection index engine and background
processing pipeline behind an image/collection viewer.

## Authentication

Most endpoints require authentication via JWT bearer token.

` + "```" + `
Authorization: Bearer <your-jwt-token>
` + "```" + `

## Quick Start

1. Register a new account: ` + "`POST /auth/register`" + `
2. Login to get tokens: ` + "`POST /auth/login`" + `
3. Browse collections: ` + "`GET /collections`" + `
4. Trigger a scan, thumbnail, or cache job: ` + "`POST /jobs`" + `

## API Groups

- **Auth**: account registration, login, and token refresh
- **Collections**: paged listing, navigation, siblings, search, cached thumbnails
- **Jobs**: background job creation and status lookup
- **Dashboard**: cached collection/image/cache-folder statistics
`
