// Package collections exposes the Collection Index Engine's read
// operations (paged listing, navigation, siblings, search, cached
// thumbnails) over HTTP.
package collections

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/collectionvault/index-engine/internal/catalog"
	"github.com/collectionvault/index-engine/internal/index"
)

// Handler adapts index.Engine queries to HTTP operations.
type Handler struct {
	engine *index.Engine
}

// NewHandler wraps an index engine for the collections façade.
func NewHandler(engine *index.Engine) *Handler {
	return &Handler{engine: engine}
}

func sortParams(field, dir string) (index.SortField, index.SortDirection) {
	f := index.SortField(field)
	if !f.IsValid() {
		f = index.FieldUpdatedAt
	}
	d := index.SortDirection(dir)
	if !d.IsValid() {
		d = index.Desc
	}
	return f, d
}

type pageQuery struct {
	Page      int    `query:"page" default:"1" minimum:"1"`
	Size      int    `query:"size" default:"20" minimum:"1" maximum:"200"`
	SortField string `query:"sortField" default:"updatedAt"`
	SortDir   string `query:"sortDir" default:"desc"`
}

// PageInput lists collections with pagination and sort.
type PageInput struct {
	pageQuery
}

// PageOutput is a page of collection summaries.
type PageOutput struct {
	Body index.Page
}

func (h *Handler) GetPage(ctx context.Context, input *PageInput) (*PageOutput, error) {
	field, dir := sortParams(input.SortField, input.SortDir)
	page, err := h.engine.GetPage(ctx, input.Page, input.Size, field, dir)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list collections", err)
	}
	return &PageOutput{Body: page}, nil
}

// SearchInput is a full-text search over collection name/path.
type SearchInput struct {
	pageQuery
	Query string `query:"q" required:"true" minLength:"1" doc:"Case-insensitive substring match against name or path"`
}

// SearchOutput is a page of matching collection summaries.
type SearchOutput struct {
	Body index.Page
}

func (h *Handler) Search(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	field, dir := sortParams(input.SortField, input.SortDir)
	page, err := h.engine.SearchPage(ctx, input.Query, input.Page, input.Size, field, dir)
	if err != nil {
		return nil, huma.Error500InternalServerError("search failed", err)
	}
	return &SearchOutput{Body: page}, nil
}

// ByLibraryInput lists a library's collections.
type ByLibraryInput struct {
	pageQuery
	LibraryID uuid.UUID `path:"libraryId"`
}

// ByLibraryOutput is a page of that library's collection summaries.
type ByLibraryOutput struct {
	Body index.Page
}

func (h *Handler) GetByLibrary(ctx context.Context, input *ByLibraryInput) (*ByLibraryOutput, error) {
	field, dir := sortParams(input.SortField, input.SortDir)
	page, err := h.engine.GetByLibrary(ctx, input.LibraryID, input.Page, input.Size, field, dir)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list collections by library", err)
	}
	return &ByLibraryOutput{Body: page}, nil
}

// ByTypeInput lists collections of a single Folder/Archive type.
type ByTypeInput struct {
	pageQuery
	Type string `path:"type" enum:"Folder,Archive"`
}

// ByTypeOutput is a page of that type's collection summaries.
type ByTypeOutput struct {
	Body index.Page
}

func (h *Handler) GetByType(ctx context.Context, input *ByTypeInput) (*ByTypeOutput, error) {
	field, dir := sortParams(input.SortField, input.SortDir)
	page, err := h.engine.GetByType(ctx, catalog.Type(input.Type), input.Page, input.Size, field, dir)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list collections by type", err)
	}
	return &ByTypeOutput{Body: page}, nil
}

// NavigationInput asks for a single collection's prev/next neighbors.
type NavigationInput struct {
	ID        uuid.UUID `path:"id"`
	SortField string    `query:"sortField" default:"updatedAt"`
	SortDir   string    `query:"sortDir" default:"desc"`
}

// NavigationOutput is the navigation result.
type NavigationOutput struct {
	Body index.Navigation
}

func (h *Handler) GetNavigation(ctx context.Context, input *NavigationInput) (*NavigationOutput, error) {
	field, dir := sortParams(input.SortField, input.SortDir)
	nav, err := h.engine.GetNavigation(ctx, input.ID, field, dir)
	if err != nil {
		return nil, huma.Error404NotFound("collection not found in index", err)
	}
	if nav.CurrentPosition == 0 {
		return nil, huma.Error404NotFound("collection not found in index")
	}
	return &NavigationOutput{Body: nav}, nil
}

// SiblingsInput asks for a window of summaries around one collection.
type SiblingsInput struct {
	pageQuery
	ID uuid.UUID `path:"id"`
}

// SiblingsOutput is the siblings window.
type SiblingsOutput struct {
	Body index.SiblingsPage
}

func (h *Handler) GetSiblings(ctx context.Context, input *SiblingsInput) (*SiblingsOutput, error) {
	field, dir := sortParams(input.SortField, input.SortDir)
	siblings, err := h.engine.GetSiblings(ctx, input.ID, input.Page, input.Size, field, dir)
	if err != nil {
		return nil, huma.Error404NotFound("collection not found in index", err)
	}
	return &SiblingsOutput{Body: siblings}, nil
}

// ThumbnailInput requests the cached raw thumbnail bytes for a collection.
type ThumbnailInput struct {
	ID uuid.UUID `path:"id"`
}

// ThumbnailOutput streams the cached thumbnail bytes, if any.
type ThumbnailOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

func (h *Handler) GetThumbnail(ctx context.Context, input *ThumbnailInput) (*ThumbnailOutput, error) {
	raw, err := h.engine.GetCachedThumbnail(ctx, input.ID)
	if err != nil || raw == nil {
		return nil, huma.Error404NotFound("no cached thumbnail for this collection")
	}
	return &ThumbnailOutput{ContentType: "application/octet-stream", Body: raw}, nil
}

// RegisterRoutes registers every collections operation on api.
func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-collections",
		Method:      http.MethodGet,
		Path:        "/collections",
		Summary:     "List collections",
		Tags:        []string{"Collections"},
	}, h.GetPage)

	huma.Register(api, huma.Operation{
		OperationID: "search-collections",
		Method:      http.MethodGet,
		Path:        "/collections/search",
		Summary:     "Search collections by name or path",
		Tags:        []string{"Collections"},
	}, h.Search)

	huma.Register(api, huma.Operation{
		OperationID: "list-collections-by-library",
		Method:      http.MethodGet,
		Path:        "/collections/library/{libraryId}",
		Summary:     "List a library's collections",
		Tags:        []string{"Collections"},
	}, h.GetByLibrary)

	huma.Register(api, huma.Operation{
		OperationID: "list-collections-by-type",
		Method:      http.MethodGet,
		Path:        "/collections/type/{type}",
		Summary:     "List collections of one type",
		Tags:        []string{"Collections"},
	}, h.GetByType)

	huma.Register(api, huma.Operation{
		OperationID: "get-collection-navigation",
		Method:      http.MethodGet,
		Path:        "/collections/{id}/navigation",
		Summary:     "Get a collection's prev/next neighbors under a sort",
		Tags:        []string{"Collections"},
	}, h.GetNavigation)

	huma.Register(api, huma.Operation{
		OperationID: "get-collection-siblings",
		Method:      http.MethodGet,
		Path:        "/collections/{id}/siblings",
		Summary:     "Get a window of collections around one, in sorted-set order",
		Tags:        []string{"Collections"},
	}, h.GetSiblings)

	huma.Register(api, huma.Operation{
		OperationID: "get-collection-thumbnail",
		Method:      http.MethodGet,
		Path:        "/collections/{id}/thumbnail",
		Summary:     "Get a collection's cached raw thumbnail bytes",
		Tags:        []string{"Collections"},
	}, h.GetThumbnail)
}
