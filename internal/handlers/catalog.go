package handlers

import (
	"context"
	"net/http"

	"algobites-backend/internal/models"
	"algobites-backend/internal/services"
)

type catalogLoader interface {
	LoadCatalog(ctx context.Context) ([]models.Video, error)
}

type CatalogHandler struct {
	playlist catalogLoader
}

func NewCatalogHandler(playlist catalogLoader) *CatalogHandler {
	return &CatalogHandler{playlist: playlist}
}

// List returns the full catalog, optionally filtered by a case-insensitive
// title substring. A load failure surfaces an error rather than a partial
// catalog reported as success.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	videos, err := h.playlist.LoadCatalog(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResp("UPSTREAM_ERROR", "Failed to load video catalog", r))
		return
	}

	filtered := services.FilterByTitle(videos, r.URL.Query().Get("search"))

	writeJSON(w, http.StatusOK, models.CatalogResponse{
		Videos: filtered,
		Total:  len(filtered),
	})
}
