package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"algobites-backend/internal/middleware"
	"algobites-backend/internal/models"
)

type progressService interface {
	Load(ctx context.Context, userID uuid.UUID) (models.ProgressDoc, bool, error)
	BuildView(ctx context.Context, userID uuid.UUID, doc models.ProgressDoc, catalog []models.Video, degraded bool) models.ProgressView
	ToggleWatched(ctx context.Context, userID uuid.UUID, videoID string) (models.ProgressDoc, error)
	ToggleFavorite(ctx context.Context, userID uuid.UUID, videoID string) (models.ProgressDoc, error)
	ToggleQueue(ctx context.Context, userID uuid.UUID, videoID string) (models.ProgressDoc, error)
	SetNote(ctx context.Context, userID uuid.UUID, videoID, text string) (models.ProgressDoc, error)
}

type ProgressHandler struct {
	progress progressService
	playlist catalogLoader
}

func NewProgressHandler(progress progressService, playlist catalogLoader) *ProgressHandler {
	return &ProgressHandler{progress: progress, playlist: playlist}
}

// Get loads the user's document, applies the daily streak rule, and returns
// it together with the derived view. A catalog load failure degrades the
// derived values (empty catalog) but still serves the document.
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	doc, degraded, err := h.progress.Load(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	catalog, catalogErr := h.playlist.LoadCatalog(r.Context())
	if catalogErr != nil {
		catalog = nil
	}

	view := h.progress.BuildView(r.Context(), userID, doc, catalog, degraded)
	writeJSON(w, http.StatusOK, view)
}

func (h *ProgressHandler) ToggleWatched(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.progress.ToggleWatched)
}

func (h *ProgressHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.progress.ToggleFavorite)
}

func (h *ProgressHandler) ToggleQueue(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.progress.ToggleQueue)
}

func (h *ProgressHandler) toggle(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID, string) (models.ProgressDoc, error)) {
	videoID := chi.URLParam(r, "videoID")
	if strings.TrimSpace(videoID) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Video ID is required", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	doc, err := fn(r.Context(), userID, videoID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *ProgressHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")
	if strings.TrimSpace(videoID) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Video ID is required", r))
		return
	}

	var req models.NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	doc, err := h.progress.SetNote(r.Context(), userID, videoID, req.Text)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}
