package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"algobites-backend/internal/middleware"
	"algobites-backend/internal/models"
)

type profileFetcher interface {
	FetchProfile(ctx context.Context, username string) (*models.LeetCodeProfile, error)
}

type usernameStore interface {
	SetLeetCodeUsername(ctx context.Context, userID uuid.UUID, username string) error
	LeetCodeUsername(ctx context.Context, userID uuid.UUID) (string, error)
}

type LeetCodeHandler struct {
	fetcher   profileFetcher
	usernames usernameStore
}

func NewLeetCodeHandler(fetcher profileFetcher, usernames usernameStore) *LeetCodeHandler {
	return &LeetCodeHandler{fetcher: fetcher, usernames: usernames}
}

// LinkUsername stores the external username on the user's document. The
// username is not verified against the upstream here; a bad name surfaces as
// a 404 on the next profile fetch.
func (h *LeetCodeHandler) LinkUsername(w http.ResponseWriter, r *http.Request) {
	var req models.LinkUsernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.usernames.SetLeetCodeUsername(r.Context(), userID, req.Username); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"username": req.Username})
}

// GetProfile fetches the linked user's public LeetCode profile. A missing
// link is distinguished from an unknown upstream username so the client can
// prompt for linking instead of retrying.
func (h *LeetCodeHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	username, err := h.usernames.LeetCodeUsername(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if username == "" {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_LINKED", "No LeetCode username linked", r))
		return
	}

	profile, err := h.fetcher.FetchProfile(r.Context(), username)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
