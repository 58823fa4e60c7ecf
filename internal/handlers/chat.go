package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"algobites-backend/internal/models"
)

type chatAsker interface {
	Ask(ctx context.Context, prompt string, history []models.ChatMessage, video *models.Video) (string, error)
}

type ChatHandler struct {
	chat     chatAsker
	playlist catalogLoader
}

func NewChatHandler(chat chatAsker, playlist catalogLoader) *ChatHandler {
	return &ChatHandler{chat: chat, playlist: playlist}
}

// Ask answers a single prompt. When the request names a catalog video, the
// answer is grounded in that video's transcript.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Prompt is required", r))
		return
	}

	var video *models.Video
	if req.VideoID != "" {
		if catalog, err := h.playlist.LoadCatalog(r.Context()); err == nil {
			for i := range catalog {
				if catalog[i].ID == req.VideoID {
					video = &catalog[i]
					break
				}
			}
		}
	}

	answer, err := h.chat.Ask(r.Context(), req.Prompt, req.History, video)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResp("UPSTREAM_ERROR", "Failed to generate an answer. Please try again.", r))
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Answer: answer})
}
