package models

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "ai"
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint. VideoID is optional;
// when present the reply is grounded in that video.
type ChatRequest struct {
	Prompt  string        `json:"prompt"`
	VideoID string        `json:"video_id,omitempty"`
	History []ChatMessage `json:"history,omitempty"`
}

// ChatResponse is the reply from the AI chat.
type ChatResponse struct {
	Answer string `json:"answer"`
}
