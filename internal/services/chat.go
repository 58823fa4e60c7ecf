package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"algobites-backend/internal/models"
)

const maxTranscriptChars = 12000

// ChatService answers one-off questions through Gemini. The endpoint is
// stateless: each call carries the prompt plus whatever history the widget
// chooses to replay; nothing is persisted.
type ChatService struct {
	client      *genai.Client
	model       *genai.GenerativeModel
	transcripts *TranscriptService
	rateChan    chan struct{} // Token bucket
}

func NewChatService(apiKey string, concurrentReqs int, transcripts *TranscriptService) (*ChatService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-3-flash-preview")
	model.SetTemperature(0.3)
	model.SetTopP(0.95)

	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &ChatService{
		client:      client,
		model:       model,
		transcripts: transcripts,
		rateChan:    rateChan,
	}, nil
}

func (s *ChatService) Close() {
	s.client.Close()
}

// truncateTranscript caps the transcript length without splitting a UTF-8
// sequence: the cut backs up to the nearest rune start.
func truncateTranscript(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// acquireRate blocks until a rate slot is available
func (s *ChatService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(2 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *ChatService) releaseRate() {
	s.rateChan <- struct{}{}
}

// Ask answers a prompt, optionally grounded in a video: when the video is
// known, its transcript (truncated) is supplied as context. Transcript
// failures degrade to an ungrounded answer instead of failing the call.
func (s *ChatService) Ask(ctx context.Context, prompt string, history []models.ChatMessage, video *models.Video) (string, error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	var sb strings.Builder
	sb.WriteString("You are a helpful assistant for students learning algorithms through a curated video playlist. Answer concisely.\n\n")

	if video != nil {
		sb.WriteString(fmt.Sprintf("The student is asking about the video %q.\n", video.Title))
		if s.transcripts != nil {
			transcript, err := s.transcripts.GetTranscript(video.ID)
			if err != nil {
				log.Printf("chat: transcript unavailable for video %s: %v", video.ID, err)
			} else {
				transcript = truncateTranscript(transcript, maxTranscriptChars)
				sb.WriteString("Video transcript:\n")
				sb.WriteString(transcript)
				sb.WriteString("\n\n")
			}
		}
	}

	for _, msg := range history {
		switch msg.Role {
		case "user":
			sb.WriteString("Student: " + msg.Content + "\n")
		case "ai":
			sb.WriteString("Assistant: " + msg.Content + "\n")
		}
	}

	sb.WriteString("Student: " + prompt + "\nAssistant:")

	resp, err := s.model.GenerateContent(ctx, genai.Text(sb.String()))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var answer strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			answer.WriteString(string(text))
		}
	}

	result := strings.TrimSpace(answer.String())
	if result == "" {
		return "", fmt.Errorf("gemini returned an empty answer")
	}
	return result, nil
}
