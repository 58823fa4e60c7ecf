package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"algobites-backend/internal/models"
	"algobites-backend/internal/services"
)

type stubProfileFetcher struct {
	profile  *models.LeetCodeProfile
	err      error
	fetched  int
	lastUser string
}

func (s *stubProfileFetcher) FetchProfile(ctx context.Context, username string) (*models.LeetCodeProfile, error) {
	s.fetched++
	s.lastUser = username
	return s.profile, s.err
}

type stubUsernameStore struct {
	username string
	setErr   error
	lastSet  string
}

func (s *stubUsernameStore) SetLeetCodeUsername(ctx context.Context, userID uuid.UUID, username string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.lastSet = username
	s.username = username
	return nil
}

func (s *stubUsernameStore) LeetCodeUsername(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.username, nil
}

func TestLeetCodeHandler_LinkUsername(t *testing.T) {
	store := &stubUsernameStore{}
	h := NewLeetCodeHandler(&stubProfileFetcher{}, store)

	body, _ := json.Marshal(models.LinkUsernameRequest{Username: "gopher"})
	req := authedRequest(http.MethodPut, "/api/v1/leetcode/username", body, uuid.New(), nil)
	rr := httptest.NewRecorder()
	h.LinkUsername(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if store.lastSet != "gopher" {
		t.Errorf("expected username 'gopher' stored, got %q", store.lastSet)
	}
}

func TestLeetCodeHandler_LinkUsername_Blank(t *testing.T) {
	store := &stubUsernameStore{
		setErr: &services.ValidationError{Fields: map[string]string{"username": "Username is required"}},
	}
	h := NewLeetCodeHandler(&stubProfileFetcher{}, store)

	body, _ := json.Marshal(models.LinkUsernameRequest{Username: "  "})
	req := authedRequest(http.MethodPut, "/api/v1/leetcode/username", body, uuid.New(), nil)
	rr := httptest.NewRecorder()
	h.LinkUsername(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestLeetCodeHandler_GetProfile_NotLinked(t *testing.T) {
	fetcher := &stubProfileFetcher{}
	h := NewLeetCodeHandler(fetcher, &stubUsernameStore{})

	req := authedRequest(http.MethodGet, "/api/v1/leetcode/profile", nil, uuid.New(), nil)
	rr := httptest.NewRecorder()
	h.GetProfile(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
	if fetcher.fetched != 0 {
		t.Error("profile fetch should not run without a linked username")
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error.Code != "NOT_LINKED" {
		t.Errorf("expected code NOT_LINKED, got %q", resp.Error.Code)
	}
}

func TestLeetCodeHandler_GetProfile_Linked(t *testing.T) {
	fetcher := &stubProfileFetcher{
		profile: &models.LeetCodeProfile{Username: "gopher", RealName: "Go Pher"},
	}
	h := NewLeetCodeHandler(fetcher, &stubUsernameStore{username: "gopher"})

	req := authedRequest(http.MethodGet, "/api/v1/leetcode/profile", nil, uuid.New(), nil)
	rr := httptest.NewRecorder()
	h.GetProfile(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if fetcher.lastUser != "gopher" {
		t.Errorf("expected fetch for 'gopher', got %q", fetcher.lastUser)
	}

	var profile models.LeetCodeProfile
	if err := json.NewDecoder(rr.Body).Decode(&profile); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if profile.Username != "gopher" {
		t.Errorf("unexpected profile: %+v", profile)
	}
}

func TestLeetCodeHandler_GetProfile_UnknownUpstreamUser(t *testing.T) {
	fetcher := &stubProfileFetcher{err: services.ErrLeetCodeUserNotFound}
	h := NewLeetCodeHandler(fetcher, &stubUsernameStore{username: "no-such-user"})

	req := authedRequest(http.MethodGet, "/api/v1/leetcode/profile", nil, uuid.New(), nil)
	rr := httptest.NewRecorder()
	h.GetProfile(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error.Code != "NOT_FOUND" {
		t.Errorf("expected code NOT_FOUND, got %q", resp.Error.Code)
	}
}

func TestLeetCodeHandler_GetProfile_UpstreamDown(t *testing.T) {
	fetcher := &stubProfileFetcher{err: services.ErrFallbackUnavailable}
	h := NewLeetCodeHandler(fetcher, &stubUsernameStore{username: "gopher"})

	req := authedRequest(http.MethodGet, "/api/v1/leetcode/profile", nil, uuid.New(), nil)
	rr := httptest.NewRecorder()
	h.GetProfile(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, rr.Code)
	}
}
