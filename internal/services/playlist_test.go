package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"google.golang.org/api/option"

	"algobites-backend/internal/models"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		iso  string
		want string
	}{
		{"PT5M30S", "5m 30s"},
		{"PT12M5S", "12m 05s"},
		{"PT45S", "0m 45s"},
		{"PT3M", "3m 00s"},
		{"PT0M0S", "0m 00s"},
		{"", "0m 00s"},
		{"garbage", "0m 00s"},
	}

	for _, tc := range tests {
		if got := FormatDuration(tc.iso); got != tc.want {
			t.Errorf("FormatDuration(%q) = %q, want %q", tc.iso, got, tc.want)
		}
	}
}

func TestFilterByTitle(t *testing.T) {
	catalog := []models.Video{
		{ID: "1", Title: "Two Sum Explained"},
		{ID: "2", Title: "Binary Search Basics"},
		{ID: "3", Title: "Advanced Two Pointer Patterns"},
	}

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{"empty query returns all", "", []string{"1", "2", "3"}},
		{"case-insensitive match", "two", []string{"1", "3"}},
		{"exact phrase", "binary search", []string{"2"}},
		{"no match", "graphs", []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterByTitle(catalog, tc.query)
			if len(got) != len(tc.wantIDs) {
				t.Fatalf("expected %d videos, got %d", len(tc.wantIDs), len(got))
			}
			for i, id := range tc.wantIDs {
				if got[i].ID != id {
					t.Errorf("expected video %q at %d, got %q", id, i, got[i].ID)
				}
			}
		})
	}
}

// newYouTubeStub serves a two-page playlist of pageOneSize+1 videos with
// duration metadata. A non-nil failVideos makes the duration lookup fail.
func newYouTubeStub(t *testing.T, pageOneSize int, failVideos bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.Contains(r.URL.Path, "playlistItems"):
			if r.URL.Query().Get("playlistId") != "PL123" {
				t.Errorf("unexpected playlistId: %s", r.URL.Query().Get("playlistId"))
			}

			var items []string
			next := ""
			if r.URL.Query().Get("pageToken") == "" {
				for i := 0; i < pageOneSize; i++ {
					items = append(items, fmt.Sprintf(`{"snippet":{"title":"Video %d","resourceId":{"videoId":"vid%d"}}}`, i, i))
				}
				next = `,"nextPageToken":"page2"`
			} else {
				items = append(items, `{"snippet":{"title":"Last Video","resourceId":{"videoId":"last"}}}`)
			}
			fmt.Fprintf(w, `{"items":[%s]%s}`, strings.Join(items, ","), next)

		case strings.Contains(r.URL.Path, "videos"):
			if failVideos {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			ids := strings.Split(r.URL.Query().Get("id"), ",")
			entries := make([]string, 0, len(ids))
			for _, id := range ids {
				entries = append(entries, fmt.Sprintf(`{"id":"%s","contentDetails":{"duration":"PT5M30S"}}`, id))
			}
			fmt.Fprintf(w, `{"items":[%s]}`, strings.Join(entries, ","))

		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestLoadCatalog_PaginatesAndFormats(t *testing.T) {
	ts := newYouTubeStub(t, 3, false)
	defer ts.Close()

	svc, err := NewPlaylistService(context.Background(), "test-key", "PL123", nil, time.Minute, option.WithEndpoint(ts.URL))
	if err != nil {
		t.Fatalf("NewPlaylistService failed: %v", err)
	}

	videos, err := svc.LoadCatalog(context.Background())
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}

	if len(videos) != 4 {
		t.Fatalf("expected 4 videos across two pages, got %d", len(videos))
	}
	if videos[0].ID != "vid0" || videos[3].ID != "last" {
		t.Errorf("playlist order not preserved: %+v", videos)
	}
	if videos[0].URL != "https://www.youtube.com/embed/vid0" {
		t.Errorf("unexpected URL: %s", videos[0].URL)
	}
	if videos[0].Duration != "5m 30s" {
		t.Errorf("expected formatted duration '5m 30s', got %q", videos[0].Duration)
	}
}

func TestLoadCatalog_DurationLookupFailureIsFatal(t *testing.T) {
	ts := newYouTubeStub(t, 2, true)
	defer ts.Close()

	svc, err := NewPlaylistService(context.Background(), "test-key", "PL123", nil, time.Minute, option.WithEndpoint(ts.URL))
	if err != nil {
		t.Fatalf("NewPlaylistService failed: %v", err)
	}

	if _, err := svc.LoadCatalog(context.Background()); err == nil {
		t.Fatal("expected a failed duration lookup to fail the whole load")
	}
}
