package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"algobites-backend/internal/models"
)

const playlistPageSize = 50

// PlaylistService assembles the full video catalog from a curated playlist:
// one paginated listing pass plus one duration lookup per page batch. A load
// is all-or-nothing; any failure surfaces an error and no partial catalog.
type PlaylistService struct {
	yt         *youtube.Service
	redis      *redis.Client
	playlistID string
	cacheTTL   time.Duration
}

func NewPlaylistService(ctx context.Context, apiKey, playlistID string, redisClient *redis.Client, cacheTTL time.Duration, opts ...option.ClientOption) (*PlaylistService, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	yt, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube client: %w", err)
	}

	return &PlaylistService{
		yt:         yt,
		redis:      redisClient,
		playlistID: playlistID,
		cacheTTL:   cacheTTL,
	}, nil
}

func (s *PlaylistService) cacheKey() string {
	return "catalog:" + s.playlistID
}

// LoadCatalog returns the cached catalog when fresh, otherwise fetches it and
// refills the cache.
func (s *PlaylistService) LoadCatalog(ctx context.Context) ([]models.Video, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, s.cacheKey()).Result(); err == nil {
			var videos []models.Video
			if err := json.Unmarshal([]byte(cached), &videos); err == nil {
				return videos, nil
			}
		}
	}

	videos, err := s.fetchCatalog(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if raw, err := json.Marshal(videos); err == nil {
			if err := s.redis.Set(ctx, s.cacheKey(), raw, s.cacheTTL).Err(); err != nil {
				log.Printf("catalog: failed to cache playlist %s: %v", s.playlistID, err)
			}
		}
	}

	return videos, nil
}

// RefreshCatalog bypasses the cache, refetches the playlist, and refills the
// cache. Used by the background refresher.
func (s *PlaylistService) RefreshCatalog(ctx context.Context) ([]models.Video, error) {
	videos, err := s.fetchCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if s.redis != nil {
		if raw, err := json.Marshal(videos); err == nil {
			if err := s.redis.Set(ctx, s.cacheKey(), raw, s.cacheTTL).Err(); err != nil {
				log.Printf("catalog: failed to cache playlist %s: %v", s.playlistID, err)
			}
		}
	}
	return videos, nil
}

func (s *PlaylistService) fetchCatalog(ctx context.Context) ([]models.Video, error) {
	var all []models.Video
	pageToken := ""

	for {
		page, err := s.yt.PlaylistItems.List([]string{"snippet"}).
			PlaylistId(s.playlistID).
			MaxResults(playlistPageSize).
			PageToken(pageToken).
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list playlist items: %w", err)
		}

		ids := make([]string, 0, len(page.Items))
		for _, item := range page.Items {
			ids = append(ids, item.Snippet.ResourceId.VideoId)
		}

		durations, err := s.fetchDurations(ctx, ids)
		if err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			id := item.Snippet.ResourceId.VideoId
			duration, ok := durations[id]
			if !ok {
				duration = "PT0M0S"
			}
			all = append(all, models.Video{
				ID:       id,
				Title:    item.Snippet.Title,
				URL:      "https://www.youtube.com/embed/" + id,
				Duration: FormatDuration(duration),
			})
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return all, nil
}

// fetchDurations resolves duration metadata for one page batch of video IDs.
func (s *PlaylistService) fetchDurations(ctx context.Context, ids []string) (map[string]string, error) {
	durations := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return durations, nil
	}

	details, err := s.yt.Videos.List([]string{"contentDetails"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch video details: %w", err)
	}

	for _, item := range details.Items {
		durations[item.Id] = item.ContentDetails.Duration
	}
	return durations, nil
}

var isoDurationRe = regexp.MustCompile(`PT(?:(\d+)M)?(?:(\d+)S)?`)

// FormatDuration renders an abbreviated ISO-8601 duration ("PT5M30S") as
// "5m 30s". A missing minutes or seconds group defaults to zero, so "PT45S"
// becomes "0m 45s" and an empty string "0m 00s".
func FormatDuration(iso string) string {
	minutes, seconds := 0, 0
	if m := isoDurationRe.FindStringSubmatch(iso); m != nil {
		fmt.Sscanf(m[1], "%d", &minutes)
		fmt.Sscanf(m[2], "%d", &seconds)
	}
	return fmt.Sprintf("%dm %02ds", minutes, seconds)
}

// FilterByTitle returns the videos whose title contains the query,
// case-insensitively. An empty query returns the full catalog unfiltered.
func FilterByTitle(videos []models.Video, query string) []models.Video {
	query = strings.ToLower(query)
	if query == "" {
		return videos
	}

	filtered := make([]models.Video, 0, len(videos))
	for _, v := range videos {
		if strings.Contains(strings.ToLower(v.Title), query) {
			filtered = append(filtered, v)
		}
	}
	return filtered
}
