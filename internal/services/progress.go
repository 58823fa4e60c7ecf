package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"algobites-backend/internal/models"
)

const dateLayout = "2006-01-02"

// progressStore is the document-store surface the service needs: get one
// document per user, write the merged union back.
type progressStore interface {
	Get(ctx context.Context, userID uuid.UUID) (models.ProgressDoc, bool, error)
	Put(ctx context.Context, userID uuid.UUID, doc models.ProgressDoc) error
}

// ProgressService owns the per-user progress document. Every mutation is
// read-merge-write: fetch the current document, patch it, write the union
// back. Two in-flight writers race and the last commit wins; that matches the
// store contract and is covered by tests rather than papered over.
type ProgressService struct {
	store progressStore
	redis *redis.Client
}

func NewProgressService(store progressStore, redisClient *redis.Client) *ProgressService {
	return &ProgressService{store: store, redis: redisClient}
}

func degradedWatchedKey(userID uuid.UUID) string {
	return "watched_fallback:" + userID.String()
}

// Load fetches the user's document and applies the streak rule for today.
// When the document store is unreachable, watched-state degrades to the Redis
// device cache with a degraded flag; favorites, queue, and notes stay empty
// until connectivity returns.
func (s *ProgressService) Load(ctx context.Context, userID uuid.UUID) (models.ProgressDoc, bool, error) {
	doc, _, err := s.store.Get(ctx, userID)
	if err != nil {
		log.Printf("progress: store unreachable for user %s: %v", userID, err)
		return s.loadDegraded(ctx, userID), true, nil
	}

	updated, changed := applyStreak(doc, time.Now())
	if changed {
		if putErr := s.store.Put(ctx, userID, updated); putErr != nil {
			log.Printf("progress: failed to persist streak for user %s: %v", userID, putErr)
		}
	}

	return updated, false, nil
}

func (s *ProgressService) loadDegraded(ctx context.Context, userID uuid.UUID) models.ProgressDoc {
	doc := models.EmptyProgressDoc()
	if s.redis == nil {
		return doc
	}

	raw, err := s.redis.Get(ctx, degradedWatchedKey(userID)).Result()
	if err != nil {
		return doc
	}

	var watched []string
	if err := json.Unmarshal([]byte(raw), &watched); err == nil {
		doc.Watched = watched
	}
	return doc
}

// applyStreak recomputes the streak relative to now. Yesterday's login
// extends the streak, today's leaves it unchanged (so repeated loads within
// one day never double-increment), anything older resets to 1.
func applyStreak(doc models.ProgressDoc, now time.Time) (models.ProgressDoc, bool) {
	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)

	switch doc.LastLogin {
	case today:
		return doc, false
	case yesterday:
		doc.Streak++
	default:
		doc.Streak = 1
	}
	doc.LastLogin = today
	return doc, true
}

// ToggleWatched flips a video's membership in the watched set and persists
// the merged document.
func (s *ProgressService) ToggleWatched(ctx context.Context, userID uuid.UUID, videoID string) (models.ProgressDoc, error) {
	doc, _, err := s.store.Get(ctx, userID)
	if err != nil {
		// Degraded path: keep watched-state alive in the device cache.
		return s.toggleWatchedDegraded(ctx, userID, videoID)
	}

	doc.Watched = toggleID(doc.Watched, videoID)
	if err := s.store.Put(ctx, userID, doc); err != nil {
		return doc, err
	}

	s.publishUpdate(ctx, userID, doc)
	return doc, nil
}

func (s *ProgressService) toggleWatchedDegraded(ctx context.Context, userID uuid.UUID, videoID string) (models.ProgressDoc, error) {
	doc := s.loadDegraded(ctx, userID)
	doc.Watched = toggleID(doc.Watched, videoID)

	if s.redis != nil {
		if raw, err := json.Marshal(doc.Watched); err == nil {
			if err := s.redis.Set(ctx, degradedWatchedKey(userID), raw, 0).Err(); err != nil {
				return doc, &UnavailableError{Message: "Progress store is unreachable"}
			}
			return doc, nil
		}
	}
	return doc, &UnavailableError{Message: "Progress store is unreachable"}
}

// ToggleFavorite flips a video's membership in the favorites set.
func (s *ProgressService) ToggleFavorite(ctx context.Context, userID uuid.UUID, videoID string) (models.ProgressDoc, error) {
	return s.toggleSet(ctx, userID, videoID, func(doc *models.ProgressDoc) *[]string { return &doc.Favorites })
}

// ToggleQueue flips a video's membership in the queue set.
func (s *ProgressService) ToggleQueue(ctx context.Context, userID uuid.UUID, videoID string) (models.ProgressDoc, error) {
	return s.toggleSet(ctx, userID, videoID, func(doc *models.ProgressDoc) *[]string { return &doc.Queue })
}

func (s *ProgressService) toggleSet(ctx context.Context, userID uuid.UUID, videoID string, field func(*models.ProgressDoc) *[]string) (models.ProgressDoc, error) {
	doc, _, err := s.store.Get(ctx, userID)
	if err != nil {
		return doc, &UnavailableError{Message: "Progress store is unreachable"}
	}

	set := field(&doc)
	*set = toggleID(*set, videoID)
	if err := s.store.Put(ctx, userID, doc); err != nil {
		return doc, err
	}

	s.publishUpdate(ctx, userID, doc)
	return doc, nil
}

// SetNote stores free text for a video. Empty text removes the note.
func (s *ProgressService) SetNote(ctx context.Context, userID uuid.UUID, videoID, text string) (models.ProgressDoc, error) {
	doc, _, err := s.store.Get(ctx, userID)
	if err != nil {
		return doc, &UnavailableError{Message: "Progress store is unreachable"}
	}

	if doc.Notes == nil {
		doc.Notes = map[string]string{}
	}
	if strings.TrimSpace(text) == "" {
		delete(doc.Notes, videoID)
	} else {
		doc.Notes[videoID] = text
	}

	if err := s.store.Put(ctx, userID, doc); err != nil {
		return doc, err
	}

	s.publishUpdate(ctx, userID, doc)
	return doc, nil
}

// SetLeetCodeUsername links an external username to the document.
func (s *ProgressService) SetLeetCodeUsername(ctx context.Context, userID uuid.UUID, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return &ValidationError{Fields: map[string]string{"username": "Username is required"}}
	}

	doc, _, err := s.store.Get(ctx, userID)
	if err != nil {
		return &UnavailableError{Message: "Progress store is unreachable"}
	}

	doc.LeetCodeUsername = username
	return s.store.Put(ctx, userID, doc)
}

// LeetCodeUsername returns the linked username, or empty if none is linked.
func (s *ProgressService) LeetCodeUsername(ctx context.Context, userID uuid.UUID) (string, error) {
	doc, _, err := s.store.Get(ctx, userID)
	if err != nil {
		return "", &UnavailableError{Message: "Progress store is unreachable"}
	}
	return doc.LeetCodeUsername, nil
}

// BuildView derives the values the UI renders from the document and the
// current catalog. When the watched count first equals a non-empty catalog,
// the celebration fires exactly once: the document's celebrated flag is set
// so later renders with the same counts stay quiet.
func (s *ProgressService) BuildView(ctx context.Context, userID uuid.UUID, doc models.ProgressDoc, catalog []models.Video, degraded bool) models.ProgressView {
	watchedSet := make(map[string]bool, len(doc.Watched))
	for _, id := range doc.Watched {
		watchedSet[id] = true
	}

	watchedCount := 0
	var next *models.Video
	for i := range catalog {
		if watchedSet[catalog[i].ID] {
			watchedCount++
		} else if next == nil {
			next = &catalog[i]
		}
	}

	view := models.ProgressView{
		ProgressDoc:       doc,
		WatchedCount:      watchedCount,
		TotalCount:        len(catalog),
		CompletionPercent: CompletionPercent(watchedCount, len(catalog)),
		NextUnwatched:     next,
		Degraded:          degraded,
	}

	complete := len(catalog) > 0 && watchedCount == len(catalog)
	if complete && !doc.Celebrated && !degraded {
		view.Celebrate = true
		doc.Celebrated = true
		view.Celebrated = true
		if err := s.store.Put(ctx, userID, doc); err != nil {
			log.Printf("progress: failed to persist celebration flag for user %s: %v", userID, err)
		}
	}

	return view
}

// CompletionPercent rounds half-up. A zero total renders as 0% rather than
// dividing by zero.
func CompletionPercent(watched, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(watched) / float64(total)))
}

// NextUnwatched returns the first video in catalog order not present in the
// watched set, or nil when everything is watched.
func NextUnwatched(catalog []models.Video, watched []string) *models.Video {
	watchedSet := make(map[string]bool, len(watched))
	for _, id := range watched {
		watchedSet[id] = true
	}
	for i := range catalog {
		if !watchedSet[catalog[i].ID] {
			return &catalog[i]
		}
	}
	return nil
}

func toggleID(ids []string, id string) []string {
	for i, existing := range ids {
		if existing == id {
			return append(append([]string{}, ids[:i]...), ids[i+1:]...)
		}
	}
	return append(append([]string{}, ids...), id)
}

func (s *ProgressService) publishUpdate(ctx context.Context, userID uuid.UUID, doc models.ProgressDoc) {
	if s.redis == nil {
		return
	}

	msg := models.WSMessage{Type: "progress_updated", Data: doc}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := s.redis.Publish(ctx, fmt.Sprintf("user_updates:%s", userID.String()), string(data)).Err(); err != nil {
		log.Printf("progress: failed to publish update for user %s: %v", userID, err)
	}
}
