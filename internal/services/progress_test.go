package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"algobites-backend/internal/models"
)

type stubProgressStore struct {
	docs    map[uuid.UUID]models.ProgressDoc
	getErr  error
	putErr  error
	puts    int
	lastPut models.ProgressDoc
}

func newStubProgressStore() *stubProgressStore {
	return &stubProgressStore{docs: map[uuid.UUID]models.ProgressDoc{}}
}

func (s *stubProgressStore) Get(ctx context.Context, userID uuid.UUID) (models.ProgressDoc, bool, error) {
	if s.getErr != nil {
		return models.ProgressDoc{}, false, s.getErr
	}
	doc, ok := s.docs[userID]
	if !ok {
		return models.EmptyProgressDoc(), false, nil
	}
	return doc, true, nil
}

func (s *stubProgressStore) Put(ctx context.Context, userID uuid.UUID, doc models.ProgressDoc) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.puts++
	s.lastPut = doc
	s.docs[userID] = doc
	return nil
}

func TestApplyStreak(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	today := "2026-08-31"
	yesterday := "2026-08-30"

	tests := []struct {
		name        string
		lastLogin   string
		streak      int
		wantStreak  int
		wantChanged bool
	}{
		{"first ever login", "", 0, 1, true},
		{"logged in yesterday", yesterday, 4, 5, true},
		{"already logged in today", today, 4, 4, false},
		{"gap of two days resets", "2026-08-28", 9, 1, true},
		{"gap of a month resets", "2026-07-31", 30, 1, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := models.EmptyProgressDoc()
			doc.LastLogin = tc.lastLogin
			doc.Streak = tc.streak

			got, changed := applyStreak(doc, now)

			if got.Streak != tc.wantStreak {
				t.Errorf("expected streak %d, got %d", tc.wantStreak, got.Streak)
			}
			if changed != tc.wantChanged {
				t.Errorf("expected changed=%v, got %v", tc.wantChanged, changed)
			}
			if changed && got.LastLogin != today {
				t.Errorf("expected lastLogin %q, got %q", today, got.LastLogin)
			}
		})
	}
}

func TestLoad_AppliesStreakOnce(t *testing.T) {
	store := newStubProgressStore()
	svc := NewProgressService(store, nil)
	userID := uuid.New()

	doc, degraded, err := svc.Load(context.Background(), userID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if degraded {
		t.Fatal("expected a healthy load")
	}
	if doc.Streak != 1 {
		t.Errorf("expected streak 1 after first load, got %d", doc.Streak)
	}

	// Second load on the same day must not increment again.
	doc, _, err = svc.Load(context.Background(), userID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if doc.Streak != 1 {
		t.Errorf("expected streak to stay 1 on same-day reload, got %d", doc.Streak)
	}
}

func TestLoad_StoreUnreachableDegrades(t *testing.T) {
	store := newStubProgressStore()
	store.getErr = errors.New("connection refused")
	svc := NewProgressService(store, nil)

	doc, degraded, err := svc.Load(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Load must not fail when degrading: %v", err)
	}
	if !degraded {
		t.Fatal("expected degraded flag")
	}
	if len(doc.Watched) != 0 || len(doc.Favorites) != 0 {
		t.Errorf("expected empty degraded document, got %+v", doc)
	}
}

func TestToggleID(t *testing.T) {
	ids := toggleID(nil, "a")
	if len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("expected [a], got %v", ids)
	}

	ids = toggleID(ids, "b")
	ids = toggleID(ids, "a")
	if len(ids) != 1 || ids[0] != "b" {
		t.Fatalf("expected [b] after removing a, got %v", ids)
	}

	// Toggling twice restores the original membership.
	ids = toggleID(toggleID(ids, "c"), "c")
	if len(ids) != 1 || ids[0] != "b" {
		t.Fatalf("expected [b] after double toggle, got %v", ids)
	}
}

func TestToggleID_DoesNotMutateInput(t *testing.T) {
	original := []string{"a", "b", "c"}
	_ = toggleID(original, "b")

	if original[0] != "a" || original[1] != "b" || original[2] != "c" {
		t.Fatalf("input slice was mutated: %v", original)
	}
}

func TestToggleWatched_Persists(t *testing.T) {
	store := newStubProgressStore()
	svc := NewProgressService(store, nil)
	userID := uuid.New()

	doc, err := svc.ToggleWatched(context.Background(), userID, "vid1")
	if err != nil {
		t.Fatalf("ToggleWatched failed: %v", err)
	}
	if len(doc.Watched) != 1 || doc.Watched[0] != "vid1" {
		t.Fatalf("expected watched [vid1], got %v", doc.Watched)
	}

	doc, err = svc.ToggleWatched(context.Background(), userID, "vid1")
	if err != nil {
		t.Fatalf("ToggleWatched failed: %v", err)
	}
	if len(doc.Watched) != 0 {
		t.Fatalf("expected empty watched after untoggle, got %v", doc.Watched)
	}
	if store.puts != 2 {
		t.Errorf("expected 2 writes, got %d", store.puts)
	}
}

func TestToggleFavorite_LeavesOtherSetsAlone(t *testing.T) {
	store := newStubProgressStore()
	svc := NewProgressService(store, nil)
	userID := uuid.New()

	if _, err := svc.ToggleWatched(context.Background(), userID, "vid1"); err != nil {
		t.Fatalf("ToggleWatched failed: %v", err)
	}
	doc, err := svc.ToggleFavorite(context.Background(), userID, "vid2")
	if err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}

	if len(doc.Watched) != 1 || doc.Watched[0] != "vid1" {
		t.Errorf("watched set was disturbed: %v", doc.Watched)
	}
	if len(doc.Favorites) != 1 || doc.Favorites[0] != "vid2" {
		t.Errorf("expected favorites [vid2], got %v", doc.Favorites)
	}
}

func TestReadMergeWrite_LastCommitWins(t *testing.T) {
	store := newStubProgressStore()
	userID := uuid.New()
	ctx := context.Background()

	// Two writers read the same snapshot before either commits.
	docA, _, err := store.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	docB, _, err := store.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	docA.Watched = toggleID(docA.Watched, "vid1")
	docB.Favorites = toggleID(docB.Favorites, "vid2")

	if err := store.Put(ctx, userID, docA); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := store.Put(ctx, userID, docB); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	// The later commit replaces the document wholesale: B's favorite lands,
	// A's watched toggle is lost with it.
	final, _, err := store.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(final.Watched) != 0 {
		t.Errorf("expected the earlier writer's toggle to be overwritten, got %v", final.Watched)
	}
	if len(final.Favorites) != 1 || final.Favorites[0] != "vid2" {
		t.Errorf("expected the later writer's favorites to win, got %v", final.Favorites)
	}
}

func TestSetNote(t *testing.T) {
	store := newStubProgressStore()
	svc := NewProgressService(store, nil)
	userID := uuid.New()

	doc, err := svc.SetNote(context.Background(), userID, "vid1", "remember the two-pointer trick")
	if err != nil {
		t.Fatalf("SetNote failed: %v", err)
	}
	if doc.Notes["vid1"] != "remember the two-pointer trick" {
		t.Fatalf("note not stored: %v", doc.Notes)
	}

	// Blank text deletes the note.
	doc, err = svc.SetNote(context.Background(), userID, "vid1", "   ")
	if err != nil {
		t.Fatalf("SetNote failed: %v", err)
	}
	if _, ok := doc.Notes["vid1"]; ok {
		t.Fatalf("expected note to be removed, got %v", doc.Notes)
	}
}

func TestSetLeetCodeUsername(t *testing.T) {
	store := newStubProgressStore()
	svc := NewProgressService(store, nil)
	userID := uuid.New()

	if err := svc.SetLeetCodeUsername(context.Background(), userID, "  gopher  "); err != nil {
		t.Fatalf("SetLeetCodeUsername failed: %v", err)
	}

	username, err := svc.LeetCodeUsername(context.Background(), userID)
	if err != nil {
		t.Fatalf("LeetCodeUsername failed: %v", err)
	}
	if username != "gopher" {
		t.Errorf("expected trimmed username 'gopher', got %q", username)
	}

	if err := svc.SetLeetCodeUsername(context.Background(), userID, "   "); err == nil {
		t.Fatal("expected validation error for blank username")
	}
}

func TestCompletionPercent(t *testing.T) {
	tests := []struct {
		watched, total, want int
	}{
		{0, 0, 0},
		{0, 10, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds up
		{10, 10, 100},
	}

	for _, tc := range tests {
		if got := CompletionPercent(tc.watched, tc.total); got != tc.want {
			t.Errorf("CompletionPercent(%d, %d) = %d, want %d", tc.watched, tc.total, got, tc.want)
		}
	}
}

func TestNextUnwatched(t *testing.T) {
	catalog := []models.Video{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	if next := NextUnwatched(catalog, nil); next == nil || next.ID != "a" {
		t.Errorf("expected first video, got %+v", next)
	}
	if next := NextUnwatched(catalog, []string{"a"}); next == nil || next.ID != "b" {
		t.Errorf("expected second video, got %+v", next)
	}
	// Watched order does not matter, catalog order does.
	if next := NextUnwatched(catalog, []string{"b", "a"}); next == nil || next.ID != "c" {
		t.Errorf("expected third video, got %+v", next)
	}
	if next := NextUnwatched(catalog, []string{"a", "b", "c"}); next != nil {
		t.Errorf("expected nil when everything is watched, got %+v", next)
	}
}

func TestBuildView_CelebratesExactlyOnce(t *testing.T) {
	store := newStubProgressStore()
	svc := NewProgressService(store, nil)
	userID := uuid.New()
	catalog := []models.Video{{ID: "a"}, {ID: "b"}}

	doc := models.EmptyProgressDoc()
	doc.Watched = []string{"a", "b"}
	if err := store.Put(context.Background(), userID, doc); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	view := svc.BuildView(context.Background(), userID, doc, catalog, false)
	if !view.Celebrate {
		t.Fatal("expected first full completion to celebrate")
	}
	if view.CompletionPercent != 100 {
		t.Errorf("expected 100%%, got %d", view.CompletionPercent)
	}

	// The flag must be persisted so a reload stays quiet.
	reloaded, _, err := store.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !reloaded.Celebrated {
		t.Fatal("expected celebrated flag to be persisted")
	}

	view = svc.BuildView(context.Background(), userID, reloaded, catalog, false)
	if view.Celebrate {
		t.Fatal("expected no second celebration")
	}
}

func TestBuildView_EmptyCatalogNeverCelebrates(t *testing.T) {
	store := newStubProgressStore()
	svc := NewProgressService(store, nil)

	view := svc.BuildView(context.Background(), uuid.New(), models.EmptyProgressDoc(), nil, false)
	if view.Celebrate {
		t.Fatal("an empty catalog must not celebrate")
	}
	if view.CompletionPercent != 0 || view.TotalCount != 0 {
		t.Errorf("expected zeroed view, got %+v", view)
	}
}

func TestBuildView_DegradedSuppressesCelebration(t *testing.T) {
	store := newStubProgressStore()
	svc := NewProgressService(store, nil)
	catalog := []models.Video{{ID: "a"}}

	doc := models.EmptyProgressDoc()
	doc.Watched = []string{"a"}

	view := svc.BuildView(context.Background(), uuid.New(), doc, catalog, true)
	if view.Celebrate {
		t.Fatal("degraded state must not trigger a celebration write")
	}
	if !view.Degraded {
		t.Fatal("expected degraded flag on the view")
	}
}
