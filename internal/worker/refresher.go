package worker

import (
	"context"
	"log"
	"time"

	"algobites-backend/internal/services"
)

// CatalogRefresher re-fetches the playlist on an interval so the cached
// catalog never goes stale for longer than the refresh period, even when no
// request happens to miss the cache.
type CatalogRefresher struct {
	playlist *services.PlaylistService
	interval time.Duration
	stopChan chan struct{}
}

func NewCatalogRefresher(playlist *services.PlaylistService, interval time.Duration) *CatalogRefresher {
	return &CatalogRefresher{
		playlist: playlist,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (r *CatalogRefresher) Start() {
	if r.playlist == nil {
		return
	}

	go r.loop()
	log.Printf("Catalog refresher started (interval: %s)", r.interval)
}

func (r *CatalogRefresher) Stop() {
	select {
	case <-r.stopChan:
		return
	default:
		close(r.stopChan)
	}
}

func (r *CatalogRefresher) loop() {
	// Warm the cache on startup as well as by interval.
	r.refresh()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.refresh()
		}
	}
}

func (r *CatalogRefresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	videos, err := r.playlist.RefreshCatalog(ctx)
	if err != nil {
		log.Printf("catalog refresh: %v", err)
		return
	}
	log.Printf("catalog refresh: %d videos cached", len(videos))
}
