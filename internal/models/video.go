package models

// Video is one entry of the curated playlist. Built once per catalog load and
// immutable afterwards.
type Video struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`      // embeddable player URL
	Duration string `json:"duration"` // human-readable, e.g. "5m 30s"
}

type CatalogResponse struct {
	Videos []Video `json:"videos"`
	Total  int     `json:"total"`
}
