package models

// ProgressDoc is the per-user progress document. Field names mirror the stored
// JSON document so a merge-write patches exactly the keys named here.
type ProgressDoc struct {
	Watched          []string          `json:"watched"`
	Favorites        []string          `json:"favorites"`
	Queue            []string          `json:"queue"`
	Notes            map[string]string `json:"notes"`
	Streak           int               `json:"streak"`
	LastLogin        string            `json:"lastLogin"`
	LeetCodeUsername string            `json:"leetcodeUsername,omitempty"`
	Celebrated       bool              `json:"celebrated,omitempty"`
}

// EmptyProgressDoc returns a default-empty document, the state an absent
// document is treated as.
func EmptyProgressDoc() ProgressDoc {
	return ProgressDoc{
		Watched:   []string{},
		Favorites: []string{},
		Queue:     []string{},
		Notes:     map[string]string{},
	}
}

// ProgressView is the document plus the derived values the UI renders.
type ProgressView struct {
	ProgressDoc
	WatchedCount      int    `json:"watched_count"`
	TotalCount        int    `json:"total_count"`
	CompletionPercent int    `json:"completion_percent"`
	NextUnwatched     *Video `json:"next_unwatched,omitempty"`
	Celebrate         bool   `json:"celebrate"`
	Degraded          bool   `json:"degraded"`
}

type NoteRequest struct {
	Text string `json:"text"`
}
