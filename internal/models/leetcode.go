package models

// LeetCodeProfile is the canonical profile shape both fetch paths converge to.
// The GraphQL path fills every section; the REST fallback leaves Submissions
// and Calendar empty. Consumers only check which optional sections are present,
// never which path produced the data.
type LeetCodeProfile struct {
	Username    string            `json:"username"`
	RealName    string            `json:"real_name"`
	AvatarURL   string            `json:"avatar_url,omitempty"`
	Ranking     int               `json:"ranking"`
	Reputation  int               `json:"reputation"`
	Solved      []DifficultyCount `json:"solved"`
	Totals      []DifficultyCount `json:"totals"`
	Badges      []Badge           `json:"badges,omitempty"`
	Submissions []Submission      `json:"submissions"`
	Calendar    map[int64]int     `json:"calendar"` // epoch day → submission count
	Streak      int               `json:"streak,omitempty"`
	ActiveDays  int               `json:"active_days,omitempty"`
}

type DifficultyCount struct {
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

type Badge struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Icon        string `json:"icon"`
	Category    string `json:"category,omitempty"`
}

type Submission struct {
	Title     string `json:"title"`
	TitleSlug string `json:"title_slug"`
	Status    string `json:"status"`
	Lang      string `json:"lang"`
	Runtime   string `json:"runtime"`
	Memory    string `json:"memory"`
	Timestamp int64  `json:"timestamp"`
}

type LinkUsernameRequest struct {
	Username string `json:"username"`
}
