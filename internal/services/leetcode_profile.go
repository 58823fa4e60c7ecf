package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"algobites-backend/internal/models"
)

// FetchProfile assembles the canonical profile for a username. The GraphQL
// path runs first: profile and solve counts are required, recent submissions
// and the calendar are best-effort. The flat REST fallback runs when the
// GraphQL path is abandoned, either because every relay failed or because the
// endpoint itself rejected the query; an unknown username is never retried
// against the fallback, it stays the distinct not-found error.
func (s *LeetCodeService) FetchProfile(ctx context.Context, username string) (*models.LeetCodeProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, &ValidationError{Fields: map[string]string{"username": "Username is required"}}
	}

	profile, err := s.fetchGraphQLProfile(ctx, username)
	if errors.Is(err, ErrAllRelaysExhausted) || errors.Is(err, errGraphQLRejected) {
		log.Printf("leetcode: GraphQL path abandoned for %q (%v), trying REST fallback", username, err)
		return s.fetchFallbackProfile(ctx, username)
	}
	if err != nil {
		return nil, err
	}

	// Optional sections: a failure here degrades the profile, it never fails
	// the whole fetch.
	if subs, subErr := s.fetchRecentSubmissions(ctx, username); subErr != nil {
		log.Printf("leetcode: recent submissions unavailable for %q: %v", username, subErr)
	} else {
		profile.Submissions = subs
	}

	if cal, streak, activeDays, calErr := s.fetchSubmissionCalendar(ctx, username, time.Now().Year()); calErr != nil {
		log.Printf("leetcode: submission calendar unavailable for %q: %v", username, calErr)
	} else {
		profile.Calendar = cal
		profile.Streak = streak
		profile.ActiveDays = activeDays
	}

	return profile, nil
}

func (s *LeetCodeService) fetchGraphQLProfile(ctx context.Context, username string) (*models.LeetCodeProfile, error) {
	envelope, err := s.fetchGraphQL(ctx, userProfileQuery, map[string]interface{}{"username": username})
	if err != nil {
		return nil, err
	}
	if len(envelope.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", errGraphQLRejected, envelope.Errors[0].Message)
	}

	var data struct {
		MatchedUser *struct {
			Username string `json:"username"`
			Profile  struct {
				RealName   string `json:"realName"`
				UserAvatar string `json:"userAvatar"`
				Ranking    int    `json:"ranking"`
				Reputation int    `json:"reputation"`
			} `json:"profile"`
			SubmitStats struct {
				AcSubmissionNum    []models.DifficultyCount `json:"acSubmissionNum"`
				TotalSubmissionNum []models.DifficultyCount `json:"totalSubmissionNum"`
			} `json:"submitStats"`
			Badges []struct {
				ID          string `json:"id"`
				DisplayName string `json:"displayName"`
				Icon        string `json:"icon"`
				Category    string `json:"category"`
			} `json:"badges"`
		} `json:"matchedUser"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode profile response: %w", err)
	}
	if data.MatchedUser == nil {
		return nil, ErrLeetCodeUserNotFound
	}

	mu := data.MatchedUser
	profile := &models.LeetCodeProfile{
		Username:    mu.Username,
		RealName:    mu.Profile.RealName,
		AvatarURL:   mu.Profile.UserAvatar,
		Ranking:     mu.Profile.Ranking,
		Reputation:  mu.Profile.Reputation,
		Solved:      mu.SubmitStats.AcSubmissionNum,
		Totals:      mu.SubmitStats.TotalSubmissionNum,
		Submissions: []models.Submission{},
		Calendar:    map[int64]int{},
	}
	if profile.RealName == "" {
		profile.RealName = mu.Username
	}
	for _, b := range mu.Badges {
		profile.Badges = append(profile.Badges, models.Badge{
			ID:          b.ID,
			DisplayName: b.DisplayName,
			Icon:        b.Icon,
			Category:    b.Category,
		})
	}

	return profile, nil
}

func (s *LeetCodeService) fetchRecentSubmissions(ctx context.Context, username string) ([]models.Submission, error) {
	envelope, err := s.fetchGraphQL(ctx, recentSubmissionsQuery, map[string]interface{}{
		"username": username,
		"limit":    recentSubmissionLimit,
	})
	if err != nil {
		return nil, err
	}
	if len(envelope.Errors) > 0 {
		return nil, fmt.Errorf("leetcode API error: %s", envelope.Errors[0].Message)
	}

	var data struct {
		RecentSubmissionList []struct {
			Title         string `json:"title"`
			TitleSlug     string `json:"titleSlug"`
			Timestamp     string `json:"timestamp"`
			StatusDisplay string `json:"statusDisplay"`
			Lang          string `json:"lang"`
			Runtime       string `json:"runtime"`
			Memory        string `json:"memory"`
		} `json:"recentSubmissionList"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode submissions response: %w", err)
	}

	subs := make([]models.Submission, 0, len(data.RecentSubmissionList))
	for _, raw := range data.RecentSubmissionList {
		ts, _ := strconv.ParseInt(raw.Timestamp, 10, 64)
		subs = append(subs, models.Submission{
			Title:     raw.Title,
			TitleSlug: raw.TitleSlug,
			Status:    raw.StatusDisplay,
			Lang:      raw.Lang,
			Runtime:   raw.Runtime,
			Memory:    raw.Memory,
			Timestamp: ts,
		})
	}
	return subs, nil
}

// fetchSubmissionCalendar returns the year's calendar. The endpoint encodes
// the epoch-seconds→count mapping as a JSON string field, so it is parsed
// twice: once as the envelope, once as the embedded document.
func (s *LeetCodeService) fetchSubmissionCalendar(ctx context.Context, username string, year int) (map[int64]int, int, int, error) {
	envelope, err := s.fetchGraphQL(ctx, submissionCalendarQuery, map[string]interface{}{
		"username": username,
		"year":     year,
	})
	if err != nil {
		return nil, 0, 0, err
	}
	if len(envelope.Errors) > 0 {
		return nil, 0, 0, fmt.Errorf("leetcode API error: %s", envelope.Errors[0].Message)
	}

	var data struct {
		MatchedUser *struct {
			UserCalendar struct {
				Streak             int    `json:"streak"`
				TotalActiveDays    int    `json:"totalActiveDays"`
				SubmissionCalendar string `json:"submissionCalendar"`
			} `json:"userCalendar"`
		} `json:"matchedUser"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode calendar response: %w", err)
	}
	if data.MatchedUser == nil {
		return nil, 0, 0, ErrLeetCodeUserNotFound
	}

	cal, err := ParseSubmissionCalendar(data.MatchedUser.UserCalendar.SubmissionCalendar)
	if err != nil {
		return nil, 0, 0, err
	}
	return cal, data.MatchedUser.UserCalendar.Streak, data.MatchedUser.UserCalendar.TotalActiveDays, nil
}

// ParseSubmissionCalendar decodes the JSON-encoded epoch-seconds→count mapping
// string into a typed map. An empty string is a valid empty calendar.
func ParseSubmissionCalendar(encoded string) (map[int64]int, error) {
	cal := map[int64]int{}
	if strings.TrimSpace(encoded) == "" {
		return cal, nil
	}

	var raw map[string]int
	if err := json.Unmarshal([]byte(encoded), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse submission calendar: %w", err)
	}
	for key, count := range raw {
		epoch, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		cal[epoch] = count
	}
	return cal, nil
}

// fetchFallbackProfile queries the flat statistics endpoint and reshapes its
// response into the canonical profile form. This path cannot supply recent
// submissions or a calendar, so those sections are explicitly empty.
func (s *LeetCodeService) fetchFallbackProfile(ctx context.Context, username string) (*models.LeetCodeProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.fallbackURL+username, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, ErrFallbackUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrLeetCodeUserNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ErrFallbackUnavailable
	}

	var flat struct {
		Status       string `json:"status"`
		Name         string `json:"name"`
		Ranking      int    `json:"ranking"`
		Reputation   int    `json:"reputation"`
		EasySolved   int    `json:"easySolved"`
		MediumSolved int    `json:"mediumSolved"`
		HardSolved   int    `json:"hardSolved"`
		TotalEasy    int    `json:"totalEasy"`
		TotalMedium  int    `json:"totalMedium"`
		TotalHard    int    `json:"totalHard"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&flat); err != nil {
		return nil, ErrFallbackUnavailable
	}
	if strings.EqualFold(flat.Status, "error") {
		return nil, ErrLeetCodeUserNotFound
	}

	realName := flat.Name
	if realName == "" {
		realName = username
	}

	return &models.LeetCodeProfile{
		Username:   username,
		RealName:   realName,
		Ranking:    flat.Ranking,
		Reputation: flat.Reputation,
		Solved: []models.DifficultyCount{
			{Difficulty: "Easy", Count: flat.EasySolved},
			{Difficulty: "Medium", Count: flat.MediumSolved},
			{Difficulty: "Hard", Count: flat.HardSolved},
		},
		Totals: []models.DifficultyCount{
			{Difficulty: "Easy", Count: flat.TotalEasy},
			{Difficulty: "Medium", Count: flat.TotalMedium},
			{Difficulty: "Hard", Count: flat.TotalHard},
		},
		Submissions: []models.Submission{},
		Calendar:    map[int64]int{},
	}, nil
}
