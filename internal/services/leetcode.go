package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"
)

const (
	leetCodeGraphQLEndpoint = "https://leetcode.com/graphql"
	leetCodeFallbackBaseURL = "https://leetcode-stats-api.herokuapp.com/"

	recentSubmissionLimit = 20
)

const userProfileQuery = `
query getUserProfile($username: String!) {
  matchedUser(username: $username) {
    username
    profile {
      realName
      userAvatar
      ranking
      reputation
    }
    submitStats {
      acSubmissionNum { difficulty count }
      totalSubmissionNum { difficulty count }
    }
    badges { id displayName icon category }
  }
}`

const recentSubmissionsQuery = `
query getRecentSubmissions($username: String!, $limit: Int!) {
  recentSubmissionList(username: $username, limit: $limit) {
    title
    titleSlug
    timestamp
    statusDisplay
    lang
    runtime
    memory
  }
}`

const submissionCalendarQuery = `
query getUserCalendar($username: String!, $year: Int!) {
  matchedUser(username: $username) {
    userCalendar(year: $year) {
      streak
      totalActiveDays
      submissionCalendar
    }
  }
}`

// LeetCodeService fetches public profile statistics through an ordered list of
// CORS relays, with a flat REST statistics endpoint as the fallback of last
// resort.
type LeetCodeService struct {
	httpClient  *http.Client
	relays      []string
	endpoint    string
	fallbackURL string
}

func NewLeetCodeService(relays []string) *LeetCodeService {
	return &LeetCodeService{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		relays:      relays,
		endpoint:    leetCodeGraphQLEndpoint,
		fallbackURL: leetCodeFallbackBaseURL,
	}
}

// errGraphQLRejected means a relay delivered the request but the endpoint
// answered with an application-level GraphQL error. The profile fetch treats
// this the same as relay exhaustion and moves on to the REST fallback.
var errGraphQLRejected = errors.New("graphql request rejected")

// graphQLEnvelope is the raw response shape of the GraphQL endpoint. A
// non-empty Errors slice is an application-level failure the caller must
// interpret; fetchGraphQL returns it verbatim.
type graphQLEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// fetchGraphQL posts the query through each relay in order and returns the
// first successfully parsed envelope. Relays are tried strictly sequentially;
// a relay that answers 200 with a non-JSON error page counts as a failed
// attempt rather than a success.
func (s *LeetCodeService) fetchGraphQL(ctx context.Context, query string, variables map[string]interface{}) (*graphQLEnvelope, error) {
	body, err := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode GraphQL request: %w", err)
	}

	for i, relay := range s.relays {
		envelope, attemptErr := s.attemptRelay(ctx, relay, body)
		if attemptErr != nil {
			log.Printf("leetcode: relay %d/%d failed: %v", i+1, len(s.relays), attemptErr)
			continue
		}
		return envelope, nil
	}

	return nil, ErrAllRelaysExhausted
}

func (s *LeetCodeService) attemptRelay(ctx context.Context, relay string, body []byte) (*graphQLEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, relay+s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://leetcode.com")
	req.Header.Set("Referer", "https://leetcode.com/")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("relay returned status %d", resp.StatusCode)
	}

	var envelope graphQLEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("relay returned non-JSON body: %w", err)
	}
	// Some relays wrap their own error pages in 200 responses. A body with
	// neither data nor errors is not a GraphQL envelope.
	if envelope.Data == nil && len(envelope.Errors) == 0 {
		return nil, fmt.Errorf("relay returned unexpected body shape")
	}

	return &envelope, nil
}
