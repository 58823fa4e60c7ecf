package services

import "errors"

// Sentinel errors for the LeetCode fetch paths.
var (
	// ErrAllRelaysExhausted means every configured CORS relay failed for a
	// GraphQL request.
	ErrAllRelaysExhausted = errors.New("all proxy relays failed")

	// ErrFallbackUnavailable means the secondary REST statistics endpoint
	// could not serve the request either.
	ErrFallbackUnavailable = errors.New("fallback statistics endpoint unavailable")

	// ErrLeetCodeUserNotFound is surfaced as a distinct user-facing message,
	// unlike an absent progress document which is a valid empty state.
	ErrLeetCodeUserNotFound = errors.New("leetcode username not found")
)

// Custom errors
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }

type UnavailableError struct{ Message string }

func (e *UnavailableError) Error() string { return e.Message }
