package auth

import "errors"

var (
	// ErrAuthFailed is returned when no access token could be acquired.
	ErrAuthFailed = errors.New("failed to get access token")
	// ErrRateLimited marks an authorization attempt rejected by the rate
	// limiter. Such attempts are retried.
	ErrRateLimited = errors.New("authorization rate limit reached")
)
