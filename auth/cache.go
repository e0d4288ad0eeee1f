package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/codeforequity-at/botium-connector-nuance/observability"
)

// expiryMargin is subtracted from every token lifetime to absorb clock skew
// and in-flight latency.
const expiryMargin = 10 * time.Second

// TokenCache event types.
const (
	EventTokenReuse   observability.EventType = "auth.token.reuse"
	EventTokenAcquire observability.EventType = "auth.token.acquire"
	EventTokenRetry   observability.EventType = "auth.token.retry"
	EventTokenError   observability.EventType = "auth.token.error"
)

// CacheOption configures a TokenCache.
type CacheOption func(*TokenCache)

// WithRetryPolicy sets the total number of attempts made while rate limited
// and the delay between them.
func WithRetryPolicy(maxAttempts int, delay time.Duration) CacheOption {
	return func(c *TokenCache) {
		c.maxAttempts = maxAttempts
		c.retryDelay = delay
	}
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) CacheOption {
	return func(c *TokenCache) { c.now = now }
}

// WithCacheObserver sets the observer receiving token events.
func WithCacheObserver(o observability.Observer) CacheOption {
	return func(c *TokenCache) { c.observer = o }
}

// TokenCache holds one access token and refreshes it when it expires.
// Concurrent callers share a single in-flight refresh. All methods are safe
// for concurrent use.
type TokenCache struct {
	authenticator Authenticator
	credentials   ClientCredentials
	maxAttempts   int
	retryDelay    time.Duration
	now           func() time.Time
	observer      observability.Observer

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	group     singleflight.Group
}

// NewTokenCache creates a TokenCache that authenticates with creds.
func NewTokenCache(a Authenticator, creds ClientCredentials, opts ...CacheOption) *TokenCache {
	c := &TokenCache{
		authenticator: a,
		credentials:   creds,
		maxAttempts:   DefaultMaxRetries,
		retryDelay:    DefaultRetryDelaySec * time.Second,
		now:           time.Now,
		observer:      observability.NoOpObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns a valid access token, authenticating when the cached one is
// missing or expired. A cache hit performs no I/O.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	if token, ok := c.cached(); ok {
		c.observer.OnEvent(ctx, observability.Event{
			Type:      EventTokenReuse,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    "auth.Token",
			Data:      map[string]any{"remaining_sec": int(c.expiry().Sub(c.now()).Seconds())},
		})
		return token, nil
	}

	ch := c.group.DoChan("token", func() (any, error) {
		if token, ok := c.cached(); ok {
			return token, nil
		}
		c.Invalidate()
		// Shared by every waiter; the retry policy bounds it.
		return c.refresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Invalidate drops the cached token.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiresAt = time.Time{}
}

func (c *TokenCache) cached() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" || !c.now().Before(c.expiresAt) {
		return "", false
	}
	return c.token, true
}

func (c *TokenCache) expiry() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expiresAt
}

func (c *TokenCache) refresh(ctx context.Context) (string, error) {
	maxAttempts := max(c.maxAttempts, 1)

	for attempt := 1; ; attempt++ {
		grant, err := c.authenticator.Authenticate(ctx, c.credentials)
		if err == nil && (grant == nil || grant.AccessToken == "") {
			err = errors.New("empty access token")
		}
		if err == nil {
			c.mu.Lock()
			c.token = grant.AccessToken
			c.expiresAt = c.now().Add(grant.ExpiresIn - expiryMargin)
			c.mu.Unlock()

			c.observer.OnEvent(ctx, observability.Event{
				Type:      EventTokenAcquire,
				Level:     observability.LevelInfo,
				Timestamp: time.Now(),
				Source:    "auth.Token",
				Data:      map[string]any{"attempt": attempt, "expires_in_sec": int(grant.ExpiresIn.Seconds())},
			})
			return grant.AccessToken, nil
		}

		if !errors.Is(err, ErrRateLimited) || attempt >= maxAttempts {
			c.observer.OnEvent(ctx, observability.Event{
				Type:      EventTokenError,
				Level:     observability.LevelError,
				Timestamp: time.Now(),
				Source:    "auth.Token",
				Data:      map[string]any{"attempt": attempt, "error": err.Error()},
			})
			return "", fmt.Errorf("%w: %w", ErrAuthFailed, err)
		}

		c.observer.OnEvent(ctx, observability.Event{
			Type:      EventTokenRetry,
			Level:     observability.LevelWarning,
			Timestamp: time.Now(),
			Source:    "auth.Token",
			Data:      map[string]any{"attempt": attempt, "delay": c.retryDelay.String()},
		})

		if err := sleep(ctx, c.retryDelay); err != nil {
			return "", fmt.Errorf("%w: %w", ErrAuthFailed, err)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
