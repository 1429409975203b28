package external

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lacajita/backend/internal/metrics"
	"github.com/lacajita/backend/internal/models"
)

// DefaultTokenRefreshMargin is how long before expiry a cached token is
// replaced.
const DefaultTokenRefreshMargin = 300 * time.Second

// Token is an access token with its absolute expiry.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// TokenFetcher obtains a fresh token from the identity provider.
type TokenFetcher func(ctx context.Context) (Token, error)

// TokenCache holds one access token and refreshes it shortly before it expires.
type TokenCache struct {
	fetch  TokenFetcher
	margin time.Duration
	now    func() time.Time

	mu    sync.RWMutex
	token Token
}

// NewTokenCache returns a cache that calls fetch when the held token is
// missing or within margin of its expiry. A non-positive margin uses
// DefaultTokenRefreshMargin.
func NewTokenCache(fetch TokenFetcher, margin time.Duration, now func() time.Time) *TokenCache {
	if margin <= 0 {
		margin = DefaultTokenRefreshMargin
	}
	if now == nil {
		now = time.Now
	}
	return &TokenCache{fetch: fetch, margin: margin, now: now}
}

// Get returns the cached token, fetching a new one if needed.
func (c *TokenCache) Get(ctx context.Context) (string, error) {
	if c == nil || c.fetch == nil {
		return "", ErrNotConfigured
	}

	now := c.now()

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token.AccessToken != "" && now.Before(token.ExpiresAt.Add(-c.margin)) {
		metrics.CacheHit("auth0_mgmt_token", true)
		return token.AccessToken, nil
	}
	metrics.CacheHit("auth0_mgmt_token", false)

	fresh, err := c.fetch(ctx)
	if err != nil {
		return "", err
	}
	if fresh.AccessToken == "" {
		return "", errors.New("external: identity provider returned an empty token")
	}

	c.mu.Lock()
	c.token = fresh
	c.mu.Unlock()

	return fresh.AccessToken, nil
}

// Invalidate drops the held token so the next Get fetches a new one.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	c.token = Token{}
	c.mu.Unlock()
}

// UsersFetcher loads the full user list from the identity provider.
type UsersFetcher func(ctx context.Context) ([]models.Auth0User, error)

// UsersCache memoizes the user list for a TTL.
type UsersCache struct {
	fetch UsersFetcher
	ttl   time.Duration
	now   func() time.Time

	mu      sync.RWMutex
	users   []models.Auth0User
	expires time.Time
}

// NewUsersCache returns a cache over fetch. A non-positive TTL defaults to one
// minute.
func NewUsersCache(fetch UsersFetcher, ttl time.Duration, now func() time.Time) *UsersCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &UsersCache{fetch: fetch, ttl: ttl, now: now}
}

// Users returns the cached list when fresh, otherwise it fetches and stores
// the result. Concurrent misses may fetch twice.
func (c *UsersCache) Users(ctx context.Context) ([]models.Auth0User, error) {
	if c == nil || c.fetch == nil {
		return nil, ErrNotConfigured
	}

	now := c.now()

	c.mu.RLock()
	users, expires := c.users, c.expires
	c.mu.RUnlock()
	if users != nil && now.Before(expires) {
		metrics.CacheHit("auth0_users", true)
		return users, nil
	}
	metrics.CacheHit("auth0_users", false)

	users, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.Auth0User{}
	}

	c.mu.Lock()
	c.users = users
	c.expires = now.Add(c.ttl)
	c.mu.Unlock()

	return users, nil
}
