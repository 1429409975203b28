package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/lacajita/backend/internal/metrics"
)

// JSONWebKey is a single entry of a JWKS document. Only the fields needed for
// RSA verification are decoded.
type JSONWebKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg,omitempty"`
	Use string `json:"use,omitempty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// KeySet is the decoded JWKS document.
type KeySet struct {
	Keys []JSONWebKey `json:"keys"`
}

// Find returns the key with the given kid.
func (s KeySet) Find(kid string) (JSONWebKey, bool) {
	for _, k := range s.Keys {
		if k.Kid == kid {
			return k, true
		}
	}
	return JSONWebKey{}, false
}

const (
	defaultJWKSTimeout   = 10 * time.Second
	defaultMinRefresh    = 30 * time.Second
	maxJWKSResponseBytes = 1 << 20
)

// KeyCache fetches the identity provider's signing keys and memoizes them.
// A zero TTL keeps the set for the process lifetime. Unknown key ids trigger
// at most one refetch per minRefresh window to follow key rotation.
type KeyCache struct {
	url        string
	client     *http.Client
	ttl        time.Duration
	minRefresh time.Duration
	now        func() time.Time

	mu        sync.RWMutex
	set       *KeySet
	fetchedAt time.Time
}

// KeyCacheOption customises a KeyCache.
type KeyCacheOption func(*KeyCache)

// WithHTTPClient overrides the client used to fetch the key set.
func WithHTTPClient(client *http.Client) KeyCacheOption {
	return func(c *KeyCache) {
		if client != nil {
			c.client = client
		}
	}
}

// WithMinRefresh bounds how often unknown key ids may force a refetch.
func WithMinRefresh(d time.Duration) KeyCacheOption {
	return func(c *KeyCache) { c.minRefresh = d }
}

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) KeyCacheOption {
	return func(c *KeyCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewKeyCache builds a cache for the JWKS document at url.
func NewKeyCache(url string, ttl time.Duration, opts ...KeyCacheOption) *KeyCache {
	c := &KeyCache{
		url:        url,
		client:     &http.Client{Timeout: defaultJWKSTimeout},
		ttl:        ttl,
		minRefresh: defaultMinRefresh,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Keys returns the cached key set, fetching it when absent or expired.
func (c *KeyCache) Keys(ctx context.Context) (KeySet, error) {
	c.mu.RLock()
	set, fetchedAt := c.set, c.fetchedAt
	c.mu.RUnlock()

	if set != nil && (c.ttl <= 0 || c.now().Sub(fetchedAt) < c.ttl) {
		metrics.CacheHit("jwks", true)
		return *set, nil
	}
	metrics.CacheHit("jwks", false)
	return c.refresh(ctx)
}

// Key returns the key with the given kid, refetching once if the cached set
// does not know it.
func (c *KeyCache) Key(ctx context.Context, kid string) (JSONWebKey, error) {
	set, err := c.Keys(ctx)
	if err != nil {
		return JSONWebKey{}, err
	}
	if key, ok := set.Find(kid); ok {
		return key, nil
	}

	c.mu.RLock()
	recent := c.now().Sub(c.fetchedAt) < c.minRefresh
	c.mu.RUnlock()
	if recent {
		return JSONWebKey{}, fmt.Errorf("%w: unknown key id %q", ErrUnauthenticated, kid)
	}

	set, err = c.refresh(ctx)
	if err != nil {
		return JSONWebKey{}, err
	}
	if key, ok := set.Find(kid); ok {
		return key, nil
	}
	return JSONWebKey{}, fmt.Errorf("%w: unknown key id %q", ErrUnauthenticated, kid)
}

func (c *KeyCache) refresh(ctx context.Context) (KeySet, error) {
	set, err := c.fetch(ctx)
	if err != nil {
		return KeySet{}, err
	}

	c.mu.Lock()
	c.set = &set
	c.fetchedAt = c.now()
	c.mu.Unlock()

	return set, nil
}

func (c *KeyCache) fetch(ctx context.Context) (KeySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return KeySet{}, fmt.Errorf("%w: build request: %v", ErrKeyFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return KeySet{}, fmt.Errorf("%w: %v", ErrKeyFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return KeySet{}, fmt.Errorf("%w: status %d from %s", ErrKeyFetch, resp.StatusCode, c.url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJWKSResponseBytes))
	if err != nil {
		return KeySet{}, fmt.Errorf("%w: read body: %v", ErrKeyFetch, err)
	}

	var set KeySet
	if err := json.Unmarshal(body, &set); err != nil {
		return KeySet{}, fmt.Errorf("%w: decode: %v", ErrKeyFetch, err)
	}
	return set, nil
}

// rsaPublicKey converts a JWK into an RSA public key after checking its type
// and required members.
func rsaPublicKey(key JSONWebKey) (*rsa.PublicKey, error) {
	if key.Kty != "RSA" {
		return nil, fmt.Errorf("%w: key %q has type %q, RSA required", ErrUnauthenticated, key.Kid, key.Kty)
	}
	if key.N == "" || key.E == "" {
		return nil, fmt.Errorf("%w: key %q is missing modulus or exponent", ErrUnauthenticated, key.Kid)
	}

	nBytes, err := base64.RawURLEncoding.DecodeString(key.N)
	if err != nil {
		return nil, fmt.Errorf("%w: decode modulus: %v", ErrUnauthenticated, err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(key.E)
	if err != nil {
		return nil, fmt.Errorf("%w: decode exponent: %v", ErrUnauthenticated, err)
	}

	e := new(big.Int).SetBytes(eBytes)
	if !e.IsInt64() || e.Int64() <= 1 {
		return nil, fmt.Errorf("%w: invalid exponent for key %q", ErrUnauthenticated, key.Kid)
	}

	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: int(e.Int64())}, nil
}
