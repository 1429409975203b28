package external

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	jwplayerTimeout = 15 * time.Second
	jwplayerBaseURL = "https://api.jwplayer.com"
)

// JWPlayerConfig carries the analytics API credentials.
type JWPlayerConfig struct {
	APIKey    string
	APISecret string
	SiteID    string
}

// JWPlayerClient queries the JWPlayer analytics API.
type JWPlayerClient struct {
	cfg     JWPlayerConfig
	baseURL string
	up      *upstream
}

// NewJWPlayerClient builds a client for the configured site.
func NewJWPlayerClient(cfg JWPlayerConfig, opts ...Option) *JWPlayerClient {
	o := buildOptions(opts)
	baseURL := o.baseURL
	if baseURL == "" {
		baseURL = jwplayerBaseURL
	}
	return &JWPlayerClient{
		cfg:     cfg,
		baseURL: strings.TrimRight(baseURL, "/"),
		up:      newUpstream("jwplayer", o.client, jwplayerTimeout, o.breaker),
	}
}

// Configured reports whether key, secret and site id are all set.
func (c *JWPlayerClient) Configured() bool {
	return c != nil && c.cfg.APIKey != "" && c.cfg.APISecret != "" && c.cfg.SiteID != ""
}

// VideoPerformance returns the raw video performance report for period,
// such as "7d".
func (c *JWPlayerClient) VideoPerformance(ctx context.Context, period string) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	target := c.baseURL + "/v2/sites/" + url.PathEscape(c.cfg.SiteID) +
		"/analytics/queries/video-performance?" + url.Values{"timeframe": {period}}.Encode()
	req, err := newJSONRequest(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.cfg.APIKey, c.cfg.APISecret)

	body, err := c.up.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}
