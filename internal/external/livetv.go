package external

import (
	"context"
	"net/http"
	"time"

	"github.com/lacajita/backend/internal/models"
)

const liveTVTimeout = 5 * time.Second

// LiveTVClient reads the channel list from the LiveTV feed.
type LiveTVClient struct {
	url string
	up  *upstream
}

// NewLiveTVClient builds a client for the feed at feedURL. WithBaseURL
// replaces feedURL.
func NewLiveTVClient(feedURL string, opts ...Option) *LiveTVClient {
	o := buildOptions(opts)
	if o.baseURL != "" {
		feedURL = o.baseURL
	}
	return &LiveTVClient{
		url: feedURL,
		up:  newUpstream("livetv", o.client, liveTVTimeout, o.breaker),
	}
}

// Channels returns the feed's channels in feed order.
func (c *LiveTVClient) Channels(ctx context.Context) ([]models.LiveTVChannel, error) {
	if c == nil || c.url == "" {
		return nil, ErrNotConfigured
	}

	req, err := newJSONRequest(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	body, err := c.up.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var channels []models.LiveTVChannel
	if err := decodeBody("livetv", body, &channels); err != nil {
		return nil, err
	}
	if channels == nil {
		channels = []models.LiveTVChannel{}
	}
	return channels, nil
}

// BreakerState reports the circuit breaker state.
func (c *LiveTVClient) BreakerState() string {
	return c.up.State()
}
