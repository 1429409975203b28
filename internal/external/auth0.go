package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lacajita/backend/internal/models"
)

const (
	auth0Timeout        = 10 * time.Second
	usersPageSize       = 50
	maxListedUsers      = 2000
	defaultTokenTTL     = 24 * time.Hour
	defaultDBConnection = "Username-Password-Authentication"
)

var userFields = []string{
	"user_id", "email", "email_verified", "blocked", "created_at", "last_login",
	"last_ip", "logins_count", "identities", "app_metadata", "user_metadata",
}

// Auth0Config carries the tenant and client credentials.
type Auth0Config struct {
	Domain   string
	Audience string

	// ClientID and ClientSecret authenticate the password grant.
	ClientID     string
	ClientSecret string

	// MgmtClientID and MgmtClientSecret authenticate the client credentials
	// grants, for the API audience and for the Management API.
	MgmtClientID     string
	MgmtClientSecret string

	UsersCacheTTL time.Duration
}

// TokenResponse is the body of a successful oauth/token call.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

// Auth0Client talks to the Auth0 authentication and Management APIs.
type Auth0Client struct {
	cfg     Auth0Config
	baseURL string
	now     func() time.Time
	up      *upstream
	tokens  *TokenCache
	users   *UsersCache
}

// NewAuth0Client builds a client for the configured tenant.
func NewAuth0Client(cfg Auth0Config, opts ...Option) *Auth0Client {
	o := buildOptions(opts)

	baseURL := o.baseURL
	if baseURL == "" {
		baseURL = "https://" + cfg.Domain
	}

	c := &Auth0Client{
		cfg:     cfg,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     o.now,
		up:      newUpstream("auth0", o.client, auth0Timeout, o.breaker),
	}
	c.tokens = NewTokenCache(c.fetchManagementToken, DefaultTokenRefreshMargin, o.now)
	c.users = NewUsersCache(c.fetchUsers, cfg.UsersCacheTTL, o.now)
	return c
}

// Configured reports whether the tenant and client credentials are present.
func (c *Auth0Client) Configured() bool {
	return c != nil && c.cfg.Domain != "" && c.cfg.MgmtClientID != "" && c.cfg.MgmtClientSecret != ""
}

// BreakerState reports the circuit breaker state.
func (c *Auth0Client) BreakerState() string {
	return c.up.State()
}

// ClientCredentials exchanges the service credentials for an access token to
// this API.
func (c *Auth0Client) ClientCredentials(ctx context.Context) (TokenResponse, error) {
	if !c.Configured() {
		return TokenResponse{}, ErrNotConfigured
	}

	token, err := c.clientCredentials(ctx, c.cfg.Audience)
	if err != nil {
		return TokenResponse{}, err
	}
	if token.TokenType == "" {
		token.TokenType = "Bearer"
	}
	return token, nil
}

// PasswordLogin runs the resource owner password grant and returns the raw
// token response.
func (c *Auth0Client) PasswordLogin(ctx context.Context, email, password string) (json.RawMessage, error) {
	if c == nil || c.cfg.Domain == "" {
		return nil, ErrNotConfigured
	}

	clientID, clientSecret := c.cfg.ClientID, c.cfg.ClientSecret
	if clientID == "" {
		clientID, clientSecret = c.cfg.MgmtClientID, c.cfg.MgmtClientSecret
	}

	req, err := newJSONRequest(ctx, http.MethodPost, c.baseURL+"/oauth/token", map[string]string{
		"grant_type":    "password",
		"username":      email,
		"password":      password,
		"audience":      c.cfg.Audience,
		"scope":         "openid profile email",
		"client_id":     clientID,
		"client_secret": clientSecret,
	})
	if err != nil {
		return nil, err
	}

	body, err := c.up.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// CreateUser creates a database user. An empty connection uses the default
// username-password connection.
func (c *Auth0Client) CreateUser(ctx context.Context, email, password, connection string) (json.RawMessage, error) {
	if connection == "" {
		connection = defaultDBConnection
	}
	return c.management(ctx, http.MethodPost, "/api/v2/users", nil, map[string]string{
		"email":      email,
		"password":   password,
		"connection": connection,
	})
}

// ListUsers returns every user up to the listing cap, served from cache
// while fresh.
func (c *Auth0Client) ListUsers(ctx context.Context) ([]models.Auth0User, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	return c.users.Users(ctx)
}

// GetUser returns one user profile.
func (c *Auth0Client) GetUser(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.management(ctx, http.MethodGet, "/api/v2/users/"+url.PathEscape(userID), nil, nil)
}

// ListRoles returns the tenant roles.
func (c *Auth0Client) ListRoles(ctx context.Context) (json.RawMessage, error) {
	return c.management(ctx, http.MethodGet, "/api/v2/roles", nil, nil)
}

// UserRoles returns the roles assigned to one user.
func (c *Auth0Client) UserRoles(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.management(ctx, http.MethodGet, "/api/v2/users/"+url.PathEscape(userID)+"/roles", nil, nil)
}

func (c *Auth0Client) fetchUsers(ctx context.Context) ([]models.Auth0User, error) {
	users := []models.Auth0User{}
	for page := 0; page < maxListedUsers/usersPageSize; page++ {
		query := url.Values{
			"fields":         {strings.Join(userFields, ",")},
			"include_fields": {"true"},
			"include_totals": {"true"},
			"sort":           {"created_at:1"},
			"page":           {strconv.Itoa(page)},
			"per_page":       {strconv.Itoa(usersPageSize)},
		}
		body, err := c.management(ctx, http.MethodGet, "/api/v2/users", query, nil)
		if err != nil {
			return nil, err
		}

		batch, err := decodeUsersPage(body)
		if err != nil {
			return nil, err
		}
		users = append(users, batch...)
		if len(batch) < usersPageSize {
			break
		}
	}
	return users, nil
}

// decodeUsersPage accepts both the bare array and the include_totals envelope.
func decodeUsersPage(body []byte) ([]models.Auth0User, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var users []models.Auth0User
		if err := decodeBody("auth0", body, &users); err != nil {
			return nil, err
		}
		return users, nil
	}

	var envelope struct {
		Users []models.Auth0User `json:"users"`
	}
	if err := decodeBody("auth0", body, &envelope); err != nil {
		return nil, err
	}
	return envelope.Users, nil
}

func (c *Auth0Client) management(ctx context.Context, method, path string, query url.Values, payload any) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	token, err := c.tokens.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("management token: %w", err)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := newJSONRequest(ctx, method, target, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	body, err := c.up.do(ctx, req)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Status == http.StatusUnauthorized {
			c.tokens.Invalidate()
		}
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *Auth0Client) fetchManagementToken(ctx context.Context) (Token, error) {
	issued := c.now()
	resp, err := c.clientCredentials(ctx, "https://"+c.cfg.Domain+"/api/v2/")
	if err != nil {
		return Token{}, err
	}

	ttl := time.Duration(resp.ExpiresIn) * time.Second
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return Token{AccessToken: resp.AccessToken, ExpiresAt: issued.Add(ttl)}, nil
}

func (c *Auth0Client) clientCredentials(ctx context.Context, audience string) (TokenResponse, error) {
	req, err := newJSONRequest(ctx, http.MethodPost, c.baseURL+"/oauth/token", map[string]string{
		"client_id":     c.cfg.MgmtClientID,
		"client_secret": c.cfg.MgmtClientSecret,
		"audience":      audience,
		"grant_type":    "client_credentials",
	})
	if err != nil {
		return TokenResponse{}, err
	}

	body, err := c.up.do(ctx, req)
	if err != nil {
		return TokenResponse{}, err
	}

	var token TokenResponse
	if err := decodeBody("auth0", body, &token); err != nil {
		return TokenResponse{}, err
	}
	return token, nil
}
