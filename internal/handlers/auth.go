package handlers

import (
	"net/http"
	"strings"

	"github.com/lacajita/backend/internal/auth"
	"github.com/lacajita/backend/internal/logging"
	"github.com/lacajita/backend/internal/validation"
)

const tokenUsage = "Include in Authorization header as: Bearer {access_token}"

// AuthHandler implements the token and user registration endpoints.
type AuthHandler struct {
	Identity  IdentityProvider
	SecretKey string
}

// ClientCredentials handles POST /auth/client-credentials. The presented
// secret must match SECRET_KEY before a token is requested upstream.
func (h AuthHandler) ClientCredentials(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req clientCredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(ctx, w, err)
		return
	}

	if !auth.SecretMatches(h.SecretKey, req.ClientSecret) {
		logger.Warn("client credentials secret mismatch")
		respondMessage(ctx, w, http.StatusUnauthorized, "invalid client secret")
		return
	}

	if h.Identity == nil {
		logger.Error("identity provider unavailable")
		respondMessage(ctx, w, http.StatusInternalServerError, "authentication services unavailable")
		return
	}

	token, err := h.Identity.ClientCredentials(ctx)
	if err != nil {
		respondError(ctx, w, "token", err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, tokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   token.ExpiresIn,
		Scope:       token.Scope,
		Usage:       tokenUsage,
	})
}

// Login handles POST /login with the resource owner password grant.
// Credentials are read from the query string or a JSON body.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	req := loginRequest{
		Email:    r.URL.Query().Get("email"),
		Password: r.URL.Query().Get("password"),
	}
	if req.Email == "" && req.Password == "" && r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(ctx, w, err)
			return
		}
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := validation.Struct(req); err != nil {
		badRequest(ctx, w, err)
		return
	}

	if h.Identity == nil {
		logger.Error("identity provider unavailable")
		respondMessage(ctx, w, http.StatusInternalServerError, "authentication services unavailable")
		return
	}

	token, err := h.Identity.PasswordLogin(ctx, req.Email, req.Password)
	if err != nil {
		logger.Warn("password login failed", "email", req.Email, "error", err)
		respondError(ctx, w, "login", err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, token)
}

// Me handles GET /user/me with the caller's verified claims.
func (h AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		respondMessage(ctx, w, http.StatusUnauthorized, "invalid token")
		return
	}
	respondJSON(ctx, w, http.StatusOK, profileResponse{
		Sub:   claims.Subject,
		Email: claims.Email,
		Name:  claims.DisplayName(),
	})
}

// CreateUser handles POST /auth0/users.
func (h AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(ctx, w, err)
		return
	}

	if h.Identity == nil {
		logging.FromContext(ctx).Error("identity provider unavailable")
		respondMessage(ctx, w, http.StatusInternalServerError, "authentication services unavailable")
		return
	}

	user, err := h.Identity.CreateUser(ctx, strings.TrimSpace(req.Email), req.Password, req.Connection)
	if err != nil {
		respondError(ctx, w, "user", err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, user)
}

type clientCredentialsRequest struct {
	ClientSecret string `json:"client_secret" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type createUserRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	Connection string `json:"connection" validate:"omitempty,max=128"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
	Usage       string `json:"usage"`
}

type profileResponse struct {
	Sub   string `json:"sub"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}
