package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lacajita/backend/internal/auth"
	"github.com/lacajita/backend/internal/external"
)

func TestAuthHandlerClientCredentials(t *testing.T) {
	identity := &identityProviderStub{token: external.TokenResponse{AccessToken: "tok", TokenType: "Bearer", ExpiresIn: 86400}}
	handler := AuthHandler{Identity: identity, SecretKey: "s3cret"}

	req := httptest.NewRequest(http.MethodPost, "/auth/client-credentials", strings.NewReader(`{"client_secret":"s3cret"}`))
	rec := httptest.NewRecorder()

	handler.ClientCredentials(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	var resp tokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AccessToken != "tok" || resp.ExpiresIn != 86400 || resp.Usage != tokenUsage {
		t.Fatalf("unexpected token response %+v", resp)
	}
}

func TestAuthHandlerClientCredentialsSecretMismatch(t *testing.T) {
	identity := &identityProviderStub{}
	handler := AuthHandler{Identity: identity, SecretKey: "s3cret"}

	req := httptest.NewRequest(http.MethodPost, "/auth/client-credentials", strings.NewReader(`{"client_secret":"guess"}`))
	rec := httptest.NewRecorder()

	handler.ClientCredentials(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 got %d", rec.Code)
	}
	if identity.calls != 0 {
		t.Fatal("expected identity provider not to be called")
	}
}

func TestAuthHandlerClientCredentialsMissingSecret(t *testing.T) {
	handler := AuthHandler{Identity: &identityProviderStub{}, SecretKey: "s3cret"}

	req := httptest.NewRequest(http.MethodPost, "/auth/client-credentials", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	handler.ClientCredentials(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
}

func TestAuthHandlerLoginFromQuery(t *testing.T) {
	identity := &identityProviderStub{login: json.RawMessage(`{"access_token":"abc"}`)}
	handler := AuthHandler{Identity: identity}

	req := httptest.NewRequest(http.MethodPost, "/login?email=Ana@Example.com&password=pw", nil)
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if identity.email != "ana@example.com" {
		t.Fatalf("expected lowercased email got %q", identity.email)
	}
	if !strings.Contains(rec.Body.String(), `"access_token":"abc"`) {
		t.Fatalf("expected upstream body to pass through, got %s", rec.Body.String())
	}
}

func TestAuthHandlerLoginFromBody(t *testing.T) {
	identity := &identityProviderStub{login: json.RawMessage(`{"access_token":"abc"}`)}
	handler := AuthHandler{Identity: identity}

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"ana@example.com","password":"pw"}`))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
}

func TestAuthHandlerLoginInvalidEmail(t *testing.T) {
	identity := &identityProviderStub{}
	handler := AuthHandler{Identity: identity}

	req := httptest.NewRequest(http.MethodPost, "/login?email=nope&password=pw", nil)
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
	if identity.calls != 0 {
		t.Fatal("expected identity provider not to be called")
	}
}

func TestAuthHandlerMe(t *testing.T) {
	handler := AuthHandler{}

	req := httptest.NewRequest(http.MethodGet, "/user/me", nil)
	ctx := auth.WithClaims(context.Background(), auth.Claims{Subject: "auth0|1", Email: "ana@example.com", Nickname: "ana"})
	rec := httptest.NewRecorder()

	handler.Me(rec, req.WithContext(ctx))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	var profile profileResponse
	if err := json.NewDecoder(rec.Body).Decode(&profile); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if profile.Sub != "auth0|1" || profile.Email != "ana@example.com" || profile.Name == "" {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestAuthHandlerMeWithoutClaims(t *testing.T) {
	handler := AuthHandler{}

	req := httptest.NewRequest(http.MethodGet, "/user/me", nil)
	rec := httptest.NewRecorder()

	handler.Me(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 got %d", rec.Code)
	}
}

func TestAuthHandlerCreateUserUpstreamConflict(t *testing.T) {
	identity := &identityProviderStub{createErr: &external.StatusError{Upstream: "auth0", Status: http.StatusConflict, Body: []byte(`{"message":"The user already exists."}`)}}
	handler := AuthHandler{Identity: identity}

	req := httptest.NewRequest(http.MethodPost, "/auth0/users", strings.NewReader(`{"email":"ana@example.com","password":"Str0ng!pw"}`))
	rec := httptest.NewRecorder()

	handler.CreateUser(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409 got %d", rec.Code)
	}
}
