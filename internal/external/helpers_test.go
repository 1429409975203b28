package external

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeAuth0 serves the oauth/token and Management API endpoints used by the
// client.
type fakeAuth0 struct {
	*httptest.Server

	totalUsers  int
	expiresIn   int
	rolesStatus atomic.Int32

	tokenCalls atomic.Int32
	userPages  atomic.Int32
	roleCalls  atomic.Int32

	mu        sync.Mutex
	audiences []string
	grants    []map[string]string
	bearer    []string
}

func newFakeAuth0(t *testing.T, totalUsers int) *fakeAuth0 {
	t.Helper()

	f := &fakeAuth0{totalUsers: totalUsers, expiresIn: 3600}
	f.rolesStatus.Store(http.StatusOK)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		n := f.tokenCalls.Add(1)

		f.mu.Lock()
		f.audiences = append(f.audiences, body["audience"])
		f.grants = append(f.grants, body)
		f.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": fmt.Sprintf("token-%d", n),
			"token_type":   "Bearer",
			"expires_in":   f.expiresIn,
			"scope":        "read:users",
		})
	})
	mux.HandleFunc("GET /api/v2/users", func(w http.ResponseWriter, r *http.Request) {
		f.recordBearer(r)
		f.userPages.Add(1)

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		users := make([]map[string]any, 0, perPage)
		for i := page * perPage; i < f.totalUsers && len(users) < perPage; i++ {
			users = append(users, map[string]any{
				"user_id":      fmt.Sprintf("auth0|%d", i),
				"email":        fmt.Sprintf("user%d@example.com", i),
				"logins_count": i,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"start": page * perPage,
			"limit": perPage,
			"total": f.totalUsers,
			"users": users,
		})
	})
	mux.HandleFunc("POST /api/v2/users", func(w http.ResponseWriter, r *http.Request) {
		f.recordBearer(r)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] == "taken@example.com" {
			writeJSON(w, http.StatusConflict, map[string]any{"message": "The user already exists."})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"user_id": "auth0|new", "email": body["email"], "connection": body["connection"]})
	})
	mux.HandleFunc("GET /api/v2/roles", func(w http.ResponseWriter, r *http.Request) {
		f.recordBearer(r)
		f.roleCalls.Add(1)
		status := int(f.rolesStatus.Load())
		if status != http.StatusOK {
			writeJSON(w, status, map[string]any{"message": "nope"})
			return
		}
		writeJSON(w, http.StatusOK, []map[string]any{{"id": "rol_1", "name": "admin"}})
	})
	mux.HandleFunc("GET /api/v2/users/{id}/roles", func(w http.ResponseWriter, r *http.Request) {
		f.recordBearer(r)
		writeJSON(w, http.StatusOK, []map[string]any{{"id": "rol_1", "user": r.PathValue("id")}})
	})
	mux.HandleFunc("GET /api/v2/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.recordBearer(r)
		writeJSON(w, http.StatusOK, map[string]any{"user_id": r.PathValue("id")})
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeAuth0) recordBearer(r *http.Request) {
	f.mu.Lock()
	f.bearer = append(f.bearer, r.Header.Get("Authorization"))
	f.mu.Unlock()
}

func (f *fakeAuth0) lastBearer() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.bearer) == 0 {
		return ""
	}
	return f.bearer[len(f.bearer)-1]
}

func (f *fakeAuth0) audienceLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.audiences...)
}

func (f *fakeAuth0) lastGrant() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.grants) == 0 {
		return nil
	}
	return f.grants[len(f.grants)-1]
}

func testAuth0Config() Auth0Config {
	return Auth0Config{
		Domain:           "tenant.example.auth0.com",
		Audience:         "https://api.lacajita.tv",
		ClientID:         "spa-client",
		ClientSecret:     "spa-secret",
		MgmtClientID:     "m2m-client",
		MgmtClientSecret: "m2m-secret",
		UsersCacheTTL:    time.Minute,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
