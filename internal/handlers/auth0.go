package handlers

import (
	"net/http"

	"github.com/lacajita/backend/internal/models"
)

const defaultUsersPerPage = 50

// Auth0Handler proxies read-only Management API queries.
type Auth0Handler struct {
	Directory UserDirectory
}

type usersPage struct {
	Users   []models.Auth0User `json:"users"`
	Total   int                `json:"total"`
	Page    int                `json:"page"`
	PerPage int                `json:"per_page"`
}

// ListUsers handles GET /auth0/users by slicing the cached user list.
func (h Auth0Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, err := queryInt(r, "page", 0)
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	perPage, err := queryInt(r, "per_page", defaultUsersPerPage)
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	if perPage == 0 {
		perPage = defaultUsersPerPage
	}

	users, err := h.Directory.ListUsers(ctx)
	if err != nil {
		respondError(ctx, w, "auth0 users", err)
		return
	}
	if users == nil {
		users = []models.Auth0User{}
	}

	start := min(page*perPage, len(users))
	end := min(start+perPage, len(users))
	respondJSON(ctx, w, http.StatusOK, usersPage{
		Users:   users[start:end],
		Total:   len(users),
		Page:    page,
		PerPage: perPage,
	})
}

// GetUser handles GET /auth0/users/{id}.
func (h Auth0Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.Directory.GetUser(ctx, r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, "auth0 user", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, user)
}

// UserRoles handles GET /auth0/users/{id}/roles.
func (h Auth0Handler) UserRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	roles, err := h.Directory.UserRoles(ctx, r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, "auth0 user roles", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, roles)
}

// Roles handles GET /auth0/roles.
func (h Auth0Handler) Roles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	roles, err := h.Directory.ListRoles(ctx)
	if err != nil {
		respondError(ctx, w, "auth0 roles", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, roles)
}
