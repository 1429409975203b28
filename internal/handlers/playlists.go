package handlers

import (
	"net/http"
	"strings"

	"github.com/lacajita/backend/internal/models"
	"github.com/lacajita/backend/internal/validation"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 100
)

// PlaylistHandler serves playlists and the nested catalogue views.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Catalog   CatalogReader
}

// Tree handles GET /playlists and the legacy GET /playlist: the carousel plus
// every active segment with its content.
func (h PlaylistHandler) Tree(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tree, err := h.Catalog.Tree(ctx)
	if err != nil {
		respondError(ctx, w, "catalog", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, tree)
}

// BySegment handles GET /playlists/by-segment/{id}. ?active defaults to 1.
func (h PlaylistHandler) BySegment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	segmentID, err := pathInt(r, "id")
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	active, err := queryFlag(r, "active", intPtr(models.FlagOn))
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	playlists, err := h.Catalog.PlaylistsBySegment(ctx, segmentID, active)
	if err != nil {
		respondError(ctx, w, "segment", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, playlists)
}

// Search handles GET /playlists/search?q=&active=&limit=.
func (h PlaylistHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		badRequest(ctx, w, &validation.Error{Field: "q", Rule: "required"})
		return
	}
	active, err := queryFlag(r, "active", intPtr(models.FlagOn))
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	limit, err := queryInt(r, "limit", defaultSearchLimit)
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	if limit == 0 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)

	playlists, err := h.Playlists.Search(ctx, q, active, limit)
	if err != nil {
		respondError(ctx, w, "playlist", err)
		return
	}
	if playlists == nil {
		playlists = []models.Playlist{}
	}
	respondJSON(ctx, w, http.StatusOK, playlists)
}

// Get handles GET /playlists/{id}.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlist, err := h.Playlists.Get(ctx, r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, "playlist", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, playlist)
}

// Create handles POST /playlists.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in models.PlaylistInput
	if err := decodeJSON(w, r, &in); err != nil {
		badRequest(ctx, w, err)
		return
	}
	playlist, err := h.Playlists.Create(ctx, in)
	if err != nil {
		respondError(ctx, w, "playlist", err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, playlist)
}

// Update handles PUT /playlists/{id}. The path id wins over the body.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	var in models.PlaylistInput
	if err := readJSON(w, r, &in); err != nil {
		badRequest(ctx, w, err)
		return
	}
	in.ID = id
	if err := validation.Struct(in); err != nil {
		badRequest(ctx, w, err)
		return
	}
	playlist, err := h.Playlists.Update(ctx, id, in)
	if err != nil {
		respondError(ctx, w, "playlist", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, playlist)
}

// Delete handles DELETE /playlists/{id}.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.Playlists.Delete(ctx, r.PathValue("id")); err != nil {
		respondDeleteError(ctx, w, "playlist", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type categoriesRequest struct {
	Categories []int64 `json:"categories" validate:"dive,gt=0"`
}

// ReplaceCategories handles PUT /playlists/{id}/categories. The new set
// replaces the old one atomically; an empty list clears it.
func (h PlaylistHandler) ReplaceCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	var req categoriesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(ctx, w, err)
		return
	}
	if _, err := h.Playlists.Get(ctx, id); err != nil {
		respondError(ctx, w, "playlist", err)
		return
	}
	if err := h.Playlists.ReplaceCategories(ctx, id, req.Categories); err != nil {
		respondError(ctx, w, "playlist category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
