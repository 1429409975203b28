package handlers

import (
	"net/http"

	"github.com/lacajita/backend/internal/models"
	"github.com/lacajita/backend/internal/repositories"
)

// SeasonHandler serves seasons and their video lists.
type SeasonHandler struct {
	Seasons SeasonStore
	Videos  VideoStore
	Catalog CatalogReader
}

// List handles GET /seasons?playlist_id=&active=.
func (h SeasonHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	active, err := queryFlag(r, "active", nil)
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	filter := repositories.SeasonFilter{Active: active}
	if playlistID := r.URL.Query().Get("playlist_id"); playlistID != "" {
		filter.PlaylistID = &playlistID
	}
	seasons, err := h.Seasons.List(ctx, filter)
	if err != nil {
		respondError(ctx, w, "season", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, seasons)
}

// Tree handles GET /seasons/tree: every season with its video ids.
func (h SeasonHandler) Tree(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	seasons, err := h.Catalog.SeasonTree(ctx)
	if err != nil {
		respondError(ctx, w, "season", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, seasons)
}

// Get handles GET /seasons/{id}.
func (h SeasonHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathInt(r, "id")
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	season, err := h.Seasons.Get(ctx, id)
	if err != nil {
		respondError(ctx, w, "season", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, season)
}

// Create handles POST /seasons.
func (h SeasonHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in models.SeasonInput
	if err := decodeJSON(w, r, &in); err != nil {
		badRequest(ctx, w, err)
		return
	}
	season, err := h.Seasons.Create(ctx, in)
	if err != nil {
		respondError(ctx, w, "season", err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, season)
}

// Update handles PUT /seasons/{id}.
func (h SeasonHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathInt(r, "id")
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	var in models.SeasonInput
	if err := decodeJSON(w, r, &in); err != nil {
		badRequest(ctx, w, err)
		return
	}
	season, err := h.Seasons.Update(ctx, id, in)
	if err != nil {
		respondError(ctx, w, "season", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, season)
}

// Delete handles DELETE /seasons/{id}.
func (h SeasonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathInt(r, "id")
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	if err := h.Seasons.Delete(ctx, id); err != nil {
		respondDeleteError(ctx, w, "season", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type seasonVideosRequest struct {
	Videos []string `json:"videoarr" validate:"dive,required,max=64"`
}

// ReplaceVideos handles PUT /seasons/{id}/videos. The list becomes the
// season's videos in the given order.
func (h SeasonHandler) ReplaceVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathInt(r, "id")
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	var req seasonVideosRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(ctx, w, err)
		return
	}
	if _, err := h.Seasons.Get(ctx, id); err != nil {
		respondError(ctx, w, "season", err)
		return
	}
	videos, err := h.Videos.ReplaceForSeason(ctx, id, req.Videos)
	if err != nil {
		respondError(ctx, w, "video", err)
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}
	respondJSON(ctx, w, http.StatusOK, videos)
}
