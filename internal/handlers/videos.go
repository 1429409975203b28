package handlers

import (
	"net/http"

	"github.com/lacajita/backend/internal/models"
	"github.com/lacajita/backend/internal/repositories"
	"github.com/lacajita/backend/internal/validation"
)

// VideoHandler serves the videos of each season, keyed by season and media id.
type VideoHandler struct {
	Videos VideoStore
}

// List handles GET /videos?season_id=&active=.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	seasonID, err := queryInt64(r, "season_id")
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	active, err := queryFlag(r, "active", nil)
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	videos, err := h.Videos.List(ctx, repositories.VideoFilter{SeasonID: seasonID, Active: active})
	if err != nil {
		respondError(ctx, w, "video", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, videos)
}

// Get handles GET /videos/{season_id}/{video_id}.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	seasonID, err := pathInt(r, "season_id")
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	video, err := h.Videos.Get(ctx, seasonID, r.PathValue("video_id"))
	if err != nil {
		respondError(ctx, w, "video", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, video)
}

// Create handles POST /videos.
func (h VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in models.VideoInput
	if err := decodeJSON(w, r, &in); err != nil {
		badRequest(ctx, w, err)
		return
	}
	video, err := h.Videos.Create(ctx, in)
	if err != nil {
		respondError(ctx, w, "video", err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, video)
}

// Update handles PUT /videos/{season_id}/{video_id}. Only date and active
// change; the key comes from the path.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	seasonID, err := pathInt(r, "season_id")
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	videoID := r.PathValue("video_id")

	var in models.VideoInput
	if err := readJSON(w, r, &in); err != nil {
		badRequest(ctx, w, err)
		return
	}
	in.SeasonID, in.VideoID = seasonID, videoID
	if err := validation.Struct(in); err != nil {
		badRequest(ctx, w, err)
		return
	}

	video, err := h.Videos.Update(ctx, seasonID, videoID, in)
	if err != nil {
		respondError(ctx, w, "video", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, video)
}

// Delete handles DELETE /videos/{season_id}/{video_id}.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	seasonID, err := pathInt(r, "season_id")
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	if err := h.Videos.Delete(ctx, seasonID, r.PathValue("video_id")); err != nil {
		respondDeleteError(ctx, w, "video", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
