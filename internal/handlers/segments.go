package handlers

import (
	"context"
	"net/http"

	"github.com/lacajita/backend/internal/logging"
	"github.com/lacajita/backend/internal/models"
)

// SegmentHandler serves the home page segments.
type SegmentHandler struct {
	Segments SegmentStore
	Stats    StatsStore
	LiveTV   ChannelLister
}

// List handles GET /segments; ?active=0|1 filters by state.
func (h SegmentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	active, err := queryFlag(r, "active", nil)
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	segments, err := h.Segments.List(ctx, active)
	if err != nil {
		respondError(ctx, w, "segment", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, segments)
}

// Get handles GET /segments/{id}.
func (h SegmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathInt(r, "id")
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	segment, err := h.Segments.Get(ctx, id)
	if err != nil {
		respondError(ctx, w, "segment", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, segment)
}

// Create handles POST /segments.
func (h SegmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in models.SegmentInput
	if err := decodeJSON(w, r, &in); err != nil {
		badRequest(ctx, w, err)
		return
	}
	segment, err := h.Segments.Create(ctx, in)
	if err != nil {
		respondError(ctx, w, "segment", err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, segment)
}

// Update handles PUT /segments/{id}.
func (h SegmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathInt(r, "id")
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	var in models.SegmentInput
	if err := decodeJSON(w, r, &in); err != nil {
		badRequest(ctx, w, err)
		return
	}
	segment, err := h.Segments.Update(ctx, id, in)
	if err != nil {
		respondError(ctx, w, "segment", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, segment)
}

// Delete handles DELETE /segments/{id}. Segments that still own playlists
// answer 409.
func (h SegmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathInt(r, "id")
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	if err := h.Segments.Delete(ctx, id); err != nil {
		respondDeleteError(ctx, w, "segment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reorderRequest struct {
	Orders []models.SegmentOrder `json:"arrorder" validate:"required,min=1,dive"`
}

// Reorder handles PUT /segments/order. Every position is applied or none is.
func (h SegmentHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req reorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(ctx, w, err)
		return
	}
	if err := h.Segments.Reorder(ctx, req.Orders); err != nil {
		respondError(ctx, w, "segment", err)
		return
	}
	segments, err := h.Segments.List(ctx, nil)
	if err != nil {
		respondError(ctx, w, "segment", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, segments)
}

type segmentSummary struct {
	Segment       models.Segment `json:"segment"`
	Type          string         `json:"type"`
	ChannelCount  int            `json:"channel_count"`
	PlaylistCount int64          `json:"playlist_count"`
	SeasonCount   int64          `json:"season_count"`
	VideoCount    int64          `json:"video_count"`
}

// Summary handles GET /segments/{id}/summary. LiveTV segments report the
// feed's channel count, degrading to zero when the feed is down.
func (h SegmentHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathInt(r, "id")
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	segment, err := h.Segments.Get(ctx, id)
	if err != nil {
		respondError(ctx, w, "segment", err)
		return
	}

	summary := segmentSummary{Segment: segment, Type: "playlist"}
	if segment.LiveTV == models.FlagOn {
		summary.Type = "livetv"
		summary.ChannelCount = channelCount(ctx, h.LiveTV)
		respondJSON(ctx, w, http.StatusOK, summary)
		return
	}

	counts, err := h.Stats.SegmentCounts(ctx, id)
	if err != nil {
		respondError(ctx, w, "segment", err)
		return
	}
	summary.PlaylistCount = counts.Playlists
	summary.SeasonCount = counts.Seasons
	summary.VideoCount = counts.Videos
	respondJSON(ctx, w, http.StatusOK, summary)
}

func channelCount(ctx context.Context, feed ChannelLister) int {
	if feed == nil {
		return 0
	}
	channels, err := feed.Channels(ctx)
	if err != nil {
		logging.FromContext(ctx).Warn("livetv feed unavailable, reporting zero channels", "error", err)
		return 0
	}
	return len(channels)
}
