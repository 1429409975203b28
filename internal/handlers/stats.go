package handlers

import (
	"net/http"
	"time"

	"github.com/lacajita/backend/internal/repositories"
)

const statsWindow = 7 * 24 * time.Hour

// StatsHandler reports catalogue counters for the admin dashboard.
type StatsHandler struct {
	Stats   StatsStore
	LiveTV  ChannelLister
	NowFunc func() time.Time
}

type overviewStatistics struct {
	repositories.Overview
	LiveTVChannels int `json:"livetv_channels"`
}

type overviewResponse struct {
	Timestamp  string             `json:"timestamp"`
	Statistics overviewStatistics `json:"statistics"`
}

// Overview handles GET /stats/overview. Weekly counters cover the trailing
// seven days.
func (h StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := h.now()

	overview, err := h.Stats.Overview(ctx, now.Add(-statsWindow))
	if err != nil {
		respondError(ctx, w, "statistics", err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, overviewResponse{
		Timestamp: now.Format(time.RFC3339),
		Statistics: overviewStatistics{
			Overview:       overview,
			LiveTVChannels: channelCount(ctx, h.LiveTV),
		},
	})
}

func (h StatsHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc().UTC()
	}
	return time.Now().UTC()
}
