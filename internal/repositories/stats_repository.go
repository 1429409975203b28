package repositories

import (
	"context"
	"time"

	"github.com/lacajita/backend/internal/models"
)

// Overview holds the catalogue counters reported by the stats endpoint.
type Overview struct {
	ActiveCarouselItems   int64 `json:"active_carousel_items"`
	ActiveSegments        int64 `json:"active_segments"`
	LiveTVSegments        int64 `json:"livetv_segments"`
	ActivePlaylists       int64 `json:"active_playlists"`
	SubscriptionPlaylists int64 `json:"subscription_playlists"`
	ActiveSeasons         int64 `json:"active_seasons"`
	ActiveVideos          int64 `json:"active_videos"`
	NewPlaylistsWeek      int64 `json:"new_playlists_week"`
	NewSeasonsWeek        int64 `json:"new_seasons_week"`
}

// SegmentCounts are the active content counters below one segment.
type SegmentCounts struct {
	Playlists int64
	Seasons   int64
	Videos    int64
}

// TableCount is the row count of one table, or the error counting it.
type TableCount struct {
	Table string
	Count int64
	Err   error
}

// EntityTotals are unfiltered row counts used by the dashboards.
type EntityTotals struct {
	Playlists int64
	Videos    int64
	Seasons   int64
}

// StatsRepository exposes aggregate queries and database health probes.
type StatsRepository interface {
	Ping(ctx context.Context) error
	Overview(ctx context.Context, since time.Time) (Overview, error)
	SegmentCounts(ctx context.Context, segmentID int64) (SegmentCounts, error)
	TableCounts(ctx context.Context) []TableCount
	EntityTotals(ctx context.Context) (EntityTotals, error)
}

// VideoPlayRepository persists and aggregates playback events.
type VideoPlayRepository interface {
	Record(ctx context.Context, evt models.VideoPlayEvent) error
	Consumption(ctx context.Context, since, seriesSince time.Time) (models.VideoConsumption, error)
}
