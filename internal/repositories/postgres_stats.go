package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/lacajita/backend/internal/db"
	"github.com/lacajita/backend/internal/models"
)

// HealthTables lists the tables probed by the catalogue health check, in report order.
var HealthTables = []string{
	"lacajita_home_carousel",
	"lacajita_segments",
	"lacajita_playlists",
	"lacajita_season",
	"lacajita_videos",
}

// PostgresStatsRepository runs aggregate queries against PostgreSQL.
type PostgresStatsRepository struct {
	pool db.Pool
}

// NewPostgresStatsRepository constructs a stats repository backed by PostgreSQL.
func NewPostgresStatsRepository(pool db.Pool) *PostgresStatsRepository {
	return &PostgresStatsRepository{pool: pool}
}

// Ping checks the database is reachable.
func (r *PostgresStatsRepository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Overview counts active catalogue content. Weekly counters include rows
// created (or dated, for seasons) at or after since.
func (r *PostgresStatsRepository) Overview(ctx context.Context, since time.Time) (Overview, error) {
	var o Overview
	err := r.pool.QueryRow(ctx, `
        SELECT
            (SELECT COUNT(*) FROM lacajita_home_carousel WHERE active = 1),
            (SELECT COUNT(*) FROM lacajita_segments WHERE active = 1),
            (SELECT COUNT(*) FROM lacajita_segments WHERE active = 1 AND livetv = 1),
            (SELECT COUNT(*) FROM lacajita_playlists WHERE active = 1),
            (SELECT COUNT(*) FROM lacajita_playlists WHERE active = 1 AND subscription = 1),
            (SELECT COUNT(*) FROM lacajita_season WHERE active = 1),
            (SELECT COUNT(*) FROM lacajita_videos WHERE active = 1),
            (SELECT COUNT(*) FROM lacajita_playlists WHERE created_at >= $1),
            (SELECT COUNT(*) FROM lacajita_season WHERE date >= $1)
    `, since).Scan(
		&o.ActiveCarouselItems, &o.ActiveSegments, &o.LiveTVSegments,
		&o.ActivePlaylists, &o.SubscriptionPlaylists,
		&o.ActiveSeasons, &o.ActiveVideos,
		&o.NewPlaylistsWeek, &o.NewSeasonsWeek,
	)
	if err != nil {
		return Overview{}, fmt.Errorf("query overview: %w", err)
	}
	return o, nil
}

// SegmentCounts counts active playlists, seasons and videos under a segment.
// Seasons and videos only count when every ancestor is active.
func (r *PostgresStatsRepository) SegmentCounts(ctx context.Context, segmentID int64) (SegmentCounts, error) {
	var c SegmentCounts
	err := r.pool.QueryRow(ctx, `
        SELECT
            (SELECT COUNT(*) FROM lacajita_playlists p
             WHERE p.segment_id = $1 AND p.active = 1),
            (SELECT COUNT(*) FROM lacajita_season s
             JOIN lacajita_playlists p ON s.playlist_id = p.id
             WHERE p.segment_id = $1 AND s.active = 1 AND p.active = 1),
            (SELECT COUNT(*) FROM lacajita_videos v
             JOIN lacajita_season s ON v.season_id = s.id
             JOIN lacajita_playlists p ON s.playlist_id = p.id
             WHERE p.segment_id = $1 AND v.active = 1 AND s.active = 1 AND p.active = 1)
    `, segmentID).Scan(&c.Playlists, &c.Seasons, &c.Videos)
	if err != nil {
		return SegmentCounts{}, fmt.Errorf("query segment counts: %w", err)
	}
	return c, nil
}

// TableCounts counts the rows of every health table. A failing table records
// its error and does not stop the others.
func (r *PostgresStatsRepository) TableCounts(ctx context.Context) []TableCount {
	counts := make([]TableCount, 0, len(HealthTables))
	for _, table := range HealthTables {
		tc := TableCount{Table: table}
		// Table names come from the fixed HealthTables list.
		if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&tc.Count); err != nil {
			tc.Err = fmt.Errorf("count %s: %w", table, err)
		}
		counts = append(counts, tc)
	}
	return counts
}

// EntityTotals counts every playlist, video and season regardless of state.
func (r *PostgresStatsRepository) EntityTotals(ctx context.Context) (EntityTotals, error) {
	var t EntityTotals
	err := r.pool.QueryRow(ctx, `
        SELECT
            (SELECT COUNT(*) FROM lacajita_playlists),
            (SELECT COUNT(*) FROM lacajita_videos),
            (SELECT COUNT(*) FROM lacajita_season)
    `).Scan(&t.Playlists, &t.Videos, &t.Seasons)
	if err != nil {
		return EntityTotals{}, fmt.Errorf("query entity totals: %w", err)
	}
	return t, nil
}

// PostgresVideoPlayRepository persists playback events in PostgreSQL.
type PostgresVideoPlayRepository struct {
	pool db.Pool
}

// NewPostgresVideoPlayRepository constructs a playback event repository backed by PostgreSQL.
func NewPostgresVideoPlayRepository(pool db.Pool) *PostgresVideoPlayRepository {
	return &PostgresVideoPlayRepository{pool: pool}
}

// Record inserts one playback event. Extra metadata is stored as JSON text.
func (r *PostgresVideoPlayRepository) Record(ctx context.Context, evt models.VideoPlayEvent) error {
	var extra *string
	if len(evt.Extra) > 0 {
		encoded, err := json.Marshal(evt.Extra)
		if err != nil {
			return fmt.Errorf("encode event metadata: %w", err)
		}
		s := string(encoded)
		extra = &s
	}

	_, err := r.pool.Exec(ctx, `
        INSERT INTO lacajita_video_plays
            (media_id, playlist_id, user_sub, user_email, event, position_s, duration_s, user_agent, ip_addr, extra_json)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `, evt.MediaID, evt.PlaylistID, evt.UserSub, evt.UserEmail, evt.Event,
		evt.PositionS, evt.DurationS, evt.UserAgent, evt.IPAddr, extra)
	if err != nil {
		return translate("insert video play", err)
	}
	return nil
}

// Consumption aggregates events created at or after since. The daily series
// covers events at or after seriesSince.
func (r *PostgresVideoPlayRepository) Consumption(ctx context.Context, since, seriesSince time.Time) (models.VideoConsumption, error) {
	out := models.VideoConsumption{
		TopVideos: []models.TopVideo{},
		Last7Days: []models.DailyEvents{},
	}

	err := r.pool.QueryRow(ctx, `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE event = 'play'),
               COUNT(*) FILTER (WHERE event = 'complete'),
               COUNT(DISTINCT COALESCE(user_email, user_sub))
        FROM lacajita_video_plays
        WHERE created_at >= $1
    `, since).Scan(&out.TotalEvents, &out.Plays, &out.Completes, &out.UniqueUsers)
	if err != nil {
		return models.VideoConsumption{}, fmt.Errorf("query consumption totals: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
        SELECT COALESCE(SUM(maxpos), 0)::FLOAT8
        FROM (
            SELECT MAX(position_s) AS maxpos
            FROM lacajita_video_plays
            WHERE created_at >= $1 AND event IN ('time', 'complete')
            GROUP BY media_id, COALESCE(user_email, user_sub)
        ) AS watched
    `, since).Scan(&out.TotalSecondsWatchedEstimate)
	if err != nil {
		return models.VideoConsumption{}, fmt.Errorf("query watched seconds: %w", err)
	}
	out.TotalSecondsWatchedEstimate = math.Round(out.TotalSecondsWatchedEstimate*100) / 100

	rows, err := r.pool.Query(ctx, `
        SELECT media_id,
               COUNT(*) FILTER (WHERE event = 'play'),
               COUNT(*) FILTER (WHERE event = 'complete'),
               COUNT(*) AS events
        FROM lacajita_video_plays
        WHERE created_at >= $1
        GROUP BY media_id
        ORDER BY events DESC, media_id
        LIMIT 5
    `, since)
	if err != nil {
		return models.VideoConsumption{}, fmt.Errorf("query top videos: %w", err)
	}
	for rows.Next() {
		var tv models.TopVideo
		if err := rows.Scan(&tv.MediaID, &tv.Plays, &tv.Completes, &tv.Events); err != nil {
			rows.Close()
			return models.VideoConsumption{}, fmt.Errorf("scan top video: %w", err)
		}
		out.TopVideos = append(out.TopVideos, tv)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return models.VideoConsumption{}, fmt.Errorf("iterate top videos: %w", err)
	}

	rows, err = r.pool.Query(ctx, `
        SELECT created_at::DATE AS d,
               COUNT(*),
               COUNT(*) FILTER (WHERE event = 'play')
        FROM lacajita_video_plays
        WHERE created_at >= $1
        GROUP BY d
        ORDER BY d
    `, seriesSince)
	if err != nil {
		return models.VideoConsumption{}, fmt.Errorf("query daily events: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			day time.Time
			de  models.DailyEvents
		)
		if err := rows.Scan(&day, &de.Events, &de.Plays); err != nil {
			return models.VideoConsumption{}, fmt.Errorf("scan daily events: %w", err)
		}
		de.Day = day.Format(time.DateOnly)
		out.Last7Days = append(out.Last7Days, de)
	}
	if err := rows.Err(); err != nil {
		return models.VideoConsumption{}, fmt.Errorf("iterate daily events: %w", err)
	}

	return out, nil
}
