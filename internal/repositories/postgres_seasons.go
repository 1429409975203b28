package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lacajita/backend/internal/db"
	"github.com/lacajita/backend/internal/models"
)

const seasonColumns = `id, playlist_id, title, description, date, active`

// PostgresSeasonRepository provides PostgreSQL-backed persistence for seasons.
type PostgresSeasonRepository struct {
	pool db.Pool
}

// NewPostgresSeasonRepository constructs a season repository backed by PostgreSQL.
func NewPostgresSeasonRepository(pool db.Pool) *PostgresSeasonRepository {
	return &PostgresSeasonRepository{pool: pool}
}

func scanSeason(row pgx.Row) (models.Season, error) {
	var s models.Season
	err := row.Scan(&s.ID, &s.PlaylistID, &s.Title, &s.Description, &s.Date, &s.Active)
	return s, err
}

// List returns seasons newest first.
func (r *PostgresSeasonRepository) List(ctx context.Context, filter SeasonFilter) ([]models.Season, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT `+seasonColumns+`
        FROM lacajita_season
        WHERE ($1::TEXT IS NULL OR playlist_id = $1)
          AND ($2::INT IS NULL OR active = $2)
        ORDER BY date DESC, id
    `, filter.PlaylistID, filter.Active)
	if err != nil {
		return nil, fmt.Errorf("query seasons: %w", err)
	}
	defer rows.Close()

	seasons := []models.Season{}
	for rows.Next() {
		s, err := scanSeason(rows)
		if err != nil {
			return nil, fmt.Errorf("scan season: %w", err)
		}
		seasons = append(seasons, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seasons: %w", err)
	}
	return seasons, nil
}

// ListActive returns every active season newest first.
func (r *PostgresSeasonRepository) ListActive(ctx context.Context) ([]models.Season, error) {
	active := models.FlagOn
	return r.List(ctx, SeasonFilter{Active: &active})
}

// Get fetches one season.
func (r *PostgresSeasonRepository) Get(ctx context.Context, id int64) (models.Season, error) {
	s, err := scanSeason(r.pool.QueryRow(ctx, `
        SELECT `+seasonColumns+`
        FROM lacajita_season
        WHERE id = $1
    `, id))
	if err != nil {
		return models.Season{}, translate("select season", err)
	}
	return s, nil
}

// Create inserts a season dated now unless a date is given.
func (r *PostgresSeasonRepository) Create(ctx context.Context, in models.SeasonInput) (models.Season, error) {
	s, err := scanSeason(r.pool.QueryRow(ctx, `
        INSERT INTO lacajita_season (playlist_id, title, description, date, active)
        VALUES ($1, $2, $3, COALESCE($4, NOW()), COALESCE($5, 1))
        RETURNING `+seasonColumns,
		in.PlaylistID, in.Title, in.Description, in.Date, in.Active))
	if err != nil {
		return models.Season{}, translate("insert season", err)
	}
	return s, nil
}

// Update replaces the season's fields.
func (r *PostgresSeasonRepository) Update(ctx context.Context, id int64, in models.SeasonInput) (models.Season, error) {
	s, err := scanSeason(r.pool.QueryRow(ctx, `
        UPDATE lacajita_season
        SET playlist_id = $2, title = $3, description = $4, date = COALESCE($5, date), active = COALESCE($6, active)
        WHERE id = $1
        RETURNING `+seasonColumns,
		id, in.PlaylistID, in.Title, in.Description, in.Date, in.Active))
	if err != nil {
		return models.Season{}, translate("update season", err)
	}
	return s, nil
}

// Delete removes a season. Seasons that still hold videos yield ErrInvalidReference.
func (r *PostgresSeasonRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lacajita_season WHERE id = $1`, id)
	if err != nil {
		return translate("delete season", err)
	}
	return requireAffected(tag)
}

const videoColumns = `season_id, video_id, date, active`

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
	now  func() time.Time
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool, now: time.Now}
}

func scanVideo(row pgx.Row) (models.Video, error) {
	var v models.Video
	err := row.Scan(&v.SeasonID, &v.VideoID, &v.Date, &v.Active)
	return v, err
}

func (r *PostgresVideoRepository) query(ctx context.Context, sql string, args ...any) ([]models.Video, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}
	return videos, nil
}

// List returns videos newest first.
func (r *PostgresVideoRepository) List(ctx context.Context, filter VideoFilter) ([]models.Video, error) {
	return r.query(ctx, `
        SELECT `+videoColumns+`
        FROM lacajita_videos
        WHERE ($1::INT8 IS NULL OR season_id = $1)
          AND ($2::INT IS NULL OR active = $2)
        ORDER BY date DESC, video_id
    `, filter.SeasonID, filter.Active)
}

// ListActive returns every active video newest first.
func (r *PostgresVideoRepository) ListActive(ctx context.Context) ([]models.Video, error) {
	active := models.FlagOn
	return r.List(ctx, VideoFilter{Active: &active})
}

// Get fetches one video by its composite key.
func (r *PostgresVideoRepository) Get(ctx context.Context, seasonID int64, videoID string) (models.Video, error) {
	v, err := scanVideo(r.pool.QueryRow(ctx, `
        SELECT `+videoColumns+`
        FROM lacajita_videos
        WHERE season_id = $1 AND video_id = $2
    `, seasonID, videoID))
	if err != nil {
		return models.Video{}, translate("select video", err)
	}
	return v, nil
}

// Create inserts a video dated now unless a date is given.
func (r *PostgresVideoRepository) Create(ctx context.Context, in models.VideoInput) (models.Video, error) {
	v, err := scanVideo(r.pool.QueryRow(ctx, `
        INSERT INTO lacajita_videos (season_id, video_id, date, active)
        VALUES ($1, $2, COALESCE($3, NOW()), COALESCE($4, 1))
        RETURNING `+videoColumns,
		in.SeasonID, in.VideoID, in.Date, in.Active))
	if err != nil {
		return models.Video{}, translate("insert video", err)
	}
	return v, nil
}

// Update rewrites the date and active flag of a video.
func (r *PostgresVideoRepository) Update(ctx context.Context, seasonID int64, videoID string, in models.VideoInput) (models.Video, error) {
	v, err := scanVideo(r.pool.QueryRow(ctx, `
        UPDATE lacajita_videos
        SET date = COALESCE($3, date), active = COALESCE($4, active)
        WHERE season_id = $1 AND video_id = $2
        RETURNING `+videoColumns,
		seasonID, videoID, in.Date, in.Active))
	if err != nil {
		return models.Video{}, translate("update video", err)
	}
	return v, nil
}

// Delete removes a video.
func (r *PostgresVideoRepository) Delete(ctx context.Context, seasonID int64, videoID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lacajita_videos WHERE season_id = $1 AND video_id = $2`, seasonID, videoID)
	if err != nil {
		return translate("delete video", err)
	}
	return requireAffected(tag)
}

// ReplaceForSeason deletes the season's videos and inserts videoIDs in their
// place. Dates step back one second per position so date-descending listings
// keep the given order.
func (r *PostgresVideoRepository) ReplaceForSeason(ctx context.Context, seasonID int64, videoIDs []string) ([]models.Video, error) {
	base := r.now().UTC().Truncate(time.Second)
	videos := make([]models.Video, 0, len(videoIDs))

	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM lacajita_season WHERE id = $1)`, seasonID).Scan(&exists); err != nil {
			return translate("check season", err)
		}
		if !exists {
			return ErrNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM lacajita_videos WHERE season_id = $1`, seasonID); err != nil {
			return translate("clear season videos", err)
		}

		seen := make(map[string]struct{}, len(videoIDs))
		for _, id := range videoIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			date := base.Add(-time.Duration(len(videos)) * time.Second)
			v, err := scanVideo(tx.QueryRow(ctx, `
                INSERT INTO lacajita_videos (season_id, video_id, date, active)
                VALUES ($1, $2, $3, 1)
                RETURNING `+videoColumns,
				seasonID, id, date))
			if err != nil {
				return translate("insert season video", err)
			}
			videos = append(videos, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return videos, nil
}
