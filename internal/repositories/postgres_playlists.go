package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/lacajita/backend/internal/db"
	"github.com/lacajita/backend/internal/models"
)

const playlistColumns = `id, segment_id, title, description, category, subscription, subscription_cost::FLOAT8, active, cover, created_at, updated_at`

// MaxSearchLimit caps the number of search results returned in one call.
const MaxSearchLimit = 100

// PostgresPlaylistRepository provides PostgreSQL-backed persistence for playlists.
type PostgresPlaylistRepository struct {
	pool db.Pool
}

// NewPostgresPlaylistRepository constructs a playlist repository backed by PostgreSQL.
func NewPostgresPlaylistRepository(pool db.Pool) *PostgresPlaylistRepository {
	return &PostgresPlaylistRepository{pool: pool}
}

func scanPlaylist(row pgx.Row) (models.Playlist, error) {
	var p models.Playlist
	err := row.Scan(&p.ID, &p.SegmentID, &p.Title, &p.Description, &p.Category, &p.Subscription,
		&p.SubscriptionCost, &p.Active, &p.Cover, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PostgresPlaylistRepository) query(ctx context.Context, op, sql string, args ...any) ([]models.Playlist, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	playlists := []models.Playlist{}
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}

// List returns playlists newest first.
func (r *PostgresPlaylistRepository) List(ctx context.Context, filter PlaylistFilter) ([]models.Playlist, error) {
	return r.query(ctx, "query playlists", `
        SELECT `+playlistColumns+`
        FROM lacajita_playlists
        WHERE ($1::INT IS NULL OR active = $1)
          AND ($2::INT8 IS NULL OR segment_id = $2)
        ORDER BY created_at DESC
    `, filter.Active, filter.SegmentID)
}

// Get fetches one playlist.
func (r *PostgresPlaylistRepository) Get(ctx context.Context, id string) (models.Playlist, error) {
	p, err := scanPlaylist(r.pool.QueryRow(ctx, `
        SELECT `+playlistColumns+`
        FROM lacajita_playlists
        WHERE id = $1
    `, id))
	if err != nil {
		return models.Playlist{}, translate("select playlist", err)
	}
	return p, nil
}

// Create inserts a playlist. A missing segment yields ErrInvalidReference and a
// duplicate id ErrConflict.
func (r *PostgresPlaylistRepository) Create(ctx context.Context, in models.PlaylistInput) (models.Playlist, error) {
	p, err := scanPlaylist(r.pool.QueryRow(ctx, `
        INSERT INTO lacajita_playlists (id, segment_id, title, description, category, subscription, subscription_cost, active, cover, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, COALESCE($6, 0), $7, COALESCE($8, 1), $9, NOW(), NOW())
        RETURNING `+playlistColumns,
		in.ID, in.SegmentID, in.Title, in.Description, in.Category, in.Subscription, in.SubscriptionCost, in.Active, in.Cover))
	if err != nil {
		return models.Playlist{}, translate("insert playlist", err)
	}
	return p, nil
}

// Update checks the playlist exists, then rewrites its editable fields and
// bumps updated_at. The cover is only replaced when provided.
func (r *PostgresPlaylistRepository) Update(ctx context.Context, id string, in models.PlaylistInput) (models.Playlist, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM lacajita_playlists WHERE id = $1)`, id).Scan(&exists); err != nil {
		return models.Playlist{}, translate("check playlist", err)
	}
	if !exists {
		return models.Playlist{}, ErrNotFound
	}

	p, err := scanPlaylist(r.pool.QueryRow(ctx, `
        UPDATE lacajita_playlists
        SET segment_id = $2, title = $3, description = $4, category = $5,
            subscription = $6, subscription_cost = $7, active = $8,
            cover = COALESCE($9, cover), updated_at = NOW()
        WHERE id = $1
        RETURNING `+playlistColumns,
		id, in.SegmentID, in.Title, in.Description, in.Category, in.Subscription, in.SubscriptionCost, in.Active, in.Cover))
	if err != nil {
		return models.Playlist{}, translate("update playlist", err)
	}
	return p, nil
}

// Delete removes a playlist and its category assignments. Playlists that still
// own seasons yield ErrInvalidReference.
func (r *PostgresPlaylistRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lacajita_playlists WHERE id = $1`, id)
	if err != nil {
		return translate("delete playlist", err)
	}
	return requireAffected(tag)
}

// Search matches q case-insensitively against title and description, newest
// first. The limit is clamped to [1, MaxSearchLimit].
func (r *PostgresPlaylistRepository) Search(ctx context.Context, q string, active *int, limit int) ([]models.Playlist, error) {
	if limit <= 0 || limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}
	pattern := "%" + escapeLike(q) + "%"
	return r.query(ctx, "search playlists", `
        SELECT `+playlistColumns+`
        FROM lacajita_playlists
        WHERE (title ILIKE $1 OR description ILIKE $1)
          AND ($2::INT IS NULL OR active = $2)
        ORDER BY created_at DESC
        LIMIT $3
    `, pattern, active, limit)
}

// ListActiveForTree returns active playlists of active segments, most recently
// updated first.
func (r *PostgresPlaylistRepository) ListActiveForTree(ctx context.Context) ([]models.Playlist, error) {
	return r.query(ctx, "query tree playlists", `
        SELECT `+playlistColumns+`
        FROM lacajita_playlists
        WHERE active = 1
          AND segment_id IN (SELECT id FROM lacajita_segments WHERE active = 1)
        ORDER BY updated_at DESC
    `)
}

// ListBySegment returns one segment's playlists, most recently updated first.
func (r *PostgresPlaylistRepository) ListBySegment(ctx context.Context, segmentID int64, active *int) ([]models.Playlist, error) {
	return r.query(ctx, "query segment playlists", `
        SELECT `+playlistColumns+`
        FROM lacajita_playlists
        WHERE segment_id = $1
          AND ($2::INT IS NULL OR active = $2)
        ORDER BY updated_at DESC
    `, segmentID, active)
}

// ReplaceCategories swaps the playlist's category set in one transaction. An
// unknown category rolls everything back with ErrInvalidReference.
func (r *PostgresPlaylistRepository) ReplaceCategories(ctx context.Context, playlistID string, categoryIDs []int64) error {
	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM lacajita_playlists WHERE id = $1)`, playlistID).Scan(&exists); err != nil {
			return translate("check playlist", err)
		}
		if !exists {
			return ErrNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM lacajita_playlist_categories WHERE id_playlist = $1`, playlistID); err != nil {
			return translate("clear playlist categories", err)
		}

		seen := make(map[int64]struct{}, len(categoryIDs))
		for _, id := range categoryIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if _, err := tx.Exec(ctx, `
                INSERT INTO lacajita_playlist_categories (id_playlist, id_category)
                VALUES ($1, $2)
            `, playlistID, id); err != nil {
				return translate("insert playlist category", err)
			}
		}
		return nil
	})
}

// SetCover records the stored cover image name of a playlist.
func (r *PostgresPlaylistRepository) SetCover(ctx context.Context, id, filename string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE lacajita_playlists SET cover = $2, updated_at = NOW() WHERE id = $1`, id, filename)
	if err != nil {
		return translate("set playlist cover", err)
	}
	return requireAffected(tag)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
