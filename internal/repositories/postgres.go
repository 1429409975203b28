package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lacajita/backend/internal/db"
	"github.com/lacajita/backend/internal/models"
)

const carouselColumns = `id, link, imgsrc, video, muted, date_time, active, order_`

// PostgresCarouselRepository provides PostgreSQL-backed persistence for carousel slides.
type PostgresCarouselRepository struct {
	pool db.Pool
}

// NewPostgresCarouselRepository constructs a carousel repository backed by PostgreSQL.
func NewPostgresCarouselRepository(pool db.Pool) *PostgresCarouselRepository {
	return &PostgresCarouselRepository{pool: pool}
}

func scanCarousel(row pgx.Row) (models.CarouselItem, error) {
	var item models.CarouselItem
	err := row.Scan(&item.ID, &item.Link, &item.Imgsrc, &item.Video, &item.Muted, &item.DateTime, &item.Active, &item.Order)
	return item, err
}

// List returns slides ordered for display, optionally filtered by the active flag.
func (r *PostgresCarouselRepository) List(ctx context.Context, active *int) ([]models.CarouselItem, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT `+carouselColumns+`
        FROM lacajita_home_carousel
        WHERE ($1::INT IS NULL OR active = $1)
        ORDER BY order_, id
    `, active)
	if err != nil {
		return nil, fmt.Errorf("query carousel: %w", err)
	}
	defer rows.Close()

	items := []models.CarouselItem{}
	for rows.Next() {
		item, err := scanCarousel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan carousel: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate carousel: %w", err)
	}
	return items, nil
}

// Get fetches one slide.
func (r *PostgresCarouselRepository) Get(ctx context.Context, id int64) (models.CarouselItem, error) {
	item, err := scanCarousel(r.pool.QueryRow(ctx, `
        SELECT `+carouselColumns+`
        FROM lacajita_home_carousel
        WHERE id = $1
    `, id))
	if err != nil {
		return models.CarouselItem{}, translate("select carousel", err)
	}
	return item, nil
}

// Create inserts a slide stamped with the current time.
func (r *PostgresCarouselRepository) Create(ctx context.Context, in models.CarouselInput) (models.CarouselItem, error) {
	item, err := scanCarousel(r.pool.QueryRow(ctx, `
        INSERT INTO lacajita_home_carousel (link, imgsrc, video, muted, date_time, active, order_)
        VALUES ($1, $2, $3, COALESCE($4, 1), NOW(), COALESCE($5, 1), COALESCE($6, 0))
        RETURNING `+carouselColumns,
		in.Link, in.Imgsrc, in.Video, in.Muted, in.Active, in.Order))
	if err != nil {
		return models.CarouselItem{}, translate("insert carousel", err)
	}
	return item, nil
}

// Update replaces the slide's content. Omitted flags keep their stored value.
func (r *PostgresCarouselRepository) Update(ctx context.Context, id int64, in models.CarouselInput) (models.CarouselItem, error) {
	item, err := scanCarousel(r.pool.QueryRow(ctx, `
        UPDATE lacajita_home_carousel
        SET link = $2, imgsrc = $3, video = $4,
            muted = COALESCE($5, muted), active = COALESCE($6, active), order_ = COALESCE($7, order_)
        WHERE id = $1
        RETURNING `+carouselColumns,
		id, in.Link, in.Imgsrc, in.Video, in.Muted, in.Active, in.Order))
	if err != nil {
		return models.CarouselItem{}, translate("update carousel", err)
	}
	return item, nil
}

// Delete removes a slide.
func (r *PostgresCarouselRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lacajita_home_carousel WHERE id = $1`, id)
	if err != nil {
		return translate("delete carousel", err)
	}
	return requireAffected(tag)
}

const segmentColumns = `id, name, livetv, order_, active`

// PostgresSegmentRepository provides PostgreSQL-backed persistence for segments.
type PostgresSegmentRepository struct {
	pool db.Pool
}

// NewPostgresSegmentRepository constructs a segment repository backed by PostgreSQL.
func NewPostgresSegmentRepository(pool db.Pool) *PostgresSegmentRepository {
	return &PostgresSegmentRepository{pool: pool}
}

func scanSegment(row pgx.Row) (models.Segment, error) {
	var s models.Segment
	err := row.Scan(&s.ID, &s.Name, &s.LiveTV, &s.Order, &s.Active)
	return s, err
}

// List returns segments by display order, optionally filtered by the active flag.
func (r *PostgresSegmentRepository) List(ctx context.Context, active *int) ([]models.Segment, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT `+segmentColumns+`
        FROM lacajita_segments
        WHERE ($1::INT IS NULL OR active = $1)
        ORDER BY order_, id
    `, active)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	segments := []models.Segment{}
	for rows.Next() {
		s, err := scanSegment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		segments = append(segments, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segments: %w", err)
	}
	return segments, nil
}

// ListActive returns the active segments by display order.
func (r *PostgresSegmentRepository) ListActive(ctx context.Context) ([]models.Segment, error) {
	active := models.FlagOn
	return r.List(ctx, &active)
}

// Get fetches one segment.
func (r *PostgresSegmentRepository) Get(ctx context.Context, id int64) (models.Segment, error) {
	s, err := scanSegment(r.pool.QueryRow(ctx, `
        SELECT `+segmentColumns+`
        FROM lacajita_segments
        WHERE id = $1
    `, id))
	if err != nil {
		return models.Segment{}, translate("select segment", err)
	}
	return s, nil
}

// Create inserts a segment, defaulting to a regular active shelf at position 0.
func (r *PostgresSegmentRepository) Create(ctx context.Context, in models.SegmentInput) (models.Segment, error) {
	s, err := scanSegment(r.pool.QueryRow(ctx, `
        INSERT INTO lacajita_segments (name, livetv, order_, active)
        VALUES ($1, COALESCE($2, 0), COALESCE($3, 0), COALESCE($4, 1))
        RETURNING `+segmentColumns,
		in.Name, in.LiveTV, in.Order, in.Active))
	if err != nil {
		return models.Segment{}, translate("insert segment", err)
	}
	return s, nil
}

// Update replaces the segment's fields. Omitted flags keep their stored value.
func (r *PostgresSegmentRepository) Update(ctx context.Context, id int64, in models.SegmentInput) (models.Segment, error) {
	s, err := scanSegment(r.pool.QueryRow(ctx, `
        UPDATE lacajita_segments
        SET name = $2, livetv = COALESCE($3, livetv), order_ = COALESCE($4, order_), active = COALESCE($5, active)
        WHERE id = $1
        RETURNING `+segmentColumns,
		id, in.Name, in.LiveTV, in.Order, in.Active))
	if err != nil {
		return models.Segment{}, translate("update segment", err)
	}
	return s, nil
}

// Delete removes a segment. Segments that still own playlists yield ErrInvalidReference.
func (r *PostgresSegmentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lacajita_segments WHERE id = $1`, id)
	if err != nil {
		return translate("delete segment", err)
	}
	return requireAffected(tag)
}

// Reorder updates the display position of every listed segment in one transaction.
func (r *PostgresSegmentRepository) Reorder(ctx context.Context, orders []models.SegmentOrder) error {
	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, o := range orders {
			tag, err := tx.Exec(ctx, `UPDATE lacajita_segments SET order_ = $2 WHERE id = $1`, o.ID, o.Order)
			if err != nil {
				return translate("reorder segment", err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("reorder segment %d: %w", o.ID, ErrNotFound)
			}
		}
		return nil
	})
}
