package repositories

import (
	"context"

	"github.com/lacajita/backend/internal/models"
)

// SegmentRepository exposes data access for home page segments.
type SegmentRepository interface {
	List(ctx context.Context, active *int) ([]models.Segment, error)
	ListActive(ctx context.Context) ([]models.Segment, error)
	Get(ctx context.Context, id int64) (models.Segment, error)
	Create(ctx context.Context, in models.SegmentInput) (models.Segment, error)
	Update(ctx context.Context, id int64, in models.SegmentInput) (models.Segment, error)
	Delete(ctx context.Context, id int64) error
	// Reorder applies every position atomically; an unknown id aborts the batch.
	Reorder(ctx context.Context, orders []models.SegmentOrder) error
}
