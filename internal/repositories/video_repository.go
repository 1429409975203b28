package repositories

import (
	"context"

	"github.com/lacajita/backend/internal/models"
)

// VideoFilter narrows video listings. Nil fields do not filter.
type VideoFilter struct {
	SeasonID *int64
	Active   *int
}

// VideoRepository exposes data access for season videos.
type VideoRepository interface {
	List(ctx context.Context, filter VideoFilter) ([]models.Video, error)
	ListActive(ctx context.Context) ([]models.Video, error)
	Get(ctx context.Context, seasonID int64, videoID string) (models.Video, error)
	Create(ctx context.Context, in models.VideoInput) (models.Video, error)
	Update(ctx context.Context, seasonID int64, videoID string, in models.VideoInput) (models.Video, error)
	Delete(ctx context.Context, seasonID int64, videoID string) error
	// ReplaceForSeason swaps the season's video list in one transaction.
	ReplaceForSeason(ctx context.Context, seasonID int64, videoIDs []string) ([]models.Video, error)
}
