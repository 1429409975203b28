package repositories

import (
	"context"

	"github.com/lacajita/backend/internal/models"
)

// SeasonFilter narrows season listings. Nil fields do not filter.
type SeasonFilter struct {
	PlaylistID *string
	Active     *int
}

// SeasonRepository exposes data access for seasons.
type SeasonRepository interface {
	List(ctx context.Context, filter SeasonFilter) ([]models.Season, error)
	ListActive(ctx context.Context) ([]models.Season, error)
	Get(ctx context.Context, id int64) (models.Season, error)
	Create(ctx context.Context, in models.SeasonInput) (models.Season, error)
	Update(ctx context.Context, id int64, in models.SeasonInput) (models.Season, error)
	Delete(ctx context.Context, id int64) error
}
