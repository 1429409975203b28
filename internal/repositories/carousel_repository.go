package repositories

import (
	"context"

	"github.com/lacajita/backend/internal/models"
)

// CarouselRepository exposes data access for home carousel slides.
type CarouselRepository interface {
	List(ctx context.Context, active *int) ([]models.CarouselItem, error)
	Get(ctx context.Context, id int64) (models.CarouselItem, error)
	Create(ctx context.Context, in models.CarouselInput) (models.CarouselItem, error)
	Update(ctx context.Context, id int64, in models.CarouselInput) (models.CarouselItem, error)
	Delete(ctx context.Context, id int64) error
}
