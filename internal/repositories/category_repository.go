package repositories

import (
	"context"

	"github.com/lacajita/backend/internal/models"
)

// CategoryRepository exposes data access for categories and playlist assignments.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	ListAssignments(ctx context.Context) ([]models.CategoryAssignment, error)
	Get(ctx context.Context, id int64) (models.Category, error)
	Create(ctx context.Context, name string) (models.Category, error)
	Update(ctx context.Context, id int64, name string) (models.Category, error)
	Delete(ctx context.Context, id int64) error
}
