package repositories

import (
	"context"
	"fmt"

	"github.com/lacajita/backend/internal/db"
	"github.com/lacajita/backend/internal/models"
)

// PostgresCategoryRepository provides PostgreSQL-backed persistence for categories.
type PostgresCategoryRepository struct {
	pool db.Pool
}

// NewPostgresCategoryRepository constructs a category repository backed by PostgreSQL.
func NewPostgresCategoryRepository(pool db.Pool) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{pool: pool}
}

// List returns every category by name with its usage flag.
func (r *PostgresCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT c.id, c.name,
               CASE WHEN EXISTS (SELECT 1 FROM lacajita_playlist_categories pc WHERE pc.id_category = c.id)
                    THEN 1 ELSE 0 END AS hascat
        FROM lacajita_categories c
        ORDER BY c.name, c.id
    `)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.HasCat); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// ListAssignments returns every playlist/category join row.
func (r *PostgresCategoryRepository) ListAssignments(ctx context.Context) ([]models.CategoryAssignment, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id_playlist, id_category
        FROM lacajita_playlist_categories
        ORDER BY id_playlist, id_category
    `)
	if err != nil {
		return nil, fmt.Errorf("query category assignments: %w", err)
	}
	defer rows.Close()

	assignments := []models.CategoryAssignment{}
	for rows.Next() {
		var a models.CategoryAssignment
		if err := rows.Scan(&a.PlaylistID, &a.CategoryID); err != nil {
			return nil, fmt.Errorf("scan category assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category assignments: %w", err)
	}
	return assignments, nil
}

// Get fetches one category.
func (r *PostgresCategoryRepository) Get(ctx context.Context, id int64) (models.Category, error) {
	var c models.Category
	err := r.pool.QueryRow(ctx, `
        SELECT c.id, c.name,
               CASE WHEN EXISTS (SELECT 1 FROM lacajita_playlist_categories pc WHERE pc.id_category = c.id)
                    THEN 1 ELSE 0 END AS hascat
        FROM lacajita_categories c
        WHERE c.id = $1
    `, id).Scan(&c.ID, &c.Name, &c.HasCat)
	if err != nil {
		return models.Category{}, translate("select category", err)
	}
	return c, nil
}

// Create inserts a category. Duplicate names yield ErrConflict.
func (r *PostgresCategoryRepository) Create(ctx context.Context, name string) (models.Category, error) {
	c := models.Category{Name: name}
	err := r.pool.QueryRow(ctx, `
        INSERT INTO lacajita_categories (name)
        VALUES ($1)
        RETURNING id
    `, name).Scan(&c.ID)
	if err != nil {
		return models.Category{}, translate("insert category", err)
	}
	return c, nil
}

// Update renames a category.
func (r *PostgresCategoryRepository) Update(ctx context.Context, id int64, name string) (models.Category, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE lacajita_categories SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return models.Category{}, translate("update category", err)
	}
	if err := requireAffected(tag); err != nil {
		return models.Category{}, err
	}
	return r.Get(ctx, id)
}

// Delete removes a category. Categories still assigned to playlists yield
// ErrInvalidReference.
func (r *PostgresCategoryRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lacajita_categories WHERE id = $1`, id)
	if err != nil {
		return translate("delete category", err)
	}
	return requireAffected(tag)
}
