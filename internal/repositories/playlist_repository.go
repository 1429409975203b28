package repositories

import (
	"context"

	"github.com/lacajita/backend/internal/models"
)

// PlaylistFilter narrows playlist listings. Nil fields do not filter.
type PlaylistFilter struct {
	Active    *int
	SegmentID *int64
}

// PlaylistRepository exposes data access for playlists and their categories.
type PlaylistRepository interface {
	List(ctx context.Context, filter PlaylistFilter) ([]models.Playlist, error)
	Get(ctx context.Context, id string) (models.Playlist, error)
	Create(ctx context.Context, in models.PlaylistInput) (models.Playlist, error)
	Update(ctx context.Context, id string, in models.PlaylistInput) (models.Playlist, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q string, active *int, limit int) ([]models.Playlist, error)
	// ListActiveForTree returns active playlists whose segment is active, newest update first.
	ListActiveForTree(ctx context.Context) ([]models.Playlist, error)
	ListBySegment(ctx context.Context, segmentID int64, active *int) ([]models.Playlist, error)
	ReplaceCategories(ctx context.Context, playlistID string, categoryIDs []int64) error
	SetCover(ctx context.Context, id, filename string) error
}
