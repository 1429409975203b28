package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lacajita/backend/internal/catalog"
	"github.com/lacajita/backend/internal/external"
	"github.com/lacajita/backend/internal/models"
	"github.com/lacajita/backend/internal/repositories"
)

// CarouselStore captures the persistence operations required by the carousel handlers.
type CarouselStore interface {
	List(ctx context.Context, active *int) ([]models.CarouselItem, error)
	Get(ctx context.Context, id int64) (models.CarouselItem, error)
	Create(ctx context.Context, in models.CarouselInput) (models.CarouselItem, error)
	Update(ctx context.Context, id int64, in models.CarouselInput) (models.CarouselItem, error)
	Delete(ctx context.Context, id int64) error
}

// SegmentStore captures the persistence operations required by the segment handlers.
type SegmentStore interface {
	List(ctx context.Context, active *int) ([]models.Segment, error)
	Get(ctx context.Context, id int64) (models.Segment, error)
	Create(ctx context.Context, in models.SegmentInput) (models.Segment, error)
	Update(ctx context.Context, id int64, in models.SegmentInput) (models.Segment, error)
	Delete(ctx context.Context, id int64) error
	Reorder(ctx context.Context, orders []models.SegmentOrder) error
}

// PlaylistStore captures the persistence operations required by the playlist handlers.
type PlaylistStore interface {
	Get(ctx context.Context, id string) (models.Playlist, error)
	Create(ctx context.Context, in models.PlaylistInput) (models.Playlist, error)
	Update(ctx context.Context, id string, in models.PlaylistInput) (models.Playlist, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q string, active *int, limit int) ([]models.Playlist, error)
	ReplaceCategories(ctx context.Context, playlistID string, categoryIDs []int64) error
}

// CoverSetter records the cover image of a playlist.
type CoverSetter interface {
	SetCover(ctx context.Context, id, filename string) error
}

// SeasonStore captures the persistence operations required by the season handlers.
type SeasonStore interface {
	List(ctx context.Context, filter repositories.SeasonFilter) ([]models.Season, error)
	Get(ctx context.Context, id int64) (models.Season, error)
	Create(ctx context.Context, in models.SeasonInput) (models.Season, error)
	Update(ctx context.Context, id int64, in models.SeasonInput) (models.Season, error)
	Delete(ctx context.Context, id int64) error
}

// VideoStore captures the persistence operations required by the video handlers.
type VideoStore interface {
	List(ctx context.Context, filter repositories.VideoFilter) ([]models.Video, error)
	Get(ctx context.Context, seasonID int64, videoID string) (models.Video, error)
	Create(ctx context.Context, in models.VideoInput) (models.Video, error)
	Update(ctx context.Context, seasonID int64, videoID string, in models.VideoInput) (models.Video, error)
	Delete(ctx context.Context, seasonID int64, videoID string) error
	ReplaceForSeason(ctx context.Context, seasonID int64, videoIDs []string) ([]models.Video, error)
}

// CategoryStore captures the persistence operations required by the category handlers.
type CategoryStore interface {
	List(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, id int64) (models.Category, error)
	Create(ctx context.Context, name string) (models.Category, error)
	Update(ctx context.Context, id int64, name string) (models.Category, error)
	Delete(ctx context.Context, id int64) error
}

// StatsStore exposes aggregate counters and database probes.
type StatsStore interface {
	Ping(ctx context.Context) error
	Overview(ctx context.Context, since time.Time) (repositories.Overview, error)
	SegmentCounts(ctx context.Context, segmentID int64) (repositories.SegmentCounts, error)
	TableCounts(ctx context.Context) []repositories.TableCount
	EntityTotals(ctx context.Context) (repositories.EntityTotals, error)
}

// PlayStats aggregates recorded playback events.
type PlayStats interface {
	Consumption(ctx context.Context, since, seriesSince time.Time) (models.VideoConsumption, error)
}

// CatalogReader builds the nested catalogue views.
type CatalogReader interface {
	Tree(ctx context.Context) (catalog.Tree, error)
	PlaylistsBySegment(ctx context.Context, segmentID int64, active *int) ([]catalog.PlaylistNode, error)
	SeasonTree(ctx context.Context) ([]catalog.SeasonNode, error)
}

// ChannelLister provides the LiveTV channel list.
type ChannelLister interface {
	Channels(ctx context.Context) ([]models.LiveTVChannel, error)
}

// IdentityProvider issues tokens and registers users with the identity provider.
type IdentityProvider interface {
	ClientCredentials(ctx context.Context) (external.TokenResponse, error)
	PasswordLogin(ctx context.Context, email, password string) (json.RawMessage, error)
	CreateUser(ctx context.Context, email, password, connection string) (json.RawMessage, error)
}

// UserDirectory reads users and roles from the identity provider.
type UserDirectory interface {
	ListUsers(ctx context.Context) ([]models.Auth0User, error)
	GetUser(ctx context.Context, userID string) (json.RawMessage, error)
	ListRoles(ctx context.Context) (json.RawMessage, error)
	UserRoles(ctx context.Context, userID string) (json.RawMessage, error)
}

// EventRecorder accepts playback events for asynchronous persistence.
type EventRecorder interface {
	Record(ctx context.Context, evt models.VideoPlayEvent) error
}

// VideoAnalytics proxies the hosted player's analytics API.
type VideoAnalytics interface {
	Configured() bool
	VideoPerformance(ctx context.Context, period string) (json.RawMessage, error)
}
