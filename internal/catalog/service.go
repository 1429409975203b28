package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lacajita/backend/internal/logging"
	"github.com/lacajita/backend/internal/models"
	"github.com/lacajita/backend/internal/repositories"
)

// CarouselSource lists carousel slides.
type CarouselSource interface {
	List(ctx context.Context, active *int) ([]models.CarouselItem, error)
}

// SegmentSource loads segments.
type SegmentSource interface {
	ListActive(ctx context.Context) ([]models.Segment, error)
	Get(ctx context.Context, id int64) (models.Segment, error)
}

// PlaylistSource loads playlists for the tree views.
type PlaylistSource interface {
	ListActiveForTree(ctx context.Context) ([]models.Playlist, error)
	ListBySegment(ctx context.Context, segmentID int64, active *int) ([]models.Playlist, error)
}

// SeasonSource loads seasons.
type SeasonSource interface {
	List(ctx context.Context, filter repositories.SeasonFilter) ([]models.Season, error)
	ListActive(ctx context.Context) ([]models.Season, error)
}

// VideoSource loads videos.
type VideoSource interface {
	List(ctx context.Context, filter repositories.VideoFilter) ([]models.Video, error)
	ListActive(ctx context.Context) ([]models.Video, error)
}

// CategorySource loads categories and their playlist assignments.
type CategorySource interface {
	List(ctx context.Context) ([]models.Category, error)
	ListAssignments(ctx context.Context) ([]models.CategoryAssignment, error)
}

// ChannelSource provides the LiveTV channel list.
type ChannelSource interface {
	Channels(ctx context.Context) ([]models.LiveTVChannel, error)
}

// Service loads catalogue rows and assembles the tree views.
type Service struct {
	Carousel   CarouselSource
	Segments   SegmentSource
	Playlists  PlaylistSource
	Seasons    SeasonSource
	Videos     VideoSource
	Categories CategorySource
	LiveTV     ChannelSource
}

// Tree returns the full home page: every carousel slide plus the active
// segments with their active content. A LiveTV outage yields an empty channel
// list rather than an error.
func (s *Service) Tree(ctx context.Context) (tree Tree, err error) {
	ctx, span := logging.StartSpan(ctx, "catalog.tree")
	defer func() {
		span.Fail(err)
		span.End()
	}()

	var rows Rows
	if rows.Carousel, err = s.Carousel.List(ctx, nil); err != nil {
		return Tree{}, fmt.Errorf("load carousel: %w", err)
	}
	if rows.Segments, err = s.Segments.ListActive(ctx); err != nil {
		return Tree{}, fmt.Errorf("load segments: %w", err)
	}
	if rows.Playlists, err = s.Playlists.ListActiveForTree(ctx); err != nil {
		return Tree{}, fmt.Errorf("load playlists: %w", err)
	}
	if err = s.loadNested(ctx, &rows); err != nil {
		return Tree{}, err
	}

	if hasLiveTV(rows.Segments) {
		rows.Channels = s.channels(ctx)
	}

	return Assemble(rows), nil
}

// PlaylistsBySegment returns one segment's playlists with their active seasons
// and videos. Unknown segments yield repositories.ErrNotFound.
func (s *Service) PlaylistsBySegment(ctx context.Context, segmentID int64, active *int) ([]PlaylistNode, error) {
	if _, err := s.Segments.Get(ctx, segmentID); err != nil {
		return nil, err
	}

	var (
		rows Rows
		err  error
	)
	if rows.Playlists, err = s.Playlists.ListBySegment(ctx, segmentID, active); err != nil {
		return nil, fmt.Errorf("load playlists: %w", err)
	}
	if len(rows.Playlists) == 0 {
		return []PlaylistNode{}, nil
	}
	if err := s.loadNested(ctx, &rows); err != nil {
		return nil, err
	}

	return AssemblePlaylists(rows.Playlists, rows.Categories, rows.Assignments, rows.Seasons, rows.Videos), nil
}

// SeasonTree returns every season with its video ids.
func (s *Service) SeasonTree(ctx context.Context) ([]SeasonNode, error) {
	seasons, err := s.Seasons.List(ctx, repositories.SeasonFilter{})
	if err != nil {
		return nil, fmt.Errorf("load seasons: %w", err)
	}
	videos, err := s.Videos.List(ctx, repositories.VideoFilter{})
	if err != nil {
		return nil, fmt.Errorf("load videos: %w", err)
	}
	return AssembleSeasons(seasons, videos), nil
}

func (s *Service) loadNested(ctx context.Context, rows *Rows) error {
	var err error
	if rows.Categories, err = s.Categories.List(ctx); err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	if rows.Assignments, err = s.Categories.ListAssignments(ctx); err != nil {
		return fmt.Errorf("load category assignments: %w", err)
	}
	if rows.Seasons, err = s.Seasons.ListActive(ctx); err != nil {
		return fmt.Errorf("load seasons: %w", err)
	}
	if rows.Videos, err = s.Videos.ListActive(ctx); err != nil {
		return fmt.Errorf("load videos: %w", err)
	}
	return nil
}

func (s *Service) channels(ctx context.Context) []models.LiveTVChannel {
	if s.LiveTV == nil {
		return []models.LiveTVChannel{}
	}
	channels, err := s.LiveTV.Channels(ctx)
	if err != nil {
		logging.FromContext(ctx).LogAttrs(ctx, slog.LevelWarn, "livetv feed unavailable, serving empty channel list",
			slog.String("error", err.Error()),
		)
		return []models.LiveTVChannel{}
	}
	return channels
}

func hasLiveTV(segments []models.Segment) bool {
	for _, seg := range segments {
		if seg.LiveTV == models.FlagOn {
			return true
		}
	}
	return false
}
