package handlers

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/lacajita/backend/internal/auth"
	"github.com/lacajita/backend/internal/catalog"
	"github.com/lacajita/backend/internal/external"
	"github.com/lacajita/backend/internal/models"
	"github.com/lacajita/backend/internal/repositories"
)

type carouselStoreStub struct {
	items     map[int64]models.CarouselItem
	created   *models.CarouselInput
	deleteErr error
}

func (s *carouselStoreStub) List(_ context.Context, _ *int) ([]models.CarouselItem, error) {
	out := make([]models.CarouselItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	return out, nil
}

func (s *carouselStoreStub) Get(_ context.Context, id int64) (models.CarouselItem, error) {
	item, ok := s.items[id]
	if !ok {
		return models.CarouselItem{}, repositories.ErrNotFound
	}
	return item, nil
}

func (s *carouselStoreStub) Create(_ context.Context, in models.CarouselInput) (models.CarouselItem, error) {
	s.created = &in
	return models.CarouselItem{ID: 7, Imgsrc: in.Imgsrc, Video: in.Video, Active: models.FlagOn}, nil
}

func (s *carouselStoreStub) Update(_ context.Context, id int64, in models.CarouselInput) (models.CarouselItem, error) {
	if _, ok := s.items[id]; !ok {
		return models.CarouselItem{}, repositories.ErrNotFound
	}
	return models.CarouselItem{ID: id, Imgsrc: in.Imgsrc, Video: in.Video}, nil
}

func (s *carouselStoreStub) Delete(_ context.Context, id int64) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.items[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

type segmentStoreStub struct {
	segments  map[int64]models.Segment
	orders    []models.SegmentOrder
	deleteErr error
}

func (s *segmentStoreStub) List(_ context.Context, _ *int) ([]models.Segment, error) {
	out := make([]models.Segment, 0, len(s.segments))
	for _, seg := range s.segments {
		out = append(out, seg)
	}
	return out, nil
}

func (s *segmentStoreStub) Get(_ context.Context, id int64) (models.Segment, error) {
	seg, ok := s.segments[id]
	if !ok {
		return models.Segment{}, repositories.ErrNotFound
	}
	return seg, nil
}

func (s *segmentStoreStub) Create(_ context.Context, in models.SegmentInput) (models.Segment, error) {
	return models.Segment{ID: 1, Name: in.Name, Active: models.FlagOn}, nil
}

func (s *segmentStoreStub) Update(_ context.Context, id int64, in models.SegmentInput) (models.Segment, error) {
	if _, ok := s.segments[id]; !ok {
		return models.Segment{}, repositories.ErrNotFound
	}
	return models.Segment{ID: id, Name: in.Name}, nil
}

func (s *segmentStoreStub) Delete(_ context.Context, id int64) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.segments[id]; !ok {
		return repositories.ErrNotFound
	}
	return nil
}

func (s *segmentStoreStub) Reorder(_ context.Context, orders []models.SegmentOrder) error {
	s.orders = orders
	for _, o := range orders {
		seg, ok := s.segments[o.ID]
		if !ok {
			return repositories.ErrNotFound
		}
		seg.Order = o.Order
		s.segments[o.ID] = seg
	}
	return nil
}

type playlistStoreStub struct {
	playlists   map[string]models.Playlist
	results     []models.Playlist
	searchQ     string
	searchLimit int
	searchFlag  *int
	categories  []int64
}

func (s *playlistStoreStub) Get(_ context.Context, id string) (models.Playlist, error) {
	pl, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	return pl, nil
}

func (s *playlistStoreStub) Create(_ context.Context, in models.PlaylistInput) (models.Playlist, error) {
	if _, ok := s.playlists[in.ID]; ok {
		return models.Playlist{}, repositories.ErrConflict
	}
	return models.Playlist{ID: in.ID, Title: in.Title}, nil
}

func (s *playlistStoreStub) Update(_ context.Context, id string, in models.PlaylistInput) (models.Playlist, error) {
	if _, ok := s.playlists[id]; !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	return models.Playlist{ID: id, Title: in.Title}, nil
}

func (s *playlistStoreStub) Delete(_ context.Context, id string) error {
	if _, ok := s.playlists[id]; !ok {
		return repositories.ErrNotFound
	}
	return nil
}

func (s *playlistStoreStub) Search(_ context.Context, q string, active *int, limit int) ([]models.Playlist, error) {
	s.searchQ, s.searchFlag, s.searchLimit = q, active, limit
	return s.results, nil
}

func (s *playlistStoreStub) ReplaceCategories(_ context.Context, _ string, ids []int64) error {
	s.categories = ids
	return nil
}

type coverSetterStub struct {
	playlistID string
	filename   string
	err        error
}

func (s *coverSetterStub) SetCover(_ context.Context, id, filename string) error {
	s.playlistID, s.filename = id, filename
	return s.err
}

type statsStoreStub struct {
	pingErr error
	tables  []repositories.TableCount
	counts  repositories.SegmentCounts
	totals  repositories.EntityTotals
}

func (s *statsStoreStub) Ping(context.Context) error { return s.pingErr }

func (s *statsStoreStub) Overview(context.Context, time.Time) (repositories.Overview, error) {
	return repositories.Overview{ActiveSegments: 2}, nil
}

func (s *statsStoreStub) SegmentCounts(context.Context, int64) (repositories.SegmentCounts, error) {
	return s.counts, nil
}

func (s *statsStoreStub) TableCounts(context.Context) []repositories.TableCount { return s.tables }

func (s *statsStoreStub) EntityTotals(context.Context) (repositories.EntityTotals, error) {
	return s.totals, nil
}

type channelListerStub struct {
	channels []models.LiveTVChannel
	err      error
}

func (s channelListerStub) Channels(context.Context) ([]models.LiveTVChannel, error) {
	return s.channels, s.err
}

type catalogReaderStub struct {
	tree catalog.Tree
}

func (s catalogReaderStub) Tree(context.Context) (catalog.Tree, error) { return s.tree, nil }

func (s catalogReaderStub) PlaylistsBySegment(context.Context, int64, *int) ([]catalog.PlaylistNode, error) {
	return []catalog.PlaylistNode{}, nil
}

func (s catalogReaderStub) SeasonTree(context.Context) ([]catalog.SeasonNode, error) {
	return []catalog.SeasonNode{}, nil
}

type identityProviderStub struct {
	token     external.TokenResponse
	login     json.RawMessage
	created   json.RawMessage
	createErr error
	calls     int
	email     string
}

func (s *identityProviderStub) ClientCredentials(context.Context) (external.TokenResponse, error) {
	s.calls++
	return s.token, nil
}

func (s *identityProviderStub) PasswordLogin(_ context.Context, email, _ string) (json.RawMessage, error) {
	s.calls++
	s.email = email
	return s.login, nil
}

func (s *identityProviderStub) CreateUser(_ context.Context, email, _, _ string) (json.RawMessage, error) {
	s.calls++
	s.email = email
	return s.created, s.createErr
}

type videoAnalyticsStub struct {
	configured bool
	period     string
}

func (s *videoAnalyticsStub) Configured() bool { return s.configured }

func (s *videoAnalyticsStub) VideoPerformance(_ context.Context, period string) (json.RawMessage, error) {
	s.period = period
	return json.RawMessage(`{"data":{"rows":[]}}`), nil
}

type eventRecorderStub struct {
	events []models.VideoPlayEvent
	err    error
}

func (s *eventRecorderStub) Record(_ context.Context, evt models.VideoPlayEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, evt)
	return nil
}

// tokenVerifierStub accepts "Bearer good" and rejects everything else.
type tokenVerifierStub struct{}

func (tokenVerifierStub) Verify(_ context.Context, authorization string) (auth.Claims, error) {
	if strings.TrimPrefix(authorization, "Bearer ") != "good" {
		return auth.Claims{}, auth.ErrUnauthenticated
	}
	return auth.Claims{Subject: "auth0|abc", Email: "ana@example.com", Name: "Ana"}, nil
}
