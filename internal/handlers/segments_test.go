package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lacajita/backend/internal/models"
	"github.com/lacajita/backend/internal/repositories"
)

func TestSegmentHandlerDeleteWithChildren(t *testing.T) {
	store := &segmentStoreStub{
		segments:  map[int64]models.Segment{1: {ID: 1, Name: "Series"}},
		deleteErr: repositories.ErrInvalidReference,
	}
	handler := SegmentHandler{Segments: store}

	req := httptest.NewRequest(http.MethodDelete, "/segments/1", nil)
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409 got %d", rec.Code)
	}
}

func TestSegmentHandlerDeleteSuccess(t *testing.T) {
	handler := SegmentHandler{Segments: &segmentStoreStub{segments: map[int64]models.Segment{1: {ID: 1}}}}

	req := httptest.NewRequest(http.MethodDelete, "/segments/1", nil)
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204 got %d", rec.Code)
	}
}

func TestSegmentHandlerReorder(t *testing.T) {
	store := &segmentStoreStub{segments: map[int64]models.Segment{
		1: {ID: 1, Name: "Series", Order: 0},
		2: {ID: 2, Name: "LiveTV", Order: 1},
	}}
	handler := SegmentHandler{Segments: store}

	body := `{"arrorder":[{"id":1,"order":1},{"id":2,"order":0}]}`
	req := httptest.NewRequest(http.MethodPut, "/segments/order", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Reorder(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.orders) != 2 {
		t.Fatalf("expected 2 orders got %d", len(store.orders))
	}
	if store.segments[1].Order != 1 || store.segments[2].Order != 0 {
		t.Fatalf("orders not applied: %+v", store.segments)
	}
}

func TestSegmentHandlerReorderRequiresEntries(t *testing.T) {
	store := &segmentStoreStub{}
	handler := SegmentHandler{Segments: store}

	req := httptest.NewRequest(http.MethodPut, "/segments/order", strings.NewReader(`{"arrorder":[]}`))
	rec := httptest.NewRecorder()

	handler.Reorder(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
	if store.orders != nil {
		t.Fatal("expected store not to be called")
	}
}

func TestSegmentHandlerSummaryLiveTV(t *testing.T) {
	handler := SegmentHandler{
		Segments: &segmentStoreStub{segments: map[int64]models.Segment{4: {ID: 4, Name: "TV", LiveTV: models.FlagOn}}},
		Stats:    &statsStoreStub{counts: repositories.SegmentCounts{Playlists: 9}},
		LiveTV:   channelListerStub{channels: make([]models.LiveTVChannel, 3)},
	}

	req := httptest.NewRequest(http.MethodGet, "/segments/4/summary", nil)
	req.SetPathValue("id", "4")
	rec := httptest.NewRecorder()

	handler.Summary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	var summary segmentSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if summary.Type != "livetv" || summary.ChannelCount != 3 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.PlaylistCount != 0 {
		t.Fatalf("expected livetv summary to skip playlist counts, got %d", summary.PlaylistCount)
	}
}

func TestSegmentHandlerSummaryFeedDown(t *testing.T) {
	handler := SegmentHandler{
		Segments: &segmentStoreStub{segments: map[int64]models.Segment{4: {ID: 4, LiveTV: models.FlagOn}}},
		LiveTV:   channelListerStub{err: errors.New("feed down")},
	}

	req := httptest.NewRequest(http.MethodGet, "/segments/4/summary", nil)
	req.SetPathValue("id", "4")
	rec := httptest.NewRecorder()

	handler.Summary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"channel_count":0`) {
		t.Fatalf("expected zero channels, got %s", rec.Body.String())
	}
}

func TestSegmentHandlerSummaryPlaylistCounts(t *testing.T) {
	handler := SegmentHandler{
		Segments: &segmentStoreStub{segments: map[int64]models.Segment{2: {ID: 2, Name: "Kids"}}},
		Stats:    &statsStoreStub{counts: repositories.SegmentCounts{Playlists: 2, Seasons: 5, Videos: 40}},
	}

	req := httptest.NewRequest(http.MethodGet, "/segments/2/summary", nil)
	req.SetPathValue("id", "2")
	rec := httptest.NewRecorder()

	handler.Summary(rec, req)

	var summary segmentSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if summary.Type != "playlist" || summary.PlaylistCount != 2 || summary.SeasonCount != 5 || summary.VideoCount != 40 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}
