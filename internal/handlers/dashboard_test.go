package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lacajita/backend/internal/analytics"
	"github.com/lacajita/backend/internal/auth"
	"github.com/lacajita/backend/internal/models"
)

type playStatsStub struct {
	since, seriesSince time.Time
}

func (s *playStatsStub) Consumption(_ context.Context, since, seriesSince time.Time) (models.VideoConsumption, error) {
	s.since, s.seriesSince = since, seriesSince
	return models.VideoConsumption{TotalEvents: 12, Plays: 4, TopVideos: []models.TopVideo{}, Last7Days: []models.DailyEvents{}}, nil
}

func TestDashboardHandlerJWConsumptionNotConfigured(t *testing.T) {
	tests := []struct {
		name      string
		analytics VideoAnalytics
	}{
		{name: "nil client", analytics: nil},
		{name: "missing credentials", analytics: &videoAnalyticsStub{configured: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := DashboardHandler{Analytics: tt.analytics}

			req := httptest.NewRequest(http.MethodGet, "/dashboard/jw-analytics/consumption", nil)
			rec := httptest.NewRecorder()

			handler.JWConsumption(rec, req)

			if rec.Code != http.StatusNotImplemented {
				t.Fatalf("expected status 501 got %d", rec.Code)
			}
		})
	}
}

func TestDashboardHandlerJWConsumptionDefaultsPeriod(t *testing.T) {
	stub := &videoAnalyticsStub{configured: true}
	handler := DashboardHandler{Analytics: stub}

	req := httptest.NewRequest(http.MethodGet, "/dashboard/jw-analytics/consumption", nil)
	rec := httptest.NewRecorder()

	handler.JWConsumption(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if stub.period != "7d" {
		t.Fatalf("expected default period 7d got %q", stub.period)
	}
}

func TestDashboardHandlerVideoConsumption(t *testing.T) {
	now := time.Date(2024, time.May, 31, 12, 0, 0, 0, time.UTC)
	plays := &playStatsStub{}
	handler := DashboardHandler{Plays: plays, NowFunc: func() time.Time { return now }}

	req := httptest.NewRequest(http.MethodGet, "/dashboard/video-consumption?days=10", nil)
	rec := httptest.NewRecorder()

	handler.VideoConsumption(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if !plays.since.Equal(now.AddDate(0, 0, -10)) {
		t.Fatalf("unexpected window start %s", plays.since)
	}
	if !plays.seriesSince.Equal(now.Add(-7 * 24 * time.Hour)) {
		t.Fatalf("unexpected series start %s", plays.seriesSince)
	}
	var summary models.VideoConsumption
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if summary.TotalEvents != 12 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestDashboardHandlerVideoConsumptionRejectsRange(t *testing.T) {
	for _, days := range []string{"0", "400", "abc"} {
		handler := DashboardHandler{Plays: &playStatsStub{}}

		req := httptest.NewRequest(http.MethodGet, "/dashboard/video-consumption?days="+days, nil)
		rec := httptest.NewRecorder()

		handler.VideoConsumption(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("days=%s: expected status 400 got %d", days, rec.Code)
		}
	}
}

func TestAnalyticsHandlerVideoEvent(t *testing.T) {
	recorder := &eventRecorderStub{}
	handler := AnalyticsHandler{Events: recorder}

	req := httptest.NewRequest(http.MethodPost, "/analytics/video-event", strings.NewReader(`{"media_id":"abc123","event":"play","position":12.5}`))
	req.Header.Set("User-Agent", "player/1.0")
	ctx := auth.WithClaims(req.Context(), auth.Claims{Subject: "auth0|1", Email: "ana@example.com"})
	rec := httptest.NewRecorder()

	handler.VideoEvent(rec, req.WithContext(ctx))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202 got %d: %s", rec.Code, rec.Body.String())
	}
	if len(recorder.events) != 1 {
		t.Fatalf("expected one event got %d", len(recorder.events))
	}
	evt := recorder.events[0]
	if evt.UserSub == nil || *evt.UserSub != "auth0|1" {
		t.Fatalf("expected caller subject on event, got %v", evt.UserSub)
	}
	if evt.UserAgent == nil || *evt.UserAgent != "player/1.0" {
		t.Fatalf("expected user agent on event, got %v", evt.UserAgent)
	}
	if evt.IPAddr == nil {
		t.Fatal("expected client ip on event")
	}
}

func TestAnalyticsHandlerVideoEventValidation(t *testing.T) {
	recorder := &eventRecorderStub{}
	handler := AnalyticsHandler{Events: recorder}

	req := httptest.NewRequest(http.MethodPost, "/analytics/video-event", strings.NewReader(`{"media_id":"abc123","event":"rewind"}`))
	rec := httptest.NewRecorder()

	handler.VideoEvent(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
	if len(recorder.events) != 0 {
		t.Fatal("expected event to be dropped")
	}
}

func TestAnalyticsHandlerVideoEventRecorderClosed(t *testing.T) {
	handler := AnalyticsHandler{Events: &eventRecorderStub{err: analytics.ErrRecorderClosed}}

	req := httptest.NewRequest(http.MethodPost, "/analytics/video-event", strings.NewReader(`{"media_id":"abc123","event":"play"}`))
	rec := httptest.NewRecorder()

	handler.VideoEvent(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 got %d", rec.Code)
	}
}
