package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lacajita/backend/internal/repositories"
)

func TestHealthHandlerHandle(t *testing.T) {
	handler := HealthHandler{NowFunc: func() time.Time {
		return time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	}}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected json content type got %s", got)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != "healthy" || body["service"] != serviceName || body["timestamp"] != "2024-03-01T10:00:00Z" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestHealthHandlerDatabase(t *testing.T) {
	tests := []struct {
		name     string
		stats    StatsStore
		status   int
		database string
	}{
		{name: "connected", stats: &statsStoreStub{}, status: http.StatusOK, database: "connected"},
		{name: "ping failure", stats: &statsStoreStub{pingErr: errors.New("refused")}, status: http.StatusServiceUnavailable, database: "disconnected"},
		{name: "not configured", stats: nil, status: http.StatusServiceUnavailable, database: "disconnected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := HealthHandler{Stats: tt.stats}
			req := httptest.NewRequest(http.MethodGet, "/health-db", nil)
			rec := httptest.NewRecorder()

			handler.Database(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected status %d got %d", tt.status, rec.Code)
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if body["database"] != tt.database {
				t.Fatalf("expected database %q got %q", tt.database, body["database"])
			}
		})
	}
}

func TestHealthHandlerCatalogDegraded(t *testing.T) {
	stats := &statsStoreStub{tables: []repositories.TableCount{
		{Table: "segments", Count: 4},
		{Table: "videos", Err: errors.New("relation does not exist")},
	}}
	handler := HealthHandler{Stats: stats}

	req := httptest.NewRequest(http.MethodGet, "/playlist/health", nil)
	rec := httptest.NewRecorder()

	handler.Catalog(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	var report catalogHealth
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if report.Status != "degraded" {
		t.Fatalf("expected degraded got %s", report.Status)
	}
	if seg := report.Checks.Tables["segments"]; seg.Status != "ok" || seg.Count == nil || *seg.Count != 4 {
		t.Fatalf("unexpected segments check %+v", seg)
	}
	if vid := report.Checks.Tables["videos"]; vid.Status != "error" || vid.Error == "" {
		t.Fatalf("unexpected videos check %+v", vid)
	}
}

func TestHealthHandlerCatalogDatabaseDown(t *testing.T) {
	handler := HealthHandler{Stats: &statsStoreStub{pingErr: errors.New("refused")}}

	req := httptest.NewRequest(http.MethodGet, "/playlist/health", nil)
	rec := httptest.NewRecorder()

	handler.Catalog(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 got %d", rec.Code)
	}
}
