package handlers

import (
	"net/http"
	"time"
)

const (
	serviceName    = "lacajita-playlists-api"
	serviceVersion = "1.0.0-auth0"
)

// HealthHandler responds with service and database health information.
type HealthHandler struct {
	Stats   StatsStore
	NowFunc func() time.Time
}

// Handle implements GET /health.
func (h HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	respondJSON(r.Context(), w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"service":   serviceName,
		"version":   serviceVersion,
		"timestamp": h.now().Format(time.RFC3339),
	})
}

// Database implements GET /health-db.
func (h HealthHandler) Database(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Stats == nil {
		respondJSON(ctx, w, http.StatusServiceUnavailable, map[string]string{
			"status":   "unhealthy",
			"database": "disconnected",
			"error":    "database not configured",
		})
		return
	}
	if err := h.Stats.Ping(ctx); err != nil {
		respondJSON(ctx, w, http.StatusServiceUnavailable, map[string]string{
			"status":   "unhealthy",
			"database": "disconnected",
			"error":    err.Error(),
		})
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"database": "connected",
	})
}

type healthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Count   *int64 `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}

type catalogHealth struct {
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
	Checks    struct {
		Database healthCheck            `json:"database"`
		Tables   map[string]healthCheck `json:"tables"`
	} `json:"checks"`
}

// Catalog implements GET /playlist/health. A failing table degrades the
// report; an unreachable database makes it unhealthy.
func (h HealthHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report := catalogHealth{Timestamp: h.now().Format(time.RFC3339), Status: "healthy"}
	report.Checks.Tables = map[string]healthCheck{}

	if h.Stats == nil {
		report.Status = "unhealthy"
		report.Checks.Database = healthCheck{Status: "unhealthy", Message: "database not configured"}
		respondJSON(ctx, w, http.StatusServiceUnavailable, report)
		return
	}

	if err := h.Stats.Ping(ctx); err != nil {
		report.Status = "unhealthy"
		report.Checks.Database = healthCheck{Status: "unhealthy", Message: "database error: " + err.Error()}
		respondJSON(ctx, w, http.StatusServiceUnavailable, report)
		return
	}
	report.Checks.Database = healthCheck{Status: "healthy", Message: "connection successful"}

	for _, tc := range h.Stats.TableCounts(ctx) {
		if tc.Err != nil {
			report.Status = "degraded"
			report.Checks.Tables[tc.Table] = healthCheck{Status: "error", Error: tc.Err.Error()}
			continue
		}
		count := tc.Count
		report.Checks.Tables[tc.Table] = healthCheck{Status: "ok", Count: &count}
	}

	respondJSON(ctx, w, http.StatusOK, report)
}

func (h HealthHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc().UTC()
	}
	return time.Now().UTC()
}
