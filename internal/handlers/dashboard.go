package handlers

import (
	"net/http"
	"time"

	"github.com/lacajita/backend/internal/dashboard"
	"github.com/lacajita/backend/internal/validation"
)

const (
	defaultConsumptionDays = 30
	maxConsumptionDays     = 365
	seriesWindow           = 7 * 24 * time.Hour
)

// DashboardHandler serves the admin dashboards computed from the identity
// provider's users, the playback events and the hosted player analytics.
type DashboardHandler struct {
	Users     UserDirectory
	Totals    StatsStore
	Plays     PlayStats
	Analytics VideoAnalytics
	NowFunc   func() time.Time
}

// VideoConsumption handles GET /dashboard/video-consumption?days=.
func (h DashboardHandler) VideoConsumption(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	days, err := queryInt(r, "days", defaultConsumptionDays)
	if err != nil {
		badRequest(ctx, w, err)
		return
	}
	if days == 0 || days > maxConsumptionDays {
		badRequest(ctx, w, &validation.Error{Field: "days", Rule: "range", Param: "1-365"})
		return
	}

	now := h.now()
	summary, err := h.Plays.Consumption(ctx, now.AddDate(0, 0, -days), now.Add(-seriesWindow))
	if err != nil {
		respondError(ctx, w, "video consumption", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, summary)
}

// LoginStats handles GET /dashboard/login-stats.
func (h DashboardHandler) LoginStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := h.Users.ListUsers(ctx)
	if err != nil {
		respondError(ctx, w, "auth0 users", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, dashboard.Logins(users))
}

// SystemSummary handles GET /dashboard/system-summary.
func (h DashboardHandler) SystemSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := h.Users.ListUsers(ctx)
	if err != nil {
		respondError(ctx, w, "auth0 users", err)
		return
	}
	totals, err := h.Totals.EntityTotals(ctx)
	if err != nil {
		respondError(ctx, w, "statistics", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, dashboard.System(users, totals))
}

// CustomersSummary handles GET /dashboard/customers-summary.
func (h DashboardHandler) CustomersSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := h.Users.ListUsers(ctx)
	if err != nil {
		respondError(ctx, w, "auth0 users", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, dashboard.Customers(users, h.now()))
}

// CustomersDemographic handles GET /dashboard/customers-demographic.
func (h DashboardHandler) CustomersDemographic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := h.Users.ListUsers(ctx)
	if err != nil {
		respondError(ctx, w, "auth0 users", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, dashboard.Demographics(users))
}

// JWConsumption handles GET /dashboard/jw-analytics/consumption?period=.
func (h DashboardHandler) JWConsumption(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Analytics == nil || !h.Analytics.Configured() {
		respondMessage(ctx, w, http.StatusNotImplemented, "jwplayer analytics not configured")
		return
	}
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "7d"
	}
	report, err := h.Analytics.VideoPerformance(ctx, period)
	if err != nil {
		respondError(ctx, w, "jwplayer analytics", err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, report)
}

func (h DashboardHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc().UTC()
	}
	return time.Now().UTC()
}
