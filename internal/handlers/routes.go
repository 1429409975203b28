package handlers

import (
	"net/http"
	"time"

	"github.com/lacajita/backend/internal/auth"
	"github.com/lacajita/backend/internal/metrics"
	"github.com/lacajita/backend/internal/middleware"
	"github.com/lacajita/backend/internal/storage"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Carousel   CarouselStore
	Segments   SegmentStore
	Playlists  PlaylistStore
	Covers     CoverSetter
	Seasons    SeasonStore
	Videos     VideoStore
	Categories CategoryStore
	Stats      StatsStore
	Plays      PlayStats
	Catalog    CatalogReader
	LiveTV     ChannelLister

	Identity  IdentityProvider
	Directory UserDirectory
	Analytics VideoAnalytics
	Events    EventRecorder
	Images    storage.ImageStore

	Gate              auth.Gate
	CredentialLimiter middleware.RateLimiter
	RateLimitWindow   time.Duration
	SecretKey         string
	MaxUploadBytes    int64
	PublicEnv         func() map[string]string
	NowFunc           func() time.Time
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux. Everything
// outside the health, credential and config endpoints sits behind the gate.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{Stats: deps.Stats, NowFunc: deps.NowFunc}
	authn := AuthHandler{Identity: deps.Identity, SecretKey: deps.SecretKey}
	users := Auth0Handler{Directory: deps.Directory}
	carousel := CarouselHandler{Carousel: deps.Carousel}
	segments := SegmentHandler{Segments: deps.Segments, Stats: deps.Stats, LiveTV: deps.LiveTV}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Catalog: deps.Catalog}
	seasons := SeasonHandler{Seasons: deps.Seasons, Videos: deps.Videos, Catalog: deps.Catalog}
	videos := VideoHandler{Videos: deps.Videos}
	categories := CategoryHandler{Categories: deps.Categories}
	stats := StatsHandler{Stats: deps.Stats, LiveTV: deps.LiveTV, NowFunc: deps.NowFunc}
	images := ImageHandler{Images: deps.Images, Covers: deps.Covers, MaxBytes: deps.MaxUploadBytes}
	analytics := AnalyticsHandler{Events: deps.Events}
	dashboards := DashboardHandler{
		Users:     deps.Directory,
		Totals:    deps.Stats,
		Plays:     deps.Plays,
		Analytics: deps.Analytics,
		NowFunc:   deps.NowFunc,
	}
	cfg := ConfigHandler{Env: deps.PublicEnv}

	protect := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, deps.Gate.RequireFunc(h))
	}
	limited := func(pattern, scope string, h http.HandlerFunc) {
		mux.Handle(pattern, middleware.RateLimit(deps.CredentialLimiter, scope, deps.RateLimitWindow)(h))
	}

	mux.HandleFunc("GET /health", health.Handle)
	mux.HandleFunc("GET /health-db", health.Database)
	mux.HandleFunc("GET /playlist/health", health.Catalog)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /config/public", cfg.Public)
	limited("POST /auth/client-credentials", "client-credentials", authn.ClientCredentials)
	limited("POST /login", "login", authn.Login)

	protect("GET /user/me", authn.Me)
	protect("POST /auth0/users", authn.CreateUser)
	protect("GET /auth0/users", users.ListUsers)
	protect("GET /auth0/users/{id}", users.GetUser)
	protect("GET /auth0/users/{id}/roles", users.UserRoles)
	protect("GET /auth0/roles", users.Roles)

	protect("GET /home-carousel", carousel.List)
	protect("POST /home-carousel", carousel.Create)
	protect("GET /home-carousel/{id}", carousel.Get)
	protect("PUT /home-carousel/{id}", carousel.Update)
	protect("DELETE /home-carousel/{id}", carousel.Delete)

	protect("GET /segments", segments.List)
	protect("POST /segments", segments.Create)
	protect("PUT /segments/order", segments.Reorder)
	protect("GET /segments/{id}", segments.Get)
	protect("PUT /segments/{id}", segments.Update)
	protect("DELETE /segments/{id}", segments.Delete)
	protect("GET /segments/{id}/summary", segments.Summary)

	protect("GET /playlists", playlists.Tree)
	protect("GET /playlist", playlists.Tree)
	protect("POST /playlists", playlists.Create)
	protect("GET /playlists/search", playlists.Search)
	protect("GET /playlists/by-segment/{id}", playlists.BySegment)
	protect("GET /playlists/{id}", playlists.Get)
	protect("PUT /playlists/{id}", playlists.Update)
	protect("DELETE /playlists/{id}", playlists.Delete)
	protect("PUT /playlists/{id}/categories", playlists.ReplaceCategories)

	protect("GET /seasons", seasons.List)
	protect("POST /seasons", seasons.Create)
	protect("GET /seasons/tree", seasons.Tree)
	protect("GET /seasons/{id}", seasons.Get)
	protect("PUT /seasons/{id}", seasons.Update)
	protect("DELETE /seasons/{id}", seasons.Delete)
	protect("PUT /seasons/{id}/videos", seasons.ReplaceVideos)

	protect("GET /videos", videos.List)
	protect("POST /videos", videos.Create)
	protect("GET /videos/{season_id}/{video_id}", videos.Get)
	protect("PUT /videos/{season_id}/{video_id}", videos.Update)
	protect("DELETE /videos/{season_id}/{video_id}", videos.Delete)

	protect("GET /categories", categories.List)
	protect("POST /categories", categories.Create)
	protect("GET /categories/{id}", categories.Get)
	protect("PUT /categories/{id}", categories.Update)
	protect("DELETE /categories/{id}", categories.Delete)

	protect("GET /stats/overview", stats.Overview)

	protect("POST /upload-image", images.Upload)
	protect("GET /images", images.List)
	protect("GET /images/{filename}", images.Get)
	protect("GET /getcover", images.Cover)

	protect("POST /analytics/video-event", analytics.VideoEvent)
	protect("GET /dashboard/video-consumption", dashboards.VideoConsumption)
	protect("GET /dashboard/login-stats", dashboards.LoginStats)
	protect("GET /dashboard/system-summary", dashboards.SystemSummary)
	protect("GET /dashboard/customers-summary", dashboards.CustomersSummary)
	protect("GET /dashboard/customers-demographic", dashboards.CustomersDemographic)
	protect("GET /dashboard/jw-analytics/consumption", dashboards.JWConsumption)
}
