package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lacajita/backend/internal/analytics"
	"github.com/lacajita/backend/internal/auth"
	"github.com/lacajita/backend/internal/catalog"
	"github.com/lacajita/backend/internal/config"
	"github.com/lacajita/backend/internal/db"
	"github.com/lacajita/backend/internal/external"
	"github.com/lacajita/backend/internal/handlers"
	"github.com/lacajita/backend/internal/middleware"
	"github.com/lacajita/backend/internal/repositories"
	"github.com/lacajita/backend/internal/storage"
)

const rateLimitVisitorTTL = 10 * time.Minute

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. cleanup drains the analytics queue and must run after the HTTP
// server has stopped accepting requests.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, func(context.Context) error, error) {
	images, err := newImageStore(ctx, cfg.Uploads)
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}

	carousel := repositories.NewPostgresCarouselRepository(pool)
	segments := repositories.NewPostgresSegmentRepository(pool)
	playlists := repositories.NewPostgresPlaylistRepository(pool)
	seasons := repositories.NewPostgresSeasonRepository(pool)
	videos := repositories.NewPostgresVideoRepository(pool)
	categories := repositories.NewPostgresCategoryRepository(pool)
	plays := repositories.NewPostgresVideoPlayRepository(pool)

	liveTV := external.NewLiveTVClient(cfg.Feeds.LiveTVURL)
	identity := external.NewAuth0Client(external.Auth0Config{
		Domain:           cfg.Auth.Domain,
		Audience:         cfg.Auth.Audience,
		ClientID:         cfg.Auth.ClientID,
		ClientSecret:     cfg.Auth.ClientSecret,
		MgmtClientID:     cfg.Auth.MgmtClientID,
		MgmtClientSecret: cfg.Auth.MgmtClientSecret,
		UsersCacheTTL:    cfg.Auth.UsersCacheTTL,
	})
	jw := external.NewJWPlayerClient(external.JWPlayerConfig{
		APIKey:    cfg.Feeds.JWPlayerAPIKey,
		APISecret: cfg.Feeds.JWPlayerSecret,
		SiteID:    cfg.Feeds.JWPlayerSiteID,
	}, external.WithBaseURL(cfg.Feeds.JWPlayerEndpoint))

	verifier := auth.NewVerifier(auth.NewKeyCache(cfg.Auth.JWKSURL(), cfg.Auth.JWKSCacheTTL), auth.VerifierConfig{
		Issuer:       cfg.Auth.Issuer(),
		Audience:     cfg.Auth.Audience,
		DevBypass:    cfg.Auth.DevBypass,
		DevUserEmail: cfg.Auth.DevUserEmail,
		DevUserName:  cfg.Auth.DevUserName,
		DevUserScope: cfg.Auth.DevUserScope,
	})
	if cfg.Auth.DevBypass {
		logger.Warn("development auth bypass enabled: requests without a token get developer claims")
	}

	recorder := analytics.NewRecorder(plays, analytics.RecorderConfig{
		QueueSize: cfg.AnalyticsQueue,
		Workers:   cfg.AnalyticsWorkers,
	}, logger)

	deps := handlers.Dependencies{
		Carousel:   carousel,
		Segments:   segments,
		Playlists:  playlists,
		Covers:     playlists,
		Seasons:    seasons,
		Videos:     videos,
		Categories: categories,
		Stats:      repositories.NewPostgresStatsRepository(pool),
		Plays:      plays,
		Catalog: &catalog.Service{
			Carousel:   carousel,
			Segments:   segments,
			Playlists:  playlists,
			Seasons:    seasons,
			Videos:     videos,
			Categories: categories,
			LiveTV:     liveTV,
		},
		LiveTV: liveTV,

		Identity:  identity,
		Directory: identity,
		Analytics: jw,
		Events:    recorder,
		Images:    images,

		Gate:              auth.Gate{Verifier: verifier},
		CredentialLimiter: middleware.NewIPRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow, cfg.RateLimitRequests, rateLimitVisitorTTL),
		RateLimitWindow:   cfg.RateLimitWindow,
		SecretKey:         cfg.Auth.SecretKey,
		MaxUploadBytes:    cfg.Uploads.MaxBytes(),
		PublicEnv:         config.PublicEnv,
	}

	return deps, recorder.Shutdown, nil
}

func newImageStore(ctx context.Context, cfg config.UploadConfig) (storage.ImageStore, error) {
	switch cfg.Store {
	case "s3":
		store, err := storage.NewS3ImageStore(ctx, cfg.S3, cfg.MaxBytes())
		if err != nil {
			return nil, fmt.Errorf("configure s3 image store: %w", err)
		}
		return store, nil
	default:
		store, err := storage.NewLocalImageStore(cfg.Dir, cfg.MaxBytes())
		if err != nil {
			return nil, fmt.Errorf("configure local image store: %w", err)
		}
		return store, nil
	}
}
