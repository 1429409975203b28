package app

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"

	"github.com/lacajita/backend/internal/config"
	"github.com/lacajita/backend/internal/logging"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		AppPort: 8000,
		Auth: config.AuthConfig{
			Domain:    "tenant.example.com",
			Audience:  "https://api.example.com",
			SecretKey: "s3cret",
			DevBypass: true,
		},
		Uploads:           config.UploadConfig{MaxMB: 1, Dir: t.TempDir(), Store: "local"},
		Feeds:             config.FeedConfig{LiveTVURL: "http://localhost/live-tvs", JWPlayerEndpoint: "http://localhost/jw"},
		RateLimitRequests: 5,
		RateLimitWindow:   time.Minute,
		AnalyticsWorkers:  1,
		AnalyticsQueue:    4,
	}
}

func TestBuildDependencies(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new mock pool: %v", err)
	}
	defer mock.Close()

	deps, cleanup, err := buildDependencies(context.Background(), mock, testConfig(t), logging.New(io.Discard, "error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleanup == nil {
		t.Fatal("expected cleanup function")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := cleanup(ctx); err != nil {
			t.Fatalf("cleanup: %v", err)
		}
	}()

	if deps.Carousel == nil || deps.Segments == nil || deps.Playlists == nil || deps.Seasons == nil || deps.Videos == nil || deps.Categories == nil {
		t.Fatalf("expected catalogue repositories to be configured, got %+v", deps)
	}
	if deps.Catalog == nil {
		t.Fatal("expected catalog service to be configured")
	}
	if deps.Identity == nil || deps.Directory == nil {
		t.Fatal("expected identity provider to be configured")
	}
	if deps.Gate.Verifier == nil {
		t.Fatal("expected token verifier to be configured")
	}
	if deps.Events == nil {
		t.Fatal("expected analytics recorder to be configured")
	}
	if deps.Images == nil {
		t.Fatal("expected image store to be configured")
	}
	if deps.CredentialLimiter == nil {
		t.Fatal("expected credential rate limiter to be configured")
	}
	if deps.MaxUploadBytes != 1<<20 {
		t.Fatalf("expected 1MB upload limit got %d", deps.MaxUploadBytes)
	}
	if deps.Analytics.Configured() {
		t.Fatal("expected jwplayer analytics to be unconfigured without credentials")
	}
}

func TestBuildDependenciesS3Store(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new mock pool: %v", err)
	}
	defer mock.Close()

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	cfg := testConfig(t)
	cfg.Uploads.Store = "s3"
	cfg.Uploads.S3 = config.ObjectStoreConfig{Bucket: "covers", Endpoint: "http://localhost:9000", Region: "us-east-1"}

	deps, cleanup, err := buildDependencies(context.Background(), mock, cfg, logging.New(io.Discard, "error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = cleanup(context.Background()) }()

	if deps.Images == nil {
		t.Fatal("expected s3 image store to be configured")
	}
}

func TestBuildDependenciesS3RequiresBucket(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new mock pool: %v", err)
	}
	defer mock.Close()

	cfg := testConfig(t)
	cfg.Uploads.Store = "s3"

	if _, _, err := buildDependencies(context.Background(), mock, cfg, logging.New(io.Discard, "error")); err == nil {
		t.Fatal("expected error for missing bucket")
	}
}
