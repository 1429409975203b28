package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures the runtime configuration for the La Cajita backend service.
type Config struct {
	AppPort      int
	Environment  string
	LogLevel     string
	MigrationDir string
	SeedDir      string

	Database DatabaseConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Uploads  UploadConfig
	Feeds    FeedConfig
	HTTP     HTTPConfig

	RateLimitRequests int
	RateLimitWindow   time.Duration

	AnalyticsWorkers int
	AnalyticsQueue   int
}

// HTTPConfig holds the HTTP server timeouts.
type HTTPConfig struct {
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

// DatabaseConfig describes how to reach PostgreSQL. URL wins over the parts.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Socket   string
	SSLMode  string
}

// AuthConfig holds identity provider settings and the development bypass policy.
type AuthConfig struct {
	Domain           string
	Audience         string
	ClientID         string
	ClientSecret     string
	MgmtClientID     string
	MgmtClientSecret string
	SecretKey        string
	JWKSCacheTTL     time.Duration
	UsersCacheTTL    time.Duration

	DevBypass    bool
	DevUserEmail string
	DevUserName  string
	DevUserScope string
}

// Issuer returns the expected token issuer for the configured domain.
func (a AuthConfig) Issuer() string {
	return fmt.Sprintf("https://%s/", a.Domain)
}

// JWKSURL returns the well-known key set location for the configured domain.
func (a AuthConfig) JWKSURL() string {
	return fmt.Sprintf("https://%s/.well-known/jwks.json", a.Domain)
}

// CORSConfig lists the cross-origin policy applied to every route.
type CORSConfig struct {
	Origins     []string
	Methods     []string
	Headers     []string
	Credentials bool
}

// UploadConfig controls where cover images are stored.
type UploadConfig struct {
	MaxMB int
	Dir   string
	Store string
	S3    ObjectStoreConfig
}

// MaxBytes returns the upload limit in bytes.
func (u UploadConfig) MaxBytes() int64 {
	return int64(u.MaxMB) * 1024 * 1024
}

// ObjectStoreConfig configures the S3-compatible image backend.
type ObjectStoreConfig struct {
	Bucket        string
	Endpoint      string
	Region        string
	PublicBaseURL string
}

// FeedConfig configures the third-party feeds proxied by the service.
type FeedConfig struct {
	LiveTVURL        string
	JWPlayerAPIKey   string
	JWPlayerSecret   string
	JWPlayerSiteID   string
	JWPlayerEndpoint string
}

// Load reads configuration from environment variables, applying defaults
// suitable for local development.
func Load() (Config, error) {
	env := getString("ENVIRONMENT", "development")

	cfg := Config{
		AppPort:      getInt("PORT", 8000),
		Environment:  env,
		LogLevel:     getString("LOG_LEVEL", "info"),
		MigrationDir: getString("MIGRATIONS_DIR", "migrations"),
		SeedDir:      getString("SEED_DIR", "seeds"),
		Database: DatabaseConfig{
			URL:      getString("DATABASE_URL", ""),
			Host:     getString("DB_HOST", "localhost"),
			Port:     getInt("DB_PORT", 5432),
			User:     getString("DB_USER", "postgres"),
			Password: getString("DB_PASS", getString("DB_PASSWORD", "")),
			Name:     getString("DB_NAME", "db_jeturing"),
			Socket:   getString("DB_SOCKET", ""),
			SSLMode:  getString("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			Domain:        getString("AUTH0_DOMAIN", ""),
			Audience:      getString("API_AUDIENCE", ""),
			ClientID:      getString("AUTH0_CLIENT_ID", ""),
			ClientSecret:  getString("AUTH0_CLIENT_SECRET", ""),
			SecretKey:     getString("SECRET_KEY", ""),
			JWKSCacheTTL:  getDuration("AUTH0_JWKS_CACHE_TTL", 0),
			UsersCacheTTL: time.Duration(getInt("AUTH0_USERS_CACHE_SECONDS", 60)) * time.Second,
			DevBypass:     getBool("DEV_AUTH_BYPASS", !strings.EqualFold(env, "production")),
			DevUserEmail:  getString("DEV_USER_EMAIL", "dev@example.com"),
			DevUserName:   getString("DEV_USER_NAME", "Dev Local"),
			DevUserScope:  getString("DEV_USER_SCOPE", "read:segments write:carousel"),
		},
		CORS: CORSConfig{
			Origins:     getList("CORS_ORIGINS", []string{"http://localhost:5174"}),
			Methods:     getList("CORS_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			Headers:     getList("CORS_HEADERS", []string{"Authorization", "Content-Type", "Accept"}),
			Credentials: getBool("CORS_CREDENTIALS", true),
		},
		Uploads: UploadConfig{
			MaxMB: getInt("MAX_UPLOAD_MB", 15),
			Dir:   getString("UPLOAD_DIR", "img"),
			Store: strings.ToLower(getString("IMAGE_STORE", "local")),
			S3: ObjectStoreConfig{
				Bucket:        getString("S3_BUCKET", ""),
				Endpoint:      getString("S3_ENDPOINT", ""),
				Region:        getString("S3_REGION", "us-east-1"),
				PublicBaseURL: getString("S3_PUBLIC_BASE_URL", ""),
			},
		},
		Feeds: FeedConfig{
			LiveTVURL:        getString("LIVETV_API_URL", "https://cajita.concepcion.tech/live-tvs?_sort=number:asc"),
			JWPlayerAPIKey:   getString("JWPLAYER_API_KEY", ""),
			JWPlayerSecret:   getString("JWPLAYER_API_SECRET", ""),
			JWPlayerSiteID:   getString("JWPLAYER_SITE_ID", ""),
			JWPlayerEndpoint: getString("JWPLAYER_API_URL", "https://api.jwplayer.com"),
		},
		HTTP: HTTPConfig{
			ReadHeaderTimeout: getDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			WriteTimeout:      getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:       getDuration("HTTP_IDLE_TIMEOUT", time.Minute),
			ShutdownTimeout:   getDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		RateLimitRequests: getInt("RATE_LIMIT_REQUESTS", 10),
		RateLimitWindow:   getDuration("RATE_LIMIT_WINDOW", time.Minute),
		AnalyticsWorkers:  getInt("ANALYTICS_WORKERS", 2),
		AnalyticsQueue:    getInt("ANALYTICS_QUEUE", 256),
	}

	cfg.Auth.MgmtClientID = getString("AUTH0_MGMT_CLIENT_ID", cfg.Auth.ClientID)
	cfg.Auth.MgmtClientSecret = getString("AUTH0_MGMT_CLIENT_SECRET", cfg.Auth.ClientSecret)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration that would make the service unusable.
func (c Config) Validate() error {
	if c.AppPort <= 0 || c.AppPort > 65535 {
		return fmt.Errorf("config: invalid port %d", c.AppPort)
	}
	if !c.Auth.DevBypass && (c.Auth.Domain == "" || c.Auth.Audience == "") {
		return errors.New("config: AUTH0_DOMAIN and API_AUDIENCE are required when the dev bypass is disabled")
	}
	if c.Uploads.MaxMB <= 0 {
		return fmt.Errorf("config: MAX_UPLOAD_MB must be positive, got %d", c.Uploads.MaxMB)
	}
	switch c.Uploads.Store {
	case "local":
	case "s3":
		if c.Uploads.S3.Bucket == "" {
			return errors.New("config: S3_BUCKET is required when IMAGE_STORE=s3")
		}
	default:
		return fmt.Errorf("config: unknown IMAGE_STORE %q", c.Uploads.Store)
	}
	return nil
}

// DSN returns the connection string for pgx, assembling it from the parts
// when DATABASE_URL is not set. A socket directory replaces host and port.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	u := url.URL{
		Scheme: "postgres",
		Path:   "/" + d.Name,
	}
	if d.Password != "" {
		u.User = url.UserPassword(d.User, d.Password)
	} else {
		u.User = url.User(d.User)
	}

	q := url.Values{}
	if d.Socket != "" {
		q.Set("host", d.Socket)
	} else {
		u.Host = fmt.Sprintf("%s:%d", d.Host, d.Port)
	}
	if d.SSLMode != "" {
		q.Set("sslmode", d.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// PublicEnv returns every VITE_* variable for the frontend bootstrap endpoint.
func PublicEnv() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, "VITE_") {
			continue
		}
		out[key] = value
	}
	return out
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func getList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
