package models

import "time"

// Flag values used by the 0/1 integer columns (active, livetv, muted, subscription).
const (
	FlagOff = 0
	FlagOn  = 1
)

// Category labels playlists; the relation is many-to-many.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	// HasCat is 1 when at least one playlist is assigned to the category.
	HasCat int `json:"hascat"`
}

// CategoryAssignment is a row of the playlist/category join table.
type CategoryAssignment struct {
	PlaylistID string `json:"id_playlist"`
	CategoryID int64  `json:"id_category"`
}

// CategoryRef is the compact category shape nested in playlists.
type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Segment is a row of the home page: either a playlist shelf or the LiveTV strip.
type Segment struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	LiveTV int    `json:"livetv"`
	Order  int    `json:"order"`
	Active int    `json:"active"`
}

// SegmentInput carries create/update fields; nil values take column defaults.
type SegmentInput struct {
	Name   string `json:"name" validate:"required,max=255"`
	LiveTV *int   `json:"livetv" validate:"omitempty,oneof=0 1"`
	Order  *int   `json:"order" validate:"omitempty,min=0"`
	Active *int   `json:"active" validate:"omitempty,oneof=0 1"`
}

// SegmentOrder assigns a display position to a segment.
type SegmentOrder struct {
	ID    int64 `json:"id" validate:"required"`
	Order int   `json:"order" validate:"min=0"`
}

// Playlist is a show or collection owned by a segment.
type Playlist struct {
	ID               string    `json:"id"`
	SegmentID        *int64    `json:"segment_id"`
	Title            *string   `json:"title"`
	Description      *string   `json:"description"`
	Category         *string   `json:"category"`
	Subscription     *int      `json:"subscription"`
	SubscriptionCost *float64  `json:"subscription_cost"`
	Active           *int      `json:"active"`
	Cover            *string   `json:"cover"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// PlaylistInput carries create/update fields for a playlist.
type PlaylistInput struct {
	ID               string   `json:"id" validate:"required,max=64"`
	SegmentID        *int64   `json:"segment_id"`
	Title            *string  `json:"title" validate:"omitempty,max=255"`
	Description      *string  `json:"description"`
	Category         *string  `json:"category" validate:"omitempty,max=255"`
	Subscription     *int     `json:"subscription" validate:"omitempty,oneof=0 1"`
	SubscriptionCost *float64 `json:"subscription_cost" validate:"omitempty,min=0"`
	Active           *int     `json:"active" validate:"omitempty,oneof=0 1"`
	Cover            *string  `json:"cover" validate:"omitempty,max=255"`
}

// Season groups videos inside a playlist.
type Season struct {
	ID          int64      `json:"id"`
	PlaylistID  string     `json:"playlist_id"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
	Active      *int       `json:"active"`
}

// SeasonInput carries create/update fields for a season.
type SeasonInput struct {
	PlaylistID  string     `json:"playlist_id" validate:"required"`
	Title       *string    `json:"title" validate:"omitempty,max=255"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
	Active      *int       `json:"active" validate:"omitempty,oneof=0 1"`
}

// Video references a hosted media id within a season.
type Video struct {
	SeasonID int64      `json:"season_id"`
	VideoID  string     `json:"video_id"`
	Date     *time.Time `json:"date"`
	Active   *int       `json:"active"`
}

// VideoInput carries create/update fields for a video.
type VideoInput struct {
	SeasonID int64      `json:"season_id" validate:"required"`
	VideoID  string     `json:"video_id" validate:"required,max=64"`
	Date     *time.Time `json:"date"`
	Active   *int       `json:"active" validate:"omitempty,oneof=0 1"`
}

// CarouselItem is a slide of the home page carousel.
type CarouselItem struct {
	ID       int64     `json:"id"`
	Link     *string   `json:"link"`
	Imgsrc   *string   `json:"imgsrc"`
	Video    *string   `json:"video"`
	Muted    int       `json:"muted"`
	DateTime time.Time `json:"date_time"`
	Active   int       `json:"active"`
	Order    int       `json:"order"`
}

// CarouselInput carries create/update fields; at least one of Imgsrc and
// Video must be present.
type CarouselInput struct {
	Link   *string `json:"link" validate:"omitempty,max=1024"`
	Imgsrc *string `json:"imgsrc" validate:"omitempty,max=1024"`
	Video  *string `json:"video" validate:"omitempty,max=1024"`
	Muted  *int    `json:"muted" validate:"omitempty,oneof=0 1"`
	Active *int    `json:"active" validate:"omitempty,oneof=0 1"`
	Order  *int    `json:"order" validate:"omitempty,min=0"`
}

// HasMedia reports whether an image or a video source is set.
func (c CarouselInput) HasMedia() bool {
	return (c.Imgsrc != nil && *c.Imgsrc != "") || (c.Video != nil && *c.Video != "")
}

// Playback event names accepted by the analytics endpoint.
const (
	EventImpression = "impression"
	EventPlay       = "play"
	EventPause      = "pause"
	EventComplete   = "complete"
	EventTime       = "time"
)

// VideoPlayEvent is a single player beacon.
type VideoPlayEvent struct {
	ID         int64          `json:"id"`
	MediaID    string         `json:"media_id" validate:"required,max=64"`
	PlaylistID *string        `json:"playlist_id" validate:"omitempty,max=64"`
	UserSub    *string        `json:"-"`
	UserEmail  *string        `json:"-"`
	Event      string         `json:"event" validate:"required,oneof=impression play pause complete time"`
	PositionS  *float64       `json:"position" validate:"omitempty,min=0"`
	DurationS  *float64       `json:"duration" validate:"omitempty,min=0"`
	UserAgent  *string        `json:"-"`
	IPAddr     *string        `json:"-"`
	Extra      map[string]any `json:"meta,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// LiveTVChannel is an entry of the LiveTV feed.
type LiveTVChannel struct {
	ID     *int64  `json:"id"`
	Name   *string `json:"name"`
	URL    *string `json:"url"`
	Number *int    `json:"number"`
	Logo   *string `json:"logo"`
}

// VideoConsumption summarises playback events over a trailing window.
type VideoConsumption struct {
	TotalEvents                 int64         `json:"total_events"`
	Plays                       int64         `json:"plays"`
	Completes                   int64         `json:"completes"`
	UniqueUsers                 int64         `json:"unique_users"`
	TotalSecondsWatchedEstimate float64       `json:"total_seconds_watched_estimate"`
	TopVideos                   []TopVideo    `json:"top_videos"`
	Last7Days                   []DailyEvents `json:"last_7d"`
}

// TopVideo is a per-media event tally.
type TopVideo struct {
	MediaID   string `json:"media_id"`
	Plays     int64  `json:"plays"`
	Completes int64  `json:"completes"`
	Events    int64  `json:"events"`
}

// DailyEvents is one point of the daily event series.
type DailyEvents struct {
	Day    string `json:"d"`
	Events int64  `json:"events"`
	Plays  int64  `json:"plays"`
}

// Auth0User is the subset of an Auth0 user profile requested for listings and
// dashboards. Timestamps are kept as the ISO 8601 strings Auth0 returns.
type Auth0User struct {
	UserID        string          `json:"user_id"`
	Email         string          `json:"email,omitempty"`
	EmailVerified bool            `json:"email_verified"`
	Blocked       bool            `json:"blocked"`
	CreatedAt     string          `json:"created_at,omitempty"`
	LastLogin     string          `json:"last_login,omitempty"`
	LastIP        string          `json:"last_ip,omitempty"`
	LoginsCount   int             `json:"logins_count"`
	Identities    []Auth0Identity `json:"identities,omitempty"`
	AppMetadata   map[string]any  `json:"app_metadata,omitempty"`
	UserMetadata  map[string]any  `json:"user_metadata,omitempty"`
}

// Auth0Identity is one linked identity provider account.
type Auth0Identity struct {
	Provider   string `json:"provider"`
	Connection string `json:"connection,omitempty"`
	UserID     any    `json:"user_id,omitempty"`
	IsSocial   bool   `json:"isSocial,omitempty"`
}
