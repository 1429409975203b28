// Package catalog builds the nested home page tree served to the players.
package catalog

import (
	"time"

	"github.com/lacajita/backend/internal/models"
)

// Rows is the flat input of the assembler, as loaded from storage and the
// LiveTV feed. Slice order is preserved in the output.
type Rows struct {
	Carousel    []models.CarouselItem
	Segments    []models.Segment
	Playlists   []models.Playlist
	Categories  []models.Category
	Assignments []models.CategoryAssignment
	Seasons     []models.Season
	Videos      []models.Video
	Channels    []models.LiveTVChannel
}

// Tree is the full home page document.
type Tree struct {
	HomeCarousel []CarouselEntry `json:"homecarousel"`
	Segments     []SegmentNode   `json:"segments"`
}

// CarouselEntry is a carousel slide with null media coalesced to "".
type CarouselEntry struct {
	ID       int64   `json:"id"`
	Link     *string `json:"link"`
	Imgsrc   string  `json:"imgsrc"`
	Video    string  `json:"video"`
	Muted    int     `json:"muted"`
	DateTime string  `json:"date_time"`
	Active   int     `json:"active"`
	Order    int     `json:"order"`
}

// SegmentNode is a segment with either its playlists or the LiveTV channels.
type SegmentNode struct {
	ID         int64                  `json:"id"`
	Name       string                 `json:"name"`
	LiveTV     int                    `json:"livetv"`
	Order      int                    `json:"order"`
	Active     int                    `json:"active"`
	Playlist   []PlaylistNode         `json:"playlist"`
	LiveTVList []models.LiveTVChannel `json:"livetvlist"`
}

// PlaylistNode is a playlist with its categories and seasons.
type PlaylistNode struct {
	ID               string               `json:"id"`
	SegmentID        *int64               `json:"segment_id"`
	Title            *string              `json:"title"`
	Description      *string              `json:"description"`
	Category         *string              `json:"category"`
	Subscription     *int                 `json:"subscription"`
	SubscriptionCost *float64             `json:"subscription_cost"`
	Active           *int                 `json:"active"`
	Cover            *string              `json:"cover"`
	CreatedAt        string               `json:"created_at"`
	UpdatedAt        string               `json:"updated_at"`
	Categories       []models.CategoryRef `json:"categories"`
	Seasons          []SeasonNode         `json:"seasons"`
}

// SeasonNode is a season with the ids of its videos.
type SeasonNode struct {
	ID          int64    `json:"id"`
	PlaylistID  string   `json:"playlist_id"`
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Date        *string  `json:"date"`
	Active      *int     `json:"active"`
	Videos      []string `json:"videos"`
}

// Assemble nests the flat rows into the home page tree. Playlists whose
// segment is not among the rows are dropped, as are categories and seasons
// pointing at unknown playlists.
func Assemble(rows Rows) Tree {
	byPlaylist := groupPlaylists(rows.Playlists, rows.Categories, rows.Assignments, rows.Seasons, rows.Videos)

	channels := rows.Channels
	if channels == nil {
		channels = []models.LiveTVChannel{}
	}

	tree := Tree{
		HomeCarousel: make([]CarouselEntry, 0, len(rows.Carousel)),
		Segments:     make([]SegmentNode, 0, len(rows.Segments)),
	}

	for _, item := range rows.Carousel {
		tree.HomeCarousel = append(tree.HomeCarousel, carouselEntry(item))
	}

	for _, seg := range rows.Segments {
		node := SegmentNode{
			ID:         seg.ID,
			Name:       seg.Name,
			LiveTV:     seg.LiveTV,
			Order:      seg.Order,
			Active:     seg.Active,
			Playlist:   []PlaylistNode{},
			LiveTVList: []models.LiveTVChannel{},
		}
		if seg.LiveTV == models.FlagOn {
			node.LiveTVList = channels
		} else if playlists, ok := byPlaylist[seg.ID]; ok {
			node.Playlist = playlists
		}
		tree.Segments = append(tree.Segments, node)
	}

	return tree
}

// AssemblePlaylists nests categories, seasons and videos under each playlist,
// keeping playlist order.
func AssemblePlaylists(playlists []models.Playlist, categories []models.Category, assignments []models.CategoryAssignment, seasons []models.Season, videos []models.Video) []PlaylistNode {
	cats := categoriesByPlaylist(categories, assignments)
	seasonsByPlaylist := seasonsByPlaylist(seasons, videos)

	nodes := make([]PlaylistNode, 0, len(playlists))
	for _, p := range playlists {
		nodes = append(nodes, playlistNode(p, cats[p.ID], seasonsByPlaylist[p.ID]))
	}
	return nodes
}

// AssembleSeasons attaches video ids to every season, keeping season order.
func AssembleSeasons(seasons []models.Season, videos []models.Video) []SeasonNode {
	ids := videoIDsBySeason(videos)
	nodes := make([]SeasonNode, 0, len(seasons))
	for _, s := range seasons {
		nodes = append(nodes, seasonNode(s, ids[s.ID]))
	}
	return nodes
}

func groupPlaylists(playlists []models.Playlist, categories []models.Category, assignments []models.CategoryAssignment, seasons []models.Season, videos []models.Video) map[int64][]PlaylistNode {
	out := make(map[int64][]PlaylistNode)
	for _, node := range AssemblePlaylists(playlists, categories, assignments, seasons, videos) {
		if node.SegmentID == nil {
			continue
		}
		out[*node.SegmentID] = append(out[*node.SegmentID], node)
	}
	return out
}

func categoriesByPlaylist(categories []models.Category, assignments []models.CategoryAssignment) map[string][]models.CategoryRef {
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	out := make(map[string][]models.CategoryRef)
	for _, a := range assignments {
		name, ok := names[a.CategoryID]
		if !ok {
			continue
		}
		out[a.PlaylistID] = append(out[a.PlaylistID], models.CategoryRef{ID: a.CategoryID, Name: name})
	}
	return out
}

func seasonsByPlaylist(seasons []models.Season, videos []models.Video) map[string][]SeasonNode {
	ids := videoIDsBySeason(videos)
	out := make(map[string][]SeasonNode)
	for _, s := range seasons {
		out[s.PlaylistID] = append(out[s.PlaylistID], seasonNode(s, ids[s.ID]))
	}
	return out
}

func videoIDsBySeason(videos []models.Video) map[int64][]string {
	out := make(map[int64][]string)
	for _, v := range videos {
		out[v.SeasonID] = append(out[v.SeasonID], v.VideoID)
	}
	return out
}

func carouselEntry(item models.CarouselItem) CarouselEntry {
	return CarouselEntry{
		ID:       item.ID,
		Link:     item.Link,
		Imgsrc:   deref(item.Imgsrc),
		Video:    deref(item.Video),
		Muted:    item.Muted,
		DateTime: formatTime(item.DateTime),
		Active:   item.Active,
		Order:    item.Order,
	}
}

func playlistNode(p models.Playlist, categories []models.CategoryRef, seasons []SeasonNode) PlaylistNode {
	if categories == nil {
		categories = []models.CategoryRef{}
	}
	if seasons == nil {
		seasons = []SeasonNode{}
	}
	return PlaylistNode{
		ID:               p.ID,
		SegmentID:        p.SegmentID,
		Title:            p.Title,
		Description:      p.Description,
		Category:         p.Category,
		Subscription:     p.Subscription,
		SubscriptionCost: p.SubscriptionCost,
		Active:           p.Active,
		Cover:            p.Cover,
		CreatedAt:        formatTime(p.CreatedAt),
		UpdatedAt:        formatTime(p.UpdatedAt),
		Categories:       categories,
		Seasons:          seasons,
	}
}

func seasonNode(s models.Season, videos []string) SeasonNode {
	if videos == nil {
		videos = []string{}
	}
	var date *string
	if s.Date != nil {
		formatted := formatTime(*s.Date)
		date = &formatted
	}
	return SeasonNode{
		ID:          s.ID,
		PlaylistID:  s.PlaylistID,
		Title:       s.Title,
		Description: s.Description,
		Date:        date,
		Active:      s.Active,
		Videos:      videos,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
