// Package dashboard computes the back-office user statistics from Auth0
// profiles.
package dashboard

import (
	"math"
	"strings"
	"time"

	"github.com/lacajita/backend/internal/models"
	"github.com/lacajita/backend/internal/repositories"
)

const activityWindow = 30 * 24 * time.Hour

// LoginStats summarises login counters.
type LoginStats struct {
	TotalLogins          int     `json:"total_logins"`
	AvgLoginsPerUser     float64 `json:"avg_logins_per_user"`
	Last7DLoginsEstimate int     `json:"last_7d_logins_estimate"`
	UsersWith0Logins     int     `json:"users_with_0_logins"`
}

// SystemSummary combines user and catalogue totals.
type SystemSummary struct {
	UsersTotal    int   `json:"users_total"`
	UsersVerified int   `json:"users_verified"`
	UsersBlocked  int   `json:"users_blocked"`
	Playlists     int64 `json:"playlists"`
	Videos        int64 `json:"videos"`
	Seasons       int64 `json:"seasons"`
}

// CustomersSummary counts users by state and recent activity.
type CustomersSummary struct {
	Total         int `json:"total"`
	ActiveLast30D int `json:"active_last_30d"`
	NewLast30D    int `json:"new_last_30d"`
	Blocked       int `json:"blocked"`
	Verified      int `json:"verified"`
	Unverified    int `json:"unverified"`
}

// Demographic groups users by email domain, identity provider, signup month
// and country. ByCountry is nil when no country could be determined.
type Demographic struct {
	ByDomain           map[string]int `json:"by_domain"`
	ByIdentityProvider map[string]int `json:"by_identity_provider"`
	SignupsByMonth     map[string]int `json:"signups_by_month"`
	ByCountry          map[string]int `json:"by_country"`
}

// Logins computes login statistics. Without login history the last seven days
// are estimated as a fifth of all logins.
func Logins(users []models.Auth0User) LoginStats {
	var stats LoginStats
	for _, u := range users {
		stats.TotalLogins += u.LoginsCount
		if u.LoginsCount == 0 {
			stats.UsersWith0Logins++
		}
	}
	stats.AvgLoginsPerUser = round2(float64(stats.TotalLogins) / float64(max(1, len(users))))
	stats.Last7DLoginsEstimate = int(float64(stats.TotalLogins) * 0.2)
	return stats
}

// System merges user counters with catalogue totals.
func System(users []models.Auth0User, totals repositories.EntityTotals) SystemSummary {
	summary := SystemSummary{
		UsersTotal: len(users),
		Playlists:  totals.Playlists,
		Videos:     totals.Videos,
		Seasons:    totals.Seasons,
	}
	for _, u := range users {
		if u.EmailVerified {
			summary.UsersVerified++
		}
		if u.Blocked {
			summary.UsersBlocked++
		}
	}
	return summary
}

// Customers counts users, treating the 30 days before now as recent.
func Customers(users []models.Auth0User, now time.Time) CustomersSummary {
	cutoff := now.Add(-activityWindow)
	summary := CustomersSummary{Total: len(users)}
	for _, u := range users {
		if u.Blocked {
			summary.Blocked++
		}
		if u.EmailVerified {
			summary.Verified++
		} else {
			summary.Unverified++
		}
		if t, ok := parseTime(u.LastLogin); ok && !t.Before(cutoff) {
			summary.ActiveLast30D++
		}
		if t, ok := parseTime(u.CreatedAt); ok && !t.Before(cutoff) {
			summary.NewLast30D++
		}
	}
	return summary
}

// Demographics groups users. Signup months use the YYYY-MM form.
func Demographics(users []models.Auth0User) Demographic {
	d := Demographic{
		ByDomain:           map[string]int{},
		ByIdentityProvider: map[string]int{},
		SignupsByMonth:     map[string]int{},
	}
	countries := map[string]int{}

	for _, u := range users {
		email := strings.ToLower(u.Email)
		if _, domain, ok := strings.Cut(email, "@"); ok && domain != "" {
			d.ByDomain[domain]++
		}
		for _, ident := range u.Identities {
			provider := ident.Provider
			if provider == "" {
				provider = "unknown"
			}
			d.ByIdentityProvider[provider]++
		}
		if t, ok := parseTime(u.CreatedAt); ok {
			d.SignupsByMonth[t.UTC().Format("2006-01")]++
		}
		if iso, ok := Country(u); ok {
			countries[iso]++
		}
	}

	if len(countries) > 0 {
		d.ByCountry = countries
	}
	return d
}

func parseTime(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
