package dashboard

import (
	"strings"

	"github.com/lacajita/backend/internal/models"
)

var countryNames = map[string]string{
	"united states": "US", "usa": "US", "us": "US", "estados unidos": "US",
	"mexico": "MX", "méxico": "MX", "mx": "MX",
	"spain": "ES", "españa": "ES", "es": "ES",
	"france": "FR", "fr": "FR",
	"argentina": "AR", "ar": "AR",
	"colombia": "CO", "co": "CO",
	"chile": "CL", "cl": "CL",
	"peru": "PE", "perú": "PE",
	"dominican republic": "DO", "república dominicana": "DO", "do": "DO",
	"brazil": "BR", "brasil": "BR", "br": "BR",
	"uk": "GB", "united kingdom": "GB", "reino unido": "GB",
	"germany": "DE", "deutschland": "DE", "de": "DE",
	"italy": "IT", "italia": "IT", "it": "IT",
	"canada": "CA", "ca": "CA",
}

var countryTLDs = map[string]string{
	"us": "US", "mx": "MX", "es": "ES", "fr": "FR", "co": "CO", "ar": "AR",
	"cl": "CL", "pe": "PE", "do": "DO", "br": "BR", "uk": "GB", "gb": "GB",
	"de": "DE", "it": "IT", "ca": "CA",
}

var (
	codeKeys = []string{"country_code", "countryCode", "country_iso2"}
	nameKeys = []string{"country", "location", "locale_country"}
)

// Country returns the ISO 3166 alpha-2 code for u. User metadata wins over
// app metadata, and the email TLD is the last resort.
func Country(u models.Auth0User) (string, bool) {
	for _, meta := range []map[string]any{u.UserMetadata, u.AppMetadata} {
		if iso, ok := countryFromMetadata(meta); ok {
			return iso, true
		}
	}

	_, domain, ok := strings.Cut(strings.ToLower(u.Email), "@")
	if !ok {
		return "", false
	}
	dot := strings.LastIndex(domain, ".")
	if dot < 0 {
		return "", false
	}
	iso, ok := countryTLDs[domain[dot+1:]]
	return iso, ok
}

func countryFromMetadata(meta map[string]any) (string, bool) {
	if meta == nil {
		return "", false
	}
	if code := firstString(meta, codeKeys); len(code) == 2 {
		return strings.ToUpper(code), true
	}
	if name := firstString(meta, nameKeys); name != "" {
		iso, ok := countryNames[strings.ToLower(name)]
		return iso, ok
	}
	return "", false
}

func firstString(meta map[string]any, keys []string) string {
	for _, key := range keys {
		if s, ok := meta[key].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}
