package weather

import (
	"time"
)

// Theme is the visual category derived from a weather description.
type Theme string

const (
	ThemeClear   Theme = "clear"
	ThemeCloud   Theme = "cloud"
	ThemeRain    Theme = "rain"
	ThemeWind    Theme = "wind"
	ThemeFog     Theme = "fog"
	ThemeSnow    Theme = "snow"
	ThemeThunder Theme = "thunder"
)

// DefaultTheme is used when no provider could be reached.
const DefaultTheme = ThemeCloud

// PlaceholderText replaces the reading when every provider failed.
const PlaceholderText = "⚠️ Weather data unavailable"

// AllThemes returns every theme in classifier priority order.
func AllThemes() []Theme {
	return []Theme{ThemeThunder, ThemeSnow, ThemeRain, ThemeFog, ThemeWind, ThemeCloud, ThemeClear}
}

// Valid reports whether t is one of the known themes.
func (t Theme) Valid() bool {
	for _, known := range AllThemes() {
		if t == known {
			return true
		}
	}
	return false
}

// Location represents the single place we report on.
// City must be provided; coordinates are optional.
type Location struct {
	City    string   `json:"city"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// Key returns a canonical string key for this location.
func (l Location) Key() string {
	return l.City + ":" + l.Country
}

// HasCoordinates reports whether both latitude and longitude are set.
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lon != nil
}

// Reading is one observation produced per run.
type Reading struct {
	Timestamp time.Time `json:"timestamp"` // always UTC, minute precision
	Text      string    `json:"text"`
	Provider  string    `json:"provider,omitempty"`
}

// NewReading truncates ts to the minute in UTC.
func NewReading(ts time.Time, text, provider string) Reading {
	return Reading{
		Timestamp: ts.UTC().Truncate(time.Minute),
		Text:      text,
		Provider:  provider,
	}
}

// Placeholder reports whether the reading stands in for a failed fetch.
func (r Reading) Placeholder() bool {
	return r.Provider == "" && r.Text == PlaceholderText
}
