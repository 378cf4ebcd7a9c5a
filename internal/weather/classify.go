package weather

import "github.com/i474232898/weather-log/internal/common"

// Keyword families in priority order. Thunder comes first so that
// "thundershowers" is not mistaken for rain.
var (
	thunderWords = []string{"thunder", "storm", "lightning"}
	snowWords    = []string{"snow", "sleet", "blizzard", "flurr", "hail", "ice pellets"}
	rainWords    = []string{"rain", "drizzle", "shower"}
	fogWords     = []string{"fog", "mist", "haze"}
	cloudWords   = []string{"cloud", "overcast"}
)

// Classify maps a free-text description onto a Theme.
// It is total: unmatched input (including "") is ThemeClear.
func Classify(text string) Theme {
	switch {
	case common.HasAny(text, thunderWords...):
		return ThemeThunder
	case common.HasAny(text, snowWords...):
		return ThemeSnow
	case common.HasAny(text, rainWords...):
		return ThemeRain
	case common.HasAny(text, fogWords...):
		return ThemeFog
	case common.HasAny(text, "wind"):
		return ThemeWind
	case common.HasAny(text, cloudWords...):
		return ThemeCloud
	default:
		return ThemeClear
	}
}
