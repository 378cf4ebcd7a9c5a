package providers

import (
	"net/http"
	"time"

	"github.com/i474232898/weather-log/internal/weather"
)

// ChainConfig describes which providers make up the fallback chain.
type ChainConfig struct {
	Location         weather.Location
	WttrBaseURL      string
	OpenMeteoBaseURL string
	WeatherAPIKey    string
	OpenWeatherKey   string
	GeocoderAPIKey   string
	Backoff          BackoffConfig
	CacheTTL         time.Duration
}

// NewChain builds the ordered chain: wttr.in first, Open-Meteo second, then
// any keyed providers. Each provider is wrapped with the TTL cache when enabled.
func NewChain(client *http.Client, cfg ChainConfig) weather.Chain {
	provs := []weather.Provider{
		NewWttrProvider(client, cfg.WttrBaseURL, cfg.Location, cfg.Backoff),
		NewOpenMeteoProvider(client, cfg.OpenMeteoBaseURL, cfg.Location, cfg.Backoff, NewGoogleGeocoder(cfg.GeocoderAPIKey)),
	}
	if cfg.WeatherAPIKey != "" {
		provs = append(provs, NewWeatherAPIProvider(client, cfg.WeatherAPIKey, cfg.Location, cfg.Backoff))
	}
	if cfg.OpenWeatherKey != "" {
		provs = append(provs, NewOpenWeatherProvider(client, cfg.OpenWeatherKey, cfg.Location, cfg.Backoff))
	}

	chain := make(weather.Chain, 0, len(provs))
	for _, p := range provs {
		chain = append(chain, WithCache(p, cfg.CacheTTL))
	}
	return chain
}
