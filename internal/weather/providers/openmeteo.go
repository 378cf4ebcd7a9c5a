package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-log/internal/weather"
)

var errMissingTemperature = errors.New("open-meteo response has no temperature")

// OpenMeteoProvider implements weather.Provider for Open-Meteo current conditions.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	location weather.Location
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker

	geocode GeocodeFunc
	mu      sync.Mutex
	lat     *float64
	lon     *float64
}

// NewOpenMeteoProvider creates the provider. geocode may be nil; it is only
// consulted when loc has no coordinates.
func NewOpenMeteoProvider(client *http.Client, baseURL string, loc weather.Location, backoff BackoffConfig, geocode GeocodeFunc) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:     "open-meteo",
		baseURL:  baseURL,
		location: loc,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
		},
		circuit: newCircuitBreaker("open-meteo"),
		geocode: geocode,
		lat:     loc.Lat,
		lon:     loc.Lon,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context) (string, error) {
	lat, lon, err := p.coordinates()
	if err != nil {
		return "", err
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
		values.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
		values.Set("current", "temperature_2m,wind_speed_10m,weather_code")
		values.Set("timezone", "UTC")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	body, err := fetchBody(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return "", err
	}

	return p.describe(body)
}

func (p *OpenMeteoProvider) coordinates() (float64, float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lat != nil && p.lon != nil {
		return *p.lat, *p.lon, nil
	}
	if p.geocode == nil {
		return 0, 0, fmt.Errorf("open-meteo requires latitude and longitude")
	}

	lat, lon, err := p.geocode(p.location.City, p.location.Country)
	if err != nil {
		return 0, 0, fmt.Errorf("resolve coordinates for %s: %w", p.location.Key(), err)
	}
	p.lat, p.lon = &lat, &lon
	return lat, lon, nil
}

// openMeteoPayload uses pointers so absent fields can be told apart from zero.
type openMeteoPayload struct {
	Current struct {
		Temperature *float64 `json:"temperature_2m"`
		WindSpeed   *float64 `json:"wind_speed_10m"`
		WeatherCode *int     `json:"weather_code"`
	} `json:"current"`
}

func (p *OpenMeteoProvider) describe(body []byte) (string, error) {
	var payload openMeteoPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode open-meteo response: %w", err)
	}

	cur := payload.Current
	if cur.Temperature == nil {
		return "", errMissingTemperature
	}

	condition := ""
	if cur.WeatherCode != nil {
		condition = weatherCodeLabel(*cur.WeatherCode)
	}
	return describe(p.location.City, condition, *cur.Temperature, cur.WindSpeed), nil
}

// weatherCodeLabels maps WMO weather interpretation codes used by Open-Meteo.
var weatherCodeLabels = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snow fall",
	73: "Moderate snow fall",
	75: "Heavy snow fall",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

func weatherCodeLabel(code int) string {
	if label, ok := weatherCodeLabels[code]; ok {
		return label
	}
	return fmt.Sprintf("Weather code %d", code)
}
