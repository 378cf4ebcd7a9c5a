package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-log/internal/weather"
)

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
// It is an optional tail provider, enabled when an API key is configured.
type OpenWeatherProvider struct {
	name     string
	apiKey   string
	baseURL  string
	location weather.Location
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, loc weather.Location, backoff BackoffConfig) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:     "openweathermap",
		apiKey:   apiKey,
		baseURL:  "https://api.openweathermap.org/data/2.5/weather",
		location: loc,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
		},
		circuit: newCircuitBreaker("openweathermap"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")

		if p.location.HasCoordinates() {
			values.Set("lat", fmt.Sprintf("%f", *p.location.Lat))
			values.Set("lon", fmt.Sprintf("%f", *p.location.Lon))
		} else {
			q := p.location.City
			if p.location.Country != "" {
				q = fmt.Sprintf("%s,%s", p.location.City, p.location.Country)
			}
			values.Set("q", q)
		}

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	body, err := fetchBody(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return "", err
	}

	var payload struct {
		Main struct {
			Temp *float64 `json:"temp"`
		} `json:"main"`
		Wind struct {
			Speed *float64 `json:"speed"`
		} `json:"wind"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode openweathermap response: %w", err)
	}
	if payload.Main.Temp == nil {
		return "", fmt.Errorf("openweathermap response has no temperature")
	}

	condition := ""
	if len(payload.Weather) > 0 {
		condition = capitalize(payload.Weather[0].Description)
	}

	var windKph *float64
	if payload.Wind.Speed != nil {
		// m/s to km/h.
		kph := *payload.Wind.Speed * 3.6
		windKph = &kph
	}

	return describe(p.location.City, condition, *payload.Main.Temp, windKph), nil
}

// describe renders the shared "City: Condition, T°C, 💨 W km/h" shape.
func describe(city, condition string, tempC float64, windKph *float64) string {
	var b strings.Builder
	b.WriteString(city)
	b.WriteString(": ")
	if condition != "" {
		b.WriteString(condition)
		b.WriteString(", ")
	}
	fmt.Fprintf(&b, "%.1f°C", tempC)
	if windKph != nil {
		fmt.Fprintf(&b, ", 💨 %.1f km/h", *windKph)
	}
	return b.String()
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
