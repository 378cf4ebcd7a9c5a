package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-log/internal/weather"
)

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
// Like OpenWeatherProvider it only joins the chain when a key is configured.
type WeatherAPIProvider struct {
	name     string
	apiKey   string
	baseURL  string
	location weather.Location
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string, loc weather.Location, backoff BackoffConfig) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:     "weatherapi",
		apiKey:   apiKey,
		baseURL:  "https://api.weatherapi.com/v1/current.json",
		location: loc,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
		},
		circuit: newCircuitBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("weatherapi api key is not configured")
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		// WeatherAPI uses "q" for location; it accepts "city,country" or "lat,lon".
		if p.location.HasCoordinates() {
			values.Set("q", fmt.Sprintf("%f,%f", *p.location.Lat, *p.location.Lon))
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
		Current struct {
			TempC     *float64 `json:"temp_c"`
			WindKph   *float64 `json:"wind_kph"`
			Condition struct {
				Text string `json:"text"`
			} `json:"condition"`
		} `json:"current"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode weatherapi response: %w", err)
	}
	if payload.Current.TempC == nil {
		return "", fmt.Errorf("weatherapi response has no temperature")
	}

	return describe(p.location.City, payload.Current.Condition.Text, *payload.Current.TempC, payload.Current.WindKph), nil
}
