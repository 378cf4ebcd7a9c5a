package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-log/internal/common"
	"github.com/i474232898/weather-log/internal/weather"
)

// wttrFormat asks wttr.in for "<location>: <condition>, <temperature>".
const wttrFormat = "%l: %C, %t"

// WttrProvider implements weather.Provider for the wttr.in compact text endpoint.
type WttrProvider struct {
	name     string
	baseURL  string
	location weather.Location
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

func NewWttrProvider(client *http.Client, baseURL string, loc weather.Location, backoff BackoffConfig) *WttrProvider {
	return &WttrProvider{
		name:     "wttr.in",
		baseURL:  strings.TrimRight(baseURL, "/"),
		location: loc,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
		},
		circuit: newCircuitBreaker("wttr.in"),
	}
}

func (p *WttrProvider) Name() string {
	return p.name
}

func (p *WttrProvider) Fetch(ctx context.Context) (string, error) {
	if p.location.City == "" {
		return "", fmt.Errorf("wttr.in requires a city")
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("format", wttrFormat)
		values.Set("m", "")

		u := fmt.Sprintf("%s/%s?%s", p.baseURL, url.PathEscape(p.location.City), values.Encode())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		// wttr.in serves HTML to browsers; a curl-like agent gets plain text.
		req.Header.Set("User-Agent", "curl/8.5.0")
		req.Header.Set("Accept", "text/plain")
		return req, nil
	}

	body, err := fetchBody(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return "", err
	}

	return parseWttrText(string(body))
}

// parseWttrText validates the compact response and collapses it to one line.
func parseWttrText(body string) (string, error) {
	text := common.FirstLine(body)
	if text == "" {
		return "", errEmptyBody
	}
	if strings.HasPrefix(text, "<") {
		return "", fmt.Errorf("wttr.in returned markup instead of text")
	}
	if common.HasAny(text, "unknown location", "sorry, we are running out of queries") {
		return "", fmt.Errorf("wttr.in: %s", text)
	}
	return strings.Join(strings.Fields(text), " "), nil
}
