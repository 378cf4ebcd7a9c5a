package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-log/internal/weather"
)

var fastBackoff = BackoffConfig{MaxRetries: 3, Interval: time.Millisecond}

func dublin() weather.Location {
	lat, lon := 53.3498, -6.2603
	return weather.Location{City: "Dublin", Country: "IE", Lat: &lat, Lon: &lon}
}

func TestWttrProvider_Fetch(t *testing.T) {
	var gotPath, gotFormat, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFormat = r.URL.Query().Get("format")
		gotAgent = r.UserAgent()
		_, _ = w.Write([]byte("Dublin:   Light rain,  +7°C\n"))
	}))
	defer srv.Close()

	p := NewWttrProvider(srv.Client(), srv.URL+"/", dublin(), fastBackoff)
	text, err := p.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Dublin: Light rain, +7°C", text)
	assert.Equal(t, "/Dublin", gotPath)
	assert.Equal(t, wttrFormat, gotFormat)
	assert.Contains(t, gotAgent, "curl")
	assert.Equal(t, "wttr.in", p.Name())
}

func TestParseWttrText(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "plain", body: "Dublin: Clear, +8°C", want: "Dublin: Clear, +8°C"},
		{name: "first line only", body: "\nDublin: Fog, +3°C\nextra", want: "Dublin: Fog, +3°C"},
		{name: "blank", body: " \n ", wantErr: true},
		{name: "html", body: "<html><body>hi</body></html>", wantErr: true},
		{name: "unknown location", body: "Unknown location; please try ~53.3,-6.2", wantErr: true},
		{name: "quota", body: "Sorry, we are running out of queries to the weather service", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseWttrText(tt.body)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetchBody_RetriesWithLinearBackoff(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("Dublin: Clear, +8°C"))
	}))
	defer srv.Close()

	backoff := BackoffConfig{MaxRetries: 3, Interval: 20 * time.Millisecond}
	p := NewWttrProvider(srv.Client(), srv.URL, dublin(), backoff)

	start := time.Now()
	text, err := p.Fetch(context.Background())
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "Dublin: Clear, +8°C", text)
	assert.Equal(t, int32(3), calls.Load())
	// Waits are 1x and 2x the interval.
	assert.GreaterOrEqual(t, elapsed, 60*time.Millisecond)
}

func TestFetchBody_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewWttrProvider(srv.Client(), srv.URL, dublin(), fastBackoff)
	_, err := p.Fetch(context.Background())

	assert.ErrorIs(t, err, errRateLimited)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchBody_ClientErrorIsUnexpected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewWttrProvider(srv.Client(), srv.URL, dublin(), BackoffConfig{MaxRetries: 1})
	_, err := p.Fetch(context.Background())
	assert.ErrorIs(t, err, errUnexpected)
}

func TestFetchBody_InvalidConfig(t *testing.T) {
	p := NewWttrProvider(http.DefaultClient, "http://127.0.0.1", dublin(), BackoffConfig{MaxRetries: 0})
	_, err := p.Fetch(context.Background())
	assert.ErrorIs(t, err, errInvalidConfig)

	p = NewWttrProvider(nil, "http://127.0.0.1", dublin(), fastBackoff)
	_, err = p.Fetch(context.Background())
	assert.ErrorIs(t, err, errNoHTTPClient)
}

func TestFetchBody_CircuitOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewWttrProvider(srv.Client(), srv.URL, dublin(), BackoffConfig{MaxRetries: 5, Interval: 0})
	_, err := p.Fetch(context.Background())
	assert.ErrorIs(t, err, errServerError)
	assert.Equal(t, int32(5), calls.Load())

	// Five consecutive failures trip the breaker; the next call never reaches the server.
	_, err = p.Fetch(context.Background())
	assert.ErrorIs(t, err, errCircuitOpen)
	assert.Equal(t, int32(5), calls.Load())
}

func TestOpenMeteoProvider_Fetch(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr error
	}{
		{
			name: "full reading",
			body: `{"current":{"temperature_2m":7.4,"wind_speed_10m":18.2,"weather_code":61}}`,
			want: "Dublin: Slight rain, 7.4°C, 💨 18.2 km/h",
		},
		{
			name: "wind is optional",
			body: `{"current":{"temperature_2m":-1,"weather_code":71}}`,
			want: "Dublin: Slight snow fall, -1.0°C",
		},
		{
			name: "unknown code",
			body: `{"current":{"temperature_2m":10,"weather_code":42}}`,
			want: "Dublin: Weather code 42, 10.0°C",
		},
		{
			name: "no code",
			body: `{"current":{"temperature_2m":10}}`,
			want: "Dublin: 10.0°C",
		},
		{
			name:    "temperature is required",
			body:    `{"current":{"wind_speed_10m":5,"weather_code":0}}`,
			wantErr: errMissingTemperature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var query map[string][]string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				query = r.URL.Query()
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewOpenMeteoProvider(srv.Client(), srv.URL, dublin(), fastBackoff, nil)
			text, err := p.Fetch(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
			assert.Equal(t, []string{"53.3498"}, query["latitude"])
			assert.Equal(t, []string{"-6.2603"}, query["longitude"])
			assert.Equal(t, []string{"UTC"}, query["timezone"])
		})
	}
}

func TestOpenMeteoProvider_Geocodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":12,"weather_code":3}}`))
	}))
	defer srv.Close()

	var lookups int
	geocode := func(city, country string) (float64, float64, error) {
		lookups++
		assert.Equal(t, "Dublin", city)
		assert.Equal(t, "IE", country)
		return 53.35, -6.26, nil
	}

	loc := weather.Location{City: "Dublin", Country: "IE"}
	p := NewOpenMeteoProvider(srv.Client(), srv.URL, loc, fastBackoff, geocode)

	for i := 0; i < 2; i++ {
		text, err := p.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Dublin: Overcast, 12.0°C", text)
	}
	assert.Equal(t, 1, lookups, "coordinates are resolved once")
}

func TestOpenMeteoProvider_NoCoordinates(t *testing.T) {
	p := NewOpenMeteoProvider(http.DefaultClient, "http://127.0.0.1", weather.Location{City: "Dublin"}, fastBackoff, nil)
	_, err := p.Fetch(context.Background())
	assert.Error(t, err)

	boom := errors.New("quota")
	p = NewOpenMeteoProvider(http.DefaultClient, "http://127.0.0.1", weather.Location{City: "Dublin"}, fastBackoff,
		func(string, string) (float64, float64, error) { return 0, 0, boom })
	_, err = p.Fetch(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestWeatherCodeLabel(t *testing.T) {
	assert.Equal(t, "Clear sky", weatherCodeLabel(0))
	assert.Equal(t, "Thunderstorm with heavy hail", weatherCodeLabel(99))
	assert.Equal(t, "Weather code 7", weatherCodeLabel(7))
	// Every label must classify to something other than the wind theme.
	for code, label := range weatherCodeLabels {
		assert.NotEqual(t, weather.ThemeWind, weather.Classify(label), "code %d", code)
	}
}

func TestWeatherAPIProvider_Fetch(t *testing.T) {
	var gotKey, gotQ string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		gotQ = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(`{"current":{"temp_c":9.0,"wind_kph":20.5,"condition":{"text":"Patchy rain nearby"}}}`))
	}))
	defer srv.Close()

	p := NewWeatherAPIProvider(srv.Client(), "secret", weather.Location{City: "Dublin", Country: "IE"}, fastBackoff)
	p.baseURL = srv.URL

	text, err := p.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Dublin: Patchy rain nearby, 9.0°C, 💨 20.5 km/h", text)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "Dublin,IE", gotQ)
}

func TestWeatherAPIProvider_RequiresKey(t *testing.T) {
	p := NewWeatherAPIProvider(http.DefaultClient, "", dublin(), fastBackoff)
	_, err := p.Fetch(context.Background())
	assert.Error(t, err)
}

func TestOpenWeatherProvider_Fetch(t *testing.T) {
	var gotLat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLat = r.URL.Query().Get("lat")
		_, _ = w.Write([]byte(`{"main":{"temp":6.5},"wind":{"speed":5},"weather":[{"description":"light intensity drizzle"}]}`))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "secret", dublin(), fastBackoff)
	p.baseURL = srv.URL

	text, err := p.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Dublin: Light intensity drizzle, 6.5°C, 💨 18.0 km/h", text)
	assert.Equal(t, "53.349800", gotLat)
}

func TestOpenWeatherProvider_MissingTemperature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"weather":[{"description":"clear sky"}]}`))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "secret", dublin(), fastBackoff)
	p.baseURL = srv.URL

	_, err := p.Fetch(context.Background())
	assert.Error(t, err)
}

type countingProvider struct {
	calls int
	err   error
}

func (c *countingProvider) Name() string { return "counting" }

func (c *countingProvider) Fetch(context.Context) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return "Dublin: Clear, 8°C", nil
}

func TestWithCache(t *testing.T) {
	inner := &countingProvider{}
	assert.Same(t, weather.Provider(inner), WithCache(inner, 0))

	cached := WithCache(inner, time.Minute)
	assert.Equal(t, "counting", cached.Name())

	for i := 0; i < 3; i++ {
		text, err := cached.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Dublin: Clear, 8°C", text)
	}
	assert.Equal(t, 1, inner.calls)
}

func TestWithCache_DoesNotCacheFailures(t *testing.T) {
	inner := &countingProvider{err: errors.New("down")}
	cached := WithCache(inner, time.Minute)

	_, err := cached.Fetch(context.Background())
	require.Error(t, err)
	_, err = cached.Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestNewChain(t *testing.T) {
	cfg := ChainConfig{
		Location:         dublin(),
		WttrBaseURL:      "https://wttr.in",
		OpenMeteoBaseURL: "https://api.open-meteo.com/v1/forecast",
		Backoff:          BackoffConfig{MaxRetries: 3, Interval: 2 * time.Second},
	}
	assert.Equal(t, []string{"wttr.in", "open-meteo"}, NewChain(http.DefaultClient, cfg).Names())

	cfg.WeatherAPIKey = "a"
	cfg.OpenWeatherKey = "b"
	cfg.CacheTTL = time.Minute
	chain := NewChain(http.DefaultClient, cfg)
	assert.Equal(t, []string{"wttr.in", "open-meteo", "weatherapi", "openweathermap"}, chain.Names())
	assert.IsType(t, &CachedProvider{}, chain[0])
}

func TestNewGoogleGeocoder_EmptyKey(t *testing.T) {
	assert.Nil(t, NewGoogleGeocoder(""))
}

func TestDescribe(t *testing.T) {
	wind := 12.34
	assert.Equal(t, "Dublin: Clear, 8.0°C, 💨 12.3 km/h", describe("Dublin", "Clear", 8, &wind))
	assert.Equal(t, "Dublin: 8.0°C", describe("Dublin", "", 8, nil))
	assert.Equal(t, "Light rain", capitalize("  light rain "))
	assert.Equal(t, "", capitalize(""))
}
