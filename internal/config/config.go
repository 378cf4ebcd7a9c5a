package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/i474232898/weather-log/internal/logbook"
	"github.com/i474232898/weather-log/internal/weather"
)

var validate = validator.New()

type AppConfig struct {
	// Target document and banner output, relative to the working directory.
	DocumentPath string `validate:"required"`
	BannerPath   string `validate:"required"`

	Location weather.Location

	// KeepDays is the rolling window of the log in calendar days.
	KeepDays int `validate:"min=1,max=366"`

	// Outbound provider calls.
	HTTPTimeout       time.Duration `validate:"gt=0"`
	FetchRetries      int           `validate:"min=1,max=10"`
	FetchBackoff      time.Duration `validate:"gte=0"`
	WttrBaseURL       string        `validate:"required,url"`
	OpenMeteoBaseURL  string        `validate:"required,url"`
	WeatherAPIKey     string
	OpenWeatherAPIKey string
	GeocoderAPIKey    string
	CacheTTL          time.Duration `validate:"gte=0"` // 0 disables the provider cache

	// Daemon mode.
	Schedule   string `validate:"required"`
	HTTPAddr   string `validate:"required"`
	RunHistory int    `validate:"min=1,max=1000"`

	LogLevel        string `validate:"oneof=debug info warn error"`
	LogFormat       string `validate:"oneof=json text"`
	MetricsTextfile string
}

// Load reads configuration from environment with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	cfg := &AppConfig{}

	cfg.DocumentPath = getenvDefault("WEATHER_DOCUMENT", "README.md")
	cfg.BannerPath = getenvDefault("WEATHER_BANNER_PATH", logbook.DefaultBannerPath)

	loc, err := loadLocation()
	if err != nil {
		return nil, err
	}
	cfg.Location = loc

	if cfg.KeepDays, err = getenvInt("KEEP_DAYS", logbook.KeepDays); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.FetchRetries, err = getenvInt("FETCH_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.FetchBackoff, err = getenvDuration("FETCH_BACKOFF", "2s"); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", "0s"); err != nil {
		return nil, err
	}
	if cfg.RunHistory, err = getenvInt("RUN_HISTORY", 48); err != nil {
		return nil, err
	}

	cfg.WttrBaseURL = getenvDefault("WTTR_BASE_URL", "https://wttr.in")
	cfg.OpenMeteoBaseURL = getenvDefault("OPENMETEO_BASE_URL", "https://api.open-meteo.com/v1/forecast")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	cfg.Schedule = getenvDefault("SCHEDULE", "0 * * * *")
	cfg.HTTPAddr = getenvDefault("HTTP_ADDR", ":8080")
	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", "info"))
	cfg.LogFormat = strings.ToLower(getenvDefault("LOG_FORMAT", "text"))
	cfg.MetricsTextfile = os.Getenv("METRICS_TEXTFILE")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("invalid SCHEDULE %q: %w", cfg.Schedule, err)
	}

	return cfg, nil
}

func loadLocation() (weather.Location, error) {
	loc := weather.Location{
		City:    getenvDefault("WEATHER_LOCATION_CITY", logbook.DefaultCity),
		Country: getenvDefault("WEATHER_LOCATION_COUNTRY", "IE"),
	}
	if strings.Contains(loc.City, ",") {
		return loc, fmt.Errorf("WEATHER_LOCATION_CITY must name a single city")
	}

	lat, err := getenvFloatPtr("WEATHER_LAT", 53.3498)
	if err != nil {
		return loc, err
	}
	lon, err := getenvFloatPtr("WEATHER_LON", -6.2603)
	if err != nil {
		return loc, err
	}
	if (lat == nil) != (lon == nil) {
		return loc, fmt.Errorf("WEATHER_LAT and WEATHER_LON must be set together")
	}
	loc.Lat, loc.Lon = lat, lon

	return loc, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// getenvFloatPtr returns def when key is unset and nil when it is set but
// empty, which lets the geocoder resolve coordinates instead.
func getenvFloatPtr(key string, def float64) (*float64, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return &def, nil
	}
	if strings.TrimSpace(v) == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	return &f, nil
}
