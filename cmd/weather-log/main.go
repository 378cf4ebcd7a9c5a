package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/i474232898/weather-log/internal/config"
	"github.com/i474232898/weather-log/internal/observability"
	"github.com/i474232898/weather-log/internal/runner"
	"github.com/i474232898/weather-log/internal/weather"
	"github.com/i474232898/weather-log/internal/weather/providers"
)

var rootCmd = &cobra.Command{
	Use:   "weather-log",
	Short: "Keep a rolling Dublin weather log and banner in a README",
	Long: `Fetch the current weather, prepend it to the log between the
<!-- DUBLIN_WEATHER:START --> and <!-- DUBLIN_WEATHER:END --> markers,
drop entries older than KEEP_DAYS and regenerate the SVG banner.

Without a subcommand a single update is run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runUpdate,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// components bundles what every command needs after configuration is loaded.
type components struct {
	cfg     *config.AppConfig
	logger  *slog.Logger
	metrics *observability.Metrics
	runner  *runner.Runner
}

func newApp(metrics *observability.Metrics) (*components, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := observability.NewLogger(cfg)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	chain := providers.NewChain(httpClient, providers.ChainConfig{
		Location:         cfg.Location,
		WttrBaseURL:      cfg.WttrBaseURL,
		OpenMeteoBaseURL: cfg.OpenMeteoBaseURL,
		WeatherAPIKey:    cfg.WeatherAPIKey,
		OpenWeatherKey:   cfg.OpenWeatherAPIKey,
		GeocoderAPIKey:   cfg.GeocoderAPIKey,
		Backoff: providers.BackoffConfig{
			MaxRetries: cfg.FetchRetries,
			Interval:   cfg.FetchBackoff,
		},
		CacheTTL: cfg.CacheTTL,
	})

	var observer weather.Observer
	if metrics != nil {
		observer = metrics
	}
	clock := clockwork.NewRealClock()
	service := weather.NewService(chain, clock, logger, observer)
	logger.Debug("provider chain", "providers", service.Providers())

	return &components{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		runner:  runner.New(runner.OptionsFromConfig(cfg), service, clock, logger, metrics),
	}, nil
}
