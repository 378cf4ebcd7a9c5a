// Package runner performs one update of the weather log: load the document,
// fetch a reading, render the banner, merge the log and persist what changed.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weather-log/internal/banner"
	"github.com/i474232898/weather-log/internal/config"
	"github.com/i474232898/weather-log/internal/document"
	"github.com/i474232898/weather-log/internal/logbook"
	"github.com/i474232898/weather-log/internal/observability"
	"github.com/i474232898/weather-log/internal/weather"
)

// Options locate the files a run touches and the shape of the log block.
type Options struct {
	DocumentPath string
	BannerPath   string
	Layout       logbook.Layout
	Title        string // banner title, e.g. "Dublin weather"
}

// OptionsFromConfig derives run options from the application config. The
// banner line references the banner relative to the document's directory.
func OptionsFromConfig(cfg *config.AppConfig) Options {
	city := cfg.Location.City
	return Options{
		DocumentPath: cfg.DocumentPath,
		BannerPath:   cfg.BannerPath,
		Layout: logbook.Layout{
			BannerLine: logbook.BannerLine(bannerRef(cfg.DocumentPath, cfg.BannerPath), city+" weather banner"),
			HeaderLine: logbook.Header(city, cfg.KeepDays),
			KeepDays:   cfg.KeepDays,
		},
		Title: city + " weather",
	}
}

func bannerRef(docPath, bannerPath string) string {
	if filepath.IsAbs(bannerPath) {
		return filepath.ToSlash(bannerPath)
	}
	rel, err := filepath.Rel(filepath.Dir(docPath), bannerPath)
	if err != nil {
		return filepath.ToSlash(bannerPath)
	}
	return filepath.ToSlash(rel)
}

// Result describes one run. It is what the status API serves.
type Result struct {
	RunID           string          `json:"run_id"`
	StartedAt       time.Time       `json:"started_at"`
	Reading         weather.Reading `json:"reading"`
	Theme           weather.Theme   `json:"theme"`
	Placeholder     bool            `json:"placeholder"`
	FetchError      string          `json:"fetch_error,omitempty"`
	DocumentChanged bool            `json:"document_changed"`
	BannerWritten   bool            `json:"banner_written"`
	Entries         int             `json:"entries"`
	Duration        time.Duration   `json:"duration_ns"`
	Error           string          `json:"error,omitempty"`
}

// Runner executes runs. It is not safe for concurrent Run calls on the same
// document; the scheduler runs it in singleton mode.
type Runner struct {
	opts    Options
	service *weather.Service
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Runner. clock, logger and metrics may be nil.
func New(opts Options, service *weather.Service, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Runner {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		opts:    opts,
		service: service,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// Run performs one update. A failed fetch is not an error: the placeholder
// is logged instead. Missing document or markers, a malformed log entry and
// write failures are returned, and nothing is written in the first two cases.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	start := r.clock.Now()
	res := Result{RunID: uuid.NewString(), StartedAt: start.UTC()}
	logger := r.logger.With("run_id", res.RunID)

	err := r.run(ctx, logger, &res)

	res.Duration = r.clock.Since(start)
	if err != nil {
		res.Error = err.Error()
		logger.Error("run failed", "error", err)
	}
	r.record(res, err)

	return res, err
}

func (r *Runner) run(ctx context.Context, logger *slog.Logger, res *Result) error {
	doc, err := document.Load(r.opts.DocumentPath)
	if err != nil {
		return err
	}
	existing, err := document.Extract(doc, document.StartMarker, document.EndMarker)
	if err != nil {
		return fmt.Errorf("%s: %w", r.opts.DocumentPath, err)
	}

	reading, theme, fetchErr := r.service.Current(ctx)
	res.Reading, res.Theme = reading, theme
	res.Placeholder = reading.Placeholder()
	if fetchErr != nil {
		res.FetchError = fetchErr.Error()
	}
	logger.Info("weather reading",
		"provider", reading.Provider,
		"text", reading.Text,
		"theme", theme,
	)

	svg := banner.Render(theme, r.opts.Title, subtitle(reading))

	entry := logbook.FormatEntry(reading)
	block, err := r.opts.Layout.Merge(existing, entry, reading.Timestamp)
	if err != nil {
		return fmt.Errorf("merge log in %s: %w", r.opts.DocumentPath, err)
	}
	entries, err := logbook.Entries(block)
	if err != nil {
		return err
	}
	res.Entries = len(entries)

	updated, changed, err := document.Update(doc, document.StartMarker, document.EndMarker, block)
	if err != nil {
		return err
	}

	written, err := banner.WriteIfChanged(r.opts.BannerPath, svg)
	if err != nil {
		return err
	}
	res.BannerWritten = written

	if changed {
		if err := document.Save(r.opts.DocumentPath, updated); err != nil {
			return err
		}
	}
	res.DocumentChanged = changed

	logger.Info("run complete",
		"document_changed", changed,
		"banner_written", written,
		"entries", res.Entries,
	)
	return nil
}

func (r *Runner) record(res Result, err error) {
	if r.metrics == nil {
		return
	}
	outcome := "unchanged"
	switch {
	case err != nil:
		outcome = "error"
	case res.DocumentChanged:
		outcome = "updated"
	}
	r.metrics.Runs.WithLabelValues(outcome).Inc()
	r.metrics.RunDuration.Observe(res.Duration.Seconds())
	if err != nil {
		return
	}
	r.metrics.LogEntries.Set(float64(res.Entries))
	if res.DocumentChanged {
		r.metrics.DocumentWrites.Inc()
	}
	if res.BannerWritten {
		r.metrics.BannerWrites.Inc()
	}
}

// Log returns the dated entries currently in the document.
func (r *Runner) Log() ([]logbook.DatedEntry, error) {
	doc, err := document.Load(r.opts.DocumentPath)
	if err != nil {
		return nil, err
	}
	block, err := document.Extract(doc, document.StartMarker, document.EndMarker)
	if err != nil {
		return nil, err
	}
	return logbook.Entries(block)
}

func subtitle(r weather.Reading) string {
	return r.Text + " · " + r.Timestamp.UTC().Format(logbook.EntryLayout) + " UTC"
}
