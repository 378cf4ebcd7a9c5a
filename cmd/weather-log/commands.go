package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-log/internal/banner"
	"github.com/i474232898/weather-log/internal/config"
	"github.com/i474232898/weather-log/internal/document"
	"github.com/i474232898/weather-log/internal/observability"
	"github.com/i474232898/weather-log/internal/weather"
)

// --- run ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single update of the weather log",
	RunE:  runUpdate,
}

// newMetrics registers on the default registry; tests swap in a private one.
var newMetrics = observability.NewMetrics

func runUpdate(cmd *cobra.Command, _ []string) error {
	a, err := newApp(newMetrics())
	if err != nil {
		return err
	}

	res, err := a.runner.Run(cmd.Context())
	if path := a.cfg.MetricsTextfile; path != "" {
		if werr := a.metrics.WriteTextfile(path); werr != nil {
			a.logger.Warn("metrics textfile not written", "error", werr)
		}
	}
	if err != nil {
		return err
	}

	status := "unchanged"
	if res.DocumentChanged {
		status = "updated"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", a.cfg.DocumentPath, status, res.Reading.Text)
	return nil
}

// --- preview ---

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the target document to HTML on stdout",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		doc, err := document.Load(cfg.DocumentPath)
		if err != nil {
			return err
		}
		html, err := document.RenderHTML(doc)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(html)
		return err
	},
}

// --- banner ---

var bannerCmd = &cobra.Command{
	Use:   "banner",
	Short: "Render a single banner for a theme",
	Long: `Render a single banner for a theme.

Examples:
  weather-log banner --theme rain --out rain.svg
  weather-log banner --theme snow --subtitle "Dublin: Light snow, -1°C"`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		themeStr, _ := cmd.Flags().GetString("theme")
		title, _ := cmd.Flags().GetString("title")
		subtitle, _ := cmd.Flags().GetString("subtitle")
		out, _ := cmd.Flags().GetString("out")

		theme := weather.Theme(themeStr)
		if !theme.Valid() {
			return fmt.Errorf("unknown theme %q (want one of %v)", themeStr, weather.AllThemes())
		}

		svg := banner.Render(theme, title, subtitle)
		if out == "" || out == "-" {
			_, err := cmd.OutOrStdout().Write(svg)
			return err
		}
		if err := banner.Write(out, svg); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", out)
		return nil
	},
}

func init() {
	bannerCmd.Flags().String("theme", string(weather.ThemeClear), "banner theme")
	bannerCmd.Flags().String("title", "Dublin weather", "banner title")
	bannerCmd.Flags().String("subtitle", "", "banner subtitle")
	bannerCmd.Flags().String("out", "", "output file (default: stdout)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(bannerCmd)
}
