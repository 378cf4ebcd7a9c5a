package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/weather-log/internal/api/http"
	"github.com/i474232898/weather-log/internal/scheduler"
	"github.com/i474232898/weather-log/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run updates on SCHEDULE and serve the status API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(newMetrics())
		if err != nil {
			return err
		}
		now, _ := cmd.Flags().GetBool("now")

		runs := store.NewMemoryStore(a.cfg.RunHistory)

		// Scheduler that periodically runs the update and records results.
		sched := scheduler.New(a.cfg.Schedule, 2*time.Minute, a.runner, runs, a.logger)
		if err := sched.Start(now); err != nil {
			return err
		}
		defer sched.Stop()
		a.logger.Info("next update", "at", sched.NextRun().UTC())

		app := fiber.New(fiber.Config{
			AppName:               "weather-log",
			DisableStartupMessage: true,
			ReadTimeout:           10 * time.Second,
			WriteTimeout:          10 * time.Second,
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				// Centralized error response
				code := fiber.StatusInternalServerError
				if e, ok := err.(*fiber.Error); ok {
					code = e.Code
				}
				return c.Status(code).JSON(fiber.Map{
					"error":   true,
					"message": err.Error(),
				})
			},
		})

		prom := fiberprometheus.New("weather-log")
		prom.RegisterAt(app, "/metrics")

		// Global middleware
		app.Use(prom.Middleware)
		app.Use(logger.New())
		app.Use(recover.New())

		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"status":  "ok",
				"service": "weather-log",
			})
		})

		httpapi.RegisterRoutes(app, runs, a.runner)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			a.logger.Info("status API listening", "addr", a.cfg.HTTPAddr)
			errCh <- app.Listen(a.cfg.HTTPAddr)
		}()

		select {
		case <-ctx.Done():
		case err := <-errCh:
			return err
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			a.logger.Error("error during shutdown", "error", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().Bool("now", false, "run an update immediately instead of waiting for the first tick")
}
