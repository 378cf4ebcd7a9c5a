package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-log/internal/banner"
	"github.com/i474232898/weather-log/internal/document"
	"github.com/i474232898/weather-log/internal/logbook"
	"github.com/i474232898/weather-log/internal/runner"
	"github.com/i474232898/weather-log/internal/store"
	"github.com/i474232898/weather-log/internal/weather"
)

var validate = validator.New()

// RunStore is the read side of the run history.
type RunStore interface {
	Latest() (runner.Result, error)
	Recent(limit int) []runner.Result
	Len() int
}

// LogReader returns the entries currently in the document.
type LogReader interface {
	Log() ([]logbook.DatedEntry, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, runs RunStore, log LogReader) {
	v1 := app.Group("/api/v1")

	v1.Get("/runs/latest", func(c *fiber.Ctx) error {
		res, err := runs.Latest()
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no runs recorded yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read run history")
		}
		return c.JSON(res)
	})

	v1.Get("/runs", func(c *fiber.Ctx) error {
		var q runsQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		results := runs.Recent(q.Limit)
		return c.JSON(fiber.Map{
			"limit": q.Limit,
			"total": runs.Len(),
			"runs":  results,
		})
	})

	v1.Get("/log", func(c *fiber.Ctx) error {
		entries, err := log.Log()
		if err != nil {
			switch {
			case errors.Is(err, document.ErrDocumentNotFound), errors.Is(err, document.ErrMarkerNotFound):
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			case errors.Is(err, logbook.ErrMalformedEntry):
				return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read weather log")
		}
		if entries == nil {
			entries = []logbook.DatedEntry{}
		}
		return c.JSON(fiber.Map{
			"count":   len(entries),
			"entries": entries,
		})
	})

	v1.Get("/banner", func(c *fiber.Ctx) error {
		q := bannerQuery{
			Theme:    c.Query("theme", string(weather.ThemeClear)),
			Title:    c.Query("title", "Dublin weather"),
			Subtitle: c.Query("subtitle"),
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		c.Set(fiber.HeaderContentType, "image/svg+xml")
		return c.Send(banner.Render(weather.Theme(q.Theme), q.Title, q.Subtitle))
	})
}

// runsQuery holds query parameters for the run history endpoint.
type runsQuery struct {
	Limit int `validate:"min=1,max=100"`
}

func (q *runsQuery) bind(c *fiber.Ctx) error {
	if c.Query("limit") == "" {
		q.Limit = 10
		return nil
	}
	n := c.QueryInt("limit", -1)
	if n == -1 {
		return errors.New("limit must be an integer")
	}
	q.Limit = n
	return nil
}

// bannerQuery holds query parameters for the banner preview endpoint.
type bannerQuery struct {
	Theme    string `validate:"oneof=clear cloud rain wind fog snow thunder"`
	Title    string `validate:"max=80"`
	Subtitle string `validate:"max=160"`
}
