package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoProviders is returned by an empty chain.
	ErrNoProviders = errors.New("no weather providers configured")

	// ErrAllProvidersFailed wraps the joined provider errors when the whole chain fails.
	ErrAllProvidersFailed = errors.New("all weather providers failed")
)

// Provider abstracts a weather data source (e.g. wttr.in, Open-Meteo).
// Fetch returns a plain-text, single-line description of current conditions.
type Provider interface {
	Name() string
	Fetch(ctx context.Context) (string, error)
}

// Chain tries providers in order until one answers.
type Chain []Provider

// Fetch returns the first non-empty text and the name of the provider that
// produced it. When every provider fails the individual errors are joined.
func (c Chain) Fetch(ctx context.Context) (string, string, error) {
	if len(c) == 0 {
		return "", "", ErrNoProviders
	}

	var errs []error
	for _, p := range c {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		text, err := p.Fetch(ctx)
		if err == nil {
			text = strings.TrimSpace(text)
			if text != "" {
				return text, p.Name(), nil
			}
			err = errors.New("empty response")
		}
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}

	return "", "", fmt.Errorf("%w: %w", ErrAllProvidersFailed, errors.Join(errs...))
}

// Names lists the provider names in chain order.
func (c Chain) Names() []string {
	names := make([]string, 0, len(c))
	for _, p := range c {
		names = append(names, p.Name())
	}
	return names
}
