package weather

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"
)

// Observer receives per-fetch outcomes. Metrics implement it; nil is allowed.
type Observer interface {
	ObserveFetch(provider string, fallback bool)
	ObserveFetchFailure()
}

// Service fetches the current reading for the configured location through an
// ordered provider chain.
type Service struct {
	chain    Chain
	clock    clockwork.Clock
	logger   *slog.Logger
	observer Observer
}

// NewService creates a new Service. A nil clock means real time.
func NewService(chain Chain, clock clockwork.Clock, logger *slog.Logger, observer Observer) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		chain:    chain,
		clock:    clock,
		logger:   logger,
		observer: observer,
	}
}

// Current fetches a reading and its theme. It never fails: when the whole
// chain fails the placeholder reading and DefaultTheme are returned together
// with the chain error so the caller can log it.
func (s *Service) Current(ctx context.Context) (Reading, Theme, error) {
	now := s.clock.Now()

	text, provider, err := s.chain.Fetch(ctx)
	if err != nil {
		s.logger.Warn("weather fetch failed; using placeholder",
			"providers", s.chain.Names(),
			"error", err,
		)
		if s.observer != nil {
			s.observer.ObserveFetchFailure()
		}
		return NewReading(now, PlaceholderText, ""), DefaultTheme, err
	}

	fallback := len(s.chain) > 0 && provider != s.chain[0].Name()
	if fallback {
		s.logger.Info("primary provider failed; used fallback", "provider", provider)
	}
	if s.observer != nil {
		s.observer.ObserveFetch(provider, fallback)
	}

	return NewReading(now, text, provider), Classify(text), nil
}

// Providers returns the provider names in the order they are tried.
func (s *Service) Providers() []string {
	return s.chain.Names()
}
