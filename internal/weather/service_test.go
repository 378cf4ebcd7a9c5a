package weather

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name  string
	text  string
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Fetch(context.Context) (string, error) {
	s.calls++
	return s.text, s.err
}

type recordingObserver struct {
	provider string
	fallback bool
	failures int
}

func (r *recordingObserver) ObserveFetch(provider string, fallback bool) {
	r.provider, r.fallback = provider, fallback
}

func (r *recordingObserver) ObserveFetchFailure() { r.failures++ }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChainFetch_PrimaryAnswers(t *testing.T) {
	primary := &stubProvider{name: "primary", text: "  Dublin: Clear, 8°C\n"}
	secondary := &stubProvider{name: "secondary", text: "unused"}

	text, name, err := Chain{primary, secondary}.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Dublin: Clear, 8°C", text)
	assert.Equal(t, "primary", name)
	assert.Zero(t, secondary.calls)
}

func TestChainFetch_FallsBackInOrder(t *testing.T) {
	primary := &stubProvider{name: "primary", err: errors.New("timeout")}
	empty := &stubProvider{name: "empty", text: "   "}
	last := &stubProvider{name: "last", text: "Dublin: Overcast, 9°C"}

	text, name, err := Chain{primary, empty, last}.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Dublin: Overcast, 9°C", text)
	assert.Equal(t, "last", name)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, empty.calls)
}

func TestChainFetch_AllFail(t *testing.T) {
	boom := errors.New("boom")
	chain := Chain{
		&stubProvider{name: "a", err: boom},
		&stubProvider{name: "b", err: errors.New("bad gateway")},
	}

	_, _, err := chain.Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "a: boom")
	assert.Contains(t, err.Error(), "b: bad gateway")
}

func TestChainFetch_Empty(t *testing.T) {
	_, _, err := Chain{}.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNoProviders)
}

func TestChainFetch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &stubProvider{name: "p", text: "x"}

	_, _, err := Chain{p}.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, p.calls)
}

func TestServiceCurrent_Success(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 2, 24, 9, 0, 42, 0, time.UTC))
	obs := &recordingObserver{}
	svc := NewService(Chain{&stubProvider{name: "wttr.in", text: "Dublin: Light rain, 7°C"}}, clock, discardLogger(), obs)

	r, theme, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 24, 9, 0, 0, 0, time.UTC), r.Timestamp)
	assert.Equal(t, "Dublin: Light rain, 7°C", r.Text)
	assert.Equal(t, "wttr.in", r.Provider)
	assert.Equal(t, ThemeRain, theme)
	assert.False(t, r.Placeholder())
	assert.Equal(t, "wttr.in", obs.provider)
	assert.False(t, obs.fallback)
}

func TestServiceCurrent_Fallback(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 2, 24, 9, 0, 0, 0, time.UTC))
	obs := &recordingObserver{}
	chain := Chain{
		&stubProvider{name: "wttr.in", err: errors.New("down")},
		&stubProvider{name: "open-meteo", text: "Dublin: Fog, 4.0°C"},
	}
	svc := NewService(chain, clock, discardLogger(), obs)

	r, theme, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "open-meteo", r.Provider)
	assert.Equal(t, ThemeFog, theme)
	assert.True(t, obs.fallback)
	assert.Equal(t, []string{"wttr.in", "open-meteo"}, svc.Providers())
}

func TestServiceCurrent_Placeholder(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 2, 24, 9, 0, 0, 0, time.UTC))
	obs := &recordingObserver{}
	chain := Chain{
		&stubProvider{name: "wttr.in", err: errors.New("down")},
		&stubProvider{name: "open-meteo", err: errors.New("down too")},
	}
	svc := NewService(chain, clock, discardLogger(), obs)

	r, theme, err := svc.Current(context.Background())
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
	assert.Equal(t, PlaceholderText, r.Text)
	assert.Equal(t, ThemeCloud, theme)
	assert.True(t, r.Placeholder())
	assert.Equal(t, 1, obs.failures)
}

func TestServiceCurrent_NilObserver(t *testing.T) {
	svc := NewService(Chain{&stubProvider{name: "p", text: "Sunny"}}, nil, nil, nil)

	_, theme, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ThemeClear, theme)
}

func TestNewReadingTruncatesToMinuteUTC(t *testing.T) {
	dublin := time.FixedZone("IST", 3600)
	r := NewReading(time.Date(2026, 6, 1, 10, 30, 59, 999, dublin), "x", "p")
	assert.Equal(t, time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC), r.Timestamp)
	assert.Equal(t, time.UTC, r.Timestamp.Location())
}

func TestLocation(t *testing.T) {
	lat, lon := 53.3, -6.2
	assert.Equal(t, "Dublin:IE", Location{City: "Dublin", Country: "IE"}.Key())
	assert.False(t, Location{City: "Dublin", Lat: &lat}.HasCoordinates())
	assert.True(t, Location{City: "Dublin", Lat: &lat, Lon: &lon}.HasCoordinates())
}
