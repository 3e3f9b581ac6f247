package breaker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vnagri/claimfusion/internal/breaker"
)

var is429 = func(error) bool { return true }

func TestTripsAfterThreshold(t *testing.T) {
	b := breaker.New(3, time.Minute, 2)
	fail := errors.New("boom")

	for i := 0; i < 3; i++ {
		require.Equal(t, breaker.Closed, b.State())
		require.Error(t, b.Do(context.Background(), func(context.Context) error { return fail }, is429))
	}
	require.Equal(t, breaker.Open, b.State())
	require.ErrorIs(t, b.Do(context.Background(), func(context.Context) error { return nil }, is429), breaker.ErrOpen)
}

func TestNonRateLimitFailuresDoNotTripBreaker(t *testing.T) {
	b := breaker.New(3, time.Minute, 2)
	fail := errors.New("timeout")
	notRateLimited := func(error) bool { return false }

	for i := 0; i < 10; i++ {
		require.Error(t, b.Do(context.Background(), func(context.Context) error { return fail }, notRateLimited))
	}
	require.Equal(t, breaker.Closed, b.State(), "non-429 failures must never trip the circuit")
}

func TestHalfOpenClosesAfterConsecutiveSuccesses(t *testing.T) {
	now := time.Unix(0, 0)
	b := breaker.New(1, 10*time.Second, 2, breaker.WithClock(func() time.Time { return now }))

	require.Error(t, b.Do(context.Background(), func(context.Context) error { return errors.New("x") }, is429))
	require.Equal(t, breaker.Open, b.State())

	now = now.Add(11 * time.Second)
	require.Equal(t, breaker.HalfOpen, b.State())

	require.NoError(t, b.Do(context.Background(), func(context.Context) error { return nil }, is429))
	require.Equal(t, breaker.HalfOpen, b.State())

	require.NoError(t, b.Do(context.Background(), func(context.Context) error { return nil }, is429))
	require.Equal(t, breaker.Closed, b.State())
}

func TestHalfOpenFailureReopens(t *testing.T) {
	now := time.Unix(0, 0)
	b := breaker.New(1, 10*time.Second, 3, breaker.WithClock(func() time.Time { return now }))

	require.Error(t, b.Do(context.Background(), func(context.Context) error { return errors.New("x") }, is429))
	now = now.Add(11 * time.Second)
	require.Equal(t, breaker.HalfOpen, b.State())

	require.Error(t, b.Do(context.Background(), func(context.Context) error { return errors.New("still broken") }, is429))
	require.Equal(t, breaker.Open, b.State())
}

func TestHalfOpenProbeLimitRejectsExcessConcurrentCalls(t *testing.T) {
	now := time.Unix(0, 0)
	b := breaker.New(1, 10*time.Second, 1, breaker.WithClock(func() time.Time { return now }))

	require.Error(t, b.Do(context.Background(), func(context.Context) error { return errors.New("x") }, is429))
	now = now.Add(11 * time.Second)
	require.Equal(t, breaker.HalfOpen, b.State())

	require.NoError(t, b.Allow())
	require.ErrorIs(t, b.Allow(), breaker.ErrHalfOpenLimit)
}
