package breaker

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoangchien/portfolio/internal/metrics"
)

var errUpstream = errors.New("upstream down")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNew_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := New[string]("test-consecutive", Settings{ConsecutiveFailures: 3, Timeout: time.Hour}, testLogger())

	for i := 0; i < 3; i++ {
		_, err := cb.Execute(func() (string, error) { return "", errUpstream })
		require.ErrorIs(t, err, errUpstream)
	}

	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.Execute(func() (string, error) { return "ok", nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("test-consecutive")))
}

func TestNew_StaysClosedOnSuccess(t *testing.T) {
	cb := New[int]("test-success", Settings{}, testLogger())

	for i := 0; i < 20; i++ {
		v, err := cb.Execute(func() (int, error) { return i, nil })
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestNew_IsSuccessfulExcludesClientErrors(t *testing.T) {
	errClient := errors.New("bad input")
	cb := New[int]("test-classify", Settings{
		ConsecutiveFailures: 2,
		IsSuccessful:        func(err error) bool { return err == nil || errors.Is(err, errClient) },
	}, testLogger())

	for i := 0; i < 5; i++ {
		_, _ = cb.Execute(func() (int, error) { return 0, errClient })
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}
