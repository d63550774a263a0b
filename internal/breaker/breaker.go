// Package breaker builds the circuit breakers that guard outbound calls to
// the SMTP relay and the GitHub API.
//
// A breaker opens after repeated failures so a dead upstream fails fast
// instead of holding request goroutines for the full dial timeout.
package breaker

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/hoangchien/portfolio/internal/metrics"
)

// Settings tunes a breaker. Zero fields take the defaults below.
type Settings struct {
	// MinRequests is how many calls must be seen in Interval before the
	// failure ratio is considered.
	MinRequests uint32
	// FailureRatio in [0,1] at which the breaker opens.
	FailureRatio float64
	// ConsecutiveFailures opens the breaker regardless of ratio.
	ConsecutiveFailures uint32
	Interval            time.Duration
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration
	// IsSuccessful classifies errors; nil counts every error as a failure.
	IsSuccessful func(err error) bool
}

func (s Settings) withDefaults() Settings {
	if s.MinRequests == 0 {
		s.MinRequests = 5
	}
	if s.FailureRatio == 0 {
		s.FailureRatio = 0.6
	}
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}
	if s.Interval == 0 {
		s.Interval = time.Minute
	}
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}
	return s
}

// New returns a breaker named name. State changes are logged and exported
// as metrics.
func New[T any](name string, s Settings, logger *slog.Logger) *gobreaker.CircuitBreaker[T] {
	s = s.withDefaults()
	metrics.RecordBreakerTransition(name, "closed", "closed")

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:         name,
		MaxRequests:  1,
		Interval:     s.Interval,
		Timeout:      s.Timeout,
		IsSuccessful: s.IsSuccessful,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= s.ConsecutiveFailures {
				return true
			}
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			metrics.RecordBreakerTransition(name, from.String(), to.String())
		},
	})
}
