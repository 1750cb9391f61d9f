package notify

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/polkiloo/adbroker/internal/metrics"
)

const (
	breakerFailures = 5
	breakerTimeout  = 30 * time.Second
)

// NewBreaker opens after consecutive delivery failures and lets a trial delivery through after a cool-down.
func NewBreaker(name string, logger *slog.Logger, m *metrics.Metrics) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("name", name), slog.String("from", from.String()), slog.String("to", to.String()))
			m.SetBreakerState(name, to.String())
		},
	})
}
