package ors

import (
	"log/slog"
	"time"

	"dispatch/internal/pkg/metrics"

	"github.com/sony/gobreaker"
)

const (
	DefaultBreakerFailures = 3
	DefaultBreakerTimeout  = 30 * time.Second
)

// BreakerConfig controls the circuit breaker in front of the provider. Only
// transient failures count against it; a rejected request or a miss does not.
type BreakerConfig struct {
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
	// Timeout is how long the breaker stays open before letting a trial request through.
	Timeout time.Duration
}

func newBreaker(cfg BreakerConfig, m *metrics.Metrics, logger *slog.Logger) *gobreaker.CircuitBreaker {
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = DefaultBreakerFailures
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultBreakerTimeout
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openrouteservice",
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !IsTransient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
			m.SetBreakerState(int(to))
		},
	})
}

