// pkg/network/circuit_breaker.go
package network

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-asteroids/pkg/config"
	"github.com/opd-ai/go-asteroids/pkg/logging"
)

// Operation is a single network write or dial.
type Operation func() error

// Breaker isolates a failing peer. The server gives each connection its own
// breaker around frame writes; the client wraps its dial in one so a dead
// server is retried with backoff and then left alone.
type Breaker struct {
	breaker    *gobreaker.CircuitBreaker
	logger     *logging.Logger
	maxRetries int
	baseDelay  time.Duration
}

// NewBreaker creates a breaker configured from the environment's CB_* settings.
func NewBreaker(name string, env *config.EnvironmentConfig, logger *logging.Logger) *Breaker {
	if logger == nil {
		logger = logging.Discard()
	}
	maxFails := env.CircuitBreakerMaxConsecutiveFails

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: env.CircuitBreakerMaxRequests,
		Interval:    env.CircuitBreakerInterval,
		Timeout:     env.CircuitBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFails
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info(context.Background(), "circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &Breaker{
		breaker:    gobreaker.NewCircuitBreaker(settings),
		logger:     logger,
		maxRetries: 3,
		baseDelay:  time.Second,
	}
}

// Execute runs op through the breaker. An open breaker fails immediately.
func (b *Breaker) Execute(ctx context.Context, op Operation) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, op()
	})
	if err != nil {
		b.logger.LogWithContext(ctx, slog.LevelDebug, "circuit breaker execution failed",
			"error", err,
			"state", b.breaker.State().String(),
		)
		return fmt.Errorf("circuit breaker: %w", err)
	}
	return nil
}

// ExecuteWithRetry runs op up to maxRetries times with linear backoff. It
// stops early once the breaker opens or ctx is done.
func (b *Breaker) ExecuteWithRetry(ctx context.Context, op Operation) error {
	var err error
	for attempt := 1; attempt <= b.maxRetries; attempt++ {
		if err = b.Execute(ctx, op); err == nil {
			return nil
		}

		if b.breaker.State() == gobreaker.StateOpen {
			b.logger.Warn(ctx, "circuit breaker is open, skipping retries",
				"attempt", attempt,
				"max_retries", b.maxRetries,
			)
			return err
		}
		if attempt == b.maxRetries {
			break
		}

		delay := time.Duration(attempt) * b.baseDelay
		b.logger.Warn(ctx, "operation failed, retrying",
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		}
	}

	b.logger.Error(ctx, "all retry attempts failed", err, "attempts", b.maxRetries)
	return fmt.Errorf("max retries (%d) exceeded: %w", b.maxRetries, err)
}

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State { return b.breaker.State() }

// Counts returns the breaker's request counters.
func (b *Breaker) Counts() gobreaker.Counts { return b.breaker.Counts() }
