// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/outfitd/outfitd/internal/metrics"
)

// Options configures a single Execute call. Zero values fall back to the
// documented defaults.
type Options struct {
	// MaxRetries is the number of retries after the first attempt.
	// Default: 3. Negative disables retries.
	MaxRetries int

	// BaseDelay is the initial backoff delay, doubled each attempt. Default: 250ms.
	BaseDelay time.Duration

	// MaxDelay caps the backoff delay. Default: 10s.
	MaxDelay time.Duration

	// PerCallTimeout bounds each individual attempt. Default: 5s.
	PerCallTimeout time.Duration

	// CircuitFailureThreshold is the number of consecutive failed calls
	// that opens the circuit. Default: 5.
	CircuitFailureThreshold uint32

	// CircuitCooldown is how long the circuit stays open before allowing
	// one half-open trial call. Default: 30s.
	CircuitCooldown time.Duration

	// CircuitWindow is the rolling period after which the closed-state
	// failure counts reset. Default: 60s.
	CircuitWindow time.Duration

	// RateLimit throttles outbound attempts per second for this service.
	// Zero means unlimited.
	RateLimit rate.Limit
}

// withDefaults fills in documented defaults for zero-valued options.
func (o Options) withDefaults() Options {
	if o.MaxRetries == 0 {
		o.MaxRetries = 3
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.BaseDelay == 0 {
		o.BaseDelay = 250 * time.Millisecond
	}
	if o.MaxDelay == 0 {
		o.MaxDelay = 10 * time.Second
	}
	if o.PerCallTimeout == 0 {
		o.PerCallTimeout = 5 * time.Second
	}
	if o.CircuitFailureThreshold == 0 {
		o.CircuitFailureThreshold = 5
	}
	if o.CircuitCooldown == 0 {
		o.CircuitCooldown = 30 * time.Second
	}
	if o.CircuitWindow == 0 {
		o.CircuitWindow = 60 * time.Second
	}
	return o
}

// Operation is the primary producer for an external call.
type Operation[T any] func(ctx context.Context) (T, error)

// Fallback is one tier of a fallback chain: a degraded producer and the
// level it reports when it satisfies the call.
type Fallback[T any] struct {
	Level   DegradationLevel
	Produce func(ctx context.Context) (T, error)
}

// Executor holds the shared per-service circuit breakers and rate limiters.
// It is safe for concurrent use; breaker state updates for a given service
// key are serialized by the breaker itself, and the breaker map uses a
// read-mostly lock so unrelated calls never block each other.
type Executor struct {
	logger zerolog.Logger

	mu       sync.RWMutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
	limiters map[string]*rate.Limiter
}

// NewExecutor creates an executor with no breakers yet; breakers are
// created lazily on first use of each service key.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewExecutor(logger zerolog.Logger) *Executor {
	return &Executor{
		logger:   logger.With().Str("component", "resilience").Logger(),
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Execute runs op for serviceKey under the retry/breaker policy, escalating
// to the fallback chain on failure. It returns the produced value and the
// degradation level that satisfied the call. The only error conditions are
// a validation failure from op (surfaced immediately) and total exhaustion
// of a chain whose final tier failed.
func Execute[T any](ctx context.Context, ex *Executor, serviceKey string, op Operation[T], chain []Fallback[T], opts Options) (T, DegradationLevel, error) {
	var zero T
	opts = opts.withDefaults()

	cb := ex.breaker(serviceKey, opts)

	result, err := cb.Execute(func() (any, error) {
		return ex.callWithRetry(ctx, serviceKey, wrapOp(op), opts)
	})
	if err == nil {
		metrics.FallbackTierUsage.WithLabelValues(serviceKey, Live.String()).Inc()
		v, ok := result.(T)
		if !ok {
			return zero, Unavailable, fmt.Errorf("service %s: unexpected result type %T", serviceKey, result)
		}
		return v, Live, nil
	}

	// Validation failures bypass the fallback chain entirely.
	if IsValidation(err) {
		return zero, Unavailable, err
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		ex.logger.Warn().
			Str("service", serviceKey).
			Msg("circuit open, short-circuiting to fallback chain")
	} else {
		ex.logger.Warn().
			Str("service", serviceKey).
			Err(err).
			Msg("primary call failed, escalating to fallback chain")
	}

	return runChain(ctx, ex, serviceKey, chain, err)
}

// runChain tries each fallback tier in order until one succeeds.
func runChain[T any](ctx context.Context, ex *Executor, serviceKey string, chain []Fallback[T], primaryErr error) (T, DegradationLevel, error) {
	var zero T
	lastErr := primaryErr

	for _, tier := range chain {
		v, err := tier.Produce(ctx)
		if err != nil {
			ex.logger.Warn().
				Str("service", serviceKey).
				Str("tier", tier.Level.String()).
				Err(err).
				Msg("fallback tier failed")
			lastErr = err
			continue
		}
		metrics.FallbackTierUsage.WithLabelValues(serviceKey, tier.Level.String()).Inc()
		return v, tier.Level, nil
	}

	metrics.ExhaustedCalls.WithLabelValues(serviceKey).Inc()
	return zero, Unavailable, fmt.Errorf("service %s: %w: %w", serviceKey, ErrExhausted, lastErr)
}

// wrapOp erases the operation's type so it can run under the shared
// per-service breaker.
func wrapOp[T any](op Operation[T]) Operation[any] {
	return func(ctx context.Context) (any, error) {
		return op(ctx)
	}
}

// callWithRetry runs a single breaker-gated call: sequential attempts with
// exponential backoff, each bounded by the per-call timeout. Validation
// errors and caller cancellation stop the loop immediately.
func (ex *Executor) callWithRetry(ctx context.Context, serviceKey string, op Operation[any], opts Options) (any, error) {
	var lastErr error
	delay := opts.BaseDelay

	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if attempt > 0 {
			metrics.RetryAttempts.WithLabelValues(serviceKey).Inc()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > opts.MaxDelay {
				delay = opts.MaxDelay
			}
		}

		if lim := ex.limiter(serviceKey, opts); lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return nil, err
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, opts.PerCallTimeout)
		result, err := op(attemptCtx)
		cancel()

		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsTransient(err) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		ex.logger.Debug().
			Str("service", serviceKey).
			Int("attempt", attempt+1).
			Err(err).
			Msg("attempt failed")
	}

	return nil, fmt.Errorf("service %s: retries exhausted: %w", serviceKey, lastErr)
}

// breaker returns the circuit breaker for serviceKey, creating it with the
// given options on first use. Later calls reuse the existing breaker; the
// first caller's circuit settings win for a given key.
func (ex *Executor) breaker(serviceKey string, opts Options) *gobreaker.CircuitBreaker[any] {
	ex.mu.RLock()
	cb, ok := ex.breakers[serviceKey]
	ex.mu.RUnlock()
	if ok {
		return cb
	}

	ex.mu.Lock()
	defer ex.mu.Unlock()
	if cb, ok = ex.breakers[serviceKey]; ok {
		return cb
	}

	settings := gobreaker.Settings{
		Name:        serviceKey,
		MaxRequests: 1, // exactly one half-open trial call
		Interval:    opts.CircuitWindow,
		Timeout:     opts.CircuitCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.CircuitFailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// Validation failures are the caller's problem, not the
			// dependency's; they must not trip the circuit.
			return err == nil || IsValidation(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			if to == gobreaker.StateOpen {
				metrics.CircuitBreakerTrips.WithLabelValues(name).Inc()
			}
			ex.logger.Info().
				Str("service", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit state change")
		},
	}

	cb = gobreaker.NewCircuitBreaker[any](settings)
	ex.breakers[serviceKey] = cb
	return cb
}

// limiter returns the rate limiter for serviceKey, or nil when unlimited.
func (ex *Executor) limiter(serviceKey string, opts Options) *rate.Limiter {
	if opts.RateLimit == 0 {
		return nil
	}

	ex.mu.RLock()
	lim, ok := ex.limiters[serviceKey]
	ex.mu.RUnlock()
	if ok {
		return lim
	}

	ex.mu.Lock()
	defer ex.mu.Unlock()
	if lim, ok = ex.limiters[serviceKey]; ok {
		return lim
	}
	lim = rate.NewLimiter(opts.RateLimit, int(opts.RateLimit)+1)
	ex.limiters[serviceKey] = lim
	return lim
}

// State returns the breaker state string for a service key, or "closed"
// when no breaker exists yet.
func (ex *Executor) State(serviceKey string) string {
	ex.mu.RLock()
	defer ex.mu.RUnlock()
	if cb, ok := ex.breakers[serviceKey]; ok {
		return cb.State().String()
	}
	return gobreaker.StateClosed.String()
}

// States returns breaker states for all known service keys.
func (ex *Executor) States() map[string]string {
	ex.mu.RLock()
	defer ex.mu.RUnlock()
	states := make(map[string]string, len(ex.breakers))
	for key, cb := range ex.breakers {
		states[key] = cb.State().String()
	}
	return states
}

// stateValue maps a breaker state to a numeric gauge value.
func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
