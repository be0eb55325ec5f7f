// Package gate blocks service startup until every configured dependency
// accepts a transport-level connection.
//
// Each target is polled by its own goroutine; the gate is satisfied only
// when all of them report ready. With no timeout configured the gate
// waits forever and external termination is the only way out, matching
// the worker fleet's long-standing startup behavior.
package gate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/VladimirNagibin/bolashaq-production-sync/internal/backoff"
	"github.com/VladimirNagibin/bolashaq-production-sync/internal/logger"
	"github.com/VladimirNagibin/bolashaq-production-sync/internal/probe"
)

// defaultPollInterval backs the fixed policy when none is supplied.
const defaultPollInterval = time.Second

// Options configures a Gate.
type Options struct {
	// Targets is the ordered list of dependencies to wait for.
	Targets []Target
	// Prober performs individual reachability checks.
	// Defaults to a plain TCP prober.
	Prober probe.Prober
	// Policy computes the delay between attempts for one target.
	// Defaults to a fixed one-second interval.
	Policy backoff.Policy
	// Timeout bounds the whole wait. Zero means wait forever.
	Timeout time.Duration
	// Logger receives per-transition status lines.
	Logger logger.Logger
}

// Gate polls all targets until ready, timed out, or cancelled.
type Gate struct {
	targets []Target
	prober  probe.Prober
	policy  backoff.Policy
	timeout time.Duration
	log     logger.Logger
}

// New validates the options and builds a Gate. Every run is tagged with
// an invocation id so interleaved container logs can be correlated.
func New(opts Options) (*Gate, error) {
	if len(opts.Targets) == 0 {
		return nil, fmt.Errorf("%w: no targets configured", ErrInvalidConfig)
	}
	for _, t := range opts.Targets {
		if t.Host == "" || t.Port < 1 || t.Port > 65535 {
			return nil, fmt.Errorf("%w: target %q has invalid address %s", ErrInvalidConfig, t.Name, t.Addr())
		}
	}
	if opts.Timeout < 0 {
		return nil, fmt.Errorf("%w: timeout must not be negative, got %v", ErrInvalidConfig, opts.Timeout)
	}

	if opts.Prober == nil {
		opts.Prober = probe.TCPProber{}
	}
	if opts.Policy == nil {
		opts.Policy = backoff.Fixed{Interval: defaultPollInterval}
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	return &Gate{
		targets: opts.Targets,
		prober:  opts.Prober,
		policy:  opts.Policy,
		timeout: opts.Timeout,
		log:     opts.Logger.With(logger.String("gate_id", uuid.NewString())),
	}, nil
}

// Await polls every target until all are ready. It returns one result
// per target, in target order, and returns only after every worker has
// reported, so a successful return can never race a live probe.
//
// With a timeout configured, the first target to exceed it fails the
// whole gate and the shared deadline stops the remaining workers.
func (g *Gate) Await(ctx context.Context) ([]Result, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	// Each worker owns exactly one slot; no locking needed.
	results := make([]Result, len(g.targets))
	errs := make([]error, len(g.targets))

	var wg sync.WaitGroup
	for i, target := range g.targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = g.awaitTarget(ctx, target)
		}()
	}
	wg.Wait()

	// A deadline wakes every worker at once; report the first timed-out
	// target in configuration order.
	for i := range g.targets {
		var timeoutErr *TimeoutError
		if errors.As(errs[i], &timeoutErr) {
			return results, timeoutErr
		}
	}
	for i := range g.targets {
		if errs[i] != nil {
			return results, errs[i]
		}
	}

	g.log.Info("all dependencies are ready")
	return results, nil
}

// awaitTarget polls a single target until it connects or the context
// ends. Attempts are spaced by the policy delay, measured from the end
// of the previous attempt.
func (g *Gate) awaitTarget(ctx context.Context, target Target) (Result, error) {
	addr := target.Addr()
	log := g.log.With(
		logger.String("target", target.Name),
		logger.String("addr", addr),
	)

	log.Info(fmt.Sprintf("waiting for %s at %s...", target.Name, addr))

	start := time.Now()
	for attempt := 1; ; attempt++ {
		err := g.prober.Probe(ctx, addr)
		if err == nil {
			elapsed := time.Since(start)
			log.Info(fmt.Sprintf("%s is ready!", target.Name),
				logger.Int("attempts", attempt),
				logger.Duration("elapsed", elapsed),
			)
			return Result{
				Target:   target,
				Outcome:  OutcomeReady,
				Attempts: attempt,
				Elapsed:  elapsed,
			}, nil
		}

		if ctx.Err() != nil {
			return g.concede(ctx, target, attempt, start)
		}

		// Retry progress is the gate's operator-facing output; one
		// visible line per poll cycle.
		log.Info(fmt.Sprintf("still waiting for %s at %s...", target.Name, addr),
			logger.Int("attempt", attempt),
			logger.Error(err),
		)

		select {
		case <-ctx.Done():
			return g.concede(ctx, target, attempt, start)
		case <-time.After(g.policy.Next(attempt)):
		}
	}
}

// concede records how polling ended when the context died first. Only
// the gate's own deadline produces the terminal TimedOut outcome;
// external cancellation leaves the slot pending.
func (g *Gate) concede(ctx context.Context, target Target, attempts int, start time.Time) (Result, error) {
	elapsed := time.Since(start)

	result := Result{
		Target:   target,
		Outcome:  OutcomePending,
		Attempts: attempts,
		Elapsed:  elapsed,
	}

	if g.timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		result.Outcome = OutcomeTimedOut
		return result, &TimeoutError{Target: target, Elapsed: elapsed}
	}

	return result, fmt.Errorf("wait for %s cancelled: %w", target.Name, ctx.Err())
}
