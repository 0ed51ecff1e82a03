// hooks/dispatcher.go
package hooks

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	grantd_errors "github.com/accesskit/grantd/errors"
	logger "github.com/accesskit/grantd/logging"
	"github.com/accesskit/grantd/model"
)

// Dispatcher fans an event out to the providers registered for it and
// aggregates their outcomes. Decisive (pre-activation) events run
// sequentially in registration order so a veto short-circuits
// deterministically; notification events fan out concurrently and no
// outcome affects grant state.
type Dispatcher struct {
	registry      *Registry
	timeout       time.Duration
	maxConcurrent int
}

// NewDispatcher creates a dispatcher. timeout bounds every provider
// invocation; maxConcurrent bounds the notification fan-out pool.
func NewDispatcher(registry *Registry, timeout time.Duration, maxConcurrent int) *Dispatcher {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Dispatcher{
		registry:      registry,
		timeout:       timeout,
		maxConcurrent: maxConcurrent,
	}
}

// Dispatch invokes every provider registered for event against grant and
// returns the collected outcomes. It never returns an error: provider
// failures are recorded in the result, not surfaced as dispatch failure.
func (d *Dispatcher) Dispatch(ctx context.Context, event model.HookEvent, grant *model.Grant) *model.DispatchResult {
	providers := d.registry.ProvidersFor(event)
	result := &model.DispatchResult{
		Event:    event,
		GrantID:  grant.ID,
		Outcomes: make([]model.HookOutcome, 0, len(providers)),
	}

	if len(providers) == 0 {
		return result
	}

	if event.Decisive() {
		d.dispatchDecisive(ctx, event, grant, providers, result)
	} else {
		d.dispatchNotify(ctx, event, grant, providers, result)
	}

	if degraded := result.Degraded(); len(degraded) > 0 {
		logger.Warn("Providers degraded during dispatch",
			zap.String("event", string(event)),
			zap.String("grantID", grant.ID),
			zap.Strings("providers", degraded))
	}

	return result
}

// dispatchDecisive walks providers in registration order. A Deny stops
// the walk; an error from a required provider escalates to a Deny, an
// error from any other provider marks it degraded and the walk goes on.
func (d *Dispatcher) dispatchDecisive(ctx context.Context, event model.HookEvent, grant *model.Grant, providers []Provider, result *model.DispatchResult) {
	for _, p := range providers {
		outcome := d.invoke(ctx, p, event, grant)

		if outcome.Verdict == model.VerdictError && d.registry.Required(p.Name()) {
			logger.Error("Required provider failed, escalating to veto",
				zap.String("provider", p.Name()),
				zap.String("grantID", grant.ID),
				zap.Error(outcome.Err))
			outcome.Verdict = model.VerdictDeny
			outcome.Reason = fmt.Sprintf("required provider %s failed: %v", p.Name(), outcome.Err)
		}

		result.Outcomes = append(result.Outcomes, outcome)

		if outcome.Verdict == model.VerdictDeny {
			logger.Info("Provider vetoed grant",
				zap.String("provider", p.Name()),
				zap.String("grantID", grant.ID),
				zap.String("reason", outcome.Reason))
			return
		}
	}
}

// dispatchNotify invokes providers independently under a bounded pool;
// one provider's failure never blocks the others.
func (d *Dispatcher) dispatchNotify(ctx context.Context, event model.HookEvent, grant *model.Grant, providers []Provider, result *model.DispatchResult) {
	outcomes := make([]model.HookOutcome, len(providers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.maxConcurrent)
	for i, p := range providers {
		i, p := i, p
		g.Go(func() error {
			outcomes[i] = d.invoke(gctx, p, event, grant)
			return nil
		})
	}
	// Handlers never return an error through the group; outcomes carry
	// the per-provider failures.
	_ = g.Wait()

	result.Outcomes = append(result.Outcomes, outcomes...)
}

// invoke runs one provider call bounded by the dispatcher timeout. A
// provider exceeding the deadline is recorded as a timeout error and its
// goroutine abandoned.
func (d *Dispatcher) invoke(ctx context.Context, p Provider, event model.HookEvent, grant *model.Grant) model.HookOutcome {
	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	type reply struct {
		result model.HookResult
		err    error
	}
	done := make(chan reply, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- reply{err: fmt.Errorf("provider %s panicked: %v", p.Name(), r)}
			}
		}()
		res, err := p.Handle(callCtx, event, grant)
		done <- reply{result: res, err: err}
	}()

	outcome := model.HookOutcome{Provider: p.Name()}
	select {
	case rep := <-done:
		outcome.Elapsed = time.Since(start)
		if rep.err != nil {
			outcome.Verdict = model.VerdictError
			outcome.Err = rep.err
			logger.Error("Provider returned error",
				zap.String("provider", p.Name()),
				zap.String("event", string(event)),
				zap.String("grantID", grant.ID),
				zap.Error(rep.err))
			return outcome
		}
		outcome.Verdict = rep.result.Verdict
		outcome.Reason = rep.result.Reason
	case <-callCtx.Done():
		outcome.Elapsed = time.Since(start)
		outcome.Verdict = model.VerdictError
		outcome.Err = fmt.Errorf("%w: %s after %s", grantd_errors.ErrProviderTimeout, p.Name(), d.timeout)
		logger.Error("Provider call timed out",
			zap.String("provider", p.Name()),
			zap.String("event", string(event)),
			zap.String("grantID", grant.ID),
			zap.Duration("timeout", d.timeout))
	}
	return outcome
}
