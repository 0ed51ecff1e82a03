// hooks/dispatcher_test.go
package hooks_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	grantd_errors "github.com/accesskit/grantd/errors"
	"github.com/accesskit/grantd/hooks"
	"github.com/accesskit/grantd/model"
)

func testGrant() *model.Grant {
	return &model.Grant{
		ID:         "grant-1",
		SubjectID:  "user-1",
		ResourceID: "prod-db",
		State:      model.StateRequested,
	}
}

func newDispatcher(t *testing.T, required []string, providers ...hooks.Provider) *hooks.Dispatcher {
	t.Helper()
	registry := hooks.NewRegistry(required)
	for _, p := range providers {
		assert.NoError(t, registry.Register(p))
	}
	registry.Freeze()
	return hooks.NewDispatcher(registry, 200*time.Millisecond, 4)
}

func TestDispatch_NoProviders(t *testing.T) {
	d := newDispatcher(t, nil)

	result := d.Dispatch(context.Background(), model.EventPreActivation, testGrant())
	assert.Empty(t, result.Outcomes)
	_, _, vetoed := result.Vetoed()
	assert.False(t, vetoed)
}

func TestDispatch_AllAllow(t *testing.T) {
	d := newDispatcher(t, nil,
		allowProvider("a", model.EventPreActivation),
		allowProvider("b", model.EventPreActivation),
	)

	result := d.Dispatch(context.Background(), model.EventPreActivation, testGrant())
	assert.Len(t, result.Outcomes, 2)
	_, _, vetoed := result.Vetoed()
	assert.False(t, vetoed)
	assert.Empty(t, result.Degraded())
}

func TestDispatch_DenyShortCircuits(t *testing.T) {
	var thirdCalled atomic.Bool
	d := newDispatcher(t, nil,
		allowProvider("first", model.EventPreActivation),
		&stubProvider{
			name:   "vetoer",
			events: []model.HookEvent{model.EventPreActivation},
			handler: func(ctx context.Context, event model.HookEvent, grant *model.Grant) (model.HookResult, error) {
				return model.Deny("no active incident"), nil
			},
		},
		&stubProvider{
			name:   "third",
			events: []model.HookEvent{model.EventPreActivation},
			handler: func(ctx context.Context, event model.HookEvent, grant *model.Grant) (model.HookResult, error) {
				thirdCalled.Store(true)
				return model.Allow(), nil
			},
		},
	)

	result := d.Dispatch(context.Background(), model.EventPreActivation, testGrant())

	provider, reason, vetoed := result.Vetoed()
	assert.True(t, vetoed)
	assert.Equal(t, "vetoer", provider)
	assert.Equal(t, "no active incident", reason)
	assert.Len(t, result.Outcomes, 2)
	assert.False(t, thirdCalled.Load(), "providers after a veto must not run")
}

func TestDispatch_ErrorIsAdvisoryByDefault(t *testing.T) {
	d := newDispatcher(t, nil,
		&stubProvider{
			name:   "flaky",
			events: []model.HookEvent{model.EventPreActivation},
			handler: func(ctx context.Context, event model.HookEvent, grant *model.Grant) (model.HookResult, error) {
				return model.HookResult{}, errors.New("upstream 502")
			},
		},
		allowProvider("steady", model.EventPreActivation),
	)

	result := d.Dispatch(context.Background(), model.EventPreActivation, testGrant())

	_, _, vetoed := result.Vetoed()
	assert.False(t, vetoed)
	assert.Len(t, result.Outcomes, 2, "dispatch continues past a degraded provider")
	assert.Equal(t, []string{"flaky"}, result.Degraded())
}

func TestDispatch_RequiredProviderErrorEscalates(t *testing.T) {
	d := newDispatcher(t, []string{"flaky"},
		&stubProvider{
			name:   "flaky",
			events: []model.HookEvent{model.EventPreActivation},
			handler: func(ctx context.Context, event model.HookEvent, grant *model.Grant) (model.HookResult, error) {
				return model.HookResult{}, errors.New("upstream 502")
			},
		},
		allowProvider("steady", model.EventPreActivation),
	)

	result := d.Dispatch(context.Background(), model.EventPreActivation, testGrant())

	provider, reason, vetoed := result.Vetoed()
	assert.True(t, vetoed)
	assert.Equal(t, "flaky", provider)
	assert.Contains(t, reason, "required provider flaky failed")
	assert.Len(t, result.Outcomes, 1, "escalated error vetoes like a deny")
}

func TestDispatch_Timeout(t *testing.T) {
	d := newDispatcher(t, nil,
		&stubProvider{
			name:   "slow",
			events: []model.HookEvent{model.EventPreActivation},
			handler: func(ctx context.Context, event model.HookEvent, grant *model.Grant) (model.HookResult, error) {
				<-ctx.Done()
				time.Sleep(5 * time.Second)
				return model.Allow(), nil
			},
		},
	)

	start := time.Now()
	result := d.Dispatch(context.Background(), model.EventPreActivation, testGrant())
	assert.Less(t, time.Since(start), 2*time.Second, "dispatch must not wait out the handler")

	assert.Len(t, result.Outcomes, 1)
	assert.Equal(t, model.VerdictError, result.Outcomes[0].Verdict)
	assert.ErrorIs(t, result.Outcomes[0].Err, grantd_errors.ErrProviderTimeout)
}

func TestDispatch_PanickingProviderIsDegraded(t *testing.T) {
	d := newDispatcher(t, nil,
		&stubProvider{
			name:   "panicky",
			events: []model.HookEvent{model.EventPreActivation},
			handler: func(ctx context.Context, event model.HookEvent, grant *model.Grant) (model.HookResult, error) {
				panic("boom")
			},
		},
		allowProvider("steady", model.EventPreActivation),
	)

	result := d.Dispatch(context.Background(), model.EventPreActivation, testGrant())

	_, _, vetoed := result.Vetoed()
	assert.False(t, vetoed)
	assert.Equal(t, []string{"panicky"}, result.Degraded())
}

func TestDispatch_NotificationsRunIndependently(t *testing.T) {
	var calls atomic.Int32
	count := func(ctx context.Context, event model.HookEvent, grant *model.Grant) (model.HookResult, error) {
		calls.Add(1)
		return model.Allow(), nil
	}

	d := newDispatcher(t, nil,
		&stubProvider{
			name:   "broken",
			events: []model.HookEvent{model.EventGrantExpired},
			handler: func(ctx context.Context, event model.HookEvent, grant *model.Grant) (model.HookResult, error) {
				return model.HookResult{}, errors.New("webhook down")
			},
		},
		&stubProvider{name: "slack", events: []model.HookEvent{model.EventGrantExpired}, handler: count},
		&stubProvider{name: "email", events: []model.HookEvent{model.EventGrantExpired}, handler: count},
	)

	result := d.Dispatch(context.Background(), model.EventGrantExpired, testGrant())

	assert.Len(t, result.Outcomes, 3, "every notification provider is invoked")
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []string{"broken"}, result.Degraded())
	_, _, vetoed := result.Vetoed()
	assert.False(t, vetoed, "notification outcomes never veto")
}

func TestDispatch_NotificationDenyDoesNotVetoState(t *testing.T) {
	// A provider returning Deny on a notification event is recorded but
	// carries no authority; the caller only acts on decisive vetoes.
	d := newDispatcher(t, nil,
		&stubProvider{
			name:   "grumpy",
			events: []model.HookEvent{model.EventGrantRevoked},
			handler: func(ctx context.Context, event model.HookEvent, grant *model.Grant) (model.HookResult, error) {
				return model.Deny("disagree"), nil
			},
		},
	)

	result := d.Dispatch(context.Background(), model.EventGrantRevoked, testGrant())
	assert.Len(t, result.Outcomes, 1)
	assert.False(t, result.Event.Decisive())
}
