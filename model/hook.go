// model/hook.go
package model

import "time"

// HookEvent identifies a lifecycle point providers can subscribe to
type HookEvent string

const (
	EventGrantRequested HookEvent = "grant.requested"
	EventPreActivation  HookEvent = "grant.pre_activation"
	EventGrantActivated HookEvent = "grant.activated"
	EventGrantDenied    HookEvent = "grant.denied"
	EventGrantExpired   HookEvent = "grant.expired"
	EventGrantRevoked   HookEvent = "grant.revoked"
)

// Decisive reports whether provider outcomes for this event can change the
// grant's fate. Only the pre-activation gate is decisive; everything else
// is a one-way notification.
func (e HookEvent) Decisive() bool {
	return e == EventPreActivation
}

// HookVerdict is the closed set of per-provider outcomes
type HookVerdict string

const (
	VerdictAllow HookVerdict = "allow"
	VerdictDeny  HookVerdict = "deny"
	VerdictError HookVerdict = "error"
)

// HookResult is what a provider returns from Handle
type HookResult struct {
	Verdict HookVerdict `json:"verdict"`
	Reason  string      `json:"reason,omitempty"`
}

// Allow is a passing provider result
func Allow() HookResult {
	return HookResult{Verdict: VerdictAllow}
}

// Deny is a vetoing provider result carrying the veto reason
func Deny(reason string) HookResult {
	return HookResult{Verdict: VerdictDeny, Reason: reason}
}

// HookOutcome records one provider invocation during a dispatch
type HookOutcome struct {
	Provider string        `json:"provider"`
	Verdict  HookVerdict   `json:"verdict"`
	Reason   string        `json:"reason,omitempty"`
	Err      error         `json:"-"`
	Elapsed  time.Duration `json:"elapsed"`
}

// DispatchResult aggregates provider outcomes for one event dispatch
type DispatchResult struct {
	Event    HookEvent     `json:"event"`
	GrantID  string        `json:"grant_id"`
	Outcomes []HookOutcome `json:"outcomes"`
}

// Vetoed returns the first denying provider and its reason, if any
func (r *DispatchResult) Vetoed() (provider, reason string, ok bool) {
	for _, o := range r.Outcomes {
		if o.Verdict == VerdictDeny {
			return o.Provider, o.Reason, true
		}
	}
	return "", "", false
}

// Degraded lists providers that errored during this dispatch
func (r *DispatchResult) Degraded() []string {
	var degraded []string
	for _, o := range r.Outcomes {
		if o.Verdict == VerdictError {
			degraded = append(degraded, o.Provider)
		}
	}
	return degraded
}
