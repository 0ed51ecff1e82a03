// model/grant.go
package model

import "time"

// GrantState is the lifecycle state of an access grant
type GrantState string

const (
	StateRequested GrantState = "requested"
	StateApproved  GrantState = "approved"
	StateActive    GrantState = "active"
	StateDenied    GrantState = "denied"
	StateExpired   GrantState = "expired"
	StateRevoked   GrantState = "revoked"
)

// IsTerminal reports whether no further transition is possible
func (s GrantState) IsTerminal() bool {
	return s == StateDenied || s == StateExpired || s == StateRevoked
}

// Sentinel option keys in the access-time catalog
const (
	OptionIndefinite = "indefinite"
	OptionCustom     = "custom"
)

// AccessTimeOption is one entry of the access-time catalog. Numeric keys
// carry their duration in Seconds; the two sentinel keys carry none.
type AccessTimeOption struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Seconds    int64  `json:"seconds,omitempty"`
	Indefinite bool   `json:"indefinite,omitempty"`
	Custom     bool   `json:"custom,omitempty"`
}

// LifetimePolicy is the resolved lifetime of one grant: either a finite
// number of seconds or an indefinite marker, never both and never neither.
type LifetimePolicy struct {
	Seconds    int64 `json:"seconds,omitempty"`
	Indefinite bool  `json:"indefinite,omitempty"`
}

// Finite reports whether the policy carries a concrete duration
func (p LifetimePolicy) Finite() bool {
	return !p.Indefinite
}

// Duration returns the policy lifetime; zero for indefinite policies
func (p LifetimePolicy) Duration() time.Duration {
	if p.Indefinite {
		return 0
	}
	return time.Duration(p.Seconds) * time.Second
}

// Grant is one time-bound access grant. It is owned exclusively by the
// grant service; the scheduler and dispatcher refer to it by ID only.
type Grant struct {
	ID               string         `json:"id"`
	SubjectID        string         `json:"subject_id"`
	ResourceID       string         `json:"resource_id"`
	Reason           string         `json:"reason,omitempty"`
	Lifetime         LifetimePolicy `json:"lifetime"`
	State            GrantState     `json:"state"`
	DecidedBy        string         `json:"decided_by,omitempty"`
	DenialReason     string         `json:"denial_reason,omitempty"`
	RevocationReason string         `json:"revocation_reason,omitempty"`
	RequestedAt      time.Time      `json:"requested_at"`
	ActivatedAt      *time.Time     `json:"activated_at,omitempty"`
	ExpiresAt        *time.Time     `json:"expires_at,omitempty"`
	RevokedAt        *time.Time     `json:"revoked_at,omitempty"`
}

// AccessRequest is the inbound payload for creating a grant
type AccessRequest struct {
	SubjectID     string `json:"subject_id"`
	ResourceID    string `json:"resource_id"`
	Reason        string `json:"reason,omitempty"`
	OptionKey     string `json:"option_key,omitempty"`
	CustomSeconds int64  `json:"custom_seconds,omitempty"`
}
