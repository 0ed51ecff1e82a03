// audit/model.go
package audit

import "time"

// TransitionLog is one audited grant lifecycle transition
type TransitionLog struct {
	Timestamp  time.Time `json:"timestamp"`
	GrantID    string    `json:"grant_id"`
	SubjectID  string    `json:"subject_id"`
	ResourceID string    `json:"resource_id"`
	Transition string    `json:"transition"`
	FromState  string    `json:"from_state"`
	ToState    string    `json:"to_state"`
	Reason     string    `json:"reason,omitempty"`
	Actor      string    `json:"actor,omitempty"`
}
