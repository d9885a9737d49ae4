package audit

import "time"

// Action labels what happened.
type Action string

const (
	ActionDeploy Action = "registry.deploy"
	ActionIssue  Action = "certificate.issue"
	ActionVerify Action = "certificate.verify"
)

// Event is emitted from the workflows to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	TokenID   uint64    `json:"token_id,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	Verdict   string    `json:"verdict,omitempty"`
	TxHash    string    `json:"tx_hash,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}
