package models

import "time"

// AutomationExecution is one row of the append-only automation execution log.
// DedupKey is the deterministic idempotency key derived from the rule, the
// matched entity and the dedup bucket; the scan loop checks it before
// creating any side effect.
type AutomationExecution struct {
	ID        string    `json:"id"`
	RuleID    string    `json:"rule_id"`
	EntityID  string    `json:"entity_id"`
	DedupKey  string    `json:"dedup_key"`
	TaskID    string    `json:"task_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
