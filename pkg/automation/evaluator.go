// Package automation implements the rule scan loop: trigger evaluators,
// the idempotency guard and the task-creating executor.
package automation

import (
	"context"
	"time"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
)

// Match is one entity a rule's trigger condition selected. BucketID scopes
// the idempotency key: re-evaluating the same entity inside the same bucket
// is a no-op.
type Match struct {
	EntityID  string
	BucketID  string
	ContactID string
	DealID    string

	// Data feeds the title template and the task description.
	Data        map[string]any
	Description string
}

// Evaluator selects the entities matching one trigger type. Evaluators only
// read; all side effects belong to the scanner.
type Evaluator interface {
	TriggerType() models.RuleTriggerType
	Validate(rule *models.AutomationRule) error
	Evaluate(ctx context.Context, rule *models.AutomationRule, now time.Time) ([]Match, error)
}
