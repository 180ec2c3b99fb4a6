// Package protocol defines the contracts for pluggable workflow actions.
package protocol

import (
	"context"
	"log/slog"
)

// ExecutionContext carries the trigger payload into an action run.
type ExecutionContext struct {
	Owner       string         `json:"owner"`
	WorkflowID  string         `json:"workflow_id"`
	TriggerData map[string]any `json:"trigger_data"`
}

// Action is one executable step of a workflow.
type Action interface {
	Execute(ctx context.Context, executionCtx ExecutionContext, logger *slog.Logger) (map[string]any, error)
}

// ActionFactory creates action instances from a workflow's per-action config.
type ActionFactory interface {
	Create(config map[string]any) (Action, error)
	ID() string

	// Schema returns the JSON schema the action's config must satisfy.
	Schema() map[string]any
}
