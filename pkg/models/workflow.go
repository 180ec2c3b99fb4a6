package models

import "time"

// WorkflowTriggerType identifies the mutation event a workflow reacts to.
type WorkflowTriggerType string

const (
	WorkflowTriggerContactCreated   WorkflowTriggerType = "contact_created"
	WorkflowTriggerDealStageChanged WorkflowTriggerType = "deal_stage_changed"
	WorkflowTriggerTaskCompleted    WorkflowTriggerType = "task_completed"
	WorkflowTriggerManual           WorkflowTriggerType = "manual"
	WorkflowTriggerScheduled        WorkflowTriggerType = "scheduled"
)

// WorkflowAction is one entry of a workflow's flat ordered action list.
// There is no control flow between actions; they run in declaration order.
type WorkflowAction struct {
	Kind   string         `json:"kind"   validate:"required"`
	Config map[string]any `json:"config"`
}

// Workflow is a trigger+ordered-actions pair evaluated on a mutation event.
type Workflow struct {
	ID                string              `json:"id"`
	Owner             string              `json:"owner"        validate:"required"`
	Name              string              `json:"name"         validate:"required,min=3"`
	TriggerType       WorkflowTriggerType `json:"trigger_type" validate:"required,oneof=contact_created deal_stage_changed task_completed manual scheduled"`
	TriggerConditions map[string]any      `json:"trigger_conditions,omitempty"`
	Actions           []WorkflowAction    `json:"actions"      validate:"required,min=1,dive"`
	IsActive          bool                `json:"is_active"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// ExecutionStatus is the terminal state of one workflow engine run.
type ExecutionStatus string

const (
	ExecutionStatusSuccess ExecutionStatus = "success"
	ExecutionStatusError   ExecutionStatus = "error"
)

// ExecutionLogEntry records the outcome of a single action within a run.
type ExecutionLogEntry struct {
	ActionKind string    `json:"action_kind"`
	Status     string    `json:"status"` // "success" or "failed"
	Message    string    `json:"message,omitempty"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// WorkflowExecution is the append-only audit record of one engine run.
// It is never mutated after creation.
type WorkflowExecution struct {
	ID           string              `json:"id"`
	WorkflowID   string              `json:"workflow_id"`
	TriggerData  map[string]any      `json:"trigger_data,omitempty"`
	Status       ExecutionStatus     `json:"status"`
	ErrorMessage string              `json:"error_message,omitempty"`
	ActionLog    []ExecutionLogEntry `json:"action_log,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}
