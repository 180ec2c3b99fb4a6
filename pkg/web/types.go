// Package web provides the HTTP surface: automation scans, mutation event
// intake, rule and workflow management, and the public booking endpoints.
package web

import (
	"time"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
)

// CreateRuleRequest is the request body for creating or replacing a rule.
type CreateRuleRequest struct {
	Owner         string                   `json:"owner"          validate:"required"`
	Name          string                   `json:"name"           validate:"required,min=3"`
	TriggerType   models.RuleTriggerType   `json:"trigger_type"   validate:"required,oneof=meeting_scheduled deal_stage_changed contact_inactive"`
	TriggerConfig models.RuleTriggerConfig `json:"trigger_config"`
	ActionType    models.RuleActionType    `json:"action_type"    validate:"required,oneof=create_task"`
	ActionConfig  models.RuleActionConfig  `json:"action_config"`
	IsActive      *bool                    `json:"is_active,omitempty"`
}

// CreateWorkflowRequest is the request body for creating a workflow.
type CreateWorkflowRequest struct {
	Owner             string                     `json:"owner"        validate:"required"`
	Name              string                     `json:"name"         validate:"required,min=3"`
	TriggerType       models.WorkflowTriggerType `json:"trigger_type" validate:"required,oneof=contact_created deal_stage_changed task_completed manual scheduled"`
	TriggerConditions map[string]any             `json:"trigger_conditions,omitempty"`
	Actions           []models.WorkflowAction    `json:"actions"      validate:"required,min=1,dive"`
	IsActive          *bool                      `json:"is_active,omitempty"`
}

// PublishEventRequest is the mutation handoff body posted by CRUD
// collaborators after a qualifying change.
type PublishEventRequest struct {
	Type     string         `json:"type"      validate:"required"`
	Owner    string         `json:"owner"     validate:"required"`
	EntityID string         `json:"entity_id" validate:"required"`
	Data     map[string]any `json:"data,omitempty"`
}

// BookSlotRequest is the public booking body.
type BookSlotRequest struct {
	Start time.Time `json:"start" validate:"required"`
	Name  string    `json:"name"  validate:"required"`
	Email string    `json:"email" validate:"required,email"`
	Notes string    `json:"notes,omitempty"`
}

// ExecuteWorkflowRequest triggers a manual workflow run.
type ExecuteWorkflowRequest struct {
	TriggerData map[string]any `json:"trigger_data,omitempty"`
}
