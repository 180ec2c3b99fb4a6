// Package models defines the core domain models for CRM automation and scheduling.
package models

import "time"

// RuleTriggerType identifies the condition an automation rule scans for.
type RuleTriggerType string

const (
	RuleTriggerMeetingScheduled RuleTriggerType = "meeting_scheduled"
	RuleTriggerDealStageChanged RuleTriggerType = "deal_stage_changed"
	RuleTriggerContactInactive  RuleTriggerType = "contact_inactive"
)

// RuleActionType identifies the side effect an automation rule produces.
type RuleActionType string

const (
	RuleActionCreateTask RuleActionType = "create_task"
)

// RuleTriggerConfig carries the trigger-type-specific parameters of a rule.
// Only the field matching the rule's trigger type is meaningful.
type RuleTriggerConfig struct {
	DaysDelay    int    `json:"days_delay,omitempty"`    // meeting_scheduled: days since the meeting took place
	Stage        string `json:"stage,omitempty"`         // deal_stage_changed: target pipeline stage
	DaysInactive int    `json:"days_inactive,omitempty"` // contact_inactive: days without activity
}

// RuleActionConfig carries the action parameters of a rule.
type RuleActionConfig struct {
	TitleTemplate string `json:"title_template"`
	Priority      string `json:"priority,omitempty"`
}

// AutomationRule is a trigger+action pair evaluated by the periodic scan.
type AutomationRule struct {
	ID            string            `json:"id"`
	Owner         string            `json:"owner"          validate:"required"`
	Name          string            `json:"name"           validate:"required,min=3"`
	TriggerType   RuleTriggerType   `json:"trigger_type"   validate:"required,oneof=meeting_scheduled deal_stage_changed contact_inactive"`
	TriggerConfig RuleTriggerConfig `json:"trigger_config"`
	ActionType    RuleActionType    `json:"action_type"    validate:"required,oneof=create_task"`
	ActionConfig  RuleActionConfig  `json:"action_config"`
	IsActive      bool              `json:"is_active"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// RuleResult summarizes the outcome of evaluating one rule during a scan.
// Err is set when the rule failed; TasksCreated is meaningful otherwise.
type RuleResult struct {
	RuleID       string `json:"rule_id"`
	TasksCreated int    `json:"tasks_created"`
	Err          string `json:"error,omitempty"`
}
