// Package persistence provides the data storage abstraction layer for the
// automation core: rules, workflows, tasks, notifications, the CRM entities
// the evaluators read, and the scheduling tables.
package persistence

import (
	"context"
	"time"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
)

// Persistence aggregates the repositories backed by one storage engine.
type Persistence interface {
	Rules() RuleRepository
	Workflows() WorkflowRepository
	Tasks() TaskRepository
	Notifications() NotificationRepository
	Contacts() ContactRepository
	Deals() DealRepository
	Scheduling() SchedulingRepository
	ExecutionLog() ExecutionLogRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// RuleRepository stores automation rules.
type RuleRepository interface {
	ActiveRules(ctx context.Context) ([]*models.AutomationRule, error)
	RulesByOwner(ctx context.Context, owner string) ([]*models.AutomationRule, error)
	RuleByID(ctx context.Context, id string) (*models.AutomationRule, error)
	SaveRule(ctx context.Context, rule *models.AutomationRule) error
	DeleteRule(ctx context.Context, id string) error
}

// WorkflowRepository stores workflows and their execution records.
type WorkflowRepository interface {
	ActiveWorkflowsByTrigger(ctx context.Context, trigger models.WorkflowTriggerType) ([]*models.Workflow, error)
	WorkflowsByOwner(ctx context.Context, owner string) ([]*models.Workflow, error)
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	DeleteWorkflow(ctx context.Context, id string) error

	CreateExecution(ctx context.Context, execution *models.WorkflowExecution) error
	ExecutionsByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.WorkflowExecution, error)
}

// TaskRepository stores follow-up tasks.
type TaskRepository interface {
	CreateTask(ctx context.Context, task *models.Task) error
	TaskByID(ctx context.Context, id string) (*models.Task, error)
	TasksByOwner(ctx context.Context, owner string) ([]*models.Task, error)
	SaveTask(ctx context.Context, task *models.Task) error
}

// NotificationRepository stores user notifications.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	NotificationsByOwner(ctx context.Context, owner string) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	DeleteNotification(ctx context.Context, id string) error
}

// ContactRepository reads and writes contact records and their activities.
type ContactRepository interface {
	ContactByID(ctx context.Context, id string) (*models.Contact, error)
	SaveContact(ctx context.Context, contact *models.Contact) error
	SaveActivity(ctx context.Context, activity *models.Activity) error

	// InactiveContacts returns the owner's contacts whose updated_at is at or
	// before the cutoff and that have no activity occurring after it.
	InactiveContacts(ctx context.Context, owner string, cutoff time.Time) ([]*models.Contact, error)
}

// DealRepository reads and writes deals.
type DealRepository interface {
	DealByID(ctx context.Context, id string) (*models.Deal, error)
	SaveDeal(ctx context.Context, deal *models.Deal) error

	// DealsInStageSince returns the owner's deals currently in the stage whose
	// updated_at falls after the given instant.
	DealsInStageSince(ctx context.Context, owner, stage string, since time.Time) ([]*models.Deal, error)
}

// SchedulingRepository stores availability windows, scheduling links and
// booked meetings.
type SchedulingRepository interface {
	LinkBySlug(ctx context.Context, slug string) (*models.SchedulingLink, error)
	LinkByID(ctx context.Context, id string) (*models.SchedulingLink, error)
	SaveLink(ctx context.Context, link *models.SchedulingLink) error

	ActiveSlotsByOwnerAndWeekday(ctx context.Context, owner string, weekday int) ([]*models.AvailabilitySlot, error)
	SaveAvailabilitySlot(ctx context.Context, slot *models.AvailabilitySlot) error

	// MeetingsForLinkBetween returns meetings for one link starting in [from, to).
	MeetingsForLinkBetween(ctx context.Context, linkID string, from, to time.Time) ([]*models.ScheduledMeeting, error)
	// MeetingsForOwnerBetween returns meetings across all of an owner's links
	// starting in [from, to).
	MeetingsForOwnerBetween(ctx context.Context, owner string, from, to time.Time) ([]*models.ScheduledMeeting, error)

	// CreateMeeting persists a booking. It returns ErrSlotTaken when another
	// meeting for the same link already holds the start time; the uniqueness
	// constraint in the storage engine is the exclusion point.
	CreateMeeting(ctx context.Context, meeting *models.ScheduledMeeting) error
}

// ExecutionLogRepository is the append-only automation execution log backing
// the idempotency guard.
type ExecutionLogRepository interface {
	WasHandled(ctx context.Context, dedupKey string) (bool, error)
	MarkHandled(ctx context.Context, execution *models.AutomationExecution) error
}
