// Package memory provides an in-memory persistence implementation. It backs
// unit tests and local development; a process restart loses everything.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence"
)

// Persistence implements the persistence layer with mutex-guarded maps.
type Persistence struct {
	mu sync.RWMutex

	rules         map[string]*models.AutomationRule
	workflows     map[string]*models.Workflow
	executions    map[string][]*models.WorkflowExecution
	tasks         map[string]*models.Task
	notifications map[string]*models.Notification
	contacts      map[string]*models.Contact
	activities    map[string][]*models.Activity
	deals         map[string]*models.Deal
	slots         map[string]*models.AvailabilitySlot
	links         map[string]*models.SchedulingLink
	meetings      map[string]*models.ScheduledMeeting
	meetingStarts map[string]bool
	handled       map[string]*models.AutomationExecution
}

// NewPersistence creates an empty in-memory persistence layer.
func NewPersistence() *Persistence {
	return &Persistence{
		rules:         make(map[string]*models.AutomationRule),
		workflows:     make(map[string]*models.Workflow),
		executions:    make(map[string][]*models.WorkflowExecution),
		tasks:         make(map[string]*models.Task),
		notifications: make(map[string]*models.Notification),
		contacts:      make(map[string]*models.Contact),
		activities:    make(map[string][]*models.Activity),
		deals:         make(map[string]*models.Deal),
		slots:         make(map[string]*models.AvailabilitySlot),
		links:         make(map[string]*models.SchedulingLink),
		meetings:      make(map[string]*models.ScheduledMeeting),
		meetingStarts: make(map[string]bool),
		handled:       make(map[string]*models.AutomationExecution),
	}
}

// Close performs any necessary cleanup. Nothing to release for memory.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck always reports healthy.
func (p *Persistence) HealthCheck(_ context.Context) error {
	return nil
}

func (p *Persistence) Rules() persistence.RuleRepository         { return &ruleRepository{p: p} }
func (p *Persistence) Workflows() persistence.WorkflowRepository { return &workflowRepository{p: p} }
func (p *Persistence) Tasks() persistence.TaskRepository         { return &taskRepository{p: p} }
func (p *Persistence) Notifications() persistence.NotificationRepository {
	return &notificationRepository{p: p}
}
func (p *Persistence) Contacts() persistence.ContactRepository { return &contactRepository{p: p} }
func (p *Persistence) Deals() persistence.DealRepository       { return &dealRepository{p: p} }
func (p *Persistence) Scheduling() persistence.SchedulingRepository {
	return &schedulingRepository{p: p}
}
func (p *Persistence) ExecutionLog() persistence.ExecutionLogRepository {
	return &executionLogRepository{p: p}
}

// newID generates a v7 UUID, matching ID generation in the SQL backend.
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate ID: %w", err)
	}

	return id.String(), nil
}
