// Package createtask implements the workflow action that creates a
// follow-up task for the workflow owner.
package createtask

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/protocol"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/template"
)

type ActionFactory struct {
	persistence persistence.Persistence
}

func NewActionFactory(p persistence.Persistence) *ActionFactory {
	return &ActionFactory{persistence: p}
}

func (*ActionFactory) ID() string {
	return "create_task"
}

func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	return NewAction(config, f.persistence), nil
}

func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Task title. Placeholders like {{contact_name}} are filled from the trigger data.",
			},
			"description": map[string]any{
				"type": "string",
			},
			"priority": map[string]any{
				"type": "string",
				"enum": []string{"low", "medium", "high"},
			},
			"due_in_days": map[string]any{
				"type":    "number",
				"minimum": 0,
			},
		},
		"required": []string{"title"},
	}
}

type Action struct {
	persistence persistence.Persistence

	Title       string
	Description string
	Priority    string
	DueInDays   int
}

func NewAction(config map[string]any, p persistence.Persistence) *Action {
	action := &Action{persistence: p, DueInDays: 1}

	if title, ok := config["title"].(string); ok {
		action.Title = title
	}

	if description, ok := config["description"].(string); ok {
		action.Description = description
	}

	if priority, ok := config["priority"].(string); ok {
		action.Priority = priority
	}

	if days, ok := config["due_in_days"].(float64); ok {
		action.DueInDays = int(days)
	}

	return action
}

func (a *Action) Execute(ctx context.Context, executionCtx protocol.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("action_kind", "create_task")

	task := &models.Task{
		Owner:       executionCtx.Owner,
		Title:       template.Render(a.Title, executionCtx.TriggerData),
		Description: template.Render(a.Description, executionCtx.TriggerData),
		Priority:    a.Priority,
		Status:      models.TaskStatusPending,
		DueDate:     time.Now().UTC().AddDate(0, 0, a.DueInDays),
	}

	if contactID, ok := executionCtx.TriggerData["contact_id"].(string); ok {
		task.ContactID = contactID
	}

	if dealID, ok := executionCtx.TriggerData["deal_id"].(string); ok {
		task.DealID = dealID
	}

	err := a.persistence.Tasks().CreateTask(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	logger.InfoContext(ctx, "Created task", "task_id", task.ID, "title", task.Title)

	return map[string]any{"task_id": task.ID, "title": task.Title}, nil
}
