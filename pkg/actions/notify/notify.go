// Package notify implements the workflow action that posts an in-app
// notification to the workflow owner.
package notify

import (
	"context"
	"fmt"
	"log/slog"

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
	return "notify"
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
				"description": "Notification title. Placeholders are filled from the trigger data.",
			},
			"message": map[string]any{
				"type": "string",
			},
			"link": map[string]any{
				"type": "string",
			},
		},
		"required": []string{"title"},
	}
}

type Action struct {
	persistence persistence.Persistence

	Title   string
	Message string
	Link    string
}

func NewAction(config map[string]any, p persistence.Persistence) *Action {
	action := &Action{persistence: p}

	if title, ok := config["title"].(string); ok {
		action.Title = title
	}

	if message, ok := config["message"].(string); ok {
		action.Message = message
	}

	if link, ok := config["link"].(string); ok {
		action.Link = link
	}

	return action
}

func (a *Action) Execute(ctx context.Context, executionCtx protocol.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("action_kind", "notify")

	notification := &models.Notification{
		Owner:   executionCtx.Owner,
		Title:   template.Render(a.Title, executionCtx.TriggerData),
		Message: template.Render(a.Message, executionCtx.TriggerData),
		Type:    models.NotificationTypeAutomation,
		Link:    a.Link,
	}

	err := a.persistence.Notifications().CreateNotification(ctx, notification)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	logger.InfoContext(ctx, "Created notification", "notification_id", notification.ID)

	return map[string]any{"notification_id": notification.ID}, nil
}
