// Package logmsg implements the workflow action that writes a structured
// log line. Useful as a no-op step when wiring up a new workflow.
package logmsg

import (
	"context"
	"log/slog"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/protocol"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/template"
)

type ActionFactory struct{}

func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

func (*ActionFactory) ID() string {
	return "log"
}

func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	return NewAction(config), nil
}

func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "The message to log. Placeholders are filled from the trigger data.",
			},
			"level": map[string]any{
				"type":    "string",
				"default": "info",
				"enum":    []string{"debug", "info", "warn", "error"},
			},
		},
		"required": []string{"message"},
	}
}

type Action struct {
	Message string
	Level   string
}

func NewAction(config map[string]any) *Action {
	action := &Action{Level: "info"}

	if message, ok := config["message"].(string); ok {
		action.Message = message
	}

	if level, ok := config["level"].(string); ok {
		action.Level = level
	}

	return action
}

func (a *Action) Execute(ctx context.Context, executionCtx protocol.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("action_kind", "log", "workflow_id", executionCtx.WorkflowID)

	message := template.Render(a.Message, executionCtx.TriggerData)

	switch a.Level {
	case "debug":
		logger.DebugContext(ctx, message)
	case "warn":
		logger.WarnContext(ctx, message)
	case "error":
		logger.ErrorContext(ctx, message)
	default:
		logger.InfoContext(ctx, message)
	}

	return map[string]any{"message": message, "level": a.Level}, nil
}
