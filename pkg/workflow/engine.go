// Package workflow implements the event-driven workflow engine: given an
// entity mutation, it runs every matching workflow's flat ordered action
// list and appends one execution record per workflow.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/events"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/otelhelper"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/protocol"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/registry"
)

// DefaultActionTimeout bounds one workflow's whole action list so a slow
// action cannot stall the caller indefinitely.
const DefaultActionTimeout = 30 * time.Second

// Engine executes workflows in reaction to entity mutation events.
type Engine struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	logger      *slog.Logger
	tracer      trace.Tracer
	timeout     time.Duration
}

// EngineOption customizes engine construction.
type EngineOption func(*Engine)

// WithActionTimeout overrides the per-workflow execution timeout.
func WithActionTimeout(timeout time.Duration) EngineOption {
	return func(e *Engine) {
		e.timeout = timeout
	}
}

func NewEngine(p persistence.Persistence, reg *registry.Registry, logger *slog.Logger, opts ...EngineOption) *Engine {
	engine := &Engine{
		persistence: p,
		registry:    reg,
		logger:      logger.With("module", "workflow"),
		tracer:      otel.Tracer("crm-workflow"),
		timeout:     DefaultActionTimeout,
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine
}

// HandleMutation maps an entity mutation to its workflow trigger, enriches
// the trigger data with the envelope fields, and hands it to HandleEvent.
// Mutations of an unmapped type are dropped with a log line, not an error,
// so one stray event cannot wedge a bus subscription.
func (e *Engine) HandleMutation(ctx context.Context, mutation *events.EntityMutation) error {
	trigger, err := mutation.WorkflowTrigger()
	if err != nil {
		e.logger.ErrorContext(ctx, "Dropping mutation with unknown type",
			"event_id", mutation.ID, "event_type", mutation.Type)

		return nil
	}

	triggerData := make(map[string]any, len(mutation.Data)+3)
	maps.Copy(triggerData, mutation.Data)
	triggerData["entity_id"] = mutation.EntityID
	triggerData["event_type"] = string(mutation.Type)
	triggerData["occurred_at"] = mutation.OccurredAt.Format(time.RFC3339)

	return e.HandleEvent(ctx, mutation.Owner, trigger, triggerData)
}

// HandleEvent runs every active workflow of the owner whose trigger type
// matches. One workflow's failure lands in its execution record and does not
// prevent the others from running. The returned error is reserved for
// failures before any workflow ran.
func (e *Engine) HandleEvent(ctx context.Context, owner string, triggerType models.WorkflowTriggerType, triggerData map[string]any) error {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.handle_event",
		attribute.String(otelhelper.TriggerTypeKey, string(triggerType)),
		attribute.String(otelhelper.OwnerKey, owner),
	)
	defer span.End()

	workflows, err := e.persistence.Workflows().ActiveWorkflowsByTrigger(ctx, triggerType)
	if err != nil {
		otelhelper.SetError(span, err)

		return fmt.Errorf("failed to load workflows: %w", err)
	}

	for _, workflow := range workflows {
		if workflow.Owner != owner {
			continue
		}

		if !matchesConditions(workflow.TriggerConditions, triggerData) {
			continue
		}

		e.runWorkflow(ctx, workflow, triggerData)
	}

	return nil
}

// ExecuteWorkflow runs one workflow directly, regardless of trigger type.
// The API's manual-execute endpoint uses it.
func (e *Engine) ExecuteWorkflow(ctx context.Context, workflowID string, triggerData map[string]any) (*models.WorkflowExecution, error) {
	workflow, err := e.persistence.Workflows().WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	return e.runWorkflow(ctx, workflow, triggerData), nil
}

func (e *Engine) runWorkflow(ctx context.Context, workflow *models.Workflow, triggerData map[string]any) *models.WorkflowExecution {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.run",
		attribute.String(otelhelper.WorkflowIDKey, workflow.ID),
	)
	defer span.End()

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	execution := &models.WorkflowExecution{
		WorkflowID:  workflow.ID,
		TriggerData: triggerData,
		Status:      models.ExecutionStatusSuccess,
	}

	executionCtx := protocol.ExecutionContext{
		Owner:       workflow.Owner,
		WorkflowID:  workflow.ID,
		TriggerData: triggerData,
	}

	for _, action := range workflow.Actions {
		entry := e.runAction(runCtx, executionCtx, action)
		execution.ActionLog = append(execution.ActionLog, entry)

		if entry.Error != "" {
			execution.Status = models.ExecutionStatusError
			execution.ErrorMessage = fmt.Sprintf("action %q failed: %s", action.Kind, entry.Error)

			break
		}
	}

	if execution.Status == models.ExecutionStatusError {
		e.logger.ErrorContext(ctx, "Workflow execution failed",
			"workflow_id", workflow.ID, "error", execution.ErrorMessage)
		otelhelper.SetError(span, fmt.Errorf("%s", execution.ErrorMessage))
	} else {
		e.logger.InfoContext(ctx, "Workflow executed",
			"workflow_id", workflow.ID, "actions", len(execution.ActionLog))
	}

	err := e.persistence.Workflows().CreateExecution(ctx, execution)
	if err != nil {
		e.logger.ErrorContext(ctx, "Failed to record workflow execution",
			"workflow_id", workflow.ID, "error", err)
	}

	return execution
}

func (e *Engine) runAction(ctx context.Context, executionCtx protocol.ExecutionContext, action models.WorkflowAction) models.ExecutionLogEntry {
	entry := models.ExecutionLogEntry{
		ActionKind: action.Kind,
		Status:     "success",
		Timestamp:  time.Now().UTC(),
	}

	impl, err := e.registry.CreateAction(action.Kind, action.Config)
	if err != nil {
		entry.Status = "failed"
		entry.Error = err.Error()

		return entry
	}

	result, err := impl.Execute(ctx, executionCtx, e.logger)
	if err != nil {
		entry.Status = "failed"
		entry.Error = err.Error()

		return entry
	}

	if message, ok := result["message"].(string); ok {
		entry.Message = message
	}

	return entry
}

// matchesConditions checks trigger conditions by shallow equality against
// the trigger data. A workflow with no conditions matches every event of its
// trigger type.
func matchesConditions(conditions, triggerData map[string]any) bool {
	for key, want := range conditions {
		got, ok := triggerData[key]
		if !ok || fmt.Sprintf("%v", got) != fmt.Sprintf("%v", want) {
			return false
		}
	}

	return true
}
