package workflow

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/actions/createtask"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/actions/logmsg"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/actions/notify"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/events"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence/memory"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/registry"
)

func newTestEngine(t *testing.T, p persistence.Persistence) *Engine {
	t.Helper()

	reg := registry.NewRegistry(slog.Default())
	reg.RegisterAction(createtask.NewActionFactory(p))
	reg.RegisterAction(notify.NewActionFactory(p))
	reg.RegisterAction(logmsg.NewActionFactory())

	return NewEngine(p, reg, slog.Default())
}

func saveWorkflow(t *testing.T, p persistence.Persistence, wf *models.Workflow) *models.Workflow {
	t.Helper()
	require.NoError(t, p.Workflows().SaveWorkflow(context.Background(), wf))

	return wf
}

func TestHandleEventRunsMatchingWorkflow(t *testing.T) {
	ctx := context.Background()
	p := memory.NewPersistence()
	engine := newTestEngine(t, p)

	wf := saveWorkflow(t, p, &models.Workflow{
		Owner:       "alice",
		Name:        "welcome new contacts",
		TriggerType: models.WorkflowTriggerContactCreated,
		Actions: []models.WorkflowAction{
			{Kind: "create_task", Config: map[string]any{"title": "Welcome {{contact_name}}"}},
			{Kind: "notify", Config: map[string]any{"title": "New contact", "message": "{{contact_name}} joined"}},
		},
		IsActive: true,
	})

	err := engine.HandleEvent(ctx, "alice", models.WorkflowTriggerContactCreated, map[string]any{
		"contact_name": "Ada",
	})
	require.NoError(t, err)

	tasks, err := p.Tasks().TasksByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Welcome Ada", tasks[0].Title)

	notifications, err := p.Notifications().NotificationsByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "Ada joined", notifications[0].Message)

	executions, err := p.Workflows().ExecutionsByWorkflow(ctx, wf.ID, 10)
	require.NoError(t, err)
	require.Len(t, executions, 1)
	assert.Equal(t, models.ExecutionStatusSuccess, executions[0].Status)
	assert.Len(t, executions[0].ActionLog, 2)
}

func TestHandleMutationRunsWorkflow(t *testing.T) {
	ctx := context.Background()
	p := memory.NewPersistence()
	engine := newTestEngine(t, p)

	wf := saveWorkflow(t, p, &models.Workflow{
		Owner:       "alice",
		Name:        "welcome new contacts",
		TriggerType: models.WorkflowTriggerContactCreated,
		Actions: []models.WorkflowAction{
			{Kind: "create_task", Config: map[string]any{"title": "Welcome {{contact_name}}"}},
		},
		IsActive: true,
	})

	mutation := &events.EntityMutation{
		ID:         "evt-1",
		Type:       events.ContactCreatedEvent,
		Owner:      "alice",
		EntityID:   "contact-1",
		Data:       map[string]any{"contact_name": "Ada"},
		OccurredAt: time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC),
	}

	require.NoError(t, engine.HandleMutation(ctx, mutation))

	tasks, err := p.Tasks().TasksByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Welcome Ada", tasks[0].Title)

	executions, err := p.Workflows().ExecutionsByWorkflow(ctx, wf.ID, 10)
	require.NoError(t, err)
	require.Len(t, executions, 1)

	triggerData := executions[0].TriggerData
	assert.Equal(t, "contact-1", triggerData["entity_id"])
	assert.Equal(t, string(events.ContactCreatedEvent), triggerData["event_type"])
	assert.Equal(t, "2026-03-10T14:30:00Z", triggerData["occurred_at"])
}

func TestHandleMutationUnknownTypeDropped(t *testing.T) {
	ctx := context.Background()
	p := memory.NewPersistence()
	engine := newTestEngine(t, p)

	saveWorkflow(t, p, &models.Workflow{
		Owner:       "alice",
		Name:        "welcome new contacts",
		TriggerType: models.WorkflowTriggerContactCreated,
		Actions: []models.WorkflowAction{
			{Kind: "log", Config: map[string]any{"message": "hello"}},
		},
		IsActive: true,
	})

	err := engine.HandleMutation(ctx, &events.EntityMutation{
		ID: "evt-2", Type: "contact.exploded", Owner: "alice", EntityID: "contact-1",
	})
	require.NoError(t, err)

	tasks, err := p.Tasks().TasksByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestHandleEventOwnerFilter(t *testing.T) {
	ctx := context.Background()
	p := memory.NewPersistence()
	engine := newTestEngine(t, p)

	saveWorkflow(t, p, &models.Workflow{
		Owner:       "bob",
		Name:        "bob's workflow",
		TriggerType: models.WorkflowTriggerContactCreated,
		Actions: []models.WorkflowAction{
			{Kind: "create_task", Config: map[string]any{"title": "Welcome"}},
		},
		IsActive: true,
	})

	require.NoError(t, engine.HandleEvent(ctx, "alice", models.WorkflowTriggerContactCreated, nil))

	tasks, err := p.Tasks().TasksByOwner(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestHandleEventTriggerConditions(t *testing.T) {
	ctx := context.Background()
	p := memory.NewPersistence()
	engine := newTestEngine(t, p)

	wf := saveWorkflow(t, p, &models.Workflow{
		Owner:             "alice",
		Name:              "closed-won celebration",
		TriggerType:       models.WorkflowTriggerDealStageChanged,
		TriggerConditions: map[string]any{"stage": "closed_won"},
		Actions: []models.WorkflowAction{
			{Kind: "create_task", Config: map[string]any{"title": "Send onboarding docs"}},
		},
		IsActive: true,
	})

	// Wrong stage: no run, no execution record.
	require.NoError(t, engine.HandleEvent(ctx, "alice", models.WorkflowTriggerDealStageChanged,
		map[string]any{"stage": "negotiation"}))

	executions, err := p.Workflows().ExecutionsByWorkflow(ctx, wf.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, executions)

	// Matching stage runs the workflow.
	require.NoError(t, engine.HandleEvent(ctx, "alice", models.WorkflowTriggerDealStageChanged,
		map[string]any{"stage": "closed_won"}))

	executions, err = p.Workflows().ExecutionsByWorkflow(ctx, wf.ID, 10)
	require.NoError(t, err)
	assert.Len(t, executions, 1)
}

func TestWorkflowStopsAtFirstFailedAction(t *testing.T) {
	ctx := context.Background()
	p := memory.NewPersistence()
	engine := newTestEngine(t, p)

	wf := saveWorkflow(t, p, &models.Workflow{
		Owner:       "alice",
		Name:        "partially broken",
		TriggerType: models.WorkflowTriggerManual,
		Actions: []models.WorkflowAction{
			{Kind: "log", Config: map[string]any{"message": "starting"}},
			{Kind: "does_not_exist", Config: map[string]any{}},
			{Kind: "create_task", Config: map[string]any{"title": "never created"}},
		},
		IsActive: true,
	})

	execution, err := engine.ExecuteWorkflow(ctx, wf.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusError, execution.Status)
	assert.Contains(t, execution.ErrorMessage, "does_not_exist")
	// The log before the broken action ran; the task after it did not.
	require.Len(t, execution.ActionLog, 2)
	assert.Equal(t, "success", execution.ActionLog[0].Status)
	assert.Equal(t, "failed", execution.ActionLog[1].Status)

	tasks, err := p.Tasks().TasksByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestWorkflowFailureIsolation(t *testing.T) {
	ctx := context.Background()
	p := memory.NewPersistence()
	engine := newTestEngine(t, p)

	saveWorkflow(t, p, &models.Workflow{
		Owner:       "alice",
		Name:        "broken workflow",
		TriggerType: models.WorkflowTriggerContactCreated,
		Actions: []models.WorkflowAction{
			{Kind: "does_not_exist"},
		},
		IsActive: true,
	})
	saveWorkflow(t, p, &models.Workflow{
		Owner:       "alice",
		Name:        "healthy workflow",
		TriggerType: models.WorkflowTriggerContactCreated,
		Actions: []models.WorkflowAction{
			{Kind: "create_task", Config: map[string]any{"title": "Welcome"}},
		},
		IsActive: true,
	})

	require.NoError(t, engine.HandleEvent(ctx, "alice", models.WorkflowTriggerContactCreated, nil))

	tasks, err := p.Tasks().TasksByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestExecuteWorkflowInvalidActionConfig(t *testing.T) {
	ctx := context.Background()
	p := memory.NewPersistence()
	engine := newTestEngine(t, p)

	// create_task requires a title; the schema rejects the empty config.
	wf := saveWorkflow(t, p, &models.Workflow{
		Owner:       "alice",
		Name:        "misconfigured",
		TriggerType: models.WorkflowTriggerManual,
		Actions: []models.WorkflowAction{
			{Kind: "create_task", Config: map[string]any{}},
		},
		IsActive: true,
	})

	execution, err := engine.ExecuteWorkflow(ctx, wf.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusError, execution.Status)
	assert.Contains(t, execution.ErrorMessage, "create_task")
}

func TestExecuteWorkflowNotFound(t *testing.T) {
	engine := newTestEngine(t, memory.NewPersistence())

	_, err := engine.ExecuteWorkflow(context.Background(), "missing", nil)
	require.Error(t, err)
	assert.True(t, persistence.IsNotFound(err))
}

func TestMatchesConditions(t *testing.T) {
	tests := []struct {
		name       string
		conditions map[string]any
		data       map[string]any
		want       bool
	}{
		{name: "nil_conditions_match_everything", conditions: nil, data: nil, want: true},
		{
			name:       "equal_value",
			conditions: map[string]any{"stage": "closed_won"},
			data:       map[string]any{"stage": "closed_won", "extra": 1},
			want:       true,
		},
		{
			name:       "different_value",
			conditions: map[string]any{"stage": "closed_won"},
			data:       map[string]any{"stage": "negotiation"},
			want:       false,
		},
		{
			name:       "missing_key",
			conditions: map[string]any{"stage": "closed_won"},
			data:       map[string]any{},
			want:       false,
		},
		{
			name:       "numeric_values_compared_loosely",
			conditions: map[string]any{"count": 3},
			data:       map[string]any{"count": float64(3)},
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesConditions(tt.conditions, tt.data))
		})
	}
}
