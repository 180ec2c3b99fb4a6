package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence"
)

// WorkflowRepository handles workflow and execution-record database operations.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

const workflowColumns = `
	id
  , owner
  , name
  , trigger_type
  , trigger_conditions
  , actions
  , is_active
  , created_at
  , updated_at
`

// ActiveWorkflowsByTrigger returns active workflows matching the trigger
// type, oldest first so execution order is stable.
func (r *WorkflowRepository) ActiveWorkflowsByTrigger(ctx context.Context, trigger models.WorkflowTriggerType) ([]*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM workflows WHERE trigger_type = $1 AND is_active = true ORDER BY created_at`

	return r.queryWorkflows(ctx, query, trigger)
}

// WorkflowsByOwner returns all of an owner's workflows, newest first.
func (r *WorkflowRepository) WorkflowsByOwner(ctx context.Context, owner string) ([]*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM workflows WHERE owner = $1 ORDER BY created_at DESC`

	return r.queryWorkflows(ctx, query, owner)
}

// WorkflowByID returns a workflow by its ID.
func (r *WorkflowRepository) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM workflows WHERE id = $1`

	workflow, err := r.scanWorkflow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrWorkflowNotFound
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	return workflow, nil
}

// SaveWorkflow inserts or updates a workflow.
func (r *WorkflowRepository) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	now := time.Now().UTC()

	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	if workflow.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate workflow ID: %w", err)
		}

		workflow.ID = id.String()
	}

	conditionsJSON, err := json.Marshal(workflow.TriggerConditions)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger conditions: %w", err)
	}

	actionsJSON, err := json.Marshal(workflow.Actions)
	if err != nil {
		return fmt.Errorf("failed to marshal actions: %w", err)
	}

	query := `
		INSERT INTO workflows (id, owner, name, trigger_type, trigger_conditions, actions, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			trigger_type = EXCLUDED.trigger_type,
			trigger_conditions = EXCLUDED.trigger_conditions,
			actions = EXCLUDED.actions,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.Owner,
		workflow.Name,
		workflow.TriggerType,
		conditionsJSON,
		actionsJSON,
		workflow.IsActive,
		workflow.CreatedAt,
		workflow.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}

	return nil
}

// DeleteWorkflow removes a workflow and, via cascade, its execution records.
func (r *WorkflowRepository) DeleteWorkflow(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	return nil
}

// CreateExecution appends one execution record. Records are never updated.
func (r *WorkflowRepository) CreateExecution(ctx context.Context, execution *models.WorkflowExecution) error {
	if execution.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate execution ID: %w", err)
		}

		execution.ID = id.String()
	}

	if execution.CreatedAt.IsZero() {
		execution.CreatedAt = time.Now().UTC()
	}

	triggerDataJSON, err := json.Marshal(execution.TriggerData)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger data: %w", err)
	}

	actionLogJSON, err := json.Marshal(execution.ActionLog)
	if err != nil {
		return fmt.Errorf("failed to marshal action log: %w", err)
	}

	query := `
		INSERT INTO workflow_executions (id, workflow_id, trigger_data, status, error_message, action_log, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.ExecContext(ctx, query,
		execution.ID,
		execution.WorkflowID,
		triggerDataJSON,
		execution.Status,
		execution.ErrorMessage,
		actionLogJSON,
		execution.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create workflow execution: %w", err)
	}

	return nil
}

// ExecutionsByWorkflow returns a workflow's execution records, newest first.
func (r *WorkflowRepository) ExecutionsByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.WorkflowExecution, error) {
	query := `
		SELECT id, workflow_id, trigger_data, status, error_message, action_log, created_at
		FROM workflow_executions
		WHERE workflow_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, workflowID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow executions: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	executions := make([]*models.WorkflowExecution, 0)

	for rows.Next() {
		var (
			execution                    models.WorkflowExecution
			triggerDataJSON, actionLogJSON []byte
			errorMessage                 sql.NullString
		)

		err := rows.Scan(
			&execution.ID,
			&execution.WorkflowID,
			&triggerDataJSON,
			&execution.Status,
			&errorMessage,
			&actionLogJSON,
			&execution.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow execution: %w", err)
		}

		execution.ErrorMessage = errorMessage.String

		if triggerDataJSON != nil {
			err := json.Unmarshal(triggerDataJSON, &execution.TriggerData)
			if err != nil {
				return nil, fmt.Errorf("failed to unmarshal trigger data: %w", err)
			}
		}

		if actionLogJSON != nil {
			err := json.Unmarshal(actionLogJSON, &execution.ActionLog)
			if err != nil {
				return nil, fmt.Errorf("failed to unmarshal action log: %w", err)
			}
		}

		executions = append(executions, &execution)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflow executions: %w", err)
	}

	return executions, nil
}

func (r *WorkflowRepository) queryWorkflows(ctx context.Context, query string, args ...any) ([]*models.Workflow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := r.scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return workflows, nil
}

func (r *WorkflowRepository) scanWorkflow(scanner interface{ Scan(dest ...any) error }) (*models.Workflow, error) {
	var (
		workflow                   models.Workflow
		conditionsJSON, actionsJSON []byte
	)

	err := scanner.Scan(
		&workflow.ID,
		&workflow.Owner,
		&workflow.Name,
		&workflow.TriggerType,
		&conditionsJSON,
		&actionsJSON,
		&workflow.IsActive,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if conditionsJSON != nil {
		err := json.Unmarshal(conditionsJSON, &workflow.TriggerConditions)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal trigger conditions: %w", err)
		}
	}

	if actionsJSON != nil {
		err := json.Unmarshal(actionsJSON, &workflow.Actions)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal actions: %w", err)
		}
	}

	return &workflow, nil
}
