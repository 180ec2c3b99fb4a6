package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
)

// ExecutionLogRepository handles the append-only automation execution log that
// backs the idempotency guard.
type ExecutionLogRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExecutionLogRepository creates a new execution log repository.
func NewExecutionLogRepository(db *sql.DB, logger *slog.Logger) *ExecutionLogRepository {
	return &ExecutionLogRepository{db: db, logger: logger}
}

// WasHandled reports whether a dedup key has already been recorded.
func (r *ExecutionLogRepository) WasHandled(ctx context.Context, dedupKey string) (bool, error) {
	var exists bool

	query := `SELECT EXISTS (SELECT 1 FROM automation_executions WHERE dedup_key = $1)`

	err := r.db.QueryRowContext(ctx, query, dedupKey).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check dedup key: %w", err)
	}

	return exists, nil
}

// MarkHandled records an execution. ON CONFLICT DO NOTHING keeps concurrent
// scanners from failing when both mark the same key.
func (r *ExecutionLogRepository) MarkHandled(ctx context.Context, execution *models.AutomationExecution) error {
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

	query := `
		INSERT INTO automation_executions (id, rule_id, entity_id, dedup_key, task_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (dedup_key) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		execution.ID,
		execution.RuleID,
		execution.EntityID,
		execution.DedupKey,
		nullableID(execution.TaskID),
		execution.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to mark execution handled: %w", err)
	}

	return nil
}
