// Package postgresql provides the PostgreSQL persistence implementation for
// the automation core.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // postgres driver

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger

	ruleRepo         *RuleRepository
	workflowRepo     *WorkflowRepository
	taskRepo         *TaskRepository
	notificationRepo *NotificationRepository
	contactRepo      *ContactRepository
	dealRepo         *DealRepository
	schedulingRepo   *SchedulingRepository
	executionLogRepo *ExecutionLogRepository
}

// NewPersistence connects to PostgreSQL, runs pending migrations and returns
// the persistence layer.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:               database,
		logger:           logger,
		ruleRepo:         NewRuleRepository(database, logger),
		workflowRepo:     NewWorkflowRepository(database, logger),
		taskRepo:         NewTaskRepository(database, logger),
		notificationRepo: NewNotificationRepository(database, logger),
		contactRepo:      NewContactRepository(database, logger),
		dealRepo:         NewDealRepository(database, logger),
		schedulingRepo:   NewSchedulingRepository(database, logger),
		executionLogRepo: NewExecutionLogRepository(database, logger),
	}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) Rules() persistence.RuleRepository                 { return p.ruleRepo }
func (p *Persistence) Workflows() persistence.WorkflowRepository         { return p.workflowRepo }
func (p *Persistence) Tasks() persistence.TaskRepository                 { return p.taskRepo }
func (p *Persistence) Notifications() persistence.NotificationRepository { return p.notificationRepo }
func (p *Persistence) Contacts() persistence.ContactRepository           { return p.contactRepo }
func (p *Persistence) Deals() persistence.DealRepository                 { return p.dealRepo }
func (p *Persistence) Scheduling() persistence.SchedulingRepository      { return p.schedulingRepo }
func (p *Persistence) ExecutionLog() persistence.ExecutionLogRepository  { return p.executionLogRepo }
