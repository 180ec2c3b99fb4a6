package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/otelhelper"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/template"
)

var errUnknownTriggerType = errors.New("unknown trigger type")

// Scanner drives one automation scan: load active rules, evaluate each,
// filter through the guard and create tasks. A rule's failure is recorded in
// its result and never aborts the remaining rules.
type Scanner struct {
	persistence persistence.Persistence
	logger      *slog.Logger
	guard       *Guard
	evaluators  map[models.RuleTriggerType]Evaluator
	tracer      trace.Tracer
	now         func() time.Time
}

// ScannerOption customizes scanner construction.
type ScannerOption func(*Scanner)

// WithDealStageLookback overrides the deal-stage evaluator's lookback window.
func WithDealStageLookback(lookback time.Duration) ScannerOption {
	return func(s *Scanner) {
		s.evaluators[models.RuleTriggerDealStageChanged] = NewDealStageEvaluator(s.persistence.Deals(), lookback)
	}
}

// WithClock overrides the scan clock. Tests pin it.
func WithClock(now func() time.Time) ScannerOption {
	return func(s *Scanner) {
		s.now = now
	}
}

func NewScanner(p persistence.Persistence, logger *slog.Logger, opts ...ScannerOption) *Scanner {
	scanner := &Scanner{
		persistence: p,
		logger:      logger.With("module", "automation"),
		guard:       NewGuard(p.ExecutionLog()),
		tracer:      otel.Tracer("crm-automation"),
		now:         time.Now,
	}

	scanner.evaluators = map[models.RuleTriggerType]Evaluator{
		models.RuleTriggerMeetingScheduled: NewMeetingDelayEvaluator(p.Scheduling()),
		models.RuleTriggerDealStageChanged: NewDealStageEvaluator(p.Deals(), DefaultDealStageLookback),
		models.RuleTriggerContactInactive:  NewContactInactivityEvaluator(p.Contacts()),
	}

	for _, opt := range opts {
		opt(scanner)
	}

	return scanner
}

// Scan runs one full pass over the active rules. The returned slice has one
// entry per rule; the error is reserved for failures before any rule ran.
func (s *Scanner) Scan(ctx context.Context) ([]models.RuleResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "automation.scan")
	defer span.End()

	rules, err := s.persistence.Rules().ActiveRules(ctx)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to load active rules: %w", err)
	}

	now := s.now().UTC()
	results := make([]models.RuleResult, 0, len(rules))

	for _, rule := range rules {
		result := s.evaluateRule(ctx, rule, now)
		results = append(results, result)

		if result.Err != "" {
			s.logger.ErrorContext(ctx, "Rule evaluation failed", "rule_id", rule.ID, "error", result.Err)
		} else if result.TasksCreated > 0 {
			s.logger.InfoContext(ctx, "Rule created tasks", "rule_id", rule.ID, "tasks_created", result.TasksCreated)
		}
	}

	span.SetAttributes(attribute.Int("crm.scan.rules", len(rules)))

	return results, nil
}

// ValidateRule checks a rule's configuration without executing anything.
func (s *Scanner) ValidateRule(rule *models.AutomationRule) error {
	evaluator, ok := s.evaluators[rule.TriggerType]
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownTriggerType, rule.TriggerType)
	}

	err := evaluator.Validate(rule)
	if err != nil {
		return err
	}

	if rule.ActionType != models.RuleActionCreateTask {
		return fmt.Errorf("unknown action type: %s", rule.ActionType)
	}

	if rule.ActionConfig.TitleTemplate == "" {
		return errors.New("action_config.title_template is required")
	}

	return nil
}

func (s *Scanner) evaluateRule(ctx context.Context, rule *models.AutomationRule, now time.Time) models.RuleResult {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "automation.rule",
		attribute.String(otelhelper.RuleIDKey, rule.ID),
		attribute.String(otelhelper.TriggerTypeKey, string(rule.TriggerType)),
	)
	defer span.End()

	result := models.RuleResult{RuleID: rule.ID}

	evaluator, ok := s.evaluators[rule.TriggerType]
	if !ok {
		result.Err = fmt.Sprintf("unknown trigger type: %s", rule.TriggerType)
		otelhelper.SetError(span, errUnknownTriggerType)

		return result
	}

	matches, err := evaluator.Evaluate(ctx, rule, now)
	if err != nil {
		result.Err = err.Error()
		otelhelper.SetError(span, err)

		return result
	}

	for _, match := range matches {
		created, err := s.executeMatch(ctx, rule, match)
		if err != nil {
			result.Err = err.Error()
			otelhelper.SetError(span, err)

			return result
		}

		if created {
			result.TasksCreated++
		}
	}

	return result
}

// executeMatch applies the guard and, for an unhandled match, creates the
// task and its notification. The guard key is recorded after the task
// insert; a crash in between re-creates the task on the next scan rather
// than silently dropping it.
func (s *Scanner) executeMatch(ctx context.Context, rule *models.AutomationRule, match Match) (bool, error) {
	key := DedupKey(rule.ID, match.EntityID, match.BucketID)

	handled, err := s.guard.AlreadyHandled(ctx, key)
	if err != nil {
		return false, err
	}

	if handled {
		return false, nil
	}

	task := &models.Task{
		Owner:       rule.Owner,
		ContactID:   match.ContactID,
		DealID:      match.DealID,
		Title:       template.Render(rule.ActionConfig.TitleTemplate, match.Data),
		Description: match.Description,
		Priority:    rule.ActionConfig.Priority,
		Status:      models.TaskStatusPending,
		DueDate:     s.now().UTC(),
	}

	err = s.persistence.Tasks().CreateTask(ctx, task)
	if err != nil {
		return false, fmt.Errorf("failed to create task: %w", err)
	}

	notification := &models.Notification{
		Owner:   rule.Owner,
		Title:   "Automation created a task",
		Message: task.Title,
		Type:    models.NotificationTypeAutomation,
		Link:    "/tasks/" + task.ID,
	}

	err = s.persistence.Notifications().CreateNotification(ctx, notification)
	if err != nil {
		// The task exists; surface the notification failure without
		// retracting the work already done.
		return true, fmt.Errorf("failed to create notification: %w", err)
	}

	err = s.guard.MarkHandled(ctx, rule.ID, match.EntityID, key, task.ID)
	if err != nil {
		return true, err
	}

	return true, nil
}
