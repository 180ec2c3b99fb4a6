package memory

import (
	"context"
	"sort"
	"time"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence"
)

type ruleRepository struct {
	p *Persistence
}

func (r *ruleRepository) ActiveRules(_ context.Context) ([]*models.AutomationRule, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	rules := make([]*models.AutomationRule, 0)

	for _, rule := range r.p.rules {
		if rule.IsActive {
			cloned := *rule
			rules = append(rules, &cloned)
		}
	}

	sort.Slice(rules, func(i, j int) bool { return rules[i].CreatedAt.Before(rules[j].CreatedAt) })

	return rules, nil
}

func (r *ruleRepository) RulesByOwner(_ context.Context, owner string) ([]*models.AutomationRule, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	rules := make([]*models.AutomationRule, 0)

	for _, rule := range r.p.rules {
		if rule.Owner == owner {
			cloned := *rule
			rules = append(rules, &cloned)
		}
	}

	sort.Slice(rules, func(i, j int) bool { return rules[i].CreatedAt.Before(rules[j].CreatedAt) })

	return rules, nil
}

func (r *ruleRepository) RuleByID(_ context.Context, id string) (*models.AutomationRule, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	rule, ok := r.p.rules[id]
	if !ok {
		return nil, persistence.ErrRuleNotFound
	}

	cloned := *rule

	return &cloned, nil
}

func (r *ruleRepository) SaveRule(_ context.Context, rule *models.AutomationRule) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	if rule.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}

		rule.ID = id
	}

	now := time.Now().UTC()

	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}

	rule.UpdatedAt = now

	cloned := *rule
	r.p.rules[rule.ID] = &cloned

	return nil
}

func (r *ruleRepository) DeleteRule(_ context.Context, id string) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	if _, ok := r.p.rules[id]; !ok {
		return persistence.ErrRuleNotFound
	}

	delete(r.p.rules, id)

	return nil
}

type workflowRepository struct {
	p *Persistence
}

func (r *workflowRepository) ActiveWorkflowsByTrigger(_ context.Context, trigger models.WorkflowTriggerType) ([]*models.Workflow, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	workflows := make([]*models.Workflow, 0)

	for _, workflow := range r.p.workflows {
		if workflow.IsActive && workflow.TriggerType == trigger {
			workflows = append(workflows, cloneWorkflow(workflow))
		}
	}

	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].CreatedAt.Before(workflows[j].CreatedAt)
	})

	return workflows, nil
}

func (r *workflowRepository) WorkflowsByOwner(_ context.Context, owner string) ([]*models.Workflow, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	workflows := make([]*models.Workflow, 0)

	for _, workflow := range r.p.workflows {
		if workflow.Owner == owner {
			workflows = append(workflows, cloneWorkflow(workflow))
		}
	}

	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].CreatedAt.Before(workflows[j].CreatedAt)
	})

	return workflows, nil
}

func (r *workflowRepository) WorkflowByID(_ context.Context, id string) (*models.Workflow, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	workflow, ok := r.p.workflows[id]
	if !ok {
		return nil, persistence.ErrWorkflowNotFound
	}

	return cloneWorkflow(workflow), nil
}

func (r *workflowRepository) SaveWorkflow(_ context.Context, workflow *models.Workflow) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	if workflow.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}

		workflow.ID = id
	}

	now := time.Now().UTC()

	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	r.p.workflows[workflow.ID] = cloneWorkflow(workflow)

	return nil
}

func (r *workflowRepository) DeleteWorkflow(_ context.Context, id string) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	if _, ok := r.p.workflows[id]; !ok {
		return persistence.ErrWorkflowNotFound
	}

	delete(r.p.workflows, id)
	delete(r.p.executions, id)

	return nil
}

func (r *workflowRepository) CreateExecution(_ context.Context, execution *models.WorkflowExecution) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	if execution.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}

		execution.ID = id
	}

	if execution.CreatedAt.IsZero() {
		execution.CreatedAt = time.Now().UTC()
	}

	cloned := *execution
	r.p.executions[execution.WorkflowID] = append(r.p.executions[execution.WorkflowID], &cloned)

	return nil
}

func (r *workflowRepository) ExecutionsByWorkflow(_ context.Context, workflowID string, limit int) ([]*models.WorkflowExecution, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	all := r.p.executions[workflowID]

	executions := make([]*models.WorkflowExecution, 0, len(all))

	for _, execution := range all {
		cloned := *execution
		executions = append(executions, &cloned)
	}

	sort.Slice(executions, func(i, j int) bool {
		return executions[i].CreatedAt.After(executions[j].CreatedAt)
	})

	if limit > 0 && len(executions) > limit {
		executions = executions[:limit]
	}

	return executions, nil
}

type executionLogRepository struct {
	p *Persistence
}

func (r *executionLogRepository) WasHandled(_ context.Context, dedupKey string) (bool, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	_, ok := r.p.handled[dedupKey]

	return ok, nil
}

func (r *executionLogRepository) MarkHandled(_ context.Context, execution *models.AutomationExecution) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	if execution.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}

		execution.ID = id
	}

	if execution.CreatedAt.IsZero() {
		execution.CreatedAt = time.Now().UTC()
	}

	// First writer wins; a duplicate mark is not an error.
	if _, ok := r.p.handled[execution.DedupKey]; ok {
		return nil
	}

	cloned := *execution
	r.p.handled[execution.DedupKey] = &cloned

	return nil
}

func cloneWorkflow(workflow *models.Workflow) *models.Workflow {
	cloned := *workflow
	cloned.Actions = make([]models.WorkflowAction, len(workflow.Actions))
	copy(cloned.Actions, workflow.Actions)

	return &cloned
}
