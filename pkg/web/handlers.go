package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/automation"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/eventbus"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/events"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/registry"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/scheduling"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/workflow"
)

const defaultExecutionLimit = 50

type APIHandlers struct {
	persistence persistence.Persistence
	scanner     *automation.Scanner
	engine      *workflow.Engine
	generator   *scheduling.Generator
	booker      *scheduling.Booker
	publisher   eventbus.EventPublisher
	registry    *registry.Registry
	validator   *validator.Validate
}

func NewAPIHandlers(
	p persistence.Persistence,
	scanner *automation.Scanner,
	engine *workflow.Engine,
	generator *scheduling.Generator,
	booker *scheduling.Booker,
	publisher eventbus.EventPublisher,
	reg *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		persistence: p,
		scanner:     scanner,
		engine:      engine,
		generator:   generator,
		booker:      booker,
		publisher:   publisher,
		registry:    reg,
		validator:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	message := "CRM automation API is healthy"
	httpStatus := http.StatusOK

	if err := h.persistence.HealthCheck(c.Context()); err != nil {
		status = "unhealthy"
		message = "CRM automation API is unhealthy: " + err.Error()
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"timestamp": time.Now().UTC(),
	})
}

// TriggerScan runs one automation scan pass and reports per-rule results.
func (h *APIHandlers) TriggerScan(c fiber.Ctx) error {
	results, err := h.scanner.Scan(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"results": results})
}

// PublishEvent accepts an entity mutation from a CRUD collaborator and hands
// it to the event bus. The caller gets 202 back before any workflow runs.
func (h *APIHandlers) PublishEvent(c fiber.Ctx) error {
	var req PublishEventRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	mutation := &events.EntityMutation{
		Type:       events.EventType(req.Type),
		Owner:      req.Owner,
		EntityID:   req.EntityID,
		Data:       req.Data,
		OccurredAt: time.Now().UTC(),
	}

	if err := mutation.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.publisher.Publish(c.Context(), req.EntityID, mutation); err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(mutation)
}

func (h *APIHandlers) GetRules(c fiber.Ctx) error {
	owner := c.Query("owner")
	if owner == "" {
		return badRequest(c, "owner query parameter is required")
	}

	rules, err := h.persistence.Rules().RulesByOwner(c.Context(), owner)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(rules)
}

func (h *APIHandlers) GetRule(c fiber.Ctx) error {
	rule, err := h.persistence.Rules().RuleByID(c.Context(), c.Params("id"))
	if err != nil {
		return handlePersistenceError(c, err)
	}

	return c.JSON(rule)
}

func (h *APIHandlers) CreateRule(c fiber.Ctx) error {
	rule, err := h.bindRule(c)
	if err != nil {
		return err
	}

	if err := h.persistence.Rules().SaveRule(c.Context(), rule); err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(rule)
}

// UpdateRule replaces a rule wholesale; partial updates are not supported.
func (h *APIHandlers) UpdateRule(c fiber.Ctx) error {
	existing, err := h.persistence.Rules().RuleByID(c.Context(), c.Params("id"))
	if err != nil {
		return handlePersistenceError(c, err)
	}

	rule, err := h.bindRule(c)
	if err != nil {
		return err
	}

	rule.ID = existing.ID
	rule.CreatedAt = existing.CreatedAt

	if err := h.persistence.Rules().SaveRule(c.Context(), rule); err != nil {
		return internalError(c, err)
	}

	return c.JSON(rule)
}

func (h *APIHandlers) DeleteRule(c fiber.Ctx) error {
	if err := h.persistence.Rules().DeleteRule(c.Context(), c.Params("id")); err != nil {
		return handlePersistenceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// bindRule parses, validates, and semantically checks a rule body.
func (h *APIHandlers) bindRule(c fiber.Ctx) (*models.AutomationRule, error) {
	var req CreateRuleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return nil, badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return nil, badRequest(c, err.Error())
	}

	rule := &models.AutomationRule{
		Owner:         req.Owner,
		Name:          req.Name,
		TriggerType:   req.TriggerType,
		TriggerConfig: req.TriggerConfig,
		ActionType:    req.ActionType,
		ActionConfig:  req.ActionConfig,
		IsActive:      true,
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	if err := h.scanner.ValidateRule(rule); err != nil {
		return nil, badRequest(c, err.Error())
	}

	return rule, nil
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	owner := c.Query("owner")
	if owner == "" {
		return badRequest(c, "owner query parameter is required")
	}

	workflows, err := h.persistence.Workflows().WorkflowsByOwner(c.Context(), owner)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(workflows)
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	wf, err := h.persistence.Workflows().WorkflowByID(c.Context(), c.Params("id"))
	if err != nil {
		return handlePersistenceError(c, err)
	}

	return c.JSON(wf)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	wf, err := h.bindWorkflow(c)
	if err != nil {
		return err
	}

	if err := h.persistence.Workflows().SaveWorkflow(c.Context(), wf); err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(wf)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	existing, err := h.persistence.Workflows().WorkflowByID(c.Context(), c.Params("id"))
	if err != nil {
		return handlePersistenceError(c, err)
	}

	wf, err := h.bindWorkflow(c)
	if err != nil {
		return err
	}

	wf.ID = existing.ID
	wf.CreatedAt = existing.CreatedAt

	if err := h.persistence.Workflows().SaveWorkflow(c.Context(), wf); err != nil {
		return internalError(c, err)
	}

	return c.JSON(wf)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	if err := h.persistence.Workflows().DeleteWorkflow(c.Context(), c.Params("id")); err != nil {
		return handlePersistenceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ExecuteWorkflow runs a workflow immediately, bypassing the event bus.
// The execution record is returned once the run finishes.
func (h *APIHandlers) ExecuteWorkflow(c fiber.Ctx) error {
	var req ExecuteWorkflowRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	execution, err := h.engine.ExecuteWorkflow(c.Context(), c.Params("id"), req.TriggerData)
	if err != nil {
		return handlePersistenceError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) GetWorkflowExecutions(c fiber.Ctx) error {
	limit := defaultExecutionLimit

	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			return badRequest(c, "limit must be a positive integer")
		}

		limit = parsed
	}

	executions, err := h.persistence.Workflows().ExecutionsByWorkflow(c.Context(), c.Params("id"), limit)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(executions)
}

func (h *APIHandlers) GetNotifications(c fiber.Ctx) error {
	owner := c.Query("owner")
	if owner == "" {
		return badRequest(c, "owner query parameter is required")
	}

	notifications, err := h.persistence.Notifications().NotificationsByOwner(c.Context(), owner)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(notifications)
}

func (h *APIHandlers) MarkNotificationRead(c fiber.Ctx) error {
	if err := h.persistence.Notifications().MarkNotificationRead(c.Context(), c.Params("id")); err != nil {
		return handlePersistenceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) DeleteNotification(c fiber.Ctx) error {
	if err := h.persistence.Notifications().DeleteNotification(c.Context(), c.Params("id")); err != nil {
		return handlePersistenceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetSlots lists the open slots of a public scheduling link for one day.
func (h *APIHandlers) GetSlots(c fiber.Ctx) error {
	link, err := h.persistence.Scheduling().LinkBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return handlePersistenceError(c, err)
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		return badRequest(c, "date query parameter is required (YYYY-MM-DD)")
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return badRequest(c, "date must be formatted as YYYY-MM-DD")
	}

	slots, err := h.generator.GenerateSlots(c.Context(), link.ID, date, time.Now().UTC())
	if err != nil {
		return handlePersistenceError(c, err)
	}

	return c.JSON(fiber.Map{
		"link":  link.Slug,
		"date":  dateStr,
		"slots": slots,
	})
}

// BookSlot books a meeting on a public scheduling link. A start time already
// held by another meeting yields 409.
func (h *APIHandlers) BookSlot(c fiber.Ctx) error {
	link, err := h.persistence.Scheduling().LinkBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return handlePersistenceError(c, err)
	}

	var req BookSlotRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	meeting, err := h.booker.Book(c.Context(), link.ID, req.Start, scheduling.Attendee{
		Name:  req.Name,
		Email: req.Email,
		Notes: req.Notes,
	})
	if err != nil {
		return handlePersistenceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(meeting)
}

func (h *APIHandlers) GetAvailableActions(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"actions": h.registry.AvailableActions()})
}

func (h *APIHandlers) bindWorkflow(c fiber.Ctx) (*models.Workflow, error) {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return nil, badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return nil, badRequest(c, err.Error())
	}

	wf := &models.Workflow{
		Owner:             req.Owner,
		Name:              req.Name,
		TriggerType:       req.TriggerType,
		TriggerConditions: req.TriggerConditions,
		Actions:           req.Actions,
		IsActive:          true,
	}
	if req.IsActive != nil {
		wf.IsActive = *req.IsActive
	}

	return wf, nil
}
