// Package main provides the CRM automation API server.
package main

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/automation"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/eventbus"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/events"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/registry"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/scheduling"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/web"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/workflow"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	channel     string
	engine      *workflow.Engine
	lookback    time.Duration
}

func NewAPI(
	logger *slog.Logger,
	p persistence.Persistence,
	reg *registry.Registry,
	eventBus eventbus.EventBus,
	channel string,
	dealStageLookback time.Duration,
) *API {
	return &API{
		logger:      logger,
		persistence: p,
		registry:    reg,
		eventBus:    eventBus,
		channel:     channel,
		engine:      workflow.NewEngine(p, reg, logger),
		lookback:    dealStageLookback,
	}
}

// attachInProcessDispatch subscribes the workflow engine to the API's own
// event bus. The in-memory channel never leaves this process, so without it
// published mutations would be accepted and then dropped unobserved; kafka
// deployments leave consumption to crm-dispatcher instead.
func (a *API) attachInProcessDispatch(ctx context.Context) error {
	for _, eventType := range []events.EventType{
		events.ContactCreatedEvent,
		events.DealStageChangedEvent,
		events.TaskCompletedEvent,
	} {
		if err := a.eventBus.Handle(eventType, a.engine.HandleMutation); err != nil {
			return err
		}
	}

	return a.eventBus.Subscribe(ctx)
}

func (a *API) App() *fiber.App {
	scanner := automation.NewScanner(a.persistence, a.logger,
		automation.WithDealStageLookback(a.lookback))
	generator := scheduling.NewGenerator(a.persistence.Scheduling(), a.logger)
	booker := scheduling.NewBooker(a.persistence.Scheduling(), a.logger)

	handlers := web.NewAPIHandlers(a.persistence, scanner, a.engine, generator, booker, a.eventBus, a.registry)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("CRM Automation API")
	})

	app.Post("/automation/scan", handlers.TriggerScan)
	app.Post("/events", handlers.PublishEvent)
	app.Get("/actions", handlers.GetAvailableActions)

	r := app.Group("/rules")
	r.Get("/", handlers.GetRules)
	r.Post("/", handlers.CreateRule)
	r.Get("/:id", handlers.GetRule)
	r.Put("/:id", handlers.UpdateRule)
	r.Delete("/:id", handlers.DeleteRule)

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Put("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/execute", handlers.ExecuteWorkflow)
	w.Get("/:id/executions", handlers.GetWorkflowExecutions)

	n := app.Group("/notifications")
	n.Get("/", handlers.GetNotifications)
	n.Post("/:id/read", handlers.MarkNotificationRead)
	n.Delete("/:id", handlers.DeleteNotification)

	l := app.Group("/links")
	l.Get("/:slug/slots", handlers.GetSlots)
	l.Post("/:slug/bookings", handlers.BookSlot)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(ctx context.Context, port int) error {
	if a.channel == "gochannel" {
		a.logger.InfoContext(ctx, "Consuming mutation events in-process")

		if err := a.attachInProcessDispatch(ctx); err != nil {
			return err
		}
	}

	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
