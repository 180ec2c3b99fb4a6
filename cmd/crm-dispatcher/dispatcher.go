// Package main provides the workflow dispatcher service. It consumes entity
// mutation events from the bus and hands each to the workflow engine.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/config"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/eventbus"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/events"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/receivers/queue"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/registry"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/workflow"
)

type Dispatcher struct {
	id          string
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	engine      *workflow.Engine
	receiver    *queue.Receiver
}

func NewDispatcher(
	id string,
	p persistence.Persistence,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	reg *registry.Registry,
	queueConfig config.QueueConfig,
) (*Dispatcher, error) {
	d := &Dispatcher{
		id:          id,
		logger:      logger.With("dispatcher_id", id),
		persistence: p,
		eventBus:    eventBus,
		engine:      workflow.NewEngine(p, reg, logger),
	}

	if queueConfig.Enabled {
		receiver, err := queue.NewReceiver(queue.Config{
			Addr:     queueConfig.Addr,
			Password: queueConfig.Password,
			DB:       queueConfig.DB,
			Queue:    queueConfig.Name,
		}, logger)
		if err != nil {
			return nil, err
		}

		d.receiver = receiver
	}

	return d, nil
}

// Start registers the mutation handlers, starts the optional queue receiver,
// and blocks until the process receives SIGINT or SIGTERM.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.logger.InfoContext(ctx, "Starting dispatcher")

	for _, eventType := range []events.EventType{
		events.ContactCreatedEvent,
		events.DealStageChangedEvent,
		events.TaskCompletedEvent,
	} {
		if err := d.eventBus.Handle(eventType, d.engine.HandleMutation); err != nil {
			return err
		}
	}

	if err := d.eventBus.Subscribe(ctx); err != nil {
		return err
	}

	if d.receiver != nil {
		// Queued mutations are re-published onto the bus so every event,
		// regardless of origin, flows through the same subscriber path.
		err := d.receiver.Start(ctx, func(ctx context.Context, mutation *events.EntityMutation) error {
			return d.eventBus.Publish(ctx, mutation.EntityID, mutation)
		})
		if err != nil {
			return err
		}
	}

	d.logger.InfoContext(ctx, "Dispatcher started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	d.logger.InfoContext(ctx, "Shutting down dispatcher")

	if d.receiver != nil {
		if err := d.receiver.Stop(ctx); err != nil {
			d.logger.ErrorContext(ctx, "Failed to stop queue receiver", "error", err)
		}
	}

	return nil
}
