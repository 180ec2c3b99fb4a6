// Package eventbus carries entity mutation events between CRUD collaborators
// and the workflow dispatcher.
package eventbus

import (
	"context"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/events"
)

type EventHandler func(ctx context.Context, mutation *events.EntityMutation) error

type EventPublisher interface {
	Publish(ctx context.Context, key string, mutation *events.EntityMutation) error
}

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
