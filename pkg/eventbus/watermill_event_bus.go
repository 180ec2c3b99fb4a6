package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/xeipuuv/gojsonschema"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/events"
)

// WatermillEventBus routes entity mutations over any watermill channel
// (gochannel in-process, kafka for distributed deployments).
type WatermillEventBus struct {
	publisher     message.Publisher
	subscriber    message.Subscriber
	subscriptions map[events.EventType]EventHandler
	logger        *slog.Logger
}

func NewWatermillEventBus(pub message.Publisher, sub message.Subscriber, logger *slog.Logger) *WatermillEventBus {
	return &WatermillEventBus{
		publisher:     pub,
		subscriber:    sub,
		subscriptions: make(map[events.EventType]EventHandler),
		logger:        logger.With("module", "eventbus"),
	}
}

func (eb *WatermillEventBus) GenerateID() string {
	return watermill.NewULID()
}

func (eb *WatermillEventBus) Publish(ctx context.Context, key string, mutation *events.EntityMutation) error {
	err := mutation.Validate()
	if err != nil {
		return err
	}

	if mutation.ID == "" {
		mutation.ID = eb.GenerateID()
	}

	payload, err := json.Marshal(mutation)
	if err != nil {
		return err
	}

	msg := message.NewMessage("msg-"+eb.GenerateID(), payload)
	msg.Metadata.Set(events.EventMetadataKey, key)
	msg.Metadata.Set(events.EventTypeMetadataKey, string(mutation.Type))

	return eb.publisher.Publish(events.Topic, msg)
}

func (eb *WatermillEventBus) Handle(eventType events.EventType, handler EventHandler) error {
	eb.subscriptions[eventType] = handler

	return nil
}

// Subscribe starts consuming the mutation topic. Each payload is validated
// against the mutation schema before any handler sees it; malformed messages
// are nacked.
func (eb *WatermillEventBus) Subscribe(ctx context.Context) error {
	messages, err := eb.subscriber.Subscribe(ctx, events.Topic)
	if err != nil {
		return err
	}

	schema := gojsonschema.NewGoLoader(events.Schema())

	go func() {
		for msg := range messages {
			eventType := events.EventType(msg.Metadata.Get(events.EventTypeMetadataKey))

			handler, exists := eb.subscriptions[eventType]
			if !exists {
				msg.Ack()

				continue
			}

			result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(msg.Payload))
			if err != nil || !result.Valid() {
				eb.logger.Error("Rejecting malformed mutation payload",
					"message_id", msg.UUID, "event_type", eventType)
				msg.Nack()

				continue
			}

			var mutation events.EntityMutation

			err = json.Unmarshal(msg.Payload, &mutation)
			if err != nil {
				msg.Nack()

				continue
			}

			err = handler(ctx, &mutation)
			if err != nil {
				eb.logger.Error("Mutation handler failed",
					"message_id", msg.UUID, "event_type", eventType, "error", err)
				msg.Nack()

				continue
			}

			msg.Ack()
		}
	}()

	return nil
}

func (eb *WatermillEventBus) Close() error {
	err := eb.publisher.Close()
	if err != nil {
		return err
	}

	return eb.subscriber.Close()
}
