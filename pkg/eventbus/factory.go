package eventbus

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/channels/gochannel"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/channels/kafka"
)

// NewEventBus builds an event bus on the named channel. "gochannel" keeps
// everything in-process; "kafka" requires KAFKA_BROKERS.
func NewEventBus(channel string, logger *slog.Logger) (EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	switch channel {
	case "gochannel", "":
		pub, sub, err := gochannel.CreateChannel(wmLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create gochannel: %w", err)
		}

		return NewWatermillEventBus(pub, sub, logger), nil
	case "kafka":
		pub, sub, err := kafka.CreateChannel(wmLogger, "crm-dispatcher")
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka channel: %w", err)
		}

		return NewWatermillEventBus(pub, sub, logger), nil
	default:
		return nil, fmt.Errorf("unknown event bus channel: %s", channel)
	}
}
