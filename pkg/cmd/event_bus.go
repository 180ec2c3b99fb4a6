package cmd

import (
	"log/slog"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/eventbus"
)

// NewEventBus builds the event bus for the named channel provider.
func NewEventBus(provider string, logger *slog.Logger) (eventbus.EventBus, error) {
	return eventbus.NewEventBus(provider, logger)
}
