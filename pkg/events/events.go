// Package events defines the entity mutation events CRUD collaborators
// publish and the dispatcher consumes.
package events

import (
	"errors"
	"time"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
)

type EventType string

// Topic carries all entity mutation events.
const Topic = "crm.entity-mutations"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ContactCreatedEvent   EventType = "contact.created"
	DealStageChangedEvent EventType = "deal.stage_changed"
	TaskCompletedEvent    EventType = "task.completed"
)

var (
	ErrUnknownEventType = errors.New("unknown event type")
	ErrMissingOwner     = errors.New("entity mutation requires an owner")
	ErrMissingEntityID  = errors.New("entity mutation requires an entity ID")
)

// EntityMutation is the single event shape on the mutation topic. Data
// carries the trigger payload handed to matching workflows verbatim.
type EntityMutation struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Owner      string         `json:"owner"`
	EntityID   string         `json:"entity_id"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func (m EntityMutation) GetType() EventType {
	return m.Type
}

func (m EntityMutation) Validate() error {
	if _, ok := triggerTypes[m.Type]; !ok {
		return ErrUnknownEventType
	}

	if m.Owner == "" {
		return ErrMissingOwner
	}

	if m.EntityID == "" {
		return ErrMissingEntityID
	}

	return nil
}

// WorkflowTrigger maps the event type onto the workflow trigger vocabulary.
func (m EntityMutation) WorkflowTrigger() (models.WorkflowTriggerType, error) {
	trigger, ok := triggerTypes[m.Type]
	if !ok {
		return "", ErrUnknownEventType
	}

	return trigger, nil
}

var triggerTypes = map[EventType]models.WorkflowTriggerType{
	ContactCreatedEvent:   models.WorkflowTriggerContactCreated,
	DealStageChangedEvent: models.WorkflowTriggerDealStageChanged,
	TaskCompletedEvent:    models.WorkflowTriggerTaskCompleted,
}
