package eventbus

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/channels/gochannel"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/events"
)

func newTestBus(t *testing.T) *WatermillEventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := NewWatermillEventBus(pub, sub, slog.Default())
	t.Cleanup(func() {
		_ = bus.Close()
	})

	return bus
}

func waitForMutation(t *testing.T, ch <-chan *events.EntityMutation) *events.EntityMutation {
	t.Helper()

	select {
	case mutation := <-ch:
		return mutation
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for mutation")

		return nil
	}
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := newTestBus(t)

	received := make(chan *events.EntityMutation, 1)
	require.NoError(t, bus.Handle(events.ContactCreatedEvent, func(_ context.Context, mutation *events.EntityMutation) error {
		received <- mutation

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	mutation := &events.EntityMutation{
		Type:       events.ContactCreatedEvent,
		Owner:      "alice",
		EntityID:   "contact-1",
		Data:       map[string]any{"contact_name": "Ada"},
		OccurredAt: time.Now().UTC(),
	}
	require.NoError(t, bus.Publish(ctx, "contact-1", mutation))
	assert.NotEmpty(t, mutation.ID, "publish assigns an ID")

	got := waitForMutation(t, received)
	assert.Equal(t, mutation.ID, got.ID)
	assert.Equal(t, "alice", got.Owner)
	assert.Equal(t, "Ada", got.Data["contact_name"])
}

func TestPublishRejectsInvalidMutation(t *testing.T) {
	bus := newTestBus(t)

	err := bus.Publish(context.Background(), "key", &events.EntityMutation{
		Type:     events.ContactCreatedEvent,
		EntityID: "contact-1",
	})
	assert.ErrorIs(t, err, events.ErrMissingOwner)
}

func TestSubscribeIgnoresUnhandledEventTypes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := newTestBus(t)

	received := make(chan *events.EntityMutation, 2)
	require.NoError(t, bus.Handle(events.TaskCompletedEvent, func(_ context.Context, mutation *events.EntityMutation) error {
		received <- mutation

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	// The contact event has no handler and is acked away.
	require.NoError(t, bus.Publish(ctx, "c-1", &events.EntityMutation{
		Type: events.ContactCreatedEvent, Owner: "alice", EntityID: "c-1",
	}))
	require.NoError(t, bus.Publish(ctx, "t-1", &events.EntityMutation{
		Type: events.TaskCompletedEvent, Owner: "alice", EntityID: "t-1",
	}))

	got := waitForMutation(t, received)
	assert.Equal(t, events.TaskCompletedEvent, got.Type)
}

func TestSubscribeRejectsMalformedPayload(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub, sub, err := gochannel.CreateChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := NewWatermillEventBus(pub, sub, slog.Default())
	t.Cleanup(func() {
		_ = bus.Close()
	})

	received := make(chan *events.EntityMutation, 1)
	require.NoError(t, bus.Handle(events.ContactCreatedEvent, func(_ context.Context, mutation *events.EntityMutation) error {
		received <- mutation

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	// A raw message missing the owner fails schema validation and never
	// reaches the handler.
	bad := message.NewMessage(watermill.NewULID(), []byte(`{"type":"contact.created","entity_id":"c-1"}`))
	bad.Metadata.Set(events.EventTypeMetadataKey, string(events.ContactCreatedEvent))
	require.NoError(t, pub.Publish(events.Topic, bad))

	select {
	case <-received:
		t.Fatal("malformed payload reached the handler")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestGenerateID(t *testing.T) {
	bus := newTestBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
