package automation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence/memory"
)

func TestDedupKeyDeterministic(t *testing.T) {
	key1 := DedupKey("rule-1", "entity-1", "2026-03-10")
	key2 := DedupKey("rule-1", "entity-1", "2026-03-10")

	assert.Equal(t, key1, key2)
	assert.Len(t, key1, 64)
}

func TestDedupKeyVariesPerComponent(t *testing.T) {
	base := DedupKey("rule-1", "entity-1", "2026-03-10")

	assert.NotEqual(t, base, DedupKey("rule-2", "entity-1", "2026-03-10"))
	assert.NotEqual(t, base, DedupKey("rule-1", "entity-2", "2026-03-10"))
	assert.NotEqual(t, base, DedupKey("rule-1", "entity-1", "2026-03-11"))
}

func TestBuckets(t *testing.T) {
	// 23:30 UTC-5 is already the next day in UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	instant := time.Date(2026, 3, 10, 23, 30, 0, 0, loc)

	assert.Equal(t, "2026-03-11", DayBucket(instant))
	assert.Equal(t, "2026-03-11T04", HourBucket(instant))
}

func TestGuardRoundTrip(t *testing.T) {
	ctx := context.Background()
	guard := NewGuard(memory.NewPersistence().ExecutionLog())

	key := DedupKey("rule-1", "meeting-1", "2026-03-10")

	handled, err := guard.AlreadyHandled(ctx, key)
	require.NoError(t, err)
	assert.False(t, handled)

	require.NoError(t, guard.MarkHandled(ctx, "rule-1", "meeting-1", key, "task-1"))

	handled, err = guard.AlreadyHandled(ctx, key)
	require.NoError(t, err)
	assert.True(t, handled)

	// Duplicate marks are first-writer-wins, not errors.
	require.NoError(t, guard.MarkHandled(ctx, "rule-1", "meeting-1", key, "task-2"))
}
