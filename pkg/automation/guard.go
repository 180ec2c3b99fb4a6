package automation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence"
)

// DedupKey derives the deterministic idempotency key for one rule hitting
// one entity within one dedup bucket. The same triple always hashes to the
// same key, so re-running a scan inside the bucket cannot duplicate work.
func DedupKey(ruleID, entityID, bucketID string) string {
	sum := sha256.Sum256([]byte(ruleID + "|" + entityID + "|" + bucketID))

	return hex.EncodeToString(sum[:])
}

// DayBucket returns the bucket ID for triggers deduplicated per UTC day.
func DayBucket(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// HourBucket returns the bucket ID for triggers deduplicated per UTC hour.
func HourBucket(t time.Time) string {
	return t.UTC().Format("2006-01-02T15")
}

// Guard answers "was this match already acted on?" against the append-only
// execution log.
type Guard struct {
	log persistence.ExecutionLogRepository
}

func NewGuard(log persistence.ExecutionLogRepository) *Guard {
	return &Guard{log: log}
}

// AlreadyHandled reports whether the key has been recorded.
func (g *Guard) AlreadyHandled(ctx context.Context, key string) (bool, error) {
	handled, err := g.log.WasHandled(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to check execution log: %w", err)
	}

	return handled, nil
}

// MarkHandled records the key along with the rule, entity and resulting task.
func (g *Guard) MarkHandled(ctx context.Context, ruleID, entityID, key, taskID string) error {
	err := g.log.MarkHandled(ctx, &models.AutomationExecution{
		RuleID:   ruleID,
		EntityID: entityID,
		DedupKey: key,
		TaskID:   taskID,
	})
	if err != nil {
		return fmt.Errorf("failed to record execution: %w", err)
	}

	return nil
}
