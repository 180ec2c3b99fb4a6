package automation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence"
)

// DefaultDealStageLookback is how far back a deal's updated_at may lie for
// the deal to count as "just moved" into the target stage. A polling proxy
// for a real change event; surfaced as configuration because no invariant
// pins the value.
const DefaultDealStageLookback = time.Hour

var errStageRequired = errors.New("trigger_config.stage is required")

// DealStageEvaluator matches deals sitting in a target stage that were
// updated within the lookback window.
type DealStageEvaluator struct {
	deals    persistence.DealRepository
	lookback time.Duration
}

func NewDealStageEvaluator(deals persistence.DealRepository, lookback time.Duration) *DealStageEvaluator {
	if lookback <= 0 {
		lookback = DefaultDealStageLookback
	}

	return &DealStageEvaluator{deals: deals, lookback: lookback}
}

func (e *DealStageEvaluator) TriggerType() models.RuleTriggerType {
	return models.RuleTriggerDealStageChanged
}

func (e *DealStageEvaluator) Validate(rule *models.AutomationRule) error {
	if rule.TriggerConfig.Stage == "" {
		return errStageRequired
	}

	return nil
}

func (e *DealStageEvaluator) Evaluate(ctx context.Context, rule *models.AutomationRule, now time.Time) ([]Match, error) {
	err := e.Validate(rule)
	if err != nil {
		return nil, err
	}

	since := now.Add(-e.lookback)

	deals, err := e.deals.DealsInStageSince(ctx, rule.Owner, rule.TriggerConfig.Stage, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load deals: %w", err)
	}

	matches := make([]Match, 0, len(deals))

	for _, deal := range deals {
		// The bucket is keyed to the change instant, not the scan instant:
		// successive scans inside the lookback window see the same key, and
		// re-entering the stage advances updated_at into a fresh bucket.
		matches = append(matches, Match{
			EntityID:  deal.ID,
			BucketID:  HourBucket(deal.UpdatedAt),
			ContactID: deal.ContactID,
			DealID:    deal.ID,
			Data: map[string]any{
				"deal_name": deal.Name,
				"name":      deal.Name,
				"stage":     deal.Stage,
			},
			Description: fmt.Sprintf("Deal %q moved to stage %q.", deal.Name, deal.Stage),
		})
	}

	return matches, nil
}
