package automation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence"
)

var errDaysInactiveRequired = errors.New("trigger_config.days_inactive must be at least 1")

// ContactInactivityEvaluator matches contacts untouched for N days. A
// contact with any activity after the cutoff is active no matter how stale
// its own record is.
type ContactInactivityEvaluator struct {
	contacts persistence.ContactRepository
}

func NewContactInactivityEvaluator(contacts persistence.ContactRepository) *ContactInactivityEvaluator {
	return &ContactInactivityEvaluator{contacts: contacts}
}

func (e *ContactInactivityEvaluator) TriggerType() models.RuleTriggerType {
	return models.RuleTriggerContactInactive
}

func (e *ContactInactivityEvaluator) Validate(rule *models.AutomationRule) error {
	if rule.TriggerConfig.DaysInactive < 1 {
		return errDaysInactiveRequired
	}

	return nil
}

func (e *ContactInactivityEvaluator) Evaluate(ctx context.Context, rule *models.AutomationRule, now time.Time) ([]Match, error) {
	err := e.Validate(rule)
	if err != nil {
		return nil, err
	}

	cutoff := now.AddDate(0, 0, -rule.TriggerConfig.DaysInactive)

	contacts, err := e.contacts.InactiveContacts(ctx, rule.Owner, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to load inactive contacts: %w", err)
	}

	matches := make([]Match, 0, len(contacts))

	for _, contact := range contacts {
		matches = append(matches, Match{
			EntityID:  contact.ID,
			BucketID:  DayBucket(now),
			ContactID: contact.ID,
			Data: map[string]any{
				"contact_name": contact.Name,
				"name":         contact.Name,
				"company":      contact.Company,
			},
			Description: fmt.Sprintf("No activity with %s for %d days. Reach out to re-engage.",
				contact.Name, rule.TriggerConfig.DaysInactive),
		})
	}

	return matches, nil
}
