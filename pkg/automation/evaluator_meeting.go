package automation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence"
)

var errDaysDelayRequired = errors.New("trigger_config.days_delay must be at least 1")

// MeetingDelayEvaluator matches meetings that took place N days ago. The
// window is the fixed UTC day bucket [now − N days at 00:00, +24h), so every
// scan within one day sees the same meetings and the day bucket dedups them.
type MeetingDelayEvaluator struct {
	scheduling persistence.SchedulingRepository
}

func NewMeetingDelayEvaluator(scheduling persistence.SchedulingRepository) *MeetingDelayEvaluator {
	return &MeetingDelayEvaluator{scheduling: scheduling}
}

func (e *MeetingDelayEvaluator) TriggerType() models.RuleTriggerType {
	return models.RuleTriggerMeetingScheduled
}

func (e *MeetingDelayEvaluator) Validate(rule *models.AutomationRule) error {
	if rule.TriggerConfig.DaysDelay < 1 {
		return errDaysDelayRequired
	}

	return nil
}

func (e *MeetingDelayEvaluator) Evaluate(ctx context.Context, rule *models.AutomationRule, now time.Time) ([]Match, error) {
	err := e.Validate(rule)
	if err != nil {
		return nil, err
	}

	day := now.UTC().AddDate(0, 0, -rule.TriggerConfig.DaysDelay)
	bucketStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	bucketEnd := bucketStart.Add(24 * time.Hour)

	meetings, err := e.scheduling.MeetingsForOwnerBetween(ctx, rule.Owner, bucketStart, bucketEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load meetings: %w", err)
	}

	matches := make([]Match, 0, len(meetings))

	for _, meeting := range meetings {
		matches = append(matches, Match{
			EntityID: meeting.ID,
			BucketID: DayBucket(bucketStart),
			Data: map[string]any{
				"attendee_name":  meeting.AttendeeName,
				"name":           meeting.AttendeeName,
				"attendee_email": meeting.AttendeeEmail,
				"meeting_date":   meeting.StartTime.UTC().Format("2006-01-02"),
			},
			Description: fmt.Sprintf("Follow up on the meeting with %s held on %s.",
				meeting.AttendeeName, meeting.StartTime.UTC().Format("January 2, 2006")),
		})
	}

	return matches, nil
}
