// Package scheduling implements availability slot generation and
// conflict-free meeting booking.
package scheduling

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence"
)

// Generator derives bookable time slots from recurring availability windows
// minus existing bookings. It only reads; safe under unlimited concurrency.
type Generator struct {
	scheduling persistence.SchedulingRepository
	logger     *slog.Logger
}

func NewGenerator(scheduling persistence.SchedulingRepository, logger *slog.Logger) *Generator {
	return &Generator{scheduling: scheduling, logger: logger.With("module", "scheduling")}
}

// GenerateSlots returns the bookable slots for one link on one date, in
// chronological order, deduplicated across overlapping availability windows.
// A slot is bookable when it starts strictly after now and no meeting for
// the link already holds the start time. All wall-clock times are UTC.
func (g *Generator) GenerateSlots(ctx context.Context, linkID string, date time.Time, now time.Time) ([]models.TimeSlot, error) {
	link, err := g.scheduling.LinkByID(ctx, linkID)
	if err != nil {
		return nil, err
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	weekday := int(dayStart.Weekday())

	windows, err := g.scheduling.ActiveSlotsByOwnerAndWeekday(ctx, link.Owner, weekday)
	if err != nil {
		return nil, fmt.Errorf("failed to load availability windows: %w", err)
	}

	meetings, err := g.scheduling.MeetingsForLinkBetween(ctx, linkID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to load existing meetings: %w", err)
	}

	booked := make(map[time.Time]bool, len(meetings))
	for _, meeting := range meetings {
		booked[meeting.StartTime.UTC()] = true
	}

	duration := time.Duration(link.DurationMinutes) * time.Minute
	seen := make(map[time.Time]bool)
	slots := make([]models.TimeSlot, 0)

	for _, window := range windows {
		starts, err := expandWindow(window, dayStart, duration)
		if err != nil {
			g.logger.WarnContext(ctx, "Skipping malformed availability window",
				"slot_id", window.ID, "error", err)

			continue
		}

		for _, start := range starts {
			if !start.After(now) || booked[start] || seen[start] {
				continue
			}

			seen[start] = true
			slots = append(slots, models.TimeSlot{
				Start: start,
				Label: start.Format("3:04 PM"),
			})
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })

	return slots, nil
}

// expandWindow steps through one availability window and returns every
// candidate start whose full duration fits before the window's end. It does
// not deduplicate: overlapping windows yield overlapping starts, and the
// caller is responsible for collapsing them.
func expandWindow(window *models.AvailabilitySlot, dayStart time.Time, duration time.Duration) ([]time.Time, error) {
	windowStart, err := atClock(dayStart, window.StartTime)
	if err != nil {
		return nil, fmt.Errorf("bad start_time %q: %w", window.StartTime, err)
	}

	windowEnd, err := atClock(dayStart, window.EndTime)
	if err != nil {
		return nil, fmt.Errorf("bad end_time %q: %w", window.EndTime, err)
	}

	if duration <= 0 {
		return nil, fmt.Errorf("non-positive slot duration %s", duration)
	}

	starts := make([]time.Time, 0)

	for start := windowStart; !start.Add(duration).After(windowEnd); start = start.Add(duration) {
		starts = append(starts, start)
	}

	return starts, nil
}

// atClock anchors an "HH:MM" wall-clock string onto a day.
func atClock(dayStart time.Time, clock string) (time.Time, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}

	return dayStart.Add(time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute), nil
}
