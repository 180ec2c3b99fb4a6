package scheduling

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence/memory"
)

// 2026-03-10 is a Tuesday.
var (
	slotDate  = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	wayBefore = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
)

func seedLink(t *testing.T, repo persistence.SchedulingRepository, durationMinutes int) *models.SchedulingLink {
	t.Helper()

	link := &models.SchedulingLink{
		Owner:           "alice",
		Slug:            "alice-intro",
		DurationMinutes: durationMinutes,
		IsActive:        true,
	}
	require.NoError(t, repo.SaveLink(context.Background(), link))

	return link
}

func seedWindow(t *testing.T, repo persistence.SchedulingRepository, weekday int, start, end string) {
	t.Helper()

	require.NoError(t, repo.SaveAvailabilitySlot(context.Background(), &models.AvailabilitySlot{
		Owner:     "alice",
		DayOfWeek: weekday,
		StartTime: start,
		EndTime:   end,
		IsActive:  true,
	}))
}

func startTimes(slots []models.TimeSlot) []time.Time {
	starts := make([]time.Time, 0, len(slots))
	for _, slot := range slots {
		starts = append(starts, slot.Start)
	}

	return starts
}

func TestGenerateSlotsBasicWindow(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPersistence().Scheduling()
	link := seedLink(t, repo, 30)
	seedWindow(t, repo, int(time.Tuesday), "09:00", "10:30")

	generator := NewGenerator(repo, slog.Default())

	slots, err := generator.GenerateSlots(ctx, link.ID, slotDate, wayBefore)
	require.NoError(t, err)

	assert.Equal(t, []time.Time{
		slotDate.Add(9 * time.Hour),
		slotDate.Add(9*time.Hour + 30*time.Minute),
		slotDate.Add(10 * time.Hour),
	}, startTimes(slots))
	assert.Equal(t, "9:00 AM", slots[0].Label)
}

func TestGenerateSlotsPartialSlotDoesNotFit(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPersistence().Scheduling()
	// 45-minute meetings in a 09:00-10:00 window: only 09:00 fits.
	link := seedLink(t, repo, 45)
	seedWindow(t, repo, int(time.Tuesday), "09:00", "10:00")

	generator := NewGenerator(repo, slog.Default())

	slots, err := generator.GenerateSlots(ctx, link.ID, slotDate, wayBefore)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{slotDate.Add(9 * time.Hour)}, startTimes(slots))
}

func TestGenerateSlotsExcludesBooked(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPersistence().Scheduling()
	link := seedLink(t, repo, 30)
	seedWindow(t, repo, int(time.Tuesday), "09:00", "10:00")

	booked := slotDate.Add(9 * time.Hour)
	require.NoError(t, repo.CreateMeeting(ctx, &models.ScheduledMeeting{
		SchedulingLinkID: link.ID,
		AttendeeName:     "Ada",
		AttendeeEmail:    "ada@example.com",
		StartTime:        booked,
		EndTime:          booked.Add(30 * time.Minute),
	}))

	generator := NewGenerator(repo, slog.Default())

	slots, err := generator.GenerateSlots(ctx, link.ID, slotDate, wayBefore)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{slotDate.Add(9*time.Hour + 30*time.Minute)}, startTimes(slots))
}

func TestGenerateSlotsExcludesPast(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPersistence().Scheduling()
	link := seedLink(t, repo, 30)
	seedWindow(t, repo, int(time.Tuesday), "09:00", "10:30")

	// Now is exactly 09:30: slots at or before it are gone. The 09:30 slot
	// itself is excluded; "strictly after now" is the rule.
	now := slotDate.Add(9*time.Hour + 30*time.Minute)

	generator := NewGenerator(repo, slog.Default())

	slots, err := generator.GenerateSlots(ctx, link.ID, slotDate, now)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{slotDate.Add(10 * time.Hour)}, startTimes(slots))
}

func TestGenerateSlotsOverlappingWindowsDeduplicated(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPersistence().Scheduling()
	link := seedLink(t, repo, 30)
	seedWindow(t, repo, int(time.Tuesday), "09:00", "10:00")
	seedWindow(t, repo, int(time.Tuesday), "09:30", "11:00")

	generator := NewGenerator(repo, slog.Default())

	slots, err := generator.GenerateSlots(ctx, link.ID, slotDate, wayBefore)
	require.NoError(t, err)

	// 09:30 falls in both windows but appears once, and the list is sorted.
	assert.Equal(t, []time.Time{
		slotDate.Add(9 * time.Hour),
		slotDate.Add(9*time.Hour + 30*time.Minute),
		slotDate.Add(10 * time.Hour),
		slotDate.Add(10*time.Hour + 30*time.Minute),
	}, startTimes(slots))
}

func TestGenerateSlotsNoWindowsThatDay(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPersistence().Scheduling()
	link := seedLink(t, repo, 30)
	seedWindow(t, repo, int(time.Wednesday), "09:00", "10:00")

	generator := NewGenerator(repo, slog.Default())

	slots, err := generator.GenerateSlots(ctx, link.ID, slotDate, wayBefore)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateSlotsSkipsMalformedWindow(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPersistence().Scheduling()
	link := seedLink(t, repo, 30)
	seedWindow(t, repo, int(time.Tuesday), "not-a-time", "10:00")
	seedWindow(t, repo, int(time.Tuesday), "14:00", "15:00")

	generator := NewGenerator(repo, slog.Default())

	slots, err := generator.GenerateSlots(ctx, link.ID, slotDate, wayBefore)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		slotDate.Add(14 * time.Hour),
		slotDate.Add(14*time.Hour + 30*time.Minute),
	}, startTimes(slots))
}

func TestGenerateSlotsUnknownLink(t *testing.T) {
	generator := NewGenerator(memory.NewPersistence().Scheduling(), slog.Default())

	_, err := generator.GenerateSlots(context.Background(), "missing", slotDate, wayBefore)
	require.Error(t, err)
	assert.True(t, persistence.IsNotFound(err))
}

func TestExpandWindowKeepsOverlaps(t *testing.T) {
	window := &models.AvailabilitySlot{StartTime: "09:00", EndTime: "10:00"}

	starts, err := expandWindow(window, slotDate, 30*time.Minute)
	require.NoError(t, err)
	assert.Len(t, starts, 2)

	// The naive expansion of two overlapping windows repeats starts; the
	// generator is what collapses them.
	second, err := expandWindow(&models.AvailabilitySlot{StartTime: "09:30", EndTime: "10:30"},
		slotDate, 30*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, starts, slotDate.Add(9*time.Hour+30*time.Minute))
	assert.Contains(t, second, slotDate.Add(9*time.Hour+30*time.Minute))
}
