package scheduling

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence/memory"
)

func TestBook(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPersistence().Scheduling()
	link := seedLink(t, repo, 30)

	booker := NewBooker(repo, slog.Default())
	start := slotDate.Add(9 * time.Hour)

	meeting, err := booker.Book(ctx, link.ID, start, Attendee{
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
		Notes: "Wants a demo",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, meeting.ID)
	assert.Equal(t, link.ID, meeting.SchedulingLinkID)
	assert.Equal(t, start, meeting.StartTime)
	assert.Equal(t, start.Add(30*time.Minute), meeting.EndTime)
	assert.Equal(t, "Wants a demo", meeting.Notes)
}

func TestBookTakenSlot(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPersistence().Scheduling()
	link := seedLink(t, repo, 30)

	booker := NewBooker(repo, slog.Default())
	start := slotDate.Add(9 * time.Hour)

	_, err := booker.Book(ctx, link.ID, start, Attendee{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = booker.Book(ctx, link.ID, start, Attendee{Name: "Grace", Email: "grace@example.com"})
	require.Error(t, err)
	assert.True(t, persistence.IsSlotTaken(err))
}

func TestBookUnknownLink(t *testing.T) {
	booker := NewBooker(memory.NewPersistence().Scheduling(), slog.Default())

	_, err := booker.Book(context.Background(), "missing", slotDate, Attendee{Name: "Ada", Email: "ada@example.com"})
	require.Error(t, err)
	assert.True(t, persistence.IsNotFound(err))
}

func TestBookConcurrentSameSlot(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPersistence().Scheduling()
	link := seedLink(t, repo, 30)

	booker := NewBooker(repo, slog.Default())
	start := slotDate.Add(9 * time.Hour)

	const attempts = 16

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		taken     int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := booker.Book(ctx, link.ID, start, Attendee{Name: "Ada", Email: "ada@example.com"})

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				succeeded++
			case persistence.IsSlotTaken(err):
				taken++
			default:
				t.Errorf("unexpected booking error: %v", err)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, succeeded, "exactly one booking must win")
	assert.Equal(t, attempts-1, taken)

	meetings, err := repo.MeetingsForLinkBetween(ctx, link.ID, slotDate, slotDate.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, meetings, 1)
}

func TestBookedSlotDisappearsFromGeneration(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPersistence().Scheduling()
	link := seedLink(t, repo, 30)
	seedWindow(t, repo, int(time.Tuesday), "09:00", "10:00")

	booker := NewBooker(repo, slog.Default())
	generator := NewGenerator(repo, slog.Default())

	before, err := generator.GenerateSlots(ctx, link.ID, slotDate, wayBefore)
	require.NoError(t, err)
	require.Len(t, before, 2)

	_, err = booker.Book(ctx, link.ID, before[0].Start, Attendee{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	after, err := generator.GenerateSlots(ctx, link.ID, slotDate, wayBefore)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, before[1].Start, after[0].Start)
}
