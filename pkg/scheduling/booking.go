package scheduling

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/otelhelper"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence"
)

// Attendee identifies who is booking a slot.
type Attendee struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Notes string `json:"notes,omitempty"`
}

// Booker commits a chosen slot. The storage layer's uniqueness constraint on
// (link, start_time) is the real exclusion point; two concurrent bookings of
// the same slot yield exactly one meeting and one ErrSlotTaken.
type Booker struct {
	scheduling persistence.SchedulingRepository
	logger     *slog.Logger
	tracer     trace.Tracer
}

func NewBooker(scheduling persistence.SchedulingRepository, logger *slog.Logger) *Booker {
	return &Booker{
		scheduling: scheduling,
		logger:     logger.With("module", "scheduling"),
		tracer:     otel.Tracer("crm-scheduling"),
	}
}

// Book persists a meeting for the slot. It returns ErrSchedulingLinkNotFound
// for a stale link and ErrSlotTaken when the slot was booked concurrently;
// any other error is a storage failure safe to retry.
func (b *Booker) Book(ctx context.Context, linkID string, start time.Time, attendee Attendee) (*models.ScheduledMeeting, error) {
	ctx, span := otelhelper.StartSpan(ctx, b.tracer, "scheduling.book",
		attribute.String(otelhelper.LinkIDKey, linkID),
	)
	defer span.End()

	link, err := b.scheduling.LinkByID(ctx, linkID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	start = start.UTC()

	meeting := &models.ScheduledMeeting{
		SchedulingLinkID: link.ID,
		AttendeeName:     attendee.Name,
		AttendeeEmail:    attendee.Email,
		StartTime:        start,
		EndTime:          start.Add(time.Duration(link.DurationMinutes) * time.Minute),
		Notes:            attendee.Notes,
	}

	err = b.scheduling.CreateMeeting(ctx, meeting)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	b.logger.InfoContext(ctx, "Booked meeting",
		"meeting_id", meeting.ID, "link_id", link.ID, "start", meeting.StartTime)
	span.SetAttributes(attribute.String(otelhelper.MeetingIDKey, meeting.ID))

	return meeting, nil
}
