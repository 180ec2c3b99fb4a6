package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence"
)

// pqUniqueViolation is the postgres error code for a unique constraint hit.
const pqUniqueViolation = "23505"

// SchedulingRepository handles availability, link and meeting database operations.
type SchedulingRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSchedulingRepository creates a new scheduling repository.
func NewSchedulingRepository(db *sql.DB, logger *slog.Logger) *SchedulingRepository {
	return &SchedulingRepository{db: db, logger: logger}
}

// LinkBySlug returns an active scheduling link by its public slug.
func (r *SchedulingRepository) LinkBySlug(ctx context.Context, slug string) (*models.SchedulingLink, error) {
	query := `
		SELECT id, owner, slug, duration_minutes, is_active, created_at
		FROM scheduling_links
		WHERE slug = $1 AND is_active = true
	`

	link, err := scanLink(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrSchedulingLinkNotFound
		}

		return nil, fmt.Errorf("failed to scan scheduling link: %w", err)
	}

	return link, nil
}

// LinkByID returns a scheduling link by its ID.
func (r *SchedulingRepository) LinkByID(ctx context.Context, id string) (*models.SchedulingLink, error) {
	query := `
		SELECT id, owner, slug, duration_minutes, is_active, created_at
		FROM scheduling_links
		WHERE id = $1
	`

	link, err := scanLink(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrSchedulingLinkNotFound
		}

		return nil, fmt.Errorf("failed to scan scheduling link: %w", err)
	}

	return link, nil
}

// SaveLink creates or updates a scheduling link.
func (r *SchedulingRepository) SaveLink(ctx context.Context, link *models.SchedulingLink) error {
	if link.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate link ID: %w", err)
		}

		link.ID = id.String()
	}

	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO scheduling_links (id, owner, slug, duration_minutes, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			slug = EXCLUDED.slug,
			duration_minutes = EXCLUDED.duration_minutes,
			is_active = EXCLUDED.is_active
	`

	_, err := r.db.ExecContext(ctx, query,
		link.ID,
		link.Owner,
		link.Slug,
		link.DurationMinutes,
		link.IsActive,
		link.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save scheduling link: %w", err)
	}

	return nil
}

// ActiveSlotsByOwnerAndWeekday returns the owner's active availability
// windows for one weekday (0 = Sunday), earliest start first.
func (r *SchedulingRepository) ActiveSlotsByOwnerAndWeekday(ctx context.Context, owner string, weekday int) ([]*models.AvailabilitySlot, error) {
	query := `
		SELECT id, owner, day_of_week, start_time, end_time, is_active, created_at
		FROM availability_slots
		WHERE owner = $1 AND day_of_week = $2 AND is_active = true
		ORDER BY start_time
	`

	rows, err := r.db.QueryContext(ctx, query, owner, weekday)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability slots: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	slots := make([]*models.AvailabilitySlot, 0)

	for rows.Next() {
		var slot models.AvailabilitySlot

		err := rows.Scan(
			&slot.ID,
			&slot.Owner,
			&slot.DayOfWeek,
			&slot.StartTime,
			&slot.EndTime,
			&slot.IsActive,
			&slot.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan availability slot: %w", err)
		}

		slots = append(slots, &slot)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating availability slots: %w", err)
	}

	return slots, nil
}

// SaveAvailabilitySlot creates or updates an availability window.
func (r *SchedulingRepository) SaveAvailabilitySlot(ctx context.Context, slot *models.AvailabilitySlot) error {
	if slot.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate slot ID: %w", err)
		}

		slot.ID = id.String()
	}

	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO availability_slots (id, owner, day_of_week, start_time, end_time, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			day_of_week = EXCLUDED.day_of_week,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			is_active = EXCLUDED.is_active
	`

	_, err := r.db.ExecContext(ctx, query,
		slot.ID,
		slot.Owner,
		slot.DayOfWeek,
		slot.StartTime,
		slot.EndTime,
		slot.IsActive,
		slot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save availability slot: %w", err)
	}

	return nil
}

// MeetingsForLinkBetween returns a link's meetings starting inside [from, to).
func (r *SchedulingRepository) MeetingsForLinkBetween(ctx context.Context, linkID string, from, to time.Time) ([]*models.ScheduledMeeting, error) {
	query := `
		SELECT id, scheduling_link_id, attendee_name, attendee_email, start_time, end_time, notes, created_at
		FROM scheduled_meetings
		WHERE scheduling_link_id = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time
	`

	return r.queryMeetings(ctx, query, linkID, from, to)
}

// MeetingsForOwnerBetween returns all meetings booked against any of the
// owner's links starting inside [from, to).
func (r *SchedulingRepository) MeetingsForOwnerBetween(ctx context.Context, owner string, from, to time.Time) ([]*models.ScheduledMeeting, error) {
	query := `
		SELECT m.id, m.scheduling_link_id, m.attendee_name, m.attendee_email, m.start_time, m.end_time, m.notes, m.created_at
		FROM scheduled_meetings m
		JOIN scheduling_links l ON l.id = m.scheduling_link_id
		WHERE l.owner = $1 AND m.start_time >= $2 AND m.start_time < $3
		ORDER BY m.start_time
	`

	return r.queryMeetings(ctx, query, owner, from, to)
}

// CreateMeeting inserts a booking. Two bookings for the same link and start
// time race down to the unique constraint; the loser gets ErrSlotTaken.
func (r *SchedulingRepository) CreateMeeting(ctx context.Context, meeting *models.ScheduledMeeting) error {
	if meeting.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate meeting ID: %w", err)
		}

		meeting.ID = id.String()
	}

	if meeting.CreatedAt.IsZero() {
		meeting.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO scheduled_meetings (id, scheduling_link_id, attendee_name, attendee_email, start_time, end_time, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		meeting.ID,
		meeting.SchedulingLinkID,
		meeting.AttendeeName,
		meeting.AttendeeEmail,
		meeting.StartTime,
		meeting.EndTime,
		meeting.Notes,
		meeting.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return persistence.ErrSlotTaken
		}

		return fmt.Errorf("failed to create meeting: %w", err)
	}

	return nil
}

func (r *SchedulingRepository) queryMeetings(ctx context.Context, query string, args ...any) ([]*models.ScheduledMeeting, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query meetings: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	meetings := make([]*models.ScheduledMeeting, 0)

	for rows.Next() {
		var (
			meeting models.ScheduledMeeting
			notes   sql.NullString
		)

		err := rows.Scan(
			&meeting.ID,
			&meeting.SchedulingLinkID,
			&meeting.AttendeeName,
			&meeting.AttendeeEmail,
			&meeting.StartTime,
			&meeting.EndTime,
			&notes,
			&meeting.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meeting: %w", err)
		}

		meeting.Notes = notes.String

		meetings = append(meetings, &meeting)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating meetings: %w", err)
	}

	return meetings, nil
}

func scanLink(scanner interface{ Scan(dest ...any) error }) (*models.SchedulingLink, error) {
	var link models.SchedulingLink

	err := scanner.Scan(
		&link.ID,
		&link.Owner,
		&link.Slug,
		&link.DurationMinutes,
		&link.IsActive,
		&link.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &link, nil
}
