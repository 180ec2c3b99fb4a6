package models

import "time"

// AvailabilitySlot is a recurring weekly window during which the owner
// accepts bookings. Multiple windows per weekday are allowed and may overlap.
type AvailabilitySlot struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"        validate:"required"`
	DayOfWeek int       `json:"day_of_week"  validate:"min=0,max=6"` // 0 = Sunday
	StartTime string    `json:"start_time"   validate:"required"`    // "HH:MM", UTC wall clock
	EndTime   string    `json:"end_time"     validate:"required"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// SchedulingLink is a public, slug-addressable booking configuration.
type SchedulingLink struct {
	ID              string    `json:"id"`
	Owner           string    `json:"owner"            validate:"required"`
	Slug            string    `json:"slug"             validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,min=5"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

// ScheduledMeeting is a booked appointment against a scheduling link.
// For a given link no two meetings may share a start time; the storage
// layer enforces this with a uniqueness constraint.
type ScheduledMeeting struct {
	ID               string    `json:"id"`
	SchedulingLinkID string    `json:"scheduling_link_id"`
	AttendeeName     string    `json:"attendee_name"  validate:"required"`
	AttendeeEmail    string    `json:"attendee_email" validate:"required,email"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// TimeSlot is a candidate bookable start time derived from availability
// minus existing bookings.
type TimeSlot struct {
	Start time.Time `json:"start"`
	Label string    `json:"label"`
}
