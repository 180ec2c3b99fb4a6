package memory

import (
	"context"
	"sort"
	"time"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence"
)

type schedulingRepository struct {
	p *Persistence
}

func (r *schedulingRepository) LinkBySlug(_ context.Context, slug string) (*models.SchedulingLink, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	for _, link := range r.p.links {
		if link.Slug == slug && link.IsActive {
			cloned := *link

			return &cloned, nil
		}
	}

	return nil, persistence.ErrSchedulingLinkNotFound
}

func (r *schedulingRepository) LinkByID(_ context.Context, id string) (*models.SchedulingLink, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	link, ok := r.p.links[id]
	if !ok {
		return nil, persistence.ErrSchedulingLinkNotFound
	}

	cloned := *link

	return &cloned, nil
}

func (r *schedulingRepository) SaveLink(_ context.Context, link *models.SchedulingLink) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	if link.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}

		link.ID = id
	}

	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}

	cloned := *link
	r.p.links[link.ID] = &cloned

	return nil
}

func (r *schedulingRepository) ActiveSlotsByOwnerAndWeekday(_ context.Context, owner string, weekday int) ([]*models.AvailabilitySlot, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	slots := make([]*models.AvailabilitySlot, 0)

	for _, slot := range r.p.slots {
		if slot.Owner == owner && slot.DayOfWeek == weekday && slot.IsActive {
			cloned := *slot
			slots = append(slots, &cloned)
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].StartTime < slots[j].StartTime })

	return slots, nil
}

func (r *schedulingRepository) SaveAvailabilitySlot(_ context.Context, slot *models.AvailabilitySlot) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	if slot.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}

		slot.ID = id
	}

	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now().UTC()
	}

	cloned := *slot
	r.p.slots[slot.ID] = &cloned

	return nil
}

func (r *schedulingRepository) MeetingsForLinkBetween(_ context.Context, linkID string, from, to time.Time) ([]*models.ScheduledMeeting, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	meetings := make([]*models.ScheduledMeeting, 0)

	for _, meeting := range r.p.meetings {
		if meeting.SchedulingLinkID == linkID && inRange(meeting.StartTime, from, to) {
			cloned := *meeting
			meetings = append(meetings, &cloned)
		}
	}

	sortMeetings(meetings)

	return meetings, nil
}

func (r *schedulingRepository) MeetingsForOwnerBetween(_ context.Context, owner string, from, to time.Time) ([]*models.ScheduledMeeting, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	meetings := make([]*models.ScheduledMeeting, 0)

	for _, meeting := range r.p.meetings {
		link, ok := r.p.links[meeting.SchedulingLinkID]
		if !ok || link.Owner != owner {
			continue
		}

		if inRange(meeting.StartTime, from, to) {
			cloned := *meeting
			meetings = append(meetings, &cloned)
		}
	}

	sortMeetings(meetings)

	return meetings, nil
}

// CreateMeeting books a slot. The mutex serializes concurrent bookings the
// way the SQL backend's unique constraint does: exactly one caller wins a
// given link+start pair.
func (r *schedulingRepository) CreateMeeting(_ context.Context, meeting *models.ScheduledMeeting) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	key := meetingKey(meeting.SchedulingLinkID, meeting.StartTime)
	if r.p.meetingStarts[key] {
		return persistence.ErrSlotTaken
	}

	if meeting.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}

		meeting.ID = id
	}

	if meeting.CreatedAt.IsZero() {
		meeting.CreatedAt = time.Now().UTC()
	}

	cloned := *meeting
	r.p.meetings[meeting.ID] = &cloned
	r.p.meetingStarts[key] = true

	return nil
}

func meetingKey(linkID string, start time.Time) string {
	return linkID + "|" + start.UTC().Format(time.RFC3339Nano)
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func sortMeetings(meetings []*models.ScheduledMeeting) {
	sort.Slice(meetings, func(i, j int) bool {
		return meetings[i].StartTime.Before(meetings[j].StartTime)
	})
}
