package memory

import (
	"context"
	"sort"
	"time"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence"
)

type taskRepository struct {
	p *Persistence
}

func (r *taskRepository) CreateTask(_ context.Context, task *models.Task) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	if task.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}

		task.ID = id
	}

	now := time.Now().UTC()

	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}

	task.UpdatedAt = now

	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}

	cloned := *task
	r.p.tasks[task.ID] = &cloned

	return nil
}

func (r *taskRepository) TaskByID(_ context.Context, id string) (*models.Task, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	task, ok := r.p.tasks[id]
	if !ok {
		return nil, persistence.ErrTaskNotFound
	}

	cloned := *task

	return &cloned, nil
}

func (r *taskRepository) TasksByOwner(_ context.Context, owner string) ([]*models.Task, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	tasks := make([]*models.Task, 0)

	for _, task := range r.p.tasks {
		if task.Owner == owner {
			cloned := *task
			tasks = append(tasks, &cloned)
		}
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })

	return tasks, nil
}

func (r *taskRepository) SaveTask(_ context.Context, task *models.Task) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	if _, ok := r.p.tasks[task.ID]; !ok {
		return persistence.ErrTaskNotFound
	}

	task.UpdatedAt = time.Now().UTC()

	cloned := *task
	r.p.tasks[task.ID] = &cloned

	return nil
}

type notificationRepository struct {
	p *Persistence
}

func (r *notificationRepository) CreateNotification(_ context.Context, notification *models.Notification) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	if notification.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}

		notification.ID = id
	}

	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}

	cloned := *notification
	r.p.notifications[notification.ID] = &cloned

	return nil
}

func (r *notificationRepository) NotificationsByOwner(_ context.Context, owner string) ([]*models.Notification, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	notifications := make([]*models.Notification, 0)

	for _, notification := range r.p.notifications {
		if notification.Owner == owner {
			cloned := *notification
			notifications = append(notifications, &cloned)
		}
	}

	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})

	return notifications, nil
}

func (r *notificationRepository) MarkNotificationRead(_ context.Context, id string) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	notification, ok := r.p.notifications[id]
	if !ok {
		return persistence.ErrNotificationNotFound
	}

	notification.Read = true

	return nil
}

func (r *notificationRepository) DeleteNotification(_ context.Context, id string) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	if _, ok := r.p.notifications[id]; !ok {
		return persistence.ErrNotificationNotFound
	}

	delete(r.p.notifications, id)

	return nil
}

type contactRepository struct {
	p *Persistence
}

func (r *contactRepository) ContactByID(_ context.Context, id string) (*models.Contact, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	contact, ok := r.p.contacts[id]
	if !ok {
		return nil, persistence.ErrContactNotFound
	}

	cloned := *contact

	return &cloned, nil
}

func (r *contactRepository) SaveContact(_ context.Context, contact *models.Contact) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	if contact.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}

		contact.ID = id
	}

	now := time.Now().UTC()

	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = now
	}

	// CRUD collaborators own this record's clock; a preset updated_at is kept.
	if contact.UpdatedAt.IsZero() {
		contact.UpdatedAt = now
	}

	cloned := *contact
	r.p.contacts[contact.ID] = &cloned

	return nil
}

func (r *contactRepository) SaveActivity(_ context.Context, activity *models.Activity) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	if activity.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}

		activity.ID = id
	}

	if activity.OccurredAt.IsZero() {
		activity.OccurredAt = time.Now().UTC()
	}

	cloned := *activity
	r.p.activities[activity.ContactID] = append(r.p.activities[activity.ContactID], &cloned)

	return nil
}

func (r *contactRepository) InactiveContacts(_ context.Context, owner string, cutoff time.Time) ([]*models.Contact, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	contacts := make([]*models.Contact, 0)

	for _, contact := range r.p.contacts {
		if contact.Owner != owner || contact.UpdatedAt.After(cutoff) {
			continue
		}

		if r.hasActivityAfter(contact.ID, cutoff) {
			continue
		}

		cloned := *contact
		contacts = append(contacts, &cloned)
	}

	sort.Slice(contacts, func(i, j int) bool {
		return contacts[i].UpdatedAt.Before(contacts[j].UpdatedAt)
	})

	return contacts, nil
}

func (r *contactRepository) hasActivityAfter(contactID string, cutoff time.Time) bool {
	for _, activity := range r.p.activities[contactID] {
		if activity.OccurredAt.After(cutoff) {
			return true
		}
	}

	return false
}

type dealRepository struct {
	p *Persistence
}

func (r *dealRepository) DealByID(_ context.Context, id string) (*models.Deal, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	deal, ok := r.p.deals[id]
	if !ok {
		return nil, persistence.ErrDealNotFound
	}

	cloned := *deal

	return &cloned, nil
}

func (r *dealRepository) SaveDeal(_ context.Context, deal *models.Deal) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	if deal.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}

		deal.ID = id
	}

	now := time.Now().UTC()

	if deal.CreatedAt.IsZero() {
		deal.CreatedAt = now
	}

	if deal.UpdatedAt.IsZero() {
		deal.UpdatedAt = now
	}

	cloned := *deal
	r.p.deals[deal.ID] = &cloned

	return nil
}

func (r *dealRepository) DealsInStageSince(_ context.Context, owner, stage string, since time.Time) ([]*models.Deal, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	deals := make([]*models.Deal, 0)

	for _, deal := range r.p.deals {
		if deal.Owner == owner && deal.Stage == stage && !deal.UpdatedAt.Before(since) {
			cloned := *deal
			deals = append(deals, &cloned)
		}
	}

	sort.Slice(deals, func(i, j int) bool { return deals[i].UpdatedAt.Before(deals[j].UpdatedAt) })

	return deals, nil
}
