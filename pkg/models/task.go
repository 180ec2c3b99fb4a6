package models

import "time"

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// Task is a unit of follow-up work, created by a human or by the automation
// engine. Status is mutated independently by humans after creation.
type Task struct {
	ID          string     `json:"id"`
	Owner       string     `json:"owner"       validate:"required"`
	ContactID   string     `json:"contact_id,omitempty"`
	DealID      string     `json:"deal_id,omitempty"`
	Title       string     `json:"title"       validate:"required"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	Status      TaskStatus `json:"status"`
	DueDate     time.Time  `json:"due_date"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NotificationTypeAutomation marks notifications emitted by the automation engine.
const NotificationTypeAutomation = "automation"

// Notification is an ephemeral user-facing message. Nothing in the core
// depends on it after creation; users mark it read or delete it.
type Notification struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"   validate:"required"`
	Title     string    `json:"title"   validate:"required"`
	Message   string    `json:"message,omitempty"`
	Type      string    `json:"type"`
	Link      string    `json:"link,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
