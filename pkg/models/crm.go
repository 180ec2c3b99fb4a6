package models

import "time"

// Contact is a person record owned by a CRM user. The automation core only
// reads contacts; CRUD collaborators create and mutate them.
type Contact struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Company   string    `json:"company,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Deal is a sales opportunity moving through pipeline stages.
type Deal struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	ContactID string    `json:"contact_id,omitempty"`
	Name      string    `json:"name"`
	Stage     string    `json:"stage"`
	Value     float64   `json:"value,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Activity is a touch-point logged against a contact (call, email, note).
// The inactivity evaluator treats a contact with no activity after the
// cutoff as dormant regardless of updated_at churn.
type Activity struct {
	ID         string    `json:"id"`
	Owner      string    `json:"owner"`
	ContactID  string    `json:"contact_id"`
	Kind       string    `json:"kind,omitempty"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
