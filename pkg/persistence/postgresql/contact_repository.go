package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/models"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence"
)

// ContactRepository handles contact and activity database operations.
type ContactRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewContactRepository creates a new contact repository.
func NewContactRepository(db *sql.DB, logger *slog.Logger) *ContactRepository {
	return &ContactRepository{db: db, logger: logger}
}

// ContactByID returns a contact by its ID.
func (r *ContactRepository) ContactByID(ctx context.Context, id string) (*models.Contact, error) {
	query := `
		SELECT id, owner, name, email, company, created_at, updated_at
		FROM contacts
		WHERE id = $1
	`

	contact, err := scanContact(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrContactNotFound
		}

		return nil, fmt.Errorf("failed to scan contact: %w", err)
	}

	return contact, nil
}

// SaveContact creates or updates a contact.
func (r *ContactRepository) SaveContact(ctx context.Context, contact *models.Contact) error {
	if contact.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate contact ID: %w", err)
		}

		contact.ID = id.String()
	}

	now := time.Now().UTC()

	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = now
	}

	if contact.UpdatedAt.IsZero() {
		contact.UpdatedAt = now
	}

	query := `
		INSERT INTO contacts (id, owner, name, email, company, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			company = EXCLUDED.company,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		contact.ID,
		contact.Owner,
		contact.Name,
		contact.Email,
		contact.Company,
		contact.CreatedAt,
		contact.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save contact: %w", err)
	}

	return nil
}

// SaveActivity records a touch-point against a contact.
func (r *ContactRepository) SaveActivity(ctx context.Context, activity *models.Activity) error {
	if activity.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate activity ID: %w", err)
		}

		activity.ID = id.String()
	}

	if activity.OccurredAt.IsZero() {
		activity.OccurredAt = time.Now().UTC()
	}

	query := `
		INSERT INTO activities (id, owner, contact_id, kind, note, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		activity.ID,
		activity.Owner,
		activity.ContactID,
		activity.Kind,
		activity.Note,
		activity.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save activity: %w", err)
	}

	return nil
}

// InactiveContacts returns an owner's contacts not updated since the cutoff
// and with no activity logged after it. A contact whose record is stale but
// that has a recent activity is not inactive.
func (r *ContactRepository) InactiveContacts(ctx context.Context, owner string, cutoff time.Time) ([]*models.Contact, error) {
	query := `
		SELECT id, owner, name, email, company, created_at, updated_at
		FROM contacts
		WHERE owner = $1
		  AND updated_at <= $2
		  AND NOT EXISTS (
			SELECT 1 FROM activities
			WHERE activities.contact_id = contacts.id
			  AND activities.occurred_at > $2
		  )
		ORDER BY updated_at
	`

	rows, err := r.db.QueryContext(ctx, query, owner, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query inactive contacts: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	contacts := make([]*models.Contact, 0)

	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}

		contacts = append(contacts, contact)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}

	return contacts, nil
}

func scanContact(scanner interface{ Scan(dest ...any) error }) (*models.Contact, error) {
	var (
		contact        models.Contact
		email, company sql.NullString
	)

	err := scanner.Scan(
		&contact.ID,
		&contact.Owner,
		&contact.Name,
		&email,
		&company,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	contact.Email = email.String
	contact.Company = company.String

	return &contact, nil
}
