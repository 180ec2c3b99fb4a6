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

// DealRepository handles deal database operations.
type DealRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewDealRepository creates a new deal repository.
func NewDealRepository(db *sql.DB, logger *slog.Logger) *DealRepository {
	return &DealRepository{db: db, logger: logger}
}

// DealByID returns a deal by its ID.
func (r *DealRepository) DealByID(ctx context.Context, id string) (*models.Deal, error) {
	query := `
		SELECT id, owner, contact_id, name, stage, value, created_at, updated_at
		FROM deals
		WHERE id = $1
	`

	deal, err := scanDeal(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrDealNotFound
		}

		return nil, fmt.Errorf("failed to scan deal: %w", err)
	}

	return deal, nil
}

// SaveDeal creates or updates a deal. A stage change lands here as an
// updated row; the deal-stage evaluator reads it back via DealsInStageSince.
func (r *DealRepository) SaveDeal(ctx context.Context, deal *models.Deal) error {
	if deal.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate deal ID: %w", err)
		}

		deal.ID = id.String()
	}

	now := time.Now().UTC()

	if deal.CreatedAt.IsZero() {
		deal.CreatedAt = now
	}

	// CRUD collaborators own this record's clock; a preset updated_at is kept.
	if deal.UpdatedAt.IsZero() {
		deal.UpdatedAt = now
	}

	query := `
		INSERT INTO deals (id, owner, contact_id, name, stage, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			contact_id = EXCLUDED.contact_id,
			name = EXCLUDED.name,
			stage = EXCLUDED.stage,
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		deal.ID,
		deal.Owner,
		nullableID(deal.ContactID),
		deal.Name,
		deal.Stage,
		deal.Value,
		deal.CreatedAt,
		deal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save deal: %w", err)
	}

	return nil
}

// DealsInStageSince returns an owner's deals sitting in a stage whose last
// update falls inside the lookback window.
func (r *DealRepository) DealsInStageSince(ctx context.Context, owner, stage string, since time.Time) ([]*models.Deal, error) {
	query := `
		SELECT id, owner, contact_id, name, stage, value, created_at, updated_at
		FROM deals
		WHERE owner = $1
		  AND stage = $2
		  AND updated_at >= $3
		ORDER BY updated_at
	`

	rows, err := r.db.QueryContext(ctx, query, owner, stage, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query deals: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	deals := make([]*models.Deal, 0)

	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deal: %w", err)
		}

		deals = append(deals, deal)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating deals: %w", err)
	}

	return deals, nil
}

func scanDeal(scanner interface{ Scan(dest ...any) error }) (*models.Deal, error) {
	var (
		deal      models.Deal
		contactID sql.NullString
		value     sql.NullFloat64
	)

	err := scanner.Scan(
		&deal.ID,
		&deal.Owner,
		&contactID,
		&deal.Name,
		&deal.Stage,
		&value,
		&deal.CreatedAt,
		&deal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	deal.ContactID = contactID.String
	deal.Value = value.Float64

	return &deal, nil
}
