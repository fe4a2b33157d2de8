// Package postgres implements the PostgreSQL persistence layer for Hifz Progress Hub.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/hifz-hub/hifz-progress-hub/internal/domain/identity"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// PARENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ParentRepository implements identity.Repository for PostgreSQL.
type ParentRepository struct {
	db Querier
}

// NewParentRepository creates a new ParentRepository.
func NewParentRepository(conn *Connection) *ParentRepository {
	return &ParentRepository{db: conn}
}

// Create inserts a new parent account.
func (r *ParentRepository) Create(ctx context.Context, p *identity.Parent) error {
	query := `
		INSERT INTO parents (id, external_id, name, pin_hash, consent_given_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var consentAt *time.Time
	if !p.ConsentGivenAt.IsZero() {
		consentAt = &p.ConsentGivenAt
	}

	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.ExternalID,
		p.Name,
		p.PINHash,
		consentAt,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return identity.ErrParentExists
		}
		return fmt.Errorf("failed to create parent: %w", err)
	}

	return nil
}

// GetByID returns a parent by internal ID.
func (r *ParentRepository) GetByID(ctx context.Context, id string) (*identity.Parent, error) {
	query := `
		SELECT id, external_id, name, pin_hash, consent_given_at, created_at, updated_at
		FROM parents
		WHERE id = $1
	`

	row := r.db.QueryRow(ctx, query, id)
	return r.scanParent(row)
}

// GetByExternalID returns a parent by the identity provider's external ID.
func (r *ParentRepository) GetByExternalID(ctx context.Context, externalID string) (*identity.Parent, error) {
	query := `
		SELECT id, external_id, name, pin_hash, consent_given_at, created_at, updated_at
		FROM parents
		WHERE external_id = $1
	`

	row := r.db.QueryRow(ctx, query, externalID)
	return r.scanParent(row)
}

// Update persists the mutable fields of a parent.
func (r *ParentRepository) Update(ctx context.Context, p *identity.Parent) error {
	query := `
		UPDATE parents SET
			name = $1,
			pin_hash = $2,
			consent_given_at = $3,
			updated_at = $4
		WHERE id = $5
	`

	var consentAt *time.Time
	if !p.ConsentGivenAt.IsZero() {
		consentAt = &p.ConsentGivenAt
	}

	result, err := r.db.Exec(ctx, query,
		p.Name,
		p.PINHash,
		consentAt,
		time.Now().UTC(),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update parent: %w", err)
	}

	if result.RowsAffected() == 0 {
		return identity.ErrParentNotFound
	}

	return nil
}

func (r *ParentRepository) scanParent(row pgx.Row) (*identity.Parent, error) {
	var p identity.Parent
	var consentAt *time.Time

	err := row.Scan(
		&p.ID,
		&p.ExternalID,
		&p.Name,
		&p.PINHash,
		&consentAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, identity.ErrParentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan parent: %w", err)
	}

	if consentAt != nil {
		p.ConsentGivenAt = *consentAt
	}

	return &p, nil
}
