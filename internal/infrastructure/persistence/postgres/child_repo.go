// Package postgres implements the PostgreSQL persistence layer for Hifz Progress Hub.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/hifz-hub/hifz-progress-hub/internal/domain/child"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHILD REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const childColumns = `id, parent_id, name, age, avatar, total_xp, level,
	   current_streak, longest_streak, last_practice_at, status, created_at, updated_at`

// ChildRepository implements child.Repository for PostgreSQL.
type ChildRepository struct {
	db Querier
}

// NewChildRepository creates a new ChildRepository backed by the connection pool.
func NewChildRepository(conn *Connection) *ChildRepository {
	return &ChildRepository{db: conn}
}

// NewChildRepositoryTx creates a ChildRepository scoped to a transaction.
func NewChildRepositoryTx(tx pgx.Tx) *ChildRepository {
	return &ChildRepository{db: tx}
}

// Create inserts a new child profile.
func (r *ChildRepository) Create(ctx context.Context, c *child.Child) error {
	query := `
		INSERT INTO children (
			id, parent_id, name, age, avatar, total_xp, level,
			current_streak, longest_streak, last_practice_at, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	var lastPractice *time.Time
	if !c.LastPracticeAt.IsZero() {
		lastPractice = &c.LastPracticeAt
	}

	_, err := r.db.Exec(ctx, query,
		c.ID,
		c.ParentID,
		c.Name,
		c.Age,
		string(c.Avatar),
		int(c.TotalXP),
		int(c.Level),
		c.CurrentStreak,
		c.LongestStreak,
		lastPractice,
		string(c.Status),
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create child: %w", err)
	}

	return nil
}

// GetByID returns a child by ID.
func (r *ChildRepository) GetByID(ctx context.Context, id string) (*child.Child, error) {
	query := `
		SELECT ` + childColumns + `
		FROM children
		WHERE id = $1
	`

	row := r.db.QueryRow(ctx, query, id)
	return r.scanChild(row)
}

// GetByIDForUpdate returns a child by ID with a row lock.
// Concurrent attempt submissions for the same child serialize on this lock.
func (r *ChildRepository) GetByIDForUpdate(ctx context.Context, id string) (*child.Child, error) {
	query := `
		SELECT ` + childColumns + `
		FROM children
		WHERE id = $1
		FOR UPDATE
	`

	row := r.db.QueryRow(ctx, query, id)
	return r.scanChild(row)
}

// ListByParent returns all active children of a parent, oldest profile first.
func (r *ChildRepository) ListByParent(ctx context.Context, parentID string) ([]*child.Child, error) {
	query := `
		SELECT ` + childColumns + `
		FROM children
		WHERE parent_id = $1 AND status = 'active'
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	defer rows.Close()

	return r.scanChildren(rows)
}

// Update persists the mutable fields of a child.
func (r *ChildRepository) Update(ctx context.Context, c *child.Child) error {
	query := `
		UPDATE children SET
			name = $1,
			age = $2,
			avatar = $3,
			total_xp = $4,
			level = $5,
			current_streak = $6,
			longest_streak = $7,
			last_practice_at = $8,
			status = $9,
			updated_at = $10
		WHERE id = $11
	`

	var lastPractice *time.Time
	if !c.LastPracticeAt.IsZero() {
		lastPractice = &c.LastPracticeAt
	}

	result, err := r.db.Exec(ctx, query,
		c.Name,
		c.Age,
		string(c.Avatar),
		int(c.TotalXP),
		int(c.Level),
		c.CurrentStreak,
		c.LongestStreak,
		lastPractice,
		string(c.Status),
		time.Now().UTC(),
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update child: %w", err)
	}

	if result.RowsAffected() == 0 {
		return child.ErrChildNotFound
	}

	return nil
}

// CountByParent returns the number of active children of a parent.
func (r *ChildRepository) CountByParent(ctx context.Context, parentID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM children WHERE parent_id = $1 AND status = 'active'",
		parentID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count children: %w", err)
	}
	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *ChildRepository) scanChild(row pgx.Row) (*child.Child, error) {
	var c child.Child
	var avatar, status string
	var totalXP, level int
	var lastPractice *time.Time

	err := row.Scan(
		&c.ID,
		&c.ParentID,
		&c.Name,
		&c.Age,
		&avatar,
		&totalXP,
		&level,
		&c.CurrentStreak,
		&c.LongestStreak,
		&lastPractice,
		&status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, child.ErrChildNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan child: %w", err)
	}

	c.Avatar = child.AvatarToken(avatar)
	c.TotalXP = child.XP(totalXP)
	c.Level = child.Level(level)
	c.Status = child.Status(status)
	if lastPractice != nil {
		c.LastPracticeAt = *lastPractice
	}

	return &c, nil
}

func (r *ChildRepository) scanChildren(rows pgx.Rows) ([]*child.Child, error) {
	var children []*child.Child

	for rows.Next() {
		var c child.Child
		var avatar, status string
		var totalXP, level int
		var lastPractice *time.Time

		err := rows.Scan(
			&c.ID,
			&c.ParentID,
			&c.Name,
			&c.Age,
			&avatar,
			&totalXP,
			&level,
			&c.CurrentStreak,
			&c.LongestStreak,
			&lastPractice,
			&status,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}

		c.Avatar = child.AvatarToken(avatar)
		c.TotalXP = child.XP(totalXP)
		c.Level = child.Level(level)
		c.Status = child.Status(status)
		if lastPractice != nil {
			c.LastPracticeAt = *lastPractice
		}

		children = append(children, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return children, nil
}
