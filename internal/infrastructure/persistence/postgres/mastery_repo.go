// Package postgres implements the PostgreSQL persistence layer for Hifz Progress Hub.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/hifz-hub/hifz-progress-hub/internal/domain/progress"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MASTERY REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// MasteryRepository implements progress.MasteryRepository for PostgreSQL.
type MasteryRepository struct {
	db Querier
}

// NewMasteryRepository creates a new MasteryRepository backed by the connection pool.
func NewMasteryRepository(conn *Connection) *MasteryRepository {
	return &MasteryRepository{db: conn}
}

// NewMasteryRepositoryTx creates a MasteryRepository scoped to a transaction.
func NewMasteryRepositoryTx(tx pgx.Tx) *MasteryRepository {
	return &MasteryRepository{db: tx}
}

// Get returns the mastery state of a word for a child.
func (r *MasteryRepository) Get(ctx context.Context, childID string, wordID int) (*progress.Mastery, error) {
	query := `
		SELECT child_id, word_id, status, streak, last_accuracy, attempt_count,
			   first_mastered_at, updated_at
		FROM mastery
		WHERE child_id = $1 AND word_id = $2
	`

	row := r.db.QueryRow(ctx, query, childID, wordID)
	return r.scanMastery(row)
}

// Upsert saves the mastery state, inserting or updating by (child_id, word_id).
// first_mastered_at is never overwritten once set.
func (r *MasteryRepository) Upsert(ctx context.Context, m *progress.Mastery) error {
	query := `
		INSERT INTO mastery (
			child_id, word_id, status, streak, last_accuracy, attempt_count,
			first_mastered_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (child_id, word_id) DO UPDATE SET
			status = EXCLUDED.status,
			streak = EXCLUDED.streak,
			last_accuracy = EXCLUDED.last_accuracy,
			attempt_count = EXCLUDED.attempt_count,
			first_mastered_at = COALESCE(mastery.first_mastered_at, EXCLUDED.first_mastered_at),
			updated_at = EXCLUDED.updated_at
	`

	var firstMastered *time.Time
	if !m.FirstMasteredAt.IsZero() {
		firstMastered = &m.FirstMasteredAt
	}

	_, err := r.db.Exec(ctx, query,
		m.ChildID,
		m.WordID,
		string(m.Status),
		m.Streak,
		m.LastAccuracy,
		m.AttemptCount,
		firstMastered,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert mastery: %w", err)
	}

	return nil
}

// CountMastered returns the number of words a child has mastered.
func (r *MasteryRepository) CountMastered(ctx context.Context, childID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM mastery WHERE child_id = $1 AND status = 'mastered'",
		childID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count mastered words: %w", err)
	}
	return count, nil
}

// DistributionByChild returns the per-status word counts for a child.
func (r *MasteryRepository) DistributionByChild(ctx context.Context, childID string) (progress.Distribution, error) {
	query := `
		SELECT status, COUNT(*)
		FROM mastery
		WHERE child_id = $1
		GROUP BY status
	`

	rows, err := r.db.Query(ctx, query, childID)
	if err != nil {
		return progress.Distribution{}, fmt.Errorf("failed to query mastery distribution: %w", err)
	}
	defer rows.Close()

	var dist progress.Distribution
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return progress.Distribution{}, fmt.Errorf("failed to scan distribution row: %w", err)
		}

		switch progress.Status(status) {
		case progress.StatusMastered:
			dist.Mastered = count
		case progress.StatusLearning:
			dist.Learning = count
		case progress.StatusStruggling:
			dist.Struggling = count
		}
	}

	return dist, rows.Err()
}

// ListByChild returns all mastery states of a child.
func (r *MasteryRepository) ListByChild(ctx context.Context, childID string) ([]*progress.Mastery, error) {
	query := `
		SELECT child_id, word_id, status, streak, last_accuracy, attempt_count,
			   first_mastered_at, updated_at
		FROM mastery
		WHERE child_id = $1
		ORDER BY word_id ASC
	`

	rows, err := r.db.Query(ctx, query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to list mastery: %w", err)
	}
	defer rows.Close()

	var states []*progress.Mastery
	for rows.Next() {
		var m progress.Mastery
		var status string
		var firstMastered *time.Time

		err := rows.Scan(
			&m.ChildID,
			&m.WordID,
			&status,
			&m.Streak,
			&m.LastAccuracy,
			&m.AttemptCount,
			&firstMastered,
			&m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mastery: %w", err)
		}

		m.Status = progress.Status(status)
		if firstMastered != nil {
			m.FirstMasteredAt = *firstMastered
		}

		states = append(states, &m)
	}

	return states, rows.Err()
}

func (r *MasteryRepository) scanMastery(row pgx.Row) (*progress.Mastery, error) {
	var m progress.Mastery
	var status string
	var firstMastered *time.Time

	err := row.Scan(
		&m.ChildID,
		&m.WordID,
		&status,
		&m.Streak,
		&m.LastAccuracy,
		&m.AttemptCount,
		&firstMastered,
		&m.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, progress.ErrMasteryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan mastery: %w", err)
	}

	m.Status = progress.Status(status)
	if firstMastered != nil {
		m.FirstMasteredAt = *firstMastered
	}

	return &m, nil
}
