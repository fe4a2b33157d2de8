// Package postgres implements the PostgreSQL persistence layer for Hifz Progress Hub.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hifz-hub/hifz-progress-hub/internal/domain/child"
	"github.com/hifz-hub/hifz-progress-hub/internal/domain/progress"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// ATTEMPT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const attemptColumns = `id, child_id, word_id, surah_number, verse_number, accuracy,
	   device_attempt_id, session_id, xp_earned, status, attempted_at, created_at`

// AttemptRepository implements progress.AttemptRepository for PostgreSQL.
// The unique index on device_attempt_id is the idempotency guard: a
// concurrent duplicate submission loses the race at insert time, not before.
type AttemptRepository struct {
	db Querier
}

// NewAttemptRepository creates a new AttemptRepository backed by the connection pool.
func NewAttemptRepository(conn *Connection) *AttemptRepository {
	return &AttemptRepository{db: conn}
}

// NewAttemptRepositoryTx creates an AttemptRepository scoped to a transaction.
func NewAttemptRepositoryTx(tx pgx.Tx) *AttemptRepository {
	return &AttemptRepository{db: tx}
}

// Create inserts a single attempt.
// Returns progress.ErrDuplicateAttempt on a device_attempt_id conflict
// and child.ErrChildNotFound when the child row is gone.
func (r *AttemptRepository) Create(ctx context.Context, a *progress.Attempt) error {
	query := `
		INSERT INTO attempts (
			id, child_id, word_id, surah_number, verse_number, accuracy,
			device_attempt_id, session_id, xp_earned, status, attempted_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(ctx, query,
		a.ID,
		a.ChildID,
		a.WordID,
		a.SurahNumber,
		a.VerseNumber,
		a.Accuracy,
		a.DeviceAttemptID,
		a.SessionID,
		a.XPEarned,
		string(a.Status),
		a.AttemptedAt,
		a.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return progress.ErrDuplicateAttempt
		}
		if IsForeignKeyViolation(err) {
			return child.ErrChildNotFound
		}
		return fmt.Errorf("failed to create attempt: %w", err)
	}

	return nil
}

// CreateBatch inserts a batch of attempts in a single round trip, skipping
// device_attempt_id conflicts. Returns the attempts that were actually written.
func (r *AttemptRepository) CreateBatch(ctx context.Context, attempts []*progress.Attempt) ([]*progress.Attempt, error) {
	if len(attempts) == 0 {
		return []*progress.Attempt{}, nil
	}

	query := `
		INSERT INTO attempts (
			id, child_id, word_id, surah_number, verse_number, accuracy,
			device_attempt_id, session_id, xp_earned, status, attempted_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (device_attempt_id) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, a := range attempts {
		batch.Queue(query,
			a.ID,
			a.ChildID,
			a.WordID,
			a.SurahNumber,
			a.VerseNumber,
			a.Accuracy,
			a.DeviceAttemptID,
			a.SessionID,
			a.XPEarned,
			string(a.Status),
			a.AttemptedAt,
			a.CreatedAt,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	created := make([]*progress.Attempt, 0, len(attempts))
	for _, a := range attempts {
		tag, err := results.Exec()
		if err != nil {
			return nil, fmt.Errorf("failed to insert batch attempt: %w", err)
		}
		if tag.RowsAffected() > 0 {
			created = append(created, a)
		}
	}

	return created, nil
}

// GetByDeviceAttemptID returns an attempt by its idempotency key.
func (r *AttemptRepository) GetByDeviceAttemptID(ctx context.Context, deviceAttemptID string) (*progress.Attempt, error) {
	query := `
		SELECT ` + attemptColumns + `
		FROM attempts
		WHERE device_attempt_id = $1
	`

	row := r.db.QueryRow(ctx, query, deviceAttemptID)
	return r.scanAttempt(row)
}

// ExistingDeviceAttemptIDs returns the subset of keys that are already recorded.
func (r *AttemptRepository) ExistingDeviceAttemptIDs(ctx context.Context, deviceAttemptIDs []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(deviceAttemptIDs))
	if len(deviceAttemptIDs) == 0 {
		return existing, nil
	}

	placeholders := make([]string, len(deviceAttemptIDs))
	args := make([]interface{}, len(deviceAttemptIDs))
	for i, id := range deviceAttemptIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(
		"SELECT device_attempt_id FROM attempts WHERE device_attempt_id IN (%s)",
		strings.Join(placeholders, ", "),
	)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing device attempt ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan device attempt id: %w", err)
		}
		existing[id] = true
	}

	return existing, rows.Err()
}

// CountByChild returns the total number of attempts recorded for a child.
func (r *AttemptRepository) CountByChild(ctx context.Context, childID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM attempts WHERE child_id = $1",
		childID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}
	return count, nil
}

// StatsByChild returns attempt aggregates for a child since the given time.
// A zero time means all history.
func (r *AttemptRepository) StatsByChild(ctx context.Context, childID string, since time.Time) (progress.AttemptStats, error) {
	query := `
		SELECT COUNT(*),
			   COALESCE(AVG(accuracy), 0),
			   COUNT(*) FILTER (WHERE accuracy >= 1.0)
		FROM attempts
		WHERE child_id = $1 AND attempted_at >= $2
	`

	var stats progress.AttemptStats
	err := r.db.QueryRow(ctx, query, childID, since).Scan(
		&stats.AttemptCount,
		&stats.AvgAccuracy,
		&stats.PerfectCount,
	)
	if err != nil {
		return progress.AttemptStats{}, fmt.Errorf("failed to query attempt stats: %w", err)
	}

	return stats, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *AttemptRepository) scanAttempt(row pgx.Row) (*progress.Attempt, error) {
	var a progress.Attempt
	var status string

	err := row.Scan(
		&a.ID,
		&a.ChildID,
		&a.WordID,
		&a.SurahNumber,
		&a.VerseNumber,
		&a.Accuracy,
		&a.DeviceAttemptID,
		&a.SessionID,
		&a.XPEarned,
		&status,
		&a.AttemptedAt,
		&a.CreatedAt,
	)

	if IsNoRows(err) {
		return nil, progress.ErrAttemptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan attempt: %w", err)
	}

	a.Status = progress.Status(status)
	return &a, nil
}
