// Package postgres implements the PostgreSQL persistence layer for Hifz Progress Hub.
package postgres

import (
	"context"
	"fmt"

	"github.com/hifz-hub/hifz-progress-hub/internal/domain/achievement"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AchievementRepository implements achievement.Repository for PostgreSQL.
type AchievementRepository struct {
	db Querier
}

// NewAchievementRepository creates a new AchievementRepository backed by the connection pool.
func NewAchievementRepository(conn *Connection) *AchievementRepository {
	return &AchievementRepository{db: conn}
}

// NewAchievementRepositoryTx creates an AchievementRepository scoped to a transaction.
func NewAchievementRepositoryTx(tx pgx.Tx) *AchievementRepository {
	return &AchievementRepository{db: tx}
}

// ─────────────────────────────────────────────────────────────────────────────
// Catalog
// ─────────────────────────────────────────────────────────────────────────────

// GetByName returns a catalog entry by its business key.
func (r *AchievementRepository) GetByName(ctx context.Context, name string) (*achievement.Achievement, error) {
	query := `
		SELECT id, name, title, description, badge, xp_reward, created_at
		FROM achievements
		WHERE name = $1
	`

	row := r.db.QueryRow(ctx, query, name)
	return r.scanAchievement(row)
}

// ListAll returns the full catalog ordered by creation time.
func (r *AchievementRepository) ListAll(ctx context.Context) ([]*achievement.Achievement, error) {
	query := `
		SELECT id, name, title, description, badge, xp_reward, created_at
		FROM achievements
		ORDER BY created_at ASC, name ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	defer rows.Close()

	var catalog []*achievement.Achievement
	for rows.Next() {
		var a achievement.Achievement
		err := rows.Scan(&a.ID, &a.Name, &a.Title, &a.Description, &a.Badge, &a.XPReward, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		catalog = append(catalog, &a)
	}

	return catalog, rows.Err()
}

// UpsertCatalog idempotently inserts a catalog entry keyed by name.
// An existing entry keeps its ID; title, badge and reward are refreshed.
func (r *AchievementRepository) UpsertCatalog(ctx context.Context, a *achievement.Achievement) error {
	query := `
		INSERT INTO achievements (id, name, title, description, badge, xp_reward, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			badge = EXCLUDED.badge,
			xp_reward = EXCLUDED.xp_reward
	`

	_, err := r.db.Exec(ctx, query,
		a.ID,
		a.Name,
		a.Title,
		a.Description,
		a.Badge,
		a.XPReward,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert achievement: %w", err)
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Earned achievements
// ─────────────────────────────────────────────────────────────────────────────

// HasEarned checks whether a child has unlocked an achievement.
func (r *AchievementRepository) HasEarned(ctx context.Context, childID, achievementID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM child_achievements WHERE child_id = $1 AND achievement_id = $2)",
		childID,
		achievementID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check earned achievement: %w", err)
	}
	return exists, nil
}

// Award records an unlock.
// Returns achievement.ErrAlreadyEarned on a repeated award.
func (r *AchievementRepository) Award(ctx context.Context, ca *achievement.ChildAchievement) error {
	query := `
		INSERT INTO child_achievements (child_id, achievement_id, earned_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.Exec(ctx, query, ca.ChildID, ca.AchievementID, ca.EarnedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return achievement.ErrAlreadyEarned
		}
		return fmt.Errorf("failed to award achievement: %w", err)
	}

	return nil
}

// ListByChild returns a child's achievements joined with catalog data,
// most recently earned first.
func (r *AchievementRepository) ListByChild(ctx context.Context, childID string) ([]*achievement.EarnedAchievement, error) {
	query := `
		SELECT a.id, a.name, a.title, a.description, a.badge, a.xp_reward, a.created_at,
			   ca.child_id, ca.earned_at
		FROM child_achievements ca
		JOIN achievements a ON a.id = ca.achievement_id
		WHERE ca.child_id = $1
		ORDER BY ca.earned_at DESC
	`

	rows, err := r.db.Query(ctx, query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to list child achievements: %w", err)
	}
	defer rows.Close()

	var earned []*achievement.EarnedAchievement
	for rows.Next() {
		var ea achievement.EarnedAchievement
		err := rows.Scan(
			&ea.ID,
			&ea.Name,
			&ea.Title,
			&ea.Description,
			&ea.Badge,
			&ea.XPReward,
			&ea.CreatedAt,
			&ea.Earned.ChildID,
			&ea.Earned.EarnedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan earned achievement: %w", err)
		}
		ea.Earned.AchievementID = ea.ID
		earned = append(earned, &ea)
	}

	return earned, rows.Err()
}

// CountByChild returns the number of achievements a child has unlocked.
func (r *AchievementRepository) CountByChild(ctx context.Context, childID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM child_achievements WHERE child_id = $1",
		childID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count child achievements: %w", err)
	}
	return count, nil
}

func (r *AchievementRepository) scanAchievement(row pgx.Row) (*achievement.Achievement, error) {
	var a achievement.Achievement
	err := row.Scan(&a.ID, &a.Name, &a.Title, &a.Description, &a.Badge, &a.XPReward, &a.CreatedAt)

	if IsNoRows(err) {
		return nil, achievement.ErrAchievementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan achievement: %w", err)
	}

	return &a, nil
}
