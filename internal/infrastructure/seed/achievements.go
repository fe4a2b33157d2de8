// Package seed loads reference data: the achievement catalog and the
// Quran text the recitation attempts point into. Both loaders are
// idempotent, re-running them refreshes rather than duplicates.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/hifz-hub/hifz-progress-hub/internal/domain/achievement"
	"github.com/hifz-hub/hifz-progress-hub/pkg/logger"
)

// IDGenerator generates unique identifiers for new catalog entries.
type IDGenerator interface {
	NewID() string
}

// SeedAchievements upserts the built-in achievement catalog.
// Existing entries keep their IDs, only display fields are refreshed.
func SeedAchievements(ctx context.Context, repo achievement.Repository, ids IDGenerator, log *logger.Logger) error {
	entries := achievement.SeedCatalog()

	for _, entry := range entries {
		a := &achievement.Achievement{
			ID:          ids.NewID(),
			Name:        entry.Name,
			Title:       entry.Title,
			Description: entry.Description,
			Badge:       entry.Badge,
			XPReward:    entry.XPReward,
			CreatedAt:   time.Now().UTC(),
		}

		if err := repo.UpsertCatalog(ctx, a); err != nil {
			return fmt.Errorf("seed achievements: %s: %w", entry.Name, err)
		}
	}

	log.Info("achievement catalog seeded", logger.Int("entries", len(entries)))
	return nil
}
