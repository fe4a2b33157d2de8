package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hifz-hub/hifz-progress-hub/internal/domain/achievement"
	"github.com/hifz-hub/hifz-progress-hub/internal/domain/child"
	"github.com/hifz-hub/hifz-progress-hub/internal/domain/shared"
	"github.com/hifz-hub/hifz-progress-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT AWARDING
// Runs inside the same transaction as the attempt write so an unlock
// never commits without its triggering attempt.
// ══════════════════════════════════════════════════════════════════════════════

// evaluateAndAward evaluates unlock rules against the progress context and
// awards every achievement the child does not have yet. Returns the unlocked
// names, the accumulated XP bonus, and the generated events.
//
// A rule name missing from the catalog is logged and skipped: an unseeded
// catalog must not fail attempt recording.
func evaluateAndAward(
	ctx context.Context,
	s Stores,
	c *child.Child,
	actx achievement.ProgressContext,
	log *logger.Logger,
) ([]string, child.XP, []shared.Event, error) {
	candidates := achievement.Evaluate(actx)
	if len(candidates) == 0 {
		return nil, 0, nil, nil
	}

	var (
		unlocked []string
		bonus    child.XP
		events   []shared.Event
	)

	for _, name := range candidates {
		entry, err := s.Achievements.GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, achievement.ErrAchievementNotFound) {
				log.Warn("achievement rule has no catalog entry",
					logger.String("achievement", name))
				continue
			}
			return nil, 0, nil, fmt.Errorf("award_achievements: catalog lookup failed: %w", err)
		}

		earned, err := s.Achievements.HasEarned(ctx, c.ID, entry.ID)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("award_achievements: earned check failed: %w", err)
		}
		if earned {
			continue
		}

		err = s.Achievements.Award(ctx, &achievement.ChildAchievement{
			ChildID:       c.ID,
			AchievementID: entry.ID,
			EarnedAt:      time.Now().UTC(),
		})
		if err != nil {
			// A concurrent award of the same achievement is fine.
			if errors.Is(err, achievement.ErrAlreadyEarned) {
				continue
			}
			return nil, 0, nil, fmt.Errorf("award_achievements: award failed: %w", err)
		}

		unlocked = append(unlocked, entry.Name)
		bonus += child.XP(entry.XPReward)
		events = append(events,
			shared.NewAchievementUnlockedEvent(c.ID, entry.Name, entry.Title, entry.XPReward))
	}

	return unlocked, bonus, events, nil
}
