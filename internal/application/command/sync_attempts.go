package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hifz-hub/hifz-progress-hub/internal/domain/achievement"
	"github.com/hifz-hub/hifz-progress-hub/internal/domain/child"
	"github.com/hifz-hub/hifz-progress-hub/internal/domain/progress"
	"github.com/hifz-hub/hifz-progress-hub/internal/domain/shared"
	"github.com/hifz-hub/hifz-progress-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SYNC ATTEMPTS COMMAND
// Replays a batch of attempts recorded offline on the device. Duplicates
// are skipped, the rest commit in one transaction.
// ══════════════════════════════════════════════════════════════════════════════

// SyncAttemptEntry is one offline attempt inside a sync batch.
type SyncAttemptEntry struct {
	ChildID         string
	WordID          int
	SurahNumber     int
	VerseNumber     int
	Accuracy        float64
	DeviceAttemptID string
	SessionID       string
	AttemptedAt     time.Time
}

// SyncAttemptsCommand contains an offline sync batch for one child.
type SyncAttemptsCommand struct {
	// ChildID is the child all attempts must belong to.
	ChildID string

	// Attempts is the batch, ordered by device timestamp.
	Attempts []SyncAttemptEntry

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command. A single bad entry rejects the whole
// batch so the device can fix and resend it atomically.
func (c SyncAttemptsCommand) Validate() error {
	if c.ChildID == "" {
		return errors.New("sync_attempts: child_id is required")
	}
	if len(c.Attempts) == 0 {
		return errors.New("sync_attempts: batch is empty")
	}
	if len(c.Attempts) > progress.MaxSyncBatchSize {
		return fmt.Errorf("sync_attempts: %w", progress.ErrSyncBatchTooLarge)
	}

	for i, entry := range c.Attempts {
		if entry.ChildID != c.ChildID {
			return fmt.Errorf("sync_attempts: entry %d: %w", i, progress.ErrChildMismatch)
		}
		if entry.WordID <= 0 {
			return fmt.Errorf("sync_attempts: entry %d: %w", i, progress.ErrInvalidWordID)
		}
		if !progress.IsValidAccuracy(entry.Accuracy) {
			return fmt.Errorf("sync_attempts: entry %d: %w", i, progress.ErrInvalidAccuracy)
		}
		if l := len(entry.DeviceAttemptID); l < progress.MinDeviceAttemptIDLen || l > progress.MaxDeviceAttemptIDLen {
			return fmt.Errorf("sync_attempts: entry %d: %w", i, progress.ErrInvalidDeviceAttemptID)
		}
	}

	return nil
}

// SyncAttemptsResult contains the outcome of a sync batch.
type SyncAttemptsResult struct {
	// CreatedCount is how many attempts were recorded.
	CreatedCount int

	// DuplicateCount is how many attempts were already known and skipped.
	DuplicateCount int

	// XPEarned is the total XP awarded for the batch.
	XPEarned int

	// TotalXP is the child's XP after the batch.
	TotalXP int

	// Level is the child's level after the batch.
	Level int

	// CurrentStreak is the child's daily practice streak after the batch.
	CurrentStreak int

	// UnlockedAchievements lists achievement names unlocked by the batch.
	UnlockedAchievements []string

	// Events contains domain events generated.
	Events []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SyncAttemptsHandler handles the SyncAttemptsCommand.
type SyncAttemptsHandler struct {
	uow         UnitOfWork
	ids         IDGenerator
	invalidator SummaryInvalidator
	log         *logger.Logger
}

// NewSyncAttemptsHandler creates a new SyncAttemptsHandler.
func NewSyncAttemptsHandler(
	uow UnitOfWork,
	ids IDGenerator,
	invalidator SummaryInvalidator,
	log *logger.Logger,
) *SyncAttemptsHandler {
	return &SyncAttemptsHandler{
		uow:         uow,
		ids:         ids,
		invalidator: invalidator,
		log:         log,
	}
}

// Handle executes the sync attempts command.
func (h *SyncAttemptsHandler) Handle(ctx context.Context, cmd SyncAttemptsCommand) (*SyncAttemptsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	result := &SyncAttemptsResult{}

	err := h.uow.WithinTx(ctx, func(ctx context.Context, s Stores) error {
		return h.apply(ctx, s, cmd, result)
	})
	if err != nil {
		return nil, err
	}

	if result.CreatedCount > 0 && h.invalidator != nil {
		if err := h.invalidator.InvalidateSummary(ctx, cmd.ChildID); err != nil {
			h.log.Warn("summary cache invalidation failed",
				logger.ChildID(cmd.ChildID), logger.Err(err))
		}
	}

	return result, nil
}

// apply replays the batch inside one transaction.
func (h *SyncAttemptsHandler) apply(
	ctx context.Context,
	s Stores,
	cmd SyncAttemptsCommand,
	result *SyncAttemptsResult,
) error {
	c, err := s.Children.GetByIDForUpdate(ctx, cmd.ChildID)
	if err != nil {
		return fmt.Errorf("sync_attempts: failed to load child: %w", err)
	}
	if !c.IsActive() {
		return fmt.Errorf("sync_attempts: %w", child.ErrChildDeleted)
	}

	// One round trip instead of a lookup per entry.
	keys := make([]string, 0, len(cmd.Attempts))
	for _, entry := range cmd.Attempts {
		keys = append(keys, entry.DeviceAttemptID)
	}
	existing, err := s.Attempts.ExistingDeviceAttemptIDs(ctx, keys)
	if err != nil {
		return fmt.Errorf("sync_attempts: duplicate pre-check failed: %w", err)
	}

	var toCreate []*progress.Attempt
	seen := make(map[string]bool, len(cmd.Attempts))

	for _, entry := range cmd.Attempts {
		if existing[entry.DeviceAttemptID] || seen[entry.DeviceAttemptID] {
			result.DuplicateCount++
			continue
		}
		seen[entry.DeviceAttemptID] = true

		attemptedAt := entry.AttemptedAt
		if attemptedAt.IsZero() {
			attemptedAt = time.Now().UTC()
		}

		attempt, err := progress.NewAttempt(progress.NewAttemptParams{
			ID:              h.ids.NewID(),
			ChildID:         entry.ChildID,
			WordID:          entry.WordID,
			SurahNumber:     entry.SurahNumber,
			VerseNumber:     entry.VerseNumber,
			Accuracy:        entry.Accuracy,
			DeviceAttemptID: entry.DeviceAttemptID,
			SessionID:       entry.SessionID,
			AttemptedAt:     attemptedAt,
		})
		if err != nil {
			return fmt.Errorf("sync_attempts: %w", err)
		}

		// The per-attempt reward depends only on accuracy, so it is
		// known before the insert. The batch-wide perfect bonus is
		// settled after, against the rows that actually landed.
		if attempt.Status == progress.StatusMastered {
			attempt.XPEarned = int(child.XPWordMastered)
		}

		toCreate = append(toCreate, attempt)
	}

	prevStreak := c.CurrentStreak

	if len(toCreate) > 0 {
		created, err := s.Attempts.CreateBatch(ctx, toCreate)
		if err != nil {
			return fmt.Errorf("sync_attempts: batch insert failed: %w", err)
		}
		// Races with a concurrent submit show up as rows skipped by the
		// insert. Count them as duplicates.
		result.DuplicateCount += len(toCreate) - len(created)
		result.CreatedCount = len(created)
		toCreate = created
	}

	if result.CreatedCount == 0 {
		// Nothing new: no XP, no streak, no achievements.
		result.TotalXP = int(c.TotalXP)
		result.Level = int(c.Level)
		result.CurrentStreak = prevStreak
		return nil
	}

	// Mastery and XP follow only the rows the insert accepted, in
	// device order. A row skipped by a race leaves no trace here.
	var (
		totalXP     child.XP
		perfectSeen bool
	)
	for _, attempt := range toCreate {
		mastery, err := s.Mastery.Get(ctx, attempt.ChildID, attempt.WordID)
		switch {
		case err == nil:
			mastery.Apply(attempt.Accuracy, attempt.AttemptedAt)
		case errors.Is(err, progress.ErrMasteryNotFound):
			mastery = progress.NewMastery(attempt.ChildID, attempt.WordID, attempt.Accuracy, attempt.AttemptedAt)
		default:
			return fmt.Errorf("sync_attempts: failed to load mastery: %w", err)
		}
		if err := s.Mastery.Upsert(ctx, mastery); err != nil {
			return fmt.Errorf("sync_attempts: failed to save mastery: %w", err)
		}

		c.RecordPractice(attempt.AttemptedAt)

		totalXP += child.XP(attempt.XPEarned)
		if attempt.IsPerfect() {
			perfectSeen = true
		}
	}
	if perfectSeen {
		// The perfect bonus is granted at most once per batch.
		totalXP += child.XPPerfectAccuracy
	}

	oldLevel := c.Level

	if totalXP > 0 {
		transition, err := c.AwardXP(totalXP)
		if err != nil {
			return fmt.Errorf("sync_attempts: %w", err)
		}
		result.Events = append(result.Events,
			shared.NewXPGainedEvent(cmd.ChildID, int(totalXP), int(transition.NewTotalXP), "sync"))
	}

	// Streak rewards land as a separate ledger entry, same as the
	// single-submit path.
	if c.CurrentStreak > prevStreak {
		streakXP := child.XPDailyStreak
		if c.CurrentStreak == 7 {
			streakXP += child.XPWeekStreakBonus
		}
		transition, err := c.AwardXP(streakXP)
		if err != nil {
			return fmt.Errorf("sync_attempts: %w", err)
		}
		result.Events = append(result.Events,
			shared.NewXPGainedEvent(cmd.ChildID, int(streakXP), int(transition.NewTotalXP), "streak"))
	}

	masteredCount, err := s.Mastery.CountMastered(ctx, cmd.ChildID)
	if err != nil {
		return fmt.Errorf("sync_attempts: failed to count mastered words: %w", err)
	}

	unlocked, bonusXP, achEvents, err := evaluateAndAward(ctx, s, c, achievement.ProgressContext{
		VerseCompleted:  true,
		PerfectAccuracy: perfectSeen,
		CurrentStreak:   c.CurrentStreak,
		SurahCompleted:  false,
		WordsMastered:   masteredCount,
	}, h.log)
	if err != nil {
		return err
	}
	result.Events = append(result.Events, achEvents...)

	if bonusXP > 0 {
		if _, err := c.AwardXP(bonusXP); err != nil {
			return fmt.Errorf("sync_attempts: %w", err)
		}
	}

	if c.Level > oldLevel {
		result.Events = append(result.Events,
			shared.NewLevelUpEvent(cmd.ChildID, int(oldLevel), int(c.Level), int(c.TotalXP)))
	}

	if err := s.Children.Update(ctx, c); err != nil {
		return fmt.Errorf("sync_attempts: failed to update child: %w", err)
	}

	result.XPEarned = int(totalXP)
	result.TotalXP = int(c.TotalXP)
	result.Level = int(c.Level)
	result.CurrentStreak = c.CurrentStreak
	result.UnlockedAchievements = unlocked

	return nil
}
