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
// SUBMIT ATTEMPT COMMAND
// Records a single recitation attempt and applies all downstream effects:
// mastery update, XP award, daily streak, achievement unlocks.
// ══════════════════════════════════════════════════════════════════════════════

// SubmitAttemptCommand contains the data for one recitation attempt.
type SubmitAttemptCommand struct {
	// ChildID is the internal ID of the child.
	ChildID string

	// WordID identifies the recited word.
	WordID int

	// SurahNumber is the surah the word belongs to.
	SurahNumber int

	// VerseNumber is the verse within the surah.
	VerseNumber int

	// Accuracy is the pronunciation accuracy in [0.0, 1.0].
	Accuracy float64

	// DeviceAttemptID is the client-generated idempotency key.
	DeviceAttemptID string

	// SessionID links the attempt to a practice session (optional).
	SessionID string

	// AttemptedAt is when the attempt happened on the device (defaults to now).
	AttemptedAt time.Time

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c SubmitAttemptCommand) Validate() error {
	if c.ChildID == "" {
		return errors.New("submit_attempt: child_id is required")
	}
	if c.WordID <= 0 {
		return fmt.Errorf("submit_attempt: %w", progress.ErrInvalidWordID)
	}
	if !progress.IsValidAccuracy(c.Accuracy) {
		return fmt.Errorf("submit_attempt: %w", progress.ErrInvalidAccuracy)
	}
	if l := len(c.DeviceAttemptID); l < progress.MinDeviceAttemptIDLen || l > progress.MaxDeviceAttemptIDLen {
		return fmt.Errorf("submit_attempt: %w", progress.ErrInvalidDeviceAttemptID)
	}
	return nil
}

// SubmitAttemptResult contains the outcome of recording an attempt.
type SubmitAttemptResult struct {
	// AttemptID is the internal ID of the recorded attempt.
	AttemptID string

	// Duplicate is true when the deviceAttemptId was already recorded.
	// No state was changed in that case.
	Duplicate bool

	// Status is the mastery status produced by this attempt.
	Status progress.Status

	// MasteryStreak is the consecutive-mastered streak for the word.
	MasteryStreak int

	// XPEarned is the XP awarded for this attempt (without achievement bonuses).
	XPEarned int

	// TotalXP is the child's XP after all awards.
	TotalXP int

	// Level is the child's level after all awards.
	Level int

	// LeveledUp indicates the attempt caused a level up.
	LeveledUp bool

	// CurrentStreak is the child's daily practice streak.
	CurrentStreak int

	// UnlockedAchievements lists achievement names unlocked by this attempt.
	UnlockedAchievements []string

	// Events contains domain events generated.
	Events []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SubmitAttemptHandler handles the SubmitAttemptCommand.
type SubmitAttemptHandler struct {
	uow          UnitOfWork
	attemptReads progress.AttemptRepository
	childReads   child.Repository
	ids          IDGenerator
	invalidator  SummaryInvalidator
	log          *logger.Logger
}

// NewSubmitAttemptHandler creates a new SubmitAttemptHandler.
// attemptReads and childReads are non-transactional repositories used for
// duplicate pre-checks and the duplicate response.
func NewSubmitAttemptHandler(
	uow UnitOfWork,
	attemptReads progress.AttemptRepository,
	childReads child.Repository,
	ids IDGenerator,
	invalidator SummaryInvalidator,
	log *logger.Logger,
) *SubmitAttemptHandler {
	return &SubmitAttemptHandler{
		uow:          uow,
		attemptReads: attemptReads,
		childReads:   childReads,
		ids:          ids,
		invalidator:  invalidator,
		log:          log,
	}
}

// Handle executes the submit attempt command.
func (h *SubmitAttemptHandler) Handle(ctx context.Context, cmd SubmitAttemptCommand) (*SubmitAttemptResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	// Fast path: an already-recorded attempt short-circuits before opening
	// a transaction. The unique constraint still guards against races.
	if existing, err := h.attemptReads.GetByDeviceAttemptID(ctx, cmd.DeviceAttemptID); err == nil {
		return h.duplicateResult(ctx, existing)
	} else if !errors.Is(err, progress.ErrAttemptNotFound) {
		return nil, fmt.Errorf("submit_attempt: duplicate pre-check failed: %w", err)
	}

	result := &SubmitAttemptResult{}

	err := h.uow.WithinTx(ctx, func(ctx context.Context, s Stores) error {
		return h.apply(ctx, s, cmd, result)
	})
	if err != nil {
		// A concurrent submit with the same key won the race. Treat the
		// loser as a duplicate, never as a failure.
		if errors.Is(err, progress.ErrDuplicateAttempt) {
			existing, getErr := h.attemptReads.GetByDeviceAttemptID(ctx, cmd.DeviceAttemptID)
			if getErr != nil {
				return nil, fmt.Errorf("submit_attempt: duplicate lookup failed: %w", getErr)
			}
			return h.duplicateResult(ctx, existing)
		}
		return nil, err
	}

	// Cache invalidation is best effort: a stale summary expires on its own.
	if h.invalidator != nil {
		if err := h.invalidator.InvalidateSummary(ctx, cmd.ChildID); err != nil {
			h.log.Warn("summary cache invalidation failed",
				logger.ChildID(cmd.ChildID), logger.Err(err))
		}
	}

	h.log.Debug("attempt recorded",
		logger.ChildID(cmd.ChildID),
		logger.WordID(cmd.WordID),
		logger.Accuracy(cmd.Accuracy),
		logger.XPAmount(result.XPEarned))

	return result, nil
}

// apply performs all attempt effects inside one transaction.
func (h *SubmitAttemptHandler) apply(
	ctx context.Context,
	s Stores,
	cmd SubmitAttemptCommand,
	result *SubmitAttemptResult,
) error {
	// Lock the child row to serialize concurrent writes for one child.
	c, err := s.Children.GetByIDForUpdate(ctx, cmd.ChildID)
	if err != nil {
		return fmt.Errorf("submit_attempt: failed to load child: %w", err)
	}
	if !c.IsActive() {
		return fmt.Errorf("submit_attempt: %w", child.ErrChildDeleted)
	}

	attemptedAt := cmd.AttemptedAt
	if attemptedAt.IsZero() {
		attemptedAt = time.Now().UTC()
	}

	attempt, err := progress.NewAttempt(progress.NewAttemptParams{
		ID:              h.ids.NewID(),
		ChildID:         cmd.ChildID,
		WordID:          cmd.WordID,
		SurahNumber:     cmd.SurahNumber,
		VerseNumber:     cmd.VerseNumber,
		Accuracy:        cmd.Accuracy,
		DeviceAttemptID: cmd.DeviceAttemptID,
		SessionID:       cmd.SessionID,
		AttemptedAt:     attemptedAt,
	})
	if err != nil {
		return fmt.Errorf("submit_attempt: %w", err)
	}

	// Mastery transition
	mastery, err := s.Mastery.Get(ctx, cmd.ChildID, cmd.WordID)
	newlyMastered := false
	switch {
	case err == nil:
		wasMastered := !mastery.FirstMasteredAt.IsZero()
		mastery.Apply(cmd.Accuracy, attemptedAt)
		newlyMastered = !wasMastered && !mastery.FirstMasteredAt.IsZero()
	case errors.Is(err, progress.ErrMasteryNotFound):
		mastery = progress.NewMastery(cmd.ChildID, cmd.WordID, cmd.Accuracy, attemptedAt)
		newlyMastered = !mastery.FirstMasteredAt.IsZero()
	default:
		return fmt.Errorf("submit_attempt: failed to load mastery: %w", err)
	}

	// Daily streak
	prevStreak := c.CurrentStreak
	c.RecordPractice(attemptedAt)
	streakExtended := c.CurrentStreak > prevStreak

	// Attempt reward is a pure function of accuracy: mastered-level
	// accuracy earns the word XP, a flawless recitation adds the
	// perfect bonus on top.
	var xp child.XP
	if attempt.Status == progress.StatusMastered {
		xp = child.XPWordMastered
		if attempt.IsPerfect() {
			xp += child.XPPerfectAccuracy
		}
	}
	attempt.XPEarned = int(xp)

	if err := s.Attempts.Create(ctx, attempt); err != nil {
		return err
	}
	if err := s.Mastery.Upsert(ctx, mastery); err != nil {
		return fmt.Errorf("submit_attempt: failed to save mastery: %w", err)
	}

	oldLevel := c.Level

	result.Events = append(result.Events,
		shared.NewAttemptRecordedEvent(cmd.ChildID, attempt.ID, cmd.WordID, cmd.Accuracy, string(attempt.Status)))

	if xp > 0 {
		transition, err := c.AwardXP(xp)
		if err != nil {
			return fmt.Errorf("submit_attempt: %w", err)
		}
		result.Events = append(result.Events,
			shared.NewXPGainedEvent(cmd.ChildID, int(xp), int(transition.NewTotalXP), "attempt"))
	}

	if newlyMastered {
		result.Events = append(result.Events,
			shared.NewWordMasteredEvent(cmd.ChildID, cmd.WordID, mastery.Streak))
	}

	// Streak rewards land as a separate ledger entry so the attempt
	// reward stays accuracy-only.
	if streakExtended {
		streakXP := child.XPDailyStreak
		if c.CurrentStreak == 7 {
			streakXP += child.XPWeekStreakBonus
		}
		transition, err := c.AwardXP(streakXP)
		if err != nil {
			return fmt.Errorf("submit_attempt: %w", err)
		}
		result.Events = append(result.Events,
			shared.NewXPGainedEvent(cmd.ChildID, int(streakXP), int(transition.NewTotalXP), "streak"))
	}

	// Re-read inside the transaction so the rule sees this attempt's effect.
	masteredCount, err := s.Mastery.CountMastered(ctx, cmd.ChildID)
	if err != nil {
		return fmt.Errorf("submit_attempt: failed to count mastered words: %w", err)
	}

	unlocked, bonusXP, achEvents, err := evaluateAndAward(ctx, s, c, achievement.ProgressContext{
		VerseCompleted:  true,
		PerfectAccuracy: attempt.IsPerfect(),
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
			return fmt.Errorf("submit_attempt: %w", err)
		}
	}

	if c.Level > oldLevel {
		result.Events = append(result.Events,
			shared.NewLevelUpEvent(cmd.ChildID, int(oldLevel), int(c.Level), int(c.TotalXP)))
	}

	if err := s.Children.Update(ctx, c); err != nil {
		return fmt.Errorf("submit_attempt: failed to update child: %w", err)
	}

	result.AttemptID = attempt.ID
	result.Status = attempt.Status
	result.MasteryStreak = mastery.Streak
	result.XPEarned = int(xp)
	result.TotalXP = int(c.TotalXP)
	result.Level = int(c.Level)
	result.LeveledUp = c.Level > oldLevel
	result.CurrentStreak = c.CurrentStreak
	result.UnlockedAchievements = unlocked

	return nil
}

// duplicateResult builds the idempotent response for an already-recorded
// attempt. The child is re-read so the response carries the same totals
// a fresh submission would.
func (h *SubmitAttemptHandler) duplicateResult(ctx context.Context, existing *progress.Attempt) (*SubmitAttemptResult, error) {
	c, err := h.childReads.GetByID(ctx, existing.ChildID)
	if err != nil {
		return nil, fmt.Errorf("submit_attempt: failed to load child: %w", err)
	}

	return &SubmitAttemptResult{
		AttemptID:     existing.ID,
		Duplicate:     true,
		Status:        existing.Status,
		XPEarned:      existing.XPEarned,
		TotalXP:       int(c.TotalXP),
		Level:         int(c.Level),
		CurrentStreak: c.CurrentStreak,
	}, nil
}
