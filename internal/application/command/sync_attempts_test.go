package command

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hifz-hub/hifz-progress-hub/internal/domain/achievement"
	"github.com/hifz-hub/hifz-progress-hub/internal/domain/progress"
	"github.com/hifz-hub/hifz-progress-hub/pkg/logger"
)

func newSyncHandler(env *testEnv) *SyncAttemptsHandler {
	return NewSyncAttemptsHandler(env.uow, env.ids, env.invalidator, logger.Default())
}

func syncEntry(childID string, wordID int, accuracy float64, deviceID string) SyncAttemptEntry {
	return SyncAttemptEntry{
		ChildID:         childID,
		WordID:          wordID,
		Accuracy:        accuracy,
		SurahNumber:     1,
		VerseNumber:     1,
		DeviceAttemptID: deviceID,
		AttemptedAt:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestSyncAttempts_SkipsDuplicates(t *testing.T) {
	env := newTestEnv()
	env.addChild("child-1", "parent-1")

	// Two of the five attempts were already recorded online
	submit := newSubmitHandler(env)
	for i := 0; i < 2; i++ {
		cmd := validSubmitCommand()
		cmd.WordID = 10 + i
		cmd.DeviceAttemptID = fmt.Sprintf("sync-device-%03d", i)
		_, err := submit.Handle(context.Background(), cmd)
		require.NoError(t, err)
	}

	entries := make([]SyncAttemptEntry, 0, 5)
	for i := 0; i < 5; i++ {
		entries = append(entries, syncEntry("child-1", 10+i, 0.8, fmt.Sprintf("sync-device-%03d", i)))
	}

	h := newSyncHandler(env)
	result, err := h.Handle(context.Background(), SyncAttemptsCommand{
		ChildID:  "child-1",
		Attempts: entries,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.CreatedCount)
	assert.Equal(t, 2, result.DuplicateCount)

	count, err := env.attempts.CountByChild(context.Background(), "child-1")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestSyncAttempts_AllDuplicatesChangesNothing(t *testing.T) {
	env := newTestEnv()
	env.addChild("child-1", "parent-1")

	submit := newSubmitHandler(env)
	cmd := validSubmitCommand()
	first, err := submit.Handle(context.Background(), cmd)
	require.NoError(t, err)

	h := newSyncHandler(env)
	result, err := h.Handle(context.Background(), SyncAttemptsCommand{
		ChildID:  "child-1",
		Attempts: []SyncAttemptEntry{syncEntry("child-1", 42, 0.8, "device-attempt-001")},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.CreatedCount)
	assert.Equal(t, 1, result.DuplicateCount)
	assert.Equal(t, 0, result.XPEarned)
	assert.Equal(t, first.TotalXP, result.TotalXP)
}

func TestSyncAttempts_XPAndAchievements(t *testing.T) {
	env := newTestEnv()
	env.addChild("child-1", "parent-1")
	h := newSyncHandler(env)

	result, err := h.Handle(context.Background(), SyncAttemptsCommand{
		ChildID: "child-1",
		Attempts: []SyncAttemptEntry{
			syncEntry("child-1", 1, 0.95, "offline-dev-001"),
			syncEntry("child-1", 2, 0.95, "offline-dev-002"),
			syncEntry("child-1", 3, 0.95, "offline-dev-003"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.CreatedCount)
	// 3 mastered-level attempts at 5 each
	assert.Equal(t, 15, result.XPEarned)
	assert.Equal(t, 1, result.CurrentStreak)
	assert.Contains(t, result.UnlockedAchievements, achievement.FirstVerse)
	// daily streak and first verse bonuses land on the child total
	assert.Equal(t, 70, result.TotalXP)
}

func TestSyncAttempts_PerfectBonusOncePerBatch(t *testing.T) {
	env := newTestEnv()
	env.addChild("child-1", "parent-1")
	h := newSyncHandler(env)

	result, err := h.Handle(context.Background(), SyncAttemptsCommand{
		ChildID: "child-1",
		Attempts: []SyncAttemptEntry{
			syncEntry("child-1", 1, 1.0, "offline-dev-001"),
			syncEntry("child-1", 2, 1.0, "offline-dev-002"),
		},
	})
	require.NoError(t, err)

	// two mastered-level attempts (10) + one perfect bonus (25)
	assert.Equal(t, 35, result.XPEarned)
}

func TestSyncAttempts_InsertConflictLeavesNoTrace(t *testing.T) {
	env := newTestEnv()
	env.addChild("child-1", "parent-1")

	// A concurrent online submit lands between the sync pre-check and
	// the batch insert, so the insert is the first to see the conflict.
	submit := newSubmitHandler(env)
	cmd := validSubmitCommand()
	cmd.WordID = 1
	cmd.Accuracy = 0.95
	cmd.DeviceAttemptID = "offline-dev-001"
	first, err := submit.Handle(context.Background(), cmd)
	require.NoError(t, err)
	env.attempts.precheckBlind = map[string]bool{"offline-dev-001": true}

	h := newSyncHandler(env)
	result, err := h.Handle(context.Background(), SyncAttemptsCommand{
		ChildID: "child-1",
		Attempts: []SyncAttemptEntry{
			syncEntry("child-1", 1, 0.95, "offline-dev-001"),
			syncEntry("child-1", 2, 0.95, "offline-dev-002"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.CreatedCount)
	assert.Equal(t, 1, result.DuplicateCount)

	// Only the surviving row earns XP and the skipped one adds nothing
	// to the child total
	assert.Equal(t, 5, result.XPEarned)
	assert.Equal(t, first.TotalXP+5, result.TotalXP)

	// The skipped row left its word's mastery untouched
	m, err := env.mastery.Get(context.Background(), "child-1", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, m.AttemptCount)
}

func TestSyncAttempts_Validation(t *testing.T) {
	env := newTestEnv()
	env.addChild("child-1", "parent-1")
	h := newSyncHandler(env)

	t.Run("child mismatch rejects whole batch", func(t *testing.T) {
		_, err := h.Handle(context.Background(), SyncAttemptsCommand{
			ChildID: "child-1",
			Attempts: []SyncAttemptEntry{
				syncEntry("child-1", 1, 0.8, "offline-dev-001"),
				syncEntry("child-2", 2, 0.8, "offline-dev-002"),
			},
		})
		assert.ErrorIs(t, err, progress.ErrChildMismatch)

		count, _ := env.attempts.CountByChild(context.Background(), "child-1")
		assert.Equal(t, 0, count)
	})

	t.Run("oversized batch rejected", func(t *testing.T) {
		entries := make([]SyncAttemptEntry, progress.MaxSyncBatchSize+1)
		for i := range entries {
			entries[i] = syncEntry("child-1", i+1, 0.8, fmt.Sprintf("offline-dev-%04d", i))
		}
		_, err := h.Handle(context.Background(), SyncAttemptsCommand{
			ChildID:  "child-1",
			Attempts: entries,
		})
		assert.ErrorIs(t, err, progress.ErrSyncBatchTooLarge)
	})

	t.Run("empty batch rejected", func(t *testing.T) {
		_, err := h.Handle(context.Background(), SyncAttemptsCommand{ChildID: "child-1"})
		assert.Error(t, err)
	})
}
