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

func newSubmitHandler(env *testEnv) *SubmitAttemptHandler {
	return NewSubmitAttemptHandler(env.uow, env.attempts, env.children, env.ids, env.invalidator, logger.Default())
}

func validSubmitCommand() SubmitAttemptCommand {
	return SubmitAttemptCommand{
		ChildID:         "child-1",
		WordID:          42,
		SurahNumber:     1,
		VerseNumber:     1,
		Accuracy:        0.8,
		DeviceAttemptID: "device-attempt-001",
		AttemptedAt:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestSubmitAttempt_PerfectFirstAttempt(t *testing.T) {
	env := newTestEnv()
	env.addChild("child-1", "parent-1")
	h := newSubmitHandler(env)

	cmd := validSubmitCommand()
	cmd.Accuracy = 1.0

	result, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)

	assert.False(t, result.Duplicate)
	assert.Equal(t, progress.StatusMastered, result.Status)
	assert.Equal(t, 1, result.MasteryStreak)
	assert.Equal(t, 1, result.CurrentStreak)

	// word mastered 5 + perfect 25
	assert.Equal(t, 30, result.XPEarned)

	// plus daily streak 5 and the first verse 50 / perfect recitation 100 bonuses
	assert.Equal(t, 185, result.TotalXP)
	assert.Equal(t, 2, result.Level)
	assert.True(t, result.LeveledUp)

	assert.ElementsMatch(t,
		[]string{achievement.FirstVerse, achievement.PerfectRecitation},
		result.UnlockedAchievements)

	// The child row carries the new totals
	c, err := env.children.GetByID(context.Background(), "child-1")
	require.NoError(t, err)
	assert.Equal(t, 185, int(c.TotalXP))
	assert.Equal(t, 2, int(c.Level))

	assert.Equal(t, []string{"child-1"}, env.invalidator.calls)
}

func TestSubmitAttempt_Idempotent(t *testing.T) {
	env := newTestEnv()
	env.addChild("child-1", "parent-1")
	h := newSubmitHandler(env)

	cmd := validSubmitCommand()

	first, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)
	require.False(t, first.Duplicate)

	second, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)

	assert.True(t, second.Duplicate)
	assert.Equal(t, first.AttemptID, second.AttemptID)

	// The duplicate response carries the same totals as the original
	assert.Equal(t, first.XPEarned, second.XPEarned)
	assert.Equal(t, first.TotalXP, second.TotalXP)
	assert.Equal(t, first.Level, second.Level)
	assert.Equal(t, first.CurrentStreak, second.CurrentStreak)

	// No double counting: the child state is unchanged
	c, err := env.children.GetByID(context.Background(), "child-1")
	require.NoError(t, err)
	assert.Equal(t, first.TotalXP, int(c.TotalXP))

	count, err := env.attempts.CountByChild(context.Background(), "child-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSubmitAttempt_Validation(t *testing.T) {
	env := newTestEnv()
	env.addChild("child-1", "parent-1")
	h := newSubmitHandler(env)

	tests := []struct {
		name    string
		mutate  func(*SubmitAttemptCommand)
		wantErr error
	}{
		{"bad accuracy", func(c *SubmitAttemptCommand) { c.Accuracy = 1.2 }, progress.ErrInvalidAccuracy},
		{"bad word id", func(c *SubmitAttemptCommand) { c.WordID = 0 }, progress.ErrInvalidWordID},
		{"short device id", func(c *SubmitAttemptCommand) { c.DeviceAttemptID = "abc" }, progress.ErrInvalidDeviceAttemptID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := validSubmitCommand()
			tt.mutate(&cmd)
			_, err := h.Handle(context.Background(), cmd)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSubmitAttempt_DeletedChildRejected(t *testing.T) {
	env := newTestEnv()
	c := env.addChild("child-1", "parent-1")
	require.NoError(t, c.SoftDelete())
	require.NoError(t, env.children.Update(context.Background(), c))

	h := newSubmitHandler(env)
	_, err := h.Handle(context.Background(), validSubmitCommand())
	assert.Error(t, err)
}

func TestSubmitAttempt_MasteryRegression(t *testing.T) {
	env := newTestEnv()
	env.addChild("child-1", "parent-1")
	h := newSubmitHandler(env)

	// First attempt masters the word
	cmd := validSubmitCommand()
	cmd.Accuracy = 0.95
	first, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, progress.StatusMastered, first.Status)
	assert.Equal(t, 1, first.MasteryStreak)
	assert.Equal(t, 5, first.XPEarned)

	// A weak retry on the same word demotes it, resets the streak and
	// earns nothing
	cmd.DeviceAttemptID = "device-attempt-002"
	cmd.Accuracy = 0.4
	second, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, progress.StatusStruggling, second.Status)
	assert.Equal(t, 0, second.MasteryStreak)
	assert.Equal(t, 0, second.XPEarned)

	// Mastery history survives the regression
	m, err := env.mastery.Get(context.Background(), "child-1", 42)
	require.NoError(t, err)
	assert.Equal(t, 2, m.AttemptCount)
	assert.False(t, m.FirstMasteredAt.IsZero())
}

func TestSubmitAttempt_RewardFollowsAccuracy(t *testing.T) {
	env := newTestEnv()
	env.addChild("child-1", "parent-1")
	h := newSubmitHandler(env)

	// Mastered-level accuracy earns the word XP
	cmd := validSubmitCommand()
	cmd.Accuracy = 0.95
	first, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, 5, first.XPEarned)

	// The same word earns it again: the reward is per attempt, not
	// per first mastery
	cmd.DeviceAttemptID = "device-attempt-002"
	second, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, 5, second.XPEarned)

	// Below the mastered threshold nothing is earned
	cmd.DeviceAttemptID = "device-attempt-003"
	cmd.Accuracy = 0.8
	third, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, 0, third.XPEarned)
}

func TestSubmitAttempt_WeekStreakUnlock(t *testing.T) {
	env := newTestEnv()
	env.addChild("child-1", "parent-1")
	h := newSubmitHandler(env)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	var last *SubmitAttemptResult
	for day := 0; day < 7; day++ {
		cmd := validSubmitCommand()
		cmd.WordID = 100 + day
		cmd.DeviceAttemptID = fmt.Sprintf("device-attempt-%03d", day)
		cmd.AttemptedAt = start.AddDate(0, 0, day)

		var err error
		last, err = h.Handle(context.Background(), cmd)
		require.NoError(t, err)
	}

	assert.Equal(t, 7, last.CurrentStreak)
	assert.Contains(t, last.UnlockedAchievements, achievement.WeekStreak)
}
