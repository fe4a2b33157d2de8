package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hifz-hub/hifz-progress-hub/internal/domain/achievement"
)

func awardByName(t *testing.T, repo *fakeAchievements, childID, name string, at time.Time) {
	t.Helper()
	a, err := repo.GetByName(context.Background(), name)
	require.NoError(t, err)
	require.NoError(t, repo.Award(context.Background(), &achievement.ChildAchievement{
		ChildID:       childID,
		AchievementID: a.ID,
		EarnedAt:      at,
	}))
}

func TestListCatalog_ReturnsSeededEntries(t *testing.T) {
	h := NewListCatalogHandler(newFakeAchievements())

	dtos, err := h.Handle(context.Background())
	require.NoError(t, err)
	require.Len(t, dtos, len(achievement.SeedCatalog()))

	names := make([]string, 0, len(dtos))
	for _, dto := range dtos {
		names = append(names, dto.Name)
		assert.False(t, dto.Earned)
		assert.Nil(t, dto.EarnedAt)
		assert.NotEmpty(t, dto.Title)
		assert.Greater(t, dto.XPReward, 0)
	}
	assert.Contains(t, names, achievement.FirstVerse)
	assert.Contains(t, names, achievement.PerfectRecitation)
}

func TestGetChildAchievements_EarnedOnly(t *testing.T) {
	repo := newFakeAchievements()
	earnedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	awardByName(t, repo, "child-1", achievement.FirstVerse, earnedAt)
	awardByName(t, repo, "child-2", achievement.WeekStreak, earnedAt)

	h := NewGetChildAchievementsHandler(repo)

	dtos, err := h.Handle(context.Background(), GetChildAchievementsQuery{ChildID: "child-1"})
	require.NoError(t, err)
	require.Len(t, dtos, 1)

	assert.Equal(t, achievement.FirstVerse, dtos[0].Name)
	assert.True(t, dtos[0].Earned)
	require.NotNil(t, dtos[0].EarnedAt)
	assert.Equal(t, earnedAt, *dtos[0].EarnedAt)
}

func TestGetChildAchievements_IncludeLocked(t *testing.T) {
	repo := newFakeAchievements()
	earnedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	awardByName(t, repo, "child-1", achievement.PerfectRecitation, earnedAt)

	h := NewGetChildAchievementsHandler(repo)

	dtos, err := h.Handle(context.Background(), GetChildAchievementsQuery{ChildID: "child-1", IncludeLocked: true})
	require.NoError(t, err)
	require.Len(t, dtos, len(achievement.SeedCatalog()))

	earned := 0
	for _, dto := range dtos {
		if dto.Earned {
			earned++
			assert.Equal(t, achievement.PerfectRecitation, dto.Name)
			require.NotNil(t, dto.EarnedAt)
			assert.Equal(t, earnedAt, *dto.EarnedAt)
		} else {
			assert.Nil(t, dto.EarnedAt)
		}
	}
	assert.Equal(t, 1, earned)
}

func TestGetChildAchievements_NothingEarned(t *testing.T) {
	h := NewGetChildAchievementsHandler(newFakeAchievements())

	dtos, err := h.Handle(context.Background(), GetChildAchievementsQuery{ChildID: "child-1"})
	require.NoError(t, err)
	assert.Empty(t, dtos)
}

func TestGetChildAchievements_RequiresChildID(t *testing.T) {
	h := NewGetChildAchievementsHandler(newFakeAchievements())

	_, err := h.Handle(context.Background(), GetChildAchievementsQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "child_id is required")
}
