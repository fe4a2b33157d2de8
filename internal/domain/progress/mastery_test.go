package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMastery_StreakSequence(t *testing.T) {
	// A below-threshold attempt resets the streak, later mastery restarts it
	accuracies := []float64{0.95, 0.95, 0.6, 0.95}
	wantStreaks := []int{1, 2, 0, 1}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	m := NewMastery("child-1", 42, accuracies[0], now)
	assert.Equal(t, wantStreaks[0], m.Streak)

	for i := 1; i < len(accuracies); i++ {
		m.Apply(accuracies[i], now.Add(time.Duration(i)*time.Hour))
		assert.Equal(t, wantStreaks[i], m.Streak, "after attempt %d", i+1)
	}

	assert.Equal(t, 4, m.AttemptCount)
	assert.Equal(t, StatusMastered, m.Status)
}

func TestMastery_StatusReflectsLastAttempt(t *testing.T) {
	now := time.Now().UTC()

	m := NewMastery("child-1", 7, 0.95, now)
	require.Equal(t, StatusMastered, m.Status)
	require.True(t, m.IsMastered())

	// Regression is allowed: a weak attempt demotes the word
	m.Apply(0.5, now.Add(time.Hour))
	assert.Equal(t, StatusStruggling, m.Status)
	assert.Equal(t, 0, m.Streak)
	assert.Equal(t, 0.5, m.LastAccuracy)
	assert.False(t, m.IsMastered())
}

func TestMastery_FirstMasteredAtIsSticky(t *testing.T) {
	first := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	m := NewMastery("child-1", 7, 0.92, first)
	require.Equal(t, first, m.FirstMasteredAt)

	m.Apply(0.4, first.Add(time.Hour))
	m.Apply(0.95, first.Add(2*time.Hour))

	// The original mastery timestamp survives regression and re-mastery
	assert.Equal(t, first, m.FirstMasteredAt)
}

func TestMastery_NeverMasteredHasZeroTimestamp(t *testing.T) {
	m := NewMastery("child-1", 7, 0.5, time.Now().UTC())
	assert.True(t, m.FirstMasteredAt.IsZero())
	assert.Equal(t, StatusStruggling, m.Status)
}

func TestDistribution_Total(t *testing.T) {
	d := Distribution{Mastered: 3, Learning: 2, Struggling: 1}
	assert.Equal(t, 6, d.Total())
}
