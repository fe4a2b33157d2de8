package child

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChild(t *testing.T) *Child {
	t.Helper()
	c, err := NewChild(NewChildParams{
		ID:       "child-1",
		ParentID: "parent-1",
		Name:     "Amina",
		Age:      7,
		Avatar:   Avatar2,
	})
	require.NoError(t, err)
	return c
}

func TestNewChild_Defaults(t *testing.T) {
	c := newTestChild(t)

	assert.Equal(t, StatusActive, c.Status)
	assert.Equal(t, XP(0), c.TotalXP)
	assert.Equal(t, Level(1), c.Level)
	assert.Equal(t, 0, c.CurrentStreak)
	assert.True(t, c.LastPracticeAt.IsZero())
}

func TestNewChild_Validation(t *testing.T) {
	tests := []struct {
		name    string
		params  NewChildParams
		wantErr error
	}{
		{
			name:    "empty name",
			params:  NewChildParams{ID: "c1", ParentID: "p1", Name: "   ", Age: 7},
			wantErr: ErrInvalidName,
		},
		{
			name:    "name too long",
			params:  NewChildParams{ID: "c1", ParentID: "p1", Name: string(make([]byte, 51)), Age: 7},
			wantErr: ErrInvalidName,
		},
		{
			name:    "age too young",
			params:  NewChildParams{ID: "c1", ParentID: "p1", Name: "Omar", Age: 2},
			wantErr: ErrInvalidAge,
		},
		{
			name:    "age too old",
			params:  NewChildParams{ID: "c1", ParentID: "p1", Name: "Omar", Age: 13},
			wantErr: ErrInvalidAge,
		},
		{
			name:    "unknown avatar",
			params:  NewChildParams{ID: "c1", ParentID: "p1", Name: "Omar", Age: 8, Avatar: "AVATAR_99"},
			wantErr: ErrInvalidAvatarToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChild(tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewChild_DefaultAvatar(t *testing.T) {
	c, err := NewChild(NewChildParams{ID: "c1", ParentID: "p1", Name: "Omar", Age: 8})
	require.NoError(t, err)
	assert.Equal(t, DefaultAvatar(), c.Avatar)
}

func TestChild_AwardXP(t *testing.T) {
	c := newTestChild(t)

	transition, err := c.AwardXP(110)
	require.NoError(t, err)

	assert.Equal(t, XP(110), c.TotalXP)
	assert.Equal(t, Level(2), c.Level)
	assert.True(t, transition.LeveledUp())

	_, err = c.AwardXP(-1)
	assert.ErrorIs(t, err, ErrNegativeXP)
	assert.Equal(t, XP(110), c.TotalXP)
}

func TestChild_RecordPractice_Streaks(t *testing.T) {
	c := newTestChild(t)

	day1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	c.RecordPractice(day1)
	assert.Equal(t, 1, c.CurrentStreak)
	assert.Equal(t, 1, c.LongestStreak)

	// Same day twice does not extend the streak
	c.RecordPractice(day1.Add(4 * time.Hour))
	assert.Equal(t, 1, c.CurrentStreak)

	// Next day extends
	c.RecordPractice(day1.AddDate(0, 0, 1))
	assert.Equal(t, 2, c.CurrentStreak)
	assert.Equal(t, 2, c.LongestStreak)

	c.RecordPractice(day1.AddDate(0, 0, 2))
	assert.Equal(t, 3, c.CurrentStreak)

	// A gap resets the streak but keeps the best one
	c.RecordPractice(day1.AddDate(0, 0, 5))
	assert.Equal(t, 1, c.CurrentStreak)
	assert.Equal(t, 3, c.LongestStreak)
}

func TestChild_SoftDelete(t *testing.T) {
	c := newTestChild(t)

	require.NoError(t, c.SoftDelete())
	assert.Equal(t, StatusDeleted, c.Status)
	assert.False(t, c.IsActive())

	assert.ErrorIs(t, c.SoftDelete(), ErrChildDeleted)
}
