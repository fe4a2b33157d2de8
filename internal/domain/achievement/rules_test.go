package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		ctx  ProgressContext
		want []string
	}{
		{
			name: "empty context unlocks nothing",
			ctx:  ProgressContext{},
			want: nil,
		},
		{
			name: "verse completion unlocks first verse",
			ctx:  ProgressContext{VerseCompleted: true},
			want: []string{FirstVerse},
		},
		{
			name: "perfect verse unlocks two",
			ctx:  ProgressContext{VerseCompleted: true, PerfectAccuracy: true},
			want: []string{FirstVerse, PerfectRecitation},
		},
		{
			name: "streak below seven is not enough",
			ctx:  ProgressContext{CurrentStreak: 6},
			want: nil,
		},
		{
			name: "seven day streak unlocks week warrior",
			ctx:  ProgressContext{CurrentStreak: 7},
			want: []string{WeekStreak},
		},
		{
			name: "ten mastered words unlocks memorization master",
			ctx:  ProgressContext{WordsMastered: 10},
			want: []string{MemorizationMaster},
		},
		{
			name: "nine mastered words is not enough",
			ctx:  ProgressContext{WordsMastered: 9},
			want: nil,
		},
		{
			name: "everything at once",
			ctx: ProgressContext{
				VerseCompleted:  true,
				PerfectAccuracy: true,
				CurrentStreak:   10,
				SurahCompleted:  true,
				WordsMastered:   15,
			},
			want: []string{FirstVerse, PerfectRecitation, WeekStreak, SurahCompleted, MemorizationMaster},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.ctx))
		})
	}
}

func TestSeedCatalog(t *testing.T) {
	entries := SeedCatalog()
	assert.Len(t, entries, 5)

	names := make(map[string]bool)
	for _, e := range entries {
		assert.NotEmpty(t, e.Title)
		assert.NotEmpty(t, e.Badge)
		assert.Greater(t, e.XPReward, 0)
		names[e.Name] = true
	}

	// Every rule must reference a catalog entry
	for _, rule := range rules {
		assert.True(t, names[rule.Name], "rule %s has no catalog entry", rule.Name)
	}
}
