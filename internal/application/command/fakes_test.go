package command

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hifz-hub/hifz-progress-hub/internal/domain/achievement"
	"github.com/hifz-hub/hifz-progress-hub/internal/domain/child"
	"github.com/hifz-hub/hifz-progress-hub/internal/domain/progress"
)

// In-memory fakes for handler tests.

type fakeChildren struct {
	mu    sync.Mutex
	items map[string]*child.Child
}

func newFakeChildren() *fakeChildren {
	return &fakeChildren{items: make(map[string]*child.Child)}
}

func (f *fakeChildren) Create(_ context.Context, c *child.Child) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[c.ID] = c.Clone()
	return nil
}

func (f *fakeChildren) GetByID(_ context.Context, id string) (*child.Child, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[id]
	if !ok {
		return nil, child.ErrChildNotFound
	}
	return c.Clone(), nil
}

func (f *fakeChildren) GetByIDForUpdate(ctx context.Context, id string) (*child.Child, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeChildren) ListByParent(_ context.Context, parentID string) ([]*child.Child, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*child.Child
	for _, c := range f.items {
		if c.ParentID == parentID && c.IsActive() {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

func (f *fakeChildren) Update(_ context.Context, c *child.Child) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[c.ID]; !ok {
		return child.ErrChildNotFound
	}
	f.items[c.ID] = c.Clone()
	return nil
}

func (f *fakeChildren) CountByParent(_ context.Context, parentID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, c := range f.items {
		if c.ParentID == parentID && c.IsActive() {
			count++
		}
	}
	return count, nil
}

type fakeAttempts struct {
	mu       sync.Mutex
	byDevice map[string]*progress.Attempt

	// Keys listed here are withheld from ExistingDeviceAttemptIDs, so a
	// batch insert is the first to see them as conflicts. Simulates a
	// concurrent submit landing between pre-check and insert.
	precheckBlind map[string]bool
}

func newFakeAttempts() *fakeAttempts {
	return &fakeAttempts{byDevice: make(map[string]*progress.Attempt)}
}

func (f *fakeAttempts) Create(_ context.Context, a *progress.Attempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byDevice[a.DeviceAttemptID]; ok {
		return progress.ErrDuplicateAttempt
	}
	f.byDevice[a.DeviceAttemptID] = a
	return nil
}

func (f *fakeAttempts) CreateBatch(_ context.Context, attempts []*progress.Attempt) ([]*progress.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var created []*progress.Attempt
	for _, a := range attempts {
		if _, ok := f.byDevice[a.DeviceAttemptID]; ok {
			continue
		}
		f.byDevice[a.DeviceAttemptID] = a
		created = append(created, a)
	}
	return created, nil
}

func (f *fakeAttempts) GetByDeviceAttemptID(_ context.Context, deviceAttemptID string) (*progress.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byDevice[deviceAttemptID]
	if !ok {
		return nil, progress.ErrAttemptNotFound
	}
	return a, nil
}

func (f *fakeAttempts) ExistingDeviceAttemptIDs(_ context.Context, ids []string) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]bool)
	for _, id := range ids {
		if f.precheckBlind[id] {
			continue
		}
		if _, ok := f.byDevice[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (f *fakeAttempts) CountByChild(_ context.Context, childID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, a := range f.byDevice {
		if a.ChildID == childID {
			count++
		}
	}
	return count, nil
}

func (f *fakeAttempts) StatsByChild(_ context.Context, childID string, since time.Time) (progress.AttemptStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var stats progress.AttemptStats
	var sum float64
	for _, a := range f.byDevice {
		if a.ChildID != childID {
			continue
		}
		if !since.IsZero() && a.AttemptedAt.Before(since) {
			continue
		}
		stats.AttemptCount++
		sum += a.Accuracy
		if a.IsPerfect() {
			stats.PerfectCount++
		}
	}
	if stats.AttemptCount > 0 {
		stats.AvgAccuracy = sum / float64(stats.AttemptCount)
	}
	return stats, nil
}

type fakeMastery struct {
	mu    sync.Mutex
	items map[string]*progress.Mastery
}

func newFakeMastery() *fakeMastery {
	return &fakeMastery{items: make(map[string]*progress.Mastery)}
}

func masteryKey(childID string, wordID int) string {
	return fmt.Sprintf("%s|%d", childID, wordID)
}

func (f *fakeMastery) Get(_ context.Context, childID string, wordID int) (*progress.Mastery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.items[masteryKey(childID, wordID)]
	if !ok {
		return nil, progress.ErrMasteryNotFound
	}
	clone := *m
	return &clone, nil
}

func (f *fakeMastery) Upsert(_ context.Context, m *progress.Mastery) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *m
	f.items[masteryKey(m.ChildID, m.WordID)] = &clone
	return nil
}

func (f *fakeMastery) CountMastered(_ context.Context, childID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, m := range f.items {
		if m.ChildID == childID && m.IsMastered() {
			count++
		}
	}
	return count, nil
}

func (f *fakeMastery) DistributionByChild(_ context.Context, childID string) (progress.Distribution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var d progress.Distribution
	for _, m := range f.items {
		if m.ChildID != childID {
			continue
		}
		switch m.Status {
		case progress.StatusMastered:
			d.Mastered++
		case progress.StatusLearning:
			d.Learning++
		case progress.StatusStruggling:
			d.Struggling++
		}
	}
	return d, nil
}

func (f *fakeMastery) ListByChild(_ context.Context, childID string) ([]*progress.Mastery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*progress.Mastery
	for _, m := range f.items {
		if m.ChildID == childID {
			clone := *m
			out = append(out, &clone)
		}
	}
	return out, nil
}

type fakeAchievements struct {
	mu      sync.Mutex
	catalog map[string]*achievement.Achievement
	earned  map[string]map[string]time.Time
}

func newFakeAchievements() *fakeAchievements {
	f := &fakeAchievements{
		catalog: make(map[string]*achievement.Achievement),
		earned:  make(map[string]map[string]time.Time),
	}
	for i, entry := range achievement.SeedCatalog() {
		f.catalog[entry.Name] = &achievement.Achievement{
			ID:          fmt.Sprintf("ach-%d", i+1),
			Name:        entry.Name,
			Title:       entry.Title,
			Description: entry.Description,
			Badge:       entry.Badge,
			XPReward:    entry.XPReward,
		}
	}
	return f
}

func (f *fakeAchievements) GetByName(_ context.Context, name string) (*achievement.Achievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.catalog[name]
	if !ok {
		return nil, achievement.ErrAchievementNotFound
	}
	return a, nil
}

func (f *fakeAchievements) ListAll(_ context.Context) ([]*achievement.Achievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*achievement.Achievement
	for _, a := range f.catalog {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAchievements) UpsertCatalog(_ context.Context, a *achievement.Achievement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.catalog[a.Name] = a
	return nil
}

func (f *fakeAchievements) HasEarned(_ context.Context, childID, achievementID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.earned[childID][achievementID]
	return ok, nil
}

func (f *fakeAchievements) Award(_ context.Context, ca *achievement.ChildAchievement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.earned[ca.ChildID][ca.AchievementID]; ok {
		return achievement.ErrAlreadyEarned
	}
	if f.earned[ca.ChildID] == nil {
		f.earned[ca.ChildID] = make(map[string]time.Time)
	}
	f.earned[ca.ChildID][ca.AchievementID] = ca.EarnedAt
	return nil
}

func (f *fakeAchievements) ListByChild(_ context.Context, childID string) ([]*achievement.EarnedAchievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*achievement.EarnedAchievement
	for _, a := range f.catalog {
		if at, ok := f.earned[childID][a.ID]; ok {
			out = append(out, &achievement.EarnedAchievement{
				Achievement: *a,
				Earned: achievement.ChildAchievement{
					ChildID:       childID,
					AchievementID: a.ID,
					EarnedAt:      at,
				},
			})
		}
	}
	return out, nil
}

func (f *fakeAchievements) CountByChild(_ context.Context, childID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.earned[childID]), nil
}

// fakeUow runs the function directly against the shared fakes.
type fakeUow struct {
	stores Stores
}

func (f *fakeUow) WithinTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	return fn(ctx, f.stores)
}

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

type fakeInvalidator struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeInvalidator) InvalidateSummary(_ context.Context, childID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, childID)
	return nil
}

// testEnv wires the fakes into handlers.
type testEnv struct {
	children     *fakeChildren
	attempts     *fakeAttempts
	mastery      *fakeMastery
	achievements *fakeAchievements
	invalidator  *fakeInvalidator
	uow          *fakeUow
	ids          *seqIDs
}

func newTestEnv() *testEnv {
	env := &testEnv{
		children:     newFakeChildren(),
		attempts:     newFakeAttempts(),
		mastery:      newFakeMastery(),
		achievements: newFakeAchievements(),
		invalidator:  &fakeInvalidator{},
		ids:          &seqIDs{},
	}
	env.uow = &fakeUow{stores: Stores{
		Children:     env.children,
		Attempts:     env.attempts,
		Mastery:      env.mastery,
		Achievements: env.achievements,
	}}
	return env
}

func (env *testEnv) addChild(id, parentID string) *child.Child {
	c, err := child.NewChild(child.NewChildParams{
		ID:       id,
		ParentID: parentID,
		Name:     "Amina",
		Age:      7,
	})
	if err != nil {
		panic(err)
	}
	_ = env.children.Create(context.Background(), c)
	return c
}
