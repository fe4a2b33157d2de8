// Package achievement содержит доменную модель достижений:
// каталог, правила разблокировки и выданные детям награды.
package achievement

import (
	"errors"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT CATALOG
// ══════════════════════════════════════════════════════════════════════════════

// Имена достижений каталога. Имя - стабильный бизнес-ключ,
// уникальный в рамках всей системы.
const (
	FirstVerse         = "FIRST_VERSE"
	PerfectRecitation  = "PERFECT_RECITATION"
	WeekStreak         = "WEEK_STREAK"
	SurahCompleted     = "SURAH_COMPLETE"
	MemorizationMaster = "MEMORIZATION_MASTER"
)

// Токены значков. Клиент отображает их сам, сервер хранит только токен.
const (
	BadgeStar   = "BADGE_STAR"
	BadgeTrophy = "BADGE_TROPHY"
	BadgeFire   = "BADGE_FIRE"
	BadgeBook   = "BADGE_BOOK"
	BadgeBrain  = "BADGE_BRAIN"
)

// Achievement представляет запись каталога достижений.
type Achievement struct {
	// ID - внутренний уникальный идентификатор.
	ID string

	// Name - стабильный бизнес-ключ (FIRST_VERSE и т.д.).
	Name string

	// Title - отображаемое название.
	Title string

	// Description - описание условия получения.
	Description string

	// Badge - токен значка.
	Badge string

	// XPReward - бонус XP за разблокировку.
	XPReward int

	// CreatedAt - время создания записи каталога.
	CreatedAt time.Time
}

// ChildAchievement представляет факт разблокировки достижения ребёнком.
// Повторная выдача невозможна - пара (childID, achievementID) уникальна.
type ChildAchievement struct {
	// ChildID - кто разблокировал.
	ChildID string

	// AchievementID - что разблокировано.
	AchievementID string

	// EarnedAt - когда разблокировано.
	EarnedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrAchievementNotFound - достижение не найдено в каталоге.
	ErrAchievementNotFound = errors.New("achievement not found")

	// ErrAlreadyEarned - достижение уже разблокировано ребёнком.
	ErrAlreadyEarned = errors.New("achievement already earned")
)

// ══════════════════════════════════════════════════════════════════════════════
// SEED CATALOG
// ══════════════════════════════════════════════════════════════════════════════

// SeedEntry описывает одну запись стартового каталога.
type SeedEntry struct {
	Name        string
	Title       string
	Description string
	Badge       string
	XPReward    int
}

// SeedCatalog возвращает стартовый каталог достижений.
// Записи вставляются идемпотентно по уникальному имени.
func SeedCatalog() []SeedEntry {
	return []SeedEntry{
		{FirstVerse, "First Verse", "Complete your first verse", BadgeStar, 50},
		{PerfectRecitation, "Perfect Recitation", "Achieve 100% accuracy on a verse", BadgeTrophy, 100},
		{WeekStreak, "Week Warrior", "Practice 7 days in a row", BadgeFire, 150},
		{SurahCompleted, "Surah Scholar", "Complete an entire surah", BadgeBook, 200},
		{MemorizationMaster, "Memorization Master", "Master 10 words", BadgeBrain, 100},
	}
}
