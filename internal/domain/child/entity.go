// Package child содержит доменную модель профиля ребёнка Hifz Hub.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package child

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// XP представляет очки опыта ребёнка.
type XP int

// IsValid проверяет, что XP неотрицательный.
func (x XP) IsValid() bool {
	return x >= 0
}

// Add складывает XP.
func (x XP) Add(delta XP) XP {
	return x + delta
}

// Diff вычисляет разницу между двумя значениями XP.
func (x XP) Diff(other XP) XP {
	return x - other
}

// Level представляет уровень ребёнка, вычисляемый из XP.
type Level int

// AvatarToken представляет токен аватара (не произвольный текст).
type AvatarToken string

const (
	Avatar1 AvatarToken = "AVATAR_1"
	Avatar2 AvatarToken = "AVATAR_2"
	Avatar3 AvatarToken = "AVATAR_3"
	Avatar4 AvatarToken = "AVATAR_4"
	Avatar5 AvatarToken = "AVATAR_5"
)

// IsValid проверяет, что токен аватара известен.
func (a AvatarToken) IsValid() bool {
	switch a {
	case Avatar1, Avatar2, Avatar3, Avatar4, Avatar5:
		return true
	default:
		return false
	}
}

// DefaultAvatar возвращает аватар по умолчанию.
func DefaultAvatar() AvatarToken {
	return Avatar1
}

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Status определяет текущий статус профиля ребёнка.
type Status string

const (
	// StatusActive - профиль активен.
	StatusActive Status = "active"
	// StatusDeleted - профиль удалён родителем (soft delete, данные сохраняются).
	StatusDeleted Status = "deleted"
)

// IsValid проверяет, что статус корректен.
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusDeleted
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: CHILD
// ══════════════════════════════════════════════════════════════════════════════

// Child - центральная сущность системы, представляющая профиль ребёнка.
// Физически никогда не удаляется - только soft delete.
type Child struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// ParentID - идентификатор родителя-владельца профиля.
	ParentID string

	// Name - имя ребёнка.
	Name string

	// Age - возраст ребёнка (3-12 лет).
	Age int

	// Avatar - токен аватара.
	Avatar AvatarToken

	// TotalXP - накопленные очки опыта. Только растёт, никогда не уменьшается.
	TotalXP XP

	// Level - текущий уровень, детерминированная функция от TotalXP.
	Level Level

	// CurrentStreak - текущая серия дней практики.
	CurrentStreak int

	// LongestStreak - лучшая серия дней практики.
	LongestStreak int

	// LastPracticeAt - время последней практики (zero value = не практиковал).
	LastPracticeAt time.Time

	// Status - текущий статус профиля.
	Status Status

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewChildParams содержит параметры для создания нового профиля.
type NewChildParams struct {
	ID       string
	ParentID string
	Name     string
	Age      int
	Avatar   AvatarToken
}

// Ограничения валидации профиля.
const (
	MinAge     = 3
	MaxAge     = 12
	MaxNameLen = 50
)

// NewChild создаёт новый профиль ребёнка с валидацией всех полей.
func NewChild(params NewChildParams) (*Child, error) {
	if params.ID == "" {
		return nil, errors.New("child id is required")
	}
	if params.ParentID == "" {
		return nil, errors.New("parent id is required")
	}

	name := strings.TrimSpace(params.Name)
	if len(name) == 0 || len(name) > MaxNameLen {
		return nil, ErrInvalidName
	}

	if params.Age < MinAge || params.Age > MaxAge {
		return nil, ErrInvalidAge
	}

	avatar := params.Avatar
	if avatar == "" {
		avatar = DefaultAvatar()
	}
	if !avatar.IsValid() {
		return nil, ErrInvalidAvatarToken
	}

	now := time.Now().UTC()

	return &Child{
		ID:             params.ID,
		ParentID:       params.ParentID,
		Name:           name,
		Age:            params.Age,
		Avatar:         avatar,
		TotalXP:        0,
		Level:          1,
		CurrentStreak:  0,
		LongestStreak:  0,
		LastPracticeAt: time.Time{},
		Status:         StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidName - невалидное имя ребёнка.
	ErrInvalidName = errors.New("invalid child name: must be 1-50 chars")

	// ErrInvalidAge - невалидный возраст.
	ErrInvalidAge = errors.New("invalid child age: must be between 3 and 12")

	// ErrInvalidAvatarToken - неизвестный токен аватара.
	ErrInvalidAvatarToken = errors.New("invalid avatar token")

	// ErrNegativeXP - отрицательная сумма XP.
	ErrNegativeXP = errors.New("xp amount cannot be negative")

	// ErrChildNotFound - профиль не найден.
	ErrChildNotFound = errors.New("child not found")

	// ErrChildDeleted - профиль удалён.
	ErrChildDeleted = errors.New("child profile is deleted")
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// IsActive возвращает true, если профиль не удалён.
func (c *Child) IsActive() bool {
	return c.Status == StatusActive
}

// SoftDelete помечает профиль как удалённый. Данные прогресса сохраняются.
func (c *Child) SoftDelete() error {
	if c.Status == StatusDeleted {
		return ErrChildDeleted
	}
	c.Status = StatusDeleted
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// AwardXP применяет начисление XP к профилю и возвращает переход.
// Сумма обязана быть неотрицательной - инвариант монотонности TotalXP.
func (c *Child) AwardXP(amount XP) (XPTransition, error) {
	transition, err := ApplyXP(c.TotalXP, c.Level, amount)
	if err != nil {
		return XPTransition{}, err
	}

	c.TotalXP = transition.NewTotalXP
	c.Level = transition.NewLevel
	c.UpdatedAt = time.Now().UTC()

	return transition, nil
}

// RecordPractice обновляет дневную серию практики.
// Тот же день - без изменений; следующий день - серия растёт;
// пропуск дней - серия начинается заново с 1.
func (c *Child) RecordPractice(at time.Time) {
	day := startOfDay(at)

	if c.LastPracticeAt.IsZero() {
		c.CurrentStreak = 1
		c.LongestStreak = 1
		c.LastPracticeAt = at.UTC()
		c.UpdatedAt = time.Now().UTC()
		return
	}

	lastDay := startOfDay(c.LastPracticeAt)
	daysDiff := int(day.Sub(lastDay).Hours() / 24)

	switch {
	case daysDiff <= 0:
		// Тот же день - серия не меняется, но время практики обновляем
	case daysDiff == 1:
		c.CurrentStreak++
		if c.CurrentStreak > c.LongestStreak {
			c.LongestStreak = c.CurrentStreak
		}
	default:
		c.CurrentStreak = 1
	}

	c.LastPracticeAt = at.UTC()
	c.UpdatedAt = time.Now().UTC()
}

// PracticedToday проверяет, была ли практика сегодня (в UTC).
func (c *Child) PracticedToday(now time.Time) bool {
	if c.LastPracticeAt.IsZero() {
		return false
	}
	return startOfDay(c.LastPracticeAt).Equal(startOfDay(now))
}

// String возвращает строковое представление для логирования.
func (c *Child) String() string {
	return fmt.Sprintf(
		"Child{ID: %s, Name: %s, XP: %d, Level: %d, Streak: %d}",
		c.ID, c.Name, c.TotalXP, c.Level, c.CurrentStreak,
	)
}

// Clone создаёт глубокую копию профиля.
func (c *Child) Clone() *Child {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// startOfDay обрезает время до начала дня в UTC.
func startOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
