package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hifz-hub/hifz-progress-hub/internal/domain/achievement"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET ACHIEVEMENTS QUERIES
// Каталог достижений и достижения конкретного ребёнка.
// ══════════════════════════════════════════════════════════════════════════════

// AchievementDTO - запись каталога достижений.
type AchievementDTO struct {
	// Name - стабильный бизнес-ключ.
	Name string `json:"name"`

	// Title - отображаемое название.
	Title string `json:"title"`

	// Description - описание условия.
	Description string `json:"description"`

	// Badge - токен значка.
	Badge string `json:"badge"`

	// XPReward - бонус XP за разблокировку.
	XPReward int `json:"xp_reward"`

	// Earned - разблокировано ли (для запросов по ребёнку).
	Earned bool `json:"earned"`

	// EarnedAt - когда разблокировано (если Earned).
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}

// ListCatalogHandler возвращает весь каталог достижений.
type ListCatalogHandler struct {
	achievements achievement.Repository
}

// NewListCatalogHandler создаёт обработчик.
func NewListCatalogHandler(achievements achievement.Repository) *ListCatalogHandler {
	return &ListCatalogHandler{achievements: achievements}
}

// Handle выполняет запрос каталога.
func (h *ListCatalogHandler) Handle(ctx context.Context) ([]AchievementDTO, error) {
	entries, err := h.achievements.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list_catalog: %w", err)
	}

	dtos := make([]AchievementDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, AchievementDTO{
			Name:        e.Name,
			Title:       e.Title,
			Description: e.Description,
			Badge:       e.Badge,
			XPReward:    e.XPReward,
		})
	}
	return dtos, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CHILD ACHIEVEMENTS
// ══════════════════════════════════════════════════════════════════════════════

// GetChildAchievementsQuery содержит параметры запроса.
type GetChildAchievementsQuery struct {
	// ChildID - внутренний ID ребёнка.
	ChildID string

	// IncludeLocked - включить ещё не разблокированные записи каталога.
	IncludeLocked bool
}

// Validate проверяет корректность параметров.
func (q *GetChildAchievementsQuery) Validate() error {
	if q.ChildID == "" {
		return errors.New("get_child_achievements: child_id is required")
	}
	return nil
}

// GetChildAchievementsHandler возвращает достижения ребёнка.
type GetChildAchievementsHandler struct {
	achievements achievement.Repository
}

// NewGetChildAchievementsHandler создаёт обработчик.
func NewGetChildAchievementsHandler(achievements achievement.Repository) *GetChildAchievementsHandler {
	return &GetChildAchievementsHandler{achievements: achievements}
}

// Handle выполняет запрос достижений ребёнка.
func (h *GetChildAchievementsHandler) Handle(ctx context.Context, q GetChildAchievementsQuery) ([]AchievementDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	earned, err := h.achievements.ListByChild(ctx, q.ChildID)
	if err != nil {
		return nil, fmt.Errorf("get_child_achievements: %w", err)
	}

	earnedByName := make(map[string]*achievement.EarnedAchievement, len(earned))
	for _, e := range earned {
		earnedByName[e.Name] = e
	}

	if !q.IncludeLocked {
		dtos := make([]AchievementDTO, 0, len(earned))
		for _, e := range earned {
			at := e.Earned.EarnedAt
			dtos = append(dtos, AchievementDTO{
				Name:        e.Name,
				Title:       e.Title,
				Description: e.Description,
				Badge:       e.Badge,
				XPReward:    e.XPReward,
				Earned:      true,
				EarnedAt:    &at,
			})
		}
		return dtos, nil
	}

	// Полный каталог с пометками, что уже разблокировано
	catalog, err := h.achievements.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_child_achievements: %w", err)
	}

	dtos := make([]AchievementDTO, 0, len(catalog))
	for _, entry := range catalog {
		dto := AchievementDTO{
			Name:        entry.Name,
			Title:       entry.Title,
			Description: entry.Description,
			Badge:       entry.Badge,
			XPReward:    entry.XPReward,
		}
		if e, ok := earnedByName[entry.Name]; ok {
			at := e.Earned.EarnedAt
			dto.Earned = true
			dto.EarnedAt = &at
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}
