package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/hifz-hub/hifz-progress-hub/internal/domain/child"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET XP STATUS QUERY
// Лёгкий запрос текущего XP и уровня - для шапки детского экрана.
// ══════════════════════════════════════════════════════════════════════════════

// GetXPStatusQuery содержит параметры запроса.
type GetXPStatusQuery struct {
	// ChildID - внутренний ID ребёнка.
	ChildID string
}

// Validate проверяет корректность параметров.
func (q *GetXPStatusQuery) Validate() error {
	if q.ChildID == "" {
		return errors.New("get_xp_status: child_id is required")
	}
	return nil
}

// XPStatusDTO - текущий XP-статус ребёнка.
type XPStatusDTO struct {
	// ChildID - ID ребёнка.
	ChildID string `json:"child_id"`

	// TotalXP - накопленный XP.
	TotalXP int `json:"total_xp"`

	// Level - текущий уровень.
	Level int `json:"level"`

	// NextLevel - следующий уровень.
	NextLevel int `json:"next_level"`

	// XPToNextLevel - сколько XP до следующего уровня.
	XPToNextLevel int `json:"xp_to_next_level"`

	// ProgressPercent - процент прохождения уровня.
	ProgressPercent int `json:"progress_percent"`

	// CurrentStreak - текущая серия дней практики.
	CurrentStreak int `json:"current_streak"`
}

// GetXPStatusHandler обрабатывает запрос XP-статуса.
type GetXPStatusHandler struct {
	children child.Repository
}

// NewGetXPStatusHandler создаёт обработчик.
func NewGetXPStatusHandler(children child.Repository) *GetXPStatusHandler {
	return &GetXPStatusHandler{children: children}
}

// Handle выполняет запрос.
func (h *GetXPStatusHandler) Handle(ctx context.Context, q GetXPStatusQuery) (*XPStatusDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	c, err := h.children.GetByID(ctx, q.ChildID)
	if err != nil {
		return nil, fmt.Errorf("get_xp_status: %w", err)
	}

	levelProgress := child.ProgressForXP(c.TotalXP)

	return &XPStatusDTO{
		ChildID:         c.ID,
		TotalXP:         int(c.TotalXP),
		Level:           int(c.Level),
		NextLevel:       int(levelProgress.NextLevel),
		XPToNextLevel:   int(levelProgress.XPNeeded),
		ProgressPercent: levelProgress.ProgressPercent,
		CurrentStreak:   c.CurrentStreak,
	}, nil
}
