package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hifz-hub/hifz-progress-hub/internal/domain/child"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST CHILDREN QUERY
// Активные профили родителя для экрана выбора профиля.
// ══════════════════════════════════════════════════════════════════════════════

// ListChildrenQuery содержит параметры запроса.
type ListChildrenQuery struct {
	// ParentID - ID родителя.
	ParentID string
}

// Validate проверяет корректность параметров.
func (q *ListChildrenQuery) Validate() error {
	if q.ParentID == "" {
		return errors.New("list_children: parent_id is required")
	}
	return nil
}

// ChildDTO - профиль ребёнка.
type ChildDTO struct {
	// ID - внутренний идентификатор.
	ID string `json:"id"`

	// Name - имя.
	Name string `json:"name"`

	// Age - возраст.
	Age int `json:"age"`

	// Avatar - токен аватара.
	Avatar string `json:"avatar"`

	// TotalXP - накопленный XP.
	TotalXP int `json:"total_xp"`

	// Level - текущий уровень.
	Level int `json:"level"`

	// CurrentStreak - текущая серия дней практики.
	CurrentStreak int `json:"current_streak"`

	// CreatedAt - когда создан профиль.
	CreatedAt time.Time `json:"created_at"`
}

// NewChildDTO преобразует доменную сущность в DTO.
func NewChildDTO(c *child.Child) ChildDTO {
	return ChildDTO{
		ID:            c.ID,
		Name:          c.Name,
		Age:           c.Age,
		Avatar:        string(c.Avatar),
		TotalXP:       int(c.TotalXP),
		Level:         int(c.Level),
		CurrentStreak: c.CurrentStreak,
		CreatedAt:     c.CreatedAt,
	}
}

// ListChildrenHandler возвращает активные профили родителя.
type ListChildrenHandler struct {
	children child.Repository
}

// NewListChildrenHandler создаёт обработчик.
func NewListChildrenHandler(children child.Repository) *ListChildrenHandler {
	return &ListChildrenHandler{children: children}
}

// Handle выполняет запрос.
func (h *ListChildrenHandler) Handle(ctx context.Context, q ListChildrenQuery) ([]ChildDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	list, err := h.children.ListByParent(ctx, q.ParentID)
	if err != nil {
		return nil, fmt.Errorf("list_children: %w", err)
	}

	dtos := make([]ChildDTO, 0, len(list))
	for _, c := range list {
		dtos = append(dtos, NewChildDTO(c))
	}
	return dtos, nil
}
