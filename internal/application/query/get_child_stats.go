package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hifz-hub/hifz-progress-hub/internal/domain/child"
	"github.com/hifz-hub/hifz-progress-hub/internal/domain/progress"
	"github.com/hifz-hub/hifz-progress-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET CHILD STATS QUERY
// Расширенная статистика для родительского дашборда: окно за последние
// N дней поверх общих агрегатов.
// ══════════════════════════════════════════════════════════════════════════════

// GetChildStatsQuery содержит параметры запроса.
type GetChildStatsQuery struct {
	// ChildID - внутренний ID ребёнка.
	ChildID string

	// ParentID - ID запрашивающего родителя (проверка владения).
	ParentID string

	// WindowDays - размер окна в днях (по умолчанию 7, максимум 30).
	WindowDays int
}

// Validate проверяет корректность параметров.
func (q *GetChildStatsQuery) Validate() error {
	if q.ChildID == "" {
		return errors.New("get_child_stats: child_id is required")
	}
	if q.WindowDays <= 0 {
		q.WindowDays = 7
	}
	if q.WindowDays > 30 {
		q.WindowDays = 30
	}
	return nil
}

// ChildStatsDTO - расширенная статистика ребёнка.
type ChildStatsDTO struct {
	// ChildID - ID ребёнка.
	ChildID string `json:"child_id"`

	// WindowDays - размер окна.
	WindowDays int `json:"window_days"`

	// ─────────────────────────────────────────────────────────────────────────
	// За всё время
	// ─────────────────────────────────────────────────────────────────────────

	// TotalAttempts - всего попыток.
	TotalAttempts int `json:"total_attempts"`

	// AvgAccuracy - средняя точность за всё время.
	AvgAccuracy float64 `json:"avg_accuracy"`

	// PerfectAttempts - попыток с идеальной точностью.
	PerfectAttempts int `json:"perfect_attempts"`

	// ─────────────────────────────────────────────────────────────────────────
	// За окно
	// ─────────────────────────────────────────────────────────────────────────

	// WindowAttempts - попыток за окно.
	WindowAttempts int `json:"window_attempts"`

	// WindowAvgAccuracy - средняя точность за окно.
	WindowAvgAccuracy float64 `json:"window_avg_accuracy"`

	// PracticedToday - была ли практика сегодня.
	PracticedToday bool `json:"practiced_today"`

	// LastPracticeAt - время последней практики.
	LastPracticeAt *time.Time `json:"last_practice_at,omitempty"`

	// DaysSinceLastPractice - дней с последней практики.
	DaysSinceLastPractice int `json:"days_since_last_practice"`
}

// GetChildStatsHandler обрабатывает запрос статистики.
type GetChildStatsHandler struct {
	children child.Repository
	attempts progress.AttemptRepository
}

// NewGetChildStatsHandler создаёт обработчик.
func NewGetChildStatsHandler(children child.Repository, attempts progress.AttemptRepository) *GetChildStatsHandler {
	return &GetChildStatsHandler{children: children, attempts: attempts}
}

// Handle выполняет запрос статистики.
func (h *GetChildStatsHandler) Handle(ctx context.Context, q GetChildStatsQuery) (*ChildStatsDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	c, err := h.children.GetByID(ctx, q.ChildID)
	if err != nil {
		return nil, fmt.Errorf("get_child_stats: %w", err)
	}
	if q.ParentID != "" && c.ParentID != q.ParentID {
		return nil, fmt.Errorf("get_child_stats: %w", child.ErrChildNotFound)
	}

	allTime, err := h.attempts.StatsByChild(ctx, q.ChildID, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("get_child_stats: all-time stats failed: %w", err)
	}

	window, err := h.attempts.StatsByChild(ctx, q.ChildID, timeutil.DaysAgo(q.WindowDays))
	if err != nil {
		return nil, fmt.Errorf("get_child_stats: window stats failed: %w", err)
	}

	dto := &ChildStatsDTO{
		ChildID:           c.ID,
		WindowDays:        q.WindowDays,
		TotalAttempts:     allTime.AttemptCount,
		AvgAccuracy:       roundAccuracy(allTime.AvgAccuracy),
		PerfectAttempts:   allTime.PerfectCount,
		WindowAttempts:    window.AttemptCount,
		WindowAvgAccuracy: roundAccuracy(window.AvgAccuracy),
		PracticedToday:    c.PracticedToday(timeutil.Now()),
	}

	if !c.LastPracticeAt.IsZero() {
		last := c.LastPracticeAt
		dto.LastPracticeAt = &last
		dto.DaysSinceLastPractice = timeutil.DaysSince(last)
	}

	return dto, nil
}
