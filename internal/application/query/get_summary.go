// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/hifz-hub/hifz-progress-hub/internal/domain/achievement"
	"github.com/hifz-hub/hifz-progress-hub/internal/domain/child"
	"github.com/hifz-hub/hifz-progress-hub/internal/domain/progress"
	"github.com/hifz-hub/hifz-progress-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROGRESS SUMMARY QUERY
// Собирает полную сводку прогресса ребёнка для родительского экрана:
// попытки, распределение освоения, XP, уровень, серия, достижения.
// Читает из кэша, при промахе агрегирует из хранилища.
// ══════════════════════════════════════════════════════════════════════════════

// ErrCacheMiss - сводки нет в кэше.
var ErrCacheMiss = errors.New("summary cache miss")

// SummaryCache определяет контракт кэша сводок.
type SummaryCache interface {
	// GetSummary возвращает закэшированную сводку.
	// Возвращает ErrCacheMiss при промахе.
	GetSummary(ctx context.Context, childID string) (*ProgressSummaryDTO, error)

	// SetSummary сохраняет сводку с TTL.
	SetSummary(ctx context.Context, childID string, summary *ProgressSummaryDTO, ttl time.Duration) error

	// InvalidateSummary удаляет сводку из кэша.
	InvalidateSummary(ctx context.Context, childID string) error
}

// GetSummaryQuery содержит параметры запроса сводки.
type GetSummaryQuery struct {
	// ChildID - внутренний ID ребёнка.
	ChildID string

	// ParentID - ID запрашивающего родителя (проверка владения).
	ParentID string

	// SkipCache - принудительно агрегировать заново.
	SkipCache bool
}

// Validate проверяет корректность параметров.
func (q *GetSummaryQuery) Validate() error {
	if q.ChildID == "" {
		return errors.New("get_summary: child_id is required")
	}
	return nil
}

// ProgressSummaryDTO - сводка прогресса ребёнка.
type ProgressSummaryDTO struct {
	// ChildID - ID ребёнка.
	ChildID string `json:"child_id"`

	// Name - имя ребёнка.
	Name string `json:"name"`

	// Avatar - токен аватара.
	Avatar string `json:"avatar"`

	// ─────────────────────────────────────────────────────────────────────────
	// Попытки
	// ─────────────────────────────────────────────────────────────────────────

	// AttemptCount - общее число попыток.
	AttemptCount int `json:"attempt_count"`

	// AvgAccuracy - средняя точность по всем попыткам.
	AvgAccuracy float64 `json:"avg_accuracy"`

	// ─────────────────────────────────────────────────────────────────────────
	// Освоение
	// ─────────────────────────────────────────────────────────────────────────

	// WordsMastered - слов со статусом mastered.
	WordsMastered int `json:"words_mastered"`

	// WordsLearning - слов со статусом learning.
	WordsLearning int `json:"words_learning"`

	// WordsStruggling - слов со статусом struggling.
	WordsStruggling int `json:"words_struggling"`

	// ─────────────────────────────────────────────────────────────────────────
	// XP и уровень
	// ─────────────────────────────────────────────────────────────────────────

	// TotalXP - накопленный XP.
	TotalXP int `json:"total_xp"`

	// Level - текущий уровень.
	Level int `json:"level"`

	// NextLevel - следующий уровень.
	NextLevel int `json:"next_level"`

	// XPToNextLevel - сколько XP до следующего уровня.
	XPToNextLevel int `json:"xp_to_next_level"`

	// LevelProgressPercent - процент прохождения уровня.
	LevelProgressPercent int `json:"level_progress_percent"`

	// ─────────────────────────────────────────────────────────────────────────
	// Серия и достижения
	// ─────────────────────────────────────────────────────────────────────────

	// CurrentStreak - текущая серия дней практики.
	CurrentStreak int `json:"current_streak"`

	// LongestStreak - лучшая серия.
	LongestStreak int `json:"longest_streak"`

	// AchievementCount - разблокировано достижений.
	AchievementCount int `json:"achievement_count"`

	// GeneratedAt - когда сводка была собрана.
	GeneratedAt time.Time `json:"generated_at"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetSummaryHandler обрабатывает запрос сводки прогресса.
type GetSummaryHandler struct {
	children     child.Repository
	attempts     progress.AttemptRepository
	mastery      progress.MasteryRepository
	achievements achievement.Repository
	cache        SummaryCache
	cacheTTL     time.Duration
	log          *logger.Logger
}

// NewGetSummaryHandler создаёт обработчик запроса сводки.
func NewGetSummaryHandler(
	children child.Repository,
	attempts progress.AttemptRepository,
	mastery progress.MasteryRepository,
	achievements achievement.Repository,
	cache SummaryCache,
	cacheTTL time.Duration,
	log *logger.Logger,
) *GetSummaryHandler {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &GetSummaryHandler{
		children:     children,
		attempts:     attempts,
		mastery:      mastery,
		achievements: achievements,
		cache:        cache,
		cacheTTL:     cacheTTL,
		log:          log,
	}
}

// Handle выполняет запрос сводки.
func (h *GetSummaryHandler) Handle(ctx context.Context, q GetSummaryQuery) (*ProgressSummaryDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.cache != nil && !q.SkipCache {
		cached, err := h.cache.GetSummary(ctx, q.ChildID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			// Кэш недоступен - падаем на хранилище
			h.log.Warn("summary cache read failed",
				logger.ChildID(q.ChildID), logger.Err(err))
		}
	}

	summary, err := h.aggregate(ctx, q)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.SetSummary(ctx, q.ChildID, summary, h.cacheTTL); err != nil {
			h.log.Warn("summary cache write failed",
				logger.ChildID(q.ChildID), logger.Err(err))
		}
	}

	return summary, nil
}

// aggregate собирает сводку из хранилища.
func (h *GetSummaryHandler) aggregate(ctx context.Context, q GetSummaryQuery) (*ProgressSummaryDTO, error) {
	c, err := h.children.GetByID(ctx, q.ChildID)
	if err != nil {
		return nil, fmt.Errorf("get_summary: %w", err)
	}
	if q.ParentID != "" && c.ParentID != q.ParentID {
		return nil, fmt.Errorf("get_summary: %w", child.ErrChildNotFound)
	}

	stats, err := h.attempts.StatsByChild(ctx, q.ChildID, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("get_summary: attempt stats failed: %w", err)
	}

	dist, err := h.mastery.DistributionByChild(ctx, q.ChildID)
	if err != nil {
		return nil, fmt.Errorf("get_summary: mastery distribution failed: %w", err)
	}

	achCount, err := h.achievements.CountByChild(ctx, q.ChildID)
	if err != nil {
		return nil, fmt.Errorf("get_summary: achievement count failed: %w", err)
	}

	levelProgress := child.ProgressForXP(c.TotalXP)

	return &ProgressSummaryDTO{
		ChildID:              c.ID,
		Name:                 c.Name,
		Avatar:               string(c.Avatar),
		AttemptCount:         stats.AttemptCount,
		AvgAccuracy:          roundAccuracy(stats.AvgAccuracy),
		WordsMastered:        dist.Mastered,
		WordsLearning:        dist.Learning,
		WordsStruggling:      dist.Struggling,
		TotalXP:              int(c.TotalXP),
		Level:                int(c.Level),
		NextLevel:            int(levelProgress.NextLevel),
		XPToNextLevel:        int(levelProgress.XPNeeded),
		LevelProgressPercent: levelProgress.ProgressPercent,
		CurrentStreak:        c.CurrentStreak,
		LongestStreak:        c.LongestStreak,
		AchievementCount:     achCount,
		GeneratedAt:          time.Now().UTC(),
	}, nil
}

// roundAccuracy округляет точность до двух знаков.
func roundAccuracy(v float64) float64 {
	return math.Round(v*100) / 100
}
