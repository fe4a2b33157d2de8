package progress

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY CONTRACTS
// ══════════════════════════════════════════════════════════════════════════════

// AttemptRepository определяет контракт хранилища попыток.
type AttemptRepository interface {
	// Create сохраняет попытку.
	// Возвращает ErrDuplicateAttempt при конфликте по deviceAttemptId.
	Create(ctx context.Context, a *Attempt) error

	// CreateBatch сохраняет пакет попыток, пропуская конфликты по deviceAttemptId.
	// Возвращает попытки, которые были реально записаны.
	CreateBatch(ctx context.Context, attempts []*Attempt) ([]*Attempt, error)

	// GetByDeviceAttemptID возвращает попытку по ключу идемпотентности.
	// Возвращает ErrAttemptNotFound, если такой попытки нет.
	GetByDeviceAttemptID(ctx context.Context, deviceAttemptID string) (*Attempt, error)

	// ExistingDeviceAttemptIDs возвращает подмножество ключей, которые уже записаны.
	ExistingDeviceAttemptIDs(ctx context.Context, deviceAttemptIDs []string) (map[string]bool, error)

	// CountByChild возвращает общее число попыток ребёнка.
	CountByChild(ctx context.Context, childID string) (int, error)

	// StatsByChild возвращает агрегаты попыток ребёнка начиная с указанного времени.
	// Нулевое время - за всю историю.
	StatsByChild(ctx context.Context, childID string, since time.Time) (AttemptStats, error)
}

// AttemptStats - агрегаты по попыткам ребёнка.
type AttemptStats struct {
	// AttemptCount - число попыток.
	AttemptCount int

	// AvgAccuracy - средняя точность. Ноль при отсутствии попыток.
	AvgAccuracy float64

	// PerfectCount - число попыток с идеальной точностью.
	PerfectCount int
}

// MasteryRepository определяет контракт хранилища состояний освоения.
type MasteryRepository interface {
	// Get возвращает состояние освоения слова ребёнком.
	// Возвращает ErrMasteryNotFound, если записи нет.
	Get(ctx context.Context, childID string, wordID int) (*Mastery, error)

	// Upsert сохраняет состояние освоения (insert или update по паре ключей).
	Upsert(ctx context.Context, m *Mastery) error

	// CountMastered возвращает число слов ребёнка со статусом mastered.
	CountMastered(ctx context.Context, childID string) (int, error)

	// DistributionByChild возвращает распределение слов ребёнка по статусам.
	DistributionByChild(ctx context.Context, childID string) (Distribution, error)

	// ListByChild возвращает все состояния освоения ребёнка.
	ListByChild(ctx context.Context, childID string) ([]*Mastery, error)
}
