package progress

import (
	"errors"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// MASTERY TRACKER
// ══════════════════════════════════════════════════════════════════════════════

// Mastery представляет текущее состояние освоения одного слова одним ребёнком.
// Ровно одна запись на пару (childID, wordID) - обновляется при каждой попытке.
type Mastery struct {
	// ChildID - чей это прогресс.
	ChildID string

	// WordID - какое слово.
	WordID int

	// Status - статус освоения после последней попытки.
	Status Status

	// Streak - количество последовательных попыток со статусом mastered.
	// Любая попытка ниже порога сбрасывает серию в ноль.
	Streak int

	// LastAccuracy - точность последней попытки.
	LastAccuracy float64

	// AttemptCount - общее число попыток по этому слову.
	AttemptCount int

	// FirstMasteredAt - когда слово впервые достигло mastered (zero value = никогда).
	FirstMasteredAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// ErrMasteryNotFound - запись освоения не найдена.
var ErrMasteryNotFound = errors.New("mastery record not found")

// NewMastery создаёт начальное состояние освоения для первой попытки.
func NewMastery(childID string, wordID int, accuracy float64, at time.Time) *Mastery {
	m := &Mastery{
		ChildID: childID,
		WordID:  wordID,
	}
	m.Apply(accuracy, at)
	return m
}

// Apply обновляет состояние освоения по новой попытке.
// Серия: предыдущая + 1, если попытка mastered, иначе ноль.
// Статус всегда отражает последнюю попытку - регрессия возможна.
func (m *Mastery) Apply(accuracy float64, at time.Time) {
	status := Classify(accuracy)

	if status == StatusMastered {
		m.Streak++
		if m.FirstMasteredAt.IsZero() {
			m.FirstMasteredAt = at.UTC()
		}
	} else {
		m.Streak = 0
	}

	m.Status = status
	m.LastAccuracy = accuracy
	m.AttemptCount++
	m.UpdatedAt = at.UTC()
}

// IsMastered возвращает true, если слово сейчас освоено.
func (m *Mastery) IsMastered() bool {
	return m.Status == StatusMastered
}

// Distribution представляет распределение слов ребёнка по статусам освоения.
type Distribution struct {
	Mastered   int
	Learning   int
	Struggling int
}

// Total возвращает общее количество затронутых слов.
func (d Distribution) Total() int {
	return d.Mastered + d.Learning + d.Struggling
}
