// Package progress содержит доменную модель прогресса заучивания:
// попытки чтения, классификация точности и статус освоения слов.
package progress

// ══════════════════════════════════════════════════════════════════════════════
// STATUS CLASSIFIER
// ══════════════════════════════════════════════════════════════════════════════

// Status представляет статус освоения слова ребёнком.
type Status string

const (
	// StatusMastered - слово освоено (точность >= 0.9).
	StatusMastered Status = "mastered"
	// StatusLearning - слово в процессе изучения (точность >= 0.7).
	StatusLearning Status = "learning"
	// StatusStruggling - слово даётся с трудом (точность < 0.7).
	StatusStruggling Status = "struggling"
)

// IsValid проверяет, что статус корректен.
func (s Status) IsValid() bool {
	switch s {
	case StatusMastered, StatusLearning, StatusStruggling:
		return true
	default:
		return false
	}
}

// Пороги классификации точности. Границы включаются в верхнюю категорию:
// ровно 0.9 - mastered, ровно 0.7 - learning.
const (
	MasteredThreshold = 0.9
	LearningThreshold = 0.7
)

// Classify отображает точность произношения в статус освоения.
// Чистая детерминированная функция.
func Classify(accuracy float64) Status {
	switch {
	case accuracy >= MasteredThreshold:
		return StatusMastered
	case accuracy >= LearningThreshold:
		return StatusLearning
	default:
		return StatusStruggling
	}
}

// IsValidAccuracy проверяет, что точность лежит в допустимом диапазоне [0.0, 1.0].
func IsValidAccuracy(accuracy float64) bool {
	return accuracy >= 0.0 && accuracy <= 1.0
}

// IsPerfect возвращает true для идеальной точности.
func IsPerfect(accuracy float64) bool {
	return accuracy == 1.0
}
