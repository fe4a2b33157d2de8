package child

import "math"

// ══════════════════════════════════════════════════════════════════════════════
// XP LEDGER: НАГРАДЫ И УРОВНИ
// ══════════════════════════════════════════════════════════════════════════════

// Награды XP за события прогресса.
const (
	// XPWordMastered - попытка с точностью на уровне mastered (>= 0.9).
	XPWordMastered XP = 5

	// XPPerfectAccuracy - бонус за идеальную точность (ровно 1.0).
	XPPerfectAccuracy XP = 25

	// XPDailyStreak - бонус за продление дневной серии.
	XPDailyStreak XP = 5

	// XPWeekStreakBonus - бонус за серию в 7 дней.
	XPWeekStreakBonus XP = 50
)

// levelThresholds - кумулятивные пороги XP для каждого уровня.
// Индекс i соответствует уровню i+1: уровень 1 начинается с 0 XP,
// уровень 2 - со 100 XP и так далее. Уровень не превышает MaxLevel.
var levelThresholds = [...]XP{0, 100, 300, 600, 1000, 1500, 2100, 2800, 3600, 4500}

// MaxLevel - максимальный достижимый уровень.
const MaxLevel Level = Level(len(levelThresholds))

// CalculateLevel вычисляет уровень по накопленному XP.
// Детерминированная чистая функция: одинаковый XP всегда даёт одинаковый уровень.
func CalculateLevel(totalXP XP) Level {
	if totalXP < 0 {
		return 1
	}
	level := Level(1)
	for i := len(levelThresholds) - 1; i >= 0; i-- {
		if totalXP >= levelThresholds[i] {
			level = Level(i + 1)
			break
		}
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return level
}

// ThresholdForLevel возвращает кумулятивный порог XP для уровня.
func ThresholdForLevel(level Level) XP {
	if level < 1 {
		return 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return levelThresholds[level-1]
}

// ══════════════════════════════════════════════════════════════════════════════
// XP TRANSITION
// ══════════════════════════════════════════════════════════════════════════════

// XPTransition описывает результат начисления XP.
type XPTransition struct {
	// OldTotalXP - XP до начисления.
	OldTotalXP XP

	// NewTotalXP - XP после начисления.
	NewTotalXP XP

	// Awarded - начисленная сумма.
	Awarded XP

	// OldLevel - уровень до начисления.
	OldLevel Level

	// NewLevel - уровень после начисления.
	NewLevel Level
}

// LeveledUp возвращает true, если начисление привело к росту уровня.
func (t XPTransition) LeveledUp() bool {
	return t.NewLevel > t.OldLevel
}

// ApplyXP вычисляет переход при начислении XP.
// Отрицательные суммы отклоняются - TotalXP монотонно растёт.
func ApplyXP(currentXP XP, currentLevel Level, amount XP) (XPTransition, error) {
	if amount < 0 {
		return XPTransition{}, ErrNegativeXP
	}

	newXP := currentXP.Add(amount)
	newLevel := CalculateLevel(newXP)

	return XPTransition{
		OldTotalXP: currentXP,
		NewTotalXP: newXP,
		Awarded:    amount,
		OldLevel:   currentLevel,
		NewLevel:   newLevel,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LEVEL PROGRESS
// ══════════════════════════════════════════════════════════════════════════════

// LevelProgress описывает продвижение к следующему уровню.
type LevelProgress struct {
	// TotalXP - текущий накопленный XP.
	TotalXP XP

	// CurrentLevel - текущий уровень.
	CurrentLevel Level

	// NextLevel - следующий уровень. На максимуме равен CurrentLevel.
	NextLevel Level

	// XPNeeded - сколько XP осталось до следующего уровня. На максимуме 0.
	XPNeeded XP

	// ProgressPercent - процент прохождения текущего уровня (0-100).
	ProgressPercent int
}

// ProgressForXP вычисляет продвижение к следующему уровню по текущему XP.
// На максимальном уровне: NextLevel == CurrentLevel, XPNeeded == 0, прогресс 100%.
func ProgressForXP(totalXP XP) LevelProgress {
	if totalXP < 0 {
		totalXP = 0
	}

	level := CalculateLevel(totalXP)

	if level >= MaxLevel {
		return LevelProgress{
			TotalXP:         totalXP,
			CurrentLevel:    level,
			NextLevel:       level,
			XPNeeded:        0,
			ProgressPercent: 100,
		}
	}

	currentFloor := ThresholdForLevel(level)
	nextFloor := ThresholdForLevel(level + 1)

	span := nextFloor - currentFloor
	into := totalXP - currentFloor

	percent := 0
	if span > 0 {
		percent = int(math.Round(float64(into) / float64(span) * 100))
	}

	return LevelProgress{
		TotalXP:         totalXP,
		CurrentLevel:    level,
		NextLevel:       level + 1,
		XPNeeded:        nextFloor - totalXP,
		ProgressPercent: percent,
	}
}
