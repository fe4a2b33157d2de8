package achievement

// ══════════════════════════════════════════════════════════════════════════════
// UNLOCK RULES
// ══════════════════════════════════════════════════════════════════════════════

// ProgressContext - снимок прогресса ребёнка после записи попытки.
// По нему правила решают, какие достижения разблокировать.
type ProgressContext struct {
	// VerseCompleted - завершён ли аят этой попыткой.
	VerseCompleted bool

	// PerfectAccuracy - была ли попытка с идеальной точностью.
	PerfectAccuracy bool

	// CurrentStreak - текущая серия дней практики.
	CurrentStreak int

	// SurahCompleted - завершена ли целая сура.
	SurahCompleted bool

	// WordsMastered - общее число освоенных слов.
	WordsMastered int
}

// Rule связывает имя достижения с предикатом разблокировки.
type Rule struct {
	// Name - имя достижения из каталога.
	Name string

	// Unlocks возвращает true, если контекст удовлетворяет условию.
	Unlocks func(ctx ProgressContext) bool
}

// Правила оцениваются по порядку, каждое не более одного раза
// на ребёнка за всю жизнь профиля (идемпотентность обеспечивает хранилище).
var rules = []Rule{
	{FirstVerse, func(ctx ProgressContext) bool { return ctx.VerseCompleted }},
	{PerfectRecitation, func(ctx ProgressContext) bool { return ctx.PerfectAccuracy }},
	{WeekStreak, func(ctx ProgressContext) bool { return ctx.CurrentStreak >= 7 }},
	{SurahCompleted, func(ctx ProgressContext) bool { return ctx.SurahCompleted }},
	{MemorizationMaster, func(ctx ProgressContext) bool { return ctx.WordsMastered >= 10 }},
}

// Evaluate возвращает имена достижений, условия которых выполнены.
// Фильтрация уже выданных - забота вызывающего кода.
func Evaluate(ctx ProgressContext) []string {
	var unlocked []string
	for _, rule := range rules {
		if rule.Unlocks(ctx) {
			unlocked = append(unlocked, rule.Name)
		}
	}
	return unlocked
}
