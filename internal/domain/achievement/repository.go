package achievement

import "context"

// Repository определяет контракт хранилища каталога и выданных достижений.
type Repository interface {
	// GetByName возвращает запись каталога по бизнес-ключу.
	// Возвращает ErrAchievementNotFound, если записи нет.
	GetByName(ctx context.Context, name string) (*Achievement, error)

	// ListAll возвращает весь каталог.
	ListAll(ctx context.Context) ([]*Achievement, error)

	// UpsertCatalog идемпотентно вставляет запись каталога по имени.
	UpsertCatalog(ctx context.Context, a *Achievement) error

	// HasEarned проверяет, разблокировано ли достижение ребёнком.
	HasEarned(ctx context.Context, childID, achievementID string) (bool, error)

	// Award записывает разблокировку.
	// Возвращает ErrAlreadyEarned при повторной выдаче.
	Award(ctx context.Context, ca *ChildAchievement) error

	// ListByChild возвращает достижения ребёнка с данными каталога.
	ListByChild(ctx context.Context, childID string) ([]*EarnedAchievement, error)

	// CountByChild возвращает число разблокированных достижений ребёнка.
	CountByChild(ctx context.Context, childID string) (int, error)
}

// EarnedAchievement - достижение ребёнка вместе с данными каталога.
type EarnedAchievement struct {
	Achievement
	Earned ChildAchievement
}
