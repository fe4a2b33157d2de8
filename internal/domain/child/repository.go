package child

import "context"

// Repository определяет контракт хранилища профилей детей.
// Реализация находится в infrastructure слое (PostgreSQL).
type Repository interface {
	// Create сохраняет новый профиль.
	Create(ctx context.Context, c *Child) error

	// GetByID возвращает профиль по ID.
	// Возвращает ErrChildNotFound, если профиль не существует.
	GetByID(ctx context.Context, id string) (*Child, error)

	// GetByIDForUpdate возвращает профиль с блокировкой строки (SELECT FOR UPDATE).
	// Используется внутри транзакций для сериализации записи прогресса.
	GetByIDForUpdate(ctx context.Context, id string) (*Child, error)

	// ListByParent возвращает активные профили родителя.
	ListByParent(ctx context.Context, parentID string) ([]*Child, error)

	// Update сохраняет изменения профиля (XP, уровень, серия, статус).
	Update(ctx context.Context, c *Child) error

	// CountByParent возвращает количество активных профилей родителя.
	CountByParent(ctx context.Context, parentID string) (int, error)
}
