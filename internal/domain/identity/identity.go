// Package identity содержит модель родителя и контракт аутентификации.
// Проверку токенов выполняет внешний шлюз, сервис доверяет его заголовкам.
package identity

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// PARENT ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Parent представляет родительский аккаунт - владельца детских профилей.
type Parent struct {
	// ID - внутренний уникальный идентификатор.
	ID string

	// ExternalID - идентификатор в системе аутентификации шлюза.
	ExternalID string

	// Name - имя родителя.
	Name string

	// PINHash - bcrypt-хеш родительского PIN для доступа к настройкам.
	PINHash string

	// ConsentGivenAt - когда дано согласие на обработку данных детей.
	ConsentGivenAt time.Time

	// CreatedAt - время регистрации.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// HasConsent возвращает true, если согласие дано.
func (p *Parent) HasConsent() bool {
	return !p.ConsentGivenAt.IsZero()
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrUnauthenticated - запрос без валидной идентичности.
	ErrUnauthenticated = errors.New("request is not authenticated")

	// ErrParentNotFound - родитель не найден.
	ErrParentNotFound = errors.New("parent not found")

	// ErrParentExists - родитель с таким внешним ID уже зарегистрирован.
	ErrParentExists = errors.New("parent already registered")

	// ErrConsentRequired - операция требует согласия на обработку данных.
	ErrConsentRequired = errors.New("parental consent is required")

	// ErrInvalidParentName - невалидное имя родителя.
	ErrInvalidParentName = errors.New("invalid parent name")

	// ErrInvalidPIN - PIN не прошёл валидацию.
	ErrInvalidPIN = errors.New("pin must be 4-6 digits")
)

// ValidateParentName проверяет имя родителя.
func ValidateParentName(name string) error {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) == 0 || len(trimmed) > 100 {
		return ErrInvalidParentName
	}
	return nil
}

// ValidatePIN проверяет формат PIN (4-6 цифр).
func ValidatePIN(pin string) error {
	if len(pin) < 4 || len(pin) > 6 {
		return ErrInvalidPIN
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return ErrInvalidPIN
		}
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTH CONTRACTS
// ══════════════════════════════════════════════════════════════════════════════

// Identity - аутентифицированная идентичность запроса.
type Identity struct {
	// ExternalID - идентификатор пользователя в системе шлюза.
	ExternalID string
}

// Provider извлекает идентичность из контекста запроса.
type Provider interface {
	// CurrentIdentity возвращает идентичность текущего запроса.
	// Возвращает ErrUnauthenticated, если идентичности нет.
	CurrentIdentity(ctx context.Context) (Identity, error)
}

// Repository определяет контракт хранилища родителей.
type Repository interface {
	// Create сохраняет нового родителя.
	// Возвращает ErrParentExists при конфликте по внешнему ID.
	Create(ctx context.Context, p *Parent) error

	// GetByID возвращает родителя по внутреннему ID.
	GetByID(ctx context.Context, id string) (*Parent, error)

	// GetByExternalID возвращает родителя по внешнему ID.
	// Возвращает ErrParentNotFound, если родителя нет.
	GetByExternalID(ctx context.Context, externalID string) (*Parent, error)

	// Update сохраняет изменения родителя.
	Update(ctx context.Context, p *Parent) error
}
