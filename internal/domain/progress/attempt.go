package progress

import (
	"errors"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ATTEMPT ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Ограничения валидации попытки.
const (
	// MinDeviceAttemptIDLen / MaxDeviceAttemptIDLen - границы длины ключа идемпотентности.
	MinDeviceAttemptIDLen = 8
	MaxDeviceAttemptIDLen = 100

	// MaxSyncBatchSize - максимальный размер пакета офлайн-синхронизации.
	MaxSyncBatchSize = 100
)

// Attempt представляет одну попытку чтения слова/аята ребёнком.
// Попытки неизменяемы после записи (append-only история).
type Attempt struct {
	// ID - внутренний уникальный идентификатор.
	ID string

	// ChildID - чей это прогресс.
	ChildID string

	// WordID - идентификатор прочитанного слова.
	WordID int

	// SurahNumber - номер суры (1-114), денормализован для агрегации.
	SurahNumber int

	// VerseNumber - номер аята внутри суры.
	VerseNumber int

	// Accuracy - точность произношения [0.0, 1.0].
	Accuracy float64

	// DeviceAttemptID - клиентский ключ идемпотентности. Уникален глобально.
	DeviceAttemptID string

	// SessionID - идентификатор сессии практики на устройстве (опционально).
	SessionID string

	// XPEarned - сколько XP начислено за эту попытку.
	XPEarned int

	// Status - статус освоения, вычисленный из точности на момент записи.
	Status Status

	// AttemptedAt - когда попытка произошла на устройстве.
	AttemptedAt time.Time

	// CreatedAt - когда попытка записана сервером.
	CreatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidAccuracy - точность вне диапазона [0.0, 1.0].
	ErrInvalidAccuracy = errors.New("accuracy must be between 0.0 and 1.0")

	// ErrInvalidWordID - невалидный идентификатор слова.
	ErrInvalidWordID = errors.New("word id must be positive")

	// ErrInvalidDeviceAttemptID - ключ идемпотентности вне границ длины.
	ErrInvalidDeviceAttemptID = errors.New("device attempt id must be 8-100 chars")

	// ErrDuplicateAttempt - попытка с таким deviceAttemptId уже записана.
	ErrDuplicateAttempt = errors.New("attempt already recorded")

	// ErrAttemptNotFound - попытка не найдена.
	ErrAttemptNotFound = errors.New("attempt not found")

	// ErrSyncBatchTooLarge - пакет синхронизации превышает лимит.
	ErrSyncBatchTooLarge = fmt.Errorf("sync batch exceeds %d attempts", MaxSyncBatchSize)

	// ErrChildMismatch - попытка в пакете принадлежит другому ребёнку.
	ErrChildMismatch = errors.New("attempt child id does not match batch child id")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewAttemptParams содержит параметры создания попытки.
type NewAttemptParams struct {
	ID              string
	ChildID         string
	WordID          int
	SurahNumber     int
	VerseNumber     int
	Accuracy        float64
	DeviceAttemptID string
	SessionID       string
	AttemptedAt     time.Time
}

// NewAttempt создаёт попытку с валидацией всех полей.
// Статус вычисляется из точности на месте.
func NewAttempt(params NewAttemptParams) (*Attempt, error) {
	if params.ID == "" {
		return nil, errors.New("attempt id is required")
	}
	if params.ChildID == "" {
		return nil, errors.New("child id is required")
	}
	if params.WordID <= 0 {
		return nil, ErrInvalidWordID
	}
	if !IsValidAccuracy(params.Accuracy) {
		return nil, ErrInvalidAccuracy
	}
	if l := len(params.DeviceAttemptID); l < MinDeviceAttemptIDLen || l > MaxDeviceAttemptIDLen {
		return nil, ErrInvalidDeviceAttemptID
	}

	attemptedAt := params.AttemptedAt
	if attemptedAt.IsZero() {
		attemptedAt = time.Now().UTC()
	}

	return &Attempt{
		ID:              params.ID,
		ChildID:         params.ChildID,
		WordID:          params.WordID,
		SurahNumber:     params.SurahNumber,
		VerseNumber:     params.VerseNumber,
		Accuracy:        params.Accuracy,
		DeviceAttemptID: params.DeviceAttemptID,
		SessionID:       params.SessionID,
		Status:          Classify(params.Accuracy),
		AttemptedAt:     attemptedAt.UTC(),
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// IsPerfect возвращает true, если попытка была с идеальной точностью.
func (a *Attempt) IsPerfect() bool {
	return IsPerfect(a.Accuracy)
}

// String возвращает строковое представление для логирования.
func (a *Attempt) String() string {
	return fmt.Sprintf(
		"Attempt{ID: %s, Child: %s, Word: %d, Accuracy: %.2f, Status: %s}",
		a.ID, a.ChildID, a.WordID, a.Accuracy, a.Status,
	)
}
