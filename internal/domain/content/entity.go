// Package content содержит справочник коранического контента:
// суры, аяты и слова. Данные загружаются из внешнего API и меняются редко.
package content

import (
	"errors"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONTENT ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// TotalSurahs - количество сур в Коране.
const TotalSurahs = 114

// Surah представляет одну суру.
type Surah struct {
	// Number - номер суры (1-114).
	Number int

	// NameArabic - название на арабском.
	NameArabic string

	// NameSimple - транслитерированное название.
	NameSimple string

	// NameTranslated - переведённое название.
	NameTranslated string

	// VerseCount - количество аятов.
	VerseCount int

	// RevelationPlace - место ниспослания (makkah/madinah).
	RevelationPlace string

	// CreatedAt - время загрузки записи.
	CreatedAt time.Time
}

// Verse представляет один аят.
type Verse struct {
	// ID - глобальный идентификатор аята.
	ID int

	// SurahNumber - номер суры.
	SurahNumber int

	// VerseNumber - номер аята внутри суры.
	VerseNumber int

	// TextUthmani - арабский текст в османской орфографии.
	TextUthmani string

	// Translation - перевод аята.
	Translation string

	// WordCount - количество слов.
	WordCount int
}

// Word представляет одно слово аята - минимальную единицу заучивания.
type Word struct {
	// ID - глобальный идентификатор слова.
	ID int

	// VerseID - идентификатор аята.
	VerseID int

	// Position - позиция слова в аяте (с 1).
	Position int

	// TextUthmani - арабский текст слова.
	TextUthmani string

	// Transliteration - транслитерация.
	Transliteration string

	// Translation - перевод слова.
	Translation string
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrSurahNotFound - сура не найдена.
	ErrSurahNotFound = errors.New("surah not found")

	// ErrVerseNotFound - аят не найден.
	ErrVerseNotFound = errors.New("verse not found")

	// ErrWordNotFound - слово не найдено.
	ErrWordNotFound = errors.New("word not found")

	// ErrInvalidSurahNumber - номер суры вне диапазона 1-114.
	ErrInvalidSurahNumber = errors.New("surah number must be between 1 and 114")
)

// IsValidSurahNumber проверяет номер суры.
func IsValidSurahNumber(n int) bool {
	return n >= 1 && n <= TotalSurahs
}
