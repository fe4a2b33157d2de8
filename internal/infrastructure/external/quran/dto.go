// Package quran implements the quran.com content API client.
package quran

import "fmt"

// ══════════════════════════════════════════════════════════════════════════════
// CHAPTER DTOs
// ══════════════════════════════════════════════════════════════════════════════

// ChaptersResponseDTO is the response of the /chapters endpoint.
type ChaptersResponseDTO struct {
	Chapters []ChapterDTO `json:"chapters"`
}

// ChapterResponseDTO is the response of the /chapters/{id} endpoint.
type ChapterResponseDTO struct {
	Chapter ChapterDTO `json:"chapter"`
}

// ChapterDTO describes one surah as returned by the API.
type ChapterDTO struct {
	ID              int               `json:"id"`
	RevelationPlace string            `json:"revelation_place"`
	NameSimple      string            `json:"name_simple"`
	NameArabic      string            `json:"name_arabic"`
	VersesCount     int               `json:"verses_count"`
	TranslatedName  TranslatedNameDTO `json:"translated_name"`
}

// TranslatedNameDTO is a localized chapter name.
type TranslatedNameDTO struct {
	Name         string `json:"name"`
	LanguageName string `json:"language_name"`
}

// ══════════════════════════════════════════════════════════════════════════════
// VERSE DTOs
// ══════════════════════════════════════════════════════════════════════════════

// VersesResponseDTO is the response of the /verses/by_chapter endpoint.
type VersesResponseDTO struct {
	Verses     []VerseDTO     `json:"verses"`
	Pagination *PaginationDTO `json:"pagination,omitempty"`
}

// VerseDTO describes one verse with its words and translation.
type VerseDTO struct {
	ID           int              `json:"id"`
	VerseNumber  int              `json:"verse_number"`
	VerseKey     string           `json:"verse_key"`
	TextUthmani  string           `json:"text_uthmani"`
	Words        []WordDTO        `json:"words,omitempty"`
	Translations []TranslationDTO `json:"translations,omitempty"`
}

// WordDTO describes one word of a verse.
// The API appends a pseudo-word of char type "end" for the verse-end marker.
type WordDTO struct {
	ID              int                 `json:"id"`
	Position        int                 `json:"position"`
	CharTypeName    string              `json:"char_type_name"`
	TextUthmani     string              `json:"text_uthmani"`
	Transliteration *WordTranslationDTO `json:"transliteration,omitempty"`
	Translation     *WordTranslationDTO `json:"translation,omitempty"`
}

// WordTranslationDTO carries a word-level transliteration or translation.
type WordTranslationDTO struct {
	Text         string `json:"text"`
	LanguageName string `json:"language_name,omitempty"`
}

// TranslationDTO carries a verse-level translation.
type TranslationDTO struct {
	ResourceID int    `json:"resource_id"`
	Text       string `json:"text"`
}

// PaginationDTO describes API pagination metadata.
type PaginationDTO struct {
	PerPage      int  `json:"per_page"`
	CurrentPage  int  `json:"current_page"`
	NextPage     *int `json:"next_page"`
	TotalPages   int  `json:"total_pages"`
	TotalRecords int  `json:"total_records"`
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR DTOs
// ══════════════════════════════════════════════════════════════════════════════

// APIErrorDTO is an error payload returned by the API.
type APIErrorDTO struct {
	Status  int    `json:"status"`
	Message string `json:"error"`
}

// Error implements the error interface.
func (e *APIErrorDTO) Error() string {
	return fmt.Sprintf("quran api error: status %d: %s", e.Status, e.Message)
}
