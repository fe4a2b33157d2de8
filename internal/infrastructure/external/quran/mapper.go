// Package quran implements the quran.com content API client.
package quran

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hifz-hub/hifz-progress-hub/internal/domain/content"
)

// ══════════════════════════════════════════════════════════════════════════════
// DTO TO DOMAIN MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// charTypeWord marks real words; the API also emits "end" pseudo-words
// for verse-end markers, which are not memorization units.
const charTypeWord = "word"

// Mapper converts API DTOs into content domain entities.
type Mapper struct{}

// NewMapper creates a new Mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// SurahFromChapter maps a chapter DTO to a Surah entity.
func (m *Mapper) SurahFromChapter(dto ChapterDTO) *content.Surah {
	return &content.Surah{
		Number:          dto.ID,
		NameArabic:      dto.NameArabic,
		NameSimple:      dto.NameSimple,
		NameTranslated:  dto.TranslatedName.Name,
		VerseCount:      dto.VersesCount,
		RevelationPlace: dto.RevelationPlace,
		CreatedAt:       time.Now().UTC(),
	}
}

// VerseFromDTO maps a verse DTO to a Verse entity.
// The surah number comes from the verse key ("2:255" means surah 2, verse 255).
func (m *Mapper) VerseFromDTO(dto VerseDTO) (*content.Verse, error) {
	surahNumber, verseNumber, err := parseVerseKey(dto.VerseKey)
	if err != nil {
		return nil, err
	}
	if dto.VerseNumber != 0 {
		verseNumber = dto.VerseNumber
	}

	wordCount := 0
	for _, w := range dto.Words {
		if w.CharTypeName == charTypeWord {
			wordCount++
		}
	}

	translation := ""
	if len(dto.Translations) > 0 {
		translation = stripMarkup(dto.Translations[0].Text)
	}

	return &content.Verse{
		ID:          dto.ID,
		SurahNumber: surahNumber,
		VerseNumber: verseNumber,
		TextUthmani: dto.TextUthmani,
		Translation: translation,
		WordCount:   wordCount,
	}, nil
}

// WordsFromVerse maps the real words of a verse DTO, skipping end markers.
func (m *Mapper) WordsFromVerse(dto VerseDTO) []*content.Word {
	words := make([]*content.Word, 0, len(dto.Words))

	for _, w := range dto.Words {
		if w.CharTypeName != charTypeWord {
			continue
		}

		word := &content.Word{
			ID:          w.ID,
			VerseID:     dto.ID,
			Position:    w.Position,
			TextUthmani: w.TextUthmani,
		}
		if w.Transliteration != nil {
			word.Transliteration = w.Transliteration.Text
		}
		if w.Translation != nil {
			word.Translation = w.Translation.Text
		}

		words = append(words, word)
	}

	return words
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

// parseVerseKey splits a "surah:verse" key into its parts.
func parseVerseKey(key string) (surah int, verse int, err error) {
	parts := strings.SplitN(key, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid verse key %q", key)
	}

	surah, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid verse key %q: %w", key, err)
	}
	if !content.IsValidSurahNumber(surah) {
		return 0, 0, fmt.Errorf("invalid verse key %q: %w", key, content.ErrInvalidSurahNumber)
	}

	verse, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid verse key %q: %w", key, err)
	}

	return surah, verse, nil
}

// stripMarkup removes translation markup such as <sup foot_note=...>1</sup>.
// Footnote bodies inside sup tags are dropped along with the tags.
func stripMarkup(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	inTag := false
	inSup := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '<':
			inTag = true
			rest := s[i:]
			if strings.HasPrefix(rest, "<sup") {
				inSup = true
			} else if strings.HasPrefix(rest, "</sup") {
				inSup = false
			}
		case ch == '>':
			inTag = false
		case !inTag && !inSup:
			b.WriteByte(ch)
		}
	}

	return strings.TrimSpace(b.String())
}
