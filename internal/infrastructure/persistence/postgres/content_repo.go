// Package postgres implements the PostgreSQL persistence layer for Hifz Progress Hub.
package postgres

import (
	"context"
	"fmt"

	"github.com/hifz-hub/hifz-progress-hub/internal/domain/content"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONTENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ContentRepository implements content.Repository for PostgreSQL.
// Content is reference data loaded by the seeder and read by everyone else.
type ContentRepository struct {
	db Querier
}

// NewContentRepository creates a new ContentRepository.
func NewContentRepository(conn *Connection) *ContentRepository {
	return &ContentRepository{db: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Upserts
// ─────────────────────────────────────────────────────────────────────────────

// UpsertSurah idempotently saves a surah keyed by number.
func (r *ContentRepository) UpsertSurah(ctx context.Context, s *content.Surah) error {
	query := `
		INSERT INTO surahs (number, name_arabic, name_simple, name_translated, verse_count, revelation_place, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (number) DO UPDATE SET
			name_arabic = EXCLUDED.name_arabic,
			name_simple = EXCLUDED.name_simple,
			name_translated = EXCLUDED.name_translated,
			verse_count = EXCLUDED.verse_count,
			revelation_place = EXCLUDED.revelation_place
	`

	_, err := r.db.Exec(ctx, query,
		s.Number,
		s.NameArabic,
		s.NameSimple,
		s.NameTranslated,
		s.VerseCount,
		s.RevelationPlace,
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert surah %d: %w", s.Number, err)
	}

	return nil
}

// UpsertVerse idempotently saves a verse keyed by its global ID.
func (r *ContentRepository) UpsertVerse(ctx context.Context, v *content.Verse) error {
	query := `
		INSERT INTO verses (id, surah_number, verse_number, text_uthmani, translation, word_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			text_uthmani = EXCLUDED.text_uthmani,
			translation = EXCLUDED.translation,
			word_count = EXCLUDED.word_count
	`

	_, err := r.db.Exec(ctx, query,
		v.ID,
		v.SurahNumber,
		v.VerseNumber,
		v.TextUthmani,
		v.Translation,
		v.WordCount,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert verse %d: %w", v.ID, err)
	}

	return nil
}

// UpsertWords idempotently saves the words of a verse.
func (r *ContentRepository) UpsertWords(ctx context.Context, words []*content.Word) error {
	query := `
		INSERT INTO words (id, verse_id, position, text_uthmani, transliteration, translation)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			text_uthmani = EXCLUDED.text_uthmani,
			transliteration = EXCLUDED.transliteration,
			translation = EXCLUDED.translation
	`

	for _, w := range words {
		_, err := r.db.Exec(ctx, query,
			w.ID,
			w.VerseID,
			w.Position,
			w.TextUthmani,
			w.Transliteration,
			w.Translation,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert word %d: %w", w.ID, err)
		}
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────────────────

// GetSurah returns a surah by number.
func (r *ContentRepository) GetSurah(ctx context.Context, number int) (*content.Surah, error) {
	query := `
		SELECT number, name_arabic, name_simple, name_translated, verse_count, revelation_place, created_at
		FROM surahs
		WHERE number = $1
	`

	var s content.Surah
	err := r.db.QueryRow(ctx, query, number).Scan(
		&s.Number,
		&s.NameArabic,
		&s.NameSimple,
		&s.NameTranslated,
		&s.VerseCount,
		&s.RevelationPlace,
		&s.CreatedAt,
	)

	if IsNoRows(err) {
		return nil, content.ErrSurahNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan surah: %w", err)
	}

	return &s, nil
}

// ListSurahs returns all loaded surahs in canonical order.
func (r *ContentRepository) ListSurahs(ctx context.Context) ([]*content.Surah, error) {
	query := `
		SELECT number, name_arabic, name_simple, name_translated, verse_count, revelation_place, created_at
		FROM surahs
		ORDER BY number ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list surahs: %w", err)
	}
	defer rows.Close()

	var surahs []*content.Surah
	for rows.Next() {
		var s content.Surah
		err := rows.Scan(
			&s.Number,
			&s.NameArabic,
			&s.NameSimple,
			&s.NameTranslated,
			&s.VerseCount,
			&s.RevelationPlace,
			&s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan surah: %w", err)
		}
		surahs = append(surahs, &s)
	}

	return surahs, rows.Err()
}

// ListVerses returns the verses of a surah in order.
func (r *ContentRepository) ListVerses(ctx context.Context, surahNumber int) ([]*content.Verse, error) {
	query := `
		SELECT id, surah_number, verse_number, text_uthmani, translation, word_count
		FROM verses
		WHERE surah_number = $1
		ORDER BY verse_number ASC
	`

	rows, err := r.db.Query(ctx, query, surahNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list verses: %w", err)
	}
	defer rows.Close()

	var verses []*content.Verse
	for rows.Next() {
		var v content.Verse
		err := rows.Scan(&v.ID, &v.SurahNumber, &v.VerseNumber, &v.TextUthmani, &v.Translation, &v.WordCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan verse: %w", err)
		}
		verses = append(verses, &v)
	}

	return verses, rows.Err()
}

// ListWords returns the words of a verse ordered by position.
func (r *ContentRepository) ListWords(ctx context.Context, verseID int) ([]*content.Word, error) {
	query := `
		SELECT id, verse_id, position, text_uthmani, transliteration, translation
		FROM words
		WHERE verse_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.Query(ctx, query, verseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}
	defer rows.Close()

	return r.scanWords(rows)
}

// GetWord returns a word by its global ID.
func (r *ContentRepository) GetWord(ctx context.Context, id int) (*content.Word, error) {
	query := `
		SELECT id, verse_id, position, text_uthmani, transliteration, translation
		FROM words
		WHERE id = $1
	`

	var w content.Word
	err := r.db.QueryRow(ctx, query, id).Scan(
		&w.ID,
		&w.VerseID,
		&w.Position,
		&w.TextUthmani,
		&w.Transliteration,
		&w.Translation,
	)

	if IsNoRows(err) {
		return nil, content.ErrWordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan word: %w", err)
	}

	return &w, nil
}

// CountWords returns the total number of loaded words.
func (r *ContentRepository) CountWords(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM words").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count words: %w", err)
	}
	return count, nil
}

func (r *ContentRepository) scanWords(rows pgx.Rows) ([]*content.Word, error) {
	var words []*content.Word
	for rows.Next() {
		var w content.Word
		err := rows.Scan(&w.ID, &w.VerseID, &w.Position, &w.TextUthmani, &w.Transliteration, &w.Translation)
		if err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		words = append(words, &w)
	}
	return words, rows.Err()
}
