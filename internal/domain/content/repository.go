package content

import "context"

// Repository определяет контракт хранилища коранического контента.
type Repository interface {
	// UpsertSurah идемпотентно сохраняет суру по номеру.
	UpsertSurah(ctx context.Context, s *Surah) error

	// UpsertVerse идемпотентно сохраняет аят по ID.
	UpsertVerse(ctx context.Context, v *Verse) error

	// UpsertWords идемпотентно сохраняет слова аята.
	UpsertWords(ctx context.Context, words []*Word) error

	// GetSurah возвращает суру по номеру.
	// Возвращает ErrSurahNotFound, если суры нет.
	GetSurah(ctx context.Context, number int) (*Surah, error)

	// ListSurahs возвращает все загруженные суры по порядку номеров.
	ListSurahs(ctx context.Context) ([]*Surah, error)

	// ListVerses возвращает аяты суры по порядку.
	ListVerses(ctx context.Context, surahNumber int) ([]*Verse, error)

	// ListWords возвращает слова аята по порядку позиций.
	ListWords(ctx context.Context, verseID int) ([]*Word, error)

	// GetWord возвращает слово по ID.
	// Возвращает ErrWordNotFound, если слова нет.
	GetWord(ctx context.Context, id int) (*Word, error)

	// CountWords возвращает общее число загруженных слов.
	CountWords(ctx context.Context) (int, error)
}
