package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/hifz-hub/hifz-progress-hub/internal/domain/content"
	"github.com/hifz-hub/hifz-progress-hub/internal/infrastructure/external/quran"
	"github.com/hifz-hub/hifz-progress-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// QURAN CONTENT SEEDER
// ══════════════════════════════════════════════════════════════════════════════

// QuranSeeder downloads surahs, verses and words from the quran.com API
// and stores them as reference content. A full run fetches all 114
// surahs; SeedSurah loads a single one for incremental backfills.
type QuranSeeder struct {
	client  *quran.Client
	content content.Repository
	log     *logger.Logger
}

// NewQuranSeeder creates a new QuranSeeder.
func NewQuranSeeder(client *quran.Client, repo content.Repository, log *logger.Logger) *QuranSeeder {
	return &QuranSeeder{
		client:  client,
		content: repo,
		log:     log.With(logger.Component("quran_seeder")),
	}
}

// SeedAll loads every surah. The quran.com rate limiter paces the
// requests, a full run takes several minutes.
func (s *QuranSeeder) SeedAll(ctx context.Context) error {
	start := time.Now()

	chapters, err := s.client.GetChapters(ctx)
	if err != nil {
		return fmt.Errorf("seed quran: fetch chapters: %w", err)
	}

	for _, ch := range chapters {
		if err := s.seedChapter(ctx, ch); err != nil {
			return err
		}
	}

	total, err := s.content.CountWords(ctx)
	if err != nil {
		return fmt.Errorf("seed quran: count words: %w", err)
	}

	s.log.Info("quran content seeded",
		logger.Int("surahs", len(chapters)),
		logger.Int("total_words", total),
		logger.Latency(time.Since(start)))

	return nil
}

// SeedSurah loads a single surah by number.
func (s *QuranSeeder) SeedSurah(ctx context.Context, number int) error {
	if !content.IsValidSurahNumber(number) {
		return fmt.Errorf("seed quran: %w", content.ErrInvalidSurahNumber)
	}

	ch, err := s.client.GetChapter(ctx, number)
	if err != nil {
		return fmt.Errorf("seed quran: fetch chapter %d: %w", number, err)
	}

	return s.seedChapter(ctx, *ch)
}

func (s *QuranSeeder) seedChapter(ctx context.Context, ch quran.ChapterDTO) error {
	mapper := s.client.Mapper()

	surah := mapper.SurahFromChapter(ch)
	if err := s.content.UpsertSurah(ctx, surah); err != nil {
		return fmt.Errorf("seed quran: save surah %d: %w", ch.ID, err)
	}

	verses, err := s.client.GetAllVersesByChapter(ctx, ch.ID)
	if err != nil {
		return fmt.Errorf("seed quran: fetch verses of surah %d: %w", ch.ID, err)
	}

	wordCount := 0
	for _, dto := range verses {
		verse, err := mapper.VerseFromDTO(dto)
		if err != nil {
			s.log.Warn("skipping malformed verse",
				logger.Int("verse_id", dto.ID),
				logger.String("verse_key", dto.VerseKey),
				logger.Err(err))
			continue
		}

		if err := s.content.UpsertVerse(ctx, verse); err != nil {
			return fmt.Errorf("seed quran: save verse %d: %w", verse.ID, err)
		}

		words := mapper.WordsFromVerse(dto)
		if err := s.content.UpsertWords(ctx, words); err != nil {
			return fmt.Errorf("seed quran: save words of verse %d: %w", verse.ID, err)
		}
		wordCount += len(words)
	}

	s.log.Info("surah seeded",
		logger.SurahNumber(ch.ID),
		logger.Int("verses", len(verses)),
		logger.Int("words", wordCount))

	return nil
}
