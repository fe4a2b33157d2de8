// Package main - утилита загрузки справочных данных Hifz Progress Hub.
//
// Загружает каталог достижений и текст Корана (суры, аяты, слова)
// из quran.com API. Обе загрузки идемпотентны, повторный запуск
// обновляет данные без дублей.
//
// Использование:
//
//	seed -achievements          загрузить каталог достижений
//	seed -quran                 загрузить все 114 сур
//	seed -surah 112             загрузить одну суру
//	seed -rollback              откатить последнюю миграцию схемы
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hifz-hub/hifz-progress-hub/config"
	"github.com/hifz-hub/hifz-progress-hub/internal/infrastructure/external/quran"
	"github.com/hifz-hub/hifz-progress-hub/internal/infrastructure/id"
	"github.com/hifz-hub/hifz-progress-hub/internal/infrastructure/persistence/postgres"
	"github.com/hifz-hub/hifz-progress-hub/internal/infrastructure/seed"
	"github.com/hifz-hub/hifz-progress-hub/pkg/logger"
)

func main() {
	var (
		seedAchievements = flag.Bool("achievements", false, "seed the achievement catalog")
		seedQuran        = flag.Bool("quran", false, "seed all surahs from quran.com")
		seedSurah        = flag.Int("surah", 0, "seed a single surah by number (1-114)")
		rollback         = flag.Bool("rollback", false, "revert the last schema migration and exit")
	)
	flag.Parse()

	if !*seedAchievements && !*seedQuran && *seedSurah == 0 && !*rollback {
		flag.Usage()
		os.Exit(2)
	}

	// Отмена по Ctrl+C: длинная загрузка должна останавливаться чисто
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *seedAchievements, *seedQuran, *seedSurah, *rollback); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, achievements, fullQuran bool, surahNumber int, rollback bool) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. КОНФИГУРАЦИЯ И ЛОГИРОВАНИЕ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Options{
		Output: os.Stdout,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 2. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ
	// ─────────────────────────────────────────────────────────────────────────
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	migrator := postgres.NewMigrator(dbConn)
	if rollback {
		if err := migrator.Rollback(ctx); err != nil {
			return fmt.Errorf("failed to rollback migration: %w", err)
		}
		log.Info("last migration rolled back")
		return nil
	}
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ЗАГРУЗКА ДОСТИЖЕНИЙ
	// ─────────────────────────────────────────────────────────────────────────
	if achievements {
		achievementRepo := postgres.NewAchievementRepository(dbConn)
		if err := seed.SeedAchievements(ctx, achievementRepo, id.NewUUIDGenerator(), log); err != nil {
			return err
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАГРУЗКА ТЕКСТА КОРАНА
	// ─────────────────────────────────────────────────────────────────────────
	if fullQuran || surahNumber > 0 {
		clientCfg := quran.DefaultClientConfig()
		clientCfg.BaseURL = cfg.Quran.BaseURL
		clientCfg.TranslationID = cfg.Quran.TranslationID
		clientCfg.Language = cfg.Quran.Language
		clientCfg.Timeout = cfg.Quran.RequestTimeout
		clientCfg.RateLimiterConfig.RequestsPerSecond = float64(cfg.Quran.RateLimit)
		clientCfg.RateLimiterConfig.BurstSize = cfg.Quran.RateLimitBurst
		clientCfg.Logger = log

		client := quran.NewClient(clientCfg)
		seeder := seed.NewQuranSeeder(client, postgres.NewContentRepository(dbConn), log)

		if fullQuran {
			if err := seeder.SeedAll(ctx); err != nil {
				return err
			}
		} else {
			if err := seeder.SeedSurah(ctx, surahNumber); err != nil {
				return err
			}
		}
	}

	log.Info("seeding completed")
	return nil
}
