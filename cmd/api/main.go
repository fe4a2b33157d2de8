// Package main - точка входа REST API сервиса Hifz Progress Hub.
//
// Сервис агрегирует прогресс заучивания Корана: принимает попытки
// произношения с устройств, ведёт XP и стрики, выдаёт достижения и
// отдаёт родителям сводки прогресса.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries/Sagas)
// - Infrastructure: реализация репозиториев, внешние API
// - Interface: HTTP endpoints
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hifz-hub/hifz-progress-hub/config"

	// Application layer
	"github.com/hifz-hub/hifz-progress-hub/internal/application/command"
	"github.com/hifz-hub/hifz-progress-hub/internal/application/query"
	"github.com/hifz-hub/hifz-progress-hub/internal/application/saga"

	// Infrastructure layer
	"github.com/hifz-hub/hifz-progress-hub/internal/infrastructure/id"
	"github.com/hifz-hub/hifz-progress-hub/internal/infrastructure/persistence/postgres"
	"github.com/hifz-hub/hifz-progress-hub/internal/infrastructure/persistence/redis"

	// Interface layer
	httpserver "github.com/hifz-hub/hifz-progress-hub/internal/interface/http"
	"github.com/hifz-hub/hifz-progress-hub/internal/interface/http/handlers"

	// Packages
	"github.com/hifz-hub/hifz-progress-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	// Создаём корневой контекст с возможностью отмены
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запускаем приложение
	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Options{
		Output: os.Stdout,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
	})
	log.Info("starting Hifz Progress Hub API",
		logger.String("env", string(cfg.App.Environment)),
		logger.Bool("debug", cfg.App.Debug),
		logger.String("version", cfg.App.Version),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	// Проверяем соединение
	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.MigrateOnStart {
		log.Info("checking database migrations...")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database schema is up to date")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var summaryCache query.SummaryCache
	var invalidator command.SummaryInvalidator
	var cachePinger handlers.Pinger

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err := redis.NewCache(redisCfg)
		if err != nil {
			// Кэш ускоряет чтение сводок, но не является обязательным
			log.Warn("failed to connect to Redis, summary caching disabled", logger.Err(err))
		} else {
			defer redisCache.Close()
			sc := redis.NewSummaryCache(redisCache)
			summaryCache = sc
			invalidator = sc
			cachePinger = redisCache
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	parentRepo := postgres.NewParentRepository(dbConn)
	childRepo := postgres.NewChildRepository(dbConn)
	attemptRepo := postgres.NewAttemptRepository(dbConn)
	masteryRepo := postgres.NewMasteryRepository(dbConn)
	achievementRepo := postgres.NewAchievementRepository(dbConn)
	contentRepo := postgres.NewContentRepository(dbConn)

	uow := postgres.NewUnitOfWork(dbConn)
	ids := id.NewUUIDGenerator()

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ИНИЦИАЛИЗАЦИЯ APPLICATION LAYER (CQRS)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application handlers...")

	// Write side
	submitAttempt := command.NewSubmitAttemptHandler(uow, attemptRepo, childRepo, ids, invalidator, log)
	syncAttempts := command.NewSyncAttemptsHandler(uow, ids, invalidator, log)
	createChild := command.NewCreateChildHandler(childRepo, ids, log)
	deleteChild := command.NewDeleteChildHandler(childRepo, invalidator, log)
	onboarding := saga.NewOnboardingSaga(parentRepo, childRepo, ids, log)

	// Read side
	getSummary := query.NewGetSummaryHandler(
		childRepo, attemptRepo, masteryRepo, achievementRepo,
		summaryCache, cfg.Cache.SummaryTTL, log)
	getXPStatus := query.NewGetXPStatusHandler(childRepo)
	getChildStats := query.NewGetChildStatsHandler(childRepo, attemptRepo)
	getChildAchievements := query.NewGetChildAchievementsHandler(achievementRepo)
	listCatalog := query.NewListCatalogHandler(achievementRepo)
	listChildren := query.NewListChildrenHandler(childRepo)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. HEALTH CHECKS
	// ─────────────────────────────────────────────────────────────────────────
	healthChecker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	healthChecker.AddCheck("database", handlers.NewDatabaseCheck(dbConn))
	if cachePinger != nil {
		healthChecker.AddCheck("cache", handlers.NewCacheCheck(cachePinger))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. ЗАПУСК HTTP СЕРВЕРА
	// ─────────────────────────────────────────────────────────────────────────
	serverCfg := httpserver.DefaultConfig()
	serverCfg.Host = cfg.HTTP.Host
	serverCfg.Port = cfg.HTTP.Port
	serverCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	serverCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	serverCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	serverCfg.EnableCORS = cfg.HTTP.EnableCORS
	serverCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins
	serverCfg.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
	serverCfg.AuthHeader = cfg.HTTP.AuthHeader

	server := httpserver.NewServer(serverCfg, httpserver.Dependencies{
		SubmitAttemptHandler:        submitAttempt,
		SyncAttemptsHandler:         syncAttempts,
		CreateChildHandler:          createChild,
		DeleteChildHandler:          deleteChild,
		OnboardingSaga:              onboarding,
		GetSummaryHandler:           getSummary,
		GetXPStatusHandler:          getXPStatus,
		GetChildStatsHandler:        getChildStats,
		GetChildAchievementsHandler: getChildAchievements,
		ListCatalogHandler:          listCatalog,
		ListChildrenHandler:         listChildren,
		Parents:                     parentRepo,
		Children:                    childRepo,
		Content:                     contentRepo,
		Logger:                      log,
		HealthChecker:               healthChecker,
	})

	serverErrCh := server.StartAsync()
	log.Info("Hifz Progress Hub API is running", logger.String("address", server.Address()))

	// ─────────────────────────────────────────────────────────────────────────
	// 10. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}

	log.Info("shutdown completed successfully")
	return nil
}
