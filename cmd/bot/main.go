package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ekabrahmaa/prakriti-bot/internal/config"
	"github.com/ekabrahmaa/prakriti-bot/internal/delivery/telegram"
	"github.com/ekabrahmaa/prakriti-bot/internal/domain/scoring"
	"github.com/ekabrahmaa/prakriti-bot/internal/infra/postgres"
	infraredis "github.com/ekabrahmaa/prakriti-bot/internal/infra/redis"
	"github.com/ekabrahmaa/prakriti-bot/internal/logger"
	"github.com/ekabrahmaa/prakriti-bot/internal/metrics"
	"github.com/ekabrahmaa/prakriti-bot/internal/repository"
	"github.com/ekabrahmaa/prakriti-bot/internal/service"
	"github.com/ekabrahmaa/prakriti-bot/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	if err := run(cfg, lg); err != nil {
		lg.Fatal("bot stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, lg *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalogRepo, err := repository.NewCatalogRepository(cfg.QuestionsJSONPath)
	if err != nil {
		return err
	}
	catalog := catalogRepo.Catalog()
	lg.Info("questionnaire loaded",
		zap.String("version", catalog.Version),
		zap.Int("questions", catalog.Len()),
	)

	dsn, err := cfg.DB.DSN()
	if err != nil {
		return err
	}
	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
		MaxConns:        int32(cfg.DB.MaxConnections),
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	sessions, closeStore, err := newSessionStore(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer closeStore()

	userRepo := repository.NewUserRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	transactor := postgres.NewTransactor(pool)

	opts := scoring.Options{
		DualThreshold:      cfg.Quiz.DualThreshold,
		TridoshicThreshold: cfg.Quiz.TridoshicThreshold,
		Rounding:           scoring.Rounding(cfg.Quiz.Rounding),
	}

	userService := service.NewUserService(userRepo)
	settingsService := service.NewSettingsService(settingsRepo)
	resultService := service.NewResultService(resultRepo)
	resetService := service.NewResetService(transactor, sessions)
	quizService := service.NewQuizService(catalog, sessions, resultRepo, settingsRepo, opts, lg)
	reminderService := service.NewReminderService(
		sessions,
		settingsRepo,
		catalog,
		cfg.Reminders.Schedule,
		cfg.Reminders.IdleAfter,
		lg,
	)

	timers := service.NewAutoAdvancer(ctx)
	defer timers.Stop()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		return err
	}
	bot.Debug = cfg.Env != "production"
	lg.Info("authorized on telegram", zap.String("account", bot.Self.UserName))

	handler := telegram.NewHandler(
		bot,
		lg,
		userService,
		settingsService,
		quizService,
		resultService,
		resetService,
		timers,
		storage.NewReminderStorage(),
		cfg.Quiz.AutoAdvanceDelay,
	)
	reminderService.SetNotifier(handler)

	if err := handler.RegisterCommands(); err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return handler.Run(gctx)
	})

	if cfg.Reminders.Enabled {
		g.Go(func() error {
			return reminderService.Start(gctx)
		})
	}

	if cfg.Metrics.Enabled {
		g.Go(func() error {
			return metrics.Serve(gctx, cfg.Metrics.Addr, lg)
		})
	}

	err = g.Wait()
	lg.Info("shutdown signal received")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// newSessionStore builds the configured in-progress session store.
func newSessionStore(ctx context.Context, cfg *config.Config, lg *zap.Logger) (service.SessionStore, func(), error) {
	if cfg.Storage.Driver != "redis" {
		lg.Info("using in-memory session storage", zap.Duration("ttl", cfg.Storage.SessionTTL))
		return storage.NewMemoryStore(cfg.Storage.SessionTTL), func() {}, nil
	}

	rdb, err := infraredis.NewClient(ctx, infraredis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, err
	}

	lg.Info("using redis session storage",
		zap.String("addr", cfg.Redis.Addr),
		zap.Duration("ttl", cfg.Storage.SessionTTL),
	)

	closeFn := func() {
		if err := rdb.Close(); err != nil {
			lg.Warn("failed to close redis client", zap.Error(err))
		}
	}
	return storage.NewRedisStore(rdb, cfg.Redis.KeyPrefix, cfg.Storage.SessionTTL), closeFn, nil
}
