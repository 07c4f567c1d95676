package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ration-bot/internal/bot"
	"ration-bot/internal/config"
	"ration-bot/internal/report"
	"ration-bot/internal/session"
	"ration-bot/internal/storage"
	sessionredis "ration-bot/internal/storage/redis"
	"ration-bot/internal/timerules"
	"ration-bot/pkg/logger"
	"ration-bot/pkg/redis"

	"go.uber.org/zap"
)

func main() {
	migrateDown := flag.Bool("migrate-down", false, "roll back the last database migration and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	pgStorage, err := storage.NewPostgresStorage(ctx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to init PostgreSQL storage", zap.Error(err))
	}
	defer pgStorage.Close()

	if *migrateDown {
		if err := storage.RollbackMigration(ctx, pgStorage.DB(), zapLogger); err != nil {
			zapLogger.Fatal("Failed to roll back migration", zap.Error(err))
		}
		return
	}
	if err := storage.RunMigrations(ctx, pgStorage.DB(), zapLogger); err != nil {
		zapLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	sessions, closeSessions := newSessionStore(ctx, cfg.Redis, zapLogger)
	defer closeSessions()

	rules := timerules.New(
		cfg.Schedule.UTCOffsetHours,
		timerules.WithCutoffs(cfg.Schedule.AcceptCutoffHour, cfg.Schedule.ChangeCutoffHour),
	)
	reports := report.NewGenerator(pgStorage, rules, cfg.ReportsDir, zapLogger)

	tgBot, err := bot.New(cfg.TelegramToken, cfg.Debug, cfg.Workers, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create bot", zap.Error(err))
	}
	if err := tgBot.RegisterCommands(); err != nil {
		zapLogger.Warn("Failed to register bot commands", zap.Error(err))
	}

	engine := bot.NewEngine(pgStorage, reports, sessions, rules, tgBot, cfg.PasswordHash, zapLogger)

	if err := tgBot.Start(ctx, engine); err != nil {
		zapLogger.Fatal("Bot stopped with error", zap.Error(err))
	}

	zapLogger.Info("Bot shutdown gracefully")
}

// newSessionStore keeps sessions in Redis when an address is configured and
// in process memory otherwise.
func newSessionStore(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (session.Store, func()) {
	if cfg.Addr == "" {
		log.Warn("REDIS_ADDR is empty, sessions will not survive a restart")
		return session.NewMemoryStore(), func() {}
	}

	client := redis.New(cfg.Addr, cfg.Password, cfg.DB)
	if err := client.Ping(ctx); err != nil {
		log.Fatal("Failed to connect to Redis", zap.String("addr", cfg.Addr), zap.Error(err))
	}
	log.Info("Sessions stored in Redis", zap.String("addr", cfg.Addr), zap.Duration("ttl", cfg.TTL))
	return sessionredis.NewSessionStore(client, cfg.TTL), client.Close
}
