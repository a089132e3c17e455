// cmd/historian/main.go is an asynchronous historian service that pops action
// records from a Redis queue and persists them to a PostgreSQL database.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/munchkin/internal/cache"
	"github.com/jason-s-yu/munchkin/internal/config"
	"github.com/jason-s-yu/munchkin/internal/database"
	"github.com/jason-s-yu/munchkin/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	logger.SetLevel(cfg.Level())
	if cfg.RedisAddr == "" || cfg.DatabaseURL == "" {
		logger.Fatal("historian needs both REDIS_ADDR and DATABASE_URL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatalf("migrate: %v", err)
	}

	hs := historian.New(
		cache.NewActionQueue(rdb, cfg.QueueName),
		database.NewStore(pool),
		historian.Options{
			BatchSize:  cfg.HistorianBatchSize,
			FlushDelay: cfg.HistorianFlushDelay,
			Inactivity: cfg.InactivityTimeout,
		},
		logger,
	)
	if err := hs.Run(ctx); err != nil {
		logger.WithError(err).Error("historian exited with error")
		os.Exit(1)
	}
	logger.Info("Historian shutdown complete.")
}
