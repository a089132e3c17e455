// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/munchkin/internal/auth"
	"github.com/jason-s-yu/munchkin/internal/cache"
	"github.com/jason-s-yu/munchkin/internal/config"
	"github.com/jason-s-yu/munchkin/internal/database"
	"github.com/jason-s-yu/munchkin/internal/game"
	"github.com/jason-s-yu/munchkin/internal/handlers"
	"github.com/jason-s-yu/munchkin/internal/middleware"
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

	if cfg.PrivateKeyPath != "" && cfg.PublicKeyPath != "" {
		err = auth.InitFromPath(cfg.PrivateKeyPath, cfg.PublicKeyPath, cfg.TokenTTL)
	} else {
		err = auth.Init(cfg.TokenTTL)
	}
	if err != nil {
		logger.Fatalf("auth: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var recorder game.Recorder
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		recorder = cache.NewActionQueue(rdb, cfg.QueueName)
		logger.Infof("Publishing actions to Redis list %s", cfg.QueueName)
	}

	var results game.ResultStore
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("database: %v", err)
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			logger.Fatalf("migrate: %v", err)
		}
		results = database.NewStore(pool)
		logger.Info("Storing session results in Postgres")
	}

	store := game.NewSessionStore(cfg.Rules(), recorder, results)

	mux := http.NewServeMux()

	// session websocket: /socket/{player}/{session}[/{passphrase}]
	mux.Handle("/socket/", middleware.LogMiddleware(logger)(
		handlers.SocketHandler(logger, store),
	))
	mux.Handle("/sessions", middleware.LogMiddleware(logger)(
		handlers.ListSessionsHandler(store),
	))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.CloseAll(); err != nil {
			logger.WithError(err).Warn("error closing sessions")
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("error during shutdown")
		}
	}()

	logger.Infof("Running on %s", cfg.Addr())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server exited: %v", err)
	}
}
