// The auth process hosts the token authority: registration, login, token
// refresh, logout and email verification, backed by MySQL for user rows and
// Redis for the revocation denylist.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/api-edge/internal/auth"
	"github.com/iliyamo/api-edge/internal/cache"
	"github.com/iliyamo/api-edge/internal/config"
	"github.com/iliyamo/api-edge/internal/database"
	"github.com/iliyamo/api-edge/internal/handler"
	"github.com/iliyamo/api-edge/internal/queue"
	"github.com/iliyamo/api-edge/internal/repository"
	"github.com/iliyamo/api-edge/internal/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadAuth()
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Error("database open failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := config.NewRedisClient()
	if err != nil {
		log.Error("redis connect failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Event publishing is optional; the authority works without a broker.
	var events auth.Events
	if cfg.AMQPURL != "" {
		pub, err := queue.NewPublisher(cfg.AMQPURL, log)
		if err != nil {
			log.Warn("event publisher disabled", "err", err)
		} else {
			defer pub.Close()
			events = pub
		}
	}

	denylist := cache.NewTokenDenylist(rdb)
	authority := auth.New(
		repository.NewUserRepo(db),
		denylist,
		events,
		cfg.JWTSecret,
		cfg.AccessTTL,
		cfg.RefreshTTL,
		cfg.BcryptCost,
		log,
	)

	e := echo.New()
	e.HideBanner = true
	router.RegisterAuth(e, handler.NewAuthHandler(authority, log), cfg.JWTSecret, denylist)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.Port
		log.Info("auth service listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil {
			log.Info("http server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown incomplete", "err", err)
	}
}

func setupLogger(env string) *slog.Logger {
	if env == "prod" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
