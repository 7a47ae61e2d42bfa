// The gateway process is the single edge clients talk to: it admits or
// rejects each request per client rate limits, matches a route by path
// prefix and forwards to the owning upstream service.
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

	"github.com/iliyamo/api-edge/internal/cache"
	"github.com/iliyamo/api-edge/internal/config"
	"github.com/iliyamo/api-edge/internal/gateway"
	"github.com/iliyamo/api-edge/internal/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadGateway()
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	rdb, err := config.NewRedisClient()
	if err != nil {
		log.Error("redis connect failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	table, err := gateway.NewTable(cfg.Upstreams)
	if err != nil {
		log.Error("routing table invalid", "err", err)
		os.Exit(1)
	}
	for _, rt := range table.Routes() {
		log.Info("route configured", "service", rt.Name, "prefix", rt.Prefix, "target", rt.Target.String())
	}

	e := echo.New()
	e.HideBanner = true
	router.RegisterGateway(e, gateway.NewDispatcher(table, log),
		cache.NewRateCounter(rdb), cfg.RateLimitMax, cfg.RateLimitWindow)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.Port
		log.Info("gateway listening", "addr", addr, "env", cfg.Env)
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
