package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatdesk/internal/app/registry"
	"chatdesk/internal/app/server"
	"chatdesk/internal/config"
	"chatdesk/internal/core/services"
	"chatdesk/internal/platform/logger"
	"chatdesk/internal/platform/telemetry"
	"chatdesk/internal/plugins/postgres"
	redisPlugin "chatdesk/internal/plugins/redis"
	"chatdesk/internal/plugins/tracker"

	"github.com/redis/go-redis/v9"
)

func main() {
	// Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Config
	cfg := config.Load()

	// Logger
	log := logger.NewLogger(*cfg)
	log.Info("starting application")

	otelShutdown, err := telemetry.InitTelemetry(ctx, *cfg)
	if err != nil {
		log.Error("failed to initialize telemetry", "err", err)
	}
	defer func() {
		if otelShutdown == nil {
			return
		}
		log.Info("flushing telemetry...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Error("telemetry shutdown failed", "err", err)
		}
	}()

	// Infra
	var pdb *sql.DB
	if pdb, err = postgres.New(ctx, *cfg.Postgres); err != nil {
		log.Error("postgres connection failed", "DSN", cfg.Postgres.DSN, "err", err)
		return
	}
	defer pdb.Close()
	log.Info("postgres connected")
	var rdb *redis.Client
	if rdb, err = redisPlugin.NewRedisClient(ctx, *cfg.Redis); err != nil {
		log.Error("redis connection failed", "url", cfg.Redis.URL, "err", err)
		return
	}
	defer rdb.Close()
	log.Info("redis connected")

	// Adapters
	userRepo := postgres.NewUserRepository(pdb)
	orderRepo := postgres.NewOrderRepository(pdb)
	txManager := postgres.NewTxManager(pdb)
	presStore := redisPlugin.NewRedisPresenceStore(rdb)
	broker := redisPlugin.NewRedisBroker(rdb)
	upstream := tracker.NewUpstreamClient(*cfg.Upstream)

	// Core services
	hub := registry.NewRegistry(log, broker)
	tokenSvc := services.NewTokenService(cfg.SecretToken)
	userSvc := services.NewUserService(log, userRepo)
	chatSvc := services.NewChatService(log, userRepo, orderRepo, presStore, hub, txManager)
	presenceSvc := services.NewPresenceService(log, presStore, cfg.Presence.PublishInterval, cfg.Presence.ChatPath)

	// Server
	srv := server.NewServer(log, cfg.Service.Name, cfg.Service.Addr,
		userSvc, tokenSvc, chatSvc, presenceSvc, upstream, hub)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "err", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
		}
	}
}
