package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quizlearn/data-gateway/internal/api"
	"github.com/quizlearn/data-gateway/internal/core/ports"
	"github.com/quizlearn/data-gateway/internal/core/service"
	"github.com/quizlearn/data-gateway/internal/infrastructure/config"
	mongodb "github.com/quizlearn/data-gateway/internal/infrastructure/db/mongo"
	redisdb "github.com/quizlearn/data-gateway/internal/infrastructure/db/redis"
	"github.com/quizlearn/data-gateway/pkg/logger"

	_ "github.com/quizlearn/data-gateway/docs"
)

// @title        Quiz Platform Data Gateway
// @version      1.0
// @description  Single-endpoint gateway multiplexing document-store operations and session auth for the quiz platform frontend.
// @BasePath     /
func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger is not up yet; a missing MONGO_URI or JWT_SECRET must still
		// stop the process before it serves a single request.
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	userRepo := mongodb.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("creating user indexes failed")
	}

	// Redis is optional infrastructure: the login limiter fails open and the
	// readiness probe reports the outage.
	var limiter ports.LoginLimiter
	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, login throttling disabled")
		rdb = nil
	} else {
		defer rdb.Close()
		limiter = redisdb.NewLoginLimiter(rdb, cfg.Login.MaxAttempts, cfg.Login.Window)
	}

	store := mongodb.NewExecutor(db)
	authService := service.NewAuthService(userRepo, limiter, cfg.JWTSecret, cfg.AdminEmail, cfg.TokenTTL, log)

	e := api.NewRouter(db, rdb, store, authService)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting data gateway")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
}
