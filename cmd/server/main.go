package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/pulsefeed/recommendation-service/internal/cache"
	"github.com/pulsefeed/recommendation-service/internal/config"
	"github.com/pulsefeed/recommendation-service/internal/handler"
	"github.com/pulsefeed/recommendation-service/internal/logger"
	"github.com/pulsefeed/recommendation-service/internal/oracle"
	"github.com/pulsefeed/recommendation-service/internal/repository"
	"github.com/pulsefeed/recommendation-service/internal/router"
	"github.com/pulsefeed/recommendation-service/internal/scheduler"
	"github.com/pulsefeed/recommendation-service/internal/service"
	"github.com/pulsefeed/recommendation-service/seeds"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	// ------------ PostgreSQL ---------------
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to parse database config", "error", err)
	}
	poolConfig.MaxConns = int32(cfg.DBPoolSize)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := waitForDB(ctx, pool, log); err != nil {
		log.Fatal("database not ready", "error", err)
	}
	log.Info("connected to PostgreSQL")

	// ------------ Run Migrations ---------------
	// for migrate-down using CLI command
	if len(os.Args) > 1 && os.Args[1] == "migrate-down" {
		if err := migrateDown(ctx, pool); err != nil {
			log.Fatal("failed to migrate down", "error", err)
		}
		log.Info("migrations dropped")
		return
	}

	if err := migrateUp(ctx, pool); err != nil {
		log.Fatal("failed to migrate up", "error", err)
	}
	log.Info("migrations applied")

	// ------------ Redis ---------------
	var vectors service.VectorCache
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal("failed to parse redis url", "error", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	embCache := cache.NewEmbeddingCache(redisClient, cfg.EmbeddingCacheTTL)
	if err := embCache.Ping(ctx); err != nil {
		log.Warn("redis unavailable, embedding cache disabled", "error", err)
	} else {
		vectors = embCache
		log.Info("connected to Redis")
	}

	// ------------ Seed Data ---------------
	if err := checkSeed(ctx, pool, log); err != nil {
		log.Fatal("failed to seed database", "error", err)
	}

	// ------------ Engine ---------------
	repo := repository.New(pool)
	svc := service.New(
		service.NewPgStore(repo),
		oracle.NewClient(),
		vectors,
		log.With("component", "engine"),
		service.Weights{
			Collaborative: cfg.CollaborativeWeight,
			ContentBased:  cfg.ContentBasedWeight,
			Trending:      cfg.TrendingWeight,
		},
	)

	// ------------ Scheduler ---------------
	schedLog := log.With("component", "scheduler")
	sched := scheduler.New(schedLog, scheduler.Jobs(cfg, svc, schedLog))
	if err := sched.Start(); err != nil {
		log.Fatal("failed to start scheduler", "error", err)
	}
	defer sched.Stop()

	// ---------------- Server --------------------
	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router.Setup(handler.NewHandler(svc)),
	}

	go func() {
		log.Info("server listening", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}
}

func waitForDB(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) error {
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		log.Info("waiting for database...", "attempt", i+1)
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("database connection timeout after 30s")
}

func migrateDown(ctx context.Context, pool *pgxpool.Pool) error {
	sql, err := os.ReadFile("migrations/create_tables.down.sql")
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	return nil
}

func migrateUp(ctx context.Context, pool *pgxpool.Pool) error {
	sql, err := os.ReadFile("migrations/create_tables.up.sql")
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	return nil
}

func checkSeed(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("check users count: %w", err)
	}
	if count > 0 {
		log.Info("database already seeded, skipping", "users", count)
		return nil
	}
	return seeds.Setup(ctx, pool)
}
