package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/reelrank/recommendation-engine/internal/artifact"
	"github.com/reelrank/recommendation-engine/internal/cache"
	"github.com/reelrank/recommendation-engine/internal/config"
	"github.com/reelrank/recommendation-engine/internal/handler"
	"github.com/reelrank/recommendation-engine/internal/recommender"
	"github.com/reelrank/recommendation-engine/internal/repository"
	"github.com/reelrank/recommendation-engine/internal/router"
	"github.com/reelrank/recommendation-engine/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config %v", err)
	}

	ctx := context.Background()

	// ------------ PostgreSQL ---------------
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to parse database config %v", err)
	}
	poolConfig.MaxConns = int32(cfg.DBPoolSize)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatalf("failed to connect to database %v", err)
	}
	defer pool.Close()

	if err := waitForDB(ctx, pool); err != nil {
		log.Fatalf("database not ready: %v", err)
	}
	log.Println("connected to PostgreSQL")

	// ------------ Run Migrations ---------------
	// for migrate-down using CLI command
	if len(os.Args) > 1 && os.Args[1] == "migrate-down" {
		if err := migrateDown(ctx, pool); err != nil {
			log.Fatalf("failed to migrate down %v", err)
		}
		log.Println("migrations dropped")
		return
	}

	if err := migrateUp(ctx, pool); err != nil {
		log.Fatalf("failed to migrate up %v", err)
	}

	// ------------ Redis ---------------
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to parse redis url %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	responseCache := cache.NewCache(redisClient, cfg.CacheTTL)
	if err := responseCache.Ping(ctx); err != nil {
		log.Printf("redis not reachable, response caching degraded: %v", err)
	} else {
		log.Println("connected to Redis")
	}

	// ------------ Engine ---------------
	artifacts := artifact.New(artifact.Config{
		MaxMemoryBytes:  cfg.ArtifactMemoryBytes,
		MaxEntries:      cfg.ArtifactMaxEntries,
		DefaultTimeout:  cfg.ArtifactLoadTimeout,
		CleanupInterval: cfg.ArtifactSweepInterval,
		MaxIdleAge:      cfg.ArtifactMaxIdleAge,
	})
	defer artifacts.Stop()

	repo := repository.New(pool)

	engineCfg := recommender.DefaultConfig()
	engineCfg.DatasetPath = cfg.DatasetPath
	engineCfg.Seed = cfg.ModelSeed
	engine := recommender.New(repo, artifacts, engineCfg)

	// Warm up: import the catalog if needed and train the model before
	// accepting traffic. Failure is fatal here; requests would only retry
	// the same initialization.
	if err := engine.Initialize(ctx); err != nil {
		log.Fatalf("failed to initialize engine: %v", err)
	}

	// ---------------- Server --------------------
	svc := service.NewService(engine, responseCache, repo)
	h := handler.NewHandler(svc)

	log.Printf("Server running on %s", cfg.Addr())
	log.Fatal(http.ListenAndServe(cfg.Addr(), router.Setup(h)))
}

func waitForDB(ctx context.Context, pool *pgxpool.Pool) error {
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		log.Printf("waiting for database... (%d/30)", i+1)
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
	log.Println("migrations dropped successfully")
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
	log.Println("migrations applied successfully")
	return nil
}
