package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"statree-backend/internal/cache"
	"statree-backend/internal/catalog"
	"statree-backend/internal/config"
	"statree-backend/internal/database"
	"statree-backend/internal/handlers"
	"statree-backend/internal/leetcode"
	"statree-backend/internal/logger"
	"statree-backend/internal/middleware"
	"statree-backend/internal/observability"
	"statree-backend/internal/profile"
	"statree-backend/internal/repository"
	"statree-backend/internal/router"
	"statree-backend/internal/services"
	"statree-backend/internal/websocket"
	"statree-backend/internal/worker"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("✗ Logger initialization failed: %v", err)
	}
	defer appLog.Sync()
	appLog.Info("🚀 Starting Statree Backend...", "env", cfg.Env)
	appLog.Info("✓ Environment variables loaded")

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		appLog.Fatal("✗ Invalid TIMEZONE", "timezone", cfg.Timezone, "error", err)
	}

	// ──── Step 2: Tracing ────
	shutdownTracing := observability.InitOTel(context.Background(), appLog, observability.OtelConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: cfg.OtelServiceName,
		Environment: cfg.Env,
		Endpoint:    cfg.OtelEndpoint,
		Insecure:    cfg.OtelInsecure,
		SampleRatio: cfg.OtelSampleRatio,
	})

	// ──── Step 3: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL, int32(cfg.DatabaseMaxConns))
	if err != nil {
		appLog.Fatal("✗ PostgreSQL connection failed", "error", err)
	}
	defer pool.Close()
	appLog.Info("✓ PostgreSQL connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations", appLog); err != nil {
		appLog.Fatal("✗ Database migration failed", "error", err)
	}
	appLog.Info("✓ Database migrations applied")

	// ──── Step 5: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		appLog.Fatal("✗ Redis connection failed", "error", err)
	}
	defer redisClients.Close()
	appLog.Info("✓ Redis connected")

	// ──── Step 6: LeetCode GraphQL Client ────
	client := leetcode.NewClient(leetcode.Options{
		Endpoint:          cfg.LeetCodeGraphQLURL,
		Timeout:           time.Duration(cfg.LeetCodeTimeoutSeconds) * time.Second,
		RequestsPerSecond: cfg.LeetCodeRequestsPerSec,
		Burst:             cfg.LeetCodeBurst,
		Logger:            appLog.With("component", "leetcode"),
	})
	appLog.Info("✓ LeetCode client ready", "endpoint", cfg.LeetCodeGraphQLURL)

	// ──── Initialize Repositories ────
	settingsRepo := repository.NewSettingsRepo(pool)
	jobRepo := repository.NewJobRepo(pool)

	// ──── Initialize Services ────
	detailCache := cache.NewRedisCache(redisClients.Cache)
	jobQueue := worker.NewQueue(redisClients.Queue, jobRepo)
	problemService := services.NewProblemService(client, detailCache, appLog.With("component", "problems"))
	dailyService := services.NewDailyService(client, jobQueue, appLog.With("component", "daily"))
	contestService := services.NewContestService(client, appLog.With("component", "contests"))
	catalogSync := services.NewCatalogSync(client, redisClients.Cache, cfg.CatalogSyncBatch, appLog.With("component", "catalog-sync"))
	aggregator := profile.NewAggregator(client, settingsRepo, appLog.With("component", "profile"), loc)
	sessions := catalog.NewRegistry(client, cfg.CatalogPageSize)

	// ──── Step 7: Start Job Worker Pool ────
	workerPool := worker.NewPool(
		redisClients.Queue,
		problemService,
		catalogSync,
		jobRepo,
		appLog.With("component", "worker"),
		cfg.WorkerCount,
	)
	workerPool.Start()
	appLog.Info(fmt.Sprintf("✓ Worker pool started (%d goroutines)", cfg.WorkerCount))

	scheduler := services.NewScheduler(
		dailyService,
		sessions,
		time.Duration(cfg.DailyRefreshMinutes)*time.Minute,
		appLog.With("component", "scheduler"),
	)
	scheduler.Start()
	appLog.Info("✓ Scheduler started")

	// ──── Step 8: Start WebSocket Hub ────
	hubCtx, stopHub := context.WithCancel(context.Background())
	wsHub := websocket.NewHub(redisClients.Cache, appLog.With("component", "websocket"))
	go wsHub.Run(hubCtx)
	appLog.Info("✓ WebSocket hub started")

	// ──── Step 9: Start HTTP Server ────
	limiter := middleware.NewRateLimiter(cfg.APIRequestsPerMinute, cfg.APIBurst)
	defer limiter.Stop()

	r := router.New(router.Handlers{
		Catalog:  handlers.NewCatalogHandler(sessions),
		Problems: handlers.NewProblemHandler(problemService, catalogSync),
		Daily:    handlers.NewDailyHandler(dailyService),
		Contests: handlers.NewContestHandler(contestService, settingsRepo),
		Profile:  handlers.NewProfileHandler(aggregator),
		Settings: handlers.NewSettingsHandler(settingsRepo),
		Jobs:     handlers.NewJobHandler(jobQueue, jobRepo),
		Health: handlers.NewHealthHandler(map[string]handlers.HealthCheck{
			"postgres": pool.Ping,
			"redis": func(ctx context.Context) error {
				return redisClients.Cache.Ping(ctx).Err()
			},
		}),
		Updates: wsHub,
	}, limiter, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		appLog.Info("Shutting down...")
		workerPool.Stop()
		scheduler.Stop()
		stopHub()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
		if err := shutdownTracing(ctx); err != nil {
			appLog.Warn("tracer shutdown failed", "error", err)
		}
	}()

	appLog.Info(fmt.Sprintf("✓ Statree Backend ready on http://localhost:%s", cfg.Port))
	appLog.Info(fmt.Sprintf("  API:     http://localhost:%s/api/v1", cfg.Port))
	appLog.Info(fmt.Sprintf("  Metrics: http://localhost:%s/metrics", cfg.Port))
	appLog.Info(fmt.Sprintf("  WS:      ws://localhost:%s/api/v1/ws", cfg.Port))

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		appLog.Fatal("Server error", "error", err)
	}
}
