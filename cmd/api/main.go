// Package main is the entry point for the API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/openscholar/paperhub/internal/api"
	"github.com/openscholar/paperhub/internal/bookmark"
	"github.com/openscholar/paperhub/internal/cache"
	"github.com/openscholar/paperhub/internal/config"
	"github.com/openscholar/paperhub/internal/db"
	"github.com/openscholar/paperhub/internal/discussion"
	"github.com/openscholar/paperhub/internal/feed"
	"github.com/openscholar/paperhub/internal/figure"
	"github.com/openscholar/paperhub/internal/health"
	"github.com/openscholar/paperhub/internal/hub"
	"github.com/openscholar/paperhub/internal/jobs"
	"github.com/openscholar/paperhub/internal/middleware"
	"github.com/openscholar/paperhub/internal/moderation"
	"github.com/openscholar/paperhub/internal/paper"
	"github.com/openscholar/paperhub/internal/recompute"
	"github.com/openscholar/paperhub/internal/score"
	"github.com/openscholar/paperhub/internal/stats"
	"github.com/openscholar/paperhub/internal/tracing"
	"github.com/openscholar/paperhub/internal/vote"
)

func main() {
	configPath := flag.String("config", "", "path to optional YAML config file")
	help := flag.Bool("help", false, "display help message")
	flag.Parse()

	if *help {
		fmt.Println("PaperHub API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "config error:", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "config", cfg.LogSummary())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing
	tracerProvider, err := tracing.NewProvider(tracing.Config{
		ServiceName:  "paperhub-api",
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		OTLPEndpoint: cfg.TracingEndpoint,
		SamplingRate: cfg.TracingSampleRate,
		InsecureMode: cfg.Env != "production",
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	// Database is optional; without it the server runs on in-memory
	// repositories. Used for health checks when present.
	var dbChecker api.HealthChecker
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer conn.Close()
		dbChecker = health.NewDBChecker(conn)
	}

	// Redis backs the feed cache and distributed rate limiting. Absent, the
	// feed degrades to direct queries and rate limits are per-instance.
	httpMetrics := middleware.NewMetrics()
	var cacheStore cache.Store
	var cacheChecker api.HealthChecker
	rateLimitStore := middleware.RateLimitStore(middleware.NewInMemoryRateLimitStore())
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		client := redis.NewClient(opts)
		defer client.Close()

		cacheStore = cache.NewRedisStore(client)
		cacheChecker = health.NewRedisChecker(client)
		rateLimitStore = middleware.NewRedisRateLimitStore(client, httpMetrics)
	} else {
		logger.Warn("REDIS_URL not set, feed cache disabled")
	}

	// Metrics registry
	registry := prometheus.NewRegistry()
	feedMetrics := feed.NewMetrics()
	recomputeMetrics := recompute.NewMetrics()
	jobMetrics := jobs.NewMetrics()
	mustRegister := func(name string, err error) {
		if err != nil {
			logger.Error("failed to register metrics", "group", name, "error", err)
			os.Exit(1)
		}
	}
	mustRegister("http", httpMetrics.Register(registry))
	mustRegister("feed", feedMetrics.Register(registry))
	mustRegister("recompute", recomputeMetrics.Register(registry))
	mustRegister("jobs", jobMetrics.Register(registry))

	// Repositories
	paperRepo := paper.NewInMemoryRepository()
	hubRepo := hub.NewInMemoryRepository()
	voteRepo := vote.NewInMemoryRepository()
	discussionRepo := discussion.NewInMemoryRepository()
	moderationRepo := moderation.NewInMemoryRepository()
	bookmarkRepo := bookmark.NewInMemoryRepository()
	figureRepo := figure.NewInMemoryRepository()

	// Score pipeline
	params := score.DefaultParams()
	if cfg.ScoreCalibrationPath != "" {
		loaded, err := score.LoadCalibration(cfg.ScoreCalibrationPath)
		if err != nil {
			logger.Warn("failed to load score calibration, using defaults",
				"path", cfg.ScoreCalibrationPath,
				"error", err)
		}
		params = loaded
	}
	recomputer := score.NewRecomputer(voteRepo, discussionRepo, paperRepo, params)

	// Feed service
	feedBuilder := feed.NewBuilder(paperRepo, voteRepo, discussionRepo)
	feedService := feed.NewService(feedBuilder, cacheStore, logger, feedMetrics)
	feedService.SetCacheTTL(time.Duration(cfg.CacheTTLHours) * time.Hour)
	feedService.SetPageSize(cfg.FeedPageSize)

	// Recompute worker
	tracker := recompute.NewDirtyTracker()
	recomputeStats := stats.NewRecomputeStats()
	worker := recompute.NewWorker(recompute.WorkerConfig{
		Interval:      time.Duration(cfg.RecomputeIntervalSeconds) * time.Second,
		DispatchDelay: time.Duration(cfg.RecomputeDelaySeconds) * time.Second,
		Logger:        logger,
		Metrics:       recomputeMetrics,
		Stats:         recomputeStats,
	}, tracker, recomputer, paperRepo, feedService)
	if err := worker.Start(ctx); err != nil {
		logger.Error("failed to start recompute worker", "error", err)
		os.Exit(1)
	}
	defer worker.Stop()

	// Domain services
	paperService := paper.NewService(paperRepo, hubRepo, worker, feedService)
	voteService := vote.NewService(voteRepo, paperRepo, worker)
	discussionService := discussion.NewService(discussionRepo, paperRepo, worker)
	moderationService := moderation.NewService(moderationRepo, paperRepo, worker, feedService)

	// Periodic hot score sweep
	refreshJob := jobs.NewHotRefreshJob(cfg.HotRefreshCron, paperRepo, worker, logger, jobMetrics)
	if err := refreshJob.Start(); err != nil {
		logger.Error("failed to start hot refresh job", "error", err)
		os.Exit(1)
	}
	defer refreshJob.Stop()

	// Routes
	router := &api.Router{
		Papers:      api.NewPaperHandlers(paperService),
		Votes:       api.NewVoteHandlers(voteService),
		Feed:        api.NewFeedHandlers(feedService),
		Discussions: api.NewDiscussionHandlers(discussionService),
		Moderation:  api.NewModerationHandlers(moderationService),
		Bookmarks:   api.NewBookmarkHandlers(bookmarkRepo, paperRepo),
		Figures:     api.NewFigureHandlers(figureRepo, paperRepo),
		Hubs:        api.NewHubHandlers(hubRepo),
		Health: api.NewHealthHandlers(api.HealthHandlersConfig{
			DBChecker:    dbChecker,
			CacheChecker: cacheChecker,
		}),
		VoteLimiter: middleware.RateLimiter(rateLimitStore, middleware.DefaultVoteLimit(), middleware.UserKeyFunc()),
	}
	mux := router.Mux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Middleware chain, outermost first
	var handler http.Handler = mux
	handler = middleware.RateLimiter(rateLimitStore, middleware.DefaultGlobalLimit(), middleware.IPKeyFunc())(handler)
	handler = middleware.HTTPMetrics(httpMetrics)(handler)
	if cfg.TracingEnabled {
		handler = middleware.Tracing("paperhub-api")(handler)
	}
	if len(cfg.CORSAllowedOrigins) > 0 {
		handler = middleware.CORS(middleware.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
		})(handler)
	}
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Identity(handler)
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown tracer provider", "error", err)
	}

	recomputeStats.LogSummary(logger)
	logger.Info("server stopped")
}
