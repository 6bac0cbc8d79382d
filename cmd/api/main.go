package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jestelle/slash-podcast/internal/app"
	"github.com/jestelle/slash-podcast/internal/app/diagnostics"
	"github.com/jestelle/slash-podcast/internal/config"
	"github.com/jestelle/slash-podcast/internal/domain/document"
	"github.com/jestelle/slash-podcast/internal/domain/episode"
	"github.com/jestelle/slash-podcast/internal/domain/gauth"
	dbinfra "github.com/jestelle/slash-podcast/internal/infrastructure/db"
	"github.com/jestelle/slash-podcast/internal/infrastructure/googleauth"
	"github.com/jestelle/slash-podcast/internal/infrastructure/logging"
	"github.com/jestelle/slash-podcast/internal/infrastructure/monitoring"
	openaiinfra "github.com/jestelle/slash-podcast/internal/infrastructure/openai"
	"github.com/jestelle/slash-podcast/internal/infrastructure/ratelimit"
	redisinfra "github.com/jestelle/slash-podcast/internal/infrastructure/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logging.Sync(logger)

	if err := monitoring.InitSentry(cfg.Monitoring, cfg.App); err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	}
	monitoring.Init()
	defer monitoring.Flush()

	dbManager, err := dbinfra.Connect(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	defer dbManager.Close()

	var redisClient *redisinfra.Client
	if cfg.Redis.Addr != "" {
		client, err := redisinfra.Connect(cfg.Redis, logger)
		if err == nil {
			redisClient = client
			defer client.Close()
		} else {
			logger.Warn("redis connect failed", zap.Error(err))
		}
	}

	authManager := googleauth.NewManager(cfg.Google, logger)
	openaiClient := openaiinfra.New(cfg.OpenAI, logger)

	docsReader := document.NewDocsReader(authManager, logger)
	pdfExtractor := document.NewPDFExtractor(cfg.Storage.MaxPDFBytes, logger)
	var textCache document.TextCache
	if redisClient != nil {
		textCache = redisClient
	}
	resolver := document.NewResolver(docsReader, pdfExtractor, textCache, logger)

	episodeRepo := dbinfra.NewEpisodeRepository(dbManager.DB)
	episodeService, err := episode.NewService(episodeRepo, resolver, openaiClient, openaiClient, logger, episode.Options{
		AudioDir:    cfg.Storage.AudioDir,
		Retention:   cfg.Storage.AudioRetention,
		TTSPacing:   cfg.Generation.TTSPacing,
		Timeout:     cfg.Generation.Timeout,
		Concurrency: cfg.Generation.Concurrency,
	})
	if err != nil {
		logger.Fatal("episode service init failed", zap.Error(err))
	}
	episodeService.StartJanitor(ctx)

	logBuffer := diagnostics.NewLogBuffer(cfg.Diagnostics.MaxLogLines)
	diagHandler := diagnostics.NewHandler(logBuffer, cfg.App.Version)
	diagHandler.AddCheck("store", func(ctx context.Context) (string, bool) {
		if err := dbManager.Ping(ctx); err != nil {
			return err.Error(), false
		}
		return "ok", true
	})
	diagHandler.AddCheck("google", func(ctx context.Context) (string, bool) {
		_, detail := authManager.Status(ctx)
		return detail, true // informational, the service runs without it
	})

	episodeHandler := episode.NewHandler(episodeService)
	authHandler := gauth.NewHandler(authManager)

	var ipLimiter, generationLimiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		if redisClient != nil {
			ipLimiter = ratelimit.NewRedisLimiter(redisClient.Native, cfg.RateLimit.RequestsPerMinute, 0, cfg.RateLimit.RedisPrefix+":ip")
			generationLimiter = ratelimit.NewRedisLimiter(redisClient.Native, cfg.RateLimit.GenerationsPerHour, time.Hour, cfg.RateLimit.RedisPrefix+":gen")
		} else {
			ipLimiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst, 0)
			generationLimiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.GenerationsPerHour, 1, time.Hour)
		}
	}

	router := app.NewRouter(app.RouterDeps{
		Config:            cfg,
		EpisodeHandler:    episodeHandler,
		AuthHandler:       authHandler,
		Diagnostics:       diagHandler,
		Logger:            logger,
		LogBuffer:         logBuffer,
		IPLimiter:         ipLimiter,
		GenerationLimiter: generationLimiter,
	})

	server := &app.Server{
		Engine: router,
		Addr:   ":" + cfg.App.Port,
		Logger: logger,
		// Let in-flight generations persist their terminal state.
		Drain: episodeService.Wait,
	}
	if err := server.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
