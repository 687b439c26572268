package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cryptoradar/internal/alerts"
	"cryptoradar/internal/analytics"
	"cryptoradar/internal/broadcast"
	rediscache "cryptoradar/internal/cache/redis"
	"cryptoradar/internal/config"
	cronrunner "cryptoradar/internal/cron"
	"cryptoradar/internal/db"
	"cryptoradar/internal/handler"
	"cryptoradar/internal/logger"
	gormrepository "cryptoradar/internal/repository/gorm"
	"cryptoradar/internal/scheduler"
	"cryptoradar/internal/scoring"
	"cryptoradar/internal/sentiment"
	"cryptoradar/internal/source"
)

func main() {
	cfgPath := os.Getenv("RADAR_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("RADAR_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := gormrepository.New(dbConn.Gorm)
	engine := analytics.NewEngine(store)

	var queryCache *rediscache.QueryCache
	if cfg.Redis.Enabled {
		redisClient, err := rediscache.New(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, query caching disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			queryCache = rediscache.NewQueryCache(redisClient, cfg.Redis.CacheTTL)
		}
	}

	adapters := buildAdapters(cfg, store, logger)
	sourceNames := make([]string, 0, len(adapters)+1)
	for _, a := range adapters {
		sourceNames = append(sourceNames, a.Name())
	}
	sourceNames = append(sourceNames, sentiment.SourceName)
	board := source.NewStatusBoard(sourceNames...)

	hub := broadcast.NewHub(store, board, logger, cfg.Broadcast)
	board.OnChange(hub.PublishStatusChange)
	go func() {
		if err := hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("broadcast hub stopped", zap.Error(err))
		}
	}()

	ingest := &scheduler.Scheduler{
		Repo:     store,
		Scorer:   scoring.New(),
		Board:    board,
		Hub:      hub,
		Cache:    queryCache,
		Logger:   logger,
		Config:   cfg.Ingest,
		Adapters: adapters,
	}

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Ingest.Enabled {
		go ingest.Warmup(ctx)
		if _, err := cronRunner.Add(cfg.Ingest.Schedule, func(ctx context.Context) {
			ingest.RunPass(ctx)
		}); err != nil {
			logger.Warn("cron register ingestion failed", zap.Error(err))
		}
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	var tracker *sentiment.Tracker
	if cfg.Sentiment.Enabled {
		tracker = &sentiment.Tracker{
			Client: &sentiment.Client{
				HTTP:   &http.Client{Timeout: cfg.Ingest.RequestTimeout},
				Logger: logger,
				Config: cfg.Sentiment,
				Pacer:  sentiment.NewPacer(cfg.Sentiment.RequestDelay, 1),
				Classifier: sentiment.Classifier{
					Positive: cfg.Sentiment.PositiveWords,
					Negative: cfg.Sentiment.NegativeWords,
					Tracked:  cfg.Sentiment.TrackedTerms,
				},
			},
			Hub:    hub,
			Board:  board,
			Logger: logger,
			Config: cfg.Sentiment,
		}
		go func() {
			if err := tracker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("sentiment tracker stopped", zap.Error(err))
			}
		}()
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	(&handler.HealthHandler{DB: dbConn}).Register(router)
	(&handler.OpportunityHandler{Repo: store, Cache: queryCache, Denylist: cfg.Query.Denylist}).Register(router)
	(&handler.AnalyticsHandler{Engine: engine, Cache: queryCache}).Register(router)
	(&handler.AlertsHandler{Book: alerts.NewBook()}).Register(router)
	(&handler.SourcesHandler{Board: board}).Register(router)
	(&handler.SentimentHandler{Tracker: tracker}).Register(router)
	(&handler.WSHandler{Hub: hub, Logger: logger}).Register(router)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func buildAdapters(cfg config.Config, store *gormrepository.Store, logger *zap.Logger) []source.Adapter {
	httpClient := &http.Client{Timeout: cfg.Ingest.RequestTimeout}

	var rawSink func(name string, payload []byte, items int)
	if cfg.Ingest.SnapshotRaw {
		rawSink = func(name string, payload []byte, items int) {
			snapCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.InsertRawSnapshot(snapCtx, name, payload, items); err != nil {
				logger.Warn("raw snapshot insert failed", zap.String("source", name), zap.Error(err))
			}
		}
	}

	var adapters []source.Adapter
	if cfg.Sources.Trending.Enabled {
		adapters = append(adapters, &source.TrendingAdapter{
			HTTP:    httpClient,
			Logger:  logger,
			Config:  cfg.Sources.Trending,
			RawSink: rawSink,
		})
	}
	if cfg.Sources.NewListings.Enabled {
		adapters = append(adapters, &source.ListingsAdapter{
			HTTP:    httpClient,
			Logger:  logger,
			Config:  cfg.Sources.NewListings,
			RawSink: rawSink,
		})
	}
	for _, page := range cfg.Sources.Pages {
		adapters = append(adapters, &source.PageAdapter{
			HTTP:   httpClient,
			Logger: logger,
			Config: page,
		})
	}
	return adapters
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
