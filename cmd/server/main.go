package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "formassist/docs"
	"formassist/internal/cache"
	"formassist/internal/catalog"
	"formassist/internal/config"
	"formassist/internal/llm"
	"formassist/internal/repository"
	"formassist/internal/service"
	"formassist/internal/transport/rest"
	"formassist/internal/transport/ws"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Idle sessions are dropped from memory after this long; their progress
// stays in Redis
const (
	sessionIdle  = 30 * time.Minute
	sweepEvery   = 5 * time.Minute
	shutdownWait = 30 * time.Second
)

// @title Form Assistant API
// @version 1.0
// @description Guided benefit and visa form filling with AI guidance and review
// @host localhost:8080
// @BasePath /v1
// @securityDefinitions.apikey SessionToken
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	logger.Info("AI config",
		zap.String("guidanceModel", cfg.AI.Models.Guidance),
		zap.String("reviewModel", cfg.AI.Models.Review),
		zap.String("transport", cfg.AI.Transport),
		zap.Bool("enabled", cfg.AI.IsEnabled()))
	if !cfg.AI.IsEnabled() {
		logger.Warn("GEMINI_API_KEY not set, using mock guidance and review")
	}
	if !cfg.Checkout.Enabled() {
		logger.Warn("STRIPE_SECRET_KEY not set, checkout disabled")
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("connect to MongoDB", zap.Error(err))
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		logger.Fatal("ping MongoDB", zap.Error(err))
	}
	logger.Info("connected to MongoDB", zap.String("db", cfg.MongoDB))

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr(),
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Fatal("ping Redis", zap.Error(err))
	}
	logger.Info("connected to Redis", zap.String("addr", cfg.RedisAddr()))

	// Initialize WebSocket hub
	wsHub := ws.NewHub(logger)
	defer wsHub.Close()

	// Initialize repositories
	sessionRepo := repository.NewSessionRepo(db)
	reviewRepo := repository.NewReviewRepo(db)
	moduleRepo := repository.NewModuleRepo(db)
	evidenceRepo := repository.NewEvidenceRepo(db)

	// Initialize caches
	sessionCache := cache.NewSessionCache(rdb)
	progressCache := cache.NewProgressCache(rdb)
	guidanceCache := cache.NewGuidanceCache(rdb)

	// Initialize services
	embedded, err := catalog.Embedded()
	if err != nil {
		logger.Fatal("load embedded catalog", zap.Error(err))
	}
	catalogSvc := service.NewCatalogService(moduleRepo, embedded, logger)
	if err := catalogSvc.Refresh(ctx); err != nil {
		logger.Warn("load stored modules, using embedded catalog", zap.Error(err))
	}

	gen := llm.New(cfg.AI)
	authSvc := service.NewAuthService(cfg.JWTSecret)
	sessionSvc := service.NewSessionService(sessionRepo, sessionCache, progressCache, evidenceRepo, catalogSvc, authSvc, logger)
	assistSvc := service.NewAssistService(cfg.AI, gen, sessionSvc, guidanceCache, evidenceRepo, cfg.GuidanceDebounce, logger)
	defer assistSvc.Close()
	reviewSvc := service.NewReviewService(cfg.AI, gen, sessionSvc, reviewRepo, logger)
	exportSvc := service.NewExportService(sessionSvc, reviewSvc)
	checkoutSvc := service.NewCheckoutService(cfg.Checkout)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	sessionSvc.SetBroadcaster(wsHub)
	assistSvc.SetBroadcaster(wsHub)
	reviewSvc.SetBroadcaster(wsHub)

	router := rest.NewRouter(&rest.Container{
		Config:          cfg,
		AuthService:     authSvc,
		CatalogService:  catalogSvc,
		SessionService:  sessionSvc,
		ReviewService:   reviewSvc,
		ExportService:   exportSvc,
		CheckoutService: checkoutSvc,
		WSHub:           wsHub,
		Log:             logger,
	})

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(sweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if n := sessionSvc.Sweep(sessionIdle); n > 0 {
					logger.Debug("idle sessions released", zap.Int("count", n))
				}
			}
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ListenAndServe", zap.Error(err))
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownWait)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
