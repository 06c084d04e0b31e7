package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/casadocigano/fidelidade-api/internal/config"
	"github.com/casadocigano/fidelidade-api/internal/domain"
	"github.com/casadocigano/fidelidade-api/internal/handler"
	"github.com/casadocigano/fidelidade-api/internal/infra/cache"
	"github.com/casadocigano/fidelidade-api/internal/infra/gormstore"
	"github.com/casadocigano/fidelidade-api/internal/infra/notify"
	"github.com/casadocigano/fidelidade-api/internal/infra/observability"
	"github.com/casadocigano/fidelidade-api/internal/infra/resilience"
	"github.com/casadocigano/fidelidade-api/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Config (.env honored for local development) ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("postgres", cfg.DatabaseURL != ""),
		zap.Int("default_goal", cfg.DefaultGoal),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Duration("store_cache_ttl", cfg.StoreCacheTTL),
		zap.Bool("smtp_configured", cfg.SMTPHost != ""),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "fidelidade-api")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Database (retry: Postgres may still be coming up) ---
	var db *gormstore.DB
	err = resilience.RetryWithBackoff(context.Background(), resilience.Config{
		MaxRetries:     5,
		InitialBackoff: time.Second,
	}, func() error {
		var openErr error
		db, openErr = gormstore.Open(cfg.DatabaseURL, cfg.DatabaseSchema, logger)
		return openErr
	})
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	defer db.Close()

	if err := db.AutoMigrate(context.Background()); err != nil {
		logger.Fatal("migrate failed", zap.Error(err))
	}

	// --- Notifications ---
	mailer := notify.NewMailer(cfg)
	dispatcher := notify.NewDispatcher(cfg, mailer, metrics, logger)
	defer dispatcher.Close()

	// --- Services ---
	storeCache := cache.New[domain.Store](cfg.StoreCacheTTL)
	svcs := handler.Services{
		Auth:    service.NewAuthService(db, cfg.JWTSecret, cfg.JWTAccessTTL, logger),
		Users:   service.NewUserService(db, db, logger),
		Clients: service.NewClientService(db, logger),
		Loyalty: service.NewLoyaltyService(
			db, db, db, storeCache, dispatcher, metrics, logger,
			cfg.DefaultGoal, cfg.GiftName,
		),
		Dashboard: service.NewDashboardService(db, db, logger),
		Seeder:    db,
	}

	// --- Router ---
	router := handler.NewRouter(svcs, metrics, logger, cfg.CORSOrigins)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
