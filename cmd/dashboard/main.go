package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rjsharma/matrixpay-dashboard-go/internal/config"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/gateway"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/handler"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/infra/observability"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/infra/resilience"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/infra/storage"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/session"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/store"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("api_base_url", cfg.APIBaseURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("admin_poll_interval", cfg.AdminPollInterval),
		zap.String("withdrawal_day", cfg.WithdrawalDay.String()),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "matrixpay-dashboard")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Session ---
	slot := storage.NewSlot(cfg.SessionFile, cfg.SessionSealKey)
	sess := session.NewStore(slot, logger)
	if err := sess.Load(); err != nil {
		logger.Fatal("failed to load session", zap.Error(err))
	}
	logger.Info("session slot ready", zap.String("path", slot.Path()))

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("platform-api")
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Platform gateway ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	gw := gateway.NewClient(httpClient, cfg.APIBaseURL, sess, cb, resilienceCfg, metrics, logger)

	// --- Stores ---
	wallet := store.NewWallet(gw, metrics, logger, cfg.WithdrawalDay, nil)
	admin := store.NewAdmin(gw, metrics, logger)
	notifier := store.NewNotifier(cfg.NotifyTTL, metrics)
	poller := store.NewPoller(cfg.AdminPollInterval, func(ctx context.Context) {
		admin.RefreshAll(ctx, bulkhead)
	}, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Deps{
		Session:  sess,
		Gateway:  gw,
		Wallet:   wallet,
		Admin:    admin,
		Notifier: notifier,
		Poller:   poller,
		Metrics:  metrics,
		Logger:   logger,
		Config:   cfg,
	})

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
