package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skufu/GoSintomas/internal/audit"
	"github.com/Skufu/GoSintomas/internal/model"
	"github.com/Skufu/GoSintomas/internal/triage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

func main() {
	gin.SetMode(getEnv("GIN_MODE", "release"))

	cfg, cfgErr := loadConfig()
	logger := newLogger(getEnv("LOG_LEVEL", "info"))
	defer func() { _ = logger.Sync() }()

	if cfgErr != nil {
		logger.Fatal("config error", zap.Error(cfgErr))
	}

	ctx := context.Background()
	gen, err := model.New(ctx, cfg.Model)
	if err != nil {
		logger.Fatal("model setup failed", zap.String("provider", cfg.Model.Provider), zap.Error(err))
	}

	var (
		recorder audit.Recorder = audit.Nop{}
		db       HealthChecker
	)
	if cfg.EnableDB {
		store, err := audit.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		defer store.Close()
		recorder = store
		db = store
	}

	svc := triage.NewService(gen, recorder, logger, triage.Options{MaxAttempts: cfg.MaxAttempts})
	router := setupRouter(svc, db, logger)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Model.Timeout*time.Duration(cfg.MaxAttempts) + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("server listening",
		zap.String("port", cfg.Port),
		zap.String("provider", cfg.Model.Provider),
		zap.String("model", gen.Name()),
		zap.Bool("db", cfg.EnableDB),
	)
	waitForShutdown(server, logger)
}

func newLogger(level string) *zap.Logger {
	config := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		config.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func waitForShutdown(server *http.Server, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
