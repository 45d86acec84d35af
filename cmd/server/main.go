package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Brownie44l1/emotion-detector/internal/api"
	"github.com/Brownie44l1/emotion-detector/internal/config"
	"github.com/Brownie44l1/emotion-detector/internal/database"
	"github.com/Brownie44l1/emotion-detector/internal/model"
	"github.com/Brownie44l1/emotion-detector/internal/repository"
	"github.com/Brownie44l1/emotion-detector/internal/service"
	"github.com/Brownie44l1/emotion-detector/internal/uploads"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.NewLogger(os.Stderr, cfg.Environment, cfg.Level())
	slog.SetDefault(logger)

	logger.Info("starting emotion detector",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
	)

	// Classifier is chosen once and kept for the life of the process.
	selection := model.NewSelector(model.ONNXLoader(cfg.ONNX()), logger).Select()
	if onnx, ok := selection.Classifier.(*model.ONNXClassifier); ok {
		defer onnx.Close()
		logger.Info("model loaded",
			slog.String("path", cfg.ModelPath),
			slog.Any("classes", onnx.Metadata.Classes),
		)
	}
	logger.Info("classifier selected", slog.String("state", selection.State.String()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AutoMigrate {
		if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info("migrations applied")
	}

	pool, err := database.NewPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	store, err := uploads.NewStore(cfg.UploadDir, api.UploadsRoute[1:])
	if err != nil {
		return fmt.Errorf("failed to prepare upload directory: %w", err)
	}

	svc := service.NewEmotionService(
		selection.Classifier,
		repository.NewPredictionRepository(pool),
		store,
		cfg.HistoryLimit,
		logger,
	)

	router := api.NewRouter(logger, api.Dependencies{
		Service:        svc,
		UploadDir:      cfg.UploadDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	router.Setup()

	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	done := make(chan error, 1)
	go func() { done <- router.Shutdown() }()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("shutdown error", slog.Any("error", err))
		}
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timed out")
	}

	logger.Info("server stopped")
	return nil
}
