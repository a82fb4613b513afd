package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/lostfound/backend/config"
	httpDelivery "github.com/lostfound/backend/internal/delivery/http"
	"github.com/lostfound/backend/internal/domain"
	"github.com/lostfound/backend/internal/infrastructure/logging"
	"github.com/lostfound/backend/internal/infrastructure/store"
	"github.com/lostfound/backend/internal/usecase"
)

// repository is what both store implementations provide
type repository interface {
	domain.ReportRepository
	domain.MatchRepository
	domain.ConversationRepository
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Server.Environment, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("starting lost & found backend",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Type))

	// Initialize infrastructure dependencies
	repo, closeStore, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	// Initialize usecase layer
	matchingService := usecase.NewMatchingService(
		usecase.MatchConfig{
			Threshold:          cfg.Matching.Threshold,
			Workers:            cfg.Matching.Workers,
			EnableDebugLogging: cfg.Matching.EnableDebugLogging,
		},
		logger.Named("matching"),
	)
	reportService := usecase.NewReportService(repo, repo, matchingService, logger.Named("reports"))
	messageService := usecase.NewMessageService(repo, repo, logger.Named("messages"))

	logger.Info("matching configured",
		zap.Float64("threshold", matchingService.Threshold()),
		zap.Int("workers", cfg.Matching.Workers),
		zap.Bool("debug", cfg.Matching.EnableDebugLogging))

	// Create HTTP handler with dependencies and setup router
	handler := httpDelivery.NewHandler(reportService, matchingService, messageService, logger.Named("http"))
	router := httpDelivery.SetupRouter(cfg, handler, logger.Named("http"))

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStore builds the configured store and a func that releases it
func openStore(cfg config.StoreConfig) (repository, func(), error) {
	switch cfg.Type {
	case "sqlite":
		db, err := store.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return db, func() { db.Close() }, nil
	default:
		return store.NewMemoryStore(), func() {}, nil
	}
}
