package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-explorer/internal/application/services"
	"github.com/bimakw/wallet-explorer/internal/config"
	"github.com/bimakw/wallet-explorer/internal/domain/repositories"
	"github.com/bimakw/wallet-explorer/internal/infrastructure/database"
	"github.com/bimakw/wallet-explorer/internal/infrastructure/ethereum"
	"github.com/bimakw/wallet-explorer/internal/infrastructure/logging"
	"github.com/bimakw/wallet-explorer/internal/infrastructure/tokenlist"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Catalog.Dir == "" {
		logger.Fatal("CATALOG_DIR is required")
	}

	logger.Info("Starting catalog import",
		zap.String("dir", cfg.Catalog.Dir),
		zap.Duration("interval", cfg.Catalog.SyncInterval),
	)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := database.NewPostgresDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to create catalog schema", zap.Error(err))
	}

	// Connect to Ethereum node (optional)
	var resolver repositories.TokenResolver
	if cfg.Ethereum.RPCURL != "" {
		ethClient, err := ethereum.NewClient(cfg.Ethereum, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Ethereum node", zap.Error(err))
		}
		defer ethClient.Close()
		resolver = ethereum.NewTokenResolver(ethClient, ethClient.ChainID(), logger)
	}

	catalogService := services.NewCatalogService(database.NewTokenCatalogRepo(db.DB()), resolver, nil, 0, logger)
	syncService := services.NewCatalogSyncService(
		tokenlist.NewDirSource(cfg.Catalog.Dir, logger),
		catalogService,
		cfg.Catalog.SyncInterval,
		cfg.Catalog.ImportWorkers,
		logger,
	)

	if cfg.Catalog.SyncInterval <= 0 {
		result, err := syncService.SyncOnce(ctx)
		if err != nil {
			logger.Fatal("Catalog import failed", zap.Error(err))
		}
		logger.Info("Catalog import finished",
			zap.Int("imported", result.Imported),
			zap.Int("resolved", result.Resolved),
			zap.Int("skipped", result.Skipped),
		)
		return
	}

	if err := syncService.Start(ctx); err != nil {
		logger.Warn("First catalog sync failed, continuing on interval", zap.Error(err))
	}

	// Start metrics server
	go startMetricsServer(cfg.Catalog.MetricsPort, logger)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, stopping catalog sync...")

	syncService.Stop()

	stats := syncService.GetStats()
	logger.Info("Catalog sync stopped",
		zap.Int64("runs", stats.Runs),
		zap.Int64("tokens_synced", stats.TokensSynced),
		zap.Int64("errors", stats.ErrorCount),
	)
}

func startMetricsServer(port int, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting metrics server", zap.String("addr", addr))

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Metrics server error", zap.Error(err))
	}
}
