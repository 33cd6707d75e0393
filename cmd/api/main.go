package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-explorer/internal/application/services"
	"github.com/bimakw/wallet-explorer/internal/config"
	"github.com/bimakw/wallet-explorer/internal/domain/repositories"
	"github.com/bimakw/wallet-explorer/internal/infrastructure/alchemy"
	"github.com/bimakw/wallet-explorer/internal/infrastructure/cache"
	"github.com/bimakw/wallet-explorer/internal/infrastructure/database"
	"github.com/bimakw/wallet-explorer/internal/infrastructure/ethereum"
	"github.com/bimakw/wallet-explorer/internal/infrastructure/etherscan"
	"github.com/bimakw/wallet-explorer/internal/infrastructure/logging"
	"github.com/bimakw/wallet-explorer/internal/infrastructure/tokenlist"
	"github.com/bimakw/wallet-explorer/internal/presentation/handlers"
	"github.com/bimakw/wallet-explorer/internal/presentation/middleware"
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

	logger.Info("Starting wallet-explorer API",
		zap.Int("port", cfg.API.Port),
	)

	if cfg.Etherscan.APIKey == "" {
		logger.Warn("ETHERSCAN_API_KEY is not set, explorer requests may be rejected")
	}
	if cfg.Alchemy.APIKey == "" {
		logger.Warn("ALCHEMY_API_KEY is not set, token balance requests will fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chains, err := config.LoadChains(cfg.Catalog.ChainsFile)
	if err != nil {
		logger.Fatal("Failed to load chains", zap.Error(err))
	}

	// Connect to Redis cache, falling back to an in-process cache
	var upstreamCache cache.Cache
	var cacheChecker handlers.HealthChecker
	redisCache, err := cache.NewRedisCache(cfg.Redis, cfg.API.CacheTTL, logger)
	if err != nil {
		logger.Warn("Failed to connect to Redis, using in-memory cache", zap.Error(err))
		memoryCache := cache.NewMemoryCache(cfg.API.CacheTTL)
		upstreamCache = memoryCache
		cacheChecker = memoryCache
	} else {
		defer redisCache.Close()
		upstreamCache = redisCache
		cacheChecker = redisCache
	}

	// Upstream API clients
	explorer := etherscan.NewClient(cfg.Etherscan, cfg.API.UpstreamTimeout, upstreamCache, cfg.API.CacheTTL, logger)
	balances := alchemy.NewClient(cfg.Alchemy, cfg.API.UpstreamTimeout, upstreamCache, cfg.API.CacheTTL, logger)

	// Token catalog storage
	var catalogRepo repositories.TokenCatalogRepository
	var dbChecker handlers.HealthChecker
	if cfg.Database.Enabled {
		db, err := database.NewPostgresDB(cfg.Database, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := db.EnsureSchema(ctx); err != nil {
			logger.Fatal("Failed to create catalog schema", zap.Error(err))
		}
		catalogRepo = database.NewTokenCatalogRepo(db.DB())
		dbChecker = db
	} else {
		catalogRepo = tokenlist.NewCatalog()
	}

	// On-chain metadata lookups (optional)
	var resolver repositories.TokenResolver
	var nodeChecker handlers.HealthChecker
	if cfg.Ethereum.RPCURL != "" {
		ethClient, err := ethereum.NewClient(cfg.Ethereum, logger)
		if err != nil {
			logger.Warn("Failed to connect to Ethereum node, on-chain metadata disabled", zap.Error(err))
		} else {
			defer ethClient.Close()
			resolver = ethereum.NewTokenResolver(ethClient, ethClient.ChainID(), logger)
			nodeChecker = ethClient
		}
	}

	// Create services
	aggregator := services.NewBalanceAggregator(balances, cfg.Aggregator.MaxPages, logger)
	normalizer := services.NewNormalizer(cfg.Aggregator.MinValueUSD, logger)
	tokenService := services.NewTokenService(aggregator, normalizer, catalogRepo, logger)
	walletService := services.NewWalletService(explorer, tokenService, chains, logger)
	priceService := services.NewPriceService(explorer, logger)
	catalogService := services.NewCatalogService(catalogRepo, resolver, upstreamCache, cfg.API.CacheTTL, logger)

	// Load token lists into the catalog
	var syncService *services.CatalogSyncService
	if cfg.Catalog.Dir != "" {
		source := tokenlist.NewDirSource(cfg.Catalog.Dir, logger)
		syncService = services.NewCatalogSyncService(source, catalogService, cfg.Catalog.SyncInterval, cfg.Catalog.ImportWorkers, logger)
		if err := syncService.Start(ctx); err != nil {
			logger.Error("Initial catalog sync failed", zap.Error(err))
		}
	}

	// Create handlers
	walletHandler := handlers.NewWalletHandler(walletService, logger)
	statsHandler := handlers.NewStatsHandler(priceService, logger)
	chainHandler := handlers.NewChainHandler(chains)
	catalogHandler := handlers.NewCatalogHandler(catalogService, logger)

	healthHandler := handlers.NewHealthHandler(
		handlers.Component{Name: "database", Checker: dbChecker, Critical: true},
		handlers.Component{Name: "cache", Checker: cacheChecker},
		handlers.Component{Name: "ethereum", Checker: nodeChecker},
	)

	// Setup router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.API.CORSOrigins))

	// Health endpoints (no rate limiting)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Get("/live", healthHandler.Live)
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimiter(cfg.API.RateLimitRPS))

		walletHandler.RegisterRoutes(r)
		statsHandler.RegisterRoutes(r)
		chainHandler.RegisterRoutes(r)
		catalogHandler.RegisterRoutes(r)
	})

	// Start server
	addr := cfg.API.Host + ":" + strconv.Itoa(cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	// Run server in goroutine
	go func() {
		logger.Info("API server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, shutting down server...")

	if syncService != nil {
		syncService.Stop()
	}
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
}
