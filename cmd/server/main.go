package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	exportapp "github.com/feedbridge/backend/internal/application/export"
	"github.com/feedbridge/backend/internal/domain/catalog"
	"github.com/feedbridge/backend/internal/domain/feed"
	"github.com/feedbridge/backend/internal/infrastructure/cache"
	"github.com/feedbridge/backend/internal/infrastructure/catalogsource"
	"github.com/feedbridge/backend/internal/infrastructure/config"
	"github.com/feedbridge/backend/internal/infrastructure/ecommerce"
	"github.com/feedbridge/backend/internal/infrastructure/feedfile"
	"github.com/feedbridge/backend/internal/infrastructure/logger"
	"github.com/feedbridge/backend/internal/infrastructure/persistence"
	"github.com/feedbridge/backend/internal/infrastructure/scheduler"
	"github.com/feedbridge/backend/internal/infrastructure/storage"
	"github.com/feedbridge/backend/internal/interfaces/http/handler"
	"github.com/feedbridge/backend/internal/interfaces/http/middleware"
	"github.com/feedbridge/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting feed export service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := persistence.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database schema", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Initialize the run lock
	runLock, err := cache.NewRedisRunLock(&cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := runLock.Close(); err != nil {
			log.Error("Error closing Redis connection", zap.Error(err))
		}
	}()

	// Load the versioned category mapping table
	mapping, err := config.LoadMappingTable(cfg.Export.CategoryMappingFile)
	if err != nil {
		log.Fatal("Failed to load category mapping table",
			zap.String("path", cfg.Export.CategoryMappingFile),
			zap.Error(err),
		)
	}
	log.Info("Category mapping table loaded",
		zap.String("version", mapping.Version),
		zap.Int("categories", len(mapping.Categories)),
	)

	// Build the shared transformation rules
	rules := &feed.Rules{
		Brand:                 cfg.Export.Brand,
		CurrencyCode:          cfg.Export.CurrencyCode,
		GoogleProductCategory: cfg.Export.GoogleProductCategory,
		Tracking: feed.TrackingParams{
			Source:   cfg.Export.TrackingSource,
			Campaign: cfg.Export.TrackingCampaign,
			Medium:   cfg.Export.TrackingMedium,
		},
		PreorderTerm:        cfg.Export.PreorderTerm,
		PreorderLabel:       cfg.Export.PreorderLabel,
		DefaultDeliveryTime: cfg.Export.DefaultDeliveryTime,
		Mapping:             *mapping,
	}

	adTransformer, err := feed.NewAdCatalogTransformer(rules)
	if err != nil {
		log.Fatal("Invalid transformation rules", zap.Error(err))
	}
	commerceTransformer, err := feed.NewCommerceTransformer(rules)
	if err != nil {
		log.Fatal("Invalid transformation rules", zap.Error(err))
	}

	// Initialize the catalog source adapter
	sourceCfg := catalogsource.NewWooCommerceConfig(
		cfg.CatalogSource.BaseURL,
		cfg.CatalogSource.ConsumerKey,
		cfg.CatalogSource.ConsumerSecret,
	)
	sourceCfg.PageSize = cfg.CatalogSource.PageSize
	sourceCfg.TimeoutSeconds = cfg.CatalogSource.TimeoutSeconds
	source, err := catalogsource.NewWooCommerceAdapter(sourceCfg)
	if err != nil {
		log.Fatal("Failed to initialize catalog source", zap.Error(err))
	}
	scope := catalog.Scope{
		CategoryID:      cfg.CatalogSource.CategoryID,
		IncludeChildren: cfg.CatalogSource.IncludeChildren,
	}

	// Initialize the commerce platform adapter
	platform, err := ecommerce.NewShopifyAdapter(&ecommerce.ShopifyConfig{
		ShopDomain:           cfg.Shopify.ShopDomain,
		AccessToken:          cfg.Shopify.AccessToken,
		APIVersion:           cfg.Shopify.APIVersion,
		TimeoutSeconds:       cfg.Shopify.TimeoutSeconds,
		UploadTimeoutSeconds: cfg.Shopify.UploadTimeoutSeconds,
	})
	if err != nil {
		log.Fatal("Failed to initialize commerce platform adapter", zap.Error(err))
	}

	// Initialize feed storage
	feedStorage, err := storage.NewS3FeedStorage(&cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize feed storage", zap.Error(err))
	}
	if err := feedStorage.EnsureBucket(context.Background()); err != nil {
		log.Warn("Feed storage bucket check failed", zap.Error(err))
	}

	// Wire the application services
	runRepo := persistence.NewGormRunRepository(db)
	adFeedWriter := feedfile.NewCSVWriter(
		feedfile.WithDelimiter(rune(cfg.Export.AdFeedDelimiter[0])),
	)

	adFeedService := exportapp.NewAdCatalogExportService(
		source, scope, adTransformer, adFeedWriter, feedStorage, runRepo, runLock, cfg.Export.Dir, log,
	)
	bulkImportService := exportapp.NewBulkImportOrchestrator(
		source, scope, commerceTransformer, platform, runRepo, runLock, cfg.Export.Dir, log,
	)
	queryService := exportapp.NewRunQueryService(runRepo)

	// Start the export scheduler
	if cfg.Scheduler.Enabled {
		exportScheduler := scheduler.NewExportScheduler(
			scheduler.ExportSchedulerConfig{
				CheckInterval:      cfg.Scheduler.CheckInterval,
				AdFeedInterval:     cfg.Scheduler.AdFeedInterval,
				BulkImportInterval: cfg.Scheduler.BulkImportInterval,
			},
			adFeedService,
			bulkImportService,
			log,
		)
		if err := exportScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start export scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := exportScheduler.Stop(stopCtx); err != nil {
				log.Error("Error stopping export scheduler", zap.Error(err))
			}
		}()
	}

	// Set up the HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.RequestLogger(log),
		gin.Recovery(),
	)

	router.NewRouter(engine).
		Register(handler.NewHealthHandler(db)).
		Register(handler.NewExportHandler(adFeedService, bulkImportService, queryService, log)).
		Setup()

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
}
