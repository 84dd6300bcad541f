// Package main is the entry point for the VendorPress server. It loads
// configuration, connects to services, sets up routing, and starts the
// HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vendorpress/internal/cache"
	"vendorpress/internal/config"
	"vendorpress/internal/database"
	"vendorpress/internal/deploy"
	"vendorpress/internal/handlers"
	"vendorpress/internal/livesync"
	"vendorpress/internal/preview"
	"vendorpress/internal/router"
	"vendorpress/internal/storage"
	"vendorpress/internal/store"
)

func main() {
	// Structured logger — JSON would suit production log shipping, but
	// text keeps local development readable.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey for the storefront page cache.
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()
	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)

	// Compile the storefront templates once at startup.
	renderer, err := preview.New()
	if err != nil {
		slog.Error("failed to parse storefront templates", "error", err)
		os.Exit(1)
	}

	// Initialize data stores.
	vendorStore := store.NewVendorStore(db)
	categoryStore := store.NewCategoryStore(db)
	productStore := store.NewProductStore(db)
	bannerStore := store.NewBannerStore(db)
	templateStore := store.NewTemplateStore(db)
	notificationStore := store.NewNotificationStore(db)

	// Connect to S3-compatible object storage (optional — the app works
	// without it, with asset uploads disabled).
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient == nil {
		slog.Warn("s3 storage not configured — asset uploads disabled")
	} else {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	}

	// Deploy service client (optional).
	deployer := deploy.New(cfg.DeployEndpoint)
	if deployer == nil {
		slog.Warn("deploy endpoint not configured — deploys disabled")
	}

	// Preview sync hub for editor/preview WebSocket rooms.
	hub := livesync.NewHub(logger)

	// Create handler groups with their dependencies.
	catalogHandlers := handlers.NewCatalog(categoryStore, notificationStore)
	productHandlers := handlers.NewProducts(productStore, notificationStore)
	bannerHandlers := handlers.NewBanners(bannerStore, storageClient)
	vendorHandlers := handlers.NewVendors(vendorStore, templateStore, notificationStore)
	templateHandlers := handlers.NewTemplates(templateStore, notificationStore, storageClient, pageCache, deployer, hub)
	dashboardHandlers := handlers.NewDashboard(categoryStore, productStore, templateStore, vendorStore, notificationStore)
	publicHandlers := handlers.NewPublic(renderer, vendorStore, templateStore, productStore, categoryStore, bannerStore, pageCache)

	// Set up the Chi router with all middleware and routes.
	r := router.New(router.Deps{
		AdminToken: cfg.AdminToken,
		RateLimit:  cfg.RateLimit,
		Vendors:    vendorStore,
		Hub:        hub,
		Catalog:    catalogHandlers,
		Products:   productHandlers,
		Banners:    bannerHandlers,
		VendorsH:   vendorHandlers,
		Templates:  templateHandlers,
		Dashboard:  dashboardHandlers,
		Public:     publicHandlers,
	})

	// WriteTimeout stays generous: deploy requests hold the connection
	// open while the build log streams back.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
