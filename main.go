package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/example/inventory-service/config"
	"github.com/example/inventory-service/modules/api"
	"github.com/example/inventory-service/modules/audit"
	"github.com/example/inventory-service/modules/cache"
	"github.com/example/inventory-service/modules/inventory"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	log.Println("=== Inventory Service - Fiber + GORM ===")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logLevel := mono.LogLevelInfo
	if cfg.LogLevel == "error" {
		logLevel = mono.LogLevelError
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(logLevel),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	logger := app.Logger()

	// Register modules with the framework.
	// - cache: optional Redis list cache
	// - audit: event consumer (product events)
	// - inventory: core domain (products table, emits events)
	// - api: driving adapter (Fiber HTTP server, depends on inventory)
	var inventoryOpts []inventory.ModuleOption
	if cfg.Cache.RedisAddr != "" {
		cacheModule := cache.NewModule(cfg.Cache, logger.WithModule("cache"))
		app.Register(cacheModule)
		inventoryOpts = append(inventoryOpts, inventory.WithCache(cacheModule.Cache()))
	}

	inventoryModule := inventory.NewModule(
		cfg.Database,
		inventory.SeedOptions{Enabled: cfg.ShouldSeed(), Count: cfg.Seed.Count},
		logger.WithModule("inventory"),
		inventoryOpts...,
	)

	app.Register(audit.NewModule(audit.DefaultCapacity, logger.WithModule("audit")))
	app.Register(inventoryModule)
	app.Register(api.NewModule(
		api.Config{
			Port:        cfg.HTTPPort,
			CORSOrigins: cfg.CORSOrigins,
			AccessLog:   cfg.LogLevel != "error",
		},
		logger.WithModule("api"),
		api.WithHealthCheck("inventory", inventoryModule),
	))

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg *config.Config) {
	cacheState := "disabled"
	if cfg.Cache.RedisAddr != "" {
		cacheState = cfg.Cache.RedisAddr
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("  - Environment: %s", cfg.AppEnv)
	log.Printf("  - Database: %s", cfg.Database.Driver)
	log.Printf("  - List cache: %s", cacheState)
	log.Printf("  - Seed: %t (count %d)", cfg.ShouldSeed(), cfg.Seed.Count)
	log.Printf("  - CORS origins: %s", strings.Join(cfg.CORSOrigins, ", "))
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", cfg.HTTPPort)
	log.Println("  GET    /products?page=&limit=  - List products")
	log.Println("  POST   /products               - Create a product")
	log.Println("  PUT    /products/:id           - Update a product")
	log.Println("  DELETE /products/:id           - Delete a product")
	log.Println("  GET    /health                 - Health check")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
