package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"path-tracer/internal/common/config"
	"path-tracer/internal/common/middleware"
	"path-tracer/internal/tracer/handlers"
	"path-tracer/internal/tracer/repository"
	"path-tracer/internal/tracer/service"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Path Tracer Service
// ============================================================

func main() {
	cfg := config.Load()

	db, err := repository.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	kv := repository.New(db, cfg.SessionMaxBytes)
	if err := kv.Init(context.Background()); err != nil {
		log.Fatalf("init db: %v", err)
	}

	registry := service.NewRegistry(service.Options{
		Config:        cfg.Recording(),
		KV:            kv,
		Storage:       service.NewFileStorage(cfg.StorageRoot),
		AutosaveDelay: cfg.AutosaveDelay(),
		PreviewLimit:  cfg.PreviewMaxSide,
	})
	defer registry.Close()

	tracerHandler := handlers.NewTracerHandler(registry)
	healthHandler := handlers.NewHealthHandler(db, registry)
	docsHandler := handlers.NewDocsHandler(cfg.DocsPath)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		BodyLimit:    32 * 1024 * 1024,
		AppName:      "Path Tracer",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS(cfg.CORSOrigins))

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", healthHandler.LivenessProbe)
	app.Get("/health/ready", healthHandler.ReadinessProbe)

	app.Get("/docs", docsHandler.SwaggerUI)
	app.Get("/docs/openapi.yaml", docsHandler.SwaggerSpec)

	// ============================================================
	// Tracer Routes
	// ============================================================

	tracerHandler.Register(app)

	// ============================================================
	// Server Start
	// ============================================================

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Printf("Shutting down Path Tracer")
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Path Tracer on %s (env: %s, db: %s)", addr, cfg.Environment, cfg.DBPath)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
