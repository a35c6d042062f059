// Package main is the entry point for the Term Search API server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Shimizu-Technology/pdf-term-search/internal/config"
	"github.com/Shimizu-Technology/pdf-term-search/internal/database"
	"github.com/Shimizu-Technology/pdf-term-search/internal/handlers"
	"github.com/Shimizu-Technology/pdf-term-search/internal/middleware"
	"github.com/Shimizu-Technology/pdf-term-search/internal/router"
	"github.com/Shimizu-Technology/pdf-term-search/internal/services/termsearch"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("🚀 Term Search API %s starting...", Version)

	// A local .env is optional; real environment variables win
	if err := godotenv.Load(); err == nil {
		log.Println("📄 Loaded .env")
	}

	// Step 1: Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	log.Printf("📋 Config loaded: port=%s, gin_mode=%s, max_upload=%dMB, timezone=%s",
		cfg.Port, cfg.GinMode, cfg.MaxUploadMB, cfg.ReportLocation)

	os.Setenv("GIN_MODE", cfg.GinMode)

	// Step 2: Connect to Database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("✅ Database connected")

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	// Step 3: Create Services
	searcher := termsearch.New(cfg.ReportLocation)

	owner := middleware.OwnerKey{ID: cfg.OwnerAPIKeyID, Prefix: cfg.OwnerAPIKeyPrefix}
	limiter := middleware.NewRateLimiter(cfg.DefaultRateLimit, owner)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go limiter.Cleanup(ctx, 10*time.Minute)

	if cfg.AdminAPIKey != "" {
		log.Println("✅ Admin API key configured (API key creation protected)")
	} else {
		log.Println("⚠️  No admin API key set (API key creation is open, set ADMIN_API_KEY in production)")
	}

	// Step 4: Setup HTTP Router
	h := handlers.NewHandler(db, searcher, handlers.Options{
		JWTSecret:        cfg.JWTSecret,
		AdminAPIKey:      cfg.AdminAPIKey,
		DefaultRateLimit: cfg.DefaultRateLimit,
		MaxUploadBytes:   cfg.MaxUploadBytes(),
	})
	r := router.Setup(router.Deps{
		Handler:        h,
		Auth:           db,
		RateLimiter:    limiter,
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	// Step 5: Start the HTTP Server
	// Large PDFs take a while to upload and extract, hence the long timeouts
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🌐 Server listening on http://localhost:%s", cfg.Port)
		log.Printf("📖 Health check: http://localhost:%s/api/v1/health", cfg.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	// Step 6: Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Printf("🛑 Received signal %v, shutting down gracefully...", sig)
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  Server forced to shutdown: %v", err)
	}

	log.Println("👋 Server stopped. Goodbye!")
}
