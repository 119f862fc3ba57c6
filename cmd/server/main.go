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
	"time"

	"github.com/sitemap-tools/sitemap-pulse/config"
	"github.com/sitemap-tools/sitemap-pulse/internal/analyzer"
	"github.com/sitemap-tools/sitemap-pulse/internal/api"
	"github.com/sitemap-tools/sitemap-pulse/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize storage for the analysis history
	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	if store != nil {
		defer store.Close()

		// Initialize database tables
		if err := store.Initialize(); err != nil {
			log.Fatalf("Failed to initialize database tables: %v", err)
		}
	}

	// Initialize API server
	server := api.NewServer(cfg, store, analyzer.New(cfg))

	// Start the API server
	go func() {
		log.Printf("Starting API server on port %d", cfg.Server.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start API server: %v", err)
		}
	}()

	// Wait for shutdown
	waitForShutdown(server)
}

func openStore(cfg *config.Config) (storage.Store, error) {
	if !cfg.History.Enabled {
		log.Println("Analysis history disabled")
		return nil, nil
	}

	switch cfg.History.Driver {
	case "sqlite":
		return storage.NewSQLiteStore(cfg.History.Path)
	case "postgres":
		return storage.NewPostgresStore(cfg.History.DSN)
	default:
		return nil, fmt.Errorf("unknown history driver %q", cfg.History.Driver)
	}
}

func waitForShutdown(server *api.Server) {
	// Handle system signals for shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutting down...")

	// Graceful server shutdown
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}
	log.Println("Server shut down gracefully")
}
