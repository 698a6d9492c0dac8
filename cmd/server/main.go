// Package main - Entry point for the catalog-cost quote service
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"catalog-cost/api"
	"catalog-cost/core/catalog"
)

const version = "0.3.0"

func main() {
	addr := flag.String("addr", ":8080", "Server address")
	catalogDir := flag.String("catalog", ".", "Catalog directory holding roles/ and bundles/")
	watch := flag.Bool("watch", false, "Reload the catalog when files change")
	flag.Parse()

	loader := catalog.NewLoader(*catalogDir)
	cat, err := loader.Load()
	if err != nil {
		log.Fatalf("failed to load catalog: %v", err)
	}

	cfg := api.DefaultConfig()
	cfg.Address = *addr
	server := api.NewServer(version, cat, cfg)

	if *watch {
		watcher, err := catalog.NewWatcher(loader, server.SetCatalog)
		if err != nil {
			log.Fatalf("failed to create catalog watcher: %v", err)
		}
		if err := watcher.Start(); err != nil {
			log.Fatalf("failed to watch catalog: %v", err)
		}
		defer watcher.Close()
	}

	stats := cat.Stats()
	fmt.Printf("catalog-cost quote service v%s\n", version)
	fmt.Printf("  API:     http://localhost%s\n", *addr)
	fmt.Printf("  Catalog: %s (%d roles, %d bundles)\n", *catalogDir, stats.Roles, stats.Bundles)
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal(err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
	}
}
