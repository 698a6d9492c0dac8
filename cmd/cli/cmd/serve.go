// Package cmd - serve command
package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"catalog-cost/api"
	"catalog-cost/core/catalog"
	"catalog-cost/internal/config"
	"catalog-cost/internal/logging"
)

var (
	serveAddr  string
	serveWatch bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the quote service",
	Long: `Serve the catalog and quote endpoints over HTTP.

With --watch the catalog directory is watched and reloaded into the
running server when pricing or inventory files change.

Examples:
  catalog-cost serve --addr :8080 --catalog ./catalog
  catalog-cost serve --catalog ./catalog --watch`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload the catalog when files change")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	addr := serveAddr
	if addr == "" {
		addr = cfg.Service.Addr
	}
	root := catalogRoot
	if root == "" {
		root = cfg.Catalog.Root
	}

	loader := catalog.NewLoader(root)
	cat, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	serverCfg := api.DefaultConfig()
	serverCfg.Address = addr
	server := api.NewServer(Version, cat, serverCfg)

	watch := serveWatch || cfg.Catalog.Watch
	if watch {
		watcher, err := catalog.NewWatcher(loader, server.SetCatalog)
		if err != nil {
			return fmt.Errorf("failed to create catalog watcher: %w", err)
		}
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("failed to watch catalog: %w", err)
		}
		defer watcher.Close()
	}

	stats := cat.Stats()
	fmt.Printf("catalog-cost quote service v%s\n", Version)
	fmt.Printf("  Address: %s\n", addr)
	fmt.Printf("  Catalog: %s (%d roles, %d bundles)\n", root, stats.Roles, stats.Bundles)
	fmt.Printf("  Watch:   %t\n", watch)
	fmt.Println("")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
