// Package cmd provides the CLI commands for catalog-cost.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"catalog-cost/internal/config"
	"catalog-cost/internal/logging"
)

// Version is stamped by the build; the default marks dev builds.
var Version = "0.3.0"

var (
	cfgFile     string
	verbose     bool
	catalogRoot string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "catalog-cost",
	Short: "Browse an application catalog and resolve pricing",
	Long: `catalog-cost loads a role and bundle catalog, resolves prices from
schema v2 pricing documents and manages per-device enablement state.

Examples:
  catalog-cost catalog roles --catalog ./catalog
  catalog-cost quote web-app-files --plan team --input users=20
  catalog-cost selection enable web-app-files --plan team
  catalog-cost serve --addr :8080 --catalog ./catalog --watch`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.catalog-cost/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&catalogRoot, "catalog", "", "catalog directory holding roles/ and bundles/ (default from config)")

	// Add subcommands
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(selectionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	// Initialize logging
	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("catalog-cost version %s\n", Version)
	},
}

// configCmd prints the effective configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(config.Get(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}
