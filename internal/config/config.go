// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"catalog-cost/core/types"
	"catalog-cost/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Catalog contains catalog configuration
	Catalog CatalogConfig `json:"catalog"`

	// Pricing contains pricing configuration
	Pricing PricingConfig `json:"pricing"`

	// Service contains pricing service configuration
	Service ServiceConfig `json:"service"`

	// Selection contains selection state configuration
	Selection SelectionConfig `json:"selection"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// CatalogConfig contains catalog-related settings
type CatalogConfig struct {
	// Root is the catalog directory holding roles/ and bundles/
	Root string `json:"root"`

	// Watch reloads the catalog when files change
	Watch bool `json:"watch"`
}

// PricingConfig contains pricing-related settings
type PricingConfig struct {
	// DefaultCurrency is the currency used when a request names none
	DefaultCurrency types.Currency `json:"default_currency"`

	// DefaultRegion is the region used when a request names none
	DefaultRegion types.Region `json:"default_region"`

	// IncludeSetupFee includes one-time setup fees in quotes
	IncludeSetupFee bool `json:"include_setup_fee"`
}

// ServiceConfig contains pricing service settings
type ServiceConfig struct {
	// Addr is the listen address for the quote service
	Addr string `json:"addr"`

	// PricingURL is the base URL of a remote pricing service
	PricingURL string `json:"pricing_url"`

	// HTTPTimeoutSeconds bounds individual quote requests
	HTTPTimeoutSeconds int `json:"http_timeout_seconds"`
}

// SelectionConfig contains selection state settings
type SelectionConfig struct {
	// StatePath is the selection state file
	StatePath string `json:"state_path"`

	// DefaultAlias is the alias used when none is given
	DefaultAlias string `json:"default_alias"`

	// JustDisabledSeconds is how long a disabled row keeps its marker
	JustDisabledSeconds int `json:"just_disabled_seconds"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format"`

	// ShowBreakdown shows the detailed quote breakdown
	ShowBreakdown bool `json:"show_breakdown"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	statePath := filepath.Join(homeDir, ".catalog-cost", "selection.json")

	return &Config{
		Version: "1.0",
		Catalog: CatalogConfig{
			Root:  ".",
			Watch: false,
		},
		Pricing: PricingConfig{
			DefaultCurrency: types.CurrencyEUR,
			DefaultRegion:   types.RegionGlobal,
			IncludeSetupFee: false,
		},
		Service: ServiceConfig{
			Addr:               ":8080",
			PricingURL:         "",
			HTTPTimeoutSeconds: 30,
		},
		Selection: SelectionConfig{
			StatePath:           statePath,
			DefaultAlias:        "default",
			JustDisabledSeconds: 4,
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
			ShowBreakdown: true,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
