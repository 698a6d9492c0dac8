// Package cmd - catalog browsing commands
package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"catalog-cost/core/catalog"
	"catalog-cost/internal/config"
)

var catalogFormat string

// catalogCmd groups the catalog browsing commands
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse the role and bundle catalog",
	Long: `Load the catalog directory and list its contents.

Examples:
  catalog-cost catalog roles --catalog ./catalog
  catalog-cost catalog bundles --format json`,
}

var catalogRolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List catalog roles",
	RunE:  runCatalogRoles,
}

var catalogBundlesCmd = &cobra.Command{
	Use:   "bundles",
	Short: "List catalog bundles",
	RunE:  runCatalogBundles,
}

func init() {
	catalogCmd.AddCommand(catalogRolesCmd)
	catalogCmd.AddCommand(catalogBundlesCmd)

	catalogCmd.PersistentFlags().StringVarP(&catalogFormat, "format", "f", "", "output format (cli, json)")
}

// loadCatalog loads the catalog from --catalog or the configured root
func loadCatalog() (*catalog.Catalog, error) {
	root := catalogRoot
	if root == "" {
		root = config.Get().Catalog.Root
	}
	return catalog.NewLoader(root).Load()
}

func outputFormat() string {
	if catalogFormat != "" {
		return catalogFormat
	}
	return config.Get().Output.DefaultFormat
}

func runCatalogRoles(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	roles := cat.Roles(nil)

	if outputFormat() == "json" {
		data, err := json.MarshalIndent(roles, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("%-32s %-12s %6s  %s\n", "ID", "STATUS", "PLANS", "PRICING")
	for i := range roles {
		role := &roles[i]
		plans := 0
		pricingNote := "-"
		if role.Summary != nil {
			plans = role.Summary.PlanCount
			if role.Summary.Implicit {
				pricingNote = "implicit"
			} else {
				pricingNote = strings.Join(role.Summary.OfferingIDs, ", ")
			}
		}
		fmt.Printf("%-32s %-12s %6d  %s\n", role.ID, role.Status, plans, pricingNote)

		for _, warning := range role.Warnings {
			fmt.Printf("  ⚠ %s\n", warning)
		}
	}

	stats := cat.Stats()
	fmt.Printf("\n%d roles (%d implicit pricing, %d with warnings)\n",
		stats.Roles, stats.ImplicitPricing, stats.WithWarnings)
	return nil
}

func runCatalogBundles(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	bundles := cat.Bundles(nil)

	if outputFormat() == "json" {
		data, err := json.MarshalIndent(bundles, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("%-36s %-14s %6s  %s\n", "ID", "TARGET", "ROLES", "TITLE")
	for i := range bundles {
		bundle := &bundles[i]
		fmt.Printf("%-36s %-14s %6d  %s\n",
			bundle.ID, bundle.DeployTarget, len(bundle.RoleIDs), bundle.Title)
	}

	fmt.Printf("\n%d bundles\n", len(bundles))
	return nil
}
