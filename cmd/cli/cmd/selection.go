// Package cmd - selection state commands
// The state file is a plain JSON snapshot; all mutations go through
// the selection store so plan defaulting and guard rules apply.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"catalog-cost/core/catalog"
	"catalog-cost/core/selection"
	"catalog-cost/internal/config"
)

var (
	selectionAliasFlag string
	selectionPlan      string
	selectionYes       bool
)

// selectionCmd groups the enablement state commands
var selectionCmd = &cobra.Command{
	Use:   "selection",
	Short: "Manage per-device enablement state",
	Long: `Manage which roles and bundles are enabled for a device alias.

State lives in a JSON file (see 'catalog-cost config') and is rebuilt
through the selection store on every command, so plan defaulting and
disable guards always apply.

Examples:
  catalog-cost selection show
  catalog-cost selection enable web-app-files --plan team
  catalog-cost selection disable web-app-files --yes
  catalog-cost selection toggle server/collab-suite --alias dev-laptop`,
}

var selectionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show enabled roles and bundles",
	RunE:  runSelectionShow,
}

var selectionEnableCmd = &cobra.Command{
	Use:   "enable ID",
	Short: "Enable a role or bundle",
	Args:  cobra.ExactArgs(1),
	RunE:  runSelectionEnable,
}

var selectionDisableCmd = &cobra.Command{
	Use:   "disable ID",
	Short: "Disable a role or bundle (guarded)",
	Args:  cobra.ExactArgs(1),
	RunE:  runSelectionDisable,
}

var selectionToggleCmd = &cobra.Command{
	Use:   "toggle ID",
	Short: "Toggle a role or bundle",
	Args:  cobra.ExactArgs(1),
	RunE:  runSelectionToggle,
}

func init() {
	selectionCmd.AddCommand(selectionShowCmd)
	selectionCmd.AddCommand(selectionEnableCmd)
	selectionCmd.AddCommand(selectionDisableCmd)
	selectionCmd.AddCommand(selectionToggleCmd)

	selectionCmd.PersistentFlags().StringVar(&selectionAliasFlag, "alias", "", "device alias (default from config)")
	selectionEnableCmd.Flags().StringVar(&selectionPlan, "plan", "", "plan ID (default: first available plan)")
	selectionDisableCmd.Flags().BoolVar(&selectionYes, "yes", false, "confirm the disable")
}

func selectionAlias() string {
	if selectionAliasFlag != "" {
		return selectionAliasFlag
	}
	return config.Get().Selection.DefaultAlias
}

// selectionFile is the on-disk snapshot shape
type selectionFile struct {
	Aliases map[string]selectionEntry `json:"aliases"`
}

type selectionEntry struct {
	Roles   map[string]string `json:"roles"`
	Bundles []string          `json:"bundles"`
}

// loadSelectionStore replays the state file into a fresh store. Roles
// whose saved plan no longer exists fall back to the default plan
// instead of failing the whole load.
func loadSelectionStore(cat *catalog.Catalog) (*selection.Store, error) {
	store := selection.NewStore(cat)

	data, err := os.ReadFile(config.Get().Selection.StatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("failed to read selection state: %w", err)
	}

	var file selectionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse selection state: %w", err)
	}

	for alias, entry := range file.Aliases {
		for roleID, planID := range entry.Roles {
			if err := store.Enable(alias, roleID, planID); err != nil {
				if err := store.Enable(alias, roleID, ""); err != nil {
					return nil, err
				}
			}
		}
		for _, bundleID := range entry.Bundles {
			if err := store.Enable(alias, bundleID, ""); err != nil {
				return nil, err
			}
		}
	}
	return store, nil
}

func saveSelectionStore(store *selection.Store) error {
	file := selectionFile{Aliases: make(map[string]selectionEntry)}
	for _, alias := range store.Aliases() {
		state := store.GetState(alias)
		file.Aliases[alias] = selectionEntry{
			Roles:   state.PlanByRole,
			Bundles: state.EnabledBundleIDs,
		}
	}

	path := config.Get().Selection.StatePath
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func runSelectionShow(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	store, err := loadSelectionStore(cat)
	if err != nil {
		return err
	}

	aliases := store.Aliases()
	if selectionAliasFlag != "" {
		aliases = []string{selectionAliasFlag}
	}
	if len(aliases) == 0 {
		fmt.Println("Nothing enabled.")
		return nil
	}

	for _, alias := range aliases {
		state := store.GetState(alias)
		fmt.Printf("Alias: %s\n", alias)

		if len(state.EnabledRoleIDs) == 0 && len(state.EnabledBundleIDs) == 0 {
			fmt.Println("  nothing enabled")
			fmt.Println("")
			continue
		}

		for _, roleID := range state.EnabledRoleIDs {
			plan := state.PlanByRole[roleID]
			if plan == "" {
				plan = "-"
			}
			fmt.Printf("  role    %-36s plan %s\n", roleID, plan)
		}
		for _, bundleID := range state.EnabledBundleIDs {
			fmt.Printf("  bundle  %-36s %d/%d member roles enabled\n",
				bundleID,
				store.SelectedCount(alias, bundleID),
				store.TotalCount(bundleID))
		}
		fmt.Println("")
	}
	return nil
}

// catalogHas reports whether id names a role or bundle. The store
// accepts unknown IDs; the CLI rejects them up front.
func catalogHas(cat *catalog.Catalog, id string) bool {
	if _, ok := cat.Role(id); ok {
		return true
	}
	_, ok := cat.Bundle(id)
	return ok
}

func runSelectionEnable(cmd *cobra.Command, args []string) error {
	id := args[0]
	alias := selectionAlias()

	cat, err := loadCatalog()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	store, err := loadSelectionStore(cat)
	if err != nil {
		return err
	}

	if !catalogHas(cat, id) {
		return fmt.Errorf("no role or bundle named %s in the catalog", id)
	}
	if err := store.Enable(alias, id, selectionPlan); err != nil {
		return err
	}
	if err := saveSelectionStore(store); err != nil {
		return err
	}

	if plan, ok := store.Plan(alias, id); ok && plan != "" {
		fmt.Printf("✓ enabled %s (plan %s) for alias %s\n", id, plan, alias)
	} else {
		fmt.Printf("✓ enabled %s for alias %s\n", id, alias)
	}
	return nil
}

func runSelectionDisable(cmd *cobra.Command, args []string) error {
	id := args[0]
	alias := selectionAlias()
	cfg := config.Get()

	cat, err := loadCatalog()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	store, err := loadSelectionStore(cat)
	if err != nil {
		return err
	}

	guardCfg := selection.DefaultGuardConfig()
	if cfg.Selection.JustDisabledSeconds > 0 {
		guardCfg.JustDisabledFor = time.Duration(cfg.Selection.JustDisabledSeconds) * time.Second
	}
	guard := selection.NewGuard(store, guardCfg)

	intent, err := guard.RequestDisable(alias, id)
	if err != nil {
		return err
	}

	fmt.Println(intent.Impact)
	if !selectionYes {
		guard.Cancel(intent.Token)
		fmt.Println("\nState unchanged. Re-run with --yes to apply.")
		return nil
	}

	if err := guard.Confirm(intent.Token); err != nil {
		return err
	}
	if err := saveSelectionStore(store); err != nil {
		return err
	}

	fmt.Printf("✓ disabled %s for alias %s\n", id, alias)
	return nil
}

func runSelectionToggle(cmd *cobra.Command, args []string) error {
	id := args[0]
	alias := selectionAlias()

	cat, err := loadCatalog()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	store, err := loadSelectionStore(cat)
	if err != nil {
		return err
	}

	if !catalogHas(cat, id) {
		return fmt.Errorf("no role or bundle named %s in the catalog", id)
	}
	enabled := store.ToggleForAlias(alias, id)
	if err := saveSelectionStore(store); err != nil {
		return err
	}

	if enabled {
		fmt.Printf("✓ enabled %s for alias %s\n", id, alias)
	} else {
		fmt.Printf("✓ disabled %s for alias %s\n", id, alias)
	}
	return nil
}
