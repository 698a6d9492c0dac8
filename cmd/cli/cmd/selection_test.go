package cmd

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"catalog-cost/core/catalog"
	"catalog-cost/core/types"
	"catalog-cost/internal/config"
)

func selectionTestCatalog() *catalog.Catalog {
	doc := &types.PricingDocument{
		Schema: "v2",
		Offerings: []types.Offering{
			{ID: "cloud", Plans: []types.Plan{{ID: "basic"}, {ID: "pro"}}},
		},
	}
	summary := types.Summary{Schema: "v2"}

	roles := []types.Role{
		{ID: "web-app-files", Title: "Files", Pricing: doc, Summary: &summary},
		{ID: "web-app-wiki", Title: "Wiki"},
	}
	bundles := []types.Bundle{
		{
			ID:           "server/collab-suite",
			Slug:         "collab-suite",
			DeployTarget: types.TargetServer,
			Title:        "Collaboration Suite",
			RoleIDs:      []string{"web-app-files", "web-app-wiki"},
		},
	}
	return catalog.New(roles, bundles)
}

func useTempStatePath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "selection.json")
	cfg := config.Default()
	cfg.Selection.StatePath = path
	config.Set(cfg)
	t.Cleanup(func() { config.Set(config.Default()) })
	return path
}

func TestSelectionStateRoundTrip(t *testing.T) {
	useTempStatePath(t)
	cat := selectionTestCatalog()

	store, err := loadSelectionStore(cat)
	if err != nil {
		t.Fatalf("unexpected load error without a state file: %v", err)
	}

	if err := store.Enable("dev", "web-app-files", "pro"); err != nil {
		t.Fatalf("unexpected enable error: %v", err)
	}
	if err := store.Enable("dev", "server/collab-suite", ""); err != nil {
		t.Fatalf("unexpected enable error: %v", err)
	}
	if err := store.Enable("desk", "web-app-wiki", ""); err != nil {
		t.Fatalf("unexpected enable error: %v", err)
	}

	if err := saveSelectionStore(store); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	reloaded, err := loadSelectionStore(cat)
	if err != nil {
		t.Fatalf("unexpected reload error: %v", err)
	}
	for _, alias := range []string{"dev", "desk"} {
		if !reflect.DeepEqual(reloaded.GetState(alias), store.GetState(alias)) {
			t.Errorf("state for %s did not survive the round trip:\nbefore %+v\nafter  %+v",
				alias, store.GetState(alias), reloaded.GetState(alias))
		}
	}
}

func TestSelectionStateStalePlanFallsBack(t *testing.T) {
	path := useTempStatePath(t)
	cat := selectionTestCatalog()

	snapshot := `{"aliases":{"dev":{"roles":{"web-app-files":"legacy"},"bundles":[]}}}`
	if err := os.WriteFile(path, []byte(snapshot), 0644); err != nil {
		t.Fatalf("failed to seed state file: %v", err)
	}

	store, err := loadSelectionStore(cat)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	// The saved plan no longer exists; the role stays enabled on the
	// document's first plan instead of dropping off the device.
	plan, ok := store.Plan("dev", "web-app-files")
	if !ok {
		t.Fatal("expected web-app-files to stay enabled")
	}
	if plan != "basic" {
		t.Errorf("expected fallback to plan basic, got %q", plan)
	}
}
