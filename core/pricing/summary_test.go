package pricing

import (
	"reflect"
	"testing"

	"catalog-cost/core/types"
)

// TestBuildSummaryCollectsDimensions verifies currencies and regions
// are gathered from every price point and sorted.
func TestBuildSummaryCollectsDimensions(t *testing.T) {
	raw := map[string]interface{}{
		"schema":              "v2",
		"default_offering_id": "cloud",
		"default_plan_id":     "team",
		"offerings": []interface{}{
			map[string]interface{}{
				"id": "cloud",
				"plans": []interface{}{
					map[string]interface{}{
						"id": "team",
						"pricing": map[string]interface{}{
							"type":   "fixed",
							"prices": map[string]interface{}{"USD": 10, "EUR": 9},
						},
						"setup_fee": map[string]interface{}{
							"regional_prices": map[string]interface{}{
								"us": map[string]interface{}{"USD": 49},
								"eu": map[string]interface{}{"EUR": 45, "GBP": 40},
							},
						},
					},
					map[string]interface{}{
						"id":      "enterprise",
						"pricing": map[string]interface{}{"type": "custom"},
					},
				},
			},
			map[string]interface{}{
				"id": "selfhost",
				"plans": []interface{}{
					map[string]interface{}{
						"id": "site",
						"pricing": map[string]interface{}{
							"type":   "fixed",
							"prices": map[string]interface{}{"EUR": 99},
						},
						"minimum_commit": map[string]interface{}{
							"prices": map[string]interface{}{"EUR": 50},
						},
					},
				},
			},
		},
	}

	doc, err := NormalizeDocument(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summary := BuildSummary(doc, false)

	if summary.OfferingCount != 2 || summary.PlanCount != 3 {
		t.Errorf("expected 2 offerings / 3 plans, got %d/%d", summary.OfferingCount, summary.PlanCount)
	}
	if !reflect.DeepEqual(summary.OfferingIDs, []string{"cloud", "selfhost"}) {
		t.Errorf("unexpected offering ids: %v", summary.OfferingIDs)
	}
	if summary.DefaultOfferingID != "cloud" || summary.DefaultPlanID != "team" {
		t.Errorf("unexpected defaults: %s/%s", summary.DefaultOfferingID, summary.DefaultPlanID)
	}

	wantCurrencies := []types.Currency{"EUR", "GBP", "USD"}
	if !reflect.DeepEqual(summary.Currencies, wantCurrencies) {
		t.Errorf("expected currencies %v, got %v", wantCurrencies, summary.Currencies)
	}
	wantRegions := []types.Region{types.RegionEU, types.RegionUS}
	if !reflect.DeepEqual(summary.Regions, wantRegions) {
		t.Errorf("expected regions %v, got %v", wantRegions, summary.Regions)
	}

	if !summary.HasSetupFee {
		t.Error("expected setup fee flag")
	}
	if !summary.HasMinimumCommit {
		t.Error("expected minimum commit flag")
	}
	if !summary.HasCustomPricing {
		t.Error("expected custom pricing flag")
	}
	if summary.Implicit {
		t.Error("expected explicit summary")
	}
}

// TestBuildSummaryDefaults verifies EUR and global backfill documents
// that never price anything.
func TestBuildSummaryDefaults(t *testing.T) {
	raw := rawDoc(rawPlan("enterprise", map[string]interface{}{"type": "custom"}))
	doc, err := NormalizeDocument(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summary := BuildSummary(doc, false)

	if !reflect.DeepEqual(summary.Currencies, []types.Currency{types.CurrencyEUR}) {
		t.Errorf("expected EUR fallback, got %v", summary.Currencies)
	}
	if !reflect.DeepEqual(summary.Regions, []types.Region{types.RegionGlobal}) {
		t.Errorf("expected global fallback, got %v", summary.Regions)
	}
	if summary.HasSetupFee || summary.HasMinimumCommit {
		t.Error("expected no fee flags")
	}
}

// TestBuildSummaryImplicit verifies the generated fallback document
// summarizes as implicit.
func TestBuildSummaryImplicit(t *testing.T) {
	doc := ImplicitDocument("nginx")
	summary := BuildSummary(doc, true)

	if !summary.Implicit {
		t.Error("expected implicit flag")
	}
	if summary.OfferingCount != 1 || summary.PlanCount != 1 {
		t.Errorf("expected single offering and plan, got %d/%d", summary.OfferingCount, summary.PlanCount)
	}
	if summary.DefaultOfferingID != DefaultOfferingID || summary.DefaultPlanID != DefaultPlanID {
		t.Errorf("unexpected defaults: %s/%s", summary.DefaultOfferingID, summary.DefaultPlanID)
	}
}
