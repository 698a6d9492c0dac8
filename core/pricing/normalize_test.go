package pricing

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"catalog-cost/core/types"
)

func rawPlan(id string, pricing map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"id":      id,
		"pricing": pricing,
	}
}

func rawDoc(plans ...map[string]interface{}) map[string]interface{} {
	planList := make([]interface{}, 0, len(plans))
	for _, plan := range plans {
		planList = append(planList, plan)
	}
	return map[string]interface{}{
		"schema": "v2",
		"offerings": []interface{}{
			map[string]interface{}{
				"id":    "cloud",
				"plans": planList,
			},
		},
	}
}

func fixedPricing(amount float64) map[string]interface{} {
	return map[string]interface{}{
		"type":   "fixed",
		"prices": map[string]interface{}{"EUR": amount},
	}
}

// TestNormalizeDocumentDefaults verifies labels, providers, intervals
// and document defaults are filled in during normalization.
func TestNormalizeDocumentDefaults(t *testing.T) {
	raw := rawDoc(rawPlan("team", map[string]interface{}{
		"prices": map[string]interface{}{"eur": 12.5},
	}))

	doc, err := NormalizeDocument(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.DefaultOfferingID != "default" || doc.DefaultPlanID != "community" {
		t.Errorf("expected default/community, got %s/%s", doc.DefaultOfferingID, doc.DefaultPlanID)
	}
	offering := doc.Offerings[0]
	if offering.Label != "cloud" {
		t.Errorf("expected label fallback to id, got %q", offering.Label)
	}
	if offering.Provider != "generic" {
		t.Errorf("expected provider generic, got %q", offering.Provider)
	}
	plan := offering.Plans[0]
	if plan.Label != "team" {
		t.Errorf("expected plan label fallback to id, got %q", plan.Label)
	}
	if plan.Pricing.Type != types.BlockFixed {
		t.Errorf("expected implicit fixed type, got %s", plan.Pricing.Type)
	}
	if plan.Pricing.Interval != types.IntervalMonth {
		t.Errorf("expected implicit month interval, got %s", plan.Pricing.Interval)
	}
	amount, ok := plan.Pricing.Prices[types.CurrencyEUR]
	if !ok {
		t.Fatal("expected lower-case currency key to be upper-cased")
	}
	if !amount.Equal(decimal.NewFromFloat(12.5)) {
		t.Errorf("expected 12.5, got %s", amount)
	}
}

// TestNormalizeDocumentSetupFeeInterval verifies setup fees are always
// treated as one-time charges no matter what the document says.
func TestNormalizeDocumentSetupFeeInterval(t *testing.T) {
	plan := rawPlan("team", fixedPricing(10))
	plan["setup_fee"] = map[string]interface{}{
		"interval": "month",
		"prices":   map[string]interface{}{"EUR": 49},
	}

	doc, err := NormalizeDocument(rawDoc(plan))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	setupFee := doc.Offerings[0].Plans[0].SetupFee
	if setupFee == nil {
		t.Fatal("expected setup fee")
	}
	if setupFee.Interval != types.IntervalOnce {
		t.Errorf("expected interval once, got %s", setupFee.Interval)
	}
}

// TestNormalizeDocumentRejections walks the structural rules.
func TestNormalizeDocumentRejections(t *testing.T) {
	tests := []struct {
		name    string
		doc     map[string]interface{}
		wantErr string
	}{
		{
			name:    "wrong schema",
			doc:     map[string]interface{}{"schema": "v1"},
			wantErr: "schema must be v2",
		},
		{
			name:    "missing offerings",
			doc:     map[string]interface{}{"schema": "v2"},
			wantErr: "offerings must not be empty",
		},
		{
			name: "offering without id",
			doc: map[string]interface{}{
				"schema":    "v2",
				"offerings": []interface{}{map[string]interface{}{"plans": []interface{}{}}},
			},
			wantErr: "offerings[0].id is required",
		},
		{
			name: "offering without plans",
			doc: map[string]interface{}{
				"schema":    "v2",
				"offerings": []interface{}{map[string]interface{}{"id": "cloud"}},
			},
			wantErr: "offerings[0].plans must not be empty",
		},
		{
			name: "plan without id",
			doc: rawDoc(map[string]interface{}{
				"pricing": fixedPricing(1),
			}),
			wantErr: "offerings[0].plans[0].id is required",
		},
		{
			name:    "fixed without prices",
			doc:     rawDoc(rawPlan("team", map[string]interface{}{"type": "fixed"})),
			wantErr: "requires prices or regional_prices",
		},
		{
			name: "invalid currency code",
			doc: rawDoc(rawPlan("team", map[string]interface{}{
				"prices": map[string]interface{}{"euro": 1},
			})),
			wantErr: "has invalid currency 'euro'",
		},
		{
			name: "invalid region",
			doc: rawDoc(rawPlan("team", map[string]interface{}{
				"regional_prices": map[string]interface{}{
					"mars": map[string]interface{}{"EUR": 1},
				},
			})),
			wantErr: "has invalid region 'mars'",
		},
		{
			name: "invalid interval",
			doc: rawDoc(rawPlan("team", map[string]interface{}{
				"interval": "weekly",
				"prices":   map[string]interface{}{"EUR": 1},
			})),
			wantErr: "has invalid interval 'weekly'",
		},
		{
			name: "negative price",
			doc: rawDoc(rawPlan("team", map[string]interface{}{
				"prices": map[string]interface{}{"EUR": -4},
			})),
			wantErr: "must be >= 0",
		},
		{
			name: "tiered without tiers",
			doc: rawDoc(rawPlan("team", map[string]interface{}{
				"type": "tiered_per_unit",
			})),
			wantErr: ".tiers must not be empty",
		},
		{
			name: "factor without values",
			doc: rawDoc(rawPlan("team", map[string]interface{}{
				"type": "factor",
			})),
			wantErr: ".values is required",
		},
		{
			name: "bundle without base",
			doc: rawDoc(rawPlan("team", map[string]interface{}{
				"type": "bundle",
			})),
			wantErr: ".base is required",
		},
		{
			name: "bundle with fixed overage",
			doc: rawDoc(rawPlan("team", map[string]interface{}{
				"type":           "bundle",
				"base":           map[string]interface{}{"prices": map[string]interface{}{"EUR": 10}},
				"included_units": map[string]interface{}{"users": 5},
				"overage":        fixedPricing(1),
			})),
			wantErr: "overage.type must be per_unit, tiered_per_unit or volume_per_unit",
		},
		{
			name: "unknown block type",
			doc: rawDoc(rawPlan("team", map[string]interface{}{
				"type": "surge",
			})),
			wantErr: ".type 'surge' is not supported",
		},
		{
			name: "input without default",
			doc: func() map[string]interface{} {
				doc := rawDoc(rawPlan("team", fixedPricing(1)))
				doc["inputs"] = []interface{}{
					map[string]interface{}{"id": "users", "type": "number"},
				}
				return doc
			}(),
			wantErr: "inputs.users requires a default",
		},
		{
			name: "input min above max",
			doc: func() map[string]interface{} {
				doc := rawDoc(rawPlan("team", fixedPricing(1)))
				doc["inputs"] = []interface{}{
					map[string]interface{}{"id": "users", "type": "number", "default": 5, "min": 10, "max": 2},
				}
				return doc
			}(),
			wantErr: "inputs.users has min > max",
		},
		{
			name: "enum default outside options",
			doc: func() map[string]interface{} {
				doc := rawDoc(rawPlan("team", fixedPricing(1)))
				doc["inputs"] = []interface{}{
					map[string]interface{}{"id": "tier", "type": "enum", "default": "gold", "options": []interface{}{"a", "b"}},
				}
				return doc
			}(),
			wantErr: "inputs.tier.default must be one of options",
		},
		{
			name: "addon with custom type",
			doc: func() map[string]interface{} {
				plan := rawPlan("team", fixedPricing(1))
				plan["addons"] = []interface{}{
					map[string]interface{}{"id": "extra", "type": "custom"},
				}
				return rawDoc(plan)
			}(),
			wantErr: "addons[0] must be fixed/per_unit",
		},
		{
			name: "minimum commit with tiers",
			doc: func() map[string]interface{} {
				plan := rawPlan("team", fixedPricing(1))
				plan["minimum_commit"] = map[string]interface{}{
					"type": "tiered_per_unit",
					"tiers": []interface{}{
						map[string]interface{}{"up_to": 5, "prices": map[string]interface{}{"EUR": 1}},
					},
				}
				return rawDoc(plan)
			}(),
			wantErr: "minimum_commit must define a fixed-like price point",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeDocument(tt.doc)
			if err == nil {
				t.Fatal("expected error, got none")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

// TestImplicitDocument verifies the fallback document used for roles
// without a pricing file.
func TestImplicitDocument(t *testing.T) {
	doc := ImplicitDocument("nextcloud")

	if doc.DefaultOfferingID != "default" || doc.DefaultPlanID != "community" {
		t.Fatalf("unexpected defaults: %s/%s", doc.DefaultOfferingID, doc.DefaultPlanID)
	}
	if len(doc.Offerings) != 1 || len(doc.Offerings[0].Plans) != 1 {
		t.Fatal("expected exactly one offering with one plan")
	}
	plan := doc.Offerings[0].Plans[0]
	if plan.Pricing.Type != types.BlockPerUnit || plan.Pricing.Unit != "users" {
		t.Errorf("expected per-user pricing, got %s on %q", plan.Pricing.Type, plan.Pricing.Unit)
	}
	if !strings.Contains(plan.Description, "nextcloud") {
		t.Errorf("expected role id in description, got %q", plan.Description)
	}
	price := plan.Pricing.Prices[types.CurrencyEUR]
	if !price.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected 1 EUR per user, got %s", price)
	}
	if len(doc.Inputs) != 1 || doc.Inputs[0].ID != "users" {
		t.Fatal("expected a single users input")
	}
	if doc.Inputs[0].Min == nil || !doc.Inputs[0].Min.Equal(decimal.NewFromInt(1)) {
		t.Error("expected users minimum of 1")
	}
}
