// Package types - Pricing document types
package types

import "github.com/shopspring/decimal"

// InputSpec describes one value a plan asks the caller for
type InputSpec struct {
	// ID uniquely identifies the input within a document
	ID string `json:"id"`

	// Type is the kind of value accepted
	Type InputType `json:"type"`

	// Label is a human-readable label, defaults to the ID
	Label string `json:"label"`

	// Description provides additional context
	Description string `json:"description,omitempty"`

	// Default is the value assumed when the caller provides none.
	// Holds decimal.Decimal, bool or string depending on Type.
	Default interface{} `json:"default"`

	// Min is the lower bound for number inputs (nil = unbounded)
	Min *decimal.Decimal `json:"min,omitempty"`

	// Max is the upper bound for number inputs (nil = unbounded)
	Max *decimal.Decimal `json:"max,omitempty"`

	// Options lists the accepted values for enum inputs
	Options []string `json:"options,omitempty"`

	// AppliesTo restricts the input to specific plan IDs (empty = all)
	AppliesTo []string `json:"applies_to,omitempty"`
}

// PricePoint holds per-currency amounts, optionally split by region
type PricePoint struct {
	// Prices maps currency codes to amounts
	Prices map[Currency]decimal.Decimal `json:"prices,omitempty"`

	// RegionalPrices maps regions to currency maps, taking
	// precedence over Prices when present
	RegionalPrices map[Region]map[Currency]decimal.Decimal `json:"regional_prices,omitempty"`
}

// HasRegional reports whether the point carries regional prices
func (p PricePoint) HasRegional() bool {
	return len(p.RegionalPrices) > 0
}

// IsEmpty reports whether the point carries no prices at all
func (p PricePoint) IsEmpty() bool {
	return len(p.Prices) == 0 && len(p.RegionalPrices) == 0
}

// PriceBand is one step of a tiered or volume price ladder
type PriceBand struct {
	// UpTo is the inclusive upper quantity bound (nil = unbounded)
	UpTo *decimal.Decimal `json:"up_to"`

	PricePoint
}

// PricingBlock describes how a single charge is computed
type PricingBlock struct {
	// Type selects the evaluation strategy
	Type BlockType `json:"type"`

	// Interval is the billing interval, defaults to month
	Interval Interval `json:"interval"`

	// ID identifies addon blocks
	ID string `json:"id,omitempty"`

	// Label is a human-readable label for addon blocks
	Label string `json:"label,omitempty"`

	// Unit names the input supplying the quantity
	Unit string `json:"unit,omitempty"`

	// InputID names the input supplying the quantity or, for
	// factor blocks, the enum input selecting the multiplier
	InputID string `json:"input_id,omitempty"`

	// Default is the addon value assumed when the input is absent
	Default interface{} `json:"default,omitempty"`

	PricePoint

	// Tiers are the progressive steps of tiered_per_unit blocks
	Tiers []PriceBand `json:"tiers,omitempty"`

	// Bands are the brackets of volume_per_unit blocks
	Bands []PriceBand `json:"bands,omitempty"`

	// Base is the flat component of bundle blocks
	Base *PricePoint `json:"base,omitempty"`

	// IncludedUnits maps input IDs to quantities covered by Base
	IncludedUnits map[string]decimal.Decimal `json:"included_units,omitempty"`

	// Overage prices quantities beyond IncludedUnits
	Overage *PricingBlock `json:"overage,omitempty"`

	// Values maps enum options to multipliers for factor blocks
	Values map[string]decimal.Decimal `json:"values,omitempty"`
}

// Plan is one purchasable tier of an offering
type Plan struct {
	// ID uniquely identifies the plan within its offering
	ID string `json:"id"`

	// Label is a human-readable label, defaults to the ID
	Label string `json:"label"`

	// Description provides additional context
	Description string `json:"description,omitempty"`

	// Pricing is the main charge of the plan
	Pricing PricingBlock `json:"pricing"`

	// Inputs are plan-level input specs (strongest precedence)
	Inputs []InputSpec `json:"inputs,omitempty"`

	// Addons are optional extra charges toggled by inputs
	Addons []PricingBlock `json:"addons,omitempty"`

	// Factors multiply the running subtotal by an enum-selected value
	Factors []PricingBlock `json:"factors,omitempty"`

	// SetupFee is a one-time charge, interval always once
	SetupFee *PricingBlock `json:"setup_fee,omitempty"`

	// MinimumCommit floors the recurring subtotal
	MinimumCommit *PricingBlock `json:"minimum_commit,omitempty"`
}

// Offering is one vendor or channel selling plans for a role
type Offering struct {
	// ID uniquely identifies the offering within a document
	ID string `json:"id"`

	// Label is a human-readable label, defaults to the ID
	Label string `json:"label"`

	// Provider names who operates the offering
	Provider string `json:"provider"`

	// Description provides additional context
	Description string `json:"description,omitempty"`

	// Inputs are offering-level input specs
	Inputs []InputSpec `json:"inputs,omitempty"`

	// Plans are the purchasable tiers, never empty
	Plans []Plan `json:"plans"`
}

// Plan returns the plan with the given ID
func (o *Offering) Plan(id string) (*Plan, bool) {
	for i := range o.Plans {
		if o.Plans[i].ID == id {
			return &o.Plans[i], true
		}
	}
	return nil, false
}

// PricingDocument is a normalized schema v2 pricing description
type PricingDocument struct {
	// Schema is the document schema version, always v2
	Schema string `json:"schema"`

	// DefaultOfferingID is the offering preselected for new sessions
	DefaultOfferingID string `json:"default_offering_id"`

	// DefaultPlanID is the plan preselected for new sessions
	DefaultPlanID string `json:"default_plan_id"`

	// Inputs are document-level input specs (weakest precedence)
	Inputs []InputSpec `json:"inputs,omitempty"`

	// Offerings are the purchase channels, never empty
	Offerings []Offering `json:"offerings"`
}

// Offering returns the offering with the given ID
func (d *PricingDocument) Offering(id string) (*Offering, bool) {
	for i := range d.Offerings {
		if d.Offerings[i].ID == id {
			return &d.Offerings[i], true
		}
	}
	return nil, false
}

// Summary condenses a pricing document for catalog listings
type Summary struct {
	// Schema is the document schema version
	Schema string `json:"schema"`

	// Implicit marks documents synthesized for roles without one
	Implicit bool `json:"implicit"`

	// OfferingCount is the number of offerings
	OfferingCount int `json:"offering_count"`

	// PlanCount is the number of plans across all offerings
	PlanCount int `json:"plan_count"`

	// OfferingIDs lists the offering IDs in document order
	OfferingIDs []string `json:"offering_ids"`

	// DefaultOfferingID is the preselected offering
	DefaultOfferingID string `json:"default_offering_id"`

	// DefaultPlanID is the preselected plan
	DefaultPlanID string `json:"default_plan_id"`

	// Currencies lists every currency seen in the document, sorted
	Currencies []Currency `json:"currencies"`

	// Regions lists every region seen in the document, sorted
	Regions []Region `json:"regions"`

	// HasSetupFee indicates at least one plan charges a setup fee
	HasSetupFee bool `json:"has_setup_fee"`

	// HasMinimumCommit indicates at least one plan floors its total
	HasMinimumCommit bool `json:"has_minimum_commit"`

	// HasCustomPricing indicates at least one contact-sales plan
	HasCustomPricing bool `json:"has_custom_pricing"`
}
