// Package types - Quote types
package types

import "github.com/shopspring/decimal"

// MinimumCommit reports whether a quote was floored to a minimum
type MinimumCommit struct {
	// Applied indicates the floor raised the total
	Applied bool `json:"applied"`

	// Delta is the amount added to reach the floor
	Delta decimal.Decimal `json:"delta"`
}

// Breakdown itemizes the components of a quote total
type Breakdown struct {
	// Base is the flat component of the main charge
	Base decimal.Decimal `json:"base"`

	// Usage is the quantity-driven component of the main charge
	Usage decimal.Decimal `json:"usage"`

	// Addons is the sum of all addon charges
	Addons decimal.Decimal `json:"addons"`

	// Factors is the delta introduced by multipliers
	Factors decimal.Decimal `json:"factors"`

	// SetupFee is the one-time charge, zero when excluded
	SetupFee decimal.Decimal `json:"setup_fee"`

	// MinimumCommit reports the floor adjustment
	MinimumCommit MinimumCommit `json:"minimum_commit_applied"`
}

// Quote is the result of evaluating a plan against inputs
type Quote struct {
	// Total is the recurring amount plus the setup fee when
	// included. Nil means the plan requires contacting sales.
	Total *decimal.Decimal `json:"total"`

	// Currency is the quoted currency
	Currency Currency `json:"currency"`

	// Region is the pricing region used for resolution
	Region Region `json:"region"`

	// Interval is the billing interval of the main charge
	Interval Interval `json:"interval"`

	// Breakdown itemizes the total
	Breakdown Breakdown `json:"breakdown"`

	// Notes carries human-readable remarks such as applied floors
	Notes []string `json:"notes"`

	// Inputs echoes the resolved input values used for the quote
	Inputs map[string]interface{} `json:"inputs"`

	// ContactSales indicates the plan has no computable price
	ContactSales bool `json:"contact_sales"`
}

// IsFree reports whether the quote totals zero or less
func (q *Quote) IsFree() bool {
	return q != nil && q.Total != nil && !q.Total.IsPositive()
}
