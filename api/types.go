// Package api - API types for the quote service
// These types define the contract for the quote and catalog endpoints.
// The API is stateless; catalog state lives in a swappable snapshot.
package api

import "catalog-cost/core/types"

// QuoteRequest is the input to POST /quote
type QuoteRequest struct {
	// RoleID selects the catalog entry to price
	RoleID string `json:"role_id"`

	// Offering and plan within the role's pricing document.
	// Empty values fall back to the document defaults.
	OfferingID string `json:"offering_id,omitempty"`
	PlanID     string `json:"plan_id,omitempty"`

	// Inputs are raw caller values keyed by input spec ID
	Inputs map[string]interface{} `json:"inputs,omitempty"`

	// Currency and region the quote should be expressed in
	Currency string `json:"currency,omitempty"`
	Region   string `json:"region,omitempty"`

	// IncludeSetupFee folds the one-time setup fee into the total
	IncludeSetupFee bool `json:"include_setup_fee,omitempty"`
}

// RoleSummary is the list shape for GET /roles. It carries the
// condensed pricing summary instead of the full document.
type RoleSummary struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Status      types.RoleStatus `json:"status,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	Categories  []string         `json:"categories,omitempty"`
	Summary     *types.Summary   `json:"pricing_summary,omitempty"`
}

// ErrorResponse is the envelope for non-2xx responses
type ErrorResponse struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}
