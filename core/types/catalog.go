// Package types - Catalog types
package types

// Role is one installable application in the catalog
type Role struct {
	// ID is the role directory name, unique across the catalog
	ID string `json:"id"`

	// Title is a human-readable name, defaults to the ID
	Title string `json:"title"`

	// Description provides additional context
	Description string `json:"description,omitempty"`

	// Status is the maturity of the role
	Status RoleStatus `json:"status,omitempty"`

	// Tags are free-form labels
	Tags []string `json:"tags,omitempty"`

	// Categories group related roles
	Categories []string `json:"categories,omitempty"`

	// Pricing is the role's pricing document, implicit when the
	// role ships none or its file fails validation
	Pricing *PricingDocument `json:"pricing,omitempty"`

	// Summary condenses the pricing document for listings
	Summary *Summary `json:"pricing_summary,omitempty"`

	// Warnings lists problems encountered while loading the role
	Warnings []string `json:"warnings,omitempty"`
}

// Bundle is a curated set of roles installed together
type Bundle struct {
	// ID is "<deploy_target>/<slug>", unique across the catalog
	ID string `json:"id"`

	// Slug is the bundle directory name
	Slug string `json:"slug"`

	// DeployTarget is where the bundle installs
	DeployTarget DeployTarget `json:"deploy_target"`

	// Title is a human-readable name, defaults to the slug
	Title string `json:"title"`

	// Description provides additional context
	Description string `json:"description,omitempty"`

	// Tags are free-form labels
	Tags []string `json:"tags,omitempty"`

	// Categories group related bundles
	Categories []string `json:"categories,omitempty"`

	// RoleIDs lists the member roles in inventory order
	RoleIDs []string `json:"role_ids"`
}
