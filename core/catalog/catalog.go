// Package catalog - Role and bundle catalog
// Loads roles and bundle inventories from a directory tree into an
// immutable snapshot. Text/status/target filtering stays with the
// caller: listing operations take a predicate, not query parameters.
package catalog

import (
	"sort"
	"strings"

	"catalog-cost/core/types"
)

// Catalog is an immutable snapshot of loaded roles and bundles.
// Lookups return pointers into the snapshot; callers must not mutate
// them. Replace the whole snapshot to change catalog contents.
type Catalog struct {
	roles   []types.Role
	bundles []types.Bundle

	roleIndex   map[string]int
	bundleIndex map[string]int
}

// New builds a snapshot. Roles and bundles are ordered by title then
// ID, case-insensitive, so listings are stable across reloads.
func New(roles []types.Role, bundles []types.Bundle) *Catalog {
	c := &Catalog{
		roles:       make([]types.Role, len(roles)),
		bundles:     make([]types.Bundle, len(bundles)),
		roleIndex:   make(map[string]int, len(roles)),
		bundleIndex: make(map[string]int, len(bundles)),
	}
	copy(c.roles, roles)
	copy(c.bundles, bundles)

	sort.Slice(c.roles, func(i, j int) bool {
		a, b := c.roles[i], c.roles[j]
		at, bt := strings.ToLower(a.Title), strings.ToLower(b.Title)
		if at != bt {
			return at < bt
		}
		return strings.ToLower(a.ID) < strings.ToLower(b.ID)
	})
	sort.Slice(c.bundles, func(i, j int) bool {
		a, b := c.bundles[i], c.bundles[j]
		at, bt := strings.ToLower(a.Title), strings.ToLower(b.Title)
		if at != bt {
			return at < bt
		}
		return strings.ToLower(a.ID) < strings.ToLower(b.ID)
	})

	for i := range c.roles {
		c.roleIndex[c.roles[i].ID] = i
	}
	for i := range c.bundles {
		c.bundleIndex[c.bundles[i].ID] = i
	}
	return c
}

// Role returns the role with the given ID
func (c *Catalog) Role(id string) (*types.Role, bool) {
	i, ok := c.roleIndex[strings.TrimSpace(id)]
	if !ok {
		return nil, false
	}
	return &c.roles[i], true
}

// Bundle returns the bundle with the given ID
func (c *Catalog) Bundle(id string) (*types.Bundle, bool) {
	i, ok := c.bundleIndex[strings.TrimSpace(id)]
	if !ok {
		return nil, false
	}
	return &c.bundles[i], true
}

// PlanIDs lists the plan IDs of a role's pricing document in document
// order, deduplicated across offerings. Roles priced implicitly have
// no plan options.
func (c *Catalog) PlanIDs(roleID string) []string {
	role, ok := c.Role(roleID)
	if !ok || role.Pricing == nil {
		return nil
	}
	if role.Summary != nil && role.Summary.Implicit {
		return nil
	}
	seen := make(map[string]struct{})
	var ids []string
	for _, offering := range role.Pricing.Offerings {
		for _, plan := range offering.Plans {
			if _, dup := seen[plan.ID]; dup {
				continue
			}
			seen[plan.ID] = struct{}{}
			ids = append(ids, plan.ID)
		}
	}
	return ids
}

// BundleRoles lists a bundle's member role IDs. The second return
// reports whether the ID names a bundle at all.
func (c *Catalog) BundleRoles(bundleID string) ([]string, bool) {
	bundle, ok := c.Bundle(bundleID)
	if !ok {
		return nil, false
	}
	return append([]string(nil), bundle.RoleIDs...), true
}

// Roles returns the roles matching pred in catalog order. A nil pred
// matches everything.
func (c *Catalog) Roles(pred func(*types.Role) bool) []types.Role {
	out := make([]types.Role, 0, len(c.roles))
	for i := range c.roles {
		if pred == nil || pred(&c.roles[i]) {
			out = append(out, c.roles[i])
		}
	}
	return out
}

// Bundles returns the bundles matching pred in catalog order. A nil
// pred matches everything.
func (c *Catalog) Bundles(pred func(*types.Bundle) bool) []types.Bundle {
	out := make([]types.Bundle, 0, len(c.bundles))
	for i := range c.bundles {
		if pred == nil || pred(&c.bundles[i]) {
			out = append(out, c.bundles[i])
		}
	}
	return out
}

// Stats returns catalog statistics
func (c *Catalog) Stats() Stats {
	stats := Stats{
		Roles:   len(c.roles),
		Bundles: len(c.bundles),
	}
	for i := range c.roles {
		role := &c.roles[i]
		if role.Summary != nil && role.Summary.Implicit {
			stats.ImplicitPricing++
		}
		if len(role.Warnings) > 0 {
			stats.WithWarnings++
		}
	}
	return stats
}

// Stats holds catalog statistics
type Stats struct {
	Roles           int `json:"roles"`
	Bundles         int `json:"bundles"`
	ImplicitPricing int `json:"implicit_pricing"`
	WithWarnings    int `json:"with_warnings"`
}
