// Package pricing - Offering and plan selection
package pricing

import "catalog-cost/core/types"

// SelectOffering picks which offering a pricing control should show.
// Offerings that price the active plan are preferred; when none do,
// the full list is considered instead. Within the candidates the
// last explicitly chosen offering wins, then the document default,
// then the first candidate. Returns nil only for an empty list.
func SelectOffering(offerings []types.Offering, activePlanID, lastChosenID, preferredID string) *types.Offering {
	if len(offerings) == 0 {
		return nil
	}

	candidates := offerings
	if activePlanID != "" {
		filtered := make([]types.Offering, 0, len(offerings))
		for _, offering := range offerings {
			if _, ok := offering.Plan(activePlanID); ok {
				filtered = append(filtered, offering)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}

	if lastChosenID != "" {
		for i := range candidates {
			if candidates[i].ID == lastChosenID {
				return &candidates[i]
			}
		}
	}
	if preferredID != "" {
		for i := range candidates {
			if candidates[i].ID == preferredID {
				return &candidates[i]
			}
		}
	}
	return &candidates[0]
}

// SelectPlan picks the plan matching the active plan ID, falling back
// to the offering's first plan when the offering does not price it.
// Returns nil only for an offering without plans.
func SelectPlan(offering *types.Offering, activePlanID string) *types.Plan {
	if offering == nil || len(offering.Plans) == 0 {
		return nil
	}
	if activePlanID != "" {
		if plan, ok := offering.Plan(activePlanID); ok {
			return plan
		}
	}
	return &offering.Plans[0]
}
