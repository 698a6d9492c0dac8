// Package pricing - Document summaries
package pricing

import (
	"sort"

	"catalog-cost/core/types"
)

// BuildSummary condenses a normalized document into the shape catalog
// listings embed: counts, defaults, every currency and region the
// document mentions and flags for setup fees, minimum commits and
// contact-sales plans.
func BuildSummary(doc *types.PricingDocument, implicit bool) types.Summary {
	summary := types.Summary{
		Schema:            doc.Schema,
		Implicit:          implicit,
		DefaultOfferingID: doc.DefaultOfferingID,
		DefaultPlanID:     doc.DefaultPlanID,
		OfferingIDs:       []string{},
	}
	if summary.Schema == "" {
		summary.Schema = "v2"
	}
	if summary.DefaultOfferingID == "" {
		summary.DefaultOfferingID = DefaultOfferingID
	}
	if summary.DefaultPlanID == "" {
		summary.DefaultPlanID = DefaultPlanID
	}

	currencySet := map[types.Currency]struct{}{}
	regionSet := map[types.Region]struct{}{}

	for i := range doc.Offerings {
		offering := &doc.Offerings[i]
		summary.OfferingCount++
		if offering.ID != "" {
			summary.OfferingIDs = append(summary.OfferingIDs, offering.ID)
		}
		for j := range offering.Plans {
			plan := &offering.Plans[j]
			summary.PlanCount++
			if plan.SetupFee != nil {
				summary.HasSetupFee = true
			}
			if plan.MinimumCommit != nil {
				summary.HasMinimumCommit = true
			}
			if plan.Pricing.Type == types.BlockCustom {
				summary.HasCustomPricing = true
			}
			visitPlanPoints(plan, func(point types.PricePoint) {
				for currency := range point.Prices {
					if currency.IsValid() {
						currencySet[currency] = struct{}{}
					}
				}
				for region, currencies := range point.RegionalPrices {
					if region.IsValid() {
						regionSet[region] = struct{}{}
					}
					for currency := range currencies {
						if currency.IsValid() {
							currencySet[currency] = struct{}{}
						}
					}
				}
			})
		}
	}

	for currency := range currencySet {
		summary.Currencies = append(summary.Currencies, currency)
	}
	if len(summary.Currencies) == 0 {
		summary.Currencies = []types.Currency{types.CurrencyEUR}
	}
	sort.Slice(summary.Currencies, func(i, j int) bool {
		return summary.Currencies[i] < summary.Currencies[j]
	})

	if len(regionSet) == 0 {
		regionSet[types.RegionGlobal] = struct{}{}
	}
	for region := range regionSet {
		summary.Regions = append(summary.Regions, region)
	}
	sort.Slice(summary.Regions, func(i, j int) bool {
		return summary.Regions[i] < summary.Regions[j]
	})

	return summary
}
