// Package pricing - Quote evaluation
package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"catalog-cost/core/types"
)

const (
	overageUnitsKey = "__overage_units__"
	addonQtyKey     = "__addon_qty__"
)

// blockResult is the outcome of evaluating a single pricing block.
type blockResult struct {
	Custom   bool
	Interval types.Interval
	Amount   decimal.Decimal
	Base     decimal.Decimal
	Usage    decimal.Decimal
	Notes    []string
}

// resolveAmount picks the amount for the requested currency from a
// price point. Regional prices take precedence and require a region
// the point actually covers.
func resolveAmount(point types.PricePoint, currency types.Currency, region types.Region, field string) (decimal.Decimal, error) {
	curr := types.Currency(strings.ToUpper(strings.TrimSpace(string(currency))))
	if !curr.IsValid() {
		return decimal.Zero, validationf("currency must be an ISO 4217 code")
	}

	if point.HasRegional() {
		wanted := types.Region(strings.ToLower(strings.TrimSpace(string(region))))
		if wanted == "" {
			return decimal.Zero, validationf("%s requires region", field)
		}
		currencies, ok := point.RegionalPrices[wanted]
		if !ok {
			return decimal.Zero, validationf("%s does not support region '%s'", field, wanted)
		}
		amount, ok := currencies[curr]
		if !ok {
			return decimal.Zero, validationf("%s does not support currency '%s' in region '%s'", field, curr, wanted)
		}
		return amount, nil
	}

	amount, ok := point.Prices[curr]
	if !ok {
		return decimal.Zero, validationf("%s does not support currency '%s'", field, curr)
	}
	return amount, nil
}

// unitsValue reads the quantity driving a per-unit style block from
// the resolved inputs, defaulting to the "users" input.
func unitsValue(block types.PricingBlock, inputs map[string]interface{}) (decimal.Decimal, error) {
	inputID := block.InputID
	if inputID == "" {
		inputID = block.Unit
	}
	if inputID == "" {
		inputID = "users"
	}
	value, ok := inputs[inputID]
	if !ok {
		value = 0
	}
	return toNumber(value, fmt.Sprintf("inputs.%s", inputID))
}

// progressiveTiers prices a quantity across consecutive tiers, each
// tier charging its own rate for the units it covers.
func progressiveTiers(qty decimal.Decimal, tiers []types.PriceBand, currency types.Currency, region types.Region, field string) (decimal.Decimal, error) {
	remaining := qty
	lowerBound := decimal.Zero
	total := decimal.Zero
	for index, tier := range tiers {
		if !remaining.IsPositive() {
			break
		}

		maxInTier := remaining
		if tier.UpTo != nil {
			tierCap := decimal.Max(tier.UpTo.Sub(lowerBound), decimal.Zero)
			maxInTier = decimal.Min(maxInTier, tierCap)
		}
		if !maxInTier.IsPositive() {
			if tier.UpTo != nil && !tier.UpTo.IsZero() {
				lowerBound = *tier.UpTo
			}
			continue
		}

		unitPrice, err := resolveAmount(tier.PricePoint, currency, region, fmt.Sprintf("%s[%d]", field, index))
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(maxInTier.Mul(unitPrice))
		remaining = remaining.Sub(maxInTier)
		if tier.UpTo == nil {
			break
		}
		lowerBound = *tier.UpTo
	}
	return total, nil
}

// volumeBands prices the whole quantity at the rate of the first band
// large enough to contain it.
func volumeBands(qty decimal.Decimal, bands []types.PriceBand, currency types.Currency, region types.Region, field string) (decimal.Decimal, error) {
	for index, band := range bands {
		if band.UpTo == nil || qty.LessThanOrEqual(*band.UpTo) {
			unitPrice, err := resolveAmount(band.PricePoint, currency, region, fmt.Sprintf("%s[%d]", field, index))
			if err != nil {
				return decimal.Zero, err
			}
			return qty.Mul(unitPrice), nil
		}
	}
	return decimal.Zero, validationf("%s has no matching volume band", field)
}

func evaluateBlock(block types.PricingBlock, inputs map[string]interface{}, currency types.Currency, region types.Region, field string) (blockResult, error) {
	blockType := block.Type
	if blockType == "" {
		blockType = types.BlockFixed
	}
	interval := block.Interval
	if interval == "" {
		interval = types.IntervalMonth
	}

	switch blockType {
	case types.BlockCustom:
		return blockResult{
			Custom:   true,
			Interval: interval,
			Notes:    []string{"Contact sales for this plan."},
		}, nil

	case types.BlockFixed, types.BlockAddon:
		amount, err := resolveAmount(block.PricePoint, currency, region, field)
		if err != nil {
			return blockResult{}, err
		}
		return blockResult{Interval: interval, Amount: amount, Base: amount}, nil

	case types.BlockPerUnit:
		quantity, err := unitsValue(block, inputs)
		if err != nil {
			return blockResult{}, err
		}
		unitPrice, err := resolveAmount(block.PricePoint, currency, region, field)
		if err != nil {
			return blockResult{}, err
		}
		usage := quantity.Mul(unitPrice)
		return blockResult{Interval: interval, Amount: usage, Usage: usage}, nil

	case types.BlockTieredPerUnit:
		quantity, err := unitsValue(block, inputs)
		if err != nil {
			return blockResult{}, err
		}
		usage, err := progressiveTiers(quantity, block.Tiers, currency, region, field+".tiers")
		if err != nil {
			return blockResult{}, err
		}
		return blockResult{Interval: interval, Amount: usage, Usage: usage}, nil

	case types.BlockVolumePerUnit:
		quantity, err := unitsValue(block, inputs)
		if err != nil {
			return blockResult{}, err
		}
		usage, err := volumeBands(quantity, block.Bands, currency, region, field+".bands")
		if err != nil {
			return blockResult{}, err
		}
		return blockResult{Interval: interval, Amount: usage, Usage: usage}, nil

	case types.BlockBundle:
		var basePoint types.PricePoint
		if block.Base != nil {
			basePoint = *block.Base
		}
		baseAmount, err := resolveAmount(basePoint, currency, region, field+".base")
		if err != nil {
			return blockResult{}, err
		}

		unitKey := ""
		if block.Overage != nil {
			unitKey = block.Overage.Unit
			if unitKey == "" {
				unitKey = block.Overage.InputID
			}
		}
		if unitKey == "" {
			unitKey = firstIncludedUnit(block.IncludedUnits)
		}

		value, ok := inputs[unitKey]
		if !ok {
			value = 0
		}
		quantity, err := toNumber(value, fmt.Sprintf("inputs.%s", unitKey))
		if err != nil {
			return blockResult{}, err
		}
		included := block.IncludedUnits[unitKey]
		overageQty := decimal.Max(decimal.Zero, quantity.Sub(included))

		usage := decimal.Zero
		if overageQty.IsPositive() && block.Overage != nil {
			overage := *block.Overage
			overage.InputID = overageUnitsKey
			usageInputs := copyInputs(inputs)
			usageInputs[overageUnitsKey] = overageQty
			nested, err := evaluateBlock(overage, usageInputs, currency, region, field+".overage")
			if err != nil {
				return blockResult{}, err
			}
			if nested.Custom {
				return blockResult{}, validationf("%s.overage cannot be custom", field)
			}
			usage = nested.Amount
		}

		return blockResult{
			Interval: interval,
			Amount:   baseAmount.Add(usage),
			Base:     baseAmount,
			Usage:    usage,
		}, nil
	}

	return blockResult{}, validationf("%s.type '%s' is not supported", field, blockType)
}

func firstIncludedUnit(included map[string]decimal.Decimal) string {
	if len(included) == 0 {
		return "users"
	}
	first := ""
	for key := range included {
		if first == "" || key < first {
			first = key
		}
	}
	return first
}

func copyInputs(inputs map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(inputs)+1)
	for key, value := range inputs {
		out[key] = value
	}
	return out
}

func visitBlockPoints(block *types.PricingBlock, fn func(types.PricePoint)) {
	if block == nil {
		return
	}
	fn(block.PricePoint)
	for i := range block.Tiers {
		fn(block.Tiers[i].PricePoint)
	}
	for i := range block.Bands {
		fn(block.Bands[i].PricePoint)
	}
	if block.Base != nil {
		fn(*block.Base)
	}
	visitBlockPoints(block.Overage, fn)
}

func visitPlanPoints(plan *types.Plan, fn func(types.PricePoint)) {
	visitBlockPoints(&plan.Pricing, fn)
	for i := range plan.Addons {
		visitBlockPoints(&plan.Addons[i], fn)
	}
	for i := range plan.Factors {
		visitBlockPoints(&plan.Factors[i], fn)
	}
	visitBlockPoints(plan.SetupFee, fn)
	visitBlockPoints(plan.MinimumCommit, fn)
}

func planHasRegionalPrices(plan *types.Plan) bool {
	found := false
	visitPlanPoints(plan, func(point types.PricePoint) {
		if point.HasRegional() {
			found = true
		}
	})
	return found
}

func round4(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(4)
}

// EvaluateQuote prices a plan against caller inputs. The document
// must be normalized. Validation failures, unknown offerings or
// plans and unsupported currency or region combinations return
// VALIDATION_ERROR; the caller decides how to surface them.
func EvaluateQuote(doc *types.PricingDocument, offeringID, planID string, inputs map[string]interface{}, currency types.Currency, region types.Region, includeSetupFee bool) (*types.Quote, error) {
	offering, ok := doc.Offering(strings.TrimSpace(offeringID))
	if !ok {
		return nil, validationf("offering '%s' not found", strings.TrimSpace(offeringID))
	}
	plan, ok := offering.Plan(strings.TrimSpace(planID))
	if !ok {
		return nil, validationf("plan '%s' not found", strings.TrimSpace(planID))
	}

	given := types.Region(strings.ToLower(strings.TrimSpace(string(region))))
	normalizedRegion := given
	if normalizedRegion == "" {
		normalizedRegion = types.RegionGlobal
	}
	if planHasRegionalPrices(plan) && given == "" {
		return nil, validationf("region is required for region-specific pricing")
	}
	if !normalizedRegion.IsValid() {
		return nil, validationf("region '%s' is not supported", normalizedRegion)
	}

	specs := ResolveInputSpecs(doc, offering, plan)
	resolved, err := ResolveInputs(specs, inputs)
	if err != nil {
		return nil, err
	}

	curr := types.Currency(strings.ToUpper(strings.TrimSpace(string(currency))))
	main, err := evaluateBlock(plan.Pricing, resolved, currency, normalizedRegion, "pricing")
	if err != nil {
		return nil, err
	}

	if main.Custom {
		notes := main.Notes
		if len(notes) == 0 {
			notes = []string{"Contact sales"}
		}
		return &types.Quote{
			Total:        nil,
			Currency:     curr,
			Region:       normalizedRegion,
			Interval:     main.Interval,
			Breakdown:    types.Breakdown{},
			Notes:        notes,
			Inputs:       resolved,
			ContactSales: true,
		}, nil
	}

	base := main.Base
	usage := main.Usage
	subtotal := main.Amount
	addonsTotal := decimal.Zero
	factorsDelta := decimal.Zero
	notes := []string{}

	for index, addon := range plan.Addons {
		addonInput := addon.InputID
		if addonInput == "" {
			addonInput = addon.ID
		}
		if addonInput == "" {
			addonInput = fmt.Sprintf("addon_%d", index)
		}

		rawValue, ok := resolved[addonInput]
		if !ok {
			if addon.Default != nil {
				rawValue = addon.Default
			} else {
				rawValue = false
			}
		}
		var quantity decimal.Decimal
		if flag, isBool := rawValue.(bool); isBool {
			if flag {
				quantity = decimal.NewFromInt(1)
			}
		} else {
			quantity, err = toNumber(rawValue, fmt.Sprintf("inputs.%s", addonInput))
			if err != nil {
				return nil, err
			}
		}
		if !quantity.IsPositive() {
			continue
		}

		field := fmt.Sprintf("addons[%d]", index)
		var addonAmount decimal.Decimal
		if addon.Type == types.BlockFixed {
			amount, err := resolveAmount(addon.PricePoint, currency, normalizedRegion, field)
			if err != nil {
				return nil, err
			}
			addonAmount = amount.Mul(quantity)
		} else {
			block := addon
			block.InputID = addonQtyKey
			addonInputs := copyInputs(resolved)
			addonInputs[addonQtyKey] = quantity
			nested, err := evaluateBlock(block, addonInputs, currency, normalizedRegion, field)
			if err != nil {
				return nil, err
			}
			addonAmount = nested.Amount
		}

		addonsTotal = addonsTotal.Add(addonAmount)
		subtotal = subtotal.Add(addonAmount)
	}

	for _, factor := range plan.Factors {
		if factor.InputID == "" {
			continue
		}
		optionRaw, ok := resolved[factor.InputID]
		if !ok {
			optionRaw = factor.Default
		}
		option := asString(optionRaw)
		multiplier, ok := factor.Values[option]
		if !ok {
			return nil, validationf("factor '%s' does not support value '%s'", factor.InputID, option)
		}
		nextSubtotal := subtotal.Mul(multiplier)
		factorsDelta = factorsDelta.Add(nextSubtotal.Sub(subtotal))
		subtotal = nextSubtotal
	}

	commit := types.MinimumCommit{Applied: false, Delta: decimal.Zero}
	if plan.MinimumCommit != nil {
		minimumAmount, err := resolveAmount(plan.MinimumCommit.PricePoint, currency, normalizedRegion, "minimum_commit")
		if err != nil {
			return nil, err
		}
		if subtotal.LessThan(minimumAmount) {
			commit = types.MinimumCommit{Applied: true, Delta: minimumAmount.Sub(subtotal)}
			subtotal = minimumAmount
			notes = append(notes, "Minimum spend applied.")
		}
	}

	setupFeeAmount := decimal.Zero
	if includeSetupFee && plan.SetupFee != nil {
		setupFeeAmount, err = resolveAmount(plan.SetupFee.PricePoint, currency, normalizedRegion, "setup_fee")
		if err != nil {
			return nil, err
		}
	}

	total := round4(subtotal.Add(setupFeeAmount))
	return &types.Quote{
		Total:    &total,
		Currency: curr,
		Region:   normalizedRegion,
		Interval: main.Interval,
		Breakdown: types.Breakdown{
			Base:     round4(base),
			Usage:    round4(usage),
			Addons:   round4(addonsTotal),
			Factors:  round4(factorsDelta),
			SetupFee: round4(setupFeeAmount),
			MinimumCommit: types.MinimumCommit{
				Applied: commit.Applied,
				Delta:   round4(commit.Delta),
			},
		},
		Notes:        notes,
		Inputs:       resolved,
		ContactSales: false,
	}, nil
}
