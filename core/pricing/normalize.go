// Package pricing implements declarative pricing documents: schema
// validation, input resolution, offering selection and quote
// evaluation. Documents follow schema v2 (offerings containing plans,
// plans carrying pricing blocks and input specs).
package pricing

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"catalog-cost/core/types"
	"catalog-cost/internal/errors"
)

// DefaultOfferingID names the offering synthesized for roles
// without a pricing document.
const DefaultOfferingID = "default"

// DefaultPlanID names the plan synthesized for roles without a
// pricing document.
const DefaultPlanID = "community"

func validationf(format string, args ...interface{}) *errors.Error {
	return errors.Newf(errors.TypeValidation, format, args...)
}

func asMapping(value interface{}) map[string]interface{} {
	if m, ok := value.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

func asList(value interface{}) []interface{} {
	if l, ok := value.([]interface{}); ok {
		return l
	}
	return nil
}

func asString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// toNumber coerces a raw value to a non-negative decimal.
func toNumber(value interface{}, field string) (decimal.Decimal, error) {
	var number decimal.Decimal
	switch v := value.(type) {
	case decimal.Decimal:
		number = v
	case int:
		number = decimal.NewFromInt(int64(v))
	case int64:
		number = decimal.NewFromInt(v)
	case uint64:
		number = decimal.NewFromUint64(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, validationf("%s must be numeric", field)
		}
		number = decimal.NewFromFloat(v)
	case float32:
		return toNumber(float64(v), field)
	case bool:
		if v {
			number = decimal.NewFromInt(1)
		} else {
			number = decimal.Zero
		}
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, validationf("%s must be numeric", field)
		}
		number = parsed
	default:
		return decimal.Zero, validationf("%s must be numeric", field)
	}
	if number.IsNegative() {
		return decimal.Zero, validationf("%s must be >= 0", field)
	}
	return number, nil
}

func normalizeCurrencyMap(raw interface{}, field string) (map[types.Currency]decimal.Decimal, error) {
	node := asMapping(raw)
	if len(node) == 0 {
		return nil, validationf("%s must not be empty", field)
	}
	out := make(map[types.Currency]decimal.Decimal, len(node))
	for codeRaw, amountRaw := range node {
		code := types.Currency(strings.ToUpper(asString(codeRaw)))
		if !code.IsValid() {
			return nil, validationf("%s has invalid currency '%s'", field, codeRaw)
		}
		amount, err := toNumber(amountRaw, fmt.Sprintf("%s.%s", field, code))
		if err != nil {
			return nil, err
		}
		out[code] = amount
	}
	return out, nil
}

func normalizePricePoint(raw map[string]interface{}, field string) (types.PricePoint, error) {
	var point types.PricePoint
	pricesRaw, hasPrices := raw["prices"]
	regionalRaw, hasRegional := raw["regional_prices"]
	if !hasPrices && !hasRegional {
		return point, validationf("%s requires prices or regional_prices", field)
	}

	if hasPrices {
		prices, err := normalizeCurrencyMap(pricesRaw, field+".prices")
		if err != nil {
			return point, err
		}
		point.Prices = prices
	}
	if hasRegional {
		regional := asMapping(regionalRaw)
		if len(regional) == 0 {
			return point, validationf("%s.regional_prices must not be empty", field)
		}
		point.RegionalPrices = make(map[types.Region]map[types.Currency]decimal.Decimal, len(regional))
		for regionRaw, cmap := range regional {
			region := types.Region(strings.ToLower(asString(regionRaw)))
			if !region.IsValid() {
				return point, validationf("%s.regional_prices has invalid region '%s'", field, regionRaw)
			}
			currencies, err := normalizeCurrencyMap(cmap, fmt.Sprintf("%s.regional_prices.%s", field, region))
			if err != nil {
				return point, err
			}
			point.RegionalPrices[region] = currencies
		}
	}
	return point, nil
}

func normalizeInterval(raw interface{}, field string, fallback types.Interval) (types.Interval, error) {
	interval := types.Interval(strings.ToLower(asString(raw)))
	if interval == "" {
		interval = fallback
	}
	if !interval.IsValid() {
		return "", validationf("%s has invalid interval '%s'", field, interval)
	}
	return interval, nil
}

func normalizeInputSpec(raw interface{}, field string) (types.InputSpec, error) {
	spec := asMapping(raw)
	inputID := asString(spec["id"])
	if inputID == "" {
		return types.InputSpec{}, validationf("%s.id is required", field)
	}
	inputType := types.InputType(strings.ToLower(asString(spec["type"])))
	if inputType == "" {
		inputType = types.InputNumber
	}
	if !inputType.IsValid() {
		return types.InputSpec{}, validationf("%s.%s has invalid type '%s'", field, inputID, inputType)
	}
	defaultRaw, hasDefault := spec["default"]
	if !hasDefault {
		return types.InputSpec{}, validationf("%s.%s requires a default", field, inputID)
	}

	out := types.InputSpec{
		ID:          inputID,
		Type:        inputType,
		Label:       asString(spec["label"]),
		Description: asString(spec["description"]),
	}
	if out.Label == "" {
		out.Label = inputID
	}
	for _, item := range asList(spec["applies_to"]) {
		if planID := asString(item); planID != "" {
			out.AppliesTo = append(out.AppliesTo, planID)
		}
	}

	switch inputType {
	case types.InputNumber:
		def, err := toNumber(defaultRaw, fmt.Sprintf("%s.%s.default", field, inputID))
		if err != nil {
			return types.InputSpec{}, err
		}
		out.Default = def
		if minRaw, ok := spec["min"]; ok && minRaw != nil {
			minValue, err := toNumber(minRaw, fmt.Sprintf("%s.%s.min", field, inputID))
			if err != nil {
				return types.InputSpec{}, err
			}
			out.Min = &minValue
		}
		if maxRaw, ok := spec["max"]; ok && maxRaw != nil {
			maxValue, err := toNumber(maxRaw, fmt.Sprintf("%s.%s.max", field, inputID))
			if err != nil {
				return types.InputSpec{}, err
			}
			out.Max = &maxValue
		}
		if out.Min != nil && out.Max != nil && out.Min.GreaterThan(*out.Max) {
			return types.InputSpec{}, validationf("%s.%s has min > max", field, inputID)
		}
	case types.InputBoolean:
		out.Default = truthy(defaultRaw)
	default:
		for _, item := range asList(spec["options"]) {
			if option := asString(item); option != "" {
				out.Options = append(out.Options, option)
			}
		}
		if len(out.Options) == 0 {
			return types.InputSpec{}, validationf("%s.%s.options must not be empty", field, inputID)
		}
		def := asString(defaultRaw)
		if !containsString(out.Options, def) {
			return types.InputSpec{}, validationf("%s.%s.default must be one of options", field, inputID)
		}
		out.Default = def
	}
	return out, nil
}

func normalizeBands(raw interface{}, field string) ([]types.PriceBand, error) {
	entries := asList(raw)
	if len(entries) == 0 {
		return nil, validationf("%s must not be empty", field)
	}
	out := make([]types.PriceBand, 0, len(entries))
	for index, entryRaw := range entries {
		entry := asMapping(entryRaw)
		band := types.PriceBand{}
		if upToRaw, ok := entry["up_to"]; ok && upToRaw != nil {
			upTo, err := toNumber(upToRaw, fmt.Sprintf("%s[%d].up_to", field, index))
			if err != nil {
				return nil, err
			}
			band.UpTo = &upTo
		}
		point, err := normalizePricePoint(entry, fmt.Sprintf("%s[%d]", field, index))
		if err != nil {
			return nil, err
		}
		band.PricePoint = point
		out = append(out, band)
	}
	return out, nil
}

// normalizeBlock validates and types a raw pricing block. The field
// argument names the block's position for error messages.
func normalizeBlock(raw interface{}, field string) (types.PricingBlock, error) {
	block := asMapping(raw)
	if len(block) == 0 {
		return types.PricingBlock{}, validationf("%s must be a mapping", field)
	}

	blockType := types.BlockType(strings.ToLower(asString(block["type"])))
	if blockType == "" {
		blockType = types.BlockFixed
	}
	interval, err := normalizeInterval(block["interval"], field+".interval", types.IntervalMonth)
	if err != nil {
		return types.PricingBlock{}, err
	}

	out := types.PricingBlock{
		Type:     blockType,
		Interval: interval,
		Unit:     asString(block["unit"]),
		InputID:  asString(block["input_id"]),
		Default:  block["default"],
	}

	switch {
	case blockType.IsPointPriced():
		point, err := normalizePricePoint(block, field)
		if err != nil {
			return types.PricingBlock{}, err
		}
		out.PricePoint = point

	case blockType == types.BlockTieredPerUnit:
		tiers, err := normalizeBands(block["tiers"], field+".tiers")
		if err != nil {
			return types.PricingBlock{}, err
		}
		out.Tiers = tiers

	case blockType == types.BlockVolumePerUnit:
		bands, err := normalizeBands(block["bands"], field+".bands")
		if err != nil {
			return types.PricingBlock{}, err
		}
		out.Bands = bands

	case blockType == types.BlockBundle:
		baseRaw := asMapping(block["base"])
		if len(baseRaw) == 0 {
			return types.PricingBlock{}, validationf("%s.base is required", field)
		}
		base, err := normalizePricePoint(baseRaw, field+".base")
		if err != nil {
			return types.PricingBlock{}, err
		}
		out.Base = &base

		includedRaw := asMapping(block["included_units"])
		if len(includedRaw) == 0 {
			return types.PricingBlock{}, validationf("%s.included_units is required", field)
		}
		out.IncludedUnits = make(map[string]decimal.Decimal, len(includedRaw))
		for key, value := range includedRaw {
			unit := asString(key)
			if unit == "" {
				continue
			}
			quantity, err := toNumber(value, fmt.Sprintf("%s.included_units.%s", field, unit))
			if err != nil {
				return types.PricingBlock{}, err
			}
			out.IncludedUnits[unit] = quantity
		}
		if len(out.IncludedUnits) == 0 {
			return types.PricingBlock{}, validationf("%s.included_units must not be empty", field)
		}

		overage, err := normalizeBlock(block["overage"], field+".overage")
		if err != nil {
			return types.PricingBlock{}, err
		}
		switch overage.Type {
		case types.BlockPerUnit, types.BlockTieredPerUnit, types.BlockVolumePerUnit:
		default:
			return types.PricingBlock{}, validationf(
				"%s.overage.type must be per_unit, tiered_per_unit or volume_per_unit", field)
		}
		out.Overage = &overage

	case blockType == types.BlockFactor:
		valuesRaw := asMapping(block["values"])
		if len(valuesRaw) == 0 {
			return types.PricingBlock{}, validationf("%s.values is required", field)
		}
		out.Values = make(map[string]decimal.Decimal, len(valuesRaw))
		for key, value := range valuesRaw {
			option := asString(key)
			if option == "" {
				continue
			}
			multiplier, err := toNumber(value, fmt.Sprintf("%s.values.%s", field, option))
			if err != nil {
				return types.PricingBlock{}, err
			}
			out.Values[option] = multiplier
		}
		if len(out.Values) == 0 {
			return types.PricingBlock{}, validationf("%s.values must not be empty", field)
		}

	case blockType == types.BlockCustom:
		// Contact sales flow: no numeric price required.

	default:
		return types.PricingBlock{}, validationf("%s.type '%s' is not supported", field, blockType)
	}

	return out, nil
}

// NormalizeDocument validates a raw schema v2 pricing document and
// returns its typed form. All amounts become decimals, IDs and labels
// are trimmed and every structural rule is enforced here so later
// stages can assume a well-formed document.
func NormalizeDocument(doc map[string]interface{}) (*types.PricingDocument, error) {
	if strings.ToLower(asString(doc["schema"])) != "v2" {
		return nil, validationf("schema must be v2")
	}

	normalized := &types.PricingDocument{
		Schema:            "v2",
		DefaultOfferingID: asString(doc["default_offering_id"]),
		DefaultPlanID:     asString(doc["default_plan_id"]),
	}
	if normalized.DefaultOfferingID == "" {
		normalized.DefaultOfferingID = DefaultOfferingID
	}
	if normalized.DefaultPlanID == "" {
		normalized.DefaultPlanID = DefaultPlanID
	}

	for _, item := range asList(doc["inputs"]) {
		spec, err := normalizeInputSpec(item, "inputs")
		if err != nil {
			return nil, err
		}
		normalized.Inputs = append(normalized.Inputs, spec)
	}

	offeringsRaw := asList(doc["offerings"])
	if len(offeringsRaw) == 0 {
		return nil, validationf("offerings must not be empty")
	}

	for offeringIndex, offeringRaw := range offeringsRaw {
		offeringMap := asMapping(offeringRaw)
		offeringID := asString(offeringMap["id"])
		if offeringID == "" {
			return nil, validationf("offerings[%d].id is required", offeringIndex)
		}

		plansRaw := asList(offeringMap["plans"])
		if len(plansRaw) == 0 {
			return nil, validationf("offerings[%d].plans must not be empty", offeringIndex)
		}

		offering := types.Offering{
			ID:          offeringID,
			Label:       asString(offeringMap["label"]),
			Provider:    asString(offeringMap["provider"]),
			Description: asString(offeringMap["description"]),
		}
		if offering.Label == "" {
			offering.Label = offeringID
		}
		if offering.Provider == "" {
			offering.Provider = "generic"
		}
		for _, item := range asList(offeringMap["inputs"]) {
			spec, err := normalizeInputSpec(item, fmt.Sprintf("offerings[%d].inputs", offeringIndex))
			if err != nil {
				return nil, err
			}
			offering.Inputs = append(offering.Inputs, spec)
		}

		for planIndex, planRaw := range plansRaw {
			planMap := asMapping(planRaw)
			planID := asString(planMap["id"])
			if planID == "" {
				return nil, validationf("offerings[%d].plans[%d].id is required", offeringIndex, planIndex)
			}

			planField := fmt.Sprintf("offerings[%d].plans[%d]", offeringIndex, planIndex)
			pricingBlock, err := normalizeBlock(planMap["pricing"], planField+".pricing")
			if err != nil {
				return nil, err
			}

			plan := types.Plan{
				ID:          planID,
				Label:       asString(planMap["label"]),
				Description: asString(planMap["description"]),
				Pricing:     pricingBlock,
			}
			if plan.Label == "" {
				plan.Label = planID
			}
			for _, item := range asList(planMap["inputs"]) {
				spec, err := normalizeInputSpec(item, planField+".inputs")
				if err != nil {
					return nil, err
				}
				plan.Inputs = append(plan.Inputs, spec)
			}

			for addonIndex, addonRaw := range asList(planMap["addons"]) {
				addon := asMapping(addonRaw)
				addonID := asString(addon["id"])
				if addonID == "" {
					return nil, validationf("%s.addons[%d].id is required", planField, addonIndex)
				}
				addonBlock, err := normalizeBlock(addon, fmt.Sprintf("%s.addons[%d]", planField, addonIndex))
				if err != nil {
					return nil, err
				}
				if !addonBlock.Type.IsPointPriced() {
					return nil, validationf("%s.addons[%d] must be fixed/per_unit", planField, addonIndex)
				}
				addonBlock.ID = addonID
				addonBlock.Label = asString(addon["label"])
				if addonBlock.Label == "" {
					addonBlock.Label = addonID
				}
				plan.Addons = append(plan.Addons, addonBlock)
			}

			for factorIndex, factorRaw := range asList(planMap["factors"]) {
				factor, err := normalizeBlock(factorRaw, fmt.Sprintf("%s.factors[%d]", planField, factorIndex))
				if err != nil {
					return nil, err
				}
				if factor.Type != types.BlockFactor {
					return nil, validationf("%s.factors[%d] must be factor", planField, factorIndex)
				}
				plan.Factors = append(plan.Factors, factor)
			}

			if setupRaw, ok := planMap["setup_fee"].(map[string]interface{}); ok {
				setupFee, err := normalizeBlock(setupRaw, planField+".setup_fee")
				if err != nil {
					return nil, err
				}
				setupFee.Interval = types.IntervalOnce
				plan.SetupFee = &setupFee
			}

			if commitRaw, ok := planMap["minimum_commit"].(map[string]interface{}); ok {
				commit, err := normalizeBlock(commitRaw, planField+".minimum_commit")
				if err != nil {
					return nil, err
				}
				if !commit.Type.IsPointPriced() {
					return nil, validationf("minimum_commit must define a fixed-like price point")
				}
				plan.MinimumCommit = &commit
			}

			offering.Plans = append(offering.Plans, plan)
		}

		normalized.Offerings = append(normalized.Offerings, offering)
	}

	return normalized, nil
}

// ImplicitDocument builds the fallback document used for roles that
// ship no pricing file: a single per-user community plan at one euro.
func ImplicitDocument(roleID string) *types.PricingDocument {
	one := decimal.NewFromInt(1)
	return &types.PricingDocument{
		Schema:            "v2",
		DefaultOfferingID: DefaultOfferingID,
		DefaultPlanID:     DefaultPlanID,
		Inputs: []types.InputSpec{
			{
				ID:      "users",
				Type:    types.InputNumber,
				Label:   "Users",
				Default: one,
				Min:     &one,
			},
		},
		Offerings: []types.Offering{
			{
				ID:       DefaultOfferingID,
				Label:    "Default",
				Provider: "generic",
				Plans: []types.Plan{
					{
						ID:          DefaultPlanID,
						Label:       "Community",
						Description: fmt.Sprintf("Default community plan for %s", roleID),
						Pricing: types.PricingBlock{
							Type:     types.BlockPerUnit,
							Interval: types.IntervalMonth,
							Unit:     "users",
							PricePoint: types.PricePoint{
								Prices: map[types.Currency]decimal.Decimal{
									types.CurrencyEUR: decimal.NewFromInt(1),
								},
							},
						},
					},
				},
			},
		},
	}
}

func containsString(list []string, wanted string) bool {
	for _, item := range list {
		if item == wanted {
			return true
		}
	}
	return false
}
