// Package pricing - Input spec resolution and validation
package pricing

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"catalog-cost/core/types"
)

// ResolveInputSpecs merges document, offering and plan input specs in
// precedence order. A later source replaces an earlier spec with the
// same ID wholesale while keeping its original position, so the result
// order is the insertion order of first definition. Specs whose
// applies_to names other plans are skipped.
func ResolveInputSpecs(doc *types.PricingDocument, offering *types.Offering, plan *types.Plan) []types.InputSpec {
	specs := make([]types.InputSpec, 0, 8)
	byID := make(map[string]int)

	putMany := func(items []types.InputSpec) {
		for _, spec := range items {
			if spec.ID == "" {
				continue
			}
			if len(spec.AppliesTo) > 0 && !containsString(spec.AppliesTo, plan.ID) {
				continue
			}
			if at, ok := byID[spec.ID]; ok {
				specs[at] = spec
				continue
			}
			byID[spec.ID] = len(specs)
			specs = append(specs, spec)
		}
	}

	if doc != nil {
		putMany(doc.Inputs)
	}
	if offering != nil {
		putMany(offering.Inputs)
	}
	putMany(plan.Inputs)
	return specs
}

// truthy applies loose boolean coercion: nil, false, zero and the
// empty string are false, everything else is true.
func truthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case decimal.Decimal:
		return !v.IsZero()
	default:
		return true
	}
}

// parseNumber coerces a raw value to a finite decimal. Unlike
// toNumber it accepts negative values; range rules come from the
// spec's min and max alone.
func parseNumber(value interface{}) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(v), true
	case bool:
		if v {
			return decimal.NewFromInt(1), true
		}
		return decimal.Zero, true
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, false
		}
		return parsed, true
	default:
		return decimal.Zero, false
	}
}

func isBlank(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// ValidateInputs checks raw values against specs in spec order and
// stops at the first failure. The returned map holds every value
// validated before the failure; callers must not quote while the
// error is non-nil. Boolean specs coerce and never fail. Failures
// are worded by label for direct display next to the input.
func ValidateInputs(specs []types.InputSpec, raw map[string]interface{}) (map[string]interface{}, error) {
	values := make(map[string]interface{}, len(specs))
	for _, spec := range specs {
		value, given := raw[spec.ID]

		switch spec.Type {
		case types.InputBoolean:
			if !given {
				value = spec.Default
			}
			values[spec.ID] = truthy(value)

		case types.InputEnum:
			if !given || isBlank(value) {
				value = spec.Default
			}
			text := strings.TrimSpace(asString(value))
			if !containsString(spec.Options, text) {
				return values, validationf("Invalid value for %s.", spec.Label)
			}
			values[spec.ID] = text

		default:
			if !given || isBlank(value) {
				value = spec.Default
			}
			number, ok := parseNumber(value)
			if !ok {
				return values, validationf("Invalid number for %s.", spec.Label)
			}
			if spec.Min != nil && number.LessThan(*spec.Min) {
				return values, validationf("%s must be >= %s.", spec.Label, spec.Min.String())
			}
			if spec.Max != nil && number.GreaterThan(*spec.Max) {
				return values, validationf("%s must be <= %s.", spec.Label, spec.Max.String())
			}
			values[spec.ID] = number
		}
	}
	return values, nil
}

// ResolveInputs validates raw values the way the quote service does,
// addressing failures by input ID. Unlike ValidateInputs it returns
// no partial result.
func ResolveInputs(specs []types.InputSpec, given map[string]interface{}) (map[string]interface{}, error) {
	resolved := make(map[string]interface{}, len(specs))
	for _, spec := range specs {
		value, ok := given[spec.ID]
		if !ok {
			value = spec.Default
		}

		switch spec.Type {
		case types.InputNumber:
			number, err := toNumber(value, fmt.Sprintf("inputs.%s", spec.ID))
			if err != nil {
				return nil, err
			}
			if spec.Min != nil && number.LessThan(*spec.Min) {
				return nil, validationf("inputs.%s must be >= %s", spec.ID, spec.Min.String())
			}
			if spec.Max != nil && number.GreaterThan(*spec.Max) {
				return nil, validationf("inputs.%s must be <= %s", spec.ID, spec.Max.String())
			}
			resolved[spec.ID] = number

		case types.InputBoolean:
			resolved[spec.ID] = truthy(value)

		default:
			text := asString(value)
			if !containsString(spec.Options, text) {
				return nil, validationf("inputs.%s must be one of: %s", spec.ID, strings.Join(spec.Options, ", "))
			}
			resolved[spec.ID] = text
		}
	}
	return resolved, nil
}
