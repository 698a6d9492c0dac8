package quote

import (
	"context"

	"github.com/shopspring/decimal"

	"catalog-cost/core/types"
)

// OperatorRegistry reports how many operators are registered.
// adapters/operators provides static and HTTP implementations.
type OperatorRegistry interface {
	OperatorCount(ctx context.Context) (int, error)
}

// LocalModel prices entries without a pricing document:
//
//	total = operators × units × apps
//
// where units is the number of aliases a role is enabled on (1 for a
// bundle) and apps is the number of member roles (1 for a role). The
// operator count is floored to 1 so a configuration with no
// registered operators still prices as if for one. The model is
// synchronous and has no failure mode: registry errors floor to 1.
type LocalModel struct {
	registry OperatorRegistry
}

// NewLocalModel creates a local model over the given registry. A nil
// registry always prices for one operator.
func NewLocalModel(registry OperatorRegistry) *LocalModel {
	return &LocalModel{registry: registry}
}

// RoleParams fills the formula factors for a role enabled on
// aliasCount aliases.
func RoleParams(roleID string, aliasCount int, currency types.Currency) Request {
	return Request{
		RoleID:   roleID,
		Currency: currency,
		Units:    aliasCount,
		Apps:     1,
	}
}

// BundleParams fills the formula factors for a bundle with
// memberCount member roles.
func BundleParams(bundleID string, memberCount int, currency types.Currency) Request {
	return Request{
		RoleID:   bundleID,
		Currency: currency,
		Units:    1,
		Apps:     memberCount,
	}
}

// Quote computes the formula. It never returns an error.
func (m *LocalModel) Quote(ctx context.Context, req Request) (*types.Quote, error) {
	operatorCount := 0
	if m.registry != nil {
		if n, err := m.registry.OperatorCount(ctx); err == nil {
			operatorCount = n
		}
	}
	if operatorCount < 1 {
		operatorCount = 1
	}

	total := decimal.NewFromInt(int64(operatorCount)).
		Mul(decimal.NewFromInt(int64(req.Units))).
		Mul(decimal.NewFromInt(int64(req.Apps)))

	currency := req.Currency
	if currency == "" {
		currency = types.CurrencyEUR
	}

	return &types.Quote{
		Total:    &total,
		Currency: currency,
		Region:   types.RegionGlobal,
		Interval: types.IntervalMonth,
		Inputs:   map[string]interface{}{},
	}, nil
}
