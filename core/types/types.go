// Package types defines core domain types shared across all layers.
// This package contains NO business logic - only type definitions.
package types

// Currency represents an ISO 4217 currency code
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
)

// String returns the string representation of the currency
func (c Currency) String() string {
	return string(c)
}

// IsValid checks if the code is three upper-case ASCII letters
func (c Currency) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Region represents a pricing region
type Region string

const (
	RegionGlobal Region = "global"
	RegionEU     Region = "eu"
	RegionUS     Region = "us"
	RegionUK     Region = "uk"
	RegionAPAC   Region = "apac"
	RegionLATAM  Region = "latam"
)

// String returns the string representation of the region
func (r Region) String() string {
	return string(r)
}

// IsValid checks if the region is a known region
func (r Region) IsValid() bool {
	switch r {
	case RegionGlobal, RegionEU, RegionUS, RegionUK, RegionAPAC, RegionLATAM:
		return true
	default:
		return false
	}
}

// AllRegions lists every supported region
func AllRegions() []Region {
	return []Region{RegionGlobal, RegionEU, RegionUS, RegionUK, RegionAPAC, RegionLATAM}
}

// Interval represents a billing interval
type Interval string

const (
	IntervalMonth Interval = "month"
	IntervalYear  Interval = "year"
	IntervalOnce  Interval = "once"
)

// String returns the string representation of the interval
func (i Interval) String() string {
	return string(i)
}

// IsValid checks if the interval is a known interval
func (i Interval) IsValid() bool {
	switch i {
	case IntervalMonth, IntervalYear, IntervalOnce:
		return true
	default:
		return false
	}
}

// InputType represents the kind of value a pricing input accepts
type InputType string

const (
	InputNumber  InputType = "number"
	InputEnum    InputType = "enum"
	InputBoolean InputType = "boolean"
)

// String returns the string representation of the input type
func (t InputType) String() string {
	return string(t)
}

// IsValid checks if the input type is known
func (t InputType) IsValid() bool {
	switch t {
	case InputNumber, InputEnum, InputBoolean:
		return true
	default:
		return false
	}
}

// BlockType represents how a pricing block computes its amount
type BlockType string

const (
	BlockFixed         BlockType = "fixed"
	BlockPerUnit       BlockType = "per_unit"
	BlockAddon         BlockType = "addon"
	BlockTieredPerUnit BlockType = "tiered_per_unit"
	BlockVolumePerUnit BlockType = "volume_per_unit"
	BlockBundle        BlockType = "bundle"
	BlockFactor        BlockType = "factor"
	BlockCustom        BlockType = "custom"
)

// String returns the string representation of the block type
func (b BlockType) String() string {
	return string(b)
}

// IsValid checks if the block type is known
func (b BlockType) IsValid() bool {
	switch b {
	case BlockFixed, BlockPerUnit, BlockAddon, BlockTieredPerUnit,
		BlockVolumePerUnit, BlockBundle, BlockFactor, BlockCustom:
		return true
	default:
		return false
	}
}

// IsPointPriced reports whether the block carries a flat price point
func (b BlockType) IsPointPriced() bool {
	switch b {
	case BlockFixed, BlockPerUnit, BlockAddon:
		return true
	default:
		return false
	}
}

// RoleStatus represents the maturity of a catalog role
type RoleStatus string

const (
	StatusPreAlpha   RoleStatus = "pre-alpha"
	StatusAlpha      RoleStatus = "alpha"
	StatusBeta       RoleStatus = "beta"
	StatusStable     RoleStatus = "stable"
	StatusDeprecated RoleStatus = "deprecated"
)

// String returns the string representation of the status
func (s RoleStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a known status
func (s RoleStatus) IsValid() bool {
	switch s {
	case StatusPreAlpha, StatusAlpha, StatusBeta, StatusStable, StatusDeprecated:
		return true
	default:
		return false
	}
}

// DeployTarget represents where a bundle installs
type DeployTarget string

const (
	TargetServer      DeployTarget = "server"
	TargetWorkstation DeployTarget = "workstation"
)

// String returns the string representation of the deploy target
func (d DeployTarget) String() string {
	return string(d)
}

// IsValid checks if the deploy target is known
func (d DeployTarget) IsValid() bool {
	switch d {
	case TargetServer, TargetWorkstation:
		return true
	default:
		return false
	}
}
