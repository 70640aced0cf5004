package domain

import "github.com/shopspring/decimal"

// Rates holds every tunable constant of the pricing formula.
// All monetary values share one currency.
type Rates struct {
	Currency string

	PerKm decimal.Decimal

	WeightThreshold decimal.Decimal
	WeightPerKg     decimal.Decimal

	// Volume values are cubic meters.
	VolumeThreshold decimal.Decimal
	VolumePerM3     decimal.Decimal

	CategoryMultipliers map[PackageCategory]decimal.Decimal
	DefaultMultiplier   decimal.Decimal
	RoadMultiplier      decimal.Decimal

	FuelPct       decimal.Decimal
	ServiceFlat   decimal.Decimal
	FragileFlat   decimal.Decimal
	InsuranceFlat decimal.Decimal
}

// DefaultRates returns the standard NPR tariff.
func DefaultRates() Rates {
	return Rates{
		Currency:        "NPR",
		PerKm:           decimal.RequireFromString("50.00"),
		WeightThreshold: decimal.RequireFromString("5.0"),
		WeightPerKg:     decimal.RequireFromString("20.00"),
		VolumeThreshold: decimal.RequireFromString("0.01"),
		VolumePerM3:     decimal.RequireFromString("5000.00"),
		CategoryMultipliers: map[PackageCategory]decimal.Decimal{
			CategoryDocument: decimal.RequireFromString("1.0"),
			CategoryStandard: decimal.RequireFromString("1.3"),
			CategoryFragile:  decimal.RequireFromString("1.6"),
			CategoryHeavy:    decimal.RequireFromString("1.8"),
		},
		DefaultMultiplier: decimal.RequireFromString("1.3"),
		// Terrain difficulty.
		RoadMultiplier: decimal.RequireFromString("1.25"),
		FuelPct:        decimal.RequireFromString("0.15"),
		ServiceFlat:    decimal.RequireFromString("100.00"),
		FragileFlat:    decimal.RequireFromString("200.00"),
		InsuranceFlat:  decimal.RequireFromString("300.00"),
	}
}

// Multiplier returns the type multiplier for c, or DefaultMultiplier when c is unknown.
func (r Rates) Multiplier(c PackageCategory) decimal.Decimal {
	if m, ok := r.CategoryMultipliers[c]; ok {
		return m
	}
	return r.DefaultMultiplier
}
