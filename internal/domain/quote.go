package domain

import "github.com/shopspring/decimal"

// PackageCategory selects the type multiplier applied to the subtotal.
// Values outside the known set are accepted and priced as CategoryStandard.
type PackageCategory string

const (
	CategoryDocument PackageCategory = "document"
	CategoryStandard PackageCategory = "standard"
	CategoryFragile  PackageCategory = "fragile"
	CategoryHeavy    PackageCategory = "heavy"
)

// Known reports whether c is one of the enumerated categories.
func (c PackageCategory) Known() bool {
	switch c {
	case CategoryDocument, CategoryStandard, CategoryFragile, CategoryHeavy:
		return true
	}
	return false
}

// QuoteRequest describes a single parcel to be priced.
// Dimensions are centimeters, weight is kilograms. Inputs are validated
// by the caller; the pricing code tolerates zero values.
type QuoteRequest struct {
	PickupAddress   string
	DeliveryAddress string
	Length          decimal.Decimal
	Width           decimal.Decimal
	Height          decimal.Decimal
	Weight          decimal.Decimal
	Category        PackageCategory
	IsFragile       bool
	NeedsInsurance  bool
}

// PriceBreakdown is the itemized result of pricing a QuoteRequest.
// Every intermediate used by the formula is kept so callers can verify Total.
type PriceBreakdown struct {
	Distance        decimal.Decimal
	BasePrice       decimal.Decimal
	WeightCharge    decimal.Decimal
	VolumeCharge    decimal.Decimal
	Volume          decimal.Decimal
	TypeMultiplier  decimal.Decimal
	RoadMultiplier  decimal.Decimal
	Subtotal        decimal.Decimal
	FuelCharge      decimal.Decimal
	ServiceCharge   decimal.Decimal
	FragilityCharge decimal.Decimal
	InsuranceCharge decimal.Decimal
	Total           decimal.Decimal
	Currency        string
}
