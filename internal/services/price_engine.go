package services

import (
	"context"
	"delivery-quote-service/internal/domain"
	"delivery-quote-service/internal/ports"

	"github.com/shopspring/decimal"
)

// PriceEngine prices quote requests. It resolves the driving distance and then
// applies Price; it has no other side effects.
type PriceEngine struct {
	rates     domain.Rates
	distances ports.DistanceResolver
}

func NewPriceEngine(rates domain.Rates, distances ports.DistanceResolver) *PriceEngine {
	return &PriceEngine{rates: rates, distances: distances}
}

// Compute resolves the distance between the request's addresses and prices it.
func (e *PriceEngine) Compute(ctx context.Context, req domain.QuoteRequest) domain.PriceBreakdown {
	km := e.distances.Resolve(ctx, req.PickupAddress, req.DeliveryAddress)
	return Price(e.rates, km, req)
}

// Price is the pricing formula. It is pure: equal inputs give equal breakdowns.
//
//	base      = perKm * km
//	weight    = max(0, weight - threshold) * perKg
//	volume    = l*w*h / 1e6 m³, charged in full at perM3 once above threshold
//	subtotal  = (base + weight + volume) * typeMultiplier * roadMultiplier
//	total     = subtotal + base*fuelPct + service + fragile? + insurance?
func Price(rates domain.Rates, distanceKm decimal.Decimal, req domain.QuoteRequest) domain.PriceBreakdown {
	basePrice := rates.PerKm.Mul(distanceKm)

	weightCharge := decimal.Zero
	if req.Weight.GreaterThan(rates.WeightThreshold) {
		weightCharge = req.Weight.Sub(rates.WeightThreshold).Mul(rates.WeightPerKg)
	}

	// cm³ -> m³ is an exact decimal shift.
	volume := req.Length.Mul(req.Width).Mul(req.Height).Shift(-6)
	volumeCharge := decimal.Zero
	if volume.GreaterThan(rates.VolumeThreshold) {
		volumeCharge = volume.Mul(rates.VolumePerM3)
	}

	typeMultiplier := rates.Multiplier(req.Category)

	subtotal := basePrice.Add(weightCharge).Add(volumeCharge).
		Mul(typeMultiplier.Mul(rates.RoadMultiplier))

	fuelCharge := basePrice.Mul(rates.FuelPct)

	fragilityCharge := decimal.Zero
	if req.IsFragile {
		fragilityCharge = rates.FragileFlat
	}

	insuranceCharge := decimal.Zero
	if req.NeedsInsurance {
		insuranceCharge = rates.InsuranceFlat
	}

	total := subtotal.Add(fuelCharge).Add(rates.ServiceFlat).Add(fragilityCharge).Add(insuranceCharge)

	return domain.PriceBreakdown{
		Distance:        distanceKm,
		BasePrice:       basePrice,
		WeightCharge:    weightCharge,
		VolumeCharge:    volumeCharge,
		Volume:          volume,
		TypeMultiplier:  typeMultiplier,
		RoadMultiplier:  rates.RoadMultiplier,
		Subtotal:        subtotal,
		FuelCharge:      fuelCharge,
		ServiceCharge:   rates.ServiceFlat,
		FragilityCharge: fragilityCharge,
		InsuranceCharge: insuranceCharge,
		Total:           total,
		Currency:        rates.Currency,
	}
}
