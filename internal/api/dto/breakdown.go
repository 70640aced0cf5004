package dto

import (
	"delivery-quote-service/internal/domain"
	"time"
)

type BreakdownResponse struct {
	Distance        float64 `json:"distance"`
	BasePrice       float64 `json:"base_price"`
	WeightCharge    float64 `json:"weight_charge"`
	VolumeCharge    float64 `json:"volume_charge"`
	Volume          float64 `json:"volume"`
	TypeMultiplier  float64 `json:"type_multiplier"`
	RoadMultiplier  float64 `json:"road_multiplier"`
	Subtotal        float64 `json:"subtotal"`
	FuelCharge      float64 `json:"fuel_charge"`
	ServiceCharge   float64 `json:"service_charge"`
	FragilityCharge float64 `json:"fragility_charge"`
	InsuranceCharge float64 `json:"insurance_charge"`
	Total           float64 `json:"total"`
	Currency        string  `json:"currency"`
}

type CalculateResponse struct {
	Success       bool              `json:"success"`
	Breakdown     BreakdownResponse `json:"breakdown"`
	CalculationID string            `json:"calculation_id"`
}

type ErrorResponse struct {
	Success   bool     `json:"success"`
	Error     string   `json:"error"`
	Fields    []string `json:"fields,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

type CalculationResponse struct {
	ID               string            `json:"id"`
	PickupLocation   string            `json:"pickup_location"`
	DeliveryLocation string            `json:"delivery_location"`
	Length           float64           `json:"length"`
	Width            float64           `json:"width"`
	Height           float64           `json:"height"`
	Weight           float64           `json:"weight"`
	PackageType      string            `json:"package_type"`
	IsFragile        bool              `json:"is_fragile"`
	NeedsInsurance   bool              `json:"needs_insurance"`
	Distance         float64           `json:"distance"`
	TotalPrice       float64           `json:"total_price"`
	Breakdown        BreakdownResponse `json:"breakdown"`
	CreatedAt        time.Time         `json:"created_at"`
}

type ListCalculationsResponse struct {
	Success      bool                  `json:"success"`
	Calculations []CalculationResponse `json:"calculations"`
}

type GetCalculationResponse struct {
	Success     bool                `json:"success"`
	Calculation CalculationResponse `json:"calculation"`
}

// NewBreakdownResponse converts to floats. Nothing downstream of this does arithmetic.
func NewBreakdownResponse(b domain.PriceBreakdown) BreakdownResponse {
	return BreakdownResponse{
		Distance:        b.Distance.InexactFloat64(),
		BasePrice:       b.BasePrice.InexactFloat64(),
		WeightCharge:    b.WeightCharge.InexactFloat64(),
		VolumeCharge:    b.VolumeCharge.InexactFloat64(),
		Volume:          b.Volume.InexactFloat64(),
		TypeMultiplier:  b.TypeMultiplier.InexactFloat64(),
		RoadMultiplier:  b.RoadMultiplier.InexactFloat64(),
		Subtotal:        b.Subtotal.InexactFloat64(),
		FuelCharge:      b.FuelCharge.InexactFloat64(),
		ServiceCharge:   b.ServiceCharge.InexactFloat64(),
		FragilityCharge: b.FragilityCharge.InexactFloat64(),
		InsuranceCharge: b.InsuranceCharge.InexactFloat64(),
		Total:           b.Total.InexactFloat64(),
		Currency:        b.Currency,
	}
}

func NewCalculationResponse(c *domain.Calculation) CalculationResponse {
	req := c.Request
	return CalculationResponse{
		ID:               c.ID.String(),
		PickupLocation:   req.PickupAddress,
		DeliveryLocation: req.DeliveryAddress,
		Length:           req.Length.InexactFloat64(),
		Width:            req.Width.InexactFloat64(),
		Height:           req.Height.InexactFloat64(),
		Weight:           req.Weight.InexactFloat64(),
		PackageType:      string(req.Category),
		IsFragile:        req.IsFragile,
		NeedsInsurance:   req.NeedsInsurance,
		Distance:         c.Breakdown.Distance.InexactFloat64(),
		TotalPrice:       c.Breakdown.Total.InexactFloat64(),
		Breakdown:        NewBreakdownResponse(c.Breakdown),
		CreatedAt:        c.CreatedAt,
	}
}
