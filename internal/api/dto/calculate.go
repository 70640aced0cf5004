package dto

import (
	"delivery-quote-service/internal/domain"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type CalculateRequest struct {
	PickupLocation   string `json:"pickup_location" validate:"required"`
	DeliveryLocation string `json:"delivery_location" validate:"required"`
	Length           Number `json:"length" validate:"required,positive,amount"`
	Width            Number `json:"width" validate:"required,positive,amount"`
	Height           Number `json:"height" validate:"required,positive,amount"`
	Weight           Number `json:"weight" validate:"required,positive,amount"`
	PackageType      string `json:"package_type" validate:"required"`
	IsFragile        bool   `json:"is_fragile"`
	NeedsInsurance   bool   `json:"needs_insurance"`
}

// Numeric inputs fit a DECIMAL(10,2): at most 8 integer digits and 2 decimal places.
var maxAmount = decimal.RequireFromString("99999999.99")

const (
	maxIntegerDigits = 8
	maxDecimalPlaces = 2
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		return f.Interface().(Number).validationValue()
	}, Number{})
	_ = v.RegisterValidation("positive", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.IsPositive()
	})
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && withinAmount(d)
	})
	return v
}

// withinAmount checks digits before comparing so huge exponents are never rescaled.
func withinAmount(d decimal.Decimal) bool {
	exp := int64(d.Exponent())
	if exp < -maxNumberLen || int64(d.NumDigits())+exp > maxIntegerDigits {
		return false
	}
	if !d.Truncate(maxDecimalPlaces).Equal(d) {
		return false
	}
	return d.LessThanOrEqual(maxAmount)
}

// ToDomain validates r and converts it. Failures are *domain.ValidationError.
func (r CalculateRequest) ToDomain() (domain.QuoteRequest, error) {
	r.PickupLocation = strings.TrimSpace(r.PickupLocation)
	r.DeliveryLocation = strings.TrimSpace(r.DeliveryLocation)
	r.PackageType = strings.TrimSpace(r.PackageType)

	if err := validate.Struct(r); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return domain.QuoteRequest{}, err
		}

		ve := &domain.ValidationError{}
		for _, fe := range fieldErrs {
			if fe.Tag() == "required" {
				ve.Missing = append(ve.Missing, fe.Field())
			} else {
				ve.Invalid = append(ve.Invalid, fe.Field())
			}
		}
		return domain.QuoteRequest{}, ve
	}

	return domain.QuoteRequest{
		PickupAddress:   r.PickupLocation,
		DeliveryAddress: r.DeliveryLocation,
		Length:          r.Length.Value,
		Width:           r.Width.Value,
		Height:          r.Height.Value,
		Weight:          r.Weight.Value,
		Category:        domain.PackageCategory(strings.ToLower(r.PackageType)),
		IsFragile:       r.IsFragile,
		NeedsInsurance:  r.NeedsInsurance,
	}, nil
}
