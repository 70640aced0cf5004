package ports

import (
	"context"
	"delivery-quote-service/internal/domain"
)

// Contract for resolving a free-text address to coordinates inside one country.
type Geocoder interface {
	// Return the best in-country match, or an error wrapping domain.ErrGeocodeNotFound.
	Geocode(ctx context.Context, address string, country domain.Country) (domain.Coordinates, error)
}
