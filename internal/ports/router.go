package ports

import (
	"context"
	"delivery-quote-service/internal/domain"
)

// Driving distance and travel time between two points.
type RouteResult struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// Contract for retrieving road distance between resolved coordinates.
type Router interface {
	// Return the driving route, or an error wrapping domain.ErrRoutingUnavailable.
	DrivingRoute(ctx context.Context, from, to domain.Coordinates) (RouteResult, error)
}
