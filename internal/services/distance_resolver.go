package services

import (
	"context"
	"delivery-quote-service/internal/domain"
	"delivery-quote-service/internal/platform/obs"
	"delivery-quote-service/internal/ports"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultFallbackKm is used whenever a real driving distance cannot be determined.
var DefaultFallbackKm = decimal.RequireFromString("15.0")

type fallbackReason string

const (
	reasonNone               fallbackReason = ""
	reasonNoCredentials      fallbackReason = "no_credentials"
	reasonPickupNotFound     fallbackReason = "pickup_not_found"
	reasonDeliveryNotFound   fallbackReason = "delivery_not_found"
	reasonRoutingUnavailable fallbackReason = "routing_unavailable"
)

// distanceOutcome is either a measured distance (reason empty) or a fallback.
type distanceOutcome struct {
	km     decimal.Decimal
	reason fallbackReason
}

func (o distanceOutcome) isFallback() bool { return o.reason != reasonNone }

type DistanceResolverConfig struct {
	Country    domain.Country
	FallbackKm decimal.Decimal
}

// DistanceResolver implements ports.DistanceResolver.
//
// A nil geocoder or router means no provider credential is configured; every
// request then resolves to the fallback distance without network calls.
type DistanceResolver struct {
	geocoder ports.Geocoder
	router   ports.Router
	cfg      DistanceResolverConfig
}

func NewDistanceResolver(geocoder ports.Geocoder, router ports.Router, cfg DistanceResolverConfig) *DistanceResolver {
	if cfg.FallbackKm.IsZero() {
		cfg.FallbackKm = DefaultFallbackKm
	}
	return &DistanceResolver{geocoder: geocoder, router: router, cfg: cfg}
}

// Resolve returns the driving distance in kilometers, or the fallback distance.
func (d *DistanceResolver) Resolve(ctx context.Context, pickup, delivery string) decimal.Decimal {
	out := d.resolve(ctx, pickup, delivery)
	if out.isFallback() {
		obs.FromContext(ctx).Warn("using fallback distance",
			zap.String("reason", string(out.reason)),
			zap.String("fallback_km", out.km.String()),
		)
	}
	return out.km
}

func (d *DistanceResolver) resolve(ctx context.Context, pickup, delivery string) distanceOutcome {
	if d.geocoder == nil || d.router == nil {
		return d.fallback(reasonNoCredentials)
	}

	var (
		from, to       domain.Coordinates
		fromErr, toErr error
	)

	// Both lookups always run to completion; failures are inspected afterwards.
	var g errgroup.Group
	g.Go(func() error {
		from, fromErr = d.geocoder.Geocode(ctx, pickup, d.cfg.Country)
		return nil
	})
	g.Go(func() error {
		to, toErr = d.geocoder.Geocode(ctx, delivery, d.cfg.Country)
		return nil
	})
	_ = g.Wait()

	if fromErr != nil {
		return d.fallback(reasonPickupNotFound)
	}
	if toErr != nil {
		return d.fallback(reasonDeliveryNotFound)
	}

	route, err := d.router.DrivingRoute(ctx, from, to)
	if err != nil {
		return d.fallback(reasonRoutingUnavailable)
	}

	return distanceOutcome{km: decimal.NewFromFloat(route.DistanceMeters).Shift(-3)}
}

func (d *DistanceResolver) fallback(reason fallbackReason) distanceOutcome {
	return distanceOutcome{km: d.cfg.FallbackKm, reason: reason}
}
