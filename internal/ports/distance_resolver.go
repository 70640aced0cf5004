package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// Contract for turning two addresses into a driving distance in kilometers.
// Implementations never fail; they degrade to a fixed fallback distance.
type DistanceResolver interface {
	Resolve(ctx context.Context, pickup, delivery string) decimal.Decimal
}
