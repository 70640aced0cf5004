package domain

import (
	"time"

	"github.com/google/uuid"
)

// Calculation is one stored quote: the request as submitted and the breakdown it produced.
// Records are written once and never updated.
type Calculation struct {
	ID        uuid.UUID
	Request   QuoteRequest
	Breakdown PriceBreakdown
	CreatedAt time.Time
}
