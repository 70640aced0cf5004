package ports

import (
	"context"
	"delivery-quote-service/internal/domain"
)

// Announces finished calculations to downstream consumers.
type QuotePublisher interface {
	PublishQuote(ctx context.Context, calc *domain.Calculation) error
}
