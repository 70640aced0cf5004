package ports

import (
	"context"
	"delivery-quote-service/internal/domain"

	"github.com/google/uuid"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// Narrows a calculation listing. Zero values mean "no filter".
type CalculationFilter struct {
	// Case-insensitive substring of pickup or delivery address.
	Search         string
	Category       string
	IsFragile      *bool
	NeedsInsurance *bool
	// Clamped to (0, MaxListLimit]; zero means DefaultListLimit.
	Limit int
}

// Port: a boundary for storing and browsing past calculations.
type CalculationRepository interface {
	Create(ctx context.Context, calc *domain.Calculation) error
	// Newest first.
	List(ctx context.Context, filter CalculationFilter) ([]*domain.Calculation, error)
	// Return domain.ErrCalculationNotFound for unknown ids.
	Get(ctx context.Context, id uuid.UUID) (*domain.Calculation, error)
}
