package services

import (
	"context"
	"delivery-quote-service/internal/domain"
	"delivery-quote-service/internal/platform/obs"
	"delivery-quote-service/internal/ports"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrUnexpected marks an internal fault while computing a quote.
var ErrUnexpected = errors.New("unexpected failure")

const sideEffectTimeout = 5 * time.Second

// QuoteService is the quote use case: price the request, then record and announce it.
// Recording and announcing are best-effort; their failures are logged and never
// change the returned quote.
type QuoteService struct {
	engine    *PriceEngine
	repo      ports.CalculationRepository
	publisher ports.QuotePublisher
	now       func() time.Time
}

// NewQuoteService wires the use case. repo and publisher may be nil.
func NewQuoteService(engine *PriceEngine, repo ports.CalculationRepository, publisher ports.QuotePublisher) *QuoteService {
	return &QuoteService{
		engine:    engine,
		repo:      repo,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Quote prices req. The only error it returns wraps ErrUnexpected.
func (s *QuoteService) Quote(ctx context.Context, req domain.QuoteRequest) (calc *domain.Calculation, err error) {
	defer obs.Time(ctx, "quote.Quote")(&err)

	breakdown, err := s.compute(ctx, req)
	if err != nil {
		return nil, err
	}

	calc = &domain.Calculation{
		ID:        uuid.New(),
		Request:   req,
		Breakdown: breakdown,
		CreatedAt: s.now(),
	}

	logger := obs.FromContext(ctx)
	logger.Info("quote calculated",
		zap.String("calculation_id", calc.ID.String()),
		zap.String("distance_km", breakdown.Distance.String()),
		zap.String("total", breakdown.Total.StringFixed(2)),
		zap.String("currency", breakdown.Currency),
	)

	// The caller may go away once the quote exists; side effects still get a bounded window.
	sideCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if s.repo != nil {
		if err := s.repo.Create(sideCtx, calc); err != nil {
			logger.Error("save calculation failed (quote still returned)",
				zap.String("calculation_id", calc.ID.String()),
				zap.Error(err),
			)
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishQuote(sideCtx, calc); err != nil {
			logger.Error("publish quote failed",
				zap.String("calculation_id", calc.ID.String()),
				zap.Error(err),
			)
		}
	}

	return calc, nil
}

// compute converts a panic in the pricing chain into ErrUnexpected.
func (s *QuoteService) compute(ctx context.Context, req domain.QuoteRequest) (b domain.PriceBreakdown, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("compute quote: %v: %w", r, ErrUnexpected)
		}
	}()

	return s.engine.Compute(ctx, req), nil
}
