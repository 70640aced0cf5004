package events

import (
	"context"
	"delivery-quote-service/internal/domain"
	"delivery-quote-service/internal/platform/obs"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	DefaultTopic    = "delivery.quotes"
	QuoteCalculated = "quote.calculated"
	source          = "delivery-quote-service"
)

// CloudEvent is the envelope written to the topic.
type CloudEvent struct {
	ID          string          `json:"id"`
	Source      string          `json:"source"`
	Type        string          `json:"type"`
	SpecVersion string          `json:"specversion"`
	Time        time.Time       `json:"time"`
	Data        json.RawMessage `json:"data"`
}

// QuoteCalculatedData is the payload of a quote.calculated event.
// Amounts are decimal strings.
type QuoteCalculatedData struct {
	CalculationID   string    `json:"calculation_id"`
	PickupAddress   string    `json:"pickup_address"`
	DeliveryAddress string    `json:"delivery_address"`
	PackageType     string    `json:"package_type"`
	DistanceKm      string    `json:"distance_km"`
	Total           string    `json:"total"`
	Currency        string    `json:"currency"`
	CreatedAt       time.Time `json:"created_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaQuotePublisher implements ports.QuotePublisher.
type KafkaQuotePublisher struct {
	writer messageWriter
	now    func() time.Time
}

// NewKafkaQuotePublisher returns an asynchronous publisher: PublishQuote only
// enqueues, and delivery failures are reported to logger. Close flushes.
func NewKafkaQuotePublisher(brokers []string, topic string, logger *zap.Logger) (*KafkaQuotePublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka publisher: no brokers")
	}
	if topic == "" {
		topic = DefaultTopic
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion:             deliveryReporter(logger, topic),
	}
	return newKafkaQuotePublisher(w), nil
}

func deliveryReporter(logger *zap.Logger, topic string) func([]kafka.Message, error) {
	return func(msgs []kafka.Message, err error) {
		if err == nil {
			return
		}
		keys := make([]string, 0, len(msgs))
		for _, m := range msgs {
			keys = append(keys, string(m.Key))
		}
		logger.Error("deliver quote events failed",
			zap.String("topic", topic),
			zap.Strings("calculation_ids", keys),
			zap.Error(err),
		)
	}
}

func newKafkaQuotePublisher(w messageWriter) *KafkaQuotePublisher {
	return &KafkaQuotePublisher{writer: w, now: func() time.Time { return time.Now().UTC() }}
}

// PublishQuote writes one quote.calculated event keyed by calculation id.
func (p *KafkaQuotePublisher) PublishQuote(ctx context.Context, c *domain.Calculation) (err error) {
	defer obs.Time(ctx, "events.PublishQuote")(&err)

	if c == nil {
		return errors.New("publish quote: nil calculation")
	}

	data, err := json.Marshal(QuoteCalculatedData{
		CalculationID:   c.ID.String(),
		PickupAddress:   c.Request.PickupAddress,
		DeliveryAddress: c.Request.DeliveryAddress,
		PackageType:     string(c.Request.Category),
		DistanceKm:      c.Breakdown.Distance.String(),
		Total:           c.Breakdown.Total.StringFixed(2),
		Currency:        c.Breakdown.Currency,
		CreatedAt:       c.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("publish quote: marshal data: %w", err)
	}

	body, err := json.Marshal(CloudEvent{
		ID:          uuid.NewString(),
		Source:      source,
		Type:        QuoteCalculated,
		SpecVersion: "1.0",
		Time:        p.now(),
		Data:        data,
	})
	if err != nil {
		return fmt.Errorf("publish quote: marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(c.ID.String()),
		Value: body,
		Headers: []kafka.Header{
			{Key: "ce_type", Value: []byte(QuoteCalculated)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish quote id=%s: %w", c.ID, err)
	}

	return nil
}

func (p *KafkaQuotePublisher) Close() error {
	return p.writer.Close()
}
