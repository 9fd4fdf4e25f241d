package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/cryptonova/forecast-service/internal/models"
)

// PriceHistoryRepository defines the database operations the consumer needs
type PriceHistoryRepository interface {
	UpsertPricePoint(symbol string, point models.PricePoint) error
}

// Consumer ingests PRICE_UPDATED events into price history. Upserting on
// (symbol, ts) makes redelivered messages idempotent.
type Consumer struct {
	reader *kafka.Reader
	repo   PriceHistoryRepository
	log    zerolog.Logger
}

// NewConsumer creates a new Kafka consumer for price update events
func NewConsumer(brokers []string, topic, groupID string, repo PriceHistoryRepository, log zerolog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader: reader,
		repo:   repo,
		log:    log.With().Str("component", "price_consumer").Logger(),
	}
}

// Start begins consuming messages until the context is canceled
func (c *Consumer) Start(ctx context.Context) error {
	c.log.Info().Str("topic", c.reader.Config().Topic).Msg("Starting Kafka consumer")

	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("Kafka consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // Context cancelled, normal shutdown
				}
				c.log.Error().Err(err).Msg("Error reading message")
				continue
			}

			if err := c.processMessage(msg); err != nil {
				c.log.Error().Err(err).
					Int("partition", msg.Partition).
					Int64("offset", msg.Offset).
					Msg("Error processing message")
				// Continue processing other messages
			}
		}
	}
}

// processMessage handles a single Kafka message
func (c *Consumer) processMessage(msg kafka.Message) error {
	var event models.PriceUpdateEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal price update event: %w", err)
	}

	// Only process PRICE_UPDATED events
	if event.EventType != models.EventPriceUpdated {
		c.log.Debug().Str("event_type", event.EventType).Msg("Ignoring event type")
		return nil
	}

	if event.Symbol == "" {
		return fmt.Errorf("price update event has no symbol")
	}
	if event.Price <= 0 {
		return fmt.Errorf("invalid price %f for %s", event.Price, event.Symbol)
	}

	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	point := models.PricePoint{
		Timestamp: ts,
		Price:     event.Price,
		Volume:    event.Volume,
	}
	if err := c.repo.UpsertPricePoint(event.Symbol, point); err != nil {
		return fmt.Errorf("failed to save price point: %w", err)
	}

	c.log.Debug().
		Str("symbol", event.Symbol).
		Float64("price", event.Price).
		Time("ts", ts).
		Msg("Stored price update")

	return nil
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
