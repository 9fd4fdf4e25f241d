package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/cryptonova/forecast-service/internal/models"
)

// Producer handles publishing forecast and watchlist events to Kafka
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishForecastGenerated publishes a completed forecasting pass
func (p *Producer) PublishForecastGenerated(ctx context.Context, forecast *models.EnsembleForecast, horizonDays int) error {
	event := models.ForecastEvent{
		EventType:       models.EventForecastGenerated,
		Symbol:          forecast.Symbol,
		CurrentPrice:    forecast.CurrentPrice,
		FusedPrice:      forecast.FusedPrice,
		FusedConfidence: forecast.FusedConfidence,
		HorizonDays:     horizonDays,
		Timestamp:       time.Now(),
	}
	return p.publish(ctx, forecast.Symbol, event)
}

// PublishSymbolTracked publishes a watchlist addition
func (p *Producer) PublishSymbolTracked(ctx context.Context, symbol string) error {
	event := models.SymbolEvent{
		EventType: models.EventSymbolTracked,
		Symbol:    symbol,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, symbol, event)
}

// PublishSymbolUntracked publishes a watchlist removal
func (p *Producer) PublishSymbolUntracked(ctx context.Context, symbol string) error {
	event := models.SymbolEvent{
		EventType: models.EventSymbolUntracked,
		Symbol:    symbol,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, symbol, event)
}

func (p *Producer) publish(ctx context.Context, key string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
