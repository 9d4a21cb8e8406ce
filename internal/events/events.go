// README: Domain events published to Kafka (quote fallbacks, booking outcomes).
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Well-known topic names.
const (
	TopicQuoteFallback    = "quote.fallback"
	TopicBookingConfirmed = "booking.confirmed"
	TopicBookingFailed    = "booking.failed"
)

// Publisher delivers one event. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

type QuoteFallback struct {
	SessionID      string    `json:"session_id"`
	Seq            uint64    `json:"seq"`
	VehicleType    string    `json:"vehicle_type"`
	EstimatedPrice float64   `json:"estimated_price"`
	DistanceKm     float64   `json:"distance_km"`
	IssuedAt       time.Time `json:"issued_at"`
}

type BookingOutcome struct {
	SessionID      string    `json:"session_id"`
	BookingID      string    `json:"booking_id,omitempty"`
	VehicleType    string    `json:"vehicle_type"`
	PickupDateTime string    `json:"pickup_datetime"`
	EstimatedPrice float64   `json:"estimated_price"`
	QuoteSource    string    `json:"quote_source"`
	Message        string    `json:"message,omitempty"`
	At             time.Time `json:"at"`
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaPublisher writes JSON events; the topic is chosen per message.
type KafkaPublisher struct {
	w messageWriter
}

func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Balancer:               &kafkago.LeastBytes{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}
	err = p.w.WriteMessages(ctx, kafkago.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: body,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
