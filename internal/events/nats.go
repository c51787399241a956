package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/learncenter-api/internal/observability"
)

// NATSBus publishes events as JSON messages on a NATS connection.
type NATSBus struct {
	conn   *nats.Conn
	logger zerolog.Logger

	mu   sync.Mutex
	subs []*nats.Subscription
}

// NewNATSBus wraps an established NATS connection.
func NewNATSBus(conn *nats.Conn, logger zerolog.Logger) *NATSBus {
	return &NATSBus{
		conn:   conn,
		logger: logger.With().Str("component", "nats_event_bus").Logger(),
	}
}

// Publish encodes and sends the event on its subject.
func (b *NATSBus) Publish(_ context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	if err := b.conn.Publish(event.Subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", event.Subject, err)
	}

	observability.EventsPublished().WithLabelValues(event.Subject).Inc()
	return nil
}

// Subscribe registers an asynchronous handler for the pattern.
func (b *NATSBus) Subscribe(pattern string, handler Handler) error {
	sub, err := b.conn.Subscribe(pattern, func(msg *nats.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			b.logger.Warn().Err(err).Str("subject", msg.Subject).Msg("discarding malformed event")
			return
		}
		if event.Subject == "" {
			event.Subject = msg.Subject
		}
		handler(context.Background(), event)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", pattern, err)
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return nil
}

// Close drains the subscriptions and the connection.
func (b *NATSBus) Close() error {
	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()

	for _, sub := range subs {
		if err := sub.Drain(); err != nil {
			b.logger.Warn().Err(err).Msg("failed to drain event subscription")
		}
	}

	return b.conn.Drain()
}
