package events

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/learncenter-api/internal/observability"
)

type subscription struct {
	pattern string
	handler Handler
}

// LocalBus dispatches events synchronously to in-process subscribers.
type LocalBus struct {
	mu     sync.RWMutex
	subs   []subscription
	logger zerolog.Logger
}

// NewLocalBus constructs an in-process bus.
func NewLocalBus(logger zerolog.Logger) *LocalBus {
	return &LocalBus{
		logger: logger.With().Str("component", "local_event_bus").Logger(),
	}
}

// Publish delivers the event to every matching subscriber before returning.
func (b *LocalBus) Publish(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	b.mu.RLock()
	matched := make([]Handler, 0, len(b.subs))
	for _, sub := range b.subs {
		if Match(sub.pattern, event.Subject) {
			matched = append(matched, sub.handler)
		}
	}
	b.mu.RUnlock()

	observability.EventsPublished().WithLabelValues(event.Subject).Inc()
	for _, handler := range matched {
		handler(ctx, event)
	}

	b.logger.Debug().Str("subject", event.Subject).Int("subscribers", len(matched)).Msg("event dispatched")
	return nil
}

// Subscribe registers a handler for the pattern.
func (b *LocalBus) Subscribe(pattern string, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, subscription{pattern: pattern, handler: handler})
	return nil
}

// Close drops all subscribers.
func (b *LocalBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = nil
	return nil
}
