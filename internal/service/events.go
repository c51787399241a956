package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/learncenter-api/internal/events"
	"github.com/noah-isme/learncenter-api/internal/middleware"
)

// publishEvent emits a domain event. Delivery failures are logged and never
// fail the write that produced the event.
func publishEvent(ctx context.Context, bus events.Bus, logger zerolog.Logger, event events.Event) {
	if bus == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if event.CorrelationID == "" {
		event.CorrelationID = middleware.CorrelationIDFromContext(ctx)
	}
	if err := bus.Publish(ctx, event); err != nil {
		logger.Warn().Err(err).Str("subject", event.Subject).Msg("failed to publish event")
	}
}

func uintPtr(v uint) *uint {
	return &v
}

func actorPtr(actor ActivityActor) *uint {
	if actor.ID == 0 {
		return nil
	}
	return uintPtr(actor.ID)
}
