package events

import (
	"context"
	"fmt"
	"log/slog"
)

const publisherLogPrefix = "events:publisher"

// EventPublisher receives one event per dispatched interaction. Publishing
// is best effort: callers log a returned error and carry on.
type EventPublisher interface {
	PublishDispatched(ctx context.Context, event *InteractionDispatchedEvent) error
}

// NoOpPublisher drops every event.
type NoOpPublisher struct{}

// PublishDispatched implements EventPublisher.
func (NoOpPublisher) PublishDispatched(context.Context, *InteractionDispatchedEvent) error {
	return nil
}

// PublisherFunc adapts a function to EventPublisher.
type PublisherFunc func(ctx context.Context, event *InteractionDispatchedEvent) error

// PublishDispatched calls f.
func (f PublisherFunc) PublishDispatched(ctx context.Context, event *InteractionDispatchedEvent) error {
	return f(ctx, event)
}

// LogPublisher writes events to a logger at debug level. It stands in for
// COMMS when no broker is configured.
type LogPublisher struct {
	Logger *slog.Logger
}

// PublishDispatched implements EventPublisher.
func (p *LogPublisher) PublishDispatched(ctx context.Context, event *InteractionDispatchedEvent) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.DebugContext(ctx, fmt.Sprintf("%s - %s %s: %s", publisherLogPrefix, event.Kind, event.Command, event.Outcome),
		"request_id", event.RequestID,
		"interaction_id", event.InteractionID,
		"guild_id", event.GuildID,
		"user_id", event.UserID,
		"error_kind", event.ErrorKind,
		"duration_ms", event.DurationMs,
	)
	return nil
}
