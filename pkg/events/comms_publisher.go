package events

import (
	"context"
	"fmt"
	"log/slog"

	comms "github.com/nats-io/nats.go"

	"github.com/morezero/interactions-gateway/pkg/commsutil"
)

const commsPublisherLogPrefix = "events:comms_publisher"

// CommsPublisherOpts configures CommsPublisher. Nil or zero values use defaults.
type CommsPublisherOpts struct {
	// Subject overrides the global dispatch event subject (INTERACTION_EVENT_SUBJECT).
	Subject string
	Logger  *slog.Logger
}

// CommsPublisher publishes interaction dispatch events to COMMS subjects.
type CommsPublisher struct {
	nc      *comms.Conn
	subject string
	logger  *slog.Logger
}

// NewCommsPublisher creates a new CommsPublisher. Pass nil for opts to use defaults.
func NewCommsPublisher(nc *comms.Conn, opts *CommsPublisherOpts) *CommsPublisher {
	p := &CommsPublisher{nc: nc, subject: commsutil.SubjectInteractionDispatched, logger: slog.Default()}
	if opts != nil {
		if opts.Subject != "" {
			p.subject = opts.Subject
		}
		if opts.Logger != nil {
			p.logger = opts.Logger
		}
	}
	return p
}

// PublishDispatched publishes event to the per-command subject and then to
// the global subject.
func (p *CommsPublisher) PublishDispatched(_ context.Context, event *InteractionDispatchedEvent) error {
	data, err := commsutil.EncodePayload(event)
	if err != nil {
		return fmt.Errorf("%s - failed to encode event: %w", commsPublisherLogPrefix, err)
	}

	granular := commsutil.BuildDispatchedSubject(p.subject, event.Command)
	if err := p.nc.Publish(granular, data); err != nil {
		p.logger.Error(fmt.Sprintf("%s - failed to publish to %s: %v", commsPublisherLogPrefix, granular, err))
		return fmt.Errorf("%s - publish %s: %w", commsPublisherLogPrefix, granular, err)
	}

	if err := p.nc.Publish(p.subject, data); err != nil {
		p.logger.Error(fmt.Sprintf("%s - failed to publish to %s: %v", commsPublisherLogPrefix, p.subject, err))
		return fmt.Errorf("%s - publish %s: %w", commsPublisherLogPrefix, p.subject, err)
	}

	p.logger.Debug(fmt.Sprintf("%s - Published dispatch event for %s (%s)", commsPublisherLogPrefix, event.Command, event.Outcome))
	return nil
}
